package service

import (
	"context"
	"sync"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
	"github.com/tradepost/marketplace-automation/payment-service/internal/gateway"
	"github.com/tradepost/marketplace-automation/payment-service/internal/repository"
	"github.com/tradepost/marketplace-automation/pkg/pubsub"
)

type mockGateway struct {
	createOrderFn  func(ctx context.Context, p gateway.OrderParams) (*domain.Order, error)
	fetchOrderFn   func(ctx context.Context, id string) (*domain.Order, error)
	fetchPaymentFn func(ctx context.Context, id string) (*domain.Payment, error)
	createLinkFn   func(ctx context.Context, p gateway.PaymentLinkParams) (map[string]interface{}, error)
}

func (m *mockGateway) CreateOrder(ctx context.Context, p gateway.OrderParams) (*domain.Order, error) {
	return m.createOrderFn(ctx, p)
}

func (m *mockGateway) FetchOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.fetchOrderFn(ctx, id)
}

func (m *mockGateway) FetchPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return m.fetchPaymentFn(ctx, id)
}

func (m *mockGateway) CreatePaymentLink(ctx context.Context, p gateway.PaymentLinkParams) (map[string]interface{}, error) {
	return m.createLinkFn(ctx, p)
}

// memEventLog is an in-memory EventLog.
type memEventLog struct {
	mu   sync.Mutex
	seen map[string]string
}

func newMemEventLog() *memEventLog {
	return &memEventLog{seen: make(map[string]string)}
}

func (m *memEventLog) Record(ctx context.Context, eventID, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return repository.ErrDuplicateEvent
	}
	m.seen[eventID] = eventType
	return nil
}

func (m *memEventLog) Forget(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, eventID)
	return nil
}

type published struct {
	channel string
	event   *pubsub.Event
}

type mockPublisher struct {
	publishFn func(ctx context.Context, channel string, event *pubsub.Event) error
	got       []published
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	m.got = append(m.got, published{channel: channel, event: event})
	if m.publishFn != nil {
		return m.publishFn(ctx, channel, event)
	}
	return nil
}

func (m *mockPublisher) Close() error { return nil }
