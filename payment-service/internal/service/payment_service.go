package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
	"github.com/tradepost/marketplace-automation/payment-service/internal/gateway"
	"github.com/tradepost/marketplace-automation/payment-service/internal/repository"
	"github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/pkg/pubsub"
	"github.com/tradepost/marketplace-automation/pkg/signature"
)

// Config holds the facade settings.
type Config struct {
	AmountUnit      AmountUnit
	DefaultCurrency string
	CallbackURL     string
}

type paymentService struct {
	gateway   gateway.Client
	keys      *signature.Verifier // key secret: checkout signatures
	webhooks  *signature.Verifier // webhook secret: may be unconfigured
	events    repository.EventLog // optional
	publisher pubsub.Publisher    // optional
	cfg       Config
	fetches   singleflight.Group
}

// NewPaymentService creates the facade. events and publisher may be nil.
func NewPaymentService(
	gw gateway.Client,
	keySecret string,
	webhookSecret string,
	events repository.EventLog,
	publisher pubsub.Publisher,
	cfg Config,
) PaymentService {
	if cfg.AmountUnit == "" {
		cfg.AmountUnit = AmountMinor
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}
	return &paymentService{
		gateway:   gw,
		keys:      signature.NewVerifier(keySecret),
		webhooks:  signature.NewVerifier(webhookSecret),
		events:    events,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ClassifyWebhookEvent maps a gateway event type to an EventKind. Unknown
// types map to EventUnknown.
func ClassifyWebhookEvent(eventType string) domain.EventKind {
	switch eventType {
	case "payment.captured":
		return domain.EventPaymentCaptured
	case "payment.failed":
		return domain.EventPaymentFailed
	case "order.paid":
		return domain.EventOrderPaid
	default:
		return domain.EventUnknown
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.Receipt) == "" {
		return nil, ErrMissingReceipt
	}
	amount, err := ToMinorUnits(req.Amount, s.cfg.AmountUnit)
	if err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	order, err := s.gateway.CreateOrder(ctx, gateway.OrderParams{
		Amount:   amount,
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldOrderID, order.ID).
		Int64("amount", order.Amount).
		Str("currency", order.Currency).
		Msg("order created")
	return order, nil
}

func (s *paymentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	v, err := s.fetch(ctx, "order:"+orderID, func(ctx context.Context) (interface{}, error) {
		return s.gateway.FetchOrder(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Order), nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	v, err := s.fetch(ctx, "payment:"+paymentID, func(ctx context.Context) (interface{}, error) {
		return s.gateway.FetchPayment(ctx, paymentID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Payment), nil
}

// fetch coalesces concurrent reads of the same key. The shared call runs
// detached from any one caller's cancellation; each caller stops waiting
// when its own ctx is done.
func (s *paymentService) fetch(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.fetches.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err == nil {
			return res.Val, nil
		}
		if errors.Is(res.Err, gateway.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, res.Err)
		}
		return nil, fmt.Errorf("%w: %w", ErrGateway, res.Err)
	}
}

func (s *paymentService) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (map[string]interface{}, error) {
	amount, err := ToMinorUnits(req.Amount, AmountMajor)
	if err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	description := req.Description
	if description == "" {
		description = "Payment"
	}

	params := gateway.PaymentLinkParams{
		Amount:      amount,
		Currency:    currency,
		Description: description,
		Customer:    req.Customer,
	}
	if s.cfg.CallbackURL != "" {
		params.CallbackURL = s.cfg.CallbackURL
		params.CallbackMethod = "get"
	}

	link, err := s.gateway.CreatePaymentLink(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return link, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, orderID, paymentID, presented string) error {
	if orderID == "" || paymentID == "" || presented == "" {
		return ErrMissingFields
	}

	ok, err := s.keys.Verify(signature.PaymentMessage(orderID, paymentID), presented)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}

	log.Audit(ctx, "payment.verify").
		Str(log.FieldOrderID, orderID).
		Str(log.FieldPaymentID, paymentID).
		Bool("authentic", ok).
		Msg("payment signature checked")

	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook verifies, classifies and publishes one delivery. The
// signature is checked over rawBody exactly as received. When no webhook
// secret is configured verification is skipped.
func (s *paymentService) HandleWebhook(ctx context.Context, rawBody []byte, presented, eventID string) (*WebhookResult, error) {
	l := log.Ctx(ctx)

	if s.webhooks.Configured() {
		ok, err := s.webhooks.Verify(rawBody, presented)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
		}
		if !ok {
			l.Warn().Str(log.FieldEventID, eventID).Msg("webhook signature mismatch")
			return nil, ErrInvalidSignature
		}
	} else {
		l.Warn().Msg("webhook secret not configured, skipping signature verification")
	}

	var evt domain.WebhookEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedWebhook, err)
	}

	res := &WebhookResult{
		Kind:      ClassifyWebhookEvent(evt.Event),
		EventType: evt.Event,
	}
	l = l.With().Str(log.FieldEventType, evt.Event).Str(log.FieldEventID, eventID).Logger()

	if res.Kind == domain.EventUnknown {
		l.Info().Msg("unhandled webhook event")
		return res, nil
	}

	if s.events != nil && eventID != "" {
		if err := s.events.Record(ctx, eventID, evt.Event); err != nil {
			if errors.Is(err, repository.ErrDuplicateEvent) {
				l.Info().Msg("duplicate webhook delivery ignored")
				res.Duplicate = true
				return res, nil
			}
			return nil, fmt.Errorf("record webhook event: %w", err)
		}
	}

	if err := s.publish(ctx, &evt, eventID); err != nil {
		if s.events != nil && eventID != "" {
			if ferr := s.events.Forget(context.WithoutCancel(ctx), eventID); ferr != nil {
				l.Error().Err(ferr).Msg("failed to forget webhook event after publish failure")
			}
		}
		return nil, fmt.Errorf("publish webhook event: %w", err)
	}
	res.Published = s.publisher != nil

	audit := log.Audit(ctx, "payment.webhook").
		Str(log.FieldEventType, evt.Event).
		Str(log.FieldEventID, eventID)
	if p := evt.PaymentEntity(); p != nil {
		audit = audit.Str(log.FieldPaymentID, p.ID).Str(log.FieldOrderID, p.OrderID)
	} else if o := evt.OrderEntity(); o != nil {
		audit = audit.Str(log.FieldOrderID, o.ID)
	}
	audit.Msg("webhook event handled")

	return res, nil
}

func (s *paymentService) publish(ctx context.Context, evt *domain.WebhookEvent, eventID string) error {
	if s.publisher == nil {
		return nil
	}

	payload := pubsub.PaymentEventPayload{GatewayEventID: eventID}
	if p := evt.PaymentEntity(); p != nil {
		payload.PaymentID = p.ID
		payload.OrderID = p.OrderID
		payload.Amount = p.Amount
		payload.Currency = p.Currency
		payload.Status = p.Status
	}
	if o := evt.OrderEntity(); o != nil {
		payload.OrderID = o.ID
		if payload.Amount == 0 {
			payload.Amount = o.Amount
			payload.Currency = o.Currency
		}
		if payload.Status == "" {
			payload.Status = o.Status
		}
	}

	key := payload.OrderID
	if key == "" {
		key = payload.PaymentID
	}
	if key == "" {
		key = "unknown"
	}

	event, err := pubsub.NewEvent(evt.Event, key, payload)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, pubsub.PaymentEventsChannel(key), event)
}
