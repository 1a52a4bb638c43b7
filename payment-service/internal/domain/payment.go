package domain

import (
	"encoding/json"
	"time"
)

// Order is a gateway order as returned by the gateway.
type Order struct {
	ID         string          `json:"id"`
	Amount     int64           `json:"amount"`
	AmountPaid int64           `json:"amount_paid"`
	AmountDue  int64           `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	Notes      json.RawMessage `json:"notes,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// Payment is a gateway payment as returned by the gateway.
type Payment struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	OrderID   string `json:"order_id"`
	CreatedAt int64  `json:"created_at"`
}

// EventKind is the closed set of webhook events acted upon.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaymentCaptured
	EventPaymentFailed
	EventOrderPaid
)

func (k EventKind) String() string {
	switch k {
	case EventPaymentCaptured:
		return "payment.captured"
	case EventPaymentFailed:
		return "payment.failed"
	case EventOrderPaid:
		return "order.paid"
	default:
		return "unknown"
	}
}

// WebhookEvent is the parsed envelope of a gateway webhook.
type WebhookEvent struct {
	Event     string `json:"event"`
	AccountID string `json:"account_id"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity Payment `json:"entity"`
		} `json:"payment,omitempty"`
		Order *struct {
			Entity Order `json:"entity"`
		} `json:"order,omitempty"`
	} `json:"payload"`
}

// PaymentEntity returns the payment carried by the event, if any.
func (e *WebhookEvent) PaymentEntity() *Payment {
	if e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

// OrderEntity returns the order carried by the event, if any.
func (e *WebhookEvent) OrderEntity() *Order {
	if e.Payload.Order == nil {
		return nil
	}
	return &e.Payload.Order.Entity
}

// WebhookEventModel is the GORM model for processed webhook deliveries.
type WebhookEventModel struct {
	EventID    string    `gorm:"column:event_id;primaryKey;type:varchar(128)"`
	EventType  string    `gorm:"column:event_type;type:varchar(64);not null"`
	ReceivedAt time.Time `gorm:"column:received_at;not null"`
}

// TableName overrides the default table name.
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}
