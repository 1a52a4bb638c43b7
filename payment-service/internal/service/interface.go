package service

import (
	"context"
	"errors"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
)

var (
	ErrInvalidAmount       = errors.New("amount must be a positive number of minor units")
	ErrMissingReceipt      = errors.New("receipt is required")
	ErrMissingFields       = errors.New("missing required payment parameters")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrMalformedWebhook    = errors.New("malformed webhook body")
	ErrGateway             = errors.New("payment gateway error")
	ErrNotFound            = errors.New("not found")
	ErrVerifierUnavailable = errors.New("signature verification is not configured")
)

// CreateOrderRequest is the input of CreateOrder. Amount is interpreted
// according to the configured AmountUnit.
type CreateOrderRequest struct {
	Amount   float64                `json:"amount"`
	Currency string                 `json:"currency"`
	Receipt  string                 `json:"receipt"`
	Notes    map[string]interface{} `json:"notes"`
}

// PaymentLinkRequest is the input of CreatePaymentLink. Amount is in major
// units.
type PaymentLinkRequest struct {
	Amount      float64                `json:"amount"`
	Currency    string                 `json:"currency"`
	Description string                 `json:"description"`
	Customer    map[string]interface{} `json:"customer"`
}

// WebhookResult reports how a webhook delivery was handled.
type WebhookResult struct {
	Kind      domain.EventKind
	EventType string
	Duplicate bool
	Published bool
}

// PaymentService is the payment gateway facade.
type PaymentService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (map[string]interface{}, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, presented string) error
	HandleWebhook(ctx context.Context, rawBody []byte, presented, eventID string) (*WebhookResult, error)
}
