package gateway

import (
	"context"
	"errors"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
)

// ErrNotFound is wrapped into fetch errors when the gateway reports that
// the requested id does not exist.
var ErrNotFound = errors.New("gateway: id does not exist")

// OrderParams are the fields sent when creating an order. Amount is in the
// currency's minor unit.
type OrderParams struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// PaymentLinkParams are the fields sent when creating a payment link.
// Amount is in the currency's minor unit.
type PaymentLinkParams struct {
	Amount         int64
	Currency       string
	Description    string
	Customer       map[string]interface{}
	CallbackURL    string
	CallbackMethod string
}

// Client is the subset of the payment gateway API this service uses.
type Client interface {
	CreateOrder(ctx context.Context, p OrderParams) (*domain.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*domain.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	CreatePaymentLink(ctx context.Context, p PaymentLinkParams) (map[string]interface{}, error)
}
