package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
)

// RazorpayClient implements Client over the Razorpay SDK. The SDK has no
// context support; ctx is only checked before each call.
type RazorpayClient struct {
	client *razorpay.Client
}

// NewRazorpayClient creates a client for the given key pair.
func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *RazorpayClient) CreateOrder(ctx context.Context, p OrderParams) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notes := p.Notes
	if notes == nil {
		notes = map[string]interface{}{}
	}
	body, err := r.client.Order.Create(map[string]interface{}{
		"amount":          p.Amount,
		"currency":        p.Currency,
		"receipt":         p.Receipt,
		"notes":           notes,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var order domain.Order
	if err := decode(body, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (r *RazorpayClient) FetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fetchError("fetch order "+orderID, err)
	}

	var order domain.Order
	if err := decode(body, &order); err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	return &order, nil
}

func (r *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fetchError("fetch payment "+paymentID, err)
	}

	var payment domain.Payment
	if err := decode(body, &payment); err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

func (r *RazorpayClient) CreatePaymentLink(ctx context.Context, p PaymentLinkParams) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	customer := p.Customer
	if customer == nil {
		customer = map[string]interface{}{}
	}
	data := map[string]interface{}{
		"amount":          p.Amount,
		"currency":        p.Currency,
		"description":     p.Description,
		"customer":        customer,
		"notify":          map[string]interface{}{"sms": true, "email": true},
		"reminder_enable": true,
	}
	if p.CallbackURL != "" {
		data["callback_url"] = p.CallbackURL
		data["callback_method"] = p.CallbackMethod
	}

	body, err := r.client.PaymentLink.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	return body, nil
}

// fetchError wraps an SDK fetch failure, marking unknown ids with
// ErrNotFound. The SDK reports them as BAD_REQUEST_ERROR with the
// description "The id provided does not exist".
func fetchError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found") {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// decode re-marshals an SDK response map into a typed struct.
func decode(body map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode gateway response: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
