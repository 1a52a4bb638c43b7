package pubsub

import "fmt"

// Channels are "{stream}:{key}". Redis publishes on the full channel name;
// Kafka maps the stream to a topic and uses the key as the message key so
// that events for one order stay ordered within a partition.
const (
	StreamPayments = "payments"

	ChannelPaymentEvents = StreamPayments + ":%s"
)

// PaymentEventsChannel returns the channel for events about one order. When
// the gateway payload carries no order id, the entity id is used instead.
func PaymentEventsChannel(key string) string {
	return fmt.Sprintf(ChannelPaymentEvents, key)
}

// PaymentEventPayload is the body of a payments-stream event.
type PaymentEventPayload struct {
	GatewayEventID string `json:"gateway_event_id,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	PaymentID      string `json:"payment_id,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Status         string `json:"status,omitempty"`
}
