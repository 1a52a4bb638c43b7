package repository

import (
	"context"
	"errors"
)

// ErrDuplicateEvent is returned when an event id has already been recorded.
var ErrDuplicateEvent = errors.New("webhook event already processed")

// EventLog records processed webhook deliveries by gateway event id.
type EventLog interface {
	// Record stores eventID, or returns ErrDuplicateEvent if it exists.
	Record(ctx context.Context, eventID, eventType string) error

	// Forget removes eventID so a redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}
