package push

import (
	"context"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// Sender delivers a push message and returns the channel's message id.
type Sender interface {
	Send(ctx context.Context, msg *domain.PushMessage) (string, error)
}
