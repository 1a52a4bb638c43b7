package service

import (
	"context"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// NotificationService dispatches chat pushes.
type NotificationService interface {
	// Dispatch never returns nil. Failures are reported in the result.
	Dispatch(ctx context.Context, req *domain.NotificationRequest) *domain.DispatchResult
}
