package profile

import (
	"context"
	"errors"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// ErrProfileNotFound is returned when no record exists for the user.
var ErrProfileNotFound = errors.New("user profile not found")

// Store reads receiver profiles.
type Store interface {
	// GetProfile returns the profile for userID or ErrProfileNotFound.
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)

	// Close releases the store connection.
	Close() error
}
