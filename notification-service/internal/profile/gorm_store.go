package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// ProfileModel is the GORM model for the user_profiles table. The table is
// written by the app backend; this service only reads it.
type ProfileModel struct {
	UserID          string    `gorm:"column:user_id;primaryKey;type:varchar(128)"`
	IsOnline        bool      `gorm:"column:is_online;not null;default:false"`
	CurrentChatRoom string    `gorm:"column:current_chat_room;type:varchar(255)"`
	FCMToken        string    `gorm:"column:fcm_token;type:text"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (ProfileModel) TableName() string {
	return "user_profiles"
}

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed profile store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetProfile loads one row by primary key.
func (s *GormStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var m ProfileModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}

	return &domain.UserProfile{
		UserID:   m.UserID,
		FCMToken: m.FCMToken,
		UserPresence: domain.UserPresence{
			IsOnline:        m.IsOnline,
			CurrentChatRoom: m.CurrentChatRoom,
		},
	}, nil
}

// Close is a no-op; the caller owns the *gorm.DB.
func (s *GormStore) Close() error {
	return nil
}
