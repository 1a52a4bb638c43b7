package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
)

// GormEventLog implements EventLog using GORM.
type GormEventLog struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormEventLog creates a new GORM-backed event log.
func NewGormEventLog(db *gorm.DB) *GormEventLog {
	return &GormEventLog{db: db, now: time.Now}
}

// Record inserts the event id. The insert ignores conflicts, so a zero row
// count means another delivery already claimed the id.
func (r *GormEventLog) Record(ctx context.Context, eventID, eventType string) error {
	model := domain.WebhookEventModel{
		EventID:    eventID,
		EventType:  eventType,
		ReceivedAt: r.now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

// Forget deletes the event id.
func (r *GormEventLog) Forget(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&domain.WebhookEventModel{}).Error
}
