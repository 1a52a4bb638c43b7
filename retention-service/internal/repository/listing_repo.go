package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tradepost/marketplace-automation/retention-service/internal/domain"
)

// ListingsGroup is the single group ID the listing source reports.
const ListingsGroup = "listings"

// ListingModel maps the columns of the listings table this service reads.
// The table is owned by the marketplace backend.
type ListingModel struct {
	ID             string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	ExpirationDate *time.Time `gorm:"column:expiration_date;index"`
}

// TableName overrides the default table name.
func (ListingModel) TableName() string {
	return "listings"
}

// GormListingRepository implements the sweeper source for listings.
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GORM-backed listing repository.
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// Groups returns the listings whose expiration date is before cutoff as a
// single group. The filter runs in the database.
func (r *GormListingRepository) Groups(ctx context.Context, cutoff time.Time) ([]domain.Group, error) {
	var rows []ListingModel
	err := r.db.WithContext(ctx).
		Select("id", "expiration_date").
		Where("expiration_date IS NOT NULL AND expiration_date < ?", cutoff).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query expired listings: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.Record{Key: row.ID, Timestamp: *row.ExpirationDate})
	}
	return []domain.Group{{ID: ListingsGroup, Records: records}}, nil
}

// DeleteBatch deletes ids in one transaction.
func (r *GormListingRepository) DeleteBatch(ctx context.Context, _ string, ids []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Delete(&ListingModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete %d listings: %w", len(ids), err)
		}
		return nil
	})
}
