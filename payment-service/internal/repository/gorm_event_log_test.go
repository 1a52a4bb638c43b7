package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
	"github.com/tradepost/marketplace-automation/pkg/database"
)

func TestGormEventLog(t *testing.T) {
	db, err := database.New(&database.Config{Driver: "sqlite", FilePath: ":memory:", MaxOpenConns: 1, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.AutoMigrate(db, &domain.WebhookEventModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := NewGormEventLog(db)
	ctx := context.Background()

	if err := log.Record(ctx, "evt_1", "payment.captured"); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	if err := log.Record(ctx, "evt_1", "payment.captured"); !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("second Record() error = %v, want ErrDuplicateEvent", err)
	}
	if err := log.Record(ctx, "evt_2", "order.paid"); err != nil {
		t.Fatalf("Record(evt_2) error = %v", err)
	}

	if err := log.Forget(ctx, "evt_1"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if err := log.Record(ctx, "evt_1", "payment.captured"); err != nil {
		t.Errorf("Record() after Forget error = %v", err)
	}

	var count int64
	db.Model(&domain.WebhookEventModel{}).Count(&count)
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}
