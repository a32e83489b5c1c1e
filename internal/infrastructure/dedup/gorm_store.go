// Package dedup implements the processed-event ledger that guarantees
// at-most-once webhook side effects. Admission is a single conditional
// insert; the storage layer's uniqueness constraint is the sole source of
// truth, never an application-level check-then-insert.
package dedup

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/persistence/models"
)

// GormStore implements the dedup ledger on the relational database, using an
// insert with ON CONFLICT DO NOTHING against the composite primary key.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed dedup store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Admit atomically records the event. The insert's conflict clause makes two
// racing deliveries resolve to exactly one admission.
func (s *GormStore) Admit(ctx context.Context, event *platform.ProcessedEvent) (bool, error) {
	var model models.ProcessedEventModel
	model.FromDomain(event)

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if res.Error != nil {
		return false, fmt.Errorf("dedup: failed to admit event: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// PurgeOlderThan removes ledger entries received before cutoff. Platforms do
// not replay indefinitely, so absence beyond the retention window is fine.
func (s *GormStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("received_at < ?", cutoff).
		Delete(&models.ProcessedEventModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("dedup: failed to purge ledger: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Close is a no-op; the database connection is owned by the caller.
func (s *GormStore) Close() error {
	return nil
}

// Ensure GormStore implements DedupStore.
var _ platform.DedupStore = (*GormStore)(nil)
