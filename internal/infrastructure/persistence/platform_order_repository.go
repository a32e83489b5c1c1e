package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/shared"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/persistence/models"
)

// Platform order lifecycle states.
const (
	PlatformOrderStatusReceived  = "RECEIVED"
	PlatformOrderStatusCancelled = "CANCELLED"
)

// GormPlatformOrderRepository records inbound platform orders. It is the
// order store behind the command sink.
type GormPlatformOrderRepository struct {
	db *gorm.DB
}

// NewGormPlatformOrderRepository creates a new GormPlatformOrderRepository.
func NewGormPlatformOrderRepository(db *gorm.DB) *GormPlatformOrderRepository {
	return &GormPlatformOrderRepository{db: db}
}

// CreateFromPlatform inserts an inbound order. A redelivery past the dedup
// window conflicts on (platform_code, platform_order_id) and resolves to the
// already stored row instead of a second order.
func (r *GormPlatformOrderRepository) CreateFromPlatform(ctx context.Context, link *platform.StoreLink, order *platform.PlatformOrder) (*platform.OrderCommandResult, error) {
	var model models.PlatformOrderModel
	model.FromOrder(link, order)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_code"}, {Name: "platform_order_id"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var existing models.PlatformOrderModel
		if err := r.db.WithContext(ctx).
			Where("platform_code = ? AND platform_order_id = ?", order.PlatformCode, order.PlatformOrderID).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &platform.OrderCommandResult{LocalOrderID: existing.ID}, nil
	}

	return &platform.OrderCommandResult{LocalOrderID: model.ID}, nil
}

// CancelPlatformOrder marks the stored order cancelled. Cancelling an
// already cancelled order is a no-op.
func (r *GormPlatformOrderRepository) CancelPlatformOrder(ctx context.Context, link *platform.StoreLink, platformOrderID string) error {
	var model models.PlatformOrderModel
	if err := r.db.WithContext(ctx).
		Where("platform_code = ? AND platform_order_id = ? AND store_id = ?",
			link.PlatformCode, platformOrderID, link.StoreID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Platform order not found")
		}
		return err
	}

	if model.Status == PlatformOrderStatusCancelled {
		return nil
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model).
		Updates(map[string]any{
			"status":       PlatformOrderStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}).Error
}

// UpdatePlatformOrderStatus applies a platform-reported status change.
func (r *GormPlatformOrderRepository) UpdatePlatformOrderStatus(ctx context.Context, link *platform.StoreLink, platformOrderID, detail string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PlatformOrderModel{}).
		Where("platform_code = ? AND platform_order_id = ? AND store_id = ?",
			link.PlatformCode, platformOrderID, link.StoreID).
		Updates(map[string]any{
			"status":     detail,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("NOT_FOUND", "Platform order not found")
	}
	return nil
}
