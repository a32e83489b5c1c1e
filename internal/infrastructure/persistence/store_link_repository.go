package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/persistence/models"
)

// GormStoreLinkRepository implements StoreLinkRepository using GORM.
type GormStoreLinkRepository struct {
	db *gorm.DB
}

// NewGormStoreLinkRepository creates a new GormStoreLinkRepository.
func NewGormStoreLinkRepository(db *gorm.DB) *GormStoreLinkRepository {
	return &GormStoreLinkRepository{db: db}
}

// FindByStoreAndPlatform finds the link for a (store, platform) pair.
func (r *GormStoreLinkRepository) FindByStoreAndPlatform(ctx context.Context, storeID uuid.UUID, code platform.Code) (*platform.StoreLink, error) {
	var model models.PlatformStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_code = ?", storeID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platform.ErrStoreLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPlatformStoreID resolves the platform's own store identifier to a
// link, used by the inbound event path.
func (r *GormStoreLinkRepository) FindByPlatformStoreID(ctx context.Context, code platform.Code, platformStoreID string) (*platform.StoreLink, error) {
	var model models.PlatformStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("platform_code = ? AND platform_store_id = ?", code, platformStoreID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platform.ErrStoreLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindEnabledByStore returns the store's links with sync enabled.
func (r *GormStoreLinkRepository) FindEnabledByStore(ctx context.Context, storeID uuid.UUID) ([]platform.StoreLink, error) {
	var rows []models.PlatformStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND sync_enabled = ?", storeID, true).
		Order("platform_code").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLinks(rows), nil
}

// FindAllByStore returns every link for the store, enabled or not.
func (r *GormStoreLinkRepository) FindAllByStore(ctx context.Context, storeID uuid.UUID) ([]platform.StoreLink, error) {
	var rows []models.PlatformStoreLinkModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("platform_code").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLinks(rows), nil
}

// Save inserts or updates the link, keyed by its primary key.
func (r *GormStoreLinkRepository) Save(ctx context.Context, link *platform.StoreLink) error {
	var model models.PlatformStoreLinkModel
	model.FromDomain(link)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

// DeleteByTenantAndPlatform removes a tenant's links on one platform.
func (r *GormStoreLinkRepository) DeleteByTenantAndPlatform(ctx context.Context, tenantID uuid.UUID, code platform.Code) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_code = ?", tenantID, code).
		Delete(&models.PlatformStoreLinkModel{}).Error
}

func toDomainLinks(rows []models.PlatformStoreLinkModel) []platform.StoreLink {
	out := make([]platform.StoreLink, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}

// Ensure GormStoreLinkRepository implements StoreLinkRepository.
var _ platform.StoreLinkRepository = (*GormStoreLinkRepository)(nil)
