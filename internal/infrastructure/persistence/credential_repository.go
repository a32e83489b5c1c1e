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

// GormCredentialRepository implements CredentialRepository using GORM.
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository.
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindByTenantAndPlatform finds the credential for a (tenant, platform) pair.
func (r *GormCredentialRepository) FindByTenantAndPlatform(ctx context.Context, tenantID uuid.UUID, code platform.Code) (*platform.Credential, error) {
	var model models.PlatformCredentialModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platform.ErrCredentialNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates the credential, keyed by its primary key.
func (r *GormCredentialRepository) Save(ctx context.Context, cred *platform.Credential) error {
	var model models.PlatformCredentialModel
	model.FromDomain(cred)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

// Delete removes the credential for a (tenant, platform) pair.
func (r *GormCredentialRepository) Delete(ctx context.Context, tenantID uuid.UUID, code platform.Code) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_code = ?", tenantID, code).
		Delete(&models.PlatformCredentialModel{}).Error
}

// Ensure GormCredentialRepository implements CredentialRepository.
var _ platform.CredentialRepository = (*GormCredentialRepository)(nil)
