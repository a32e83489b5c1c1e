package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/persistence/models"
)

// GormMenuRepository stores the publishable menu catalog and serves as the
// menu source for outbound sync. The menu handed to adapters is a snapshot
// assembled from the category and item tables.
type GormMenuRepository struct {
	db *gorm.DB
}

// NewGormMenuRepository creates a new GormMenuRepository.
func NewGormMenuRepository(db *gorm.DB) *GormMenuRepository {
	return &GormMenuRepository{db: db}
}

// MenuForStore assembles the store's current menu snapshot.
func (r *GormMenuRepository) MenuForStore(ctx context.Context, storeID uuid.UUID) (*platform.Menu, error) {
	var categories []models.MenuCategoryModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}

	var items []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("sort_order ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	itemsByCategory := make(map[uuid.UUID][]platform.MenuItem, len(categories))
	for i := range items {
		item := &items[i]
		itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], platform.MenuItem{
			ExternalID:  item.ExternalID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			ImageURL:    item.ImageURL,
			Available:   item.Available,
			Options:     item.Options(),
		})
	}

	menu := &platform.Menu{
		StoreID:    storeID,
		Categories: make([]platform.MenuCategory, 0, len(categories)),
	}
	for i := range categories {
		category := &categories[i]
		menu.Categories = append(menu.Categories, platform.MenuCategory{
			ExternalID:  category.ExternalID,
			Name:        category.Name,
			Description: category.Description,
			Items:       itemsByCategory[category.ID],
		})
	}
	return menu, nil
}

// AvailabilityForStore returns the availability state of every menu item.
// Adapters push it as a full refresh, which the platforms treat as an
// idempotent upsert.
func (r *GormMenuRepository) AvailabilityForStore(ctx context.Context, storeID uuid.UUID) ([]platform.AvailabilityDelta, error) {
	var items []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Select("external_id", "available").
		Where("store_id = ?", storeID).
		Order("external_id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	deltas := make([]platform.AvailabilityDelta, 0, len(items))
	for i := range items {
		deltas = append(deltas, platform.AvailabilityDelta{
			ItemExternalID: items[i].ExternalID,
			Available:      items[i].Available,
		})
	}
	return deltas, nil
}

// SaveCategory inserts or updates a menu category, keyed by (store,
// external id).
func (r *GormMenuRepository) SaveCategory(ctx context.Context, category *models.MenuCategoryModel) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "sort_order", "updated_at"}),
		}).
		Create(category).Error
}

// SaveItem inserts or updates a menu item, keyed by (store, external id).
func (r *GormMenuRepository) SaveItem(ctx context.Context, item *models.MenuItemModel) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"category_id", "name", "description", "price", "image_url",
				"available", "options", "sort_order", "updated_at",
			}),
		}).
		Create(item).Error
}

// SetItemAvailability marks one item sold-out or back in stock.
func (r *GormMenuRepository) SetItemAvailability(ctx context.Context, storeID uuid.UUID, itemExternalID string, available bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.MenuItemModel{}).
		Where("store_id = ? AND external_id = ?", storeID, itemExternalID).
		Updates(map[string]any{
			"available":  available,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
