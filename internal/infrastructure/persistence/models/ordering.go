package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// Menu catalog
// ---------------------------------------------------------------------------

// MenuCategoryModel is one category of a store's publishable menu.
type MenuCategoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_menu_category_store_external,priority:1"`
	ExternalID  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_menu_category_store_external,priority:2"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	SortOrder   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (MenuCategoryModel) TableName() string {
	return "menu_categories"
}

// MenuItemModel is one sellable item on a store's menu.
type MenuItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_menu_item_store_external,priority:1"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExternalID  string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_menu_item_store_external,priority:2"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ImageURL    string          `gorm:"type:varchar(500)"`
	Available   bool            `gorm:"not null;default:true"`
	OptionsJSON string          `gorm:"type:jsonb;column:options"`
	SortOrder   int             `gorm:"not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// menuOptionRecord is the JSON shape stored in the options column.
type menuOptionRecord struct {
	ExternalID string          `json:"external_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

// Options decodes the stored option list.
func (m *MenuItemModel) Options() []platform.MenuOption {
	if m.OptionsJSON == "" {
		return nil
	}
	var records []menuOptionRecord
	if err := json.Unmarshal([]byte(m.OptionsJSON), &records); err != nil {
		return nil
	}
	options := make([]platform.MenuOption, 0, len(records))
	for _, r := range records {
		options = append(options, platform.MenuOption{
			ExternalID: r.ExternalID,
			Name:       r.Name,
			Price:      r.Price,
		})
	}
	return options
}

// SetOptions encodes the option list into the options column.
func (m *MenuItemModel) SetOptions(options []platform.MenuOption) {
	if len(options) == 0 {
		m.OptionsJSON = ""
		return
	}
	records := make([]menuOptionRecord, 0, len(options))
	for _, o := range options {
		records = append(records, menuOptionRecord{
			ExternalID: o.ExternalID,
			Name:       o.Name,
			Price:      o.Price,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		m.OptionsJSON = ""
		return
	}
	m.OptionsJSON = string(data)
}

// ---------------------------------------------------------------------------
// Platform orders
// ---------------------------------------------------------------------------

// PlatformOrderModel records an order received from a delivery platform. One
// row per (platform, platform order id); redeliveries past the dedup window
// land on the same row.
type PlatformOrderModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	StoreID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlatformCode    platform.Code   `gorm:"type:varchar(20);not null;uniqueIndex:idx_platform_order_source,priority:1"`
	PlatformOrderID string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_platform_order_source,priority:2"`
	DisplayID       string          `gorm:"type:varchar(50)"`
	CustomerName    string          `gorm:"type:varchar(200)"`
	CustomerPhone   string          `gorm:"type:varchar(50)"`
	Note            string          `gorm:"type:text"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	ItemsJSON       string          `gorm:"type:jsonb;column:items"`
	Status          string          `gorm:"type:varchar(30);not null;default:'RECEIVED'"`
	PlacedAt        time.Time       `gorm:"not null;index"`
	CancelledAt     *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PlatformOrderModel) TableName() string {
	return "platform_orders"
}

// orderItemRecord is the JSON shape stored in the items column.
type orderItemRecord struct {
	ItemExternalID string          `json:"item_external_id"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Options        []string        `json:"options,omitempty"`
}

// Items decodes the stored order lines.
func (m *PlatformOrderModel) Items() []platform.PlatformOrderItem {
	if m.ItemsJSON == "" {
		return nil
	}
	var records []orderItemRecord
	if err := json.Unmarshal([]byte(m.ItemsJSON), &records); err != nil {
		return nil
	}
	items := make([]platform.PlatformOrderItem, 0, len(records))
	for _, r := range records {
		items = append(items, platform.PlatformOrderItem{
			ItemExternalID: r.ItemExternalID,
			Name:           r.Name,
			Quantity:       r.Quantity,
			UnitPrice:      r.UnitPrice,
			Options:        r.Options,
		})
	}
	return items
}

// SetItems encodes the order lines into the items column.
func (m *PlatformOrderModel) SetItems(items []platform.PlatformOrderItem) {
	if len(items) == 0 {
		m.ItemsJSON = ""
		return
	}
	records := make([]orderItemRecord, 0, len(items))
	for _, it := range items {
		records = append(records, orderItemRecord{
			ItemExternalID: it.ItemExternalID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Options:        it.Options,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		m.ItemsJSON = ""
		return
	}
	m.ItemsJSON = string(data)
}

// FromOrder populates the model from a translated platform order and the
// link it was received through.
func (m *PlatformOrderModel) FromOrder(link *platform.StoreLink, order *platform.PlatformOrder) {
	m.ID = uuid.New()
	m.TenantID = link.TenantID
	m.StoreID = link.StoreID
	m.PlatformCode = order.PlatformCode
	m.PlatformOrderID = order.PlatformOrderID
	m.DisplayID = order.DisplayID
	m.CustomerName = order.CustomerName
	m.CustomerPhone = order.CustomerPhone
	m.Note = order.Note
	m.Total = order.Total
	m.Currency = order.Currency
	m.Status = "RECEIVED"
	m.PlacedAt = order.PlacedAt
	m.SetItems(order.Items)
}
