package platform

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Menu is the internal category/item/price model handed to adapters for
// translation into each platform's catalog schema. It is a snapshot: pushing
// the same snapshot twice must leave the remote catalog in the same state.
type Menu struct {
	StoreID    uuid.UUID
	Name       string
	Categories []MenuCategory
}

// MenuCategory groups items on the published menu.
type MenuCategory struct {
	// ExternalID is the stable local identifier adapters use as the remote
	// object key, which is what makes repeated pushes idempotent upserts.
	ExternalID  string
	Name        string
	Description string
	Items       []MenuItem
}

// MenuItem is one sellable item with its price and options.
type MenuItem struct {
	ExternalID  string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Available   bool
	Options     []MenuOption
}

// MenuOption is a selectable modifier on an item.
type MenuOption struct {
	ExternalID string
	Name       string
	Price      decimal.Decimal
}

// ItemCount returns the total number of items across categories.
func (m *Menu) ItemCount() int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Items)
	}
	return n
}

// AvailabilityDelta marks a single item sold-out or back in stock. Platform
// batch limits are the adapter's concern; callers pass the full delta set.
type AvailabilityDelta struct {
	ItemExternalID string
	Available      bool
}
