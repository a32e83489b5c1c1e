package delivery

// Wire types for the Uber Eats API. Prices travel as integer cents.

// ---------------------------------------------------------------------------
// Menu upsert
// ---------------------------------------------------------------------------

// uberEatsMenuRequest is the full-menu upsert body. The PUT against the
// store's menu resource replaces the catalog, keyed by external IDs, which
// is what makes repeated pushes idempotent.
type uberEatsMenuRequest struct {
	MenuTitle  string             `json:"menu_title"`
	Categories []uberEatsCategory `json:"categories"`
	Items      []uberEatsItem     `json:"items"`
	Modifiers  []uberEatsModifier `json:"modifier_groups,omitempty"`
}

type uberEatsCategory struct {
	ExternalID string   `json:"external_id"`
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle,omitempty"`
	ItemIDs    []string `json:"item_external_ids"`
}

type uberEatsItem struct {
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price"`
	ImageURL    string `json:"image_url,omitempty"`
	ForSale     bool   `json:"for_sale"`
}

type uberEatsModifier struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price"`
	ItemID     string `json:"item_external_id"`
}

// ---------------------------------------------------------------------------
// Availability and store status
// ---------------------------------------------------------------------------

type uberEatsAvailabilityRequest struct {
	Items []uberEatsItemAvailability `json:"items"`
}

type uberEatsItemAvailability struct {
	ExternalID string `json:"external_id"`
	InStock    bool   `json:"in_stock"`
}

type uberEatsStoreStatusRequest struct {
	Status          string `json:"status"`
	PrepTimeMinutes int    `json:"prep_time_minutes"`
}

// Uber Eats store status values.
const (
	uberEatsStatusOnline  = "ONLINE"
	uberEatsStatusPaused  = "PAUSED"
	uberEatsStatusOffline = "OFFLINE"
)

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

type uberEatsProvisionRequest struct {
	PartnerStoreID string `json:"partner_store_id"`
}

type uberEatsProvisionResponse struct {
	StoreID string `json:"store_id"`
}

// ---------------------------------------------------------------------------
// Webhook events
// ---------------------------------------------------------------------------

// Uber Eats webhook event types.
const (
	uberEatsEventOrderNotify   = "orders.notification"
	uberEatsEventOrderCancel   = "orders.cancel"
	uberEatsEventOrderStatus   = "orders.status_update"
	uberEatsEventMenuPublished = "store.menu_published"
)

// uberEatsEventEnvelope is the common header of every webhook delivery.
type uberEatsEventEnvelope struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Meta      struct {
		StoreID    string `json:"user_id"`
		ResourceID string `json:"resource_id"`
	} `json:"meta"`
}

// uberEatsOrderEvent is the payload of order notifications. The order is
// embedded so translation needs no callback to the platform.
type uberEatsOrderEvent struct {
	uberEatsEventEnvelope
	Order *uberEatsOrder `json:"order"`
}

// uberEatsOrderStatusEvent is the payload of fulfillment status updates.
type uberEatsOrderStatusEvent struct {
	uberEatsEventEnvelope
	Status string `json:"status"`
}

type uberEatsOrder struct {
	ID                  string              `json:"id"`
	DisplayID           string              `json:"display_id"`
	CurrencyCode        string              `json:"currency_code"`
	TotalCents          int64               `json:"total"`
	PlacedAtUnix        int64               `json:"placed_at"`
	SpecialInstructions string              `json:"special_instructions"`
	Eater               uberEatsEater       `json:"eater"`
	Items               []uberEatsOrderItem `json:"cart_items"`
}

type uberEatsEater struct {
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
}

type uberEatsOrderItem struct {
	ExternalID      string   `json:"external_id"`
	Title           string   `json:"title"`
	Quantity        int      `json:"quantity"`
	PriceCents      int64    `json:"price"`
	SelectedOptions []string `json:"selected_options"`
}
