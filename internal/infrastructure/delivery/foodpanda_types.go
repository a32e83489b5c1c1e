package delivery

// Wire types for the foodpanda partner API. Prices travel as decimal strings
// and object keys are camelCase, unlike Uber Eats.

// ---------------------------------------------------------------------------
// Catalog import
// ---------------------------------------------------------------------------

// foodpandaCatalogRequest is the full-catalog import body. Imports are
// keyed by remoteId, so re-importing the same snapshot is an upsert.
type foodpandaCatalogRequest struct {
	CatalogName string              `json:"catalogName"`
	Categories  []foodpandaCategory `json:"categories"`
}

type foodpandaCategory struct {
	RemoteID    string             `json:"remoteId"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Products    []foodpandaProduct `json:"products"`
}

type foodpandaProduct struct {
	RemoteID    string            `json:"remoteId"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Price       string            `json:"price"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	Active      bool              `json:"active"`
	Toppings    []foodpandaOption `json:"toppings,omitempty"`
}

type foodpandaOption struct {
	RemoteID string `json:"remoteId"`
	Name     string `json:"name"`
	Price    string `json:"price"`
}

// ---------------------------------------------------------------------------
// Availability and restaurant status
// ---------------------------------------------------------------------------

type foodpandaAvailabilityRequest struct {
	Products []foodpandaProductAvailability `json:"products"`
}

type foodpandaProductAvailability struct {
	RemoteID  string `json:"remoteId"`
	Available bool   `json:"available"`
}

type foodpandaStatusRequest struct {
	Availability    string `json:"availabilityState"`
	PreparationTime int    `json:"preparationTimeMinutes"`
}

// foodpanda restaurant availability states.
const (
	foodpandaStateOpen   = "OPEN"
	foodpandaStateBusy   = "BUSY"
	foodpandaStateClosed = "CLOSED"
)

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

type foodpandaProvisionRequest struct {
	RemoteRestaurantID string `json:"remoteRestaurantId"`
}

type foodpandaProvisionResponse struct {
	PlatformRestaurantID string `json:"platformRestaurantId"`
}

// ---------------------------------------------------------------------------
// Webhook events
// ---------------------------------------------------------------------------

// foodpanda webhook event names.
const (
	foodpandaEventOrderPlaced    = "order.placed"
	foodpandaEventOrderCancelled = "order.cancelled"
	foodpandaEventCatalogDone    = "catalog.import_finished"
)

// foodpandaEventEnvelope is the common header of every webhook delivery.
type foodpandaEventEnvelope struct {
	EventID              string `json:"eventId"`
	Event                string `json:"event"`
	PlatformRestaurantID string `json:"platformRestaurantId"`
}

// foodpandaOrderEvent is the payload of order notifications.
type foodpandaOrderEvent struct {
	foodpandaEventEnvelope
	Order *foodpandaOrder `json:"order"`
}

type foodpandaOrder struct {
	Token        string               `json:"token"`
	Code         string               `json:"code"`
	Comments     string               `json:"comments"`
	Currency     string               `json:"currency"`
	TotalPrice   string               `json:"totalPrice"`
	CreatedAtRFC string               `json:"createdAt"`
	Customer     foodpandaCustomer    `json:"customer"`
	Products     []foodpandaOrderItem `json:"products"`
}

type foodpandaCustomer struct {
	Name        string `json:"name"`
	MobilePhone string `json:"mobilePhone"`
}

type foodpandaOrderItem struct {
	RemoteID         string   `json:"remoteId"`
	Name             string   `json:"name"`
	Quantity         int      `json:"quantity"`
	UnitPrice        string   `json:"unitPrice"`
	SelectedToppings []string `json:"selectedToppings"`
}
