package platform

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Inbound events
// ---------------------------------------------------------------------------

// InboundEvent is the envelope of a platform webhook notification, decoded
// just far enough to identify it for the dedup ledger. The platform-specific
// payload stays raw until translation.
type InboundEvent struct {
	PlatformCode Code
	// EventID is the platform-issued identifier used for at-most-once
	// processing.
	EventID string
	// EventType is the platform's own event kind string.
	EventType string
	// Payload is the raw JSON body exactly as received on the wire.
	Payload []byte
	// ReceivedAt is when this process first saw the event.
	ReceivedAt time.Time
}

// EventOutcome records how an event fared at the webhook boundary.
type EventOutcome string

const (
	EventOutcomeAccepted EventOutcome = "accepted"
	EventOutcomeRejected EventOutcome = "rejected"
)

// ProcessedEvent is one row of the dedup ledger: created when an event passes
// signature verification, never updated, garbage-collected after the
// platform's bounded replay window.
type ProcessedEvent struct {
	PlatformCode Code
	EventID      string
	ReceivedAt   time.Time
	Outcome      EventOutcome
}

// ---------------------------------------------------------------------------
// Domain commands
// ---------------------------------------------------------------------------

// CommandKind is the internal command an inbound event translates to.
type CommandKind string

const (
	CommandCreateOrder       CommandKind = "CREATE_ORDER"
	CommandCancelOrder       CommandKind = "CANCEL_ORDER"
	CommandUpdateOrderStatus CommandKind = "UPDATE_ORDER_STATUS"
	CommandMenuPublished     CommandKind = "MENU_PUBLISHED"
)

// DomainCommand is the pure translation of a platform event into the
// application's own vocabulary. Executing it is the single side effect of the
// inbound path and happens only after dedup admission.
type DomainCommand struct {
	Kind         CommandKind
	PlatformCode Code
	EventID      string
	// PlatformStoreID identifies the store on the platform's side; the
	// command sink resolves it to a local store through the link table.
	PlatformStoreID string
	Order           *PlatformOrder
	// PlatformOrderID is set for order-scoped commands other than create.
	PlatformOrderID string
	Detail          string
}

// PlatformOrder is an order as reported by a delivery platform, already
// translated out of the platform's wire format.
type PlatformOrder struct {
	PlatformOrderID string
	PlatformCode    Code
	DisplayID       string
	CustomerName    string
	CustomerPhone   string
	Note            string
	Total           decimal.Decimal
	Currency        string
	Items           []PlatformOrderItem
	PlacedAt        time.Time
}

// PlatformOrderItem is one line of a platform order.
type PlatformOrderItem struct {
	ItemExternalID string
	Name           string
	Quantity       int
	UnitPrice      decimal.Decimal
	Options        []string
}

// OrderCommandResult reports what the command sink did with an accepted
// order, so no inbound effect is fire-and-forget.
type OrderCommandResult struct {
	LocalOrderID uuid.UUID
	Printed      bool
	AutoAccepted bool
}
