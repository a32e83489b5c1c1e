package platform

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// DeliveryPlatform Port Interface
// ---------------------------------------------------------------------------

// AccessToken is a bearer token handed to adapters by the token manager.
// Adapters never cache it; every call fetches a fresh handle.
type AccessToken string

// DeliveryPlatform is the port interface every delivery marketplace adapter
// implements. It is defined in the domain layer following the Ports &
// Adapters pattern; concrete implementations (Uber Eats, foodpanda) live in
// the infrastructure layer and are registered in a Registry at startup.
type DeliveryPlatform interface {
	// Code returns the platform this adapter handles.
	Code() Code

	// ---------------------------------------------------------------------------
	// Outbound operations
	// ---------------------------------------------------------------------------

	// PushMenu translates the internal menu into the platform's catalog
	// schema and upserts it. Submitting the same menu twice must produce the
	// same remote state, not duplicate entries.
	PushMenu(ctx context.Context, token AccessToken, link *StoreLink, menu *Menu) error

	// PushInventory marks items sold-out or available. Platform batching
	// limits are chunked transparently by the adapter.
	PushInventory(ctx context.Context, token AccessToken, link *StoreLink, deltas []AvailabilityDelta) error

	// SetStoreStatus pushes the operational status (online/busy/offline)
	// together with the quoted prep time.
	SetStoreStatus(ctx context.Context, token AccessToken, link *StoreLink, status StoreStatus) error

	// AcceptOrder confirms an inbound order back to the platform. Used by
	// the command sink when the store link has auto-accept enabled.
	AcceptOrder(ctx context.Context, token AccessToken, link *StoreLink, platformOrderID string) error

	// ---------------------------------------------------------------------------
	// Provisioning
	// ---------------------------------------------------------------------------

	// RegisterStore performs the one-time store registration using the
	// narrow-scope user access token and returns the platform's store id.
	// The user token is spent by this call and never retried.
	RegisterStore(ctx context.Context, userAccessToken string, storeID uuid.UUID) (string, error)

	// ---------------------------------------------------------------------------
	// Inbound events
	// ---------------------------------------------------------------------------

	// ParseEvent decodes only the event envelope (id, type) from the raw
	// webhook body so the dedup ledger can be consulted before anything else
	// happens. Returns ErrEventMalformed if the envelope cannot be read.
	ParseEvent(payload []byte) (*InboundEvent, error)

	// HandleInboundEvent is the pure translation of a platform event into an
	// internal command. It performs no I/O and raises ErrUnsupportedEventType
	// for event kinds not yet modeled, which the webhook router acknowledges
	// without acting.
	HandleInboundEvent(event *InboundEvent) (*DomainCommand, error)
}

// Registry provides access to the configured platform adapters. Adapters are
// registered once at startup; call sites never branch on platform names.
type Registry interface {
	// Get returns the adapter for the given code, or ErrPlatformNotRegistered.
	Get(code Code) (DeliveryPlatform, error)

	// All returns every registered adapter.
	All() []DeliveryPlatform
}

// ---------------------------------------------------------------------------
// Token management
// ---------------------------------------------------------------------------

// TokenManager owns the OAuth lifecycle for platform credentials. It is the
// only component allowed to mutate token fields.
type TokenManager interface {
	// GetAppToken returns a cached app token while it is valid (expiry minus
	// skew), refreshing it otherwise. Concurrent callers during a refresh
	// share the single in-flight refresh rather than issuing their own.
	GetAppToken(ctx context.Context, tenantID uuid.UUID, code Code) (AccessToken, error)

	// ForceRefresh discards the cached token and refreshes immediately.
	// Used for the single refresh-and-retry cycle after an auth rejection.
	ForceRefresh(ctx context.Context, tenantID uuid.UUID, code Code) (AccessToken, error)

	// Provision runs the one-time flow: spend the user token on store
	// registration, then obtain the broad-scope app token, persisting both.
	Provision(ctx context.Context, tenantID uuid.UUID, code Code, userAccessToken string, storeID uuid.UUID) (*Credential, *StoreLink, error)

	// Disconnect revokes the credential and deletes it together with the
	// store links for the tenant on that platform.
	Disconnect(ctx context.Context, tenantID uuid.UUID, code Code) error

	// RotateSecret installs a new webhook signing secret into the secondary
	// slot used by the signature verifier (not an OAuth operation).
	RotateSecret(code Code, newSecret string)
}

// TokenGrant is the result of an OAuth token endpoint call.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scopes       []string
}

// TokenExchanger talks to one platform's OAuth token endpoint. Implemented in
// infrastructure; injected into the token manager per platform.
type TokenExchanger interface {
	// ClientCredentials performs the client-credentials (or equivalent)
	// grant that yields the broad-scope app token.
	ClientCredentials(ctx context.Context) (*TokenGrant, error)

	// Refresh exchanges a refresh token for a fresh app token. An
	// invalid_grant response surfaces as ErrReauthorizationRequired and is
	// unrecoverable without re-provisioning.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)
}

// ---------------------------------------------------------------------------
// Dedup ledger
// ---------------------------------------------------------------------------

// DedupStore is the processed-event ledger enforcing at-most-once side
// effects. The conditional insert is the sole source of truth; callers must
// not layer check-then-insert logic on top.
type DedupStore interface {
	// Admit atomically records the event. It returns true exactly once per
	// (platform, event id) within the retention window; every other call
	// returns false with no error.
	Admit(ctx context.Context, event *ProcessedEvent) (bool, error)

	// PurgeOlderThan garbage-collects ledger entries outside the platform
	// replay window.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases store resources.
	Close() error
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// CredentialRepository persists platform credentials.
type CredentialRepository interface {
	FindByTenantAndPlatform(ctx context.Context, tenantID uuid.UUID, code Code) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
	Delete(ctx context.Context, tenantID uuid.UUID, code Code) error
}

// StoreLinkRepository persists store-to-platform links.
type StoreLinkRepository interface {
	FindByStoreAndPlatform(ctx context.Context, storeID uuid.UUID, code Code) (*StoreLink, error)
	FindByPlatformStoreID(ctx context.Context, code Code, platformStoreID string) (*StoreLink, error)
	FindEnabledByStore(ctx context.Context, storeID uuid.UUID) ([]StoreLink, error)
	FindAllByStore(ctx context.Context, storeID uuid.UUID) ([]StoreLink, error)
	Save(ctx context.Context, link *StoreLink) error
	DeleteByTenantAndPlatform(ctx context.Context, tenantID uuid.UUID, code Code) error
}

// ---------------------------------------------------------------------------
// Collaborator sinks
// ---------------------------------------------------------------------------

// CommandSink executes translated domain commands. The surrounding ordering
// application provides the real implementation; this layer only guarantees
// the sink fires at most once per event.
type CommandSink interface {
	Dispatch(ctx context.Context, cmd *DomainCommand) (*OrderCommandResult, error)
}

// PrinterSink receives a finalized order for receipt printing. Consumed as an
// external collaborator: failures are reported back but never propagate to
// the platform acknowledgment.
type PrinterSink interface {
	PrintOrder(ctx context.Context, order *PlatformOrder) error
}
