package platform

import (
	"errors"
)

// ---------------------------------------------------------------------------
// Delivery Platform Errors
// ---------------------------------------------------------------------------

var (
	// Webhook boundary errors
	ErrSignatureMissing     = errors.New("platform: webhook signature header missing")
	ErrSignatureInvalid     = errors.New("platform: webhook signature invalid")
	ErrUnsupportedEventType = errors.New("platform: unsupported event type")
	ErrEventMalformed       = errors.New("platform: event payload malformed")

	// Credential / token errors
	ErrCredentialNotFound       = errors.New("platform: credential not found")
	ErrCredentialRevoked        = errors.New("platform: credential revoked")
	ErrReauthorizationRequired  = errors.New("platform: re-authorization by admin required")
	ErrTokenRefreshFailed       = errors.New("platform: token refresh failed")
	ErrUserTokenAlreadyConsumed = errors.New("platform: user access token already consumed")

	// Outbound call errors
	ErrPlatformNotRegistered = errors.New("platform: no adapter registered for platform")
	ErrPlatformUnavailable   = errors.New("platform: platform temporarily unavailable")
	ErrPlatformRateLimited   = errors.New("platform: platform rate limited")
	ErrPlatformAuthFailed    = errors.New("platform: platform rejected credentials")
	ErrPlatformRejected      = errors.New("platform: platform rejected request")
	ErrInvalidResponse       = errors.New("platform: invalid platform response")

	// Store link errors
	ErrStoreLinkNotFound = errors.New("platform: store link not found")
	ErrStoreLinkDisabled = errors.New("platform: store link disabled")
	ErrLinkAlreadyExists = errors.New("platform: store already linked to platform")
)

// IsTransient reports whether an outbound failure may succeed on retry.
// Timeouts, 5xx responses and rate limiting are transient; everything else
// (validation errors, non-auth 4xx) is not.
func IsTransient(err error) bool {
	return errors.Is(err, ErrPlatformUnavailable) || errors.Is(err, ErrPlatformRateLimited)
}

// IsAuthFailure reports whether an outbound failure was an authentication
// rejection (401 / expired-token signal). The caller gets exactly one token
// refresh-and-retry cycle for these before the attempt is fatal.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrPlatformAuthFailed)
}

// ---------------------------------------------------------------------------
// Code identifies an external delivery platform
// ---------------------------------------------------------------------------

// Code identifies an external delivery platform.
type Code string

const (
	// CodeUberEats is the ride-hailing delivery network.
	CodeUberEats Code = "UBEREATS"
	// CodeFoodpanda is the food-delivery aggregator.
	CodeFoodpanda Code = "FOODPANDA"
)

// IsValid returns true if the platform code is a known platform.
func (c Code) IsValid() bool {
	switch c {
	case CodeUberEats, CodeFoodpanda:
		return true
	default:
		return false
	}
}

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// ParseCode converts a route/path segment into a platform Code.
func ParseCode(s string) (Code, bool) {
	switch Code(s) {
	case CodeUberEats, CodeFoodpanda:
		return Code(s), true
	default:
		return "", false
	}
}

// ---------------------------------------------------------------------------
// StoreStatus represents the operational state pushed to a platform
// ---------------------------------------------------------------------------

// StoreStatus is the operational state of a store on a platform.
type StoreStatus string

const (
	StoreStatusOnline  StoreStatus = "ONLINE"
	StoreStatusBusy    StoreStatus = "BUSY"
	StoreStatusOffline StoreStatus = "OFFLINE"
)

// IsValid returns true if the status is a known store status.
func (s StoreStatus) IsValid() bool {
	switch s {
	case StoreStatusOnline, StoreStatusBusy, StoreStatusOffline:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s StoreStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// SyncOperation identifies what is being propagated to the platforms
// ---------------------------------------------------------------------------

// SyncOperation identifies the kind of outbound synchronization.
type SyncOperation string

const (
	SyncOperationMenu      SyncOperation = "menu"
	SyncOperationInventory SyncOperation = "inventory"
	SyncOperationStatus    SyncOperation = "status"
)

// IsValid returns true if the operation is a known sync operation.
func (o SyncOperation) IsValid() bool {
	switch o {
	case SyncOperationMenu, SyncOperationInventory, SyncOperationStatus:
		return true
	default:
		return false
	}
}

// String returns the string representation of the operation.
func (o SyncOperation) String() string {
	return string(o)
}
