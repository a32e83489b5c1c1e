package platform

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// CredentialState
// ---------------------------------------------------------------------------

// CredentialState is the lifecycle state of a platform credential.
//
// Unprovisioned → Provisioning → Active → (Refreshing → Active) → Revoked.
// Revoked is terminal and reachable from any state; only a full re-provision
// brings a revoked credential back to Active.
type CredentialState string

const (
	CredentialStateUnprovisioned CredentialState = "UNPROVISIONED"
	CredentialStateProvisioning  CredentialState = "PROVISIONING"
	CredentialStateActive        CredentialState = "ACTIVE"
	CredentialStateRefreshing    CredentialState = "REFRESHING"
	CredentialStateRevoked       CredentialState = "REVOKED"
)

// IsValid returns true if the state is a known credential state.
func (s CredentialState) IsValid() bool {
	switch s {
	case CredentialStateUnprovisioned, CredentialStateProvisioning,
		CredentialStateActive, CredentialStateRefreshing, CredentialStateRevoked:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s CredentialState) String() string {
	return string(s)
}

var (
	// ErrInvalidStateTransition is returned for a disallowed lifecycle move.
	ErrInvalidStateTransition = errors.New("platform: invalid credential state transition")
)

// ---------------------------------------------------------------------------
// Credential
// ---------------------------------------------------------------------------

// Credential holds the OAuth material for one (tenant, platform) pair.
//
// Two token classes are kept: the narrow-scope user access token consumed
// once during provisioning, and the broad-scope app access token used for
// routine calls. Token fields are mutated only by the token manager.
type Credential struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	PlatformCode Code

	// UserAccessToken is the narrow-scope provisioning token. It is supplied
	// by a human authorization step, used at most once and never refreshed.
	UserAccessToken string
	// UserTokenConsumed records that provisioning already spent the token.
	UserTokenConsumed bool

	// AppAccessToken is the broad-scope token for daily operational calls.
	AppAccessToken string
	// RefreshToken allows re-acquiring the app token without admin action.
	RefreshToken string
	// AppTokenExpiresAt is the app token expiry reported by the platform.
	AppTokenExpiresAt time.Time
	// Scopes are the OAuth scopes granted to the app token.
	Scopes []string

	State     CredentialState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCredential creates a credential in the Provisioning state holding the
// one-shot user token.
func NewCredential(tenantID uuid.UUID, code Code, userAccessToken string) *Credential {
	now := time.Now()
	return &Credential{
		ID:              uuid.New(),
		TenantID:        tenantID,
		PlatformCode:    code,
		UserAccessToken: userAccessToken,
		State:           CredentialStateProvisioning,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasValidAppToken reports whether the app token may be used for an outbound
// call right now, honoring the expiry skew. A token inside the skew window is
// treated as expired so refresh happens before the call, never as a retry
// heuristic after a failed one.
func (c *Credential) HasValidAppToken(now time.Time, skew time.Duration) bool {
	if c.State != CredentialStateActive {
		return false
	}
	if c.AppAccessToken == "" {
		return false
	}
	return now.Before(c.AppTokenExpiresAt.Add(-skew))
}

// ConsumeUserToken marks the one-shot user token as spent and clears it.
// Returns ErrUserTokenAlreadyConsumed on a second consumption attempt.
func (c *Credential) ConsumeUserToken() (string, error) {
	if c.UserTokenConsumed || c.UserAccessToken == "" {
		return "", ErrUserTokenAlreadyConsumed
	}
	token := c.UserAccessToken
	c.UserAccessToken = ""
	c.UserTokenConsumed = true
	c.UpdatedAt = time.Now()
	return token, nil
}

// Activate installs a freshly acquired app token and moves to Active.
// Allowed from Provisioning and Refreshing.
func (c *Credential) Activate(appToken, refreshToken string, expiresAt time.Time, scopes []string) error {
	switch c.State {
	case CredentialStateProvisioning, CredentialStateRefreshing, CredentialStateActive:
	default:
		return ErrInvalidStateTransition
	}
	c.AppAccessToken = appToken
	if refreshToken != "" {
		c.RefreshToken = refreshToken
	}
	c.AppTokenExpiresAt = expiresAt
	c.Scopes = scopes
	c.State = CredentialStateActive
	c.UpdatedAt = time.Now()
	return nil
}

// BeginRefresh marks the credential as refreshing. Allowed only from Active.
func (c *Credential) BeginRefresh() error {
	if c.State != CredentialStateActive {
		return ErrInvalidStateTransition
	}
	c.State = CredentialStateRefreshing
	c.UpdatedAt = time.Now()
	return nil
}

// FailRefresh returns a refreshing credential to Active without touching the
// token fields, so the bounded-retry policy can surface the failure.
func (c *Credential) FailRefresh() {
	if c.State == CredentialStateRefreshing {
		c.State = CredentialStateActive
		c.UpdatedAt = time.Now()
	}
}

// Revoke moves the credential to the terminal Revoked state and clears all
// token material. Reachable from any state (tenant disconnect, invalid_grant).
func (c *Credential) Revoke() {
	c.State = CredentialStateRevoked
	c.AppAccessToken = ""
	c.RefreshToken = ""
	c.UserAccessToken = ""
	c.AppTokenExpiresAt = time.Time{}
	c.UpdatedAt = time.Now()
}

// IsRevoked returns true if the credential is terminally revoked.
func (c *Credential) IsRevoked() bool {
	return c.State == CredentialStateRevoked
}
