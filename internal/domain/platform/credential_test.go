package platform

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential(t *testing.T) {
	tenantID := uuid.New()
	cred := NewCredential(tenantID, CodeUberEats, "user-token-abc")

	assert.Equal(t, tenantID, cred.TenantID)
	assert.Equal(t, CodeUberEats, cred.PlatformCode)
	assert.Equal(t, CredentialStateProvisioning, cred.State)
	assert.Equal(t, "user-token-abc", cred.UserAccessToken)
	assert.False(t, cred.UserTokenConsumed)
}

func TestCredential_HasValidAppToken(t *testing.T) {
	now := time.Now()
	skew := 2 * time.Minute

	tests := []struct {
		name string
		cred *Credential
		want bool
	}{
		{
			name: "active token well inside expiry",
			cred: &Credential{
				State:             CredentialStateActive,
				AppAccessToken:    "app-token",
				AppTokenExpiresAt: now.Add(time.Hour),
			},
			want: true,
		},
		{
			name: "token inside skew window counts as expired",
			cred: &Credential{
				State:             CredentialStateActive,
				AppAccessToken:    "app-token",
				AppTokenExpiresAt: now.Add(time.Minute),
			},
			want: false,
		},
		{
			name: "expired token",
			cred: &Credential{
				State:             CredentialStateActive,
				AppAccessToken:    "app-token",
				AppTokenExpiresAt: now.Add(-time.Minute),
			},
			want: false,
		},
		{
			name: "empty token",
			cred: &Credential{
				State:             CredentialStateActive,
				AppTokenExpiresAt: now.Add(time.Hour),
			},
			want: false,
		},
		{
			name: "revoked credential never yields a token",
			cred: &Credential{
				State:             CredentialStateRevoked,
				AppAccessToken:    "app-token",
				AppTokenExpiresAt: now.Add(time.Hour),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.HasValidAppToken(now, skew))
		})
	}
}

func TestCredential_ConsumeUserToken(t *testing.T) {
	cred := NewCredential(uuid.New(), CodeFoodpanda, "one-shot")

	token, err := cred.ConsumeUserToken()
	require.NoError(t, err)
	assert.Equal(t, "one-shot", token)
	assert.True(t, cred.UserTokenConsumed)
	assert.Empty(t, cred.UserAccessToken)

	// Second consumption is rejected: the user token is used at most once.
	_, err = cred.ConsumeUserToken()
	assert.ErrorIs(t, err, ErrUserTokenAlreadyConsumed)
}

func TestCredential_Lifecycle(t *testing.T) {
	cred := NewCredential(uuid.New(), CodeUberEats, "user-token")

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, cred.Activate("app-token", "refresh-token", expiresAt, []string{"eats.store", "eats.order"}))
	assert.Equal(t, CredentialStateActive, cred.State)
	assert.Equal(t, "app-token", cred.AppAccessToken)
	assert.Equal(t, "refresh-token", cred.RefreshToken)

	require.NoError(t, cred.BeginRefresh())
	assert.Equal(t, CredentialStateRefreshing, cred.State)

	// Refresh keeps the previous refresh token when the grant omits one.
	require.NoError(t, cred.Activate("app-token-2", "", expiresAt.Add(time.Hour), nil))
	assert.Equal(t, CredentialStateActive, cred.State)
	assert.Equal(t, "app-token-2", cred.AppAccessToken)
	assert.Equal(t, "refresh-token", cred.RefreshToken)
}

func TestCredential_BeginRefresh_InvalidFromProvisioning(t *testing.T) {
	cred := NewCredential(uuid.New(), CodeUberEats, "user-token")
	assert.ErrorIs(t, cred.BeginRefresh(), ErrInvalidStateTransition)
}

func TestCredential_FailRefresh(t *testing.T) {
	cred := NewCredential(uuid.New(), CodeUberEats, "user-token")
	require.NoError(t, cred.Activate("app-token", "refresh", time.Now().Add(time.Hour), nil))
	require.NoError(t, cred.BeginRefresh())

	cred.FailRefresh()
	assert.Equal(t, CredentialStateActive, cred.State)
	// Token fields are untouched so the expiry check still governs reuse.
	assert.Equal(t, "app-token", cred.AppAccessToken)
}

func TestCredential_Revoke(t *testing.T) {
	cred := NewCredential(uuid.New(), CodeUberEats, "user-token")
	require.NoError(t, cred.Activate("app-token", "refresh", time.Now().Add(time.Hour), nil))

	cred.Revoke()
	assert.True(t, cred.IsRevoked())
	assert.Empty(t, cred.AppAccessToken)
	assert.Empty(t, cred.RefreshToken)
	assert.Empty(t, cred.UserAccessToken)

	// Revoked is terminal: no activation without re-provisioning.
	err := cred.Activate("new-token", "", time.Now().Add(time.Hour), nil)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCredentialState_IsValid(t *testing.T) {
	for _, s := range []CredentialState{
		CredentialStateUnprovisioned, CredentialStateProvisioning,
		CredentialStateActive, CredentialStateRefreshing, CredentialStateRevoked,
	} {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, CredentialState("DANGLING").IsValid())
}
