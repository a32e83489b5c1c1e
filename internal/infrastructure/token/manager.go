package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/logger"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/signature"
)

// Default tuning for the token lifecycle.
const (
	// defaultExpirySkew treats tokens this close to expiry as already
	// expired, so refresh happens before an outbound call instead of as a
	// reaction to its failure.
	defaultExpirySkew = 5 * time.Minute
	// refreshBaseInterval is the first backoff delay between refresh attempts.
	refreshBaseInterval = 1 * time.Second
	// refreshMaxAttempts bounds refresh attempts per credential per cycle.
	refreshMaxAttempts = 3
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithExpirySkew overrides the expiry skew window.
func WithExpirySkew(skew time.Duration) ManagerOption {
	return func(m *Manager) { m.skew = skew }
}

// WithRetryInterval overrides the base delay between refresh attempts.
func WithRetryInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) { m.retryInterval = interval }
}

// Manager implements platform.TokenManager. It is the single writer of token
// fields on credentials; concurrent refreshes for the same credential are
// collapsed into one upstream call through a singleflight group.
type Manager struct {
	credentials platform.CredentialRepository
	links       platform.StoreLinkRepository
	registry    platform.Registry
	exchangers  map[platform.Code]platform.TokenExchanger
	keyRing     *signature.KeyRing
	logger      *zap.Logger

	skew          time.Duration
	retryInterval time.Duration
	refresh       singleflight.Group
}

// NewManager creates a token manager.
func NewManager(
	credentials platform.CredentialRepository,
	links platform.StoreLinkRepository,
	registry platform.Registry,
	exchangers map[platform.Code]platform.TokenExchanger,
	keyRing *signature.KeyRing,
	logger *zap.Logger,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		credentials:   credentials,
		links:         links,
		registry:      registry,
		exchangers:    exchangers,
		keyRing:       keyRing,
		logger:        logger,
		skew:          defaultExpirySkew,
		retryInterval: refreshBaseInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// log returns the manager logger enriched with the request ids carried by ctx.
func (m *Manager) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, m.logger)
}

func refreshKey(tenantID uuid.UUID, code platform.Code) string {
	return tenantID.String() + ":" + string(code)
}

// ---------------------------------------------------------------------------
// App token acquisition
// ---------------------------------------------------------------------------

// GetAppToken returns a usable app token, refreshing first when the cached
// one is expired or inside the skew window.
func (m *Manager) GetAppToken(ctx context.Context, tenantID uuid.UUID, code platform.Code) (platform.AccessToken, error) {
	cred, err := m.credentials.FindByTenantAndPlatform(ctx, tenantID, code)
	if err != nil {
		return "", err
	}
	if cred.IsRevoked() {
		return "", platform.ErrCredentialRevoked
	}
	if cred.HasValidAppToken(time.Now(), m.skew) {
		return platform.AccessToken(cred.AppAccessToken), nil
	}
	return m.sharedRefresh(ctx, tenantID, code, false)
}

// ForceRefresh discards the cached token and refreshes unconditionally. The
// sync path calls this exactly once after a platform auth rejection.
func (m *Manager) ForceRefresh(ctx context.Context, tenantID uuid.UUID, code platform.Code) (platform.AccessToken, error) {
	return m.sharedRefresh(ctx, tenantID, code, true)
}

// sharedRefresh funnels all refreshes for one credential through a single
// in-flight upstream call. Callers that arrive while a refresh is running
// receive its result instead of issuing their own.
func (m *Manager) sharedRefresh(ctx context.Context, tenantID uuid.UUID, code platform.Code, force bool) (platform.AccessToken, error) {
	result, err, _ := m.refresh.Do(refreshKey(tenantID, code), func() (interface{}, error) {
		// Re-read inside the flight: a caller that queued behind a finished
		// refresh should use its result, not trigger another one.
		cred, err := m.credentials.FindByTenantAndPlatform(ctx, tenantID, code)
		if err != nil {
			return nil, err
		}
		if cred.IsRevoked() {
			return nil, platform.ErrCredentialRevoked
		}
		if !force && cred.HasValidAppToken(time.Now(), m.skew) {
			return platform.AccessToken(cred.AppAccessToken), nil
		}
		return m.refreshCredential(ctx, cred)
	})
	if err != nil {
		return "", err
	}
	return result.(platform.AccessToken), nil
}

// refreshCredential performs one bounded refresh cycle against the platform
// token endpoint and persists the outcome.
func (m *Manager) refreshCredential(ctx context.Context, cred *platform.Credential) (platform.AccessToken, error) {
	exchanger, ok := m.exchangers[cred.PlatformCode]
	if !ok {
		return "", platform.ErrPlatformNotRegistered
	}

	if cred.State == platform.CredentialStateActive {
		if err := cred.BeginRefresh(); err != nil {
			return "", err
		}
	}

	grant, err := m.refreshWithBackoff(ctx, exchanger, cred.RefreshToken)
	if err != nil {
		if errors.Is(err, platform.ErrReauthorizationRequired) {
			// The refresh token itself was rejected. Revoke so every later
			// call fails fast until the tenant re-provisions.
			cred.Revoke()
			if saveErr := m.credentials.Save(ctx, cred); saveErr != nil {
				m.log(ctx).Error("failed to persist credential revocation",
					zap.String("tenant_id", cred.TenantID.String()),
					zap.String("platform", string(cred.PlatformCode)),
					zap.Error(saveErr))
			}
			m.log(ctx).Warn("refresh token rejected, credential revoked",
				zap.String("tenant_id", cred.TenantID.String()),
				zap.String("platform", string(cred.PlatformCode)))
			return "", err
		}
		cred.FailRefresh()
		if saveErr := m.credentials.Save(ctx, cred); saveErr != nil {
			m.log(ctx).Error("failed to persist refresh failure",
				zap.String("tenant_id", cred.TenantID.String()),
				zap.Error(saveErr))
		}
		return "", fmt.Errorf("%w: %v", platform.ErrTokenRefreshFailed, err)
	}

	if err := cred.Activate(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt, grant.Scopes); err != nil {
		return "", err
	}
	if err := m.credentials.Save(ctx, cred); err != nil {
		return "", fmt.Errorf("token: failed to persist refreshed credential: %w", err)
	}

	m.log(ctx).Info("app token refreshed",
		zap.String("tenant_id", cred.TenantID.String()),
		zap.String("platform", string(cred.PlatformCode)),
		zap.Time("expires_at", grant.ExpiresAt))
	return platform.AccessToken(grant.AccessToken), nil
}

// refreshWithBackoff retries the refresh grant on transient failures only,
// with exponential backoff and jitter. Auth rejections abort immediately.
func (m *Manager) refreshWithBackoff(ctx context.Context, exchanger platform.TokenExchanger, refreshToken string) (*platform.TokenGrant, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.retryInterval
	policy.Multiplier = 2

	var grant *platform.TokenGrant
	operation := func() error {
		g, err := exchanger.Refresh(ctx, refreshToken)
		if err != nil {
			if platform.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		grant = g
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, refreshMaxAttempts-1), ctx))
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, permanent.Err
		}
		return nil, err
	}
	return grant, nil
}

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

// Provision runs the one-time connect flow for a tenant's store: spend the
// narrow-scope user token on store registration, then acquire the broad-scope
// app token, persisting credential and store link.
func (m *Manager) Provision(ctx context.Context, tenantID uuid.UUID, code platform.Code, userAccessToken string, storeID uuid.UUID) (*platform.Credential, *platform.StoreLink, error) {
	adapter, err := m.registry.Get(code)
	if err != nil {
		return nil, nil, err
	}
	exchanger, ok := m.exchangers[code]
	if !ok {
		return nil, nil, platform.ErrPlatformNotRegistered
	}

	if existing, err := m.links.FindByStoreAndPlatform(ctx, storeID, code); err == nil && existing != nil {
		return nil, nil, platform.ErrLinkAlreadyExists
	} else if err != nil && !errors.Is(err, platform.ErrStoreLinkNotFound) {
		return nil, nil, err
	}

	cred := platform.NewCredential(tenantID, code, userAccessToken)
	if prior, err := m.credentials.FindByTenantAndPlatform(ctx, tenantID, code); err == nil {
		// Re-provisioning after revocation reuses the row identity so the
		// (tenant, platform) uniqueness constraint holds.
		cred.ID = prior.ID
		cred.CreatedAt = prior.CreatedAt
	} else if !errors.Is(err, platform.ErrCredentialNotFound) {
		return nil, nil, err
	}

	userToken, err := cred.ConsumeUserToken()
	if err != nil {
		return nil, nil, err
	}
	// Persist the consumption before using the token, so a crash mid-flow
	// can never lead to the one-shot token being spent twice.
	if err := m.credentials.Save(ctx, cred); err != nil {
		return nil, nil, fmt.Errorf("token: failed to persist credential: %w", err)
	}

	platformStoreID, err := adapter.RegisterStore(ctx, userToken, storeID)
	if err != nil {
		m.log(ctx).Warn("store registration failed, re-authorization needed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("platform", string(code)),
			zap.Error(err))
		return nil, nil, fmt.Errorf("token: store registration failed: %w", err)
	}

	grant, err := exchanger.ClientCredentials(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("token: app token acquisition failed: %w", err)
	}
	if err := cred.Activate(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt, grant.Scopes); err != nil {
		return nil, nil, err
	}
	if err := m.credentials.Save(ctx, cred); err != nil {
		return nil, nil, fmt.Errorf("token: failed to persist credential: %w", err)
	}

	link := platform.NewStoreLink(tenantID, storeID, code, platformStoreID)
	if err := m.links.Save(ctx, link); err != nil {
		return nil, nil, fmt.Errorf("token: failed to persist store link: %w", err)
	}

	m.log(ctx).Info("platform provisioned",
		zap.String("tenant_id", tenantID.String()),
		zap.String("platform", string(code)),
		zap.String("platform_store_id", platformStoreID))
	return cred, link, nil
}

// Disconnect revokes and removes the credential together with the tenant's
// store links on that platform.
func (m *Manager) Disconnect(ctx context.Context, tenantID uuid.UUID, code platform.Code) error {
	cred, err := m.credentials.FindByTenantAndPlatform(ctx, tenantID, code)
	if err != nil {
		return err
	}
	cred.Revoke()
	if err := m.credentials.Save(ctx, cred); err != nil {
		return fmt.Errorf("token: failed to persist revocation: %w", err)
	}
	if err := m.links.DeleteByTenantAndPlatform(ctx, tenantID, code); err != nil {
		return fmt.Errorf("token: failed to remove store links: %w", err)
	}
	if err := m.credentials.Delete(ctx, tenantID, code); err != nil {
		return fmt.Errorf("token: failed to remove credential: %w", err)
	}

	m.log(ctx).Info("platform disconnected",
		zap.String("tenant_id", tenantID.String()),
		zap.String("platform", string(code)))
	return nil
}

// RotateSecret installs a new webhook signing secret into the verification
// key ring's secondary slot.
func (m *Manager) RotateSecret(code platform.Code, newSecret string) {
	m.keyRing.Rotate(code, newSecret)
	m.logger.Info("webhook signing secret rotated", zap.String("platform", string(code)))
}

// Ensure Manager implements TokenManager.
var _ platform.TokenManager = (*Manager)(nil)
