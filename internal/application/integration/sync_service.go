package integration

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/logger"
)

// Default tuning for the sync orchestrator.
const (
	// syncMaxAttempts bounds platform calls per attempt, including retries.
	syncMaxAttempts = 3
	// syncBaseInterval is the first backoff delay between retries.
	syncBaseInterval = 1 * time.Second
)

// MenuSource supplies the store's current menu state to push. The
// surrounding ordering application implements it; the orchestrator only
// needs a snapshot per operation.
type MenuSource interface {
	// MenuForStore returns the publishable menu snapshot for a store.
	MenuForStore(ctx context.Context, storeID uuid.UUID) (*platform.Menu, error)
	// AvailabilityForStore returns the current item availability deltas.
	AvailabilityForStore(ctx context.Context, storeID uuid.UUID) ([]platform.AvailabilityDelta, error)
}

// SyncServiceOption configures a SyncService.
type SyncServiceOption func(*SyncService)

// WithSyncRetryInterval overrides the base retry delay.
func WithSyncRetryInterval(interval time.Duration) SyncServiceOption {
	return func(s *SyncService) { s.baseInterval = interval }
}

// SyncService pushes menu, inventory and store status to every platform a
// store is linked to. Platforms are independent: one failing never stops the
// others, and the per-platform outcome map is the result, not an error.
//
// Attempts for the same (platform, store) are serialized through a keyed
// slot; a request that queues behind a newer one for the same key is
// coalesced away (latest wins).
type SyncService struct {
	links    platform.StoreLinkRepository
	registry platform.Registry
	tokens   platform.TokenManager
	menus    MenuSource
	logger   *zap.Logger

	baseInterval time.Duration

	mu    sync.Mutex
	slots map[string]*syncSlot
}

// syncSlot serializes sync attempts for one (platform, store) pair. The
// ticket counter implements latest-wins: a holder whose ticket is stale by
// the time it acquires the lock yields without calling the platform.
type syncSlot struct {
	mu     sync.Mutex
	latest uint64
}

// NewSyncService creates a sync orchestrator.
func NewSyncService(
	links platform.StoreLinkRepository,
	registry platform.Registry,
	tokens platform.TokenManager,
	menus MenuSource,
	logger *zap.Logger,
	opts ...SyncServiceOption,
) *SyncService {
	s := &SyncService{
		links:        links,
		registry:     registry,
		tokens:       tokens,
		menus:        menus,
		logger:       logger,
		baseInterval: syncBaseInterval,
		slots:        make(map[string]*syncSlot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log returns the service logger enriched with the request ids carried by ctx.
func (s *SyncService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}

// ---------------------------------------------------------------------------
// Fan-out
// ---------------------------------------------------------------------------

// SyncAll pushes one operation to every enabled platform link of the store,
// concurrently and independently. The returned map has one entry per link;
// partial failure shows up as FAILURE entries, never as an error return.
func (s *SyncService) SyncAll(ctx context.Context, storeID uuid.UUID, op platform.SyncOperation) (map[platform.Code]platform.SyncAttemptResult, error) {
	links, err := s.links.FindEnabledByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	results := make(map[platform.Code]platform.SyncAttemptResult, len(links))
	var resultsMu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	for i := range links {
		link := links[i]
		group.Go(func() error {
			result := s.syncOne(groupCtx, &link, op)
			resultsMu.Lock()
			results[link.PlatformCode] = result
			resultsMu.Unlock()
			// Failures are data in the result map, never group errors that
			// would cancel sibling platforms.
			return nil
		})
	}
	_ = group.Wait()

	return results, nil
}

// SyncOne pushes one operation to a single platform link.
func (s *SyncService) SyncOne(ctx context.Context, storeID uuid.UUID, code platform.Code, op platform.SyncOperation) (platform.SyncAttemptResult, error) {
	link, err := s.links.FindByStoreAndPlatform(ctx, storeID, code)
	if err != nil {
		return platform.SyncAttemptResult{}, err
	}
	if !link.SyncEnabled {
		return platform.SyncAttemptResult{}, platform.ErrStoreLinkDisabled
	}
	return s.syncOne(ctx, link, op), nil
}

// GetSyncStatus reports the per-platform link health for operator UIs.
func (s *SyncService) GetSyncStatus(ctx context.Context, storeID uuid.UUID) ([]platform.SyncStatus, error) {
	links, err := s.links.FindAllByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	statuses := make([]platform.SyncStatus, 0, len(links))
	for _, link := range links {
		statuses = append(statuses, platform.SyncStatus{
			PlatformCode:   link.PlatformCode,
			Status:         link.Status,
			SyncEnabled:    link.SyncEnabled,
			LastMenuSyncAt: link.LastMenuSyncAt,
			LastSyncStatus: link.LastSyncStatus,
			LastSyncError:  link.LastSyncError,
		})
	}
	return statuses, nil
}

// ---------------------------------------------------------------------------
// Single-link execution
// ---------------------------------------------------------------------------

func slotKey(code platform.Code, storeID uuid.UUID) string {
	return string(code) + ":" + storeID.String()
}

// claimTicket registers intent to sync a key and returns the slot plus this
// request's ticket number.
func (s *SyncService) claimTicket(key string) (*syncSlot, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[key]
	if !ok {
		slot = &syncSlot{}
		s.slots[key] = slot
	}
	slot.latest++
	return slot, slot.latest
}

// isLatest reports whether ticket is still the newest claim for the slot.
func (s *SyncService) isLatest(slot *syncSlot, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slot.latest == ticket
}

func (s *SyncService) syncOne(ctx context.Context, link *platform.StoreLink, op platform.SyncOperation) platform.SyncAttemptResult {
	result := platform.SyncAttemptResult{
		PlatformCode: link.PlatformCode,
		StoreID:      link.StoreID,
		Operation:    op,
	}

	slot, ticket := s.claimTicket(slotKey(link.PlatformCode, link.StoreID))
	slot.mu.Lock()
	defer slot.mu.Unlock()

	// A newer request arrived while this one waited for the slot; the newer
	// snapshot supersedes this one.
	if !s.isLatest(slot, ticket) {
		result.Outcome = platform.SyncOutcomeSkipped
		result.ErrorDetail = "superseded by a newer sync request"
		result.CompletedAt = time.Now()
		return result
	}

	attempts, err := s.execute(ctx, link, op)
	result.Attempts = attempts
	result.CompletedAt = time.Now()

	// Re-read the link: an admin may have disabled sync while the platform
	// call was in flight. The call finished, its result is discarded.
	current, loadErr := s.links.FindByStoreAndPlatform(ctx, link.StoreID, link.PlatformCode)
	if loadErr != nil || !current.SyncEnabled {
		result.Outcome = platform.SyncOutcomeSkipped
		result.ErrorDetail = "link disabled during sync"
		s.log(ctx).Info("sync result discarded, link disabled mid-flight",
			zap.String("platform", string(link.PlatformCode)),
			zap.String("store_id", link.StoreID.String()))
		return result
	}

	if err != nil {
		result.Outcome = platform.SyncOutcomeFailure
		result.ErrorDetail = err.Error()
		current.RecordSyncFailure(err.Error(), result.CompletedAt)
		s.log(ctx).Warn("platform sync failed",
			zap.String("platform", string(link.PlatformCode)),
			zap.String("store_id", link.StoreID.String()),
			zap.String("operation", string(op)),
			zap.Int("attempts", attempts),
			zap.Error(err))
	} else {
		result.Outcome = platform.SyncOutcomeSuccess
		current.RecordSyncSuccess(op, result.CompletedAt)
		s.log(ctx).Info("platform sync completed",
			zap.String("platform", string(link.PlatformCode)),
			zap.String("store_id", link.StoreID.String()),
			zap.String("operation", string(op)),
			zap.Int("attempts", attempts))
	}

	if saveErr := s.links.Save(ctx, current); saveErr != nil {
		s.log(ctx).Error("failed to persist sync bookkeeping",
			zap.String("platform", string(link.PlatformCode)),
			zap.Error(saveErr))
	}
	return result
}

// execute performs the platform call with bounded retries. Transient
// failures back off with jitter; an auth rejection earns exactly one token
// refresh-and-retry cycle; everything else is immediately fatal for the
// attempt.
func (s *SyncService) execute(ctx context.Context, link *platform.StoreLink, op platform.SyncOperation) (int, error) {
	adapter, err := s.registry.Get(link.PlatformCode)
	if err != nil {
		return 0, err
	}

	call, err := s.buildCall(ctx, adapter, link, op)
	if err != nil {
		return 0, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.baseInterval
	policy.Multiplier = 2

	attempts := 0
	refreshed := false
	for {
		token, err := s.tokens.GetAppToken(ctx, link.TenantID, link.PlatformCode)
		if err != nil {
			return attempts, err
		}

		attempts++
		err = call(token)
		if err == nil {
			return attempts, nil
		}

		if platform.IsAuthFailure(err) && !refreshed {
			refreshed = true
			if _, refreshErr := s.tokens.ForceRefresh(ctx, link.TenantID, link.PlatformCode); refreshErr != nil {
				return attempts, refreshErr
			}
			continue
		}

		if !platform.IsTransient(err) || attempts >= syncMaxAttempts {
			return attempts, err
		}

		select {
		case <-time.After(policy.NextBackOff()):
		case <-ctx.Done():
			return attempts, ctx.Err()
		}
	}
}

// buildCall resolves the operation payload up front so retries replay the
// same snapshot instead of re-reading mutating state.
func (s *SyncService) buildCall(ctx context.Context, adapter platform.DeliveryPlatform, link *platform.StoreLink, op platform.SyncOperation) (func(platform.AccessToken) error, error) {
	switch op {
	case platform.SyncOperationMenu:
		menu, err := s.menus.MenuForStore(ctx, link.StoreID)
		if err != nil {
			return nil, err
		}
		return func(token platform.AccessToken) error {
			return adapter.PushMenu(ctx, token, link, menu)
		}, nil

	case platform.SyncOperationInventory:
		deltas, err := s.menus.AvailabilityForStore(ctx, link.StoreID)
		if err != nil {
			return nil, err
		}
		return func(token platform.AccessToken) error {
			return adapter.PushInventory(ctx, token, link, deltas)
		}, nil

	case platform.SyncOperationStatus:
		status := link.Status
		return func(token platform.AccessToken) error {
			return adapter.SetStoreStatus(ctx, token, link, status)
		}, nil

	default:
		return nil, platform.ErrEventMalformed
	}
}
