package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

type syncFixture struct {
	service  *SyncService
	links    *memLinkRepo
	tokens   *fakeTokens
	uber     *scriptedAdapter
	panda    *scriptedAdapter
	tenantID uuid.UUID
	storeID  uuid.UUID
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		links:    newMemLinkRepo(),
		tokens:   &fakeTokens{token: "app-token"},
		uber:     &scriptedAdapter{code: platform.CodeUberEats},
		panda:    &scriptedAdapter{code: platform.CodeFoodpanda},
		tenantID: uuid.New(),
		storeID:  uuid.New(),
	}

	menus := &fakeMenuSource{
		menu: &platform.Menu{
			StoreID: f.storeID,
			Name:    "Main Menu",
			Categories: []platform.MenuCategory{{
				ExternalID: "cat-1",
				Name:       "Noodles",
				Items: []platform.MenuItem{{
					ExternalID: "item-1",
					Name:       "Beef Noodles",
					Price:      decimal.NewFromFloat(12.50),
					Available:  true,
				}},
			}},
		},
		deltas: []platform.AvailabilityDelta{
			{ItemExternalID: "item-1", Available: false},
		},
	}

	f.service = NewSyncService(
		f.links,
		newFakeRegistry(f.uber, f.panda),
		f.tokens,
		menus,
		zap.NewNop(),
		WithSyncRetryInterval(time.Millisecond),
	)
	return f
}

func (f *syncFixture) seedLink(t *testing.T, code platform.Code) *platform.StoreLink {
	t.Helper()
	link := platform.NewStoreLink(f.tenantID, f.storeID, code, "remote-"+string(code))
	require.NoError(t, f.links.Save(context.Background(), link))
	return link
}

// ---------------------------------------------------------------------------
// Fan-out
// ---------------------------------------------------------------------------

func TestSyncAll_PartialFailureIsDataNotError(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.seedLink(t, platform.CodeFoodpanda)
	f.panda.callErrs = []error{platform.ErrPlatformRejected}

	results, err := f.service.SyncAll(context.Background(), f.storeID, platform.SyncOperationMenu)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, platform.SyncOutcomeSuccess, results[platform.CodeUberEats].Outcome)
	assert.Equal(t, platform.SyncOutcomeFailure, results[platform.CodeFoodpanda].Outcome)
	assert.Contains(t, results[platform.CodeFoodpanda].ErrorDetail, "rejected")

	// The failing platform never stopped the healthy one.
	assert.NotNil(t, f.uber.lastMenu)
	assert.Equal(t, 1, f.uber.callCount())
}

func TestSyncAll_RecordsBookkeepingPerLink(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.seedLink(t, platform.CodeFoodpanda)
	f.panda.callErrs = []error{platform.ErrPlatformRejected}

	_, err := f.service.SyncAll(context.Background(), f.storeID, platform.SyncOperationMenu)
	require.NoError(t, err)

	uberLink, err := f.links.FindByStoreAndPlatform(context.Background(), f.storeID, platform.CodeUberEats)
	require.NoError(t, err)
	assert.Equal(t, platform.SyncOutcomeSuccess, uberLink.LastSyncStatus)
	assert.NotNil(t, uberLink.LastMenuSyncAt)
	assert.Empty(t, uberLink.LastSyncError)

	pandaLink, err := f.links.FindByStoreAndPlatform(context.Background(), f.storeID, platform.CodeFoodpanda)
	require.NoError(t, err)
	assert.Equal(t, platform.SyncOutcomeFailure, pandaLink.LastSyncStatus)
	assert.Nil(t, pandaLink.LastMenuSyncAt, "failed menu sync must not advance the staleness marker")
	assert.NotEmpty(t, pandaLink.LastSyncError)
}

func TestSyncAll_SkipsDisabledLinks(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	disabled := f.seedLink(t, platform.CodeFoodpanda)
	disabled.Disable()
	require.NoError(t, f.links.Save(context.Background(), disabled))

	results, err := f.service.SyncAll(context.Background(), f.storeID, platform.SyncOperationStatus)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, platform.CodeUberEats)
	assert.Zero(t, f.panda.callCount())
}

// ---------------------------------------------------------------------------
// Retry behavior
// ---------------------------------------------------------------------------

func TestSyncOne_RetriesTransientThenSucceeds(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.uber.callErrs = []error{platform.ErrPlatformUnavailable, platform.ErrPlatformRateLimited}

	result, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	require.NoError(t, err)

	assert.Equal(t, platform.SyncOutcomeSuccess, result.Outcome)
	assert.Equal(t, 3, result.Attempts)
}

func TestSyncOne_GivesUpAfterBoundedAttempts(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.uber.callErrs = []error{
		platform.ErrPlatformUnavailable,
		platform.ErrPlatformUnavailable,
		platform.ErrPlatformUnavailable,
		platform.ErrPlatformUnavailable,
	}

	result, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationInventory)
	require.NoError(t, err)

	assert.Equal(t, platform.SyncOutcomeFailure, result.Outcome)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, f.uber.callCount())
}

func TestSyncOne_NonTransientFailsImmediately(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.uber.callErrs = []error{platform.ErrPlatformRejected}

	result, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	require.NoError(t, err)

	assert.Equal(t, platform.SyncOutcomeFailure, result.Outcome)
	assert.Equal(t, 1, result.Attempts)
}

func TestSyncOne_AuthFailureGetsExactlyOneRefreshRetry(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.tokens.refreshedToken = "fresh-token"
	f.uber.callErrs = []error{platform.ErrPlatformAuthFailed}

	result, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	require.NoError(t, err)

	assert.Equal(t, platform.SyncOutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, f.tokens.forceRefreshCount())
	assert.Equal(t, 2, f.uber.callCount())
}

func TestSyncOne_SecondAuthFailureIsFatal(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	f.uber.callErrs = []error{platform.ErrPlatformAuthFailed, platform.ErrPlatformAuthFailed}

	result, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	require.NoError(t, err)

	assert.Equal(t, platform.SyncOutcomeFailure, result.Outcome)
	assert.Equal(t, 1, f.tokens.forceRefreshCount())
	assert.Equal(t, 2, f.uber.callCount())
}

func TestSyncOne_DisabledLinkRejected(t *testing.T) {
	f := newSyncFixture(t)
	link := f.seedLink(t, platform.CodeUberEats)
	link.Disable()
	require.NoError(t, f.links.Save(context.Background(), link))

	_, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	assert.ErrorIs(t, err, platform.ErrStoreLinkDisabled)
}

// ---------------------------------------------------------------------------
// Coalescing and mid-flight disable
// ---------------------------------------------------------------------------

func TestSyncOne_SupersededRequestIsCoalescedAway(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.uber.onCall = func(n int) {
		if n == 0 {
			once.Do(func() { close(entered) })
			<-release
		}
	}

	var wg sync.WaitGroup
	results := make([]platform.SyncAttemptResult, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	}()
	<-entered

	// Two more requests queue behind the in-flight one. Only the newest may
	// run; the middle one must yield.
	for i := 1; i <= 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
		}(i)
	}

	// Give the queued requests time to claim their tickets before the
	// in-flight call completes.
	require.Eventually(t, func() bool {
		f.service.mu.Lock()
		defer f.service.mu.Unlock()
		return f.service.slots[slotKey(platform.CodeUberEats, f.storeID)].latest == 3
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	skipped := 0
	succeeded := 0
	for _, r := range results {
		switch r.Outcome {
		case platform.SyncOutcomeSkipped:
			skipped++
		case platform.SyncOutcomeSuccess:
			succeeded++
		}
	}
	// The first holder ran before the newer tickets existed; of the two
	// queued requests exactly one (the stale one) is coalesced away.
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 2, f.uber.callCount())
}

func TestSyncOne_DisabledMidFlightDiscardsResult(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)

	// Disable the link while the platform call is in flight; the call
	// completes but its result must be discarded.
	f.uber.onCall = func(int) {
		f.links.disable(f.storeID, platform.CodeUberEats)
	}

	result, err := f.service.SyncOne(context.Background(), f.storeID, platform.CodeUberEats, platform.SyncOperationMenu)
	require.NoError(t, err)

	assert.Equal(t, platform.SyncOutcomeSkipped, result.Outcome)
	assert.Equal(t, "link disabled during sync", result.ErrorDetail)

	// No bookkeeping was written for the discarded attempt.
	link, err := f.links.FindByStoreAndPlatform(context.Background(), f.storeID, platform.CodeUberEats)
	require.NoError(t, err)
	assert.Empty(t, link.LastSyncStatus)
	assert.Nil(t, link.LastMenuSyncAt)
}

// ---------------------------------------------------------------------------
// Status view
// ---------------------------------------------------------------------------

func TestGetSyncStatus_ReportsAllLinks(t *testing.T) {
	f := newSyncFixture(t)
	f.seedLink(t, platform.CodeUberEats)
	disabled := f.seedLink(t, platform.CodeFoodpanda)
	disabled.Disable()
	require.NoError(t, f.links.Save(context.Background(), disabled))

	_, err := f.service.SyncAll(context.Background(), f.storeID, platform.SyncOperationMenu)
	require.NoError(t, err)

	statuses, err := f.service.GetSyncStatus(context.Background(), f.storeID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byCode := make(map[platform.Code]platform.SyncStatus, len(statuses))
	for _, st := range statuses {
		byCode[st.PlatformCode] = st
	}
	assert.True(t, byCode[platform.CodeUberEats].SyncEnabled)
	assert.Equal(t, platform.SyncOutcomeSuccess, byCode[platform.CodeUberEats].LastSyncStatus)
	assert.NotNil(t, byCode[platform.CodeUberEats].LastMenuSyncAt)
	assert.False(t, byCode[platform.CodeFoodpanda].SyncEnabled)
}
