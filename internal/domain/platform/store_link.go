package platform

import (
	"time"

	"github.com/google/uuid"
)

// StoreLink maps a local store to its identity and operational settings on
// one external platform. Sync bookkeeping fields are mutated only by the sync
// orchestrator on a successful attempt, or by an explicit admin toggle.
type StoreLink struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	StoreID      uuid.UUID
	PlatformCode Code

	// PlatformStoreID is the store identifier assigned by the platform
	// during provisioning.
	PlatformStoreID string

	Status          StoreStatus
	PrepTimeMinutes int
	AutoAccept      bool
	SyncEnabled     bool

	// LastMenuSyncAt is the last successful menu propagation. A failed sync
	// keeps the prior timestamp so staleness stays visible to operators.
	LastMenuSyncAt *time.Time
	LastSyncStatus SyncOutcome
	LastSyncError  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStoreLink creates an enabled link in the Offline state; the store goes
// online through an explicit status sync after provisioning.
func NewStoreLink(tenantID, storeID uuid.UUID, code Code, platformStoreID string) *StoreLink {
	now := time.Now()
	return &StoreLink{
		ID:              uuid.New(),
		TenantID:        tenantID,
		StoreID:         storeID,
		PlatformCode:    code,
		PlatformStoreID: platformStoreID,
		Status:          StoreStatusOffline,
		PrepTimeMinutes: 20,
		SyncEnabled:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// RecordSyncSuccess updates the sync bookkeeping after a successful attempt.
// Only menu syncs advance LastMenuSyncAt.
func (l *StoreLink) RecordSyncSuccess(op SyncOperation, at time.Time) {
	if op == SyncOperationMenu {
		l.LastMenuSyncAt = &at
	}
	l.LastSyncStatus = SyncOutcomeSuccess
	l.LastSyncError = ""
	l.UpdatedAt = at
}

// RecordSyncFailure records the failure detail without touching the last
// successful sync timestamp.
func (l *StoreLink) RecordSyncFailure(errDetail string, at time.Time) {
	l.LastSyncStatus = SyncOutcomeFailure
	l.LastSyncError = errDetail
	l.UpdatedAt = at
}

// SetStatus applies an admin status toggle.
func (l *StoreLink) SetStatus(status StoreStatus) error {
	if !status.IsValid() {
		return ErrEventMalformed
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return nil
}

// SetPrepTime updates the quoted preparation time in minutes.
func (l *StoreLink) SetPrepTime(minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	l.PrepTimeMinutes = minutes
	l.UpdatedAt = time.Now()
}

// SetAutoAccept toggles automatic acceptance of inbound platform orders.
func (l *StoreLink) SetAutoAccept(enabled bool) {
	l.AutoAccept = enabled
	l.UpdatedAt = time.Now()
}

// Disable turns off outbound sync for this link. In-flight attempts complete
// their current network call but their results are discarded.
func (l *StoreLink) Disable() {
	l.SyncEnabled = false
	l.UpdatedAt = time.Now()
}

// Enable turns outbound sync back on.
func (l *StoreLink) Enable() {
	l.SyncEnabled = true
	l.UpdatedAt = time.Now()
}
