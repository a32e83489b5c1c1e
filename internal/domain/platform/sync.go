package platform

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncOutcome
// ---------------------------------------------------------------------------

// SyncOutcome is the terminal result of one per-platform sync attempt.
type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "SUCCESS"
	SyncOutcomeFailure SyncOutcome = "FAILURE"
	// SyncOutcomeSkipped marks an attempt that was coalesced away because a
	// newer request for the same (platform, store) superseded it, or whose
	// result was discarded because the link was disabled mid-flight.
	SyncOutcomeSkipped SyncOutcome = "SKIPPED"
)

// String returns the string representation of the outcome.
func (o SyncOutcome) String() string {
	return string(o)
}

// ---------------------------------------------------------------------------
// SyncAttemptResult
// ---------------------------------------------------------------------------

// SyncAttemptResult describes what happened when one operation was pushed to
// one platform. Partial success across platforms is an expected, reportable
// outcome, not an error state: the orchestrator returns one of these per
// configured platform and never aborts the whole fan-out.
type SyncAttemptResult struct {
	PlatformCode Code
	StoreID      uuid.UUID
	Operation    SyncOperation
	Outcome      SyncOutcome
	// Attempts counts how many times the platform call was made, including
	// retries for transient failures and the single post-refresh auth retry.
	Attempts int
	// ErrorDetail is empty on success.
	ErrorDetail string
	CompletedAt time.Time
}

// Succeeded returns true if the attempt reached the platform successfully.
func (r SyncAttemptResult) Succeeded() bool {
	return r.Outcome == SyncOutcomeSuccess
}

// SyncStatus is the operator-facing view of one platform link's health,
// answering "what is the sync status" without exposing internals.
type SyncStatus struct {
	PlatformCode   Code        `json:"platform"`
	Status         StoreStatus `json:"status"`
	SyncEnabled    bool        `json:"sync_enabled"`
	LastMenuSyncAt *time.Time  `json:"last_menu_sync_at,omitempty"`
	LastSyncStatus SyncOutcome `json:"last_sync_status,omitempty"`
	LastSyncError  string      `json:"last_sync_error,omitempty"`
}
