package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// MemoryStore implements the dedup ledger in process memory. Useful for
// single-instance deployments and tests; state is lost on restart, which is
// acceptable only within the platforms' bounded replay windows.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryStore creates an in-memory dedup store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

func memoryKey(code platform.Code, eventID string) string {
	return string(code) + ":" + eventID
}

// Admit records the event under the mutex, returning true only for the first
// admission of a key.
func (s *MemoryStore) Admit(_ context.Context, event *platform.ProcessedEvent) (bool, error) {
	key := memoryKey(event.PlatformCode, event.EventID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; exists {
		return false, nil
	}
	s.entries[key] = event.ReceivedAt
	return true, nil
}

// PurgeOlderThan removes entries received before cutoff.
func (s *MemoryStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, receivedAt := range s.entries {
		if receivedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of ledger entries (for tests and monitoring).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Ensure MemoryStore implements DedupStore.
var _ platform.DedupStore = (*MemoryStore)(nil)
