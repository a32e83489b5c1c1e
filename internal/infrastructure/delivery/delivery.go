// Package delivery contains the concrete adapters for external delivery
// marketplaces. Each adapter translates between the internal menu/order
// vocabulary and one platform's wire format, and classifies that platform's
// failures into the shared error taxonomy the sync orchestrator retries on.
package delivery

import (
	"fmt"
	"net/http"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// maxResponseSize limits response body reads on all platform calls.
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// classifyHTTPStatus maps a platform HTTP status to the shared error
// taxonomy. The sync orchestrator keys its retry and refresh decisions off
// these classes, so every adapter must map consistently.
func classifyHTTPStatus(statusCode int) error {
	switch {
	case statusCode < 400:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", platform.ErrPlatformAuthFailed, statusCode)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", platform.ErrPlatformRateLimited, statusCode)
	case statusCode >= 500:
		return fmt.Errorf("%w: HTTP %d", platform.ErrPlatformUnavailable, statusCode)
	default:
		return fmt.Errorf("%w: HTTP %d", platform.ErrPlatformRejected, statusCode)
	}
}

// chunkDeltas splits availability deltas into platform-sized batches.
func chunkDeltas(deltas []platform.AvailabilityDelta, size int) [][]platform.AvailabilityDelta {
	if size <= 0 || len(deltas) == 0 {
		return nil
	}
	chunks := make([][]platform.AvailabilityDelta, 0, (len(deltas)+size-1)/size)
	for start := 0; start < len(deltas); start += size {
		end := start + size
		if end > len(deltas) {
			end = len(deltas)
		}
		chunks = append(chunks, deltas[start:end])
	}
	return chunks
}
