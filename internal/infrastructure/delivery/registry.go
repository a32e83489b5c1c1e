package delivery

import (
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// StaticRegistry holds the adapters configured at startup. Registration
// happens once during wiring; lookups afterwards are read-only, so no lock
// is needed.
type StaticRegistry struct {
	adapters map[platform.Code]platform.DeliveryPlatform
	ordered  []platform.DeliveryPlatform
}

// NewRegistry creates a registry from the given adapters. A duplicate code
// overwrites the earlier registration.
func NewRegistry(adapters ...platform.DeliveryPlatform) *StaticRegistry {
	r := &StaticRegistry{adapters: make(map[platform.Code]platform.DeliveryPlatform, len(adapters))}
	for _, adapter := range adapters {
		if _, exists := r.adapters[adapter.Code()]; exists {
			// Keep ordered in step with the map so Get and All agree on
			// which instance serves the code.
			for i := range r.ordered {
				if r.ordered[i].Code() == adapter.Code() {
					r.ordered[i] = adapter
					break
				}
			}
		} else {
			r.ordered = append(r.ordered, adapter)
		}
		r.adapters[adapter.Code()] = adapter
	}
	return r
}

// Get returns the adapter for code, or ErrPlatformNotRegistered.
func (r *StaticRegistry) Get(code platform.Code) (platform.DeliveryPlatform, error) {
	adapter, ok := r.adapters[code]
	if !ok {
		return nil, platform.ErrPlatformNotRegistered
	}
	return adapter, nil
}

// All returns every registered adapter in registration order.
func (r *StaticRegistry) All() []platform.DeliveryPlatform {
	out := make([]platform.DeliveryPlatform, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Ensure StaticRegistry implements Registry.
var _ platform.Registry = (*StaticRegistry)(nil)
