package drivers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/netforge/netforge/pkg/session"
)

// Registry maps vendor keys to driver implementations. Selection is a
// plain lookup; drivers are variants of one interface, not a hierarchy.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Default returns a registry with all built-in vendor drivers.
func Default() *Registry {
	r := NewRegistry()
	// Registration of built-ins cannot collide.
	_ = r.Register(NewHuaweiVRP8())
	_ = r.Register(NewHuaweiVRP5())
	_ = r.Register(NewRouterOS7())
	return r
}

// Register adds a driver under its vendor key.
func (r *Registry) Register(d Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[d.Vendor()]; exists {
		return fmt.Errorf("driver for vendor %q already registered", d.Vendor())
	}
	r.drivers[d.Vendor()] = d
	return nil
}

// Lookup returns the driver for vendor, or *UnknownVendorError.
func (r *Registry) Lookup(vendor string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[vendor]
	if !ok {
		return nil, &UnknownVendorError{Vendor: vendor}
	}
	return d, nil
}

// Dispatch routes the configuration to the vendor's driver. An unknown
// vendor fails before any session use.
func (r *Registry) Dispatch(ctx context.Context, vendor string, sess session.Session, lines []string) (*Result, error) {
	d, err := r.Lookup(vendor)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, sess, lines)
}

// Vendors lists the registered vendor keys, sorted.
func (r *Registry) Vendors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vendors := make([]string, 0, len(r.drivers))
	for v := range r.drivers {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	return vendors
}
