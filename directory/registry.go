package directory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/xraph/bonding/curve"
)

type entry struct {
	profile Profile
	curve   *curve.Curve
}

// Registry is an in-memory Directory that also accepts registrations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

var _ Directory = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func entryKey(provider, specifier string) string {
	return provider + "\x00" + specifier
}

// Register records provider as serving specifier. A provider registers each
// specifier once.
func (r *Registry) Register(_ context.Context, provider, specifier string, p Profile) error {
	if provider == "" || specifier == "" {
		return fmt.Errorf("directory: provider and specifier are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := entryKey(provider, specifier)
	if _, exists := r.entries[k]; exists {
		return ErrAlreadyRegistered
	}
	p.Params = maps.Clone(p.Params)
	r.entries[k] = &entry{profile: p}
	return nil
}

// InitCurve sets the curve for a registered (provider, specifier). The curve
// is immutable afterwards.
func (r *Registry) InitCurve(_ context.Context, provider, specifier string, c curve.Curve) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[entryKey(provider, specifier)]
	if !ok {
		return ErrNotRegistered
	}
	if e.curve != nil {
		return ErrCurveInitialized
	}
	e.curve = &c
	return nil
}

// Profile returns the profile provider registered for specifier.
func (r *Registry) Profile(_ context.Context, provider, specifier string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entryKey(provider, specifier)]
	if !ok {
		return Profile{}, ErrNotRegistered
	}
	p := e.profile
	p.Params = maps.Clone(p.Params)
	return p, nil
}

// IsRegistered implements Directory.
func (r *Registry) IsRegistered(_ context.Context, provider, specifier string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[entryKey(provider, specifier)]
	return ok, nil
}

// Curve implements Directory.
func (r *Registry) Curve(_ context.Context, provider, specifier string) (curve.Curve, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entryKey(provider, specifier)]
	if !ok || e.curve == nil {
		return curve.Curve{}, false, nil
	}
	return *e.curve, true, nil
}
