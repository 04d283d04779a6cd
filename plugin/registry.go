package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/bonding/account"
)

// DefaultTimeout bounds how long a single hook may run.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit           []OnInit
	onShutdown       []OnShutdown
	onBonded         []OnBonded
	onUnbonded       []OnUnbonded
	onEscrowed       []OnEscrowed
	onReleased       []OnReleased
	onEscrowRejected []OnEscrowRejected
	onDispatcherSet  []OnDispatcherSet
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnBonded); ok {
		r.onBonded = append(r.onBonded, v)
	}
	if v, ok := p.(OnUnbonded); ok {
		r.onUnbonded = append(r.onUnbonded, v)
	}
	if v, ok := p.(OnEscrowed); ok {
		r.onEscrowed = append(r.onEscrowed, v)
	}
	if v, ok := p.(OnReleased); ok {
		r.onReleased = append(r.onReleased, v)
	}
	if v, ok := p.(OnEscrowRejected); ok {
		r.onEscrowRejected = append(r.onEscrowRejected, v)
	}
	if v, ok := p.(OnDispatcherSet); ok {
		r.onDispatcherSet = append(r.onDispatcherSet, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", ImplementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeFor[OnInit]()},
	{"OnShutdown", reflect.TypeFor[OnShutdown]()},
	{"OnBonded", reflect.TypeFor[OnBonded]()},
	{"OnUnbonded", reflect.TypeFor[OnUnbonded]()},
	{"OnEscrowed", reflect.TypeFor[OnEscrowed]()},
	{"OnReleased", reflect.TypeFor[OnReleased]()},
	{"OnEscrowRejected", reflect.TypeFor[OnEscrowRejected]()},
	{"OnDispatcherSet", reflect.TypeFor[OnDispatcherSet]()},
}

// ImplementedInterfaces returns the names of the hooks p implements.
func ImplementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit runs call for every hook in hooks, logging failures.
func emit[T Plugin](ctx context.Context, r *Registry, hooks func(*Registry) []T, hook string, call func(T) error) {
	r.mu.RLock()
	plugins := hooks(r)
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(ctx, r, func(r *Registry) []OnInit { return r.onInit }, "OnInit", func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, func(r *Registry) []OnShutdown { return r.onShutdown }, "OnShutdown", func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitBonded emits a bonded event.
func (r *Registry) EmitBonded(ctx context.Context, key account.Key, value, quantity uint64) {
	emit(ctx, r, func(r *Registry) []OnBonded { return r.onBonded }, "OnBonded", func(p OnBonded) error {
		return p.OnBonded(ctx, key, value, quantity)
	})
}

// EmitUnbonded emits an unbonded event.
func (r *Registry) EmitUnbonded(ctx context.Context, key account.Key, value, quantity uint64) {
	emit(ctx, r, func(r *Registry) []OnUnbonded { return r.onUnbonded }, "OnUnbonded", func(p OnUnbonded) error {
		return p.OnUnbonded(ctx, key, value, quantity)
	})
}

// EmitEscrowed emits an escrowed event.
func (r *Registry) EmitEscrowed(ctx context.Context, key account.Key, quantity uint64) {
	emit(ctx, r, func(r *Registry) []OnEscrowed { return r.onEscrowed }, "OnEscrowed", func(p OnEscrowed) error {
		return p.OnEscrowed(ctx, key, quantity)
	})
}

// EmitReleased emits a released event.
func (r *Registry) EmitReleased(ctx context.Context, key account.Key, quantity uint64) {
	emit(ctx, r, func(r *Registry) []OnReleased { return r.onReleased }, "OnReleased", func(p OnReleased) error {
		return p.OnReleased(ctx, key, quantity)
	})
}

// EmitEscrowRejected emits an escrow rejection event.
func (r *Registry) EmitEscrowRejected(ctx context.Context, op string, key account.Key, quantity uint64, reason string) {
	emit(ctx, r, func(r *Registry) []OnEscrowRejected { return r.onEscrowRejected }, "OnEscrowRejected", func(p OnEscrowRejected) error {
		return p.OnEscrowRejected(ctx, op, key, quantity, reason)
	})
}

// EmitDispatcherSet emits a dispatcher set event.
func (r *Registry) EmitDispatcherSet(ctx context.Context, identity string) {
	emit(ctx, r, func(r *Registry) []OnDispatcherSet { return r.onDispatcherSet }, "OnDispatcherSet", func(p OnDispatcherSet) error {
		return p.OnDispatcherSet(ctx, identity)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the engine.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
