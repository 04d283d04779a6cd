// Package plugin provides an extensible plugin system for the bonding engine.
// Plugins can hook into lifecycle and engine events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/bonding/account"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Bond hooks
// ──────────────────────────────────────────────────

// OnBonded is called after value was exchanged for dots.
type OnBonded interface {
	Plugin
	OnBonded(ctx context.Context, key account.Key, value, quantity uint64) error
}

// OnUnbonded is called after dots were returned for value.
type OnUnbonded interface {
	Plugin
	OnUnbonded(ctx context.Context, key account.Key, value, quantity uint64) error
}

// ──────────────────────────────────────────────────
// Escrow hooks
// ──────────────────────────────────────────────────

// OnEscrowed is called after dots moved from bonded to escrowed.
type OnEscrowed interface {
	Plugin
	OnEscrowed(ctx context.Context, key account.Key, quantity uint64) error
}

// OnReleased is called after escrowed dots were credited to the provider.
// key is the subscriber's account.
type OnReleased interface {
	Plugin
	OnReleased(ctx context.Context, key account.Key, quantity uint64) error
}

// OnEscrowRejected is called when an escrow or release was refused without
// changing state. op is "escrow" or "release".
type OnEscrowRejected interface {
	Plugin
	OnEscrowRejected(ctx context.Context, op string, key account.Key, quantity uint64, reason string) error
}

// ──────────────────────────────────────────────────
// Identity hooks
// ──────────────────────────────────────────────────

// OnDispatcherSet is called once, when the dispatcher identity is fixed.
type OnDispatcherSet interface {
	Plugin
	OnDispatcherSet(ctx context.Context, identity string) error
}
