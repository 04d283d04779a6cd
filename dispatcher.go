package bonding

import (
	"context"
	"sync"
)

// SetDispatcher fixes the identity allowed to escrow and release. It
// succeeds once; later calls, and calls with an empty identity, change
// nothing and return false.
func (e *Engine) SetDispatcher(ctx context.Context, identity string) bool {
	if !setOnce(&e.idMu, &e.dispatcher, identity) {
		return false
	}
	e.logger.Info("dispatcher set", "dispatcher", identity)
	e.plugins.EmitDispatcherSet(ctx, identity)
	return true
}

// Dispatcher returns the dispatcher identity, or "" while unset.
func (e *Engine) Dispatcher() string {
	e.idMu.RLock()
	defer e.idMu.RUnlock()
	return e.dispatcher
}

// SetArbiter records the arbiter identity with the same write-once rule as
// SetDispatcher.
func (e *Engine) SetArbiter(_ context.Context, identity string) bool {
	if !setOnce(&e.idMu, &e.arbiter, identity) {
		return false
	}
	e.logger.Info("arbiter set", "arbiter", identity)
	return true
}

// Arbiter returns the arbiter identity, or "" while unset.
func (e *Engine) Arbiter() string {
	e.idMu.RLock()
	defer e.idMu.RUnlock()
	return e.arbiter
}

// isDispatcher reports whether caller is the configured dispatcher. With no
// dispatcher set nobody is.
func (e *Engine) isDispatcher(caller string) bool {
	d := e.Dispatcher()
	return d != "" && caller == d
}

func setOnce(mu sync.Locker, field *string, value string) bool {
	if value == "" {
		return false
	}
	mu.Lock()
	defer mu.Unlock()
	if *field != "" {
		return false
	}
	*field = value
	return true
}
