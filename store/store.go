// Package store defines the aggregate persistence interface for the
// bonding engine. Backends live in the sub-packages.
package store

import (
	"context"

	"github.com/xraph/bonding/account"
)

// Store is the unified storage interface for the engine.
// Methods are declared explicitly rather than embedding the sub-interfaces.
type Store interface {
	// Account methods
	GetAccount(ctx context.Context, key account.Key) (*account.Account, error)
	SaveAccounts(ctx context.Context, accounts ...*account.Account) error
	ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var _ account.Store = Store(nil)
