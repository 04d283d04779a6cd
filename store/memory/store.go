// Package memory provides an in-process store.Store for tests and
// single-node deployments.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps accounts in a map guarded by one lock, so SaveAccounts is
// atomic with respect to every reader.
type Store struct {
	mu       sync.RWMutex
	accounts map[account.Key]*account.Account
	closed   bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts: make(map[account.Key]*account.Account),
	}
}

// GetAccount returns a copy of the stored account.
func (s *Store) GetAccount(_ context.Context, key account.Key) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, bonding.ErrStoreClosed
	}
	a, ok := s.accounts[key]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", key, bonding.ErrNotFound)
	}
	return a.Clone(), nil
}

// SaveAccounts stores copies of the accounts.
func (s *Store) SaveAccounts(_ context.Context, accounts ...*account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return bonding.ErrStoreClosed
	}
	for _, a := range accounts {
		s.accounts[a.Key] = a.Clone()
	}
	return nil
}

// ListAccounts returns matching accounts ordered by key.
func (s *Store) ListAccounts(_ context.Context, opts account.ListOpts) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, bonding.ErrStoreClosed
	}

	result := make([]*account.Account, 0)
	for k, a := range s.accounts {
		if opts.Matches(k) {
			result = append(result, a.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *account.Account) int {
		return a.Key.Compare(b.Key)
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return bonding.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
