// Package leveldb implements store.Store on an embedded LevelDB database.
//
// Accounts are JSON values under "acct/" followed by account.Key.Encode, so
// a prefix scan returns them in key order. SaveAccounts commits one batch.
package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/store"
)

const accountPrefix = "acct/"

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on goleveldb.
type Store struct {
	db   *leveldb.DB
	sync bool
}

// Option configures a Store.
type Option func(*Store)

// WithSync makes every batch fsync before SaveAccounts returns.
func WithSync(sync bool) Option {
	return func(s *Store) {
		s.sync = sync
	}
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("bonding/leveldb: open %s: %w", path, err)
	}
	return New(db, opts...), nil
}

// New wraps an open database. The store closes it on Close.
func New(db *leveldb.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, o := range opts {
		o(s)
	}
	return s
}

func dbKey(key account.Key) []byte {
	return append([]byte(accountPrefix), key.Encode()...)
}

// Migrate is a no-op; LevelDB needs no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the database is still open.
func (s *Store) Ping(_ context.Context) error {
	if _, err := s.db.GetProperty("leveldb.stats"); err != nil {
		return mapErr(err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) GetAccount(_ context.Context, key account.Key) (*account.Account, error) {
	data, err := s.db.Get(dbKey(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", key, bonding.ErrNotFound)
		}
		return nil, mapErr(err)
	}
	a := new(account.Account)
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("bonding/leveldb: decode %s: %w", key, err)
	}
	return a, nil
}

func (s *Store) SaveAccounts(_ context.Context, accounts ...*account.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for _, a := range accounts {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("bonding/leveldb: encode %s: %w", a.Key, err)
		}
		batch.Put(dbKey(a.Key), data)
	}
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: s.sync}); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *Store) ListAccounts(_ context.Context, opts account.ListOpts) ([]*account.Account, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(accountPrefix)), nil)
	defer iter.Release()

	result := make([]*account.Account, 0)
	skipped := 0
	for iter.Next() {
		a := new(account.Account)
		if err := json.Unmarshal(iter.Value(), a); err != nil {
			return nil, fmt.Errorf("bonding/leveldb: decode %s: %w", iter.Key(), err)
		}
		if !opts.Matches(a.Key) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		result = append(result, a)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, mapErr(err)
	}
	return result, nil
}

func mapErr(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return bonding.ErrStoreClosed
	}
	return fmt.Errorf("bonding/leveldb: %w", err)
}
