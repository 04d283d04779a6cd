// Package sqlite implements store.Store on SQLite via grove.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	bondingstore "github.com/xraph/bonding/store"
)

// compile-time interface check
var _ bondingstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("bonding/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("bonding/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) GetAccount(ctx context.Context, key account.Key) (*account.Account, error) {
	m := new(accountModel)
	err := s.sdb.NewSelect(m).
		Where("holder = ?", key.Holder).
		Where("provider = ?", key.Provider).
		Where("specifier = ?", key.Specifier).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("account %s: %w", key, bonding.ErrNotFound)
		}
		return nil, err
	}
	return fromAccountModel(m)
}

// SaveAccounts upserts every account in a single statement.
func (s *Store) SaveAccounts(ctx context.Context, accounts ...*account.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	models := make([]accountModel, len(accounts))
	for i, a := range accounts {
		m, err := toAccountModel(a)
		if err != nil {
			return err
		}
		models[i] = *m
	}
	_, err := s.sdb.NewInsert(&models).
		OnConflict("(holder, provider, specifier) DO UPDATE").
		Set("bonded = EXCLUDED.bonded").
		Set("value_held = EXCLUDED.value_held").
		Set("escrowed = EXCLUDED.escrowed").
		Set("issued = EXCLUDED.issued").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	var models []accountModel
	q := s.sdb.NewSelect(&models)

	for _, f := range []struct{ col, val string }{
		{"holder", opts.Holder},
		{"provider", opts.Provider},
		{"specifier", opts.Specifier},
	} {
		if f.val == "" {
			continue
		}
		q = q.Where(f.col+" = ?", f.val)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("holder ASC, provider ASC, specifier ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		a, err := fromAccountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
