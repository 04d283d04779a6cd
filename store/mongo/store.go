// Package mongo implements store.Store on MongoDB via grove.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	bondingstore "github.com/xraph/bonding/store"
)

// Collection name constants.
const (
	colAccounts = "bonding_accounts"
)

// compile-time interface check
var _ bondingstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
//
// Saving more than one account runs inside a multi-document transaction,
// which MongoDB only offers on replica sets and sharded clusters.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all bonding collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("bonding/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": docID(key)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("account %s: %w", key, bonding.ErrNotFound)
		}
		return nil, fmt.Errorf("bonding/mongo: get account: %w", err)
	}
	return fromAccountModel(&m)
}

func (s *Store) SaveAccounts(ctx context.Context, accounts ...*account.Account) error {
	models := make([]*accountModel, len(accounts))
	for i, a := range accounts {
		m, err := toAccountModel(a)
		if err != nil {
			return err
		}
		models[i] = m
	}

	switch len(models) {
	case 0:
		return nil
	case 1:
		return s.upsert(ctx, models[0])
	}

	sess, err := s.mdb.Collection(colAccounts).Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("bonding/mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		for _, m := range models {
			if err := s.upsert(txCtx, m); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", bonding.ErrTransactionFailed, err)
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, m *accountModel) error {
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"holder":     m.Holder,
				"provider":   m.Provider,
				"specifier":  m.Specifier,
				"bonded":     m.Bonded,
				"value_held": m.ValueHeld,
				"escrowed":   m.Escrowed,
				"issued":     m.Issued,
				"updated_at": m.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bonding/mongo: save account %s: %w", m.ID, err)
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	var models []accountModel

	filter := bson.M{}
	if opts.Holder != "" {
		filter["holder"] = opts.Holder
	}
	if opts.Provider != "" {
		filter["provider"] = opts.Provider
	}
	if opts.Specifier != "" {
		filter["specifier"] = opts.Specifier
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "holder", Value: 1}, {Key: "provider", Value: 1}, {Key: "specifier", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bonding/mongo: list accounts: %w", err)
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

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all bonding collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAccounts: {
			{
				Keys:    bson.D{{Key: "holder", Value: 1}, {Key: "provider", Value: 1}, {Key: "specifier", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "specifier", Value: 1}}},
		},
	}
}
