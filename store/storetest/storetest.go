// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/store"
	"github.com/xraph/bonding/types"
)

// Factory returns a fresh, migrated, empty store. The caller closes it.
type Factory func(t *testing.T) store.Store

var stamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func acct(holder, provider, specifier string, bonded, held uint64) *account.Account {
	a := account.New(account.NewKey(holder, provider, specifier))
	a.Entity = types.NewEntity(stamp)
	a.Bonded = bonded
	a.ValueHeld = held
	return a
}

// Run exercises the account store contract against backends built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetAccount(context.Background(), account.NewKey("h", "p", "s"))
		require.Error(t, err)
		assert.ErrorIs(t, err, bonding.ErrNotFound)
		assert.True(t, bonding.IsNotFound(err))
	})

	t.Run("SaveAndGet", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := acct("alice", "oracle", "btc", 25, 5)
		a.Escrowed = 3
		a.Issued = 28
		require.NoError(t, s.SaveAccounts(ctx, a))

		got, err := s.GetAccount(ctx, a.Key)
		require.NoError(t, err)
		assert.Equal(t, a.Key, got.Key)
		assert.Equal(t, uint64(25), got.Bonded)
		assert.Equal(t, uint64(5), got.ValueHeld)
		assert.Equal(t, uint64(3), got.Escrowed)
		assert.Equal(t, uint64(28), got.Issued)
		assert.True(t, got.CreatedAt.Equal(stamp), "created_at %v", got.CreatedAt)
		assert.True(t, got.UpdatedAt.Equal(stamp), "updated_at %v", got.UpdatedAt)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := acct("alice", "oracle", "btc", 10, 55)
		require.NoError(t, s.SaveAccounts(ctx, a))

		a.Bonded = 9
		a.ValueHeld = 45
		a.Touch(stamp.Add(time.Minute))
		require.NoError(t, s.SaveAccounts(ctx, a))

		got, err := s.GetAccount(ctx, a.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), got.Bonded)
		assert.Equal(t, uint64(45), got.ValueHeld)
		assert.True(t, got.UpdatedAt.Equal(stamp.Add(time.Minute)))
	})

	t.Run("SaveMany", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		sub := acct("alice", "oracle", "btc", 3, 0)
		prov := acct("oracle", "oracle", "btc", 2, 0)
		require.NoError(t, s.SaveAccounts(ctx, sub, prov))

		got, err := s.GetAccount(ctx, sub.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), got.Bonded)

		got, err = s.GetAccount(ctx, prov.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), got.Bonded)
	})

	t.Run("SaveNothing", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.SaveAccounts(context.Background()))
	})

	t.Run("ReturnedCopyIsDetached", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := acct("alice", "oracle", "btc", 7, 0)
		require.NoError(t, s.SaveAccounts(ctx, a))
		a.Bonded = 100

		got, err := s.GetAccount(ctx, a.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), got.Bonded)

		got.Bonded = 200
		again, err := s.GetAccount(ctx, a.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), again.Bonded)
	})

	t.Run("DistinctKeysStayIndependent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		accounts := []*account.Account{
			acct("alice", "oracle", "btc", 1, 10),
			acct("bob", "oracle", "btc", 2, 20),
			acct("alice", "feed", "btc", 3, 30),
			acct("alice", "oracle", "eth", 4, 40),
			acct("ali", "ceoracle", "btc", 5, 50),
		}
		require.NoError(t, s.SaveAccounts(ctx, accounts...))

		changed := accounts[0].Clone()
		changed.Bonded = 99
		require.NoError(t, s.SaveAccounts(ctx, changed))

		for i, a := range accounts {
			got, err := s.GetAccount(ctx, a.Key)
			require.NoError(t, err, a.Key)
			assert.Equal(t, a.Key, got.Key)
			if i == 0 {
				assert.Equal(t, uint64(99), got.Bonded)
			} else {
				assert.Equal(t, a.Bonded, got.Bonded, a.Key)
			}
			assert.Equal(t, a.ValueHeld, got.ValueHeld, a.Key)
		}

		all, err := s.ListAccounts(ctx, account.ListOpts{})
		require.NoError(t, err)
		assert.Len(t, all, len(accounts))
	})

	t.Run("SeparatorInKeyPart", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		colon := acct("alice:x", "oracle", "btc", 5, 25)
		require.NoError(t, s.SaveAccounts(ctx, colon))

		shifted := account.NewKey("alice", "x:oracle", "btc")
		require.Equal(t, colon.Key.String(), shifted.String())
		_, err := s.GetAccount(ctx, shifted)
		assert.ErrorIs(t, err, bonding.ErrNotFound)

		require.NoError(t, s.SaveAccounts(ctx,
			acct("alice", "x:oracle", "btc", 1, 1),
			acct("a\x00", "b", "c", 2, 2),
			acct("a", "\x00b", "c", 3, 3),
		))

		got, err := s.GetAccount(ctx, colon.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), got.Bonded)
		assert.Equal(t, uint64(25), got.ValueHeld)

		got, err = s.GetAccount(ctx, shifted)
		require.NoError(t, err)
		assert.Equal(t, shifted, got.Key)
		assert.Equal(t, uint64(1), got.Bonded)

		got, err = s.GetAccount(ctx, account.NewKey("a", "\x00b", "c"))
		require.NoError(t, err)
		assert.Equal(t, uint64(3), got.Bonded)

		all, err := s.ListAccounts(ctx, account.ListOpts{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, account.NewKey("a", "\x00b", "c"), all[0].Key)
		assert.Equal(t, account.NewKey("a\x00", "b", "c"), all[1].Key)
		assert.Equal(t, shifted, all[2].Key)
		assert.Equal(t, colon.Key, all[3].Key)

		byProvider, err := s.ListAccounts(ctx, account.ListOpts{Provider: "x:oracle"})
		require.NoError(t, err)
		require.Len(t, byProvider, 1)
		assert.Equal(t, "alice", byProvider[0].Key.Holder)
	})

	t.Run("ListFiltersAndOrders", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.SaveAccounts(ctx,
			acct("carol", "oracle", "eth", 1, 1),
			acct("alice", "oracle", "btc", 2, 2),
			acct("bob", "oracle", "btc", 3, 3),
			acct("alice", "feed", "btc", 4, 4),
		))

		all, err := s.ListAccounts(ctx, account.ListOpts{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "alice:feed:btc", all[0].Key.String())
		assert.Equal(t, "alice:oracle:btc", all[1].Key.String())
		assert.Equal(t, "bob:oracle:btc", all[2].Key.String())
		assert.Equal(t, "carol:oracle:eth", all[3].Key.String())

		byHolder, err := s.ListAccounts(ctx, account.ListOpts{Holder: "alice"})
		require.NoError(t, err)
		assert.Len(t, byHolder, 2)

		byCurve, err := s.ListAccounts(ctx, account.ListOpts{Provider: "oracle", Specifier: "btc"})
		require.NoError(t, err)
		require.Len(t, byCurve, 2)
		assert.Equal(t, "alice", byCurve[0].Key.Holder)
		assert.Equal(t, "bob", byCurve[1].Key.Holder)

		none, err := s.ListAccounts(ctx, account.ListOpts{Holder: "dave"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ListPaginates", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.SaveAccounts(ctx,
			acct("a", "p", "s", 1, 0),
			acct("b", "p", "s", 2, 0),
			acct("c", "p", "s", 3, 0),
		))

		page, err := s.ListAccounts(ctx, account.ListOpts{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "a", page[0].Key.Holder)
		assert.Equal(t, "b", page[1].Key.Holder)

		page, err = s.ListAccounts(ctx, account.ListOpts{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "c", page[0].Key.Holder)

		page, err = s.ListAccounts(ctx, account.ListOpts{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
