package leveldb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/store"
	"github.com/xraph/bonding/store/leveldb"
	"github.com/xraph/bonding/store/storetest"
)

func open(t *testing.T, path string) *leveldb.Store {
	t.Helper()
	s, err := leveldb.Open(path)
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s := open(t, t.TempDir())
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestReopenKeepsAccounts(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "bonding")

	s := open(t, dir)
	a := account.New(account.NewKey("alice", "oracle", "btc"))
	a.Bonded = 1 << 63
	a.Issued = ^uint64(0)
	require.NoError(t, s.SaveAccounts(ctx, a))
	require.NoError(t, s.Close())

	s = open(t, dir)
	defer s.Close()
	got, err := s.GetAccount(ctx, a.Key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), got.Bonded)
	assert.Equal(t, ^uint64(0), got.Issued)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := open(t, t.TempDir())
	require.NoError(t, s.Close())

	_, err := s.GetAccount(ctx, account.NewKey("h", "p", "s"))
	assert.ErrorIs(t, err, bonding.ErrStoreClosed)
	assert.ErrorIs(t, s.Ping(ctx), bonding.ErrStoreClosed)
}
