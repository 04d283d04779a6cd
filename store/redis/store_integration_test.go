//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/store"
	bredis "github.com/xraph/bonding/store/redis"
	"github.com/xraph/bonding/store/storetest"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err, "redis connection string")
	return url
}

func TestStore(t *testing.T) {
	url := startRedis(t)

	var seq atomic.Int64
	storetest.Run(t, func(t *testing.T) store.Store {
		prefix := fmt.Sprintf("bonding-test-%d:", seq.Add(1))
		s, err := bredis.Open(context.Background(), url, bredis.WithPrefix(prefix))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("FullRange", func(t *testing.T) {
		ctx := context.Background()
		s, err := bredis.Open(ctx, url, bredis.WithPrefix("bonding-range:"))
		require.NoError(t, err)
		defer s.Close()

		a := account.New(account.NewKey("alice", "oracle", "btc"))
		a.ValueHeld = ^uint64(0)
		require.NoError(t, s.SaveAccounts(ctx, a))

		got, err := s.GetAccount(ctx, a.Key)
		require.NoError(t, err)
		assert.Equal(t, ^uint64(0), got.ValueHeld)
	})
}
