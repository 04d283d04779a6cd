package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/observability"
)

var key = account.NewKey("alice", "oracle", "btc-usd")

func TestMetricName(t *testing.T) {
	assert.Equal(t, "bonding_bond_total", observability.MetricName("bonding.bond.total"))
	assert.Equal(t, "a_b_c", observability.MetricName("a.b-c"))
}

func TestMetricsExtensionRecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))
	ctx := context.Background()

	require.NoError(t, m.OnBonded(ctx, key, 25, 5))
	require.NoError(t, m.OnBonded(ctx, key, 11, 1))
	require.NoError(t, m.OnUnbonded(ctx, key, 11, 1))
	require.NoError(t, m.OnEscrowed(ctx, key, 2))
	require.NoError(t, m.OnReleased(ctx, key, 2))
	require.NoError(t, m.OnEscrowRejected(ctx, "escrow", key, 9, "unauthorized"))
	require.NoError(t, m.OnEscrowRejected(ctx, "release", key, 9, "insufficient escrow"))
	require.NoError(t, m.OnDispatcherSet(ctx, "dispatch"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.Bonds.(prometheus.Counter)), 0)
	assert.InDelta(t, 6, testutil.ToFloat64(m.DotsBonded.(prometheus.Counter)), 0)
	assert.InDelta(t, 36, testutil.ToFloat64(m.ValueBonded.(prometheus.Counter)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Unbonds.(prometheus.Counter)), 0)
	assert.InDelta(t, 11, testutil.ToFloat64(m.ValueRefunded.(prometheus.Counter)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.DotsEscrowed.(prometheus.Counter)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.DotsReleased.(prometheus.Counter)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EscrowRejected.(prometheus.Counter)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReleaseRejected.(prometheus.Counter)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DispatcherSet.(prometheus.Counter)), 0)

	n, err := testutil.GatherAndCount(reg, "bonding_bond_quantity")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrometheusFactoryReusesMetrics(t *testing.T) {
	f := observability.NewPrometheusFactory(prometheus.NewRegistry())
	assert.Same(t, f.Counter("bonding.bond.total"), f.Counter("bonding.bond.total"))
	assert.Same(t, f.Histogram("bonding.bond.quantity"), f.Histogram("bonding.bond.quantity"))
}
