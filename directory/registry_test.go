package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding/curve"
	"github.com/xraph/bonding/directory"
)

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	r := directory.NewRegistry()

	ok, err := r.IsRegistered(ctx, "oracle", "btc-usd")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Register(ctx, "oracle", "btc-usd", directory.Profile{
		Title:     "Oracle",
		PublicKey: "pk",
		Params:    map[string]string{"interval": "1m"},
	}))
	assert.ErrorIs(t, r.Register(ctx, "oracle", "btc-usd", directory.Profile{}), directory.ErrAlreadyRegistered)

	ok, err = r.IsRegistered(ctx, "oracle", "btc-usd")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = r.Curve(ctx, "oracle", "btc-usd")
	require.NoError(t, err)
	assert.False(t, ok, "registered without a curve")

	c := curve.Curve{Type: curve.Linear, Start: 1, Multiplier: 2}
	require.NoError(t, r.InitCurve(ctx, "oracle", "btc-usd", c))

	got, ok, err := r.Curve(ctx, "oracle", "btc-usd")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c, got)

	other := curve.Curve{Type: curve.Exponential, Start: 9}
	assert.ErrorIs(t, r.InitCurve(ctx, "oracle", "btc-usd", other), directory.ErrCurveInitialized)
	got, _, _ = r.Curve(ctx, "oracle", "btc-usd")
	assert.Equal(t, c, got, "curve is immutable once set")
}

func TestRegistryRejectsCurveForUnknownProvider(t *testing.T) {
	r := directory.NewRegistry()
	err := r.InitCurve(context.Background(), "ghost", "x", curve.Curve{Type: curve.Linear})
	assert.ErrorIs(t, err, directory.ErrNotRegistered)
}

func TestRegistryRejectsInvalidCurve(t *testing.T) {
	ctx := context.Background()
	r := directory.NewRegistry()
	require.NoError(t, r.Register(ctx, "oracle", "x", directory.Profile{}))
	err := r.InitCurve(ctx, "oracle", "x", curve.Curve{Type: "cubic"})
	assert.ErrorIs(t, err, curve.ErrUnknownType)
}

func TestRegistryProfileIsCopied(t *testing.T) {
	ctx := context.Background()
	r := directory.NewRegistry()
	params := map[string]string{"k": "v"}
	require.NoError(t, r.Register(ctx, "oracle", "x", directory.Profile{Title: "T", Params: params}))
	params["k"] = "changed"

	p, err := r.Profile(ctx, "oracle", "x")
	require.NoError(t, err)
	assert.Equal(t, "T", p.Title)
	assert.Equal(t, "v", p.Params["k"])

	_, err = r.Profile(ctx, "oracle", "y")
	assert.ErrorIs(t, err, directory.ErrNotRegistered)
}
