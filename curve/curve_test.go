package curve_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding/curve"
)

var (
	linear      = curve.Curve{Type: curve.Linear, Start: 1, Multiplier: 2}
	exponential = curve.Curve{Type: curve.Exponential, Start: 1, Multiplier: 2}
	logarithmic = curve.Curve{Type: curve.Logarithmic, Start: 1, Multiplier: 2}
)

// naiveCost sums unit prices one by one.
func naiveCost(t *testing.T, c curve.Curve, from, count uint64) uint64 {
	t.Helper()
	var sum uint64
	for i := from + 1; i <= from+count; i++ {
		p, err := curve.UnitPrice(c, i)
		require.NoError(t, err)
		sum += p
	}
	return sum
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name  string
		c     curve.Curve
		index uint64
		want  uint64
	}{
		{"linear first", linear, 1, 1},
		{"linear fifth", linear, 5, 9},
		{"exponential first", exponential, 1, 1},
		{"exponential fourth", exponential, 4, 19},
		{"logarithmic first", logarithmic, 1, 1},
		{"logarithmic second", logarithmic, 2, 1},
		{"logarithmic third", logarithmic, 3, 3},
		{"logarithmic fifth", logarithmic, 5, 5},
		{"logarithmic ninth", logarithmic, 9, 7},
		{"flat", curve.Curve{Type: curve.Linear, Start: 7}, 1000, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := curve.UnitPrice(tt.c, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnitPriceRejectsZeroIndex(t *testing.T) {
	_, err := curve.UnitPrice(linear, 0)
	assert.ErrorIs(t, err, curve.ErrInvalidIndex)
}

func TestCumulativeCostLinearReference(t *testing.T) {
	got, err := curve.CumulativeCost(linear, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), got)
}

func TestCumulativeCostLinearClosedForm(t *testing.T) {
	for s := uint64(0); s <= 5; s++ {
		for m := uint64(0); m <= 5; m++ {
			c := curve.Curve{Type: curve.Linear, Start: s, Multiplier: m}
			for n := uint64(0); n <= 60; n++ {
				got, err := curve.CumulativeCost(c, 0, n)
				require.NoError(t, err)
				want := n*s + m*n*(n-1)/2
				if n == 0 {
					want = 0
				}
				require.Equal(t, want, got, "s=%d m=%d n=%d", s, m, n)
			}
		}
	}
}

func TestCumulativeCostMatchesUnitSums(t *testing.T) {
	for _, c := range []curve.Curve{linear, exponential, logarithmic} {
		t.Run(string(c.Type), func(t *testing.T) {
			for _, from := range []uint64{0, 1, 2, 3, 7, 31, 64, 1000} {
				for _, count := range []uint64{0, 1, 2, 5, 17, 100} {
					got, err := curve.CumulativeCost(c, from, count)
					require.NoError(t, err)
					require.Equal(t, naiveCost(t, c, from, count), got, "from=%d count=%d", from, count)
				}
			}
		})
	}
}

func TestCumulativeCostOverflow(t *testing.T) {
	huge := curve.Curve{Type: curve.Linear, Start: math.MaxUint64, Multiplier: 1}
	_, err := curve.CumulativeCost(huge, 0, 2)
	assert.ErrorIs(t, err, curve.ErrOverflow)

	_, err = curve.CumulativeCost(exponential, math.MaxUint32, math.MaxUint32)
	assert.ErrorIs(t, err, curve.ErrOverflow)

	_, err = curve.UnitPrice(huge, 2)
	assert.ErrorIs(t, err, curve.ErrOverflow)
}

func TestCumulativeCostUnknownType(t *testing.T) {
	_, err := curve.CumulativeCost(curve.Curve{Type: "sigmoid"}, 0, 1)
	assert.ErrorIs(t, err, curve.ErrUnknownType)
}

func TestQuoteReference(t *testing.T) {
	value, dots, err := curve.Quote(linear, 0, 26)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), value)
	assert.Equal(t, uint64(5), dots)

	// The sixth unit costs 11 and the seventh 13.
	value, dots, err = curve.Quote(linear, 5, 14)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), value)
	assert.Equal(t, uint64(1), dots)
}

func TestQuoteZeroBudget(t *testing.T) {
	for _, c := range []curve.Curve{linear, exponential, logarithmic, {Type: curve.Linear}} {
		value, dots, err := curve.Quote(c, 0, 0)
		require.NoError(t, err)
		assert.Zero(t, value)
		assert.Zero(t, dots)
	}
}

func TestQuoteBudgetBelowFirstUnit(t *testing.T) {
	c := curve.Curve{Type: curve.Linear, Start: 10}
	value, dots, err := curve.Quote(c, 0, 9)
	require.NoError(t, err)
	assert.Zero(t, value)
	assert.Zero(t, dots)
}

func TestQuoteInverseOfCumulativeCost(t *testing.T) {
	for _, c := range []curve.Curve{linear, exponential, logarithmic} {
		t.Run(string(c.Type), func(t *testing.T) {
			for n := uint64(0); n <= curve.MaxDotsPerCall; n++ {
				cost, err := curve.CumulativeCost(c, 0, n)
				require.NoError(t, err)

				value, dots, err := curve.Quote(c, 0, cost)
				require.NoError(t, err)
				require.Equal(t, cost, value, "n=%d", n)
				require.Equal(t, n, dots, "n=%d", n)
			}
		})
	}
}

func TestQuoteCapsAtMaxDotsPerCall(t *testing.T) {
	for _, c := range []curve.Curve{linear, exponential, logarithmic} {
		t.Run(string(c.Type), func(t *testing.T) {
			capCost, err := curve.CumulativeCost(c, 0, curve.MaxDotsPerCall)
			require.NoError(t, err)
			overCost, err := curve.CumulativeCost(c, 0, curve.MaxDotsPerCall+1)
			require.NoError(t, err)

			for _, budget := range []uint64{overCost, overCost * 10, math.MaxUint64} {
				value, dots, err := curve.Quote(c, 0, budget)
				require.NoError(t, err)
				assert.Equal(t, curve.MaxDotsPerCall, dots)
				assert.Equal(t, capCost, value)
			}
		})
	}
}

func TestQuoteTreatsOverflowAsUnaffordable(t *testing.T) {
	c := curve.Curve{Type: curve.Linear, Start: math.MaxUint64 / 3}
	value, dots, err := curve.Quote(c, 0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), dots)
	assert.Equal(t, uint64(math.MaxUint64), value)
}

func TestParseType(t *testing.T) {
	got, err := curve.ParseType(" Exponential ")
	require.NoError(t, err)
	assert.Equal(t, curve.Exponential, got)

	_, err = curve.ParseType("cubic")
	assert.ErrorIs(t, err, curve.ErrUnknownType)
}
