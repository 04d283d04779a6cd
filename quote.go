package bonding

import (
	"context"

	"github.com/xraph/bonding/curve"
)

// CalcValueForDots returns what the first dots units on the provider's
// curve cost.
func (e *Engine) CalcValueForDots(ctx context.Context, provider, specifier string, dots uint64) (uint64, error) {
	if err := validatePair(provider, specifier); err != nil {
		return 0, err
	}
	c, err := e.curveFor(ctx, provider, specifier)
	if err != nil {
		return 0, err
	}
	return curve.CumulativeCost(c, 0, dots)
}

// CalcDotsForValue returns how many dots value buys from the bottom of the
// provider's curve, capped at curve.MaxDotsPerCall, and what they cost.
func (e *Engine) CalcDotsForValue(ctx context.Context, provider, specifier string, value uint64) (valueUsed, dots uint64, err error) {
	if err := validatePair(provider, specifier); err != nil {
		return 0, 0, err
	}
	c, err := e.curveFor(ctx, provider, specifier)
	if err != nil {
		return 0, 0, err
	}
	return curve.Quote(c, 0, value)
}

// CurrentCostOfDot returns the price of the next dot after issued units.
func (e *Engine) CurrentCostOfDot(ctx context.Context, provider, specifier string, issued uint64) (uint64, error) {
	if err := validatePair(provider, specifier); err != nil {
		return 0, err
	}
	c, err := e.curveFor(ctx, provider, specifier)
	if err != nil {
		return 0, err
	}
	if issued == ^uint64(0) {
		return 0, ErrOverflow
	}
	return curve.UnitPrice(c, issued+1)
}
