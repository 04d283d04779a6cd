package curve

import "errors"

// MaxDotsPerCall bounds the number of dots a single quote can grant.
const MaxDotsPerCall uint64 = 100

// Quote finds the largest quantity q in [0, MaxDotsPerCall] whose cost,
// starting after the issued units, fits in budget. It returns that cost and
// q. Budget beyond the cost of the granted units is not consumed.
func Quote(c Curve, issued, budget uint64) (valueUsed, quantity uint64, err error) {
	if err := c.Validate(); err != nil {
		return 0, 0, err
	}
	if budget == 0 {
		return 0, 0, nil
	}

	lo, hi := uint64(0), MaxDotsPerCall
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		cost, err := CumulativeCost(c, issued, mid)
		switch {
		case errors.Is(err, ErrOverflow):
			hi = mid - 1
		case err != nil:
			return 0, 0, err
		case cost <= budget:
			lo = mid
		default:
			hi = mid - 1
		}
	}
	if lo == 0 {
		return 0, 0, nil
	}

	valueUsed, err = CumulativeCost(c, issued, lo)
	if err != nil {
		return 0, 0, err
	}
	return valueUsed, lo, nil
}
