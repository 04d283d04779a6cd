package curve

import (
	"errors"
	"math/big"
)

// Errors returned by curve evaluation.
var (
	ErrOverflow     = errors.New("curve: arithmetic overflow")
	ErrInvalidIndex = errors.New("curve: unit index must be positive")
	ErrUnknownType  = errors.New("curve: unknown curve type")
)

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// UnitPrice returns the price of the index-th unit (1-based).
//
// With t = index-1 units already issued:
//
//	Linear:      start + multiplier*t
//	Exponential: start + multiplier*t^2
//	Logarithmic: start + multiplier*floor(log2(max(t, 1)))
func UnitPrice(c Curve, index uint64) (uint64, error) {
	if index == 0 {
		return 0, ErrInvalidIndex
	}
	return CumulativeCost(c, index-1, 1)
}

// CumulativeCost returns the sum of UnitPrice(c, from+1 .. from+count).
// The sum is evaluated exactly; a result that does not fit in a uint64
// returns ErrOverflow.
func CumulativeCost(c Curve, from, count uint64) (uint64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	lo := new(big.Int).SetUint64(from)
	hi := new(big.Int).SetUint64(count)
	hi.Add(hi, lo)

	// count*start + multiplier*(G(hi) - G(lo)), where G(k) sums the
	// shape term over t in [0, k).
	total := new(big.Int).SetUint64(count)
	total.Mul(total, new(big.Int).SetUint64(c.Start))

	shape := prefix(c.Type, hi)
	shape.Sub(shape, prefix(c.Type, lo))
	shape.Mul(shape, new(big.Int).SetUint64(c.Multiplier))
	total.Add(total, shape)

	if total.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return total.Uint64(), nil
}

// prefix returns the sum of the shape term of t over t in [0, k).
func prefix(t Type, k *big.Int) *big.Int {
	switch t {
	case Linear:
		return sumLinear(k)
	case Exponential:
		return sumSquares(k)
	case Logarithmic:
		return sumLog2(k)
	default:
		return new(big.Int)
	}
}

// sumLinear is k(k-1)/2.
func sumLinear(k *big.Int) *big.Int {
	if k.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Sub(k, big.NewInt(1))
	r.Mul(r, k)
	return r.Rsh(r, 1)
}

// sumSquares is (k-1)k(2k-1)/6.
func sumSquares(k *big.Int) *big.Int {
	if k.Sign() == 0 {
		return new(big.Int)
	}
	km1 := new(big.Int).Sub(k, big.NewInt(1))
	twoKm1 := new(big.Int).Lsh(k, 1)
	twoKm1.Sub(twoKm1, big.NewInt(1))

	r := new(big.Int).Mul(km1, k)
	r.Mul(r, twoKm1)
	return r.Quo(r, big.NewInt(6))
}

// sumLog2 adds floor(log2(max(t, 1))) over t in [0, k). Every t in
// [2^b, 2^(b+1)) contributes b, so the sum is taken one octave at a time.
func sumLog2(k *big.Int) *big.Int {
	r := new(big.Int)
	width := new(big.Int)
	for b := uint(1); ; b++ {
		low := new(big.Int).Lsh(big.NewInt(1), b)
		if low.Cmp(k) >= 0 {
			return r
		}
		high := new(big.Int).Lsh(low, 1)
		if high.Cmp(k) > 0 {
			high.Set(k)
		}
		width.Sub(high, low)
		width.Mul(width, big.NewInt(int64(b)))
		r.Add(r, width)
	}
}
