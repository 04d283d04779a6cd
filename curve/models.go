// Package curve prices dots along a provider's bonding curve.
//
// A curve maps the index of a unit (1-based) to the price of buying it. All
// three supported shapes are non-decreasing in the index, so the cost of a
// contiguous run of units grows with its length and can be inverted under a
// budget by search.
package curve

import (
	"fmt"
	"strings"
)

// Type identifies the growth law of a curve.
type Type string

// Supported curve types.
const (
	Linear      Type = "linear"
	Exponential Type = "exponential"
	Logarithmic Type = "logarithmic"
)

// Valid reports whether t is one of the supported curve types.
func (t Type) Valid() bool {
	switch t {
	case Linear, Exponential, Logarithmic:
		return true
	default:
		return false
	}
}

// ParseType parses a curve type name, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Curve is the pricing description a provider attaches to one specifier.
// It is immutable once the provider has set it.
type Curve struct {
	Type       Type   `json:"type"`
	Start      uint64 `json:"start"`
	Multiplier uint64 `json:"multiplier"`
}

// Validate checks that the curve has a known type.
func (c Curve) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, string(c.Type))
	}
	return nil
}

// String renders the curve as "type(start=S, multiplier=M)".
func (c Curve) String() string {
	return fmt.Sprintf("%s(start=%d, multiplier=%d)", c.Type, c.Start, c.Multiplier)
}
