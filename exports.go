package bonding

import (
	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/curve"
	"github.com/xraph/bonding/types"
)

// Re-export common types so callers rarely need the sub-packages.

// Entity is re-exported from types package.
type Entity = types.Entity

// Curve is re-exported from curve package.
type Curve = curve.Curve

// CurveType is re-exported from curve package.
type CurveType = curve.Type

// Curve types.
const (
	Linear      = curve.Linear
	Exponential = curve.Exponential
	Logarithmic = curve.Logarithmic
)

// MaxDotsPerCall is re-exported from curve package.
const MaxDotsPerCall = curve.MaxDotsPerCall

// Key is re-exported from account package.
type Key = account.Key

// Account is re-exported from account package.
type Account = account.Account

// NewKey is re-exported from account package.
var NewKey = account.NewKey
