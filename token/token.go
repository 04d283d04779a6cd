// Package token models the value ledger that holds the deposit asset paid
// for dots.
//
// The engine pulls value from a holder when it bonds and pushes it back on
// unbond. Allowance handling and the asset's own transfer rules belong to
// the ledger; the engine only sees success or failure.
package token

//go:generate mockgen -source=token.go -destination=mocks/mocks.go -package=mocks Ledger

import (
	"context"
	"errors"
)

// Errors returned by Memory.
var (
	ErrInsufficientFunds     = errors.New("token: insufficient funds")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrInvalidAmount         = errors.New("token: invalid amount")
)

// Ledger moves deposit value between holders and the engine's custody.
type Ledger interface {
	// TransferIn pulls amount from the holder into custody.
	TransferIn(ctx context.Context, from string, amount uint64) error
	// TransferOut pushes amount from custody to the holder.
	TransferOut(ctx context.Context, to string, amount uint64) error
}
