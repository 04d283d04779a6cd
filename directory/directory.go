// Package directory describes the provider directory the engine consults
// before pricing dots, and ships an in-process registry implementing it.
//
// Registration and curve initialization are separate steps: a provider can
// be registered for a specifier long before it publishes the curve, and the
// engine reports the two missing states differently.
package directory

import (
	"context"
	"errors"

	"github.com/xraph/bonding/curve"
)

// Errors returned by Registry.
var (
	ErrAlreadyRegistered = errors.New("directory: provider already registered for specifier")
	ErrNotRegistered     = errors.New("directory: provider not registered for specifier")
	ErrCurveInitialized  = errors.New("directory: curve already initialized")
)

// Directory is the read-only view of provider registrations.
type Directory interface {
	// IsRegistered reports whether provider registered specifier.
	IsRegistered(ctx context.Context, provider, specifier string) (bool, error)
	// Curve returns the curve for (provider, specifier). ok is false when
	// the pair is unregistered or its curve has not been initialized.
	Curve(ctx context.Context, provider, specifier string) (c curve.Curve, ok bool, err error)
}

// Profile is the public information a provider publishes when registering.
type Profile struct {
	Title     string            `json:"title"`
	PublicKey string            `json:"public_key"`
	Params    map[string]string `json:"params,omitempty"`
}
