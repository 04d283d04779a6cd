package bonding

import (
	"errors"
	"fmt"

	"github.com/xraph/bonding/curve"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("bonding: not found")
	ErrAlreadyExists = errors.New("bonding: already exists")
	ErrInvalidInput  = errors.New("bonding: invalid input")

	// Ledger errors
	ErrProviderNotReady    = errors.New("bonding: provider not registered for specifier")
	ErrUninitializedCurve  = errors.New("bonding: curve not initialized")
	ErrInsufficientBalance = errors.New("bonding: insufficient balance")
	ErrOverflow            = curve.ErrOverflow
	ErrTransferFailed      = errors.New("bonding: value transfer failed")

	// Store errors
	ErrStoreNotReady     = errors.New("bonding: store not ready")
	ErrStoreClosed       = errors.New("bonding: store is closed")
	ErrTransactionFailed = errors.New("bonding: transaction failed")
	ErrMigrationFailed   = errors.New("bonding: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("bonding: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "bonding: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("bonding: %d errors occurred: %v", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// ErrOrNil returns nil when empty, the single error when there is one, and
// the MultiError otherwise.
func (e MultiError) ErrOrNil() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	default:
		return e
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsHardFailure reports whether err aborted an operation before it changed
// any state.
func IsHardFailure(err error) bool {
	return errors.Is(err, ErrProviderNotReady) ||
		errors.Is(err, ErrUninitializedCurve) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrOverflow) ||
		errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrInvalidInput)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
