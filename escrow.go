package bonding

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xraph/bonding/account"
)

// Outcome is the result of an escrow or release request. Rejections leave
// every balance untouched and are not errors.
type Outcome string

// Escrow and release outcomes.
const (
	Applied                     Outcome = "applied"
	RejectedUnauthorized        Outcome = "rejected_unauthorized"
	RejectedInsufficientBalance Outcome = "rejected_insufficient_balance"
)

// Rejected reports whether the request was refused.
func (o Outcome) Rejected() bool {
	return o == RejectedUnauthorized || o == RejectedInsufficientBalance
}

const (
	opEscrow  = "escrow"
	opRelease = "release"
)

// Escrow locks quantity of the subscriber's bonded dots. Only the
// dispatcher may escrow; any other caller, or a quantity above the bonded
// balance, is rejected without effect.
func (e *Engine) Escrow(ctx context.Context, caller, subscriber, provider, specifier string, quantity uint64) (_ Outcome, err error) {
	key := account.NewKey(subscriber, provider, specifier)
	ctx, span := e.startSpan(ctx, "Escrow", key, attribute.Int64("bonding.quantity", clampInt64(quantity)))
	defer func() { endSpan(span, err) }()

	if err := validateKey("subscriber", key); err != nil {
		return "", err
	}
	if !e.isDispatcher(caller) {
		return e.reject(ctx, opEscrow, key, quantity, RejectedUnauthorized), nil
	}

	outcome, err := e.escrow(ctx, key, quantity)
	if err != nil {
		return "", err
	}
	return e.settled(ctx, opEscrow, key, quantity, outcome), nil
}

// escrow applies an authorized Escrow under the engine lock.
func (e *Engine) escrow(ctx context.Context, key account.Key, quantity uint64) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.load(ctx, key)
	if err != nil {
		return "", err
	}
	if quantity > current.Bonded {
		return RejectedInsufficientBalance, nil
	}
	if quantity == 0 {
		return Applied, nil
	}

	next := current.Clone()
	next.Bonded -= quantity
	if next.Escrowed, err = add(next.Escrowed, quantity); err != nil {
		return "", err
	}

	if err := e.save(ctx, next); err != nil {
		return "", fmt.Errorf("bonding: save escrow: %w", err)
	}

	e.logger.Debug("escrowed",
		"key", key.String(),
		"quantity", quantity,
		"escrowed", next.Escrowed,
	)
	return Applied, nil
}

// Release settles quantity of the subscriber's escrowed dots by crediting
// them to the provider's own bonded position on the same specifier. Only
// the dispatcher may release, and never more than is escrowed.
func (e *Engine) Release(ctx context.Context, caller, subscriber, provider, specifier string, quantity uint64) (_ Outcome, err error) {
	key := account.NewKey(subscriber, provider, specifier)
	ctx, span := e.startSpan(ctx, "Release", key, attribute.Int64("bonding.quantity", clampInt64(quantity)))
	defer func() { endSpan(span, err) }()

	if err := validateKey("subscriber", key); err != nil {
		return "", err
	}
	if !e.isDispatcher(caller) {
		return e.reject(ctx, opRelease, key, quantity, RejectedUnauthorized), nil
	}

	outcome, err := e.release(ctx, key, quantity)
	if err != nil {
		return "", err
	}
	return e.settled(ctx, opRelease, key, quantity, outcome), nil
}

func (e *Engine) release(ctx context.Context, key account.Key, quantity uint64) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.load(ctx, key)
	if err != nil {
		return "", err
	}
	if quantity > current.Escrowed {
		return RejectedInsufficientBalance, nil
	}
	if quantity == 0 {
		return Applied, nil
	}

	sub := current.Clone()
	sub.Escrowed -= quantity

	// A provider releasing its own escrow credits the same account.
	providerKey := account.NewKey(key.Provider, key.Provider, key.Specifier)
	prov := sub
	if providerKey != key {
		loaded, err := e.load(ctx, providerKey)
		if err != nil {
			return "", err
		}
		prov = loaded.Clone()
	}
	if prov.Bonded, err = add(prov.Bonded, quantity); err != nil {
		return "", err
	}

	toSave := []*account.Account{sub}
	if prov != sub {
		toSave = append(toSave, prov)
	}
	if err := e.save(ctx, toSave...); err != nil {
		return "", fmt.Errorf("bonding: save release: %w", err)
	}

	e.logger.Debug("released",
		"key", key.String(),
		"quantity", quantity,
		"provider_bonded", prov.Bonded,
	)
	return Applied, nil
}

// PendingEscrow returns the subscriber's escrowed dots on (provider, specifier).
func (e *Engine) PendingEscrow(ctx context.Context, subscriber, provider, specifier string) (uint64, error) {
	a, err := e.Account(ctx, subscriber, provider, specifier)
	if err != nil {
		return 0, err
	}
	return a.Escrowed, nil
}

// settled notifies plugins of an escrow or release decided under the lock.
// Callers must not hold e.mu.
func (e *Engine) settled(ctx context.Context, op string, key account.Key, quantity uint64, outcome Outcome) Outcome {
	switch {
	case outcome.Rejected():
		return e.reject(ctx, op, key, quantity, outcome)
	case quantity == 0:
		return outcome
	case op == opEscrow:
		e.plugins.EmitEscrowed(ctx, key, quantity)
	default:
		e.plugins.EmitReleased(ctx, key, quantity)
	}
	return outcome
}

func (e *Engine) reject(ctx context.Context, op string, key account.Key, quantity uint64, outcome Outcome) Outcome {
	e.logger.Warn(op+" rejected",
		"key", key.String(),
		"quantity", quantity,
		"outcome", string(outcome),
	)
	e.plugins.EmitEscrowRejected(ctx, op, key, quantity, string(outcome))
	return outcome
}
