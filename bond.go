package bonding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/curve"
	"github.com/xraph/bonding/id"
)

// Receipt describes the effect of a Bond or Unbond call. A call that moved
// nothing returns a receipt with a nil ID and zero amounts.
type Receipt struct {
	ID       id.ID       `json:"id"`
	Key      account.Key `json:"key"`
	Value    uint64      `json:"value"`
	Quantity uint64      `json:"quantity"`
	At       time.Time   `json:"at"`
}

// Empty reports whether the receipt records no movement.
func (r *Receipt) Empty() bool {
	return r.Quantity == 0 && r.Value == 0
}

// Bond exchanges up to offered units of value for dots on the provider's
// curve. The holder is charged only for the dots granted, at most
// curve.MaxDotsPerCall per call. An offer too small to buy a single dot
// succeeds with an empty receipt.
func (e *Engine) Bond(ctx context.Context, holder, provider, specifier string, offered uint64) (_ *Receipt, err error) {
	key := account.NewKey(holder, provider, specifier)
	ctx, span := e.startSpan(ctx, "Bond", key, attribute.Int64("bonding.offered", clampInt64(offered)))
	defer func() { endSpan(span, err) }()

	if err := validateKey("holder", key); err != nil {
		return nil, err
	}
	c, err := e.curveFor(ctx, provider, specifier)
	if err != nil {
		return nil, err
	}

	receipt, err := e.bond(ctx, key, c, offered)
	if err != nil {
		return nil, err
	}
	if !receipt.Empty() {
		e.plugins.EmitBonded(ctx, key, receipt.Value, receipt.Quantity)
	}
	return receipt, nil
}

// bond applies a Bond under the engine lock. Plugins are notified by the
// caller after the lock is released.
func (e *Engine) bond(ctx context.Context, key account.Key, c curve.Curve, offered uint64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.load(ctx, key)
	if err != nil {
		return nil, err
	}

	value, quantity, err := curve.Quote(c, current.Bonded, offered)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return &Receipt{Key: key, At: e.now()}, nil
	}

	next := current.Clone()
	if next.Bonded, err = add(next.Bonded, quantity); err != nil {
		return nil, err
	}
	if next.ValueHeld, err = add(next.ValueHeld, value); err != nil {
		return nil, err
	}
	if next.Issued, err = add(next.Issued, quantity); err != nil {
		return nil, err
	}

	if err := e.tokens.TransferIn(ctx, key.Holder, value); err != nil {
		return nil, fmt.Errorf("%w: pull %d from %s: %w", ErrTransferFailed, value, key.Holder, err)
	}

	if err := e.save(ctx, next); err != nil {
		if refundErr := e.tokens.TransferOut(ctx, key.Holder, value); refundErr != nil {
			e.logger.Error("bond compensation failed",
				"key", key.String(),
				"value", value,
				"error", refundErr,
			)
			err = errors.Join(err, refundErr)
		} else {
			e.logger.Warn("bond rolled back",
				"key", key.String(),
				"value", value,
				"error", err,
			)
		}
		return nil, fmt.Errorf("bonding: save bond: %w", err)
	}

	receipt := &Receipt{
		ID:       id.NewBondID(),
		Key:      key,
		Value:    value,
		Quantity: quantity,
		At:       e.now(),
	}

	e.logger.Debug("bonded",
		"key", key.String(),
		"value", value,
		"quantity", quantity,
		"bonded", next.Bonded,
	)
	return receipt, nil
}

// Unbond returns quantity dots from the top of the holder's position and
// refunds what those dots cost on the curve. The refund is paid from the
// value the account holds, so dots that arrived without value, such as
// dots released to a provider, fail with ErrInsufficientBalance once the
// refund exceeds ValueHeld.
func (e *Engine) Unbond(ctx context.Context, holder, provider, specifier string, quantity uint64) (_ *Receipt, err error) {
	key := account.NewKey(holder, provider, specifier)
	ctx, span := e.startSpan(ctx, "Unbond", key, attribute.Int64("bonding.quantity", clampInt64(quantity)))
	defer func() { endSpan(span, err) }()

	if err := validateKey("holder", key); err != nil {
		return nil, err
	}
	c, err := e.curveFor(ctx, provider, specifier)
	if err != nil {
		return nil, err
	}

	receipt, err := e.unbond(ctx, key, c, quantity)
	if err != nil {
		return nil, err
	}
	if !receipt.Empty() {
		e.plugins.EmitUnbonded(ctx, key, receipt.Value, receipt.Quantity)
	}
	return receipt, nil
}

func (e *Engine) unbond(ctx context.Context, key account.Key, c curve.Curve, quantity uint64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return &Receipt{Key: key, At: e.now()}, nil
	}
	if quantity > current.Bonded {
		return nil, fmt.Errorf("%w: unbond %d of %d bonded", ErrInsufficientBalance, quantity, current.Bonded)
	}

	refund, err := curve.CumulativeCost(c, current.Bonded-quantity, quantity)
	if err != nil {
		return nil, err
	}
	if refund > current.ValueHeld {
		return nil, fmt.Errorf("%w: refund %d exceeds %d held", ErrInsufficientBalance, refund, current.ValueHeld)
	}

	next := current.Clone()
	next.Bonded -= quantity
	next.ValueHeld -= refund
	next.Issued -= min(next.Issued, quantity)

	if err := e.save(ctx, next); err != nil {
		return nil, fmt.Errorf("bonding: save unbond: %w", err)
	}

	if err := e.tokens.TransferOut(ctx, key.Holder, refund); err != nil {
		if restoreErr := e.save(ctx, current); restoreErr != nil {
			e.logger.Error("unbond restore failed",
				"key", key.String(),
				"refund", refund,
				"error", restoreErr,
			)
		} else {
			e.logger.Warn("unbond rolled back",
				"key", key.String(),
				"refund", refund,
				"error", err,
			)
		}
		return nil, fmt.Errorf("%w: push %d to %s: %w", ErrTransferFailed, refund, key.Holder, err)
	}

	receipt := &Receipt{
		ID:       id.NewUnbondID(),
		Key:      key,
		Value:    refund,
		Quantity: quantity,
		At:       e.now(),
	}

	e.logger.Debug("unbonded",
		"key", key.String(),
		"value", refund,
		"quantity", quantity,
		"bonded", next.Bonded,
	)
	return receipt, nil
}

// Dots returns the dots bonded by holder on (provider, specifier).
func (e *Engine) Dots(ctx context.Context, holder, provider, specifier string) (uint64, error) {
	a, err := e.Account(ctx, holder, provider, specifier)
	if err != nil {
		return 0, err
	}
	return a.Bonded, nil
}

// ValueBound returns the value held against holder's bonded dots.
func (e *Engine) ValueBound(ctx context.Context, holder, provider, specifier string) (uint64, error) {
	a, err := e.Account(ctx, holder, provider, specifier)
	if err != nil {
		return 0, err
	}
	return a.ValueHeld, nil
}

// Account returns the full account for the key. Unknown keys read as zero.
func (e *Engine) Account(ctx context.Context, holder, provider, specifier string) (*account.Account, error) {
	key := account.NewKey(holder, provider, specifier)
	if err := validateKey("holder", key); err != nil {
		return nil, err
	}
	return e.load(ctx, key)
}

// Accounts lists stored accounts matching opts.
func (e *Engine) Accounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	return e.store.ListAccounts(ctx, opts)
}

func clampInt64(v uint64) int64 {
	if v > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(v)
}
