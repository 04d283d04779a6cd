package bonding

import "context"

// DotsIssued returns the dots issued on (provider, specifier) to subscriber
// by bonding, net of unbonding. Escrow and release do not change it.
func (e *Engine) DotsIssued(ctx context.Context, subscriber, provider, specifier string) (uint64, error) {
	a, err := e.Account(ctx, subscriber, provider, specifier)
	if err != nil {
		return 0, err
	}
	return a.Issued, nil
}
