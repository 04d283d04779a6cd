package account

import "context"

// Store persists accounts.
type Store interface {
	// GetAccount returns the account for key, or an error wrapping
	// bonding.ErrNotFound when none has been saved.
	GetAccount(ctx context.Context, key Key) (*Account, error)
	// SaveAccounts writes every account in one atomic step: either all
	// of them become visible or none do.
	SaveAccounts(ctx context.Context, accounts ...*Account) error
	ListAccounts(ctx context.Context, opts ListOpts) ([]*Account, error)
}

// ListOpts filters ListAccounts. Empty fields match everything.
type ListOpts struct {
	Holder    string
	Provider  string
	Specifier string
	Limit     int
	Offset    int
}

// Matches reports whether key passes the filter.
func (o ListOpts) Matches(key Key) bool {
	return (o.Holder == "" || o.Holder == key.Holder) &&
		(o.Provider == "" || o.Provider == key.Provider) &&
		(o.Specifier == "" || o.Specifier == key.Specifier)
}
