package api

import "github.com/xraph/bonding"

// BondRequest is the body of POST /bond. Value is the amount offered.
type BondRequest struct {
	Holder    string `json:"holder"`
	Provider  string `json:"provider"`
	Specifier string `json:"specifier"`
	Value     uint64 `json:"value"`
}

// UnbondRequest is the body of POST /unbond.
type UnbondRequest struct {
	Holder    string `json:"holder"`
	Provider  string `json:"provider"`
	Specifier string `json:"specifier"`
	Quantity  uint64 `json:"quantity"`
}

// EscrowRequest is the body of POST /escrow and POST /release. The caller
// comes from the handler's IdentityFunc, not the body.
type EscrowRequest struct {
	Subscriber string `json:"subscriber"`
	Provider   string `json:"provider"`
	Specifier  string `json:"specifier"`
	Quantity   uint64 `json:"quantity"`
}

// OutcomeResponse reports the result of an escrow or release.
type OutcomeResponse struct {
	Outcome bonding.Outcome `json:"outcome"`
}

// DispatcherResponse is the body of GET /dispatcher.
type DispatcherResponse struct {
	Set bool `json:"set"`
}

// AmountResponse carries a single balance.
type AmountResponse struct {
	Amount uint64 `json:"amount"`
}

// QuoteResponse pairs a value with the dots it buys.
type QuoteResponse struct {
	Value uint64 `json:"value"`
	Dots  uint64 `json:"dots"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
