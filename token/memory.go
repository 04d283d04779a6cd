package token

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// DefaultCustody is the account Memory uses for funds held by the engine.
const DefaultCustody = "bonding"

// Memory is an in-process Ledger with balances and allowances. TransferIn
// spends the allowance the holder granted to the custody account.
type Memory struct {
	mu         sync.Mutex
	custody    string
	balances   map[string]uint64
	allowances map[string]map[string]uint64
}

var _ Ledger = (*Memory)(nil)

// NewMemory creates an empty ledger whose custody account is custody, or
// DefaultCustody when empty.
func NewMemory(custody string) *Memory {
	if custody == "" {
		custody = DefaultCustody
	}
	return &Memory{
		custody:    custody,
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
	}
}

// Custody returns the account holding engine funds.
func (m *Memory) Custody() string { return m.custody }

// Allocate mints amount to owner.
func (m *Memory) Allocate(owner string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bal := m.balances[owner]
	if bal > math.MaxUint64-amount {
		return fmt.Errorf("token: allocate %d to %q: %w", amount, owner, ErrInvalidAmount)
	}
	m.balances[owner] = bal + amount
	return nil
}

// Approve sets the amount spender may pull from owner.
func (m *Memory) Approve(owner, spender string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.allowances[owner] == nil {
		m.allowances[owner] = make(map[string]uint64)
	}
	m.allowances[owner][spender] = amount
}

// BalanceOf returns the balance of owner.
func (m *Memory) BalanceOf(owner string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[owner]
}

// Allowance returns what spender may still pull from owner.
func (m *Memory) Allowance(owner, spender string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowances[owner][spender]
}

// TransferIn implements Ledger.
func (m *Memory) TransferIn(_ context.Context, from string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.allowances[from][m.custody] < amount {
		return ErrInsufficientAllowance
	}
	if err := m.move(from, m.custody, amount); err != nil {
		return err
	}
	m.allowances[from][m.custody] -= amount
	return nil
}

// TransferOut implements Ledger.
func (m *Memory) TransferOut(_ context.Context, to string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(m.custody, to, amount)
}

// move must be called with mu held.
func (m *Memory) move(from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if m.balances[from] < amount {
		return ErrInsufficientFunds
	}
	if m.balances[to] > math.MaxUint64-amount {
		return ErrInvalidAmount
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}
