// Package ledger implements the fungible balance collaborator: per-account
// balances with allowance-gated transfers and a faucet for test funds.
package ledger

import (
	"fmt"
	"sync"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// Ledger implements domain.BalanceLedger in memory. It carries its own lock
// so callers outside the engine (faucet, balance queries, approvals) can use
// it directly.
type Ledger struct {
	mu         sync.RWMutex
	balances   map[domain.Account]uint64
	allowances map[domain.Account]map[domain.Account]uint64 // owner -> spender -> amount
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		balances:   make(map[domain.Account]uint64),
		allowances: make(map[domain.Account]map[domain.Account]uint64),
	}
}

// BalanceOf returns the current balance of account. Unknown accounts have a
// zero balance.
func (l *Ledger) BalanceOf(account domain.Account) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Credit adds amount to the account's balance.
func (l *Ledger) Credit(to domain.Account, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
}

// Debit removes amount from the account's balance. It fails without effect
// when the balance is too low.
func (l *Ledger) Debit(from domain.Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("ledger: debit %d from %s: %w", amount, from, domain.ErrInsufficientFunds)
	}
	l.balances[from] -= amount
	return nil
}

// Approve sets the spender's allowance over the owner's funds. It replaces
// any previous allowance rather than adding to it.
func (l *Ledger) Approve(owner, spender domain.Account, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.allowances[owner]
	if !ok {
		m = make(map[domain.Account]uint64)
		l.allowances[owner] = m
	}
	m[spender] = amount
}

// Allowance returns how much the spender may still move from the owner.
func (l *Ledger) Allowance(owner, spender domain.Account) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner][spender]
}

// TransferFrom moves amount from the from account to the to account on the
// spender's authority. It consumes the spender's allowance and fails without
// effect when either the allowance or the balance is too low.
func (l *Ledger) TransferFrom(spender, from, to domain.Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.allowances[from][spender]
	if allowed < amount {
		return fmt.Errorf("ledger: transfer %d from %s by %s: %w", amount, from, spender, domain.ErrInsufficientAllowance)
	}
	if l.balances[from] < amount {
		return fmt.Errorf("ledger: transfer %d from %s: %w", amount, from, domain.ErrInsufficientFunds)
	}

	l.allowances[from][spender] = allowed - amount
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Snapshot returns a copy of every non-zero balance, for persistence.
func (l *Ledger) Snapshot() map[domain.Account]uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[domain.Account]uint64, len(l.balances))
	for acct, bal := range l.balances {
		out[acct] = bal
	}
	return out
}

// Restore replaces all balances with the given set. Allowances are ephemeral
// and start empty after a restore.
func (l *Ledger) Restore(balances map[domain.Account]uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[domain.Account]uint64, len(balances))
	for acct, bal := range balances {
		l.balances[acct] = bal
	}
	l.allowances = make(map[domain.Account]map[domain.Account]uint64)
}
