// Package registry implements the ticket collaborator: uniquely numbered,
// transferable tickets with per-token operator approvals.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// Registry implements domain.TicketRegistry in memory. Token IDs are
// sequential from 1 across all activities and are never reused, even after a
// burn.
type Registry struct {
	mu        sync.RWMutex
	tickets   map[uint64]*domain.Ticket
	approvals map[uint64]domain.Account // tokenID -> approved operator
	nextID    uint64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		tickets:   make(map[uint64]*domain.Ticket),
		approvals: make(map[uint64]domain.Account),
		nextID:    1,
	}
}

// Mint creates a new ticket owned by owner and returns it.
func (r *Registry) Mint(owner domain.Account, payload domain.TicketPayload) domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := domain.Ticket{
		TokenID:  r.nextID,
		Payload:  payload,
		Owner:    owner,
		MintedAt: time.Now().UTC(),
	}
	r.nextID++
	r.tickets[t.TokenID] = &t
	return t
}

// Burn revokes the ticket's existence. Subsequent lookups fail with
// ErrNotFound.
func (r *Registry) Burn(tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[tokenID]; !ok {
		return fmt.Errorf("registry: burn token %d: %w", tokenID, domain.ErrNotFound)
	}
	delete(r.tickets, tokenID)
	delete(r.approvals, tokenID)
	return nil
}

// OwnerOf returns the current owner of the ticket.
func (r *Registry) OwnerOf(tokenID uint64) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[tokenID]
	if !ok {
		return "", fmt.Errorf("registry: token %d: %w", tokenID, domain.ErrNotFound)
	}
	return t.Owner, nil
}

// Get returns a copy of the full ticket record.
func (r *Registry) Get(tokenID uint64) (domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[tokenID]
	if !ok {
		return domain.Ticket{}, fmt.Errorf("registry: token %d: %w", tokenID, domain.ErrNotFound)
	}
	return *t, nil
}

// Transfer moves ownership from from to to. It fails when from is not the
// current owner, and clears any operator approval on success.
func (r *Registry) Transfer(tokenID uint64, from, to domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[tokenID]
	if !ok {
		return fmt.Errorf("registry: transfer token %d: %w", tokenID, domain.ErrNotFound)
	}
	if t.Owner != from {
		return fmt.Errorf("registry: transfer token %d from %s: %w", tokenID, from, domain.ErrNotOwner)
	}
	t.Owner = to
	delete(r.approvals, tokenID)
	return nil
}

// Approve lets the ticket's owner authorize an operator to transfer the
// ticket on its behalf. Only the current owner may approve.
func (r *Registry) Approve(caller domain.Account, tokenID uint64, operator domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[tokenID]
	if !ok {
		return fmt.Errorf("registry: approve token %d: %w", tokenID, domain.ErrNotFound)
	}
	if t.Owner != caller {
		return fmt.Errorf("registry: approve token %d by %s: %w", tokenID, caller, domain.ErrNotOwner)
	}
	r.approvals[tokenID] = operator
	return nil
}

// IsApproved reports whether operator currently holds approval for the
// ticket.
func (r *Registry) IsApproved(tokenID uint64, operator domain.Account) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.approvals[tokenID] == operator
}

// TokensOf returns copies of every ticket owned by owner, ordered by token
// ID.
func (r *Registry) TokensOf(owner domain.Account) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.Owner == owner {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

// Snapshot returns copies of all live tickets, for persistence.
func (r *Registry) Snapshot() []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

// Restore replaces the registry contents with the given tickets and resumes
// the ID sequence after the highest seen token ID. Approvals are ephemeral
// and start empty after a restore.
func (r *Registry) Restore(tickets []domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = make(map[uint64]*domain.Ticket, len(tickets))
	r.approvals = make(map[uint64]domain.Account)
	var maxID uint64
	for _, t := range tickets {
		t := t
		r.tickets[t.TokenID] = &t
		if t.TokenID > maxID {
			maxID = t.TokenID
		}
	}
	r.nextID = maxID + 1
}

// SetNextID advances the mint sequence. It is used on restore when burned
// tickets mean the highest live token ID underestimates the sequence.
func (r *Registry) SetNextID(next uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if next > r.nextID {
		r.nextID = next
	}
}
