// Package engine implements the wagering core: activity lifecycle, stake
// intake, parimutuel resolution, and the ticket resale market. Every
// mutating operation runs to completion under a single lock, so the pool
// conservation and at-most-once invariants hold by serializability.
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// Engine owns all activity and sell-order state and drives the balance
// ledger and ticket registry collaborators. Funds staked into pools are held
// by domain.PoolAccount, which also acts as the allowance spender for bets
// and marketplace purchases.
type Engine struct {
	mu       sync.Mutex
	notary   domain.Account
	ledger   domain.BalanceLedger
	registry domain.TicketRegistry

	activities     map[uint64]*domain.Activity
	orders         map[uint64]domain.SellOrder
	nextActivityID uint64
}

// New creates an Engine with the given notary identity and collaborators.
func New(notary domain.Account, ledger domain.BalanceLedger, registry domain.TicketRegistry) *Engine {
	return &Engine{
		notary:         notary,
		ledger:         ledger,
		registry:       registry,
		activities:     make(map[uint64]*domain.Activity),
		orders:         make(map[uint64]domain.SellOrder),
		nextActivityID: 1,
	}
}

// Notary returns the configured notary identity.
func (e *Engine) Notary() domain.Account { return e.notary }

// CreateActivity opens a new wagering pool. Only the notary may call it. The
// seed pool is moved from the notary's balance into the pool account via a
// pre-approved allowance; it inflates the total pool but is not attributed
// to any choice.
func (e *Engine) CreateActivity(caller domain.Account, description string, choices []string, endTime int64, seedPool uint64) (domain.Activity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.notary {
		return domain.Activity{}, fmt.Errorf("engine: create activity by %s: %w", caller, domain.ErrUnauthorized)
	}
	if len(choices) < 2 {
		return domain.Activity{}, fmt.Errorf("engine: create activity with %d choices: %w", len(choices), domain.ErrInvalidArgument)
	}

	if seedPool > 0 {
		if err := e.ledger.TransferFrom(domain.PoolAccount, caller, domain.PoolAccount, seedPool); err != nil {
			return domain.Activity{}, fmt.Errorf("engine: seed pool: %w", err)
		}
	}

	a := &domain.Activity{
		ID:            e.nextActivityID,
		Description:   description,
		Choices:       append([]string(nil), choices...),
		EndTime:       endTime,
		SeedPool:      seedPool,
		TotalPool:     seedPool,
		PerChoicePool: make([]uint64, len(choices)),
		CreatedAt:     time.Now().UTC(),
	}
	e.nextActivityID++
	e.activities[a.ID] = a

	return a.Clone(), nil
}

// GetActivity returns a snapshot of the activity.
func (e *Engine) GetActivity(id uint64) (domain.Activity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.activities[id]
	if !ok {
		return domain.Activity{}, fmt.Errorf("engine: activity %d: %w", id, domain.ErrNotFound)
	}
	return a.Clone(), nil
}

// ListActivities returns activity snapshots, newest first.
func (e *Engine) ListActivities(opts domain.ListOpts) []domain.Activity {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Activity, 0, len(e.activities))
	for _, a := range e.activities {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}

// GetChoiceBetAmount returns the total staked on one choice of an activity.
func (e *Engine) GetChoiceBetAmount(id uint64, choiceIndex int) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.activities[id]
	if !ok {
		return 0, fmt.Errorf("engine: activity %d: %w", id, domain.ErrNotFound)
	}
	if !a.ChoiceInRange(choiceIndex) {
		return 0, fmt.Errorf("engine: activity %d choice %d: %w", id, choiceIndex, domain.ErrInvalidArgument)
	}
	return a.PerChoicePool[choiceIndex], nil
}

// BetResult reports the outcome of an accepted stake.
type BetResult struct {
	Ticket   domain.Ticket
	Activity domain.Activity
}

// PlaceBet stakes amount on a choice of an open activity. The stake is moved
// from the caller's balance into the pool account via a pre-approved
// allowance and a ticket is minted to the caller. The activity's end time is
// informational and does not close betting.
func (e *Engine) PlaceBet(caller domain.Account, activityID uint64, choiceIndex int, amount uint64) (BetResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.activities[activityID]
	if !ok {
		return BetResult{}, fmt.Errorf("engine: place bet on activity %d: %w", activityID, domain.ErrNotFound)
	}
	if amount == 0 {
		return BetResult{}, fmt.Errorf("engine: place bet with zero amount: %w", domain.ErrInvalidArgument)
	}
	if !a.ChoiceInRange(choiceIndex) {
		return BetResult{}, fmt.Errorf("engine: place bet on choice %d of activity %d: %w", choiceIndex, activityID, domain.ErrInvalidArgument)
	}
	if a.Resolved {
		return BetResult{}, fmt.Errorf("engine: place bet on activity %d: %w", activityID, domain.ErrAlreadyResolved)
	}

	if err := e.ledger.TransferFrom(domain.PoolAccount, caller, domain.PoolAccount, amount); err != nil {
		return BetResult{}, fmt.Errorf("engine: place bet: %w", err)
	}

	a.PerChoicePool[choiceIndex] += amount
	a.TotalPool += amount

	ticket := e.registry.Mint(caller, domain.TicketPayload{
		ActivityID:  activityID,
		ChoiceIndex: choiceIndex,
		Amount:      amount,
	})

	return BetResult{Ticket: ticket, Activity: a.Clone()}, nil
}

// ResolveActivity freezes the activity's outcome. Only the notary may call
// it, and it succeeds at most once per activity.
func (e *Engine) ResolveActivity(caller domain.Account, activityID uint64, winningChoice int) (domain.Activity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.notary {
		return domain.Activity{}, fmt.Errorf("engine: resolve activity %d by %s: %w", activityID, caller, domain.ErrUnauthorized)
	}
	a, ok := e.activities[activityID]
	if !ok {
		return domain.Activity{}, fmt.Errorf("engine: resolve activity %d: %w", activityID, domain.ErrNotFound)
	}
	if a.Resolved {
		return domain.Activity{}, fmt.Errorf("engine: resolve activity %d: %w", activityID, domain.ErrAlreadyResolved)
	}
	if !a.ChoiceInRange(winningChoice) {
		return domain.Activity{}, fmt.Errorf("engine: resolve activity %d to choice %d: %w", activityID, winningChoice, domain.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	a.Resolved = true
	a.WinningChoice = winningChoice
	a.ResolvedAt = &now

	return a.Clone(), nil
}

// ClaimResult reports a paid-out claim.
type ClaimResult struct {
	TokenID     uint64
	Claimer     domain.Account
	Payout      uint64
	OrderVoided bool
	Activity    domain.Activity
}

// ClaimWinnings pays out a winning ticket and burns it. The payout is the
// ticket's parimutuel share of the total pool, floor-divided:
//
//	payout = amount * totalPool / perChoicePool[winningChoice]
//
// using the pool values frozen at resolution. Losing tickets can never be
// claimed; they stay with their holder. A live sell order for the claimed
// ticket is voided, since the ticket no longer exists.
func (e *Engine) ClaimWinnings(caller domain.Account, tokenID uint64) (ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, err := e.registry.Get(tokenID)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("engine: claim: %w", err)
	}
	if ticket.Owner != caller {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d by %s: %w", tokenID, caller, domain.ErrNotOwner)
	}

	a, ok := e.activities[ticket.Payload.ActivityID]
	if !ok {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d, activity %d: %w", tokenID, ticket.Payload.ActivityID, domain.ErrNotFound)
	}
	if !a.Resolved {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d: %w", tokenID, domain.ErrNotResolved)
	}
	if ticket.Payload.ChoiceIndex != a.WinningChoice {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d: %w", tokenID, domain.ErrNotWinningTicket)
	}

	payout, err := PariPayout(ticket.Payload.Amount, a.TotalPool, a.PerChoicePool[a.WinningChoice])
	if err != nil {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d: %w", tokenID, err)
	}

	if err := e.ledger.Debit(domain.PoolAccount, payout); err != nil {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d: pool underfunded: %w", tokenID, err)
	}
	e.ledger.Credit(caller, payout)

	if err := e.registry.Burn(tokenID); err != nil {
		return ClaimResult{}, fmt.Errorf("engine: claim token %d: %w", tokenID, err)
	}

	_, voided := e.orders[tokenID]
	if voided {
		delete(e.orders, tokenID)
	}

	return ClaimResult{
		TokenID:     tokenID,
		Claimer:     caller,
		Payout:      payout,
		OrderVoided: voided,
		Activity:    a.Clone(),
	}, nil
}

// Restore replaces engine state from persisted records and resumes the
// activity ID sequence. The ledger and registry are restored separately by
// their owners.
func (e *Engine) Restore(activities []domain.Activity, orders []domain.SellOrder) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activities = make(map[uint64]*domain.Activity, len(activities))
	var maxID uint64
	for _, a := range activities {
		a := a.Clone()
		e.activities[a.ID] = &a
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	e.nextActivityID = maxID + 1

	e.orders = make(map[uint64]domain.SellOrder, len(orders))
	for _, o := range orders {
		e.orders[o.TokenID] = o
	}
}
