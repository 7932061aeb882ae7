package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// ListTicket offers a ticket for sale at a fixed price. The caller must own
// the ticket and must have approved the pool account to move it
// (escrow-by-approval: the ticket stays with the owner until a buy
// executes). Listing again overwrites the previous order.
func (e *Engine) ListTicket(caller domain.Account, tokenID uint64, price uint64) (domain.SellOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if price == 0 {
		return domain.SellOrder{}, fmt.Errorf("engine: list token %d at zero price: %w", tokenID, domain.ErrInvalidArgument)
	}

	owner, err := e.registry.OwnerOf(tokenID)
	if err != nil {
		return domain.SellOrder{}, fmt.Errorf("engine: list token %d: %w", tokenID, err)
	}
	if owner != caller {
		return domain.SellOrder{}, fmt.Errorf("engine: list token %d by %s: %w", tokenID, caller, domain.ErrNotOwner)
	}
	if !e.registry.IsApproved(tokenID, domain.PoolAccount) {
		return domain.SellOrder{}, fmt.Errorf("engine: list token %d: %w", tokenID, domain.ErrNotApproved)
	}

	order := domain.SellOrder{
		TokenID:  tokenID,
		Seller:   caller,
		Price:    price,
		ListedAt: time.Now().UTC(),
	}
	e.orders[tokenID] = order
	return order, nil
}

// UnlistTicket withdraws a live order. Only the recorded seller may do so.
func (e *Engine) UnlistTicket(caller domain.Account, tokenID uint64) (domain.SellOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[tokenID]
	if !ok {
		return domain.SellOrder{}, fmt.Errorf("engine: unlist token %d: %w", tokenID, domain.ErrNoSuchOrder)
	}
	if order.Seller != caller {
		return domain.SellOrder{}, fmt.Errorf("engine: unlist token %d by %s: %w", tokenID, caller, domain.ErrUnauthorized)
	}
	delete(e.orders, tokenID)
	return order, nil
}

// BuyResult reports an executed marketplace sale.
type BuyResult struct {
	Order  domain.SellOrder
	Ticket domain.Ticket
	Buyer  domain.Account
}

// BuyTicket executes a live order: the buyer pays the seller via a
// pre-approved allowance and the ticket changes owner. The recorded seller
// must still own the ticket when the buy executes; if the ticket was claimed
// or transferred out-of-band since listing, the order is stale and is
// dropped, failing the buy instead of silently succeeding.
func (e *Engine) BuyTicket(caller domain.Account, tokenID uint64) (BuyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[tokenID]
	if !ok {
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, domain.ErrNoSuchOrder)
	}

	owner, err := e.registry.OwnerOf(tokenID)
	if err != nil || owner != order.Seller {
		delete(e.orders, tokenID)
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, domain.ErrOrderStale)
	}

	// Validate funds before any effect so a failed buy leaves no trace.
	if e.ledger.Allowance(caller, domain.PoolAccount) < order.Price {
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, domain.ErrInsufficientAllowance)
	}
	if e.ledger.BalanceOf(caller) < order.Price {
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, domain.ErrInsufficientFunds)
	}

	if err := e.ledger.TransferFrom(domain.PoolAccount, caller, order.Seller, order.Price); err != nil {
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, err)
	}
	if err := e.registry.Transfer(tokenID, order.Seller, caller); err != nil {
		// Unreachable: ownership was validated under the same lock.
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, err)
	}
	delete(e.orders, tokenID)

	ticket, err := e.registry.Get(tokenID)
	if err != nil {
		return BuyResult{}, fmt.Errorf("engine: buy token %d: %w", tokenID, err)
	}

	return BuyResult{Order: order, Ticket: ticket, Buyer: caller}, nil
}

// ListedTokenIDs returns the token IDs of all live orders in ascending
// order. It reflects deletions exactly.
func (e *Engine) ListedTokenIDs() []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]uint64, 0, len(e.orders))
	for id := range e.orders {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetOrder returns the live order for a token.
func (e *Engine) GetOrder(tokenID uint64) (domain.SellOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[tokenID]
	if !ok {
		return domain.SellOrder{}, fmt.Errorf("engine: order for token %d: %w", tokenID, domain.ErrNoSuchOrder)
	}
	return order, nil
}

// Orders returns snapshots of every live order, ascending by token ID.
func (e *Engine) Orders() []domain.SellOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.SellOrder, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}
