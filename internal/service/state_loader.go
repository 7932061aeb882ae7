package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/engine"
	"github.com/wagerpool/wagerpool/internal/ledger"
	"github.com/wagerpool/wagerpool/internal/registry"
)

// StateLoader rebuilds the in-memory working set from the durable stores at
// startup.
type StateLoader struct {
	activities domain.ActivityStore
	tickets    domain.TicketStore
	orders     domain.OrderStore
	balances   domain.BalanceStore
	journal    domain.JournalStore
	logger     *slog.Logger
}

// NewStateLoader creates a StateLoader over the durable stores.
func NewStateLoader(
	activities domain.ActivityStore,
	tickets domain.TicketStore,
	orders domain.OrderStore,
	balances domain.BalanceStore,
	journal domain.JournalStore,
	logger *slog.Logger,
) *StateLoader {
	return &StateLoader{
		activities: activities,
		tickets:    tickets,
		orders:     orders,
		balances:   balances,
		journal:    journal,
		logger:     logger,
	}
}

// Load restores the ledger, registry, and engine from the stores. Token and
// activity ID sequences resume past the highest recorded IDs so a restart
// never reuses an identifier.
func (l *StateLoader) Load(ctx context.Context, led *ledger.Ledger, reg *registry.Registry, eng *engine.Engine) error {
	activities, err := l.activities.List(ctx, domain.ListOpts{})
	if err != nil {
		return fmt.Errorf("state_loader: load activities: %w", err)
	}
	tickets, err := l.tickets.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("state_loader: load tickets: %w", err)
	}
	orders, err := l.orders.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("state_loader: load orders: %w", err)
	}
	balances, err := l.balances.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("state_loader: load balances: %w", err)
	}

	// Live tickets alone underestimate the mint sequence when the
	// highest-numbered ticket was burned by a claim; the journal keeps the
	// true high-water mark so burned token IDs are never reissued.
	maxMinted, err := l.journal.MaxMintedTokenID(ctx)
	if err != nil {
		return fmt.Errorf("state_loader: load mint high-water mark: %w", err)
	}

	led.Restore(balances)
	reg.Restore(tickets)
	reg.SetNextID(maxMinted + 1)
	eng.Restore(activities, orders)

	l.logger.InfoContext(ctx, "state restored",
		slog.Int("activities", len(activities)),
		slog.Int("tickets", len(tickets)),
		slog.Int("orders", len(orders)),
		slog.Int("balances", len(balances)),
	)
	return nil
}
