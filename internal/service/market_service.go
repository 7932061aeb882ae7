package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/engine"
)

// MarketService exposes the ticket resale marketplace.
type MarketService struct {
	engine   *engine.Engine
	tickets  domain.TicketStore
	orders   domain.OrderStore
	balances domain.BalanceStore
	ledger   domain.BalanceLedger
	emitter  *Emitter
	logger   *slog.Logger
}

// NewMarketService creates a MarketService with all dependencies. Stores may
// be nil in tests.
func NewMarketService(
	eng *engine.Engine,
	tickets domain.TicketStore,
	orders domain.OrderStore,
	balances domain.BalanceStore,
	ledger domain.BalanceLedger,
	emitter *Emitter,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		engine:   eng,
		tickets:  tickets,
		orders:   orders,
		balances: balances,
		ledger:   ledger,
		emitter:  emitter,
		logger:   logger,
	}
}

func (s *MarketService) persistBalance(ctx context.Context, accounts ...domain.Account) {
	if s.balances == nil {
		return
	}
	for _, acct := range accounts {
		if err := s.balances.Upsert(ctx, acct, s.ledger.BalanceOf(acct)); err != nil {
			s.logger.ErrorContext(ctx, "market_service: persist balance failed",
				slog.String("account", string(acct)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *MarketService) deleteOrderRow(ctx context.Context, tokenID uint64) {
	if s.orders == nil {
		return
	}
	if err := s.orders.Delete(ctx, tokenID); err != nil {
		s.logger.ErrorContext(ctx, "market_service: delete order failed",
			slog.Uint64("token_id", tokenID),
			slog.String("error", err.Error()),
		)
	}
}

// List offers a ticket for sale at a fixed price.
func (s *MarketService) List(ctx context.Context, caller domain.Account, tokenID, price uint64) (domain.SellOrder, error) {
	order, err := s.engine.ListTicket(caller, tokenID, price)
	if err != nil {
		return domain.SellOrder{}, fmt.Errorf("market_service: list: %w", err)
	}

	if s.orders != nil {
		if err := s.orders.Upsert(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "market_service: persist order failed",
				slog.Uint64("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.emitter.Emit(ctx, domain.EventTicketListed, domain.TicketListedEvent{
		TokenID: tokenID,
		Seller:  caller,
		Price:   price,
	})

	s.logger.InfoContext(ctx, "ticket listed",
		slog.Uint64("token_id", tokenID),
		slog.String("seller", string(caller)),
		slog.Uint64("price", price),
	)
	return order, nil
}

// Unlist withdraws a live order on the seller's authority.
func (s *MarketService) Unlist(ctx context.Context, caller domain.Account, tokenID uint64) error {
	order, err := s.engine.UnlistTicket(caller, tokenID)
	if err != nil {
		return fmt.Errorf("market_service: unlist: %w", err)
	}

	s.deleteOrderRow(ctx, tokenID)
	s.emitter.Emit(ctx, domain.EventTicketUnlisted, domain.TicketUnlistedEvent{
		TokenID: tokenID,
		Seller:  order.Seller,
	})

	s.logger.InfoContext(ctx, "ticket unlisted",
		slog.Uint64("token_id", tokenID),
		slog.String("seller", string(caller)),
	)
	return nil
}

// Buy executes a live order on behalf of the caller.
func (s *MarketService) Buy(ctx context.Context, caller domain.Account, tokenID uint64) (domain.Ticket, error) {
	res, err := s.engine.BuyTicket(caller, tokenID)
	if err != nil {
		// A stale order was dropped by the engine; mirror that in the
		// durable record so the order book stays exact.
		if errors.Is(err, domain.ErrOrderStale) {
			s.deleteOrderRow(ctx, tokenID)
		}
		return domain.Ticket{}, fmt.Errorf("market_service: buy: %w", err)
	}

	if s.tickets != nil {
		if err := s.tickets.Upsert(ctx, res.Ticket); err != nil {
			s.logger.ErrorContext(ctx, "market_service: persist ticket failed",
				slog.Uint64("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.deleteOrderRow(ctx, tokenID)
	s.persistBalance(ctx, caller, res.Order.Seller)

	s.emitter.Emit(ctx, domain.EventTicketSold, domain.TicketSoldEvent{
		TokenID: tokenID,
		Seller:  res.Order.Seller,
		Buyer:   caller,
		Price:   res.Order.Price,
	})

	s.logger.InfoContext(ctx, "ticket sold",
		slog.Uint64("token_id", tokenID),
		slog.String("seller", string(res.Order.Seller)),
		slog.String("buyer", string(caller)),
		slog.Uint64("price", res.Order.Price),
	)
	return res.Ticket, nil
}

// Orders returns every live order, ascending by token ID.
func (s *MarketService) Orders(ctx context.Context) ([]domain.SellOrder, error) {
	return s.engine.Orders(), nil
}

// ListedTokenIDs returns the token IDs of all live orders.
func (s *MarketService) ListedTokenIDs(ctx context.Context) ([]uint64, error) {
	return s.engine.ListedTokenIDs(), nil
}

// GetOrder returns the live order for one token.
func (s *MarketService) GetOrder(ctx context.Context, tokenID uint64) (domain.SellOrder, error) {
	order, err := s.engine.GetOrder(tokenID)
	if err != nil {
		return domain.SellOrder{}, fmt.Errorf("market_service: get order: %w", err)
	}
	return order, nil
}
