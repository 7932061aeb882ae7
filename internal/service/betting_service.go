package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/engine"
)

// BettingService exposes stake intake and winnings claims.
type BettingService struct {
	engine     *engine.Engine
	activities domain.ActivityStore
	tickets    domain.TicketStore
	orders     domain.OrderStore
	balances   domain.BalanceStore
	ledger     domain.BalanceLedger
	cache      domain.ActivityCache
	emitter    *Emitter
	logger     *slog.Logger
}

// NewBettingService creates a BettingService with all dependencies. Stores
// and cache may be nil in tests.
func NewBettingService(
	eng *engine.Engine,
	activities domain.ActivityStore,
	tickets domain.TicketStore,
	orders domain.OrderStore,
	balances domain.BalanceStore,
	ledger domain.BalanceLedger,
	cache domain.ActivityCache,
	emitter *Emitter,
	logger *slog.Logger,
) *BettingService {
	return &BettingService{
		engine:     eng,
		activities: activities,
		tickets:    tickets,
		orders:     orders,
		balances:   balances,
		ledger:     ledger,
		cache:      cache,
		emitter:    emitter,
		logger:     logger,
	}
}

func (s *BettingService) persistBalance(ctx context.Context, accounts ...domain.Account) {
	if s.balances == nil {
		return
	}
	for _, acct := range accounts {
		if err := s.balances.Upsert(ctx, acct, s.ledger.BalanceOf(acct)); err != nil {
			s.logger.ErrorContext(ctx, "betting_service: persist balance failed",
				slog.String("account", string(acct)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *BettingService) persistActivity(ctx context.Context, a domain.Activity) {
	if s.activities != nil {
		if err := s.activities.Upsert(ctx, a); err != nil {
			s.logger.ErrorContext(ctx, "betting_service: persist activity failed",
				slog.Uint64("activity_id", a.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, a); err != nil {
			s.logger.WarnContext(ctx, "betting_service: cache set failed",
				slog.Uint64("activity_id", a.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// PlaceBet stakes amount on a choice of an open activity and returns the
// minted ticket.
func (s *BettingService) PlaceBet(ctx context.Context, caller domain.Account, activityID uint64, choiceIndex int, amount uint64) (domain.Ticket, error) {
	res, err := s.engine.PlaceBet(caller, activityID, choiceIndex, amount)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("betting_service: place bet: %w", err)
	}

	s.persistActivity(ctx, res.Activity)
	if s.tickets != nil {
		if err := s.tickets.Upsert(ctx, res.Ticket); err != nil {
			s.logger.ErrorContext(ctx, "betting_service: persist ticket failed",
				slog.Uint64("token_id", res.Ticket.TokenID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.persistBalance(ctx, caller, domain.PoolAccount)

	s.emitter.Emit(ctx, domain.EventBetPlaced, domain.BetPlacedEvent{
		ActivityID:  activityID,
		Bettor:      caller,
		ChoiceIndex: choiceIndex,
		Amount:      amount,
		TokenID:     res.Ticket.TokenID,
	})

	s.logger.InfoContext(ctx, "bet placed",
		slog.Uint64("activity_id", activityID),
		slog.String("bettor", string(caller)),
		slog.Int("choice", choiceIndex),
		slog.Uint64("amount", amount),
		slog.Uint64("token_id", res.Ticket.TokenID),
	)
	return res.Ticket, nil
}

// Claim pays out a winning ticket, burns it, and voids any live sell order
// for it.
func (s *BettingService) Claim(ctx context.Context, caller domain.Account, tokenID uint64) (uint64, error) {
	res, err := s.engine.ClaimWinnings(caller, tokenID)
	if err != nil {
		return 0, fmt.Errorf("betting_service: claim: %w", err)
	}

	if s.tickets != nil {
		if err := s.tickets.Delete(ctx, tokenID); err != nil {
			s.logger.ErrorContext(ctx, "betting_service: delete ticket failed",
				slog.Uint64("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}
	if res.OrderVoided && s.orders != nil {
		if err := s.orders.Delete(ctx, tokenID); err != nil {
			s.logger.ErrorContext(ctx, "betting_service: delete voided order failed",
				slog.Uint64("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.persistBalance(ctx, caller, domain.PoolAccount)

	s.emitter.Emit(ctx, domain.EventWinningsClaimed, domain.WinningsClaimedEvent{
		TokenID: tokenID,
		Claimer: caller,
		Payout:  res.Payout,
	})

	s.logger.InfoContext(ctx, "winnings claimed",
		slog.Uint64("token_id", tokenID),
		slog.String("claimer", string(caller)),
		slog.Uint64("payout", res.Payout),
	)
	return res.Payout, nil
}
