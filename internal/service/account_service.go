package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/ledger"
	"github.com/wagerpool/wagerpool/internal/registry"
)

// AccountService exposes the collaborator surfaces that callers drive
// directly: balances, allowances, ticket approvals, ticket queries, and the
// faucet.
type AccountService struct {
	ledger       *ledger.Ledger
	registry     *registry.Registry
	balances     domain.BalanceStore
	emitter      *Emitter
	faucetAmount uint64
	logger       *slog.Logger
}

// NewAccountService creates an AccountService. balances may be nil in tests.
func NewAccountService(
	l *ledger.Ledger,
	r *registry.Registry,
	balances domain.BalanceStore,
	emitter *Emitter,
	faucetAmount uint64,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		ledger:       l,
		registry:     r,
		balances:     balances,
		emitter:      emitter,
		faucetAmount: faucetAmount,
		logger:       logger,
	}
}

// Balance returns the account's current balance.
func (s *AccountService) Balance(ctx context.Context, account domain.Account) (uint64, error) {
	return s.ledger.BalanceOf(account), nil
}

// Approve grants the pool account an allowance over the caller's funds.
// This is the first half of the approve-then-spend pattern required before
// betting, seeding, or buying.
func (s *AccountService) Approve(ctx context.Context, caller domain.Account, amount uint64) error {
	s.ledger.Approve(caller, domain.PoolAccount, amount)
	s.logger.InfoContext(ctx, "allowance approved",
		slog.String("account", string(caller)),
		slog.Uint64("amount", amount),
	)
	return nil
}

// Allowance returns the caller's current allowance toward the pool account.
func (s *AccountService) Allowance(ctx context.Context, caller domain.Account) (uint64, error) {
	return s.ledger.Allowance(caller, domain.PoolAccount), nil
}

// ApproveTicket authorizes the marketplace to move one of the caller's
// tickets. Required before listing.
func (s *AccountService) ApproveTicket(ctx context.Context, caller domain.Account, tokenID uint64) error {
	if err := s.registry.Approve(caller, tokenID, domain.PoolAccount); err != nil {
		return fmt.Errorf("account_service: approve ticket: %w", err)
	}
	s.logger.InfoContext(ctx, "ticket approved for market",
		slog.String("account", string(caller)),
		slog.Uint64("token_id", tokenID),
	)
	return nil
}

// Faucet credits the fixed drip amount to the account. Test-token minting
// only; there is no notion of supply.
func (s *AccountService) Faucet(ctx context.Context, account domain.Account) (uint64, error) {
	if account.IsZero() {
		return 0, fmt.Errorf("account_service: faucet: empty account: %w", domain.ErrInvalidArgument)
	}
	s.ledger.Credit(account, s.faucetAmount)

	if s.balances != nil {
		if err := s.balances.Upsert(ctx, account, s.ledger.BalanceOf(account)); err != nil {
			s.logger.ErrorContext(ctx, "account_service: persist balance failed",
				slog.String("account", string(account)),
				slog.String("error", err.Error()),
			)
		}
	}
	s.emitter.Emit(ctx, domain.EventFaucetDrip, domain.FaucetDripEvent{
		Account: account,
		Amount:  s.faucetAmount,
	})

	s.logger.InfoContext(ctx, "faucet drip",
		slog.String("account", string(account)),
		slog.Uint64("amount", s.faucetAmount),
	)
	return s.faucetAmount, nil
}

// Tickets returns every ticket currently owned by the account.
func (s *AccountService) Tickets(ctx context.Context, owner domain.Account) ([]domain.Ticket, error) {
	return s.registry.TokensOf(owner), nil
}

// Ticket returns one ticket by token ID.
func (s *AccountService) Ticket(ctx context.Context, tokenID uint64) (domain.Ticket, error) {
	t, err := s.registry.Get(tokenID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("account_service: ticket %d: %w", tokenID, err)
	}
	return t, nil
}
