package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/engine"
)

// ActivityService exposes the activity lifecycle: creation, queries, and
// resolution.
type ActivityService struct {
	engine     *engine.Engine
	activities domain.ActivityStore
	balances   domain.BalanceStore
	ledger     domain.BalanceLedger
	cache      domain.ActivityCache
	emitter    *Emitter
	logger     *slog.Logger
}

// NewActivityService creates an ActivityService with all dependencies.
// Stores and cache may be nil in tests; persistence is skipped for nil
// sinks.
func NewActivityService(
	eng *engine.Engine,
	activities domain.ActivityStore,
	balances domain.BalanceStore,
	ledger domain.BalanceLedger,
	cache domain.ActivityCache,
	emitter *Emitter,
	logger *slog.Logger,
) *ActivityService {
	return &ActivityService{
		engine:     eng,
		activities: activities,
		balances:   balances,
		ledger:     ledger,
		cache:      cache,
		emitter:    emitter,
		logger:     logger,
	}
}

// persistActivity records an activity snapshot and refreshes the cache.
// Failures are logged, not propagated: the engine has already serialized
// the state change and the durable record heals on the next write.
func (s *ActivityService) persistActivity(ctx context.Context, a domain.Activity) {
	if s.activities != nil {
		if err := s.activities.Upsert(ctx, a); err != nil {
			s.logger.ErrorContext(ctx, "activity_service: persist activity failed",
				slog.Uint64("activity_id", a.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, a); err != nil {
			s.logger.WarnContext(ctx, "activity_service: cache set failed",
				slog.Uint64("activity_id", a.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *ActivityService) persistBalance(ctx context.Context, accounts ...domain.Account) {
	if s.balances == nil {
		return
	}
	for _, acct := range accounts {
		if err := s.balances.Upsert(ctx, acct, s.ledger.BalanceOf(acct)); err != nil {
			s.logger.ErrorContext(ctx, "activity_service: persist balance failed",
				slog.String("account", string(acct)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Create opens a new wagering pool on the notary's authority.
func (s *ActivityService) Create(ctx context.Context, caller domain.Account, description string, choices []string, endTime int64, seedPool uint64) (domain.Activity, error) {
	a, err := s.engine.CreateActivity(caller, description, choices, endTime, seedPool)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("activity_service: create: %w", err)
	}

	s.persistActivity(ctx, a)
	s.persistBalance(ctx, caller, domain.PoolAccount)
	s.emitter.Emit(ctx, domain.EventActivityCreated, domain.ActivityCreatedEvent{
		ActivityID: a.ID,
		SeedPool:   a.SeedPool,
	})

	s.logger.InfoContext(ctx, "activity created",
		slog.Uint64("activity_id", a.ID),
		slog.Int("choices", len(a.Choices)),
		slog.Uint64("seed_pool", a.SeedPool),
	)
	return a, nil
}

// Get returns an activity, checking the cache first and falling back to the
// engine on a miss.
func (s *ActivityService) Get(ctx context.Context, id uint64) (domain.Activity, error) {
	if s.cache != nil {
		if a, err := s.cache.Get(ctx, id); err == nil {
			return a, nil
		}
	}

	a, err := s.engine.GetActivity(id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("activity_service: get %d: %w", id, err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, a); cacheErr != nil {
			s.logger.WarnContext(ctx, "activity_service: cache set failed",
				slog.Uint64("activity_id", id),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return a, nil
}

// List returns activity snapshots, newest first.
func (s *ActivityService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error) {
	return s.engine.ListActivities(opts), nil
}

// ChoiceBetAmount returns the total staked on one choice.
func (s *ActivityService) ChoiceBetAmount(ctx context.Context, id uint64, choiceIndex int) (uint64, error) {
	amt, err := s.engine.GetChoiceBetAmount(id, choiceIndex)
	if err != nil {
		return 0, fmt.Errorf("activity_service: choice amount %d/%d: %w", id, choiceIndex, err)
	}
	return amt, nil
}

// Resolve freezes the activity's outcome on the notary's authority.
func (s *ActivityService) Resolve(ctx context.Context, caller domain.Account, id uint64, winningChoice int) (domain.Activity, error) {
	a, err := s.engine.ResolveActivity(caller, id, winningChoice)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("activity_service: resolve %d: %w", id, err)
	}

	s.persistActivity(ctx, a)
	s.emitter.Emit(ctx, domain.EventActivityResolved, domain.ActivityResolvedEvent{
		ActivityID:    a.ID,
		WinningChoice: a.WinningChoice,
	})

	s.logger.InfoContext(ctx, "activity resolved",
		slog.Uint64("activity_id", a.ID),
		slog.Int("winning_choice", a.WinningChoice),
	)
	return a, nil
}
