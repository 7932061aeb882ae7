package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagerpool/wagerpool/internal/cache/redis"
	"github.com/wagerpool/wagerpool/internal/config"
	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/engine"
	"github.com/wagerpool/wagerpool/internal/ledger"
	"github.com/wagerpool/wagerpool/internal/notify"
	"github.com/wagerpool/wagerpool/internal/registry"
	"github.com/wagerpool/wagerpool/internal/service"
	"github.com/wagerpool/wagerpool/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Durable stores
	ActivityStore domain.ActivityStore
	TicketStore   domain.TicketStore
	OrderStore    domain.OrderStore
	BalanceStore  domain.BalanceStore
	JournalStore  domain.JournalStore

	// Redis
	EventBus      domain.EventBus
	ActivityCache domain.ActivityCache
	RateLimiter   domain.RateLimiter

	// In-memory core
	Ledger   *ledger.Ledger
	Registry *registry.Registry
	Engine   *engine.Engine

	// Services
	Activities *service.ActivityService
	Bets       *service.BettingService
	Market     *service.MarketService
	Accounts   *service.AccountService

	// Notifications
	Notifier *notify.Notifier
}

// needsRedis returns true for modes that publish or serve live events.
func needsRedis(mode string) bool {
	return mode == "server"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, mode string) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	// Migrate mode always runs migrations; server mode follows config.
	if cfg.Postgres.RunMigrations || mode == "migrate" {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.ActivityStore = postgres.NewActivityStore(pool)
	deps.TicketStore = postgres.NewTicketStore(pool)
	deps.OrderStore = postgres.NewOrderStore(pool)
	deps.BalanceStore = postgres.NewBalanceStore(pool)
	deps.JournalStore = postgres.NewJournalStore(pool)

	// --- Redis ---
	if needsRedis(mode) {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.EventBus = redis.NewEventBus(redisClient)
		deps.ActivityCache = redis.NewActivityCache(redisClient, cfg.Redis.CacheTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- In-memory core ---
	deps.Ledger = ledger.New()
	deps.Registry = registry.New()
	deps.Engine = engine.New(domain.Account(cfg.Ledger.Notary), deps.Ledger, deps.Registry)

	loader := service.NewStateLoader(
		deps.ActivityStore,
		deps.TicketStore,
		deps.OrderStore,
		deps.BalanceStore,
		deps.JournalStore,
		logger,
	)
	if err := loader.Load(ctx, deps.Ledger, deps.Registry, deps.Engine); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: restore state: %w", err)
	}

	// --- Services ---
	emitter := service.NewEmitter(deps.JournalStore, deps.EventBus, logger)
	deps.Activities = service.NewActivityService(
		deps.Engine, deps.ActivityStore, deps.BalanceStore,
		deps.Ledger, deps.ActivityCache, emitter, logger,
	)
	deps.Bets = service.NewBettingService(
		deps.Engine, deps.ActivityStore, deps.TicketStore, deps.OrderStore,
		deps.BalanceStore, deps.Ledger, deps.ActivityCache, emitter, logger,
	)
	deps.Market = service.NewMarketService(
		deps.Engine, deps.TicketStore, deps.OrderStore,
		deps.BalanceStore, deps.Ledger, emitter, logger,
	)
	deps.Accounts = service.NewAccountService(
		deps.Ledger, deps.Registry, deps.BalanceStore,
		emitter, cfg.Ledger.FaucetAmount, logger,
	)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
