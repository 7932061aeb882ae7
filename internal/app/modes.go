package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/server"
	"github.com/wagerpool/wagerpool/internal/server/handler"
	"github.com/wagerpool/wagerpool/internal/server/ws"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// ServerMode runs the HTTP + WebSocket API until the context is cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "entering server mode")

	g, ctx := errgroup.WithContext(ctx)

	// WebSocket hub bridging the Redis event bus.
	hub := ws.NewHub(deps.EventBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	// Operator alerts on resolutions and claims.
	g.Go(func() error {
		return a.watchAlerts(ctx, deps)
	})

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		},
		server.Handlers{
			Health:     handler.NewHealthHandler(a.logger),
			Activities: handler.NewActivityHandler(deps.Activities, a.logger),
			Bets:       handler.NewBetHandler(deps.Bets, a.logger),
			Market:     handler.NewMarketHandler(deps.Market, a.logger),
			Accounts:   handler.NewAccountHandler(deps.Accounts, a.logger),
			Records:    handler.NewRecordsHandler(deps.JournalStore, deps.TicketStore, a.logger),
		},
		hub,
		deps.RateLimiter,
		a.logger,
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// MigrateMode applies pending database migrations and exits. The migrations
// themselves run during Wire; this mode exists so operators can run them
// without starting the API.
func (a *App) MigrateMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "migrations applied")
	return nil
}

// watchAlerts forwards resolution and claim events from the bus to the
// configured notification channels.
func (a *App) watchAlerts(ctx context.Context, deps *Dependencies) error {
	msgCh, err := deps.EventBus.Subscribe(ctx, domain.ChannelActivity)
	if err != nil {
		return fmt.Errorf("app: subscribe alerts: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-msgCh:
			if !ok {
				return nil
			}
			a.handleAlert(ctx, deps, data)
		}
	}
}

// busEvent mirrors domain.Event with a raw payload for two-phase decoding.
type busEvent struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

func (a *App) handleAlert(ctx context.Context, deps *Dependencies, data []byte) {
	var ev busEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		a.logger.WarnContext(ctx, "malformed bus event",
			slog.String("error", err.Error()),
		)
		return
	}

	switch ev.Type {
	case domain.EventActivityResolved:
		var p domain.ActivityResolvedEvent
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		_ = deps.Notifier.Event(ctx, ev.Type, "Activity resolved",
			fmt.Sprintf("activity %d resolved with winning choice %d", p.ActivityID, p.WinningChoice))

	case domain.EventWinningsClaimed:
		var p domain.WinningsClaimedEvent
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		_ = deps.Notifier.Event(ctx, ev.Type, "Winnings claimed",
			fmt.Sprintf("ticket %d paid out %d to %s", p.TokenID, p.Payout, p.Claimer))
	}
}
