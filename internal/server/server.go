// Package server hosts the HTTP and WebSocket API for the wagering ledger.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/server/handler"
	"github.com/wagerpool/wagerpool/internal/server/middleware"
	"github.com/wagerpool/wagerpool/internal/server/ws"
)

// Faucet throttling: per client IP.
const (
	faucetRateLimit  = 5
	faucetRateWindow = time.Minute
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health     *handler.HealthHandler
	Activities *handler.ActivityHandler
	Bets       *handler.BetHandler
	Market     *handler.MarketHandler
	Accounts   *handler.AccountHandler
	Records    *handler.RecordsHandler // optional, needs the durable stores
}

// Server is the HTTP + WebSocket API server for the wagering ledger.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth) and attaches the WebSocket hub.
// limiter may be nil, in which case the faucet is not throttled.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required beyond the shared chain).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Activity lifecycle.
	mux.HandleFunc("POST /api/activities", handlers.Activities.CreateActivity)
	mux.HandleFunc("GET /api/activities", handlers.Activities.ListActivities)
	mux.HandleFunc("GET /api/activities/{id}", handlers.Activities.GetActivity)
	mux.HandleFunc("GET /api/activities/{id}/choices/{index}", handlers.Activities.GetChoiceAmount)
	mux.HandleFunc("POST /api/activities/{id}/resolve", handlers.Activities.ResolveActivity)

	// Betting and claims.
	mux.HandleFunc("POST /api/bets", handlers.Bets.PlaceBet)
	mux.HandleFunc("POST /api/tickets/{tokenId}/claim", handlers.Bets.Claim)

	// Ticket queries and market approval.
	mux.HandleFunc("GET /api/tickets", handlers.Accounts.ListTickets)
	mux.HandleFunc("GET /api/tickets/{tokenId}", handlers.Accounts.GetTicket)
	mux.HandleFunc("POST /api/tickets/{tokenId}/approve", handlers.Accounts.ApproveTicket)

	// Resale market.
	mux.HandleFunc("POST /api/market/orders", handlers.Market.ListOrder)
	mux.HandleFunc("GET /api/market/orders", handlers.Market.ListOrders)
	mux.HandleFunc("DELETE /api/market/orders/{tokenId}", handlers.Market.UnlistOrder)
	mux.HandleFunc("POST /api/market/orders/{tokenId}/buy", handlers.Market.BuyOrder)

	// Accounts and faucet.
	mux.HandleFunc("GET /api/accounts/{account}/balance", handlers.Accounts.GetBalance)
	mux.HandleFunc("POST /api/accounts/{account}/approve", handlers.Accounts.Approve)
	faucet := http.Handler(http.HandlerFunc(handlers.Accounts.Faucet))
	if limiter != nil {
		faucet = middleware.RateLimit(limiter, "faucet", faucetRateLimit, faucetRateWindow)(faucet)
	}
	mux.Handle("POST /api/faucet", faucet)

	// Durable-record views.
	if handlers.Records != nil {
		mux.HandleFunc("GET /api/journal", handlers.Records.ListJournal)
		mux.HandleFunc("GET /api/activities/{id}/tickets", handlers.Records.ListActivityTickets)
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
