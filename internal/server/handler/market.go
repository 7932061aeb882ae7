package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// MarketService defines the methods that the market handler requires from the
// service layer.
type MarketService interface {
	List(ctx context.Context, caller domain.Account, tokenID, price uint64) (domain.SellOrder, error)
	Unlist(ctx context.Context, caller domain.Account, tokenID uint64) error
	Buy(ctx context.Context, caller domain.Account, tokenID uint64) (domain.Ticket, error)
	Orders(ctx context.Context) ([]domain.SellOrder, error)
}

// MarketHandler serves ticket resale endpoints.
type MarketHandler struct {
	market MarketService
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(market MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		logger: logger,
	}
}

// listOrderRequest is the JSON body for creating a sell order.
type listOrderRequest struct {
	TokenID uint64 `json:"token_id"`
	Price   uint64 `json:"price"`
}

// listOrdersResponse wraps the order book response.
type listOrdersResponse struct {
	Orders []domain.SellOrder `json:"orders"`
}

// ListOrder offers a ticket for sale at a fixed price.
// POST /api/market/orders
func (h *MarketHandler) ListOrder(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req listOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.market.List(r.Context(), acct, req.TokenID, req.Price)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list order failed",
			slog.Uint64("token_id", req.TokenID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// UnlistOrder withdraws a live sell order.
// DELETE /api/market/orders/{tokenId}
func (h *MarketHandler) UnlistOrder(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	tokenID, err := pathUint64(r, "tokenId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	if err := h.market.Unlist(r.Context(), acct, tokenID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "unlisted",
		"token_id": tokenID,
	})
}

// BuyOrder executes a live sell order on behalf of the caller.
// POST /api/market/orders/{tokenId}/buy
func (h *MarketHandler) BuyOrder(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	tokenID, err := pathUint64(r, "tokenId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	ticket, err := h.market.Buy(r.Context(), acct, tokenID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: buy failed",
			slog.Uint64("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// ListOrders returns the full order book, ascending by token ID.
// GET /api/market/orders
func (h *MarketHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.market.Orders(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list orders failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	if orders == nil {
		orders = []domain.SellOrder{}
	}

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders})
}
