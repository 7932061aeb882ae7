package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// BettingService defines the methods that the bet handler requires from the
// service layer.
type BettingService interface {
	PlaceBet(ctx context.Context, caller domain.Account, activityID uint64, choiceIndex int, amount uint64) (domain.Ticket, error)
	Claim(ctx context.Context, caller domain.Account, tokenID uint64) (uint64, error)
}

// BetHandler serves stake intake and claim endpoints.
type BetHandler struct {
	bets   BettingService
	logger *slog.Logger
}

// NewBetHandler creates a BetHandler with the given service and logger.
func NewBetHandler(bets BettingService, logger *slog.Logger) *BetHandler {
	return &BetHandler{
		bets:   bets,
		logger: logger,
	}
}

// placeBetRequest is the JSON body for placing a bet.
type placeBetRequest struct {
	ActivityID  uint64 `json:"activity_id"`
	ChoiceIndex int    `json:"choice_index"`
	Amount      uint64 `json:"amount"`
}

// PlaceBet stakes funds on a choice and returns the minted ticket.
// POST /api/bets
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ticket, err := h.bets.PlaceBet(r.Context(), acct, req.ActivityID, req.ChoiceIndex, req.Amount)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: place bet failed",
			slog.Uint64("activity_id", req.ActivityID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

// Claim pays out a winning ticket.
// POST /api/tickets/{tokenId}/claim
func (h *BetHandler) Claim(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	tokenID, err := pathUint64(r, "tokenId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	payout, err := h.bets.Claim(r.Context(), acct, tokenID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: claim failed",
			slog.Uint64("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token_id": tokenID,
		"payout":   payout,
	})
}
