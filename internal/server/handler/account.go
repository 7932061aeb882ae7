package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// AccountService defines the methods that the account handler requires from
// the service layer.
type AccountService interface {
	Balance(ctx context.Context, account domain.Account) (uint64, error)
	Approve(ctx context.Context, caller domain.Account, amount uint64) error
	Allowance(ctx context.Context, caller domain.Account) (uint64, error)
	ApproveTicket(ctx context.Context, caller domain.Account, tokenID uint64) error
	Faucet(ctx context.Context, account domain.Account) (uint64, error)
	Tickets(ctx context.Context, owner domain.Account) ([]domain.Ticket, error)
	Ticket(ctx context.Context, tokenID uint64) (domain.Ticket, error)
}

// AccountHandler serves balance, allowance, ticket query, and faucet
// endpoints.
type AccountHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler with the given service and logger.
func NewAccountHandler(accounts AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// GetBalance returns an account's balance and its live allowance toward the
// escrow pool.
// GET /api/accounts/{account}/balance
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	acct := domain.Account(pathParam(r, "account"))
	if acct.IsZero() {
		writeError(w, http.StatusBadRequest, "missing account")
		return
	}

	balance, err := h.accounts.Balance(r.Context(), acct)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	allowance, err := h.accounts.Allowance(r.Context(), acct)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":   acct,
		"balance":   balance,
		"allowance": allowance,
	})
}

// approveRequest is the JSON body for granting a spending allowance.
type approveRequest struct {
	Amount uint64 `json:"amount"`
}

// Approve grants the escrow pool an allowance over the caller's funds. Only
// the account itself may approve.
// POST /api/accounts/{account}/approve
func (h *AccountHandler) Approve(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if string(acct) != pathParam(r, "account") {
		writeError(w, http.StatusForbidden, "can only approve your own account")
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.accounts.Approve(r.Context(), acct, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account": acct,
		"amount":  req.Amount,
	})
}

// ApproveTicket authorizes the marketplace to move one of the caller's
// tickets.
// POST /api/tickets/{tokenId}/approve
func (h *AccountHandler) ApproveTicket(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireCaller(w, r)
	if !ok {
		return
	}

	tokenID, err := pathUint64(r, "tokenId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	if err := h.accounts.ApproveTicket(r.Context(), acct, tokenID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "approved",
		"token_id": tokenID,
	})
}

// listTicketsResponse wraps ticket query responses.
type listTicketsResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
}

// ListTickets returns tickets owned by an account.
// GET /api/tickets?owner=...
func (h *AccountHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	owner := domain.Account(r.URL.Query().Get("owner"))
	if owner.IsZero() {
		writeError(w, http.StatusBadRequest, "owner query parameter required")
		return
	}

	tickets, err := h.accounts.Tickets(r.Context(), owner)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list tickets failed",
			slog.String("owner", string(owner)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}

	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	writeJSON(w, http.StatusOK, listTicketsResponse{Tickets: tickets})
}

// GetTicket returns one ticket by token ID.
// GET /api/tickets/{tokenId}
func (h *AccountHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	tokenID, err := pathUint64(r, "tokenId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	ticket, err := h.accounts.Ticket(r.Context(), tokenID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// faucetRequest is the JSON body for a faucet drip.
type faucetRequest struct {
	Account domain.Account `json:"account"`
}

// Faucet credits the fixed drip amount to an account. The target defaults to
// the caller when the body omits it.
// POST /api/faucet
func (h *AccountHandler) Faucet(w http.ResponseWriter, r *http.Request) {
	var req faucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Account.IsZero() {
		if acct, ok := caller(r); ok {
			req.Account = acct
		}
	}

	amount, err := h.accounts.Faucet(r.Context(), req.Account)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account": req.Account,
		"amount":  amount,
	})
}
