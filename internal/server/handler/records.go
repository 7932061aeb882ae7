package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// JournalReader reads back the persisted event journal.
type JournalReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}

// TicketFinder queries persisted tickets by activity.
type TicketFinder interface {
	ListByActivity(ctx context.Context, activityID uint64) ([]domain.Ticket, error)
}

// RecordsHandler serves read-only views over the durable record: the event
// journal and per-activity ticket listings.
type RecordsHandler struct {
	journal JournalReader
	tickets TicketFinder
	logger  *slog.Logger
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(journal JournalReader, tickets TicketFinder, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{
		journal: journal,
		tickets: tickets,
		logger:  logger.With(slog.String("component", "records_handler")),
	}
}

type journalEntryResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListJournal handles GET /api/journal. It returns the most recent journal
// entries, newest first. The optional limit query parameter caps the result.
func (h *RecordsHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	entries, err := h.journal.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list journal failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	out := make([]journalEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, journalEntryResponse{
			ID:        e.ID,
			Type:      string(e.Type),
			Payload:   json.RawMessage(e.Payload),
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// ListActivityTickets handles GET /api/activities/{id}/tickets. It returns
// every live ticket minted against the activity, from the durable record.
func (h *RecordsHandler) ListActivityTickets(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	tickets, err := h.tickets.ListByActivity(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list activity tickets failed",
			slog.Uint64("activity_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}
