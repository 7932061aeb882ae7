package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
)

type stubJournal struct {
	entries []domain.JournalEntry
	limit   int
}

func (s *stubJournal) ListRecent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	s.limit = limit
	return s.entries, nil
}

type stubTickets struct {
	byActivity map[uint64][]domain.Ticket
}

func (s *stubTickets) ListByActivity(ctx context.Context, activityID uint64) ([]domain.Ticket, error) {
	return s.byActivity[activityID], nil
}

func newRecordsHandler(journal JournalReader, tickets TicketFinder) *RecordsHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecordsHandler(journal, tickets, logger)
}

func TestListJournalReturnsEntriesNewestFirst(t *testing.T) {
	journal := &stubJournal{entries: []domain.JournalEntry{
		{
			ID:        "b",
			Type:      domain.EventWinningsClaimed,
			Payload:   []byte(`{"token_id":2,"payout":166}`),
			CreatedAt: time.Now().UTC(),
		},
		{
			ID:        "a",
			Type:      domain.EventBetPlaced,
			Payload:   []byte(`{"activity_id":1}`),
			CreatedAt: time.Now().UTC().Add(-time.Minute),
		},
	}}
	h := newRecordsHandler(journal, &stubTickets{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/journal", h.ListJournal)

	req := httptest.NewRequest(http.MethodGet, "/api/journal?limit=10", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, journal.limit)

	var body struct {
		Entries []struct {
			ID      string          `json:"id"`
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "b", body.Entries[0].ID)
	assert.Equal(t, string(domain.EventWinningsClaimed), body.Entries[0].Type)
	assert.JSONEq(t, `{"token_id":2,"payout":166}`, string(body.Entries[0].Payload))
}

func TestListJournalCapsLimit(t *testing.T) {
	journal := &stubJournal{}
	h := newRecordsHandler(journal, &stubTickets{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/journal", h.ListJournal)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal?limit=9999", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, journal.limit)
}

func TestListActivityTickets(t *testing.T) {
	tickets := &stubTickets{byActivity: map[uint64][]domain.Ticket{
		7: {
			{
				TokenID: 3,
				Payload: domain.TicketPayload{ActivityID: 7, ChoiceIndex: 1, Amount: 50},
				Owner:   "alice",
			},
		},
	}}
	h := newRecordsHandler(&stubJournal{}, tickets)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/activities/{id}/tickets", h.ListActivityTickets)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/7/tickets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tickets []domain.Ticket `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tickets, 1)
	assert.Equal(t, uint64(3), body.Tickets[0].TokenID)
	assert.Equal(t, domain.Account("alice"), body.Tickets[0].Owner)

	// An activity with no tickets yields an empty list, not null.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/8/tickets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tickets":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/nope/tickets", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
