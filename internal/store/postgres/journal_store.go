package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// JournalStore implements domain.JournalStore using PostgreSQL. The journal
// is append-only; rows are never updated or deleted.
type JournalStore struct {
	pool *pgxpool.Pool
}

// NewJournalStore creates a JournalStore backed by the given pool.
func NewJournalStore(pool *pgxpool.Pool) *JournalStore {
	return &JournalStore{pool: pool}
}

// Append persists one event.
func (s *JournalStore) Append(ctx context.Context, e domain.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("postgres: marshal journal payload %s: %w", e.Type, err)
	}

	const query = `
		INSERT INTO journal (id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := s.pool.Exec(ctx, query, e.ID, string(e.Type), payload, e.Timestamp); err != nil {
		return fmt.Errorf("postgres: append journal event %s: %w", e.Type, err)
	}
	return nil
}

// MaxMintedTokenID returns the highest token ID ever recorded by a
// bet_placed event, or zero when no bets were ever placed. Burned tickets
// leave no row in the tickets table, so this is the authoritative mint
// high-water mark for sequence recovery.
func (s *JournalStore) MaxMintedTokenID(ctx context.Context) (uint64, error) {
	const query = `
		SELECT COALESCE(MAX((payload->>'token_id')::BIGINT), 0)
		FROM journal WHERE event_type = $1`

	var max int64
	if err := s.pool.QueryRow(ctx, query, string(domain.EventBetPlaced)).Scan(&max); err != nil {
		return 0, fmt.Errorf("postgres: max minted token id: %w", err)
	}
	return uint64(max), nil
}

// ListRecent returns the most recent journal entries, newest first.
func (s *JournalStore) ListRecent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, event_type, payload, created_at FROM journal
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list journal: %w", err)
	}
	defer rows.Close()

	var out []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		var eventType string
		if err := rows.Scan(&entry.ID, &eventType, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan journal entry: %w", err)
		}
		entry.Type = domain.EventType(eventType)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list journal rows: %w", err)
	}
	return out, nil
}
