package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// TicketStore implements domain.TicketStore using PostgreSQL.
type TicketStore struct {
	pool *pgxpool.Pool
}

// NewTicketStore creates a TicketStore backed by the given pool.
func NewTicketStore(pool *pgxpool.Pool) *TicketStore {
	return &TicketStore{pool: pool}
}

const ticketCols = `token_id, activity_id, choice_index, amount, owner, minted_at`

// Upsert inserts a ticket or updates its owner after a transfer.
func (s *TicketStore) Upsert(ctx context.Context, t domain.Ticket) error {
	const query = `
		INSERT INTO tickets (token_id, activity_id, choice_index, amount, owner, minted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_id) DO UPDATE SET owner = EXCLUDED.owner`

	amount, err := bigint(t.Payload.Amount)
	if err != nil {
		return fmt.Errorf("postgres: ticket %d amount: %w", t.TokenID, err)
	}
	_, err = s.pool.Exec(ctx, query,
		int64(t.TokenID), int64(t.Payload.ActivityID), t.Payload.ChoiceIndex,
		amount, string(t.Owner), t.MintedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert ticket %d: %w", t.TokenID, err)
	}
	return nil
}

// Delete removes a burned ticket.
func (s *TicketStore) Delete(ctx context.Context, tokenID uint64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM tickets WHERE token_id = $1`, int64(tokenID)); err != nil {
		return fmt.Errorf("postgres: delete ticket %d: %w", tokenID, err)
	}
	return nil
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	var tokenID, activityID, amount int64
	var owner string
	err := row.Scan(&tokenID, &activityID, &t.Payload.ChoiceIndex, &amount, &owner, &t.MintedAt)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.TokenID = uint64(tokenID)
	t.Payload.ActivityID = uint64(activityID)
	t.Payload.Amount = uint64(amount)
	t.Owner = domain.Account(owner)
	return t, nil
}

// GetByID retrieves a ticket by token ID.
func (s *TicketStore) GetByID(ctx context.Context, tokenID uint64) (domain.Ticket, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE token_id = $1`, int64(tokenID))
	t, err := scanTicket(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrNotFound
		}
		return domain.Ticket{}, fmt.Errorf("postgres: get ticket %d: %w", tokenID, err)
	}
	return t, nil
}

func (s *TicketStore) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListByOwner returns all tickets currently held by owner.
func (s *TicketStore) ListByOwner(ctx context.Context, owner domain.Account) ([]domain.Ticket, error) {
	out, err := s.list(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE owner = $1 ORDER BY token_id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("postgres: list tickets by owner %s: %w", owner, err)
	}
	return out, nil
}

// ListByActivity returns all live tickets minted against an activity.
func (s *TicketStore) ListByActivity(ctx context.Context, activityID uint64) ([]domain.Ticket, error) {
	out, err := s.list(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE activity_id = $1 ORDER BY token_id`, int64(activityID))
	if err != nil {
		return nil, fmt.Errorf("postgres: list tickets by activity %d: %w", activityID, err)
	}
	return out, nil
}

// ListAll returns every live ticket, for state reload.
func (s *TicketStore) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	out, err := s.list(ctx, `SELECT `+ticketCols+` FROM tickets ORDER BY token_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list all tickets: %w", err)
	}
	return out, nil
}
