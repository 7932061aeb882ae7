package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// ActivityStore implements domain.ActivityStore using PostgreSQL.
type ActivityStore struct {
	pool *pgxpool.Pool
}

// NewActivityStore creates an ActivityStore backed by the given pool.
func NewActivityStore(pool *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

const activityCols = `id, description, choices, end_time, seed_pool,
	total_pool, per_choice_pool, resolved, winning_choice, created_at, resolved_at`

// Upsert inserts or updates a single activity.
func (s *ActivityStore) Upsert(ctx context.Context, a domain.Activity) error {
	choices, err := json.Marshal(a.Choices)
	if err != nil {
		return fmt.Errorf("postgres: marshal choices for activity %d: %w", a.ID, err)
	}
	perChoice, err := json.Marshal(a.PerChoicePool)
	if err != nil {
		return fmt.Errorf("postgres: marshal pools for activity %d: %w", a.ID, err)
	}
	seedPool, err := bigint(a.SeedPool)
	if err != nil {
		return fmt.Errorf("postgres: activity %d seed pool: %w", a.ID, err)
	}
	totalPool, err := bigint(a.TotalPool)
	if err != nil {
		return fmt.Errorf("postgres: activity %d total pool: %w", a.ID, err)
	}

	const query = `
		INSERT INTO activities (
			id, description, choices, end_time, seed_pool,
			total_pool, per_choice_pool, resolved, winning_choice,
			created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			total_pool      = EXCLUDED.total_pool,
			per_choice_pool = EXCLUDED.per_choice_pool,
			resolved        = EXCLUDED.resolved,
			winning_choice  = EXCLUDED.winning_choice,
			resolved_at     = EXCLUDED.resolved_at`

	_, err = s.pool.Exec(ctx, query,
		int64(a.ID), a.Description, choices, a.EndTime, seedPool,
		totalPool, perChoice, a.Resolved, a.WinningChoice,
		a.CreatedAt, a.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert activity %d: %w", a.ID, err)
	}
	return nil
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	var id, seedPool, totalPool int64
	var choices, perChoice []byte

	err := row.Scan(
		&id, &a.Description, &choices, &a.EndTime, &seedPool,
		&totalPool, &perChoice, &a.Resolved, &a.WinningChoice,
		&a.CreatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return domain.Activity{}, err
	}

	a.ID = uint64(id)
	a.SeedPool = uint64(seedPool)
	a.TotalPool = uint64(totalPool)
	if err := json.Unmarshal(choices, &a.Choices); err != nil {
		return domain.Activity{}, fmt.Errorf("unmarshal choices: %w", err)
	}
	if err := json.Unmarshal(perChoice, &a.PerChoicePool); err != nil {
		return domain.Activity{}, fmt.Errorf("unmarshal per-choice pools: %w", err)
	}
	return a, nil
}

// GetByID retrieves an activity by its primary key.
func (s *ActivityStore) GetByID(ctx context.Context, id uint64) (domain.Activity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+activityCols+` FROM activities WHERE id = $1`, int64(id))
	a, err := scanActivity(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, fmt.Errorf("postgres: get activity %d: %w", id, err)
	}
	return a, nil
}

// List returns activities with pagination, newest first.
func (s *ActivityStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error) {
	query := `SELECT ` + activityCols + ` FROM activities ORDER BY id DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list activities: %w", err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan activity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list activities rows: %w", err)
	}
	return out, nil
}
