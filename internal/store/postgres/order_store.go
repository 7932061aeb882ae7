package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates an OrderStore backed by the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Upsert inserts or replaces the live order for a token.
func (s *OrderStore) Upsert(ctx context.Context, o domain.SellOrder) error {
	const query = `
		INSERT INTO sell_orders (token_id, seller, price, listed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_id) DO UPDATE SET
			seller    = EXCLUDED.seller,
			price     = EXCLUDED.price,
			listed_at = EXCLUDED.listed_at`

	price, err := bigint(o.Price)
	if err != nil {
		return fmt.Errorf("postgres: order %d price: %w", o.TokenID, err)
	}
	_, err = s.pool.Exec(ctx, query,
		int64(o.TokenID), string(o.Seller), price, o.ListedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert order %d: %w", o.TokenID, err)
	}
	return nil
}

// Delete removes the order for a token. Deleting a missing order is a no-op.
func (s *OrderStore) Delete(ctx context.Context, tokenID uint64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM sell_orders WHERE token_id = $1`, int64(tokenID)); err != nil {
		return fmt.Errorf("postgres: delete order %d: %w", tokenID, err)
	}
	return nil
}

// GetByTokenID retrieves the live order for a token.
func (s *OrderStore) GetByTokenID(ctx context.Context, tokenID uint64) (domain.SellOrder, error) {
	var o domain.SellOrder
	var id, price int64
	var seller string
	err := s.pool.QueryRow(ctx,
		`SELECT token_id, seller, price, listed_at FROM sell_orders WHERE token_id = $1`,
		int64(tokenID),
	).Scan(&id, &seller, &price, &o.ListedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.SellOrder{}, domain.ErrNotFound
		}
		return domain.SellOrder{}, fmt.Errorf("postgres: get order %d: %w", tokenID, err)
	}
	o.TokenID = uint64(id)
	o.Seller = domain.Account(seller)
	o.Price = uint64(price)
	return o, nil
}

// ListAll returns every live order, for state reload.
func (s *OrderStore) ListAll(ctx context.Context) ([]domain.SellOrder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT token_id, seller, price, listed_at FROM sell_orders ORDER BY token_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.SellOrder
	for rows.Next() {
		var o domain.SellOrder
		var id, price int64
		var seller string
		if err := rows.Scan(&id, &seller, &price, &o.ListedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		o.TokenID = uint64(id)
		o.Seller = domain.Account(seller)
		o.Price = uint64(price)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list orders rows: %w", err)
	}
	return out, nil
}
