package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// BalanceStore implements domain.BalanceStore using PostgreSQL.
type BalanceStore struct {
	pool *pgxpool.Pool
}

// NewBalanceStore creates a BalanceStore backed by the given pool.
func NewBalanceStore(pool *pgxpool.Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Upsert records the current balance for an account.
func (s *BalanceStore) Upsert(ctx context.Context, account domain.Account, balance uint64) error {
	const query = `
		INSERT INTO balances (account, balance) VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE SET balance = EXCLUDED.balance`

	bal, err := bigint(balance)
	if err != nil {
		return fmt.Errorf("postgres: balance for %s: %w", account, err)
	}
	if _, err := s.pool.Exec(ctx, query, string(account), bal); err != nil {
		return fmt.Errorf("postgres: upsert balance for %s: %w", account, err)
	}
	return nil
}

// ListAll returns every stored balance, for ledger reload.
func (s *BalanceStore) ListAll(ctx context.Context) (map[domain.Account]uint64, error) {
	rows, err := s.pool.Query(ctx, `SELECT account, balance FROM balances`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list balances: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Account]uint64)
	for rows.Next() {
		var account string
		var balance int64
		if err := rows.Scan(&account, &balance); err != nil {
			return nil, fmt.Errorf("postgres: scan balance: %w", err)
		}
		out[domain.Account(account)] = uint64(balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list balances rows: %w", err)
	}
	return out, nil
}
