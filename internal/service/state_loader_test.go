package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/engine"
	"github.com/wagerpool/wagerpool/internal/ledger"
	"github.com/wagerpool/wagerpool/internal/registry"
)

// In-memory stand-ins for the durable stores, holding the rows that survived
// a shutdown.

type memActivityStore struct{ activities []domain.Activity }

func (m *memActivityStore) Upsert(ctx context.Context, a domain.Activity) error { return nil }
func (m *memActivityStore) GetByID(ctx context.Context, id uint64) (domain.Activity, error) {
	return domain.Activity{}, domain.ErrNotFound
}
func (m *memActivityStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error) {
	return m.activities, nil
}

type memTicketStore struct{ tickets []domain.Ticket }

func (m *memTicketStore) Upsert(ctx context.Context, t domain.Ticket) error   { return nil }
func (m *memTicketStore) Delete(ctx context.Context, tokenID uint64) error    { return nil }
func (m *memTicketStore) GetByID(ctx context.Context, tokenID uint64) (domain.Ticket, error) {
	return domain.Ticket{}, domain.ErrNotFound
}
func (m *memTicketStore) ListByOwner(ctx context.Context, owner domain.Account) ([]domain.Ticket, error) {
	return nil, nil
}
func (m *memTicketStore) ListByActivity(ctx context.Context, activityID uint64) ([]domain.Ticket, error) {
	return nil, nil
}
func (m *memTicketStore) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return m.tickets, nil
}

type memOrderStore struct{ orders []domain.SellOrder }

func (m *memOrderStore) Upsert(ctx context.Context, o domain.SellOrder) error { return nil }
func (m *memOrderStore) Delete(ctx context.Context, tokenID uint64) error     { return nil }
func (m *memOrderStore) GetByTokenID(ctx context.Context, tokenID uint64) (domain.SellOrder, error) {
	return domain.SellOrder{}, domain.ErrNotFound
}
func (m *memOrderStore) ListAll(ctx context.Context) ([]domain.SellOrder, error) {
	return m.orders, nil
}

type memBalanceStore struct{ balances map[domain.Account]uint64 }

func (m *memBalanceStore) Upsert(ctx context.Context, account domain.Account, balance uint64) error {
	return nil
}
func (m *memBalanceStore) ListAll(ctx context.Context) (map[domain.Account]uint64, error) {
	return m.balances, nil
}

type memJournalStore struct{ maxMinted uint64 }

func (m *memJournalStore) Append(ctx context.Context, e domain.Event) error { return nil }
func (m *memJournalStore) ListRecent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	return nil, nil
}
func (m *memJournalStore) MaxMintedTokenID(ctx context.Context) (uint64, error) {
	return m.maxMinted, nil
}

// A claim burns its ticket, so the surviving ticket rows can underestimate
// the mint sequence. The reload must resume past the journal's high-water
// mark or a post-restart bet reissues the burned token ID.
func TestLoadNeverReusesBurnedTokenIDs(t *testing.T) {
	const notary = domain.Account("operator")
	const alice = domain.Account("alice")
	const bob = domain.Account("bob")

	led := ledger.New()
	reg := registry.New()
	eng := engine.New(notary, led, reg)

	led.Credit(alice, 1_000)
	led.Credit(bob, 1_000)

	_, err := eng.CreateActivity(notary, "final", []string{"a", "b"}, 0, 0)
	require.NoError(t, err)

	led.Approve(alice, domain.PoolAccount, 100)
	_, err = eng.PlaceBet(alice, 1, 0, 100)
	require.NoError(t, err)

	led.Approve(bob, domain.PoolAccount, 100)
	betBob, err := eng.PlaceBet(bob, 1, 0, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(2), betBob.Ticket.TokenID)

	_, err = eng.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	// Bob claims; ticket 2 is burned and its row deleted from the store.
	_, err = eng.ClaimWinnings(bob, betBob.Ticket.TokenID)
	require.NoError(t, err)

	loader := NewStateLoader(
		&memActivityStore{activities: eng.ListActivities(domain.ListOpts{})},
		&memTicketStore{tickets: reg.Snapshot()},
		&memOrderStore{orders: eng.Orders()},
		&memBalanceStore{balances: led.Snapshot()},
		&memJournalStore{maxMinted: 2},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	led2 := ledger.New()
	reg2 := registry.New()
	eng2 := engine.New(notary, led2, reg2)
	require.NoError(t, loader.Load(context.Background(), led2, reg2, eng2))

	next, err := eng2.CreateActivity(notary, "next round", []string{"a", "b"}, 0, 0)
	require.NoError(t, err)

	led2.Approve(alice, domain.PoolAccount, 100)
	bet, err := eng2.PlaceBet(alice, next.ID, 0, 100)
	require.NoError(t, err)

	assert.NotEqual(t, uint64(2), bet.Ticket.TokenID, "burned token ID reissued after reload")
	assert.Equal(t, uint64(3), bet.Ticket.TokenID)
}
