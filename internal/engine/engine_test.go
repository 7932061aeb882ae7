package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
	"github.com/wagerpool/wagerpool/internal/ledger"
	"github.com/wagerpool/wagerpool/internal/registry"
)

const (
	notary  = domain.Account("notary")
	player1 = domain.Account("player1")
	player2 = domain.Account("player2")
)

type fixture struct {
	engine   *Engine
	ledger   *ledger.Ledger
	registry *registry.Registry
}

// newFixture funds all three accounts and has the notary create one activity
// with two choices and a seed pool of 100.
func newFixture(t *testing.T, seedPool uint64) *fixture {
	t.Helper()

	l := ledger.New()
	r := registry.New()
	e := New(notary, l, r)

	for _, acct := range []domain.Account{notary, player1, player2} {
		l.Credit(acct, 1_000_000)
	}

	l.Approve(notary, domain.PoolAccount, seedPool)
	endTime := time.Now().Add(time.Hour).Unix()
	a, err := e.CreateActivity(notary, "Team A vs Team B", []string{"Team A", "Team B"}, endTime, seedPool)
	require.NoError(t, err)
	require.Equal(t, uint64(1), a.ID)

	return &fixture{engine: e, ledger: l, registry: r}
}

func (f *fixture) bet(t *testing.T, who domain.Account, choice int, amount uint64) domain.Ticket {
	t.Helper()
	f.ledger.Approve(who, domain.PoolAccount, amount)
	res, err := f.engine.PlaceBet(who, 1, choice, amount)
	require.NoError(t, err)
	return res.Ticket
}

func TestCreateActivity(t *testing.T) {
	f := newFixture(t, 100)

	a, err := f.engine.GetActivity(1)
	require.NoError(t, err)
	assert.Equal(t, "Team A vs Team B", a.Description)
	assert.Equal(t, uint64(100), a.SeedPool)
	assert.Equal(t, uint64(100), a.TotalPool)
	assert.Equal(t, []uint64{0, 0}, a.PerChoicePool)
	assert.False(t, a.Resolved)

	// Seed moved from notary into escrow.
	assert.Equal(t, uint64(999_900), f.ledger.BalanceOf(notary))
	assert.Equal(t, uint64(100), f.ledger.BalanceOf(domain.PoolAccount))
}

func TestCreateActivityOnlyNotary(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.engine.CreateActivity(player1, "x", []string{"a", "b"}, 0, 0)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateActivityNeedsTwoChoices(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.engine.CreateActivity(notary, "x", []string{"only"}, 0, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateActivityNeedsSeedAllowance(t *testing.T) {
	f := newFixture(t, 0)
	// No fresh approval for the second activity's seed.
	_, err := f.engine.CreateActivity(notary, "x", []string{"a", "b"}, 0, 100)
	require.ErrorIs(t, err, domain.ErrInsufficientAllowance)
}

func TestPlaceBet(t *testing.T) {
	f := newFixture(t, 100)

	ticket := f.bet(t, player1, 0, 50)
	assert.Equal(t, uint64(1), ticket.TokenID)
	assert.Equal(t, uint64(1), ticket.Payload.ActivityID)
	assert.Equal(t, 0, ticket.Payload.ChoiceIndex)
	assert.Equal(t, uint64(50), ticket.Payload.Amount)
	assert.Equal(t, player1, ticket.Owner)

	a, err := f.engine.GetActivity(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), a.TotalPool)
	assert.Equal(t, uint64(50), a.PerChoicePool[0])

	amt, err := f.engine.GetChoiceBetAmount(1, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), amt)
}

func TestPlaceBetFailures(t *testing.T) {
	f := newFixture(t, 100)

	_, err := f.engine.PlaceBet(player1, 99, 0, 10)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.PlaceBet(player1, 1, 0, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.engine.PlaceBet(player1, 1, 2, 10)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	// No allowance approved.
	_, err = f.engine.PlaceBet(player1, 1, 0, 10)
	require.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	// Approved but broke.
	broke := domain.Account("broke")
	f.ledger.Approve(broke, domain.PoolAccount, 10)
	_, err = f.engine.PlaceBet(broke, 1, 0, 10)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// A failed bet leaves the pool untouched.
	a, err := f.engine.GetActivity(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), a.TotalPool)
}

func TestPlaceBetAfterEndTimeIsAccepted(t *testing.T) {
	// End time is informational; a late bet is not rejected.
	l := ledger.New()
	r := registry.New()
	e := New(notary, l, r)
	l.Credit(notary, 1000)
	l.Credit(player1, 1000)
	l.Approve(notary, domain.PoolAccount, 100)

	past := time.Now().Add(-time.Hour).Unix()
	_, err := e.CreateActivity(notary, "late", []string{"a", "b"}, past, 100)
	require.NoError(t, err)

	l.Approve(player1, domain.PoolAccount, 10)
	_, err = e.PlaceBet(player1, 1, 0, 10)
	require.NoError(t, err)
}

func TestPlaceBetOnResolvedActivity(t *testing.T) {
	f := newFixture(t, 100)
	_, err := f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	f.ledger.Approve(player1, domain.PoolAccount, 10)
	_, err = f.engine.PlaceBet(player1, 1, 0, 10)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.True(t, domain.IsConflict(err))
}

func TestPoolConservation(t *testing.T) {
	f := newFixture(t, 100)
	f.bet(t, player1, 0, 50)
	f.bet(t, player2, 1, 75)
	f.bet(t, player1, 1, 25)

	a, err := f.engine.GetActivity(1)
	require.NoError(t, err)

	var staked uint64
	for _, p := range a.PerChoicePool {
		staked += p
	}
	assert.Equal(t, a.SeedPool+staked, a.TotalPool)
	assert.Equal(t, a.TotalPool, f.ledger.BalanceOf(domain.PoolAccount))
}

func TestResolveActivity(t *testing.T) {
	f := newFixture(t, 100)

	_, err := f.engine.ResolveActivity(player1, 1, 0)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.engine.ResolveActivity(notary, 99, 0)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.ResolveActivity(notary, 1, 5)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	a, err := f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)
	assert.True(t, a.Resolved)
	assert.Equal(t, 0, a.WinningChoice)

	// Resolution is terminal: a second call always conflicts.
	_, err = f.engine.ResolveActivity(notary, 1, 1)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.True(t, domain.IsConflict(err))
}

// TestParimutuelPayouts walks the canonical example: seed 100, bets of 50
// and 100 both on the winning choice. totalPool = 250, winning pool = 150,
// so the payouts are floor(50*250/150) = 83 and floor(100*250/150) = 166,
// leaving 1 unit of rounding dust in the pool.
func TestParimutuelPayouts(t *testing.T) {
	f := newFixture(t, 100)
	t1 := f.bet(t, player1, 0, 50)
	t2 := f.bet(t, player2, 0, 100)

	_, err := f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	p1Before := f.ledger.BalanceOf(player1)
	res1, err := f.engine.ClaimWinnings(player1, t1.TokenID)
	require.NoError(t, err)
	assert.Equal(t, uint64(83), res1.Payout)
	assert.Equal(t, p1Before+83, f.ledger.BalanceOf(player1))

	p2Before := f.ledger.BalanceOf(player2)
	res2, err := f.engine.ClaimWinnings(player2, t2.TokenID)
	require.NoError(t, err)
	assert.Equal(t, uint64(166), res2.Payout)
	assert.Equal(t, p2Before+166, f.ledger.BalanceOf(player2))

	// Sum of payouts never exceeds the pool; the remainder stays behind.
	assert.Equal(t, uint64(1), f.ledger.BalanceOf(domain.PoolAccount))

	// Both tickets are burned.
	_, err = f.registry.OwnerOf(t1.TokenID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.registry.OwnerOf(t2.TokenID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClaimLosingTicket(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 1, 50)

	_, err := f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	_, err = f.engine.ClaimWinnings(player1, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNotWinningTicket)
	assert.True(t, domain.IsConflict(err))

	// The losing ticket stays alive and transferable.
	owner, err := f.registry.OwnerOf(tk.TokenID)
	require.NoError(t, err)
	assert.Equal(t, player1, owner)
	require.NoError(t, f.registry.Transfer(tk.TokenID, player1, player2))
}

func TestClaimBeforeResolution(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)

	_, err := f.engine.ClaimWinnings(player1, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNotResolved)
	assert.True(t, domain.IsConflict(err))
}

func TestClaimOnlyByOwner(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	_, err := f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	_, err = f.engine.ClaimWinnings(player2, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestDoubleClaim(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	_, err := f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	_, err = f.engine.ClaimWinnings(player1, tk.TokenID)
	require.NoError(t, err)

	// The burn makes a second claim indistinguishable from an unknown token.
	_, err = f.engine.ClaimWinnings(player1, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// TestPayoutAtTokenUnitMagnitudes uses 18-decimal style amounts whose
// product overflows 64 bits, exercising the wide-intermediate path.
func TestPayoutAtTokenUnitMagnitudes(t *testing.T) {
	const unit = uint64(1_000_000_000_000_000) // 0.001 token at 18 decimals

	l := ledger.New()
	r := registry.New()
	e := New(notary, l, r)

	l.Credit(notary, 1_000*unit)
	l.Credit(player1, 1_000*unit)
	l.Credit(player2, 1_000*unit)

	l.Approve(notary, domain.PoolAccount, 100*unit)
	_, err := e.CreateActivity(notary, "big", []string{"a", "b"}, 0, 100*unit)
	require.NoError(t, err)

	l.Approve(player1, domain.PoolAccount, 50*unit)
	res1, err := e.PlaceBet(player1, 1, 0, 50*unit)
	require.NoError(t, err)
	l.Approve(player2, domain.PoolAccount, 100*unit)
	res2, err := e.PlaceBet(player2, 1, 0, 100*unit)
	require.NoError(t, err)

	_, err = e.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	c1, err := e.ClaimWinnings(player1, res1.Ticket.TokenID)
	require.NoError(t, err)
	c2, err := e.ClaimWinnings(player2, res2.Ticket.TokenID)
	require.NoError(t, err)

	// 50*250/150 and 100*250/150 scaled by unit, floor division.
	assert.Equal(t, uint64(83_333_333_333_333_333), c1.Payout)
	assert.Equal(t, uint64(166_666_666_666_666_666), c2.Payout)
	assert.LessOrEqual(t, c1.Payout+c2.Payout, 250*unit)
}

func TestRestoreResumesSequences(t *testing.T) {
	f := newFixture(t, 100)
	f.bet(t, player1, 0, 50)

	activities := f.engine.ListActivities(domain.ListOpts{})
	orders := f.engine.Orders()

	l2 := ledger.New()
	l2.Restore(f.ledger.Snapshot())
	r2 := registry.New()
	r2.Restore(f.registry.Snapshot())
	e2 := New(notary, l2, r2)
	e2.Restore(activities, orders)

	l2.Approve(notary, domain.PoolAccount, 0)
	a, err := e2.CreateActivity(notary, "second", []string{"x", "y"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), a.ID)

	l2.Approve(player2, domain.PoolAccount, 10)
	res, err := e2.PlaceBet(player2, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Ticket.TokenID)
}
