package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
)

func TestListTicket(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)

	// Listing requires a prior market approval on the ticket.
	_, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.ErrorIs(t, err, domain.ErrNotApproved)

	require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))

	_, err = f.engine.ListTicket(player1, tk.TokenID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.engine.ListTicket(player2, tk.TokenID, 75)
	require.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = f.engine.ListTicket(player1, 99, 75)
	require.ErrorIs(t, err, domain.ErrNotFound)

	order, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.NoError(t, err)
	assert.Equal(t, player1, order.Seller)
	assert.Equal(t, uint64(75), order.Price)
	assert.Equal(t, []uint64{tk.TokenID}, f.engine.ListedTokenIDs())

	// Relisting overwrites the price.
	order, err = f.engine.ListTicket(player1, tk.TokenID, 80)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), order.Price)
	assert.Len(t, f.engine.ListedTokenIDs(), 1)
}

func TestUnlistTicket(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))
	_, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.NoError(t, err)

	_, err = f.engine.UnlistTicket(player2, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.engine.UnlistTicket(player1, tk.TokenID)
	require.NoError(t, err)
	assert.Empty(t, f.engine.ListedTokenIDs())

	// Buying an unlisted ticket is a NotFound.
	f.ledger.Approve(player2, domain.PoolAccount, 75)
	_, err = f.engine.BuyTicket(player2, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.UnlistTicket(player1, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNoSuchOrder)
}

func TestBuyTicket(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))
	_, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.NoError(t, err)

	sellerBefore := f.ledger.BalanceOf(player1)
	buyerBefore := f.ledger.BalanceOf(player2)

	f.ledger.Approve(player2, domain.PoolAccount, 75)
	res, err := f.engine.BuyTicket(player2, tk.TokenID)
	require.NoError(t, err)
	assert.Equal(t, player2, res.Ticket.Owner)

	owner, err := f.registry.OwnerOf(tk.TokenID)
	require.NoError(t, err)
	assert.Equal(t, player2, owner)

	assert.Equal(t, sellerBefore+75, f.ledger.BalanceOf(player1))
	assert.Equal(t, buyerBefore-75, f.ledger.BalanceOf(player2))

	// The order is gone.
	assert.Empty(t, f.engine.ListedTokenIDs())
	_, err = f.engine.GetOrder(tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNoSuchOrder)
}

func TestBuyTicketNeedsFunds(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))
	_, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.NoError(t, err)

	// No allowance.
	_, err = f.engine.BuyTicket(player2, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	// Allowance but no balance.
	broke := domain.Account("broke")
	f.ledger.Approve(broke, domain.PoolAccount, 75)
	_, err = f.engine.BuyTicket(broke, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// A failed buy leaves the order live and the ticket in place.
	assert.Equal(t, []uint64{tk.TokenID}, f.engine.ListedTokenIDs())
	owner, err := f.registry.OwnerOf(tk.TokenID)
	require.NoError(t, err)
	assert.Equal(t, player1, owner)
}

// TestStaleOrderAfterClaim lists a ticket, then claims it before any buy.
// The claim burns the ticket and voids the order; a later buy attempt must
// fail instead of paying the old seller for nothing.
func TestStaleOrderAfterClaim(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))
	_, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.NoError(t, err)

	_, err = f.engine.ResolveActivity(notary, 1, 0)
	require.NoError(t, err)

	res, err := f.engine.ClaimWinnings(player1, tk.TokenID)
	require.NoError(t, err)
	assert.True(t, res.OrderVoided)
	assert.Empty(t, f.engine.ListedTokenIDs())

	f.ledger.Approve(player2, domain.PoolAccount, 75)
	buyerBefore := f.ledger.BalanceOf(player2)
	_, err = f.engine.BuyTicket(player2, tk.TokenID)
	require.Error(t, err)
	assert.Equal(t, buyerBefore, f.ledger.BalanceOf(player2), "no funds may move on a failed buy")
}

// TestStaleOrderAfterTransfer covers the out-of-band ownership change: the
// seller hands the ticket away directly after listing it. The surviving
// order must not let a buyer pay the old owner.
func TestStaleOrderAfterTransfer(t *testing.T) {
	f := newFixture(t, 100)
	tk := f.bet(t, player1, 0, 50)
	require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))
	_, err := f.engine.ListTicket(player1, tk.TokenID, 75)
	require.NoError(t, err)

	require.NoError(t, f.registry.Transfer(tk.TokenID, player1, player2))

	buyer := domain.Account("buyer")
	f.ledger.Credit(buyer, 100)
	f.ledger.Approve(buyer, domain.PoolAccount, 75)
	_, err = f.engine.BuyTicket(buyer, tk.TokenID)
	require.ErrorIs(t, err, domain.ErrOrderStale)
	assert.True(t, domain.IsConflict(err))

	// The stale order was dropped, not left as a ghost.
	assert.Empty(t, f.engine.ListedTokenIDs())
}

func TestListedTokenIDsTracksDeletionsExactly(t *testing.T) {
	f := newFixture(t, 100)
	t1 := f.bet(t, player1, 0, 10)
	t2 := f.bet(t, player1, 0, 20)
	t3 := f.bet(t, player2, 1, 30)

	for _, tk := range []domain.Ticket{t1, t2} {
		require.NoError(t, f.registry.Approve(player1, tk.TokenID, domain.PoolAccount))
		_, err := f.engine.ListTicket(player1, tk.TokenID, 5)
		require.NoError(t, err)
	}
	require.NoError(t, f.registry.Approve(player2, t3.TokenID, domain.PoolAccount))
	_, err := f.engine.ListTicket(player2, t3.TokenID, 5)
	require.NoError(t, err)

	assert.Equal(t, []uint64{t1.TokenID, t2.TokenID, t3.TokenID}, f.engine.ListedTokenIDs())

	_, err = f.engine.UnlistTicket(player1, t2.TokenID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{t1.TokenID, t3.TokenID}, f.engine.ListedTokenIDs())
}
