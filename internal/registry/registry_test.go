package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
)

const (
	alice = domain.Account("alice")
	bob   = domain.Account("bob")
)

func payload() domain.TicketPayload {
	return domain.TicketPayload{ActivityID: 1, ChoiceIndex: 0, Amount: 50}
}

func TestMintSequentialIDs(t *testing.T) {
	r := New()
	t1 := r.Mint(alice, payload())
	t2 := r.Mint(bob, payload())
	assert.Equal(t, uint64(1), t1.TokenID)
	assert.Equal(t, uint64(2), t2.TokenID)

	owner, err := r.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestBurnRevokesExistence(t *testing.T) {
	r := New()
	tk := r.Mint(alice, payload())

	require.NoError(t, r.Burn(tk.TokenID))

	_, err := r.OwnerOf(tk.TokenID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, r.Burn(tk.TokenID), domain.ErrNotFound)

	// IDs are never reused after a burn.
	next := r.Mint(alice, payload())
	assert.Equal(t, uint64(2), next.TokenID)
}

func TestTransferChecksOwner(t *testing.T) {
	r := New()
	tk := r.Mint(alice, payload())

	err := r.Transfer(tk.TokenID, bob, alice)
	require.ErrorIs(t, err, domain.ErrNotOwner)

	require.NoError(t, r.Transfer(tk.TokenID, alice, bob))
	owner, err := r.OwnerOf(tk.TokenID)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestApprovalGatesAndClears(t *testing.T) {
	r := New()
	tk := r.Mint(alice, payload())

	// Only the owner can approve.
	err := r.Approve(bob, tk.TokenID, domain.PoolAccount)
	require.ErrorIs(t, err, domain.ErrNotOwner)
	assert.False(t, r.IsApproved(tk.TokenID, domain.PoolAccount))

	require.NoError(t, r.Approve(alice, tk.TokenID, domain.PoolAccount))
	assert.True(t, r.IsApproved(tk.TokenID, domain.PoolAccount))

	// Transfer clears the approval.
	require.NoError(t, r.Transfer(tk.TokenID, alice, bob))
	assert.False(t, r.IsApproved(tk.TokenID, domain.PoolAccount))
}

func TestTokensOf(t *testing.T) {
	r := New()
	r.Mint(alice, payload())
	r.Mint(bob, payload())
	r.Mint(alice, payload())

	owned := r.TokensOf(alice)
	require.Len(t, owned, 2)
	assert.Equal(t, uint64(1), owned[0].TokenID)
	assert.Equal(t, uint64(3), owned[1].TokenID)
}

func TestRestoreResumesSequence(t *testing.T) {
	r := New()
	r.Mint(alice, payload())
	tk2 := r.Mint(alice, payload())
	require.NoError(t, r.Burn(1))

	fresh := New()
	fresh.Restore(r.Snapshot())
	fresh.SetNextID(3)

	next := fresh.Mint(bob, payload())
	assert.Equal(t, uint64(3), next.TokenID)

	_, err := fresh.Get(tk2.TokenID)
	require.NoError(t, err)
}
