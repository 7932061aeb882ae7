package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
)

func TestPariPayout(t *testing.T) {
	cases := []struct {
		name                          string
		amount, total, winning, want uint64
	}{
		{"worked example ticket 1", 50, 250, 150, 83},
		{"worked example ticket 2", 100, 250, 150, 166},
		{"sole winner takes all", 100, 250, 100, 250},
		{"even split", 50, 200, 100, 100},
		{"floor division", 1, 3, 2, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PariPayout(tc.amount, tc.total, tc.winning)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPariPayoutWideIntermediate(t *testing.T) {
	// amount * total overflows uint64; the 128-bit path must still divide
	// exactly.
	amount := uint64(5_000_000_000_000_000_000)
	total := uint64(10_000_000_000_000_000_000)
	winning := uint64(7_500_000_000_000_000_000)

	got, err := PariPayout(amount, total, winning)
	require.NoError(t, err)
	assert.Equal(t, uint64(6_666_666_666_666_666_666), got)
}

func TestPariPayoutEmptyWinningPool(t *testing.T) {
	_, err := PariPayout(10, 100, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPariPayoutOverflowGuard(t *testing.T) {
	// amount > winning pool cannot happen for a real ticket; the guard
	// refuses rather than panicking in bits.Div64.
	_, err := PariPayout(math.MaxUint64, math.MaxUint64, 1)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
