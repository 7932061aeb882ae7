package engine

import (
	"fmt"
	"math/bits"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// PariPayout computes floor(amount * totalPool / winningPool) with a 128-bit
// intermediate so the product cannot overflow at token-unit magnitudes. For
// any real ticket amount <= winningPool, so the quotient always fits in 64
// bits; the guard covers corrupted inputs.
func PariPayout(amount, totalPool, winningPool uint64) (uint64, error) {
	if winningPool == 0 {
		return 0, fmt.Errorf("payout: empty winning pool: %w", domain.ErrInvalidArgument)
	}
	hi, lo := bits.Mul64(amount, totalPool)
	if hi >= winningPool {
		return 0, fmt.Errorf("payout: quotient overflow (amount %d exceeds winning pool %d): %w", amount, winningPool, domain.ErrInvalidArgument)
	}
	q, _ := bits.Div64(hi, lo, winningPool)
	return q, nil
}
