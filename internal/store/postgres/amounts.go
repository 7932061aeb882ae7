package postgres

import (
	"fmt"
	"math"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// bigint converts an unsigned amount for storage in a BIGINT column. Values
// past MaxInt64 would round-trip negative, so they are rejected instead of
// silently corrupting the durable record.
func bigint(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("amount %d exceeds BIGINT range: %w", v, domain.ErrInvalidArgument)
	}
	return int64(v), nil
}
