package postgres

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagerpool/wagerpool/internal/domain"
)

func TestBigintRoundTripsWithinRange(t *testing.T) {
	v, err := bigint(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = bigint(math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)
	assert.Equal(t, uint64(math.MaxInt64), uint64(v))
}

func TestBigintRejectsValuesThatWouldGoNegative(t *testing.T) {
	_, err := bigint(uint64(math.MaxInt64) + 1)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = bigint(math.MaxUint64)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
