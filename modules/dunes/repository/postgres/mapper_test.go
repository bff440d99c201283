package postgres

import (
	"math/rand"
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint128Int64PairRoundTrip(t *testing.T) {
	t.Parallel()

	test := func(value uint128.Uint128) {
		lo, hi := int64PairFromUint128(value)
		assert.Equal(t, value, uint128FromInt64Pair(lo, hi))
	}

	test(uint128.Zero)
	test(uint128.From64(1))
	test(uint128.Max)
	// values with the high bit of each half set exercise the signed reinterpretation
	test(uint128.Uint128{Lo: 0x8000000000000000, Hi: 0})
	test(uint128.Uint128{Lo: 0, Hi: 0x8000000000000000})
	test(uint128.Uint128{Lo: 0xffffffffffffffff, Hi: 0x7fffffffffffffff})

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		test(uint128.Uint128{Lo: rng.Uint64(), Hi: rng.Uint64()})
	}
}

func TestUint128NumericRoundTrip(t *testing.T) {
	t.Parallel()

	test := func(value uint128.Uint128) {
		numeric, err := numericFromUint128(&value)
		require.NoError(t, err)
		back, err := uint128FromNumeric(numeric)
		require.NoError(t, err)
		require.NotNil(t, back)
		assert.Equal(t, value, *back)
	}

	test(uint128.Zero)
	test(uint128.From64(1000))
	test(uint128.Max)

	// nil maps to invalid numeric and back to nil
	numeric, err := numericFromUint128(nil)
	require.NoError(t, err)
	assert.False(t, numeric.Valid)
	back, err := uint128FromNumeric(numeric)
	require.NoError(t, err)
	assert.Nil(t, back)
}
