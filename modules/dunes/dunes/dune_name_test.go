package dunes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameValidation(t *testing.T) {
	test := func(name string, valid bool) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, valid, DuneName(name).IsValid())
		})
	}

	test("HELLO", true)
	test("hello", true)
	test("HELLO.WORLD-1_2", true)
	test("A", true)
	test(strings.Repeat("A", 31), true)
	test(strings.Repeat("A", 32), false)
	test("", false)
	test("HELLO WORLD", false)
	test("HELLO!", false)
}

func TestReservedDuneName(t *testing.T) {
	t.Parallel()

	first := ReservedDuneName(0, 0)
	assert.Equal(t, DuneName("AAAAAAAAAAAAAAAAAAAAAAAAAAA"), first)
	assert.True(t, first.IsReserved())

	// reserved names for distinct etch locations differ
	assert.NotEqual(t, ReservedDuneName(840_000, 0), ReservedDuneName(840_000, 1))
	assert.NotEqual(t, ReservedDuneName(840_000, 0), ReservedDuneName(840_001, 0))

	assert.False(t, DuneName("HELLO").IsReserved())
	assert.False(t, DuneName("HELLO-1").IsReserved())
}

func TestCommitment(t *testing.T) {
	test := func(name DuneName, expected []byte, ok bool) {
		t.Run(string(name), func(t *testing.T) {
			t.Parallel()
			commitment, valid := name.Commitment()
			assert.Equal(t, ok, valid)
			if ok {
				assert.Equal(t, expected, commitment)
			}
		})
	}

	// "A" = 0 encodes to an empty commitment
	test("A", []byte{}, true)
	test("B", []byte{1}, true)
	test("Z", []byte{25}, true)
	// "AA" = 26
	test("AA", []byte{26}, true)
	// "BA" = 52
	test("BA", []byte{52}, true)
	// 702 = 0x02BE little-endian
	test("AAA", []byte{0xbe, 0x02}, true)
	// lowercase names commit as their uppercase value
	lower, lowerOk := DuneName("hello").Commitment()
	upper, upperOk := DuneName("HELLO").Commitment()
	require.True(t, lowerOk)
	require.True(t, upperOk)
	assert.Equal(t, upper, lower)
	// names with non-letter characters cannot be committed to
	test("HELLO-1", nil, false)
	test("HELLO_W", nil, false)
}

func TestCommitmentRoundTrip(t *testing.T) {
	t.Parallel()

	// commitment bytes are the little-endian base-26 value with trailing
	// zeros stripped: no commitment ends with a zero byte
	for _, name := range []DuneName{"B", "HELLO", "ZZZZZZZZZZ", "DUNES"} {
		commitment, ok := name.Commitment()
		require.True(t, ok)
		if len(commitment) > 0 {
			assert.NotZero(t, commitment[len(commitment)-1], "commitment of %s has trailing zero", name)
		}
		assert.LessOrEqual(t, len(commitment), 16)
	}
}

func TestMinimumNameLength(t *testing.T) {
	t.Parallel()
	test := func(height uint64, expected int) {
		assert.Equal(t, expected, MinimumNameLength(height), "height %d", height)
	}

	test(GENESIS_BLOCK, 13)
	test(GENESIS_BLOCK+UNLOCK_INTERVAL-1, 13)
	test(GENESIS_BLOCK+UNLOCK_INTERVAL, 12)
	test(GENESIS_BLOCK+2*UNLOCK_INTERVAL, 11)
	test(GENESIS_BLOCK+12*UNLOCK_INTERVAL, 1)
	test(GENESIS_BLOCK+13*UNLOCK_INTERVAL, 0)
	test(GENESIS_BLOCK+100*UNLOCK_INTERVAL, 0)
}
