package dunes

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestIsMintOpen(t *testing.T) {
	duneId := NewDuneId(840_100, 3)
	newEntry := func(mutate func(entry *DuneEntry)) *DuneEntry {
		entry := &DuneEntry{
			DuneId:     duneId,
			Name:       "TESTDUNE",
			MintAmount: uint128.From64(10),
		}
		if mutate != nil {
			mutate(entry)
		}
		return entry
	}

	t.Run("open_by_default_from_creation_block", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(nil)
		assert.True(t, entry.IsMintOpen(840_101, 0, true))
		assert.True(t, entry.IsMintOpen(840_100, 4, true))
	})

	t.Run("closed_for_unmintable", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(func(entry *DuneEntry) { entry.Unmintable = true })
		assert.False(t, entry.IsMintOpen(840_101, 0, true))
	})

	t.Run("closed_at_own_creation_point", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(nil)
		assert.False(t, entry.IsMintOpen(840_100, 3, true))
	})

	t.Run("closed_when_cap_reached", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(func(entry *DuneEntry) {
			entry.MintCap = lo.ToPtr(uint128.From64(5))
			entry.Mints = uint128.From64(5)
		})
		assert.False(t, entry.IsMintOpen(840_101, 0, true))
		// without counting the pending mint, the window is still open
		assert.True(t, entry.IsMintOpen(840_101, 0, false))
	})

	t.Run("absolute_window", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(func(entry *DuneEntry) {
			entry.MintHeightStart = lo.ToPtr(uint64(840_200))
			entry.MintHeightEnd = lo.ToPtr(uint64(840_300))
		})
		assert.False(t, entry.IsMintOpen(840_199, 0, true))
		assert.True(t, entry.IsMintOpen(840_200, 0, true))
		assert.True(t, entry.IsMintOpen(840_300, 0, true))
		assert.False(t, entry.IsMintOpen(840_301, 0, true))
	})

	t.Run("offset_window", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(func(entry *DuneEntry) {
			entry.MintOffsetStart = lo.ToPtr(uint64(10))
			entry.MintOffsetEnd = lo.ToPtr(uint64(20))
		})
		assert.False(t, entry.IsMintOpen(840_109, 0, true))
		assert.True(t, entry.IsMintOpen(840_110, 0, true))
		assert.True(t, entry.IsMintOpen(840_120, 0, true))
		assert.False(t, entry.IsMintOpen(840_121, 0, true))
	})

	t.Run("max_of_absolute_and_offset_start", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(func(entry *DuneEntry) {
			entry.MintHeightStart = lo.ToPtr(uint64(840_105))
			entry.MintOffsetStart = lo.ToPtr(uint64(10)) // = 840_110
		})
		assert.False(t, entry.IsMintOpen(840_107, 0, true))
		assert.True(t, entry.IsMintOpen(840_110, 0, true))
	})

	t.Run("min_of_absolute_and_offset_end", func(t *testing.T) {
		t.Parallel()
		entry := newEntry(func(entry *DuneEntry) {
			entry.MintHeightEnd = lo.ToPtr(uint64(840_300))
			entry.MintOffsetEnd = lo.ToPtr(uint64(50)) // = 840_150
		})
		assert.True(t, entry.IsMintOpen(840_150, 0, true))
		assert.False(t, entry.IsMintOpen(840_151, 0, true))
	})
}

func TestFlexMode(t *testing.T) {
	t.Parallel()

	fixed := &DuneEntry{MintAmount: uint128.From64(10)}
	assert.False(t, fixed.IsFlex())

	flex := &DuneEntry{PriceAmount: lo.ToPtr(uint64(1000)), PricePayTo: "bc1qexample"}
	assert.True(t, flex.IsFlex())

	assert.Equal(t, uint128.From64(4), flex.FlexMintAmount(4500))
	assert.Equal(t, uint128.Zero, flex.FlexMintAmount(999))
	assert.Equal(t, uint128.From64(1), flex.FlexMintAmount(1000))
}

func TestMintedAmount(t *testing.T) {
	t.Parallel()

	entry := &DuneEntry{
		Premine:    uint128.From64(1000),
		Mints:      uint128.From64(3),
		MintAmount: uint128.From64(10),
	}
	assert.Equal(t, uint128.From64(1030), entry.MintedAmount())
}
