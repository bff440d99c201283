package blockcache

import (
	"testing"

	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSequences() entity.Sequences {
	return entity.Sequences{Address: 4, Transaction: 1, Utxo: 1, Dune: 1, Balance: 1, Event: 1}
}

func TestGetOrCreateAddress(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	created := cache.GetOrCreateAddress("bc1qfirst")
	assert.Equal(t, int64(4), created.Id)

	// second lookup returns the same row
	again := cache.GetOrCreateAddress("bc1qfirst")
	assert.Same(t, created, again)

	next := cache.GetOrCreateAddress("bc1qsecond")
	assert.Equal(t, int64(5), next.Id)

	set := cache.FlushSet()
	require.Len(t, set.Addresses, 2)
	assert.Equal(t, created, set.Addresses[0])
	assert.Equal(t, next, set.Addresses[1])
}

func TestSeededRowsAreNotFlushed(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	cache.SeedAddress(&entity.Address{Id: 1, Address: "COINBASE"})
	cache.SeedTransaction(&entity.Transaction{Id: 7, Hash: chainhash.Hash{0x01}})

	result := cache.GetAddressByString("COINBASE")
	require.True(t, result.Found())
	assert.Equal(t, int64(1), result.Value().Id)

	set := cache.FlushSet()
	assert.Empty(t, set.Addresses)
	assert.Empty(t, set.Transactions)
}

func TestLookupResultStates(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	absent := cache.GetUtxo(99, 0)
	assert.False(t, absent.Found())

	cache.SeedUtxo(&entity.Utxo{Id: 5, TransactionId: 99, Vout: 0})
	found := cache.GetUtxo(99, 0)
	require.True(t, found.Found())
	assert.Equal(t, int64(5), found.Value().Id)
}

func TestCreateUtxoStagesBalances(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	utxo := cache.CreateUtxo(&entity.Utxo{TransactionId: 1, Vout: 0, AddressId: 4}, map[int64]uint128.Uint128{
		1: uint128.From64(100),
		2: uint128.Zero, // zero balances are never persisted
	})
	assert.Equal(t, int64(1), utxo.Id)

	set := cache.FlushSet()
	require.Len(t, set.Utxos, 1)
	require.Len(t, set.UtxoBalances, 1)
	assert.Equal(t, int64(1), set.UtxoBalances[0].DuneEntryId)
	assert.Equal(t, uint128.From64(100), set.UtxoBalances[0].Balance)
}

func TestSpendUtxo(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	utxo := &entity.Utxo{Id: 9, TransactionId: 2, Vout: 1}
	cache.SeedUtxo(utxo)
	cache.SpendUtxo(utxo, 840_123, 77)

	set := cache.FlushSet()
	require.Len(t, set.SpentUtxos, 1)
	assert.Equal(t, int64(9), set.SpentUtxos[0].UtxoId)
	assert.Equal(t, uint64(840_123), set.SpentUtxos[0].BlockSpent)
	assert.Equal(t, int64(77), set.SpentUtxos[0].TransactionSpentId)
	assert.True(t, utxo.IsSpent())
}

func TestBalanceArithmetic(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	cache.AddToBalance(4, 1, uint128.From64(100))
	cache.AddToBalance(4, 1, uint128.From64(50))
	require.NoError(t, cache.SubFromBalance(4, 1, uint128.From64(150)))

	// the row is kept at zero
	result := cache.GetBalance(4, 1)
	require.True(t, result.Found())
	assert.True(t, result.Value().Balance.IsZero())

	// underflow is fatal
	assert.Error(t, cache.SubFromBalance(4, 1, uint128.From64(1)))
	assert.Error(t, cache.SubFromBalance(4, 2, uint128.From64(1)))

	set := cache.FlushSet()
	require.Len(t, set.Balances, 1)
	assert.True(t, set.Balances[0].Balance.IsZero())
}

func TestDuneEntryIndexes(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	entry := cache.CreateDuneEntry(&dunes.DuneEntry{
		DuneId: dunes.NewDuneId(840_000, 2),
		Name:   "TESTDUNE",
	})
	assert.Equal(t, int64(1), entry.Id)

	byId := cache.GetDuneEntry(1)
	byDuneId := cache.GetDuneEntryByDuneId(dunes.NewDuneId(840_000, 2))
	byName := cache.GetDuneEntryByName("TESTDUNE")
	require.True(t, byId.Found())
	require.True(t, byDuneId.Found())
	require.True(t, byName.Found())
	assert.Same(t, entry, byId.Value())
	assert.Same(t, entry, byDuneId.Value())
	assert.Same(t, entry, byName.Value())

	set := cache.FlushSet()
	require.Len(t, set.DuneEntries, 1)
}

func TestFlushSetDeterministicOrder(t *testing.T) {
	t.Parallel()
	cache := New(testSequences())

	cache.AddToBalance(6, 2, uint128.From64(1))
	cache.AddToBalance(4, 9, uint128.From64(1))
	cache.AddToBalance(4, 2, uint128.From64(1))

	set := cache.FlushSet()
	require.Len(t, set.Balances, 3)
	assert.Equal(t, [2]int64{4, 2}, [2]int64{set.Balances[0].AddressId, set.Balances[0].DuneEntryId})
	assert.Equal(t, [2]int64{4, 9}, [2]int64{set.Balances[1].AddressId, set.Balances[1].DuneEntryId})
	assert.Equal(t, [2]int64{6, 2}, [2]int64{set.Balances[2].AddressId, set.Balances[2].DuneEntryId})
}
