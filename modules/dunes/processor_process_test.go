package dunes

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/bitapeslabs/nana/pkg/btcutils"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is an in-memory DunesDataGateway for engine tests.
type mockStore struct {
	addresses    map[int64]*entity.Address
	transactions map[int64]*entity.Transaction
	utxos        map[int64]*entity.Utxo
	utxoBalances map[int64][]*entity.UtxoBalance
	duneEntries  map[int64]*dunes.DuneEntry
	balances     map[[2]int64]*entity.Balance
	events       []*entity.Event
	blocks       map[int64]*entity.IndexedBlock
	states       []entity.IndexerState
}

func newMockStore() *mockStore {
	s := &mockStore{
		addresses:    make(map[int64]*entity.Address),
		transactions: make(map[int64]*entity.Transaction),
		utxos:        make(map[int64]*entity.Utxo),
		utxoBalances: make(map[int64][]*entity.UtxoBalance),
		duneEntries:  make(map[int64]*dunes.DuneEntry),
		balances:     make(map[[2]int64]*entity.Balance),
		blocks:       make(map[int64]*entity.IndexedBlock),
	}
	for _, address := range entity.ReservedAddresses {
		s.addresses[address.Id] = address
	}
	return s
}

func (s *mockStore) Begin(ctx context.Context) error    { return nil }
func (s *mockStore) Commit(ctx context.Context) error   { return nil }
func (s *mockStore) Rollback(ctx context.Context) error { return nil }

func (s *mockStore) GetLatestBlock(ctx context.Context) (types.BlockHeader, error) {
	var latest *entity.IndexedBlock
	for _, block := range s.blocks {
		if latest == nil || block.Height > latest.Height {
			latest = block
		}
	}
	if latest == nil {
		return types.BlockHeader{}, errors.WithStack(errs.NotFound)
	}
	return types.BlockHeader{Height: latest.Height, Hash: latest.Hash, PrevBlock: latest.PrevHash}, nil
}

func (s *mockStore) GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error) {
	block, ok := s.blocks[height]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return block, nil
}

func (s *mockStore) GetNextSequences(ctx context.Context) (entity.Sequences, error) {
	next := func(max int64) int64 { return max + 1 }
	var seq entity.Sequences
	var maxAddress, maxTx, maxUtxo, maxDune, maxBalance, maxEvent int64
	for id := range s.addresses {
		maxAddress = max(maxAddress, id)
	}
	for id := range s.transactions {
		maxTx = max(maxTx, id)
	}
	for id := range s.utxos {
		maxUtxo = max(maxUtxo, id)
	}
	for id := range s.duneEntries {
		maxDune = max(maxDune, id)
	}
	for _, balance := range s.balances {
		maxBalance = max(maxBalance, balance.Id)
	}
	for _, event := range s.events {
		maxEvent = max(maxEvent, event.Id)
	}
	seq.Address, seq.Transaction, seq.Utxo, seq.Dune, seq.Balance, seq.Event =
		next(maxAddress), next(maxTx), next(maxUtxo), next(maxDune), next(maxBalance), next(maxEvent)
	return seq, nil
}

func (s *mockStore) GetTransactionsByHashes(ctx context.Context, hashes []chainhash.Hash) ([]*entity.Transaction, error) {
	result := make([]*entity.Transaction, 0)
	for _, hash := range hashes {
		for _, tx := range s.transactions {
			if tx.Hash == hash {
				result = append(result, tx)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetUtxosByLocations(ctx context.Context, locations []datagateway.UtxoLocation) ([]*entity.Utxo, error) {
	result := make([]*entity.Utxo, 0)
	for _, location := range locations {
		for _, utxo := range s.utxos {
			if utxo.TransactionId == location.TransactionId && utxo.Vout == location.Vout {
				result = append(result, utxo)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetUtxoBalancesByUtxoIds(ctx context.Context, utxoIds []int64) ([]*entity.UtxoBalance, error) {
	result := make([]*entity.UtxoBalance, 0)
	for _, id := range utxoIds {
		result = append(result, s.utxoBalances[id]...)
	}
	return result, nil
}

func (s *mockStore) GetAddressesByIds(ctx context.Context, ids []int64) ([]*entity.Address, error) {
	result := make([]*entity.Address, 0)
	for _, id := range ids {
		if address, ok := s.addresses[id]; ok {
			result = append(result, address)
		}
	}
	return result, nil
}

func (s *mockStore) GetAddressesByAddresses(ctx context.Context, addresses []string) ([]*entity.Address, error) {
	result := make([]*entity.Address, 0)
	for _, name := range addresses {
		for _, address := range s.addresses {
			if address.Address == name {
				result = append(result, address)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetDuneEntriesByIds(ctx context.Context, ids []int64) ([]*dunes.DuneEntry, error) {
	result := make([]*dunes.DuneEntry, 0)
	for _, id := range ids {
		if entry, ok := s.duneEntries[id]; ok {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (s *mockStore) GetDuneEntriesByDuneIds(ctx context.Context, duneIds []dunes.DuneId) ([]*dunes.DuneEntry, error) {
	result := make([]*dunes.DuneEntry, 0)
	for _, duneId := range duneIds {
		for _, entry := range s.duneEntries {
			if entry.DuneId == duneId {
				result = append(result, entry)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetDuneEntriesByNames(ctx context.Context, names []dunes.DuneName) ([]*dunes.DuneEntry, error) {
	result := make([]*dunes.DuneEntry, 0)
	for _, name := range names {
		for _, entry := range s.duneEntries {
			if entry.Name == name {
				result = append(result, entry)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetBalancesByAddressIds(ctx context.Context, addressIds []int64) ([]*entity.Balance, error) {
	result := make([]*entity.Balance, 0)
	for _, id := range addressIds {
		for key, balance := range s.balances {
			if key[0] == id {
				result = append(result, balance)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetDuneEntryByDuneId(ctx context.Context, duneId dunes.DuneId) (*dunes.DuneEntry, error) {
	for _, entry := range s.duneEntries {
		if entry.DuneId == duneId {
			return entry, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (s *mockStore) GetUtxoWithBalancesByLocation(ctx context.Context, txHash chainhash.Hash, vout uint32) (*entity.Utxo, []*entity.UtxoBalance, error) {
	for _, utxo := range s.utxos {
		tx, ok := s.transactions[utxo.TransactionId]
		if !ok || tx.Hash != txHash || utxo.Vout != vout || utxo.IsSpent() {
			continue
		}
		return utxo, s.utxoBalances[utxo.Id], nil
	}
	return nil, nil, errors.WithStack(errs.NotFound)
}

func (s *mockStore) GetBalancesByAddress(ctx context.Context, address string) ([]*entity.Balance, error) {
	result := make([]*entity.Balance, 0)
	for _, row := range s.addresses {
		if row.Address != address {
			continue
		}
		for key, balance := range s.balances {
			if key[0] == row.Id {
				result = append(result, balance)
			}
		}
	}
	return result, nil
}

func (s *mockStore) GetSnapshotBalancesByAddress(ctx context.Context, address string, start, end uint64) (map[int64]*entity.Balance, error) {
	result := make(map[int64]*entity.Balance)
	for _, utxo := range s.utxos {
		holder, ok := s.addresses[utxo.AddressId]
		if !ok || holder.Address != address {
			continue
		}
		if utxo.BlockCreated < start || utxo.BlockCreated > end {
			continue
		}
		if utxo.BlockSpent != nil && *utxo.BlockSpent <= end {
			continue
		}
		for _, utxoBalance := range s.utxoBalances[utxo.Id] {
			balance, ok := result[utxoBalance.DuneEntryId]
			if !ok {
				balance = &entity.Balance{AddressId: utxo.AddressId, DuneEntryId: utxoBalance.DuneEntryId}
				result[utxoBalance.DuneEntryId] = balance
			}
			balance.Balance = balance.Balance.Add(utxoBalance.Balance)
		}
	}
	return result, nil
}

func (s *mockStore) CreateAddresses(ctx context.Context, addresses []*entity.Address) error {
	for _, address := range addresses {
		s.addresses[address.Id] = address
	}
	return nil
}

func (s *mockStore) CreateTransactions(ctx context.Context, txs []*entity.Transaction) error {
	for _, tx := range txs {
		s.transactions[tx.Id] = tx
	}
	return nil
}

func (s *mockStore) UpsertDuneEntries(ctx context.Context, entries []*dunes.DuneEntry) error {
	for _, entry := range entries {
		s.duneEntries[entry.Id] = entry
	}
	return nil
}

func (s *mockStore) CreateUtxos(ctx context.Context, utxos []*entity.Utxo) error {
	for _, utxo := range utxos {
		s.utxos[utxo.Id] = utxo
	}
	return nil
}

func (s *mockStore) SpendUtxos(ctx context.Context, params []datagateway.SpendUtxoParams) error {
	for _, param := range params {
		utxo, ok := s.utxos[param.UtxoId]
		if !ok {
			return errors.WithStack(errs.NotFound)
		}
		blockSpent := param.BlockSpent
		transactionSpentId := param.TransactionSpentId
		utxo.BlockSpent = &blockSpent
		utxo.TransactionSpentId = &transactionSpentId
	}
	return nil
}

func (s *mockStore) CreateUtxoBalances(ctx context.Context, balances []*entity.UtxoBalance) error {
	for _, balance := range balances {
		s.utxoBalances[balance.UtxoId] = append(s.utxoBalances[balance.UtxoId], balance)
	}
	return nil
}

func (s *mockStore) UpsertBalances(ctx context.Context, balances []*entity.Balance) error {
	for _, balance := range balances {
		s.balances[[2]int64{balance.AddressId, balance.DuneEntryId}] = balance
	}
	return nil
}

func (s *mockStore) CreateEvents(ctx context.Context, events []*entity.Event) error {
	s.events = append(s.events, events...)
	return nil
}

func (s *mockStore) CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error {
	s.blocks[block.Height] = block
	return nil
}

func (s *mockStore) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	if len(s.states) == 0 {
		return entity.IndexerState{}, errors.WithStack(errs.NotFound)
	}
	return s.states[len(s.states)-1], nil
}

func (s *mockStore) SetIndexerState(ctx context.Context, state entity.IndexerState) error {
	s.states = append(s.states, state)
	return nil
}

// mockBitcoinClient serves commitment-check lookups.
type mockBitcoinClient struct {
	txs map[chainhash.Hash]struct {
		tx     *wire.MsgTx
		height int64
	}
}

func (m *mockBitcoinClient) GetRawTransactionAndHeightByTxHash(ctx context.Context, txHash chainhash.Hash) (*wire.MsgTx, int64, error) {
	entry, ok := m.txs[txHash]
	if !ok {
		return nil, -1, errors.WithStack(errs.NotFound)
	}
	return entry.tx, entry.height, nil
}

// test fixtures

func hashFromByte(b byte) chainhash.Hash {
	var hash chainhash.Hash
	hash[0] = b
	return hash
}

// p2wpkhScript returns a distinct P2WPKH output script per seed.
func p2wpkhScript(seed byte) []byte {
	script := make([]byte, 22)
	script[0] = txscript.OP_0
	script[1] = txscript.OP_DATA_20
	binary.BigEndian.PutUint32(script[2:], uint32(seed))
	script[21] = seed
	return script
}

func opReturnScript(t *testing.T, payload string) []byte {
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData([]byte(payload)).
		Script()
	require.NoError(t, err)
	return script
}

func p2trScript(seed byte) []byte {
	script := make([]byte, 34)
	script[0] = txscript.OP_1
	script[1] = txscript.OP_DATA_32
	script[33] = seed
	return script
}

func newBlock(height int64, txs ...*types.Transaction) *types.Block {
	header := types.BlockHeader{
		Height: height,
		Hash:   hashFromByte(byte(height % 251)),
	}
	for i, tx := range txs {
		tx.BlockHeight = height
		tx.Index = uint32(i)
	}
	return &types.Block{Header: header, Transactions: txs}
}

func addressOf(t *testing.T, network common.Network, pkScript []byte) string {
	address, err := btcutils.PkScriptToAddress(pkScript, network)
	require.NoError(t, err)
	return address
}

type testEnv struct {
	store     *mockStore
	client    *mockBitcoinClient
	processor *Processor
}

func newTestEnv(t *testing.T) *testEnv {
	store := newMockStore()
	client := &mockBitcoinClient{txs: make(map[chainhash.Hash]struct {
		tx     *wire.MsgTx
		height int64
	})}
	processor := NewProcessor(store, store, client, common.NetworkMainnet, nil)
	return &testEnv{store: store, client: client, processor: processor}
}

// seedDune installs a dune entry with backing address, transaction, utxo and
// balances so that scenarios can spend dune-carrying inputs.
func (e *testEnv) seedDune(t *testing.T, entry *dunes.DuneEntry) {
	if entry.Id == 0 {
		entry.Id = int64(len(e.store.duneEntries) + 1)
	}
	e.store.duneEntries[entry.Id] = entry
}

func (e *testEnv) seedUtxo(t *testing.T, utxoId int64, txHash chainhash.Hash, vout uint32, addressId int64, valueSats uint64, balances map[int64]uint128.Uint128) {
	txId := int64(len(e.store.transactions) + 1000)
	e.store.transactions[txId] = &entity.Transaction{Id: txId, Hash: txHash}
	e.store.utxos[utxoId] = &entity.Utxo{
		Id:            utxoId,
		TransactionId: txId,
		Vout:          vout,
		AddressId:     addressId,
		ValueSats:     valueSats,
		BlockCreated:  dunes.GENESIS_BLOCK,
	}
	for duneEntryId, amount := range balances {
		e.store.utxoBalances[utxoId] = append(e.store.utxoBalances[utxoId], &entity.UtxoBalance{
			UtxoId:      utxoId,
			DuneEntryId: duneEntryId,
			Balance:     amount,
		})
		balance := &entity.Balance{
			Id:          int64(len(e.store.balances) + 1),
			AddressId:   addressId,
			DuneEntryId: duneEntryId,
			Balance:     amount,
		}
		e.store.balances[[2]int64{addressId, duneEntryId}] = balance
	}
}

func (e *testEnv) seedAddress(id int64, address string) {
	e.store.addresses[id] = &entity.Address{Id: id, Address: address}
}

func (e *testEnv) utxoBalanceAt(t *testing.T, txHash chainhash.Hash, vout uint32, duneEntryId int64) uint128.Uint128 {
	_, balances, err := e.store.GetUtxoWithBalancesByLocation(context.Background(), txHash, vout)
	if errors.Is(err, errs.NotFound) {
		return uint128.Zero
	}
	require.NoError(t, err)
	for _, balance := range balances {
		if balance.DuneEntryId == duneEntryId {
			return balance.Balance
		}
	}
	return uint128.Zero
}

func TestProcessEtching(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	name := dunes.DuneName("HELLODUNESLONG")
	commitment, ok := name.Commitment()
	require.True(t, ok)

	// commitment input: P2TR output of a transaction mined 11 blocks earlier
	prevTxHash := hashFromByte(0xaa)
	prevTx := &wire.MsgTx{TxOut: []*wire.TxOut{{PkScript: p2trScript(1), Value: 10_000}}}
	env.client.txs[prevTxHash] = struct {
		tx     *wire.MsgTx
		height int64
	}{tx: prevTx, height: 840_089}

	tapscript, err := txscript.NewScriptBuilder().AddData(commitment).Script()
	require.NoError(t, err)

	payload := `{"p":"dunes","etching":{"dune":"HELLODUNESLONG","divisibility":2,"premine":"1000","symbol":"$","terms":{"amount":"10","cap":"100","height":[null,null],"offset":[null,null]},"turbo":true}}`
	recipient := p2wpkhScript(7)
	etchTx := &types.Transaction{
		TxHash: hashFromByte(0x01),
		TxIn: []*types.TxIn{{
			PreviousOutTxHash: prevTxHash,
			PreviousOutIndex:  0,
			Witness:           [][]byte{tapscript, {0xc0}},
		}},
		TxOut: []*types.TxOut{
			{PkScript: recipient, Value: 546},
			{PkScript: opReturnScript(t, payload), Value: 0},
		},
	}

	coinbase := &types.Transaction{
		TxHash: hashFromByte(0xcb),
		TxIn:   []*types.TxIn{{PreviousOutIndex: wire.MaxPrevOutIndex}},
		TxOut:  []*types.TxOut{{PkScript: p2wpkhScript(99), Value: 0}},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_100, coinbase, etchTx)}))

	entry, err := env.store.GetDuneEntryByDuneId(ctx, dunes.NewDuneId(840_100, 1))
	require.NoError(t, err)
	assert.Equal(t, name, entry.Name)
	assert.Equal(t, uint128.From64(1000), entry.Premine)
	assert.True(t, entry.Mints.IsZero())
	assert.Equal(t, uint8(2), entry.Divisibility)

	// premine lands on the first non-OP_RETURN output
	assert.Equal(t, uint128.From64(1000), env.utxoBalanceAt(t, etchTx.TxHash, 0, entry.Id))

	// address aggregate matches
	balances, err := env.store.GetBalancesByAddress(ctx, addressOf(t, common.NetworkMainnet, recipient))
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, uint128.From64(1000), balances[0].Balance)
}

func TestProcessMint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	duneId := dunes.NewDuneId(840_100, 1)
	entry := &dunes.DuneEntry{
		Id:         1,
		DuneId:     duneId,
		Name:       "HELLODUNESLONG",
		Premine:    uint128.From64(1000),
		MintAmount: uint128.From64(10),
		MintCap:    lo.ToPtr(uint128.From64(100)),
	}
	env.seedDune(t, entry)

	recipient := p2wpkhScript(9)
	mintTx := &types.Transaction{
		TxHash: hashFromByte(0x02),
		TxIn:   []*types.TxIn{{PreviousOutTxHash: hashFromByte(0xbb), PreviousOutIndex: 0}},
		TxOut: []*types.TxOut{
			{PkScript: recipient, Value: 546},
			{PkScript: opReturnScript(t, `{"p":"dunes","mint":"840100:1"}`), Value: 0},
		},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_101, mintTx)}))

	assert.Equal(t, uint128.From64(1), entry.Mints)
	assert.Equal(t, uint128.From64(10), env.utxoBalanceAt(t, mintTx.TxHash, 0, entry.Id))
}

func TestProcessEvenSplit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	duneId := dunes.NewDuneId(840_100, 1)
	entry := &dunes.DuneEntry{Id: 1, DuneId: duneId, Name: "SPLITDUNENAME"}
	env.seedDune(t, entry)
	env.seedAddress(10, "holder-address")
	inputHash := hashFromByte(0x0a)
	env.seedUtxo(t, 500, inputHash, 0, 10, 10_000, map[int64]uint128.Uint128{entry.Id: uint128.From64(11)})

	splitTx := &types.Transaction{
		TxHash: hashFromByte(0x03),
		TxIn:   []*types.TxIn{{PreviousOutTxHash: inputHash, PreviousOutIndex: 0}},
		TxOut: []*types.TxOut{
			{PkScript: p2wpkhScript(1), Value: 546},
			{PkScript: p2wpkhScript(2), Value: 546},
			{PkScript: opReturnScript(t, `{"p":"dunes","edicts":[{"id":"840100:1","amount":"0","output":3}]}`), Value: 0},
		},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_102, splitTx)}))

	assert.Equal(t, uint128.From64(6), env.utxoBalanceAt(t, splitTx.TxHash, 0, entry.Id))
	assert.Equal(t, uint128.From64(5), env.utxoBalanceAt(t, splitTx.TxHash, 1, entry.Id))
}

func TestProcessPerOutputEdicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entry := &dunes.DuneEntry{Id: 1, DuneId: dunes.NewDuneId(840_100, 1), Name: "EDICTDUNENAME"}
	env.seedDune(t, entry)
	env.seedAddress(10, "holder-address")
	inputHash := hashFromByte(0x0b)
	env.seedUtxo(t, 501, inputHash, 0, 10, 10_000, map[int64]uint128.Uint128{entry.Id: uint128.From64(7)})

	tx := &types.Transaction{
		TxHash: hashFromByte(0x04),
		TxIn:   []*types.TxIn{{PreviousOutTxHash: inputHash, PreviousOutIndex: 0}},
		TxOut: []*types.TxOut{
			{PkScript: p2wpkhScript(1), Value: 546},
			{PkScript: p2wpkhScript(2), Value: 546},
			{PkScript: opReturnScript(t, `{"p":"dunes","edicts":[{"id":"840100:1","amount":"5","output":0},{"id":"840100:1","amount":"0","output":1}]}`), Value: 0},
		},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_103, tx)}))

	assert.Equal(t, uint128.From64(5), env.utxoBalanceAt(t, tx.TxHash, 0, entry.Id))
	assert.Equal(t, uint128.From64(2), env.utxoBalanceAt(t, tx.TxHash, 1, entry.Id))
}

func TestProcessCenotaphBurnsInputs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entry := &dunes.DuneEntry{Id: 1, DuneId: dunes.NewDuneId(840_100, 1), Name: "BURNDUNENAMES"}
	env.seedDune(t, entry)
	env.seedAddress(10, "holder-address")
	inputHash := hashFromByte(0x0c)
	env.seedUtxo(t, 502, inputHash, 0, 10, 10_000, map[int64]uint128.Uint128{entry.Id: uint128.From64(42)})

	// edict output index far beyond the vout count makes the dunestone a cenotaph
	tx := &types.Transaction{
		TxHash: hashFromByte(0x05),
		TxIn:   []*types.TxIn{{PreviousOutTxHash: inputHash, PreviousOutIndex: 0}},
		TxOut: []*types.TxOut{
			{PkScript: p2wpkhScript(1), Value: 546},
			{PkScript: p2wpkhScript(2), Value: 546},
			{PkScript: opReturnScript(t, `{"p":"dunes","edicts":[{"id":"840100:1","amount":"1","output":99}]}`), Value: 0},
		},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_104, tx)}))

	assert.Equal(t, uint128.From64(42), entry.BurnedAmount)
	assert.True(t, env.utxoBalanceAt(t, tx.TxHash, 0, entry.Id).IsZero())
	assert.True(t, env.utxoBalanceAt(t, tx.TxHash, 1, entry.Id).IsZero())

	// the consumed utxo no longer contributes to the holder's balance
	balance, ok := env.store.balances[[2]int64{10, entry.Id}]
	require.True(t, ok)
	assert.True(t, balance.Balance.IsZero())
}

func TestProcessFlexMint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payScript := p2wpkhScript(33)
	payAddress := addressOf(t, common.NetworkMainnet, payScript)

	entry := &dunes.DuneEntry{
		Id:          1,
		DuneId:      dunes.NewDuneId(840_100, 1),
		Name:        "FLEXDUNENAMES",
		PriceAmount: lo.ToPtr(uint64(1000)),
		PricePayTo:  payAddress,
	}
	env.seedDune(t, entry)

	recipient := p2wpkhScript(9)
	tx := &types.Transaction{
		TxHash: hashFromByte(0x06),
		TxIn:   []*types.TxIn{{PreviousOutTxHash: hashFromByte(0xdd), PreviousOutIndex: 0}},
		TxOut: []*types.TxOut{
			{PkScript: recipient, Value: 546},
			{PkScript: payScript, Value: 4500},
			{PkScript: opReturnScript(t, `{"p":"dunes","mint":"840100:1"}`), Value: 0},
		},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_105, tx)}))

	assert.Equal(t, uint128.From64(1), entry.Mints)
	// floor(4500 / 1000) = 4 units, swept to the first non-OP_RETURN output
	assert.Equal(t, uint128.From64(4), env.utxoBalanceAt(t, tx.TxHash, 0, entry.Id))
}

func TestProcessSkipsNoopTx(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tx := &types.Transaction{
		TxHash: hashFromByte(0x07),
		TxIn:   []*types.TxIn{{PreviousOutTxHash: hashFromByte(0xee), PreviousOutIndex: 0}},
		TxOut:  []*types.TxOut{{PkScript: p2wpkhScript(1), Value: 546}},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(840_106, tx)}))
	assert.Empty(t, env.store.events)
	assert.Len(t, env.store.transactions, 0)
}

func TestProcessGenesisBlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	coinbase := &types.Transaction{
		TxHash: hashFromByte(0x08),
		TxIn:   []*types.TxIn{{PreviousOutIndex: wire.MaxPrevOutIndex}},
		TxOut:  []*types.TxOut{{PkScript: p2wpkhScript(1), Value: 0}},
	}

	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(int64(dunes.GENESIS_BLOCK), coinbase)}))

	entry, err := env.store.GetDuneEntryByDuneId(ctx, dunes.GenesisDuneId)
	require.NoError(t, err)
	assert.Equal(t, dunes.DuneName("DUNES"), entry.Name)
	assert.True(t, entry.Premine.IsZero())
	assert.Equal(t, uint128.From64(1), entry.MintAmount)
	require.NotNil(t, entry.MintCap)
	assert.Equal(t, uint128.Max, *entry.MintCap)
	assert.False(t, entry.Unmintable)

	// reprocessing skips the already-etched location
	require.NoError(t, env.processor.Process(ctx, []*types.Block{newBlock(int64(dunes.GENESIS_BLOCK), coinbase)}))
	entries, err := env.store.GetDuneEntriesByNames(ctx, []dunes.DuneName{"DUNES"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
