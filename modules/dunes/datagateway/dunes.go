package datagateway

import (
	"context"

	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type DunesDataGateway interface {
	DunesReaderDataGateway
	DunesWriterDataGateway
	Tx
}

// Tx wraps all writes of one block flush in a single transaction boundary.
type Tx interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UtxoLocation is the natural key of a utxo.
type UtxoLocation struct {
	TransactionId int64
	Vout          uint32
}

// SpendUtxoParams marks a utxo as consumed.
type SpendUtxoParams struct {
	UtxoId             int64
	BlockSpent         uint64
	TransactionSpentId int64
}

// DunesReaderDataGateway serves the block cache's bulk prefetches and the API
// read models.
type DunesReaderDataGateway interface {
	GetLatestBlock(ctx context.Context) (types.BlockHeader, error)
	GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error)

	// GetNextSequences returns the next free id per entity.
	GetNextSequences(ctx context.Context) (entity.Sequences, error)

	GetTransactionsByHashes(ctx context.Context, hashes []chainhash.Hash) ([]*entity.Transaction, error)
	GetUtxosByLocations(ctx context.Context, locations []UtxoLocation) ([]*entity.Utxo, error)
	GetUtxoBalancesByUtxoIds(ctx context.Context, utxoIds []int64) ([]*entity.UtxoBalance, error)
	GetAddressesByIds(ctx context.Context, ids []int64) ([]*entity.Address, error)
	GetAddressesByAddresses(ctx context.Context, addresses []string) ([]*entity.Address, error)
	GetDuneEntriesByIds(ctx context.Context, ids []int64) ([]*dunes.DuneEntry, error)
	GetDuneEntriesByDuneIds(ctx context.Context, duneIds []dunes.DuneId) ([]*dunes.DuneEntry, error)
	GetDuneEntriesByNames(ctx context.Context, names []dunes.DuneName) ([]*dunes.DuneEntry, error)
	GetBalancesByAddressIds(ctx context.Context, addressIds []int64) ([]*entity.Balance, error)

	// GetDuneEntryByDuneId returns the dune entry with the given protocol id.
	// Returns errs.NotFound if the dune entry is not found.
	GetDuneEntryByDuneId(ctx context.Context, duneId dunes.DuneId) (*dunes.DuneEntry, error)

	// GetUtxoWithBalancesByLocation returns the unspent utxo at the given
	// outpoint together with its dune balances. Returns errs.NotFound if the
	// utxo is unknown.
	GetUtxoWithBalancesByLocation(ctx context.Context, txHash chainhash.Hash, vout uint32) (*entity.Utxo, []*entity.UtxoBalance, error)

	// GetBalancesByAddress returns the aggregate balances of the address.
	GetBalancesByAddress(ctx context.Context, address string) ([]*entity.Balance, error)

	// GetSnapshotBalancesByAddress reconstructs the balances held by address at
	// block height end, considering only utxos created at or after start.
	GetSnapshotBalancesByAddress(ctx context.Context, address string, start, end uint64) (map[int64]*entity.Balance, error)
}

// DunesWriterDataGateway persists one block's worth of staged writes. Flush
// order respects row dependencies: addresses, dunes, transactions, utxos,
// utxo balances, balances, events.
type DunesWriterDataGateway interface {
	CreateAddresses(ctx context.Context, addresses []*entity.Address) error
	CreateTransactions(ctx context.Context, txs []*entity.Transaction) error
	UpsertDuneEntries(ctx context.Context, entries []*dunes.DuneEntry) error
	CreateUtxos(ctx context.Context, utxos []*entity.Utxo) error
	SpendUtxos(ctx context.Context, params []SpendUtxoParams) error
	CreateUtxoBalances(ctx context.Context, balances []*entity.UtxoBalance) error
	UpsertBalances(ctx context.Context, balances []*entity.Balance) error
	CreateEvents(ctx context.Context, events []*entity.Event) error
	CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error
}
