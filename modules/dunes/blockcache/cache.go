package blockcache

import (
	"sort"

	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
)

// Cache is the per-block in-memory staging area. One block's reads and writes
// run entirely against it after the bulk prefetch; the staged writes are
// emitted as a single flush. The cache is owned exclusively by the transition
// engine for the duration of a block.
type Cache struct {
	seq entity.Sequences

	addressesById   map[int64]*entity.Address
	addressIdByName map[string]int64

	txsById    map[int64]*entity.Transaction
	txIdByHash map[chainhash.Hash]int64

	utxosById        map[int64]*entity.Utxo
	utxoIdByLocation map[utxoLocation]int64
	utxoBalances     map[int64][]*entity.UtxoBalance

	dunesById      map[int64]*dunes.DuneEntry
	duneIdByDuneId map[dunes.DuneId]int64
	duneIdByName   map[dunes.DuneName]int64

	balancesByKey map[balanceKey]*entity.Balance

	events []*entity.Event

	// staged writes
	newAddressIds    []int64
	newTxIds         []int64
	newUtxoIds       []int64
	spentUtxos       map[int64]struct{}
	newUtxoBalances  []*entity.UtxoBalance
	dirtyDuneIds     map[int64]struct{}
	dirtyBalanceKeys map[balanceKey]struct{}
}

type utxoLocation struct {
	TransactionId int64
	Vout          uint32
}

type balanceKey struct {
	AddressId   int64
	DuneEntryId int64
}

// New creates an empty cache that allocates ids starting from seq.
func New(seq entity.Sequences) *Cache {
	return &Cache{
		seq:              seq,
		addressesById:    make(map[int64]*entity.Address),
		addressIdByName:  make(map[string]int64),
		txsById:          make(map[int64]*entity.Transaction),
		txIdByHash:       make(map[chainhash.Hash]int64),
		utxosById:        make(map[int64]*entity.Utxo),
		utxoIdByLocation: make(map[utxoLocation]int64),
		utxoBalances:     make(map[int64][]*entity.UtxoBalance),
		dunesById:        make(map[int64]*dunes.DuneEntry),
		duneIdByDuneId:   make(map[dunes.DuneId]int64),
		duneIdByName:     make(map[dunes.DuneName]int64),
		balancesByKey:    make(map[balanceKey]*entity.Balance),
		spentUtxos:       make(map[int64]struct{}),
		dirtyDuneIds:     make(map[int64]struct{}),
		dirtyBalanceKeys: make(map[balanceKey]struct{}),
	}
}

// seed methods install prefetched rows without staging them for flush.

func (c *Cache) SeedAddress(address *entity.Address) {
	c.addressesById[address.Id] = address
	c.addressIdByName[address.Address] = address.Id
}

func (c *Cache) SeedTransaction(tx *entity.Transaction) {
	c.txsById[tx.Id] = tx
	c.txIdByHash[tx.Hash] = tx.Id
}

func (c *Cache) SeedUtxo(utxo *entity.Utxo) {
	c.utxosById[utxo.Id] = utxo
	c.utxoIdByLocation[utxoLocation{utxo.TransactionId, utxo.Vout}] = utxo.Id
}

func (c *Cache) SeedUtxoBalance(balance *entity.UtxoBalance) {
	c.utxoBalances[balance.UtxoId] = append(c.utxoBalances[balance.UtxoId], balance)
}

func (c *Cache) SeedDuneEntry(entry *dunes.DuneEntry) {
	c.dunesById[entry.Id] = entry
	c.duneIdByDuneId[entry.DuneId] = entry.Id
	c.duneIdByName[entry.Name] = entry.Id
}

func (c *Cache) SeedBalance(balance *entity.Balance) {
	c.balancesByKey[balanceKey{balance.AddressId, balance.DuneEntryId}] = balance
}

// Addresses

func (c *Cache) GetAddress(id int64) Result[*entity.Address] {
	if address, ok := c.addressesById[id]; ok {
		return Found(address)
	}
	return Absent[*entity.Address]()
}

func (c *Cache) GetAddressByString(address string) Result[*entity.Address] {
	if id, ok := c.addressIdByName[address]; ok {
		return Found(c.addressesById[id])
	}
	return Absent[*entity.Address]()
}

// GetOrCreateAddress returns the row for address, creating it with a fresh id
// on first sight.
func (c *Cache) GetOrCreateAddress(address string) *entity.Address {
	if result := c.GetAddressByString(address); result.Found() {
		return result.Value()
	}
	row := &entity.Address{
		Id:      c.nextId(&c.seq.Address),
		Address: address,
	}
	c.SeedAddress(row)
	c.newAddressIds = append(c.newAddressIds, row.Id)
	return row
}

// Transactions

func (c *Cache) GetTransactionByHash(hash chainhash.Hash) Result[*entity.Transaction] {
	if id, ok := c.txIdByHash[hash]; ok {
		return Found(c.txsById[id])
	}
	return Absent[*entity.Transaction]()
}

func (c *Cache) GetOrCreateTransaction(hash chainhash.Hash) *entity.Transaction {
	if result := c.GetTransactionByHash(hash); result.Found() {
		return result.Value()
	}
	row := &entity.Transaction{
		Id:   c.nextId(&c.seq.Transaction),
		Hash: hash,
	}
	c.SeedTransaction(row)
	c.newTxIds = append(c.newTxIds, row.Id)
	return row
}

// Utxos

func (c *Cache) GetUtxo(transactionId int64, vout uint32) Result[*entity.Utxo] {
	if id, ok := c.utxoIdByLocation[utxoLocation{transactionId, vout}]; ok {
		return Found(c.utxosById[id])
	}
	return Absent[*entity.Utxo]()
}

// CreateUtxo stages a new utxo row together with its dune balances. Balances
// must be non-zero; zero-balance rows are never persisted.
func (c *Cache) CreateUtxo(utxo *entity.Utxo, balances map[int64]uint128.Uint128) *entity.Utxo {
	utxo.Id = c.nextId(&c.seq.Utxo)
	c.SeedUtxo(utxo)
	c.newUtxoIds = append(c.newUtxoIds, utxo.Id)
	duneEntryIds := make([]int64, 0, len(balances))
	for duneEntryId := range balances {
		duneEntryIds = append(duneEntryIds, duneEntryId)
	}
	sort.Slice(duneEntryIds, func(i, j int) bool { return duneEntryIds[i] < duneEntryIds[j] })
	for _, duneEntryId := range duneEntryIds {
		balance := balances[duneEntryId]
		if balance.IsZero() {
			continue
		}
		row := &entity.UtxoBalance{
			UtxoId:      utxo.Id,
			DuneEntryId: duneEntryId,
			Balance:     balance,
		}
		c.SeedUtxoBalance(row)
		c.newUtxoBalances = append(c.newUtxoBalances, row)
	}
	return utxo
}

// GetUtxoBalances returns the dune balances held by the utxo.
func (c *Cache) GetUtxoBalances(utxoId int64) []*entity.UtxoBalance {
	return c.utxoBalances[utxoId]
}

// SpendUtxo marks the utxo consumed at blockHeight by transactionId.
func (c *Cache) SpendUtxo(utxo *entity.Utxo, blockHeight uint64, transactionId int64) {
	utxo.BlockSpent = &blockHeight
	utxo.TransactionSpentId = &transactionId
	c.spentUtxos[utxo.Id] = struct{}{}
}

// Dunes

func (c *Cache) GetDuneEntry(id int64) Result[*dunes.DuneEntry] {
	if entry, ok := c.dunesById[id]; ok {
		return Found(entry)
	}
	return Absent[*dunes.DuneEntry]()
}

func (c *Cache) GetDuneEntryByDuneId(duneId dunes.DuneId) Result[*dunes.DuneEntry] {
	if id, ok := c.duneIdByDuneId[duneId]; ok {
		return Found(c.dunesById[id])
	}
	return Absent[*dunes.DuneEntry]()
}

func (c *Cache) GetDuneEntryByName(name dunes.DuneName) Result[*dunes.DuneEntry] {
	if id, ok := c.duneIdByName[name]; ok {
		return Found(c.dunesById[id])
	}
	return Absent[*dunes.DuneEntry]()
}

// CreateDuneEntry stages a newly etched dune and assigns its id.
func (c *Cache) CreateDuneEntry(entry *dunes.DuneEntry) *dunes.DuneEntry {
	entry.Id = c.nextId(&c.seq.Dune)
	c.SeedDuneEntry(entry)
	c.dirtyDuneIds[entry.Id] = struct{}{}
	return entry
}

// MarkDuneEntryDirty stages a mutated dune (mints, burned amount) for flush.
func (c *Cache) MarkDuneEntryDirty(entry *dunes.DuneEntry) {
	c.dirtyDuneIds[entry.Id] = struct{}{}
}

// Balances

func (c *Cache) GetBalance(addressId, duneEntryId int64) Result[*entity.Balance] {
	if balance, ok := c.balancesByKey[balanceKey{addressId, duneEntryId}]; ok {
		return Found(balance)
	}
	return Absent[*entity.Balance]()
}

// AddToBalance credits amount to the (address, dune) aggregate, creating the
// row on first touch.
func (c *Cache) AddToBalance(addressId, duneEntryId int64, amount uint128.Uint128) {
	key := balanceKey{addressId, duneEntryId}
	balance, ok := c.balancesByKey[key]
	if !ok {
		balance = &entity.Balance{
			Id:          c.nextId(&c.seq.Balance),
			AddressId:   addressId,
			DuneEntryId: duneEntryId,
		}
		c.balancesByKey[key] = balance
	}
	balance.Balance = balance.Balance.Add(amount)
	c.dirtyBalanceKeys[key] = struct{}{}
}

var ErrBalanceUnderflow = errors.New("balance subtraction underflow")

// SubFromBalance debits amount from the (address, dune) aggregate. The row may
// legitimately reach zero; it is kept. Underflow indicates a ledger bug and is
// fatal.
func (c *Cache) SubFromBalance(addressId, duneEntryId int64, amount uint128.Uint128) error {
	key := balanceKey{addressId, duneEntryId}
	balance, ok := c.balancesByKey[key]
	if !ok || balance.Balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrBalanceUnderflow, "address %d, dune %d", addressId, duneEntryId)
	}
	balance.Balance = balance.Balance.Sub(amount)
	c.dirtyBalanceKeys[key] = struct{}{}
	return nil
}

// Events

func (c *Cache) AppendEvent(event *entity.Event) {
	event.Id = c.nextId(&c.seq.Event)
	c.events = append(c.events, event)
}

func (c *Cache) nextId(seq *int64) int64 {
	id := *seq
	*seq++
	return id
}
