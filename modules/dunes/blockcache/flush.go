package blockcache

import (
	"context"
	"sort"

	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/cockroachdb/errors"
)

// FlushSet is one block's staged writes, ordered deterministically.
type FlushSet struct {
	Addresses    []*entity.Address
	DuneEntries  []*dunes.DuneEntry
	Transactions []*entity.Transaction
	Utxos        []*entity.Utxo
	SpentUtxos   []datagateway.SpendUtxoParams
	UtxoBalances []*entity.UtxoBalance
	Balances     []*entity.Balance
	Events       []*entity.Event
}

// FlushSet collects the staged writes. Rows are ordered by id (balances by
// address id, then dune id) so reprocessing
// the same blocks from the same store yields identical flushes.
func (c *Cache) FlushSet() *FlushSet {
	set := &FlushSet{}

	for _, id := range c.newAddressIds {
		set.Addresses = append(set.Addresses, c.addressesById[id])
	}
	for _, id := range c.newTxIds {
		set.Transactions = append(set.Transactions, c.txsById[id])
	}
	for _, id := range c.newUtxoIds {
		set.Utxos = append(set.Utxos, c.utxosById[id])
	}
	set.UtxoBalances = c.newUtxoBalances
	set.Events = c.events

	duneIds := make([]int64, 0, len(c.dirtyDuneIds))
	for id := range c.dirtyDuneIds {
		duneIds = append(duneIds, id)
	}
	sort.Slice(duneIds, func(i, j int) bool { return duneIds[i] < duneIds[j] })
	for _, id := range duneIds {
		set.DuneEntries = append(set.DuneEntries, c.dunesById[id])
	}

	spentIds := make([]int64, 0, len(c.spentUtxos))
	for id := range c.spentUtxos {
		spentIds = append(spentIds, id)
	}
	sort.Slice(spentIds, func(i, j int) bool { return spentIds[i] < spentIds[j] })
	for _, id := range spentIds {
		utxo := c.utxosById[id]
		set.SpentUtxos = append(set.SpentUtxos, datagateway.SpendUtxoParams{
			UtxoId:             id,
			BlockSpent:         *utxo.BlockSpent,
			TransactionSpentId: *utxo.TransactionSpentId,
		})
	}

	balanceKeys := make([]balanceKey, 0, len(c.dirtyBalanceKeys))
	for key := range c.dirtyBalanceKeys {
		balanceKeys = append(balanceKeys, key)
	}
	sort.Slice(balanceKeys, func(i, j int) bool {
		if balanceKeys[i].AddressId != balanceKeys[j].AddressId {
			return balanceKeys[i].AddressId < balanceKeys[j].AddressId
		}
		return balanceKeys[i].DuneEntryId < balanceKeys[j].DuneEntryId
	})
	for _, key := range balanceKeys {
		set.Balances = append(set.Balances, c.balancesByKey[key])
	}

	return set
}

// Flush writes the staged set through the datagateway in dependency order:
// addresses, dunes, transactions, utxos, utxo balances, balances, events.
// The caller owns the surrounding transaction boundary.
func Flush(ctx context.Context, dg datagateway.DunesWriterDataGateway, set *FlushSet) error {
	if err := dg.CreateAddresses(ctx, set.Addresses); err != nil {
		return errors.Wrap(err, "failed to flush addresses")
	}
	if err := dg.UpsertDuneEntries(ctx, set.DuneEntries); err != nil {
		return errors.Wrap(err, "failed to flush dune entries")
	}
	if err := dg.CreateTransactions(ctx, set.Transactions); err != nil {
		return errors.Wrap(err, "failed to flush transactions")
	}
	if err := dg.CreateUtxos(ctx, set.Utxos); err != nil {
		return errors.Wrap(err, "failed to flush utxos")
	}
	if err := dg.SpendUtxos(ctx, set.SpentUtxos); err != nil {
		return errors.Wrap(err, "failed to flush spent utxos")
	}
	if err := dg.CreateUtxoBalances(ctx, set.UtxoBalances); err != nil {
		return errors.Wrap(err, "failed to flush utxo balances")
	}
	if err := dg.UpsertBalances(ctx, set.Balances); err != nil {
		return errors.Wrap(err, "failed to flush balances")
	}
	if err := dg.CreateEvents(ctx, set.Events); err != nil {
		return errors.Wrap(err, "failed to flush events")
	}
	return nil
}
