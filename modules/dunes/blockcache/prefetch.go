package blockcache

import (
	"context"

	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/bitapeslabs/nana/pkg/btcutils"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Prefetch bulk-loads everything one block's transactions may touch and seeds
// a fresh cache with it: input transactions and utxos, their balances, every
// referenced address, every referenced dune, and the aggregate balances of the
// loaded addresses.
func Prefetch(ctx context.Context, dg datagateway.DunesReaderDataGateway, network common.Network, block *types.Block) (*Cache, error) {
	seq, err := dg.GetNextSequences(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get id sequences")
	}
	cache := New(seq)

	// input transactions
	txHashes := make([]chainhash.Hash, 0)
	seenTxHashes := make(map[chainhash.Hash]struct{})
	for _, tx := range block.Transactions {
		for _, txIn := range tx.TxIn {
			if txIn.PreviousOutTxHash == (chainhash.Hash{}) {
				continue
			}
			if _, ok := seenTxHashes[txIn.PreviousOutTxHash]; ok {
				continue
			}
			seenTxHashes[txIn.PreviousOutTxHash] = struct{}{}
			txHashes = append(txHashes, txIn.PreviousOutTxHash)
		}
	}
	prevTxs, err := dg.GetTransactionsByHashes(ctx, txHashes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transactions by hashes")
	}
	for _, prevTx := range prevTxs {
		cache.SeedTransaction(prevTx)
	}

	// input utxos, derived from the found transactions
	locations := make([]datagateway.UtxoLocation, 0)
	for _, tx := range block.Transactions {
		for _, txIn := range tx.TxIn {
			prevTx := cache.GetTransactionByHash(txIn.PreviousOutTxHash)
			if !prevTx.Found() {
				continue
			}
			locations = append(locations, datagateway.UtxoLocation{
				TransactionId: prevTx.Value().Id,
				Vout:          txIn.PreviousOutIndex,
			})
		}
	}
	utxos, err := dg.GetUtxosByLocations(ctx, locations)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get utxos by locations")
	}
	for _, utxo := range utxos {
		cache.SeedUtxo(utxo)
	}

	// balances of the input utxos
	utxoIds := lo.Map(utxos, func(utxo *entity.Utxo, _ int) int64 { return utxo.Id })
	utxoBalances, err := dg.GetUtxoBalancesByUtxoIds(ctx, utxoIds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get utxo balances")
	}
	for _, balance := range utxoBalances {
		cache.SeedUtxoBalance(balance)
	}

	// addresses: the reserved triple, every input utxo's holder and every vout recipient
	addressIds := []int64{entity.AddressIdCoinbase, entity.AddressIdOpReturn, entity.AddressIdUnknown}
	addressIds = append(addressIds, lo.Map(utxos, func(utxo *entity.Utxo, _ int) int64 { return utxo.AddressId })...)
	addressStrings := make([]string, 0)
	seenAddresses := make(map[string]struct{})
	for _, tx := range block.Transactions {
		for _, txOut := range tx.TxOut {
			address, err := btcutils.PkScriptToAddress(txOut.PkScript, network)
			if err != nil {
				continue
			}
			if _, ok := seenAddresses[address]; ok {
				continue
			}
			seenAddresses[address] = struct{}{}
			addressStrings = append(addressStrings, address)
		}
	}
	var addressesByIds, addressesByStrings []*entity.Address
	{
		eg, ectx := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			addressesByIds, err = dg.GetAddressesByIds(ectx, lo.Uniq(addressIds))
			return errors.Wrap(err, "failed to get addresses by ids")
		})
		eg.Go(func() (err error) {
			addressesByStrings, err = dg.GetAddressesByAddresses(ectx, addressStrings)
			return errors.Wrap(err, "failed to get addresses by strings")
		})
		if err := eg.Wait(); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	for _, address := range addressesByIds {
		cache.SeedAddress(address)
	}
	for _, address := range addressesByStrings {
		cache.SeedAddress(address)
	}

	// dunes referenced by utxo balances, mints, edicts and etching name collisions
	duneEntryIds := lo.Uniq(lo.Map(utxoBalances, func(balance *entity.UtxoBalance, _ int) int64 { return balance.DuneEntryId }))
	duneIds := make([]dunes.DuneId, 0)
	seenDuneIds := make(map[dunes.DuneId]struct{})
	names := make([]dunes.DuneName, 0)
	if uint64(block.Header.Height) == dunes.GENESIS_BLOCK {
		// the genesis coinbase synthesizes an etching at "1:0"
		seenDuneIds[dunes.GenesisDuneId] = struct{}{}
		duneIds = append(duneIds, dunes.GenesisDuneId)
	}
	for _, tx := range block.Transactions {
		dunestone := dunes.DecipherDunestone(tx)
		if dunestone == nil {
			continue
		}
		if dunestone.Mint != nil && !dunestone.Mint.IsZero() {
			if _, ok := seenDuneIds[*dunestone.Mint]; !ok {
				seenDuneIds[*dunestone.Mint] = struct{}{}
				duneIds = append(duneIds, *dunestone.Mint)
			}
		}
		for _, edict := range dunestone.Edicts {
			if edict.Id.IsZero() {
				continue
			}
			if _, ok := seenDuneIds[edict.Id]; !ok {
				seenDuneIds[edict.Id] = struct{}{}
				duneIds = append(duneIds, edict.Id)
			}
		}
		if dunestone.Etching != nil {
			// the etched dune id must also be checked for collisions
			etchDuneId := dunes.NewDuneId(uint64(block.Header.Height), tx.Index)
			if _, ok := seenDuneIds[etchDuneId]; !ok {
				seenDuneIds[etchDuneId] = struct{}{}
				duneIds = append(duneIds, etchDuneId)
			}
			if dunestone.Etching.Dune != nil {
				names = append(names, *dunestone.Etching.Dune)
			}
		}
	}
	var entriesByIds, entriesByDuneIds, entriesByNames []*dunes.DuneEntry
	{
		eg, ectx := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			entriesByIds, err = dg.GetDuneEntriesByIds(ectx, duneEntryIds)
			return errors.Wrap(err, "failed to get dune entries by ids")
		})
		eg.Go(func() (err error) {
			entriesByDuneIds, err = dg.GetDuneEntriesByDuneIds(ectx, duneIds)
			return errors.Wrap(err, "failed to get dune entries by dune ids")
		})
		eg.Go(func() (err error) {
			entriesByNames, err = dg.GetDuneEntriesByNames(ectx, lo.Uniq(names))
			return errors.Wrap(err, "failed to get dune entries by names")
		})
		if err := eg.Wait(); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	for _, entry := range entriesByIds {
		cache.SeedDuneEntry(entry)
	}
	for _, entry := range entriesByDuneIds {
		cache.SeedDuneEntry(entry)
	}
	for _, entry := range entriesByNames {
		cache.SeedDuneEntry(entry)
	}

	// aggregate balances of every prefetched address
	allAddressIds := lo.Keys(cache.addressesById)
	balances, err := dg.GetBalancesByAddressIds(ctx, allAddressIds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balances by address ids")
	}
	for _, balance := range balances {
		cache.SeedBalance(balance)
	}

	return cache, nil
}
