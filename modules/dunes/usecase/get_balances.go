package usecase

import (
	"context"

	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

func (u *Usecase) GetLatestBlock(ctx context.Context) (types.BlockHeader, error) {
	blockHeader, err := u.dunesDg.GetLatestBlock(ctx)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "error during GetLatestBlock")
	}
	return blockHeader, nil
}

// GetUtxoBalances returns the dune balances held by an unspent utxo, keyed by
// dune entry. Returns errs.NotFound if the utxo is unknown.
func (u *Usecase) GetUtxoBalances(ctx context.Context, txHash chainhash.Hash, vout uint32) (map[*dunes.DuneEntry]uint128.Uint128, error) {
	_, balances, err := u.dunesDg.GetUtxoWithBalancesByLocation(ctx, txHash, vout)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetUtxoWithBalancesByLocation")
	}
	amounts := make(map[int64]uint128.Uint128, len(balances))
	for _, balance := range balances {
		amounts[balance.DuneEntryId] = amounts[balance.DuneEntryId].Add(balance.Balance)
	}
	return u.resolveDuneEntries(ctx, amounts)
}

// GetBalancesByAddress returns the aggregate dune balances of an address,
// keyed by dune entry. Zero balances are omitted.
func (u *Usecase) GetBalancesByAddress(ctx context.Context, address string) (map[*dunes.DuneEntry]uint128.Uint128, error) {
	balances, err := u.dunesDg.GetBalancesByAddress(ctx, address)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetBalancesByAddress")
	}
	amounts := make(map[int64]uint128.Uint128, len(balances))
	for _, balance := range balances {
		if balance.Balance.IsZero() {
			continue
		}
		amounts[balance.DuneEntryId] = balance.Balance
	}
	return u.resolveDuneEntries(ctx, amounts)
}

// GetSnapshotBalancesByAddress reconstructs the balances held by an address at
// block height end from the utxo ledger, considering utxos created in
// [start, end] and unspent at end.
func (u *Usecase) GetSnapshotBalancesByAddress(ctx context.Context, address string, start, end uint64) (map[*dunes.DuneEntry]uint128.Uint128, error) {
	balances, err := u.dunesDg.GetSnapshotBalancesByAddress(ctx, address, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSnapshotBalancesByAddress")
	}
	amounts := make(map[int64]uint128.Uint128, len(balances))
	for duneEntryId, balance := range balances {
		if balance.Balance.IsZero() {
			continue
		}
		amounts[duneEntryId] = balance.Balance
	}
	return u.resolveDuneEntries(ctx, amounts)
}

func (u *Usecase) resolveDuneEntries(ctx context.Context, amounts map[int64]uint128.Uint128) (map[*dunes.DuneEntry]uint128.Uint128, error) {
	entries, err := u.dunesDg.GetDuneEntriesByIds(ctx, lo.Keys(amounts))
	if err != nil {
		return nil, errors.Wrap(err, "error during GetDuneEntriesByIds")
	}
	result := make(map[*dunes.DuneEntry]uint128.Uint128, len(entries))
	for _, entry := range entries {
		amount, ok := amounts[entry.Id]
		if !ok || amount.IsZero() {
			continue
		}
		result[entry] = amount
	}
	return result, nil
}
