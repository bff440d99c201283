package dunes

import (
	"math"

	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/pkg/btcutils"
	"github.com/gaze-network/uint128"
)

// DuneEntry is the indexed state of an etched dune.
type DuneEntry struct {
	// Id is the database id, assigned by the block cache on creation.
	Id     int64
	DuneId DuneId
	Name   DuneName
	Symbol rune
	// Divisibility is the number of decimals when displaying the dune.
	Divisibility uint8
	// Premine is the amount credited to the etcher at etching.
	Premine uint128.Uint128
	// Mints is the number of times this dune has been minted.
	Mints uint128.Uint128
	// MintCap is the number of allowed mints. Nil means uncapped.
	MintCap *uint128.Uint128
	// MintAmount is the fixed per-mint amount. Zero for flex-mode dunes.
	MintAmount uint128.Uint128
	// Absolute mint window.
	MintHeightStart *uint64
	MintHeightEnd   *uint64
	// Mint window relative to the etching block.
	MintOffsetStart *uint64
	MintOffsetEnd   *uint64
	// PriceAmount is the flex-mode unit price in satoshis. Nil for fixed-mode dunes.
	PriceAmount *uint64
	// PricePayTo is the flex-mode payment address.
	PricePayTo string
	Turbo      bool
	// Unmintable marks dunes etched by a cenotaph or without usable terms.
	Unmintable   bool
	BurnedAmount uint128.Uint128

	EtchTransactionId int64
	DeployerAddressId int64
}

// IsFlex reports whether minted amounts are determined by payment at mint time.
func (e *DuneEntry) IsFlex() bool {
	return e.MintAmount.IsZero() && e.PriceAmount != nil && *e.PriceAmount > 0
}

// IsMintOpen reports whether a mint at (height, txIndex) may proceed. offset
// counts the mint being evaluated against the cap.
func (e *DuneEntry) IsMintOpen(height uint64, txIndex uint32, offset bool) bool {
	if e.Unmintable {
		return false
	}

	// a dune cannot be minted by its own etching transaction
	if height == e.DuneId.BlockHeight && txIndex == e.DuneId.TxIndex {
		return false
	}

	totalMints := e.Mints
	if offset {
		totalMints = totalMints.Add64(1)
	}
	if e.MintCap != nil && totalMints.Cmp(*e.MintCap) > 0 {
		return false
	}

	var start, end uint64 = e.DuneId.BlockHeight, math.MaxUint64
	switch {
	case e.MintHeightStart != nil && e.MintOffsetStart != nil:
		start = max(*e.MintHeightStart, e.DuneId.BlockHeight+*e.MintOffsetStart)
	case e.MintHeightStart != nil:
		start = *e.MintHeightStart
	case e.MintOffsetStart != nil:
		start = e.DuneId.BlockHeight + *e.MintOffsetStart
	}
	switch {
	case e.MintHeightEnd != nil && e.MintOffsetEnd != nil:
		end = min(*e.MintHeightEnd, e.DuneId.BlockHeight+*e.MintOffsetEnd)
	case e.MintHeightEnd != nil:
		end = *e.MintHeightEnd
	case e.MintOffsetEnd != nil:
		end = e.DuneId.BlockHeight + *e.MintOffsetEnd
	}

	return start <= height && height <= end
}

// SatsPaidToPriceAddress sums the satoshis the transaction pays to the dune's
// flex-mode payment address.
func (e *DuneEntry) SatsPaidToPriceAddress(tx *types.Transaction, network common.Network) uint64 {
	if e.PricePayTo == "" {
		return 0
	}
	var paid uint64
	for _, txOut := range tx.TxOut {
		address, err := btcutils.PkScriptToAddress(txOut.PkScript, network)
		if err != nil {
			continue
		}
		if address == e.PricePayTo && txOut.Value > 0 {
			paid += uint64(txOut.Value)
		}
	}
	return paid
}

// IsPriceTermsMet reports whether the transaction satisfies the dune's price
// terms: at least one output must pay the price address. Dunes without price
// terms are always satisfied.
func (e *DuneEntry) IsPriceTermsMet(tx *types.Transaction, network common.Network) bool {
	if e.PriceAmount == nil || *e.PriceAmount == 0 || e.PricePayTo == "" {
		return true
	}
	return e.SatsPaidToPriceAddress(tx, network) > 0
}

// FlexMintAmount returns floor(paid / price) for flex-mode dunes.
func (e *DuneEntry) FlexMintAmount(paidSats uint64) uint128.Uint128 {
	if e.PriceAmount == nil || *e.PriceAmount == 0 {
		return uint128.Zero
	}
	return uint128.From64(paidSats / *e.PriceAmount)
}

// MintedAmount returns premine + mints*amount, the total supply drawn so far
// for fixed-mode dunes.
func (e *DuneEntry) MintedAmount() uint128.Uint128 {
	return e.Premine.Add(e.Mints.Mul(e.MintAmount))
}
