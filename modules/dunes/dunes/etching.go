package dunes

import (
	"github.com/bitapeslabs/nana/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

// Price is the flex-mode pricing of a dune: minted units are determined at
// mint time by satoshis paid to PayTo divided by Amount.
type Price struct {
	// Amount is the price in satoshis of one minted unit.
	Amount uint64
	// PayTo is the address the mint payment must be sent to.
	PayTo string
}

type Terms struct {
	// Amount of the dune minted per mint transaction. Zero with Price set means flex mode.
	Amount uint128.Uint128
	// Cap is the number of allowed mints.
	Cap *uint128.Uint128
	// HeightStart is the absolute block height at which minting opens. If both HeightStart and OffsetStart are set, the higher resulting height wins.
	HeightStart *uint64
	// HeightEnd is the absolute block height at which minting closes. If both HeightEnd and OffsetEnd are set, the lower resulting height wins.
	HeightEnd *uint64
	// OffsetStart is the offset from the etching block at which minting opens.
	OffsetStart *uint64
	// OffsetEnd is the offset from the etching block at which minting closes.
	OffsetEnd *uint64
	// Price enables flex mode.
	Price *Price
}

// IsFlex reports whether the terms describe a flex-mode dune.
func (t Terms) IsFlex() bool {
	return t.Amount.IsZero() && t.Price != nil && t.Price.Amount > 0
}

type Etching struct {
	// Dune is the requested name. Nil means a reserved name is allocated.
	Dune *DuneName
	// Divisibility is the number of decimals when displaying the dune.
	Divisibility uint8
	// Premine is the amount credited to the etcher.
	Premine uint128.Uint128
	// Symbol is a single Unicode codepoint representing the dune.
	Symbol *rune
	// Terms are the minting terms. If nil, the dune is not mintable.
	Terms *Terms
	Turbo bool
}

// ValidateMode checks the etching's mint mode: a zero per-mint amount is only
// allowed in flex mode, and flex mode does not admit a mint cap.
func (e Etching) ValidateMode() error {
	if e.Terms == nil {
		return nil
	}
	if e.Terms.IsFlex() {
		if e.Terms.Cap != nil {
			return errors.Wrap(errs.InvalidArgument, "flex-mode etching cannot set a mint cap")
		}
		return nil
	}
	if e.Terms.Amount.IsZero() && e.Terms.Price == nil {
		return errors.Wrap(errs.InvalidArgument, "etching terms amount is zero without price terms")
	}
	return nil
}

// Supply returns premine + cap*amount, the maximum fixed-mode supply.
func (e Etching) Supply() (uint128.Uint128, error) {
	if e.Terms == nil {
		return e.Premine, nil
	}
	cap := lo.FromPtr(e.Terms.Cap)
	result, overflow := e.Terms.Amount.MulOverflow(cap)
	if overflow {
		return uint128.Uint128{}, errors.WithStack(errs.OverflowUint128)
	}
	result, overflow = result.AddOverflow(e.Premine)
	if overflow {
		return uint128.Uint128{}, errors.WithStack(errs.OverflowUint128)
	}
	return result, nil
}
