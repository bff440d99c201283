package entity

import "github.com/gaze-network/uint128"

// Balance is the per-address aggregate of one dune across all unspent utxos.
// The row is kept when the balance transits through zero.
type Balance struct {
	Id          int64
	AddressId   int64
	DuneEntryId int64
	Balance     uint128.Uint128
}
