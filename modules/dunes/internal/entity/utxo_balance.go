package entity

import "github.com/gaze-network/uint128"

// UtxoBalance is the amount of one dune held by one utxo. Rows always carry a
// non-zero balance and are immutable after creation.
type UtxoBalance struct {
	UtxoId      int64
	DuneEntryId int64
	Balance     uint128.Uint128
}
