package dunes

import (
	"github.com/Cleverse/go-utilities/utils"
	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

const (
	Version   = "v0.1.0"
	DBVersion = 1
)

// startingBlockHeader is the block before the first indexed block per network.
var startingBlockHeader = map[common.Network]types.BlockHeader{
	common.NetworkMainnet: {
		Height: 839_999,
		Hash:   *utils.Must(chainhash.NewHashFromStr("0000000000000000000172014ba58d66455762add0512355ad651207918494ab")),
	},
	common.NetworkTestnet: {
		Height: 2_583_200,
		Hash:   *utils.Must(chainhash.NewHashFromStr("000000000006c5f0dfcd9e0e81f27f97a87aef82087ffe69cd3c390325bb6541")),
	},
}

// genesisDuneName and friends describe the protocol-defined genesis dune,
// synthesized at the GENESIS_BLOCK coinbase with id "1:0".
const (
	genesisDuneName   dunes.DuneName = "DUNES"
	genesisDuneSymbol rune           = '\U0001F3DC'
)

func genesisEtching() *dunes.Etching {
	return &dunes.Etching{
		Dune:         lo.ToPtr(genesisDuneName),
		Divisibility: 0,
		Premine:      uint128.Zero,
		Symbol:       lo.ToPtr(genesisDuneSymbol),
		Terms: &dunes.Terms{
			Amount:      uint128.From64(1),
			Cap:         &uint128.Max,
			HeightStart: lo.ToPtr(dunes.GENESIS_BLOCK),
			HeightEnd:   lo.ToPtr(dunes.GENESIS_BLOCK + common.HalvingInterval),
		},
		Turbo: true,
	}
}
