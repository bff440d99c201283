package btcclient

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Contract is the minimal Bitcoin node surface needed outside of block ingestion.
// It is used by the etching commitment check to inspect previous outputs and
// their confirmation depth.
type Contract interface {
	// GetRawTransactionAndHeightByTxHash returns the raw transaction and the
	// height of the block containing it. Height is -1 if unconfirmed.
	GetRawTransactionAndHeightByTxHash(ctx context.Context, txHash chainhash.Hash) (*wire.MsgTx, int64, error)
}
