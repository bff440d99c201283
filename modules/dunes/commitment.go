package dunes

import (
	"bytes"
	"context"

	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
)

// txCommitsToDune reports whether any taproot input of the transaction reveals
// the name's commitment in its tapscript with enough confirmations. RPC
// failures are fatal: the block is aborted rather than an etching silently
// dropped.
func (p *Processor) txCommitsToDune(ctx context.Context, tx *types.Transaction, name dunes.DuneName) (bool, error) {
	commitment, ok := name.Commitment()
	if !ok {
		return false, nil
	}
	for _, txIn := range tx.TxIn {
		if txIn.PreviousOutTxHash == (chainhash.Hash{}) {
			continue
		}
		tapscript, ok := extractTapscript(txIn.Witness)
		if !ok {
			continue
		}
		for tapscript.Next() {
			if tapscript.Err() != nil {
				break
			}
			data := tapscript.Data()
			// the tapscript must push the commitment of the name
			if !bytes.Equal(data, commitment) {
				continue
			}

			// the revealed script alone cannot prove the input was P2TR;
			// the previous output's script must be checked
			prevTx, prevHeight, err := p.bitcoinClient.GetRawTransactionAndHeightByTxHash(ctx, txIn.PreviousOutTxHash)
			if err != nil {
				return false, errors.Wrap(err, "failed to get previous transaction for commitment check")
			}
			if int(txIn.PreviousOutIndex) >= len(prevTx.TxOut) {
				continue
			}
			pkScript := prevTx.TxOut[txIn.PreviousOutIndex].PkScript
			if !txscript.IsPayToTaproot(pkScript) {
				continue
			}

			// the commitment must be mature
			if prevHeight < 0 {
				continue
			}
			confirmations := tx.BlockHeight - prevHeight + 1
			if confirmations < dunes.DUNE_COMMIT_CONFIRMATIONS {
				continue
			}

			return true, nil
		}
	}
	return false, nil
}

// extractTapscript locates the tapscript element of a taproot witness stack:
// the second-to-last element, or third-to-last when an annex is present.
func extractTapscript(witness [][]byte) (txscript.ScriptTokenizer, bool) {
	offset := 2
	if len(witness) >= 2 && len(witness[len(witness)-1]) > 0 && witness[len(witness)-1][0] == dunes.TAPROOT_ANNEX_PREFIX {
		offset = 3
	}
	if len(witness) < offset {
		return txscript.ScriptTokenizer{}, false
	}
	script := witness[len(witness)-offset]
	return txscript.MakeScriptTokenizer(0, script), true
}
