package entity

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// IndexedBlock records a block committed by the indexer.
type IndexedBlock struct {
	Height   int64
	Hash     chainhash.Hash
	PrevHash chainhash.Hash
}
