package entity

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Transaction is an indexed Bitcoin transaction. Created on the first
// transaction that yields either an input UTXO lookup or a dunestone action.
type Transaction struct {
	Id   int64
	Hash chainhash.Hash
}
