package entity

// Utxo is an indexed transaction output carrying dune balances. Natural key:
// (TransactionId, Vout). Mutated only by marking spent.
type Utxo struct {
	Id            int64
	TransactionId int64
	Vout          uint32
	AddressId     int64
	ValueSats     uint64
	BlockCreated  uint64

	BlockSpent         *uint64
	TransactionSpentId *int64
}

// IsSpent reports whether the utxo has been consumed.
func (u *Utxo) IsSpent() bool {
	return u.BlockSpent != nil
}
