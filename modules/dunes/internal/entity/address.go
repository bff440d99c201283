package entity

// Address is an indexed Bitcoin address. Rows are created on first sight and
// never deleted.
type Address struct {
	Id      int64
	Address string
}

// Process-reserved address ids.
const (
	// AddressIdCoinbase is the sentinel for coinbase/genesis provenance.
	AddressIdCoinbase int64 = 1
	// AddressIdOpReturn is the burn sink for OP_RETURN outputs.
	AddressIdOpReturn int64 = 2
	// AddressIdUnknown marks unindexed or unparsable addresses.
	AddressIdUnknown int64 = 3
)

// ReservedAddresses are seeded on first run and expected to exist afterwards.
var ReservedAddresses = []*Address{
	{Id: AddressIdCoinbase, Address: "COINBASE"},
	{Id: AddressIdOpReturn, Address: "OP_RETURN"},
	{Id: AddressIdUnknown, Address: "UNKNOWN"},
}
