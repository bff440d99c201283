package entity

// Sequences carries the next free database id per entity. The block cache
// hands out tentative ids from these and the flush persists them as-is; the
// single-writer model makes this race-free.
type Sequences struct {
	Address     int64
	Transaction int64
	Utxo        int64
	Dune        int64
	Balance     int64
	Event       int64
}
