package entity

import "github.com/gaze-network/uint128"

type EventType int16

const (
	EventTypeEtch     EventType = 0
	EventTypeMint     EventType = 1
	EventTypeTransfer EventType = 2
	EventTypeBurn     EventType = 3
)

func (t EventType) String() string {
	switch t {
	case EventTypeEtch:
		return "ETCH"
	case EventTypeMint:
		return "MINT"
	case EventTypeTransfer:
		return "TRANSFER"
	case EventTypeBurn:
		return "BURN"
	}
	return "UNKNOWN"
}

// Event is an append-only audit record of a dune movement.
type Event struct {
	Id            int64
	Type          EventType
	BlockHeight   uint64
	TransactionId int64
	DuneEntryId   int64
	Amount        uint128.Uint128
	FromAddressId int64
	ToAddressId   int64
}
