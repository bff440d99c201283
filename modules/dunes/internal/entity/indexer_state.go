package entity

import "time"

// IndexerState records the schema version and network the database was
// indexed with.
type IndexerState struct {
	DBVersion int32
	Network   string
	CreatedAt time.Time
}
