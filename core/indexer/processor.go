package indexer

import (
	"context"

	"github.com/bitapeslabs/nana/core/types"
)

// IndexerWorker is a long-running worker that syncs data from a datasource.
type IndexerWorker interface {
	Run(ctx context.Context) error
	ShutdownWithContext(ctx context.Context) error
}

// Input is a unit of work fetched from a datasource.
type Input interface {
	BlockHeader() types.BlockHeader
}

// Processor processes inputs and owns the indexed state.
type Processor[T Input] interface {
	Name() string

	// Process processes the input data and indexes it.
	Process(ctx context.Context, inputs []T) error

	// CurrentBlock returns the latest indexed block header.
	CurrentBlock(ctx context.Context) (types.BlockHeader, error)

	// GetIndexedBlock returns the indexed block header at the specified height.
	GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error)

	// Shutdown cleans up the processor's resources.
	Shutdown(ctx context.Context) error
}
