package datagateway

import (
	"context"

	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
)

type IndexerInfoDataGateway interface {
	// GetLatestIndexerState returns the latest indexer state. Returns
	// errs.NotFound if the state was never set.
	GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error)
	SetIndexerState(ctx context.Context, state entity.IndexerState) error
}
