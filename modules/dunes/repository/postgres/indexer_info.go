package postgres

import (
	"context"
	"time"

	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ datagateway.IndexerInfoDataGateway = (*Repository)(nil)

func (r *Repository) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	var (
		dbVersion int32
		network   string
		createdAt pgtype.Timestamptz
	)
	err := r.querier().QueryRow(ctx, `SELECT db_version, network, created_at FROM dunes_indexer_states ORDER BY id DESC LIMIT 1`).Scan(&dbVersion, &network, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.IndexerState{}, errors.WithStack(errs.NotFound)
		}
		return entity.IndexerState{}, errors.Wrap(err, "error during query")
	}
	var created time.Time
	if createdAt.Valid {
		created = createdAt.Time.UTC()
	}
	return entity.IndexerState{
		DBVersion: dbVersion,
		Network:   network,
		CreatedAt: created,
	}, nil
}

func (r *Repository) SetIndexerState(ctx context.Context, state entity.IndexerState) error {
	_, err := r.querier().Exec(ctx, `INSERT INTO dunes_indexer_states (db_version, network) VALUES ($1, $2)`, state.DBVersion, state.Network)
	return errors.Wrap(err, "error during exec")
}
