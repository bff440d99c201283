package dunes

import (
	"context"
	"strings"

	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/core/datasources"
	"github.com/bitapeslabs/nana/core/indexer"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/internal/config"
	"github.com/bitapeslabs/nana/internal/postgres"
	dunesapi "github.com/bitapeslabs/nana/modules/dunes/api"
	dunesdatagateway "github.com/bitapeslabs/nana/modules/dunes/datagateway"
	dunespostgres "github.com/bitapeslabs/nana/modules/dunes/repository/postgres"
	dunesusecase "github.com/bitapeslabs/nana/modules/dunes/usecase"
	"github.com/bitapeslabs/nana/pkg/btcclient"
	"github.com/bitapeslabs/nana/pkg/logger"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	var (
		dunesDg       dunesdatagateway.DunesDataGateway
		indexerInfoDg dunesdatagateway.IndexerInfoDataGateway
	)
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(conf.Modules.Dunes.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Modules.Dunes.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for indexer")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		dunesRepo := dunespostgres.NewRepository(pg)
		dunesDg = dunesRepo
		indexerInfoDg = dunesRepo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for indexer is not supported", conf.Modules.Dunes.Database)
	}

	var bitcoinDatasource datasources.Datasource[*types.Block]
	var bitcoinClient btcclient.Contract
	switch strings.ToLower(conf.Modules.Dunes.Datasource) {
	case "bitcoin-node":
		btcClient := do.MustInvoke[*rpcclient.Client](injector)
		bitcoinNodeDatasource := datasources.NewBitcoinNode(btcClient)
		bitcoinDatasource = bitcoinNodeDatasource
		bitcoinClient = bitcoinNodeDatasource
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q datasource is not supported", conf.Modules.Dunes.Datasource)
	}

	processor := NewProcessor(dunesDg, indexerInfoDg, bitcoinClient, conf.Network, cleanupFuncs)
	if err := processor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.Dunes.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			dunesUsecase := dunesusecase.New(dunesDg)
			dunesHTTPHandler := dunesapi.NewHTTPHandler(conf.Network, dunesUsecase)
			if err := dunesHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Dunes API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	indexerWorker := indexer.New(processor, bitcoinDatasource)
	return indexerWorker, nil
}
