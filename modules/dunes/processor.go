package dunes

import (
	"context"

	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/core/indexer"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/bitapeslabs/nana/pkg/btcclient"
	"github.com/cockroachdb/errors"
)

var _ indexer.Processor[*types.Block] = (*Processor)(nil)

type Processor struct {
	dunesDg       datagateway.DunesDataGateway
	indexerInfoDg datagateway.IndexerInfoDataGateway
	bitcoinClient btcclient.Contract
	network       common.Network

	cleanupFuncs []func(context.Context) error
}

func NewProcessor(dunesDg datagateway.DunesDataGateway, indexerInfoDg datagateway.IndexerInfoDataGateway, bitcoinClient btcclient.Contract, network common.Network, cleanupFuncs []func(context.Context) error) *Processor {
	return &Processor{
		dunesDg:       dunesDg,
		indexerInfoDg: indexerInfoDg,
		bitcoinClient: bitcoinClient,
		network:       network,
		cleanupFuncs:  cleanupFuncs,
	}
}

func (p *Processor) Name() string {
	return "Dunes"
}

// VerifyStates ensures the database was indexed with this version and network
// and seeds the process-reserved address rows.
func (p *Processor) VerifyStates(ctx context.Context) error {
	if err := p.ensureValidState(ctx); err != nil {
		return errors.Wrap(err, "error during ensureValidState")
	}
	if err := p.ensureReservedAddresses(ctx); err != nil {
		return errors.Wrap(err, "error during ensureReservedAddresses")
	}
	return nil
}

func (p *Processor) ensureValidState(ctx context.Context) error {
	indexerState, err := p.indexerInfoDg.GetLatestIndexerState(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest indexer state")
	}
	// if not found, set indexer state
	if errors.Is(err, errs.NotFound) {
		if err := p.indexerInfoDg.SetIndexerState(ctx, entity.IndexerState{
			DBVersion: DBVersion,
			Network:   p.network.String(),
		}); err != nil {
			return errors.Wrap(err, "failed to set indexer state")
		}
		return nil
	}
	if indexerState.DBVersion != DBVersion {
		return errors.Wrapf(errs.ConflictSetting, "db version mismatch: current version is %d. Please migrate to version %d", indexerState.DBVersion, DBVersion)
	}
	if indexerState.Network != p.network.String() {
		return errors.Wrapf(errs.ConflictSetting, "network mismatch: latest indexed network is %q, configured network is %q. If you want to change the network, please reset the database", indexerState.Network, p.network)
	}
	return nil
}

func (p *Processor) ensureReservedAddresses(ctx context.Context) error {
	existing, err := p.dunesDg.GetAddressesByIds(ctx, []int64{entity.AddressIdCoinbase, entity.AddressIdOpReturn, entity.AddressIdUnknown})
	if err != nil {
		return errors.Wrap(err, "failed to get reserved addresses")
	}
	if len(existing) == len(entity.ReservedAddresses) {
		return nil
	}
	found := make(map[int64]struct{}, len(existing))
	for _, address := range existing {
		found[address.Id] = struct{}{}
	}
	missing := make([]*entity.Address, 0)
	for _, address := range entity.ReservedAddresses {
		if _, ok := found[address.Id]; !ok {
			missing = append(missing, address)
		}
	}
	if err := p.dunesDg.CreateAddresses(ctx, missing); err != nil {
		return errors.Wrap(err, "failed to create reserved addresses")
	}
	return nil
}

func (p *Processor) CurrentBlock(ctx context.Context) (types.BlockHeader, error) {
	blockHeader, err := p.dunesDg.GetLatestBlock(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return startingBlockHeader[p.network], nil
		}
		return types.BlockHeader{}, errors.Wrap(err, "failed to get latest block")
	}
	return blockHeader, nil
}

// warning: GetIndexedBlock returns a types.BlockHeader with only Height, Hash
// and PrevBlock fields populated, which is all the indexer loop needs.
func (p *Processor) GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error) {
	block, err := p.dunesDg.GetIndexedBlockByHeight(ctx, height)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "failed to get indexed block")
	}
	return types.BlockHeader{
		Height:    block.Height,
		Hash:      block.Hash,
		PrevBlock: block.PrevHash,
	}, nil
}

func (p *Processor) Shutdown(ctx context.Context) error {
	for _, cleanup := range p.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.Wrap(err, "cleanup failed")
		}
	}
	return nil
}
