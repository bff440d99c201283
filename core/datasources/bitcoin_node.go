package datasources

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/internal/subscription"
	"github.com/bitapeslabs/nana/pkg/btcclient"
	"github.com/bitapeslabs/nana/pkg/logger"
	"github.com/bitapeslabs/nana/pkg/logger/slogx"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
)

const (
	// GET_BLOCK_CHUNK_SIZE is the number of concurrent getblock fetches in flight.
	GET_BLOCK_CHUNK_SIZE = 8

	// MAX_BLOCK_CACHE_SIZE is the number of blocks dispatched to the consumer per batch.
	// It bounds how far the prefetcher may run ahead of the processor.
	MAX_BLOCK_CACHE_SIZE = 100
)

// Make sure to implement the Datasource and btcclient.Contract interfaces
var (
	_ Datasource[*types.Block] = (*BitcoinNodeDatasource)(nil)
	_ btcclient.Contract       = (*BitcoinNodeDatasource)(nil)
)

// BitcoinNodeDatasource fetches blocks from a Bitcoin Core node.
type BitcoinNodeDatasource struct {
	btcclient *rpcclient.Client
}

func NewBitcoinNode(client *rpcclient.Client) *BitcoinNodeDatasource {
	return &BitcoinNodeDatasource{
		btcclient: client,
	}
}

func (d *BitcoinNodeDatasource) Name() string {
	return "BitcoinNode"
}

// Fetch fetches blocks from the Bitcoin node, blocking until the whole range is read.
//
//   - from: block height to start fetching, if -1, it will start from genesis block
//   - to: block height to stop fetching, if -1, it will fetch until the latest block
func (d *BitcoinNodeDatasource) Fetch(ctx context.Context, from, to int64) ([]*types.Block, error) {
	ch := make(chan []*types.Block)
	sub, err := d.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer sub.Unsubscribe()

	blocks := make([]*types.Block, 0)
	for {
		select {
		case b, ok := <-ch:
			if !ok {
				return blocks, nil
			}
			blocks = append(blocks, b...)
		case <-sub.Done():
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "context done")
			}
			return blocks, nil
		case err := <-sub.Err():
			if err != nil {
				return nil, errors.Wrap(err, "got error while fetch async")
			}
			return blocks, nil
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context done")
		}
	}
}

// FetchAsync fetches blocks from the Bitcoin node asynchronously (non-blocking).
// Blocks are delivered to the channel in strict height order.
func (d *BitcoinNodeDatasource) FetchAsync(ctx context.Context, from, to int64, ch chan<- []*types.Block) (*subscription.ClientSubscription[[]*types.Block], error) {
	from, to, skip, err := d.prepareRange(from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare fetch range")
	}

	sub := subscription.NewSubscription(ch)
	if skip {
		if err := sub.UnsubscribeWithContext(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to unsubscribe")
		}
		return sub.Client(), nil
	}

	// Create parallel stream. Chunk results preserve submission order, so the
	// consumer always receives blocks in height order.
	out := make(chan []*types.Block)
	stream := cstream.NewStream(ctx, GET_BLOCK_CHUNK_SIZE, out)

	// create slice of block heights to fetch
	blockHeights := make([]int64, 0, to-from+1)
	for i := from; i <= to; i++ {
		blockHeights = append(blockHeights, i)
	}

	// Wait for stream to finish and close out channel
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	// Fan-out blocks to subscription channel
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case data, ok := <-out:
				// stream closed
				if !ok {
					return
				}

				// empty blocks
				if len(data) == 0 {
					continue
				}

				// send blocks to subscription channel
				if err := sub.Send(ctx, data); err != nil {
					logger.ErrorContext(ctx, "failed while dispatch block",
						slogx.Error(err),
						slogx.Int64("start", data[0].Header.Height),
						slogx.Int64("end", data[len(data)-1].Header.Height),
					)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Parallel fetch blocks from Bitcoin node until all block heights are
	// fetched or subscription is done.
	go func() {
		defer stream.Close()
		done := sub.Done()
		chunks := lo.Chunk(blockHeights, MAX_BLOCK_CACHE_SIZE)
		for _, chunk := range chunks {
			chunk := chunk
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
				if len(chunk) == 0 {
					continue
				}
				stream.Go(func() []*types.Block {
					blocks, err := d.fetchBlocks(ctx, chunk)
					if err != nil {
						logger.ErrorContext(ctx, "failed to get blocks",
							slogx.Error(err),
							slogx.Int64("from_height", chunk[0]),
							slogx.Int64("to_height", chunk[len(chunk)-1]),
						)
						if err := sub.SendError(ctx, errors.Wrapf(err, "failed to get blocks: from_height: %d, to_height: %d", chunk[0], chunk[len(chunk)-1])); err != nil {
							logger.ErrorContext(ctx, "failed to send error", slogx.Error(err))
						}
						return nil
					}
					return blocks
				})
			}
		}
	}()

	return sub.Client(), nil
}

func (d *BitcoinNodeDatasource) fetchBlocks(ctx context.Context, heights []int64) ([]*types.Block, error) {
	blocks := make([]*types.Block, 0, len(heights))
	for _, height := range heights {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "context done")
		}
		hash, err := d.btcclient.GetBlockHash(height)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get block hash, height: %d", height)
		}
		msgBlock, err := d.btcclient.GetBlock(hash)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get block, hash: %s", hash)
		}
		blocks = append(blocks, types.ParseMsgBlock(msgBlock, height))
	}
	return blocks, nil
}

func (d *BitcoinNodeDatasource) prepareRange(fromHeight, toHeight int64) (start, end int64, skip bool, err error) {
	start = fromHeight
	end = toHeight

	// get current bitcoin block height
	latestBlockHeight, err := d.btcclient.GetBlockCount()
	if err != nil {
		return -1, -1, false, errors.Wrap(err, "failed to get block count")
	}

	// set start to genesis block height
	if start < 0 {
		start = 0
	}

	// set end to current bitcoin block height if
	// - end is -1
	// - end is greater than current bitcoin block height
	if end < 0 || end > latestBlockHeight {
		end = latestBlockHeight
	}

	// if start is greater than end, skip this round
	if start > end {
		return -1, -1, true, nil
	}

	return start, end, false, nil
}

// GetBlockHeader returns the block header at the specified height.
func (d *BitcoinNodeDatasource) GetBlockHeader(ctx context.Context, height int64) (types.BlockHeader, error) {
	hash, err := d.btcclient.GetBlockHash(height)
	if err != nil {
		return types.BlockHeader{}, errors.Wrapf(err, "failed to get block hash, height: %d", height)
	}
	header, err := d.btcclient.GetBlockHeader(hash)
	if err != nil {
		return types.BlockHeader{}, errors.Wrapf(err, "failed to get block header, hash: %s", hash)
	}
	return types.BlockHeader{
		Hash:       header.BlockHash(),
		Height:     height,
		Version:    header.Version,
		PrevBlock:  header.PrevBlock,
		MerkleRoot: header.MerkleRoot,
		Timestamp:  header.Timestamp,
		Bits:       header.Bits,
		Nonce:      header.Nonce,
	}, nil
}

// GetRawTransactionAndHeightByTxHash returns the raw transaction and the height of
// the block containing it. Height is -1 for unconfirmed transactions.
func (d *BitcoinNodeDatasource) GetRawTransactionAndHeightByTxHash(ctx context.Context, txHash chainhash.Hash) (*wire.MsgTx, int64, error) {
	rawTx, err := d.btcclient.GetRawTransactionVerbose(&txHash)
	if err != nil {
		return nil, -1, errors.Wrapf(err, "failed to get raw transaction, hash: %s", txHash)
	}
	rawBytes, err := hex.DecodeString(rawTx.Hex)
	if err != nil {
		return nil, -1, errors.Wrap(err, "failed to decode raw transaction hex")
	}
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(rawBytes)); err != nil {
		return nil, -1, errors.Wrap(err, "failed to deserialize raw transaction")
	}

	if rawTx.BlockHash == "" {
		return &msgTx, -1, nil
	}
	blockHash, err := chainhash.NewHashFromStr(rawTx.BlockHash)
	if err != nil {
		return nil, -1, errors.Wrap(err, "failed to parse block hash")
	}
	blockHeader, err := d.btcclient.GetBlockHeaderVerbose(blockHash)
	if err != nil {
		return nil, -1, errors.Wrapf(err, "failed to get block header, hash: %s", blockHash)
	}
	return &msgTx, int64(blockHeader.Height), nil
}
