package dunes

import (
	"context"
	"sort"
	"time"

	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/blockcache"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/bitapeslabs/nana/pkg/btcutils"
	"github.com/bitapeslabs/nana/pkg/logger"
	"github.com/bitapeslabs/nana/pkg/logger/slogx"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

func (p *Processor) Process(ctx context.Context, blocks []*types.Block) error {
	for _, block := range blocks {
		if err := p.processBlock(ctx, block); err != nil {
			return errors.Wrapf(err, "failed to process block, height: %d", block.Header.Height)
		}
	}
	return nil
}

// processBlock runs one block through the transition engine against a fresh
// block cache and flushes the staged writes atomically. On any error the cache
// is discarded and the store sees no partial writes.
func (p *Processor) processBlock(ctx context.Context, block *types.Block) error {
	startAt := time.Now()

	cache, err := blockcache.Prefetch(ctx, p.dunesDg, p.network, block)
	if err != nil {
		return errors.Wrap(err, "failed to prefetch block")
	}

	for _, tx := range block.Transactions {
		if err := p.processTx(ctx, cache, tx, block.Header); err != nil {
			return errors.Wrapf(err, "failed to process tx, hash: %s", tx.TxHash)
		}
	}

	set := cache.FlushSet()

	if err := p.dunesDg.Begin(ctx); err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := p.dunesDg.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()
	if err := blockcache.Flush(ctx, p.dunesDg, set); err != nil {
		return errors.Wrap(err, "failed to flush block cache")
	}
	if err := p.dunesDg.CreateIndexedBlock(ctx, &entity.IndexedBlock{
		Height:   block.Header.Height,
		Hash:     block.Header.Hash,
		PrevHash: block.Header.PrevBlock,
	}); err != nil {
		return errors.Wrap(err, "failed to create indexed block")
	}
	if err := p.dunesDg.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.DebugContext(ctx, "Processed block",
		slogx.Int64("height", block.Header.Height),
		slogx.Int("txs", len(block.Transactions)),
		slogx.Duration("duration", time.Since(startAt)),
	)
	return nil
}

// pendingUtxo is a transaction output being assembled by the engine. Only
// non-OP_RETURN outputs holding a non-zero dune balance are persisted.
type pendingUtxo struct {
	vout       uint32
	addressId  int64
	valueSats  uint64
	isOpReturn bool
	balances   map[int64]uint128.Uint128
}

func (u *pendingUtxo) hasBalance() bool {
	for _, balance := range u.balances {
		if !balance.IsZero() {
			return true
		}
	}
	return false
}

func (p *Processor) processTx(ctx context.Context, cache *blockcache.Cache, tx *types.Transaction, header types.BlockHeader) error {
	height := uint64(header.Height)
	dunestone := dunes.DecipherDunestone(tx)
	isGenesisCoinbase := height == dunes.GENESIS_BLOCK && tx.IsCoinbase()
	cenotaph := dunestone != nil && dunestone.Cenotaph

	// gather inputs
	inputUtxos := make([]*entity.Utxo, 0, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		if txIn.PreviousOutTxHash == (chainhash.Hash{}) {
			continue
		}
		prevTx := cache.GetTransactionByHash(txIn.PreviousOutTxHash)
		if !prevTx.Found() {
			continue
		}
		utxo := cache.GetUtxo(prevTx.Value().Id, txIn.PreviousOutIndex)
		if !utxo.Found() || utxo.Value().IsSpent() {
			continue
		}
		inputUtxos = append(inputUtxos, utxo.Value())
	}

	// a transaction with no indexed inputs and no dunestone actions cannot
	// change state
	hasActions := dunestone != nil && dunestone.HasActions()
	if len(inputUtxos) == 0 && !hasActions && !isGenesisCoinbase {
		return nil
	}

	// build the unallocated bag from the input balances
	unallocated := make(map[int64]uint128.Uint128)
	for _, utxo := range inputUtxos {
		for _, balance := range cache.GetUtxoBalances(utxo.Id) {
			unallocated[balance.DuneEntryId] = unallocated[balance.DuneEntryId].Add(balance.Balance)
		}
	}

	senderId := entity.AddressIdUnknown
	if isGenesisCoinbase {
		senderId = entity.AddressIdCoinbase
	} else if len(inputUtxos) > 0 {
		senderId = inputUtxos[0].AddressId
	}

	txRow := cache.GetOrCreateTransaction(tx.TxHash)

	// pending outputs
	pending := make([]*pendingUtxo, 0, len(tx.TxOut))
	for i, txOut := range tx.TxOut {
		pu := &pendingUtxo{
			vout:      uint32(i),
			valueSats: uint64(txOut.Value),
			balances:  make(map[int64]uint128.Uint128),
		}
		if txOut.IsOpReturn() {
			pu.isOpReturn = true
			pu.addressId = entity.AddressIdOpReturn
		} else {
			address, err := btcutils.PkScriptToAddress(txOut.PkScript, p.network)
			if err != nil {
				pu.addressId = entity.AddressIdUnknown
			} else {
				pu.addressId = cache.GetOrCreateAddress(address).Id
			}
		}
		pending = append(pending, pu)
	}

	// etching
	var etchedEntry *dunes.DuneEntry
	if isGenesisCoinbase || (dunestone != nil && dunestone.Etching != nil) {
		etching := genesisEtching()
		if !isGenesisCoinbase {
			etching = dunestone.Etching
		}
		entry, err := p.processEtching(ctx, cache, tx, height, etching, cenotaph, senderId, txRow.Id, isGenesisCoinbase)
		if err != nil {
			return errors.Wrap(err, "error during etching")
		}
		etchedEntry = entry
		if etchedEntry != nil && !cenotaph && !etchedEntry.Premine.IsZero() {
			unallocated[etchedEntry.Id] = unallocated[etchedEntry.Id].Add(etchedEntry.Premine)
		}
	}

	// mint
	if dunestone != nil && dunestone.Mint != nil {
		if entry, ok := cache.GetDuneEntryByDuneId(*dunestone.Mint).Get(); ok {
			p.processMint(cache, entry, tx, height, cenotaph, senderId, txRow.Id, unallocated)
		}
	}

	burned := make(map[int64]uint128.Uint128)

	allocate := func(pu *pendingUtxo, duneEntryId int64, amount uint128.Uint128) {
		have, ok := unallocated[duneEntryId]
		if !ok {
			return
		}
		// an amount of zero or above the remaining bag allocates the remainder
		if amount.IsZero() || have.Cmp(amount) < 0 {
			amount = have
		}
		if amount.IsZero() {
			return
		}
		unallocated[duneEntryId] = have.Sub(amount)
		pu.balances[duneEntryId] = pu.balances[duneEntryId].Add(amount)
	}

	if cenotaph {
		// all input and minted dunes of a cenotaph are burned
		for duneEntryId, amount := range unallocated {
			if amount.IsZero() {
				continue
			}
			burned[duneEntryId] = burned[duneEntryId].Add(amount)
		}
		unallocated = make(map[int64]uint128.Uint128)
	} else {
		if dunestone != nil {
			for _, edict := range dunestone.Edicts {
				duneEntryId, ok := p.resolveEdictDune(cache, edict, etchedEntry)
				if !ok {
					continue
				}
				if _, ok := unallocated[duneEntryId]; !ok {
					continue
				}

				if edict.Output == len(tx.TxOut) {
					// spread across all non-OP_RETURN outputs
					destinations := lo.Filter(pending, func(pu *pendingUtxo, _ int) bool { return !pu.isOpReturn })
					if len(destinations) == 0 {
						continue
					}
					if edict.Amount.IsZero() {
						// divide the whole bag evenly; the first remainder outputs get one extra unit
						amount, remainder := unallocated[duneEntryId].QuoRem64(uint64(len(destinations)))
						for i, dest := range destinations {
							allocate(dest, duneEntryId, lo.Ternary(uint64(i) < remainder, amount.Add64(1), amount))
						}
					} else {
						// allocate the amount to every output; allocate caps at the remaining bag
						for _, dest := range destinations {
							allocate(dest, duneEntryId, edict.Amount)
						}
					}
				} else {
					// routing to an OP_RETURN output is permitted and burns at finalization
					allocate(pending[edict.Output], duneEntryId, edict.Amount)
				}
			}
		}

		// pointer sweep: move the residual bag to a single output
		if err := p.sweepResidual(dunestone, pending, unallocated, allocate); err != nil {
			return errors.Wrap(err, "error during pointer sweep")
		}
	}

	// balances routed to OP_RETURN outputs are burned
	for _, pu := range pending {
		if !pu.isOpReturn || !pu.hasBalance() {
			continue
		}
		for duneEntryId, amount := range pu.balances {
			if amount.IsZero() {
				continue
			}
			burned[duneEntryId] = burned[duneEntryId].Add(amount)
		}
		pu.balances = make(map[int64]uint128.Uint128)
	}

	// transfer events per receiving output, then burn events
	for _, pu := range pending {
		if pu.isOpReturn || !pu.hasBalance() {
			continue
		}
		for _, duneEntryId := range sortedDuneIds(pu.balances) {
			cache.AppendEvent(&entity.Event{
				Type:          entity.EventTypeTransfer,
				BlockHeight:   height,
				TransactionId: txRow.Id,
				DuneEntryId:   duneEntryId,
				Amount:        pu.balances[duneEntryId],
				FromAddressId: senderId,
				ToAddressId:   pu.addressId,
			})
		}
	}
	for _, duneEntryId := range sortedDuneIds(burned) {
		amount := burned[duneEntryId]
		entry, ok := cache.GetDuneEntry(duneEntryId).Get()
		if !ok {
			return errors.Wrapf(errs.InternalError, "burned dune entry %d not in cache", duneEntryId)
		}
		entry.BurnedAmount = entry.BurnedAmount.Add(amount)
		cache.MarkDuneEntryDirty(entry)
		cache.AppendEvent(&entity.Event{
			Type:          entity.EventTypeBurn,
			BlockHeight:   height,
			TransactionId: txRow.Id,
			DuneEntryId:   duneEntryId,
			Amount:        amount,
			FromAddressId: senderId,
			ToAddressId:   entity.AddressIdOpReturn,
		})
	}

	// consume inputs
	for _, utxo := range inputUtxos {
		cache.SpendUtxo(utxo, height, txRow.Id)
		for _, balance := range cache.GetUtxoBalances(utxo.Id) {
			if err := cache.SubFromBalance(utxo.AddressId, balance.DuneEntryId, balance.Balance); err != nil {
				return errors.Wrap(err, "failed to debit consumed utxo balance")
			}
		}
	}

	// persist pending outputs that hold balances
	for _, pu := range pending {
		if pu.isOpReturn || !pu.hasBalance() {
			continue
		}
		cache.CreateUtxo(&entity.Utxo{
			TransactionId: txRow.Id,
			Vout:          pu.vout,
			AddressId:     pu.addressId,
			ValueSats:     pu.valueSats,
			BlockCreated:  height,
		}, pu.balances)
		for duneEntryId, amount := range pu.balances {
			if amount.IsZero() {
				continue
			}
			cache.AddToBalance(pu.addressId, duneEntryId, amount)
		}
	}

	return nil
}

// resolveEdictDune resolves an edict's dune id, rewriting the self-reference
// form "0:0" to the dune etched by this transaction.
func (p *Processor) resolveEdictDune(cache *blockcache.Cache, edict dunes.Edict, etchedEntry *dunes.DuneEntry) (int64, bool) {
	if edict.Id.IsZero() {
		if etchedEntry == nil {
			return 0, false
		}
		return etchedEntry.Id, true
	}
	entry, ok := cache.GetDuneEntryByDuneId(edict.Id).Get()
	if !ok {
		return 0, false
	}
	return entry.Id, true
}

// sweepResidual moves the remaining unallocated bag to the pointer output if
// set, else the first non-OP_RETURN output, else any OP_RETURN output. A
// transaction with no outputs at all cannot exist under Bitcoin rules; hitting
// one with a residual bag aborts the block for operator review.
func (p *Processor) sweepResidual(dunestone *dunes.Dunestone, pending []*pendingUtxo, unallocated map[int64]uint128.Uint128, allocate func(*pendingUtxo, int64, uint128.Uint128)) error {
	residual := false
	for _, amount := range unallocated {
		if !amount.IsZero() {
			residual = true
			break
		}
	}
	if !residual {
		return nil
	}

	var target *pendingUtxo
	if dunestone != nil && dunestone.Pointer != nil && int(*dunestone.Pointer) < len(pending) {
		target = pending[*dunestone.Pointer]
	}
	if target == nil {
		for _, pu := range pending {
			if !pu.isOpReturn {
				target = pu
				break
			}
		}
	}
	if target == nil {
		for _, pu := range pending {
			if pu.isOpReturn {
				target = pu
				break
			}
		}
	}
	if target == nil {
		return errors.Wrap(errs.InternalError, "no output available for pointer sweep")
	}

	for _, duneEntryId := range sortedDuneIds(unallocated) {
		allocate(target, duneEntryId, unallocated[duneEntryId])
	}
	return nil
}

func (p *Processor) processEtching(ctx context.Context, cache *blockcache.Cache, tx *types.Transaction, height uint64, etching *dunes.Etching, cenotaph bool, senderId int64, transactionId int64, isGenesis bool) (*dunes.DuneEntry, error) {
	duneId := dunes.NewDuneId(height, tx.Index)
	if isGenesis {
		duneId = dunes.GenesisDuneId
	}

	// the etch location must be unclaimed
	if cache.GetDuneEntryByDuneId(duneId).Found() {
		return nil, nil
	}

	var name dunes.DuneName
	if etching.Dune != nil {
		name = *etching.Dune
		if cache.GetDuneEntryByName(name).Found() {
			return nil, nil
		}
		if !isGenesis {
			if dunes.MinimumNameLength(height) > len(name) {
				return nil, nil
			}
			if name.IsReserved() {
				return nil, nil
			}
		}
	} else {
		name = dunes.ReservedDuneName(height, tx.Index)
		if cache.GetDuneEntryByName(name).Found() {
			return nil, nil
		}
	}

	if err := etching.ValidateMode(); err != nil {
		return nil, nil
	}

	// a supplied name requires a matured taproot commitment
	if etching.Dune != nil && !isGenesis {
		commits, err := p.txCommitsToDune(ctx, tx, name)
		if err != nil {
			return nil, errors.Wrap(err, "error during commitment check")
		}
		if !commits {
			return nil, nil
		}
	}

	deployerId := senderId
	if isGenesis {
		deployerId = entity.AddressIdCoinbase
	}
	entry := &dunes.DuneEntry{
		DuneId:            duneId,
		Name:              name,
		Divisibility:      etching.Divisibility,
		Turbo:             etching.Turbo,
		Unmintable:        cenotaph || etching.Terms == nil,
		EtchTransactionId: transactionId,
		DeployerAddressId: deployerId,
	}
	if etching.Symbol != nil {
		entry.Symbol = *etching.Symbol
	}
	// a cenotaph etching creates the dune but with all amounts zeroed
	if !cenotaph {
		entry.Premine = etching.Premine
		if terms := etching.Terms; terms != nil {
			entry.MintAmount = terms.Amount
			entry.MintCap = terms.Cap
			entry.MintHeightStart = terms.HeightStart
			entry.MintHeightEnd = terms.HeightEnd
			entry.MintOffsetStart = terms.OffsetStart
			entry.MintOffsetEnd = terms.OffsetEnd
			if terms.Price != nil {
				entry.PriceAmount = lo.ToPtr(terms.Price.Amount)
				entry.PricePayTo = terms.Price.PayTo
			}
		}
	}
	cache.CreateDuneEntry(entry)

	cache.AppendEvent(&entity.Event{
		Type:          entity.EventTypeEtch,
		BlockHeight:   height,
		TransactionId: transactionId,
		DuneEntryId:   entry.Id,
		Amount:        entry.Premine,
		FromAddressId: entity.AddressIdCoinbase,
		ToAddressId:   deployerId,
	})
	return entry, nil
}

// processMint applies a mint to the unallocated bag. Invalid mints are
// silently ignored; a cenotaph mint counts against the cap but its amount is
// burned instead of credited.
func (p *Processor) processMint(cache *blockcache.Cache, entry *dunes.DuneEntry, tx *types.Transaction, height uint64, cenotaph bool, senderId int64, transactionId int64, unallocated map[int64]uint128.Uint128) {
	if !entry.IsPriceTermsMet(tx, p.network) {
		return
	}
	if !entry.IsMintOpen(height, tx.Index, true) {
		return
	}

	var mintAmount uint128.Uint128
	if entry.IsFlex() {
		mintAmount = entry.FlexMintAmount(entry.SatsPaidToPriceAddress(tx, p.network))
	} else {
		mintAmount = entry.MintAmount
	}
	if mintAmount.IsZero() {
		return
	}

	entry.Mints = entry.Mints.Add64(1)
	if cenotaph {
		// the minted amount of a cenotaph never reaches the bag
		entry.BurnedAmount = entry.BurnedAmount.Add(mintAmount)
		cache.MarkDuneEntryDirty(entry)
		return
	}
	cache.MarkDuneEntryDirty(entry)

	cache.AppendEvent(&entity.Event{
		Type:          entity.EventTypeMint,
		BlockHeight:   height,
		TransactionId: transactionId,
		DuneEntryId:   entry.Id,
		Amount:        mintAmount,
		FromAddressId: entity.AddressIdCoinbase,
		ToAddressId:   senderId,
	})
	unallocated[entry.Id] = unallocated[entry.Id].Add(mintAmount)
}

func sortedDuneIds(m map[int64]uint128.Uint128) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
