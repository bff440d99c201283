package postgres

import (
	"context"

	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/core/types"
	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

var _ datagateway.DunesDataGateway = (*Repository)(nil)

func (r *Repository) GetLatestBlock(ctx context.Context) (types.BlockHeader, error) {
	var (
		height         int64
		hash, prevHash string
	)
	err := r.querier().QueryRow(ctx, `SELECT height, hash, prev_hash FROM dunes_indexed_blocks ORDER BY height DESC LIMIT 1`).Scan(&height, &hash, &prevHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.BlockHeader{}, errors.WithStack(errs.NotFound)
		}
		return types.BlockHeader{}, errors.Wrap(err, "error during query")
	}
	parsedHash, err := chainhash.NewHashFromStr(hash)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "failed to parse block hash")
	}
	parsedPrevHash, err := chainhash.NewHashFromStr(prevHash)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "failed to parse prev block hash")
	}
	return types.BlockHeader{
		Height:    height,
		Hash:      *parsedHash,
		PrevBlock: *parsedPrevHash,
	}, nil
}

func (r *Repository) GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error) {
	var (
		hash, prevHash string
	)
	err := r.querier().QueryRow(ctx, `SELECT hash, prev_hash FROM dunes_indexed_blocks WHERE height = $1`, height).Scan(&hash, &prevHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	parsedHash, err := chainhash.NewHashFromStr(hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse block hash")
	}
	parsedPrevHash, err := chainhash.NewHashFromStr(prevHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse prev block hash")
	}
	return &entity.IndexedBlock{
		Height:   height,
		Hash:     *parsedHash,
		PrevHash: *parsedPrevHash,
	}, nil
}

func (r *Repository) GetNextSequences(ctx context.Context) (entity.Sequences, error) {
	var seq entity.Sequences
	err := r.querier().QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(MAX(id), 0) + 1 FROM addresses),
			(SELECT COALESCE(MAX(id), 0) + 1 FROM transactions),
			(SELECT COALESCE(MAX(id), 0) + 1 FROM utxos),
			(SELECT COALESCE(MAX(id), 0) + 1 FROM dunes),
			(SELECT COALESCE(MAX(id), 0) + 1 FROM balances),
			(SELECT COALESCE(MAX(id), 0) + 1 FROM events)
	`).Scan(&seq.Address, &seq.Transaction, &seq.Utxo, &seq.Dune, &seq.Balance, &seq.Event)
	if err != nil {
		return entity.Sequences{}, errors.Wrap(err, "error during query")
	}
	return seq, nil
}

func (r *Repository) GetTransactionsByHashes(ctx context.Context, hashes []chainhash.Hash) ([]*entity.Transaction, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	hashStrings := lo.Map(hashes, func(hash chainhash.Hash, _ int) string { return hash.String() })
	rows, err := r.querier().Query(ctx, `SELECT id, hash FROM transactions WHERE hash = ANY($1::text[])`, hashStrings)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	txs := make([]*entity.Transaction, 0)
	for rows.Next() {
		var (
			id   int64
			hash string
		)
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		tx, err := mapTransactionModelToType(id, hash)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		txs = append(txs, tx)
	}
	return txs, errors.WithStack(rows.Err())
}

const selectUtxoColumns = `u.id, u.transaction_id, u.vout, u.address_id, u.value_sats, u.block_created, u.block_spent, u.transaction_spent_id`

func scanUtxo(rows pgx.Rows) (*entity.Utxo, error) {
	var model utxoModel
	if err := rows.Scan(&model.Id, &model.TransactionId, &model.Vout, &model.AddressId, &model.ValueSats, &model.BlockCreated, &model.BlockSpent, &model.TransactionSpentId); err != nil {
		return nil, errors.Wrap(err, "error during scan")
	}
	return mapUtxoModelToType(model), nil
}

func (r *Repository) GetUtxosByLocations(ctx context.Context, locations []datagateway.UtxoLocation) ([]*entity.Utxo, error) {
	if len(locations) == 0 {
		return nil, nil
	}
	transactionIds := lo.Map(locations, func(location datagateway.UtxoLocation, _ int) int64 { return location.TransactionId })
	vouts := lo.Map(locations, func(location datagateway.UtxoLocation, _ int) int32 { return int32(location.Vout) })
	rows, err := r.querier().Query(ctx, `
		SELECT `+selectUtxoColumns+`
		FROM utxos u
		JOIN unnest($1::bigint[], $2::int[]) AS l(transaction_id, vout)
			ON u.transaction_id = l.transaction_id AND u.vout = l.vout
	`, transactionIds, vouts)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	utxos := make([]*entity.Utxo, 0)
	for rows.Next() {
		utxo, err := scanUtxo(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		utxos = append(utxos, utxo)
	}
	return utxos, errors.WithStack(rows.Err())
}

func (r *Repository) GetUtxoBalancesByUtxoIds(ctx context.Context, utxoIds []int64) ([]*entity.UtxoBalance, error) {
	if len(utxoIds) == 0 {
		return nil, nil
	}
	rows, err := r.querier().Query(ctx, `SELECT utxo_id, dune_id, balance_0, balance_1 FROM utxo_balances WHERE utxo_id = ANY($1::bigint[])`, utxoIds)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	balances := make([]*entity.UtxoBalance, 0)
	for rows.Next() {
		var (
			utxoId, duneId, balanceLo, balanceHi int64
		)
		if err := rows.Scan(&utxoId, &duneId, &balanceLo, &balanceHi); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		balances = append(balances, &entity.UtxoBalance{
			UtxoId:      utxoId,
			DuneEntryId: duneId,
			Balance:     uint128FromInt64Pair(balanceLo, balanceHi),
		})
	}
	return balances, errors.WithStack(rows.Err())
}

func (r *Repository) GetAddressesByIds(ctx context.Context, ids []int64) ([]*entity.Address, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.querier().Query(ctx, `SELECT id, address FROM addresses WHERE id = ANY($1::bigint[])`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()
	return scanAddresses(rows)
}

func (r *Repository) GetAddressesByAddresses(ctx context.Context, addresses []string) ([]*entity.Address, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	rows, err := r.querier().Query(ctx, `SELECT id, address FROM addresses WHERE address = ANY($1::text[])`, addresses)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()
	return scanAddresses(rows)
}

func scanAddresses(rows pgx.Rows) ([]*entity.Address, error) {
	addresses := make([]*entity.Address, 0)
	for rows.Next() {
		var address entity.Address
		if err := rows.Scan(&address.Id, &address.Address); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		addresses = append(addresses, &address)
	}
	return addresses, errors.WithStack(rows.Err())
}

const selectDuneEntryColumns = `id, dune_id, name, symbol, divisibility, premine, mints, mint_cap, mint_amount, mint_height_start, mint_height_end, mint_offset_start, mint_offset_end, price_amount, price_pay_to, turbo, unmintable, burned_amount, etch_transaction_id, deployer_address_id`

func scanDuneEntry(row pgx.Row) (*dunes.DuneEntry, error) {
	var model duneEntryModel
	if err := row.Scan(
		&model.Id, &model.DuneId, &model.Name, &model.Symbol, &model.Divisibility,
		&model.Premine, &model.Mints, &model.MintCap, &model.MintAmount,
		&model.MintHeightStart, &model.MintHeightEnd, &model.MintOffsetStart, &model.MintOffsetEnd,
		&model.PriceAmount, &model.PricePayTo, &model.Turbo, &model.Unmintable,
		&model.BurnedAmount, &model.EtchTransactionId, &model.DeployerAddressId,
	); err != nil {
		return nil, err
	}
	return mapDuneEntryModelToType(model)
}

func (r *Repository) queryDuneEntries(ctx context.Context, query string, arg any) ([]*dunes.DuneEntry, error) {
	rows, err := r.querier().Query(ctx, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	entries := make([]*dunes.DuneEntry, 0)
	for rows.Next() {
		entry, err := scanDuneEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		entries = append(entries, entry)
	}
	return entries, errors.WithStack(rows.Err())
}

func (r *Repository) GetDuneEntriesByIds(ctx context.Context, ids []int64) ([]*dunes.DuneEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryDuneEntries(ctx, `SELECT `+selectDuneEntryColumns+` FROM dunes WHERE id = ANY($1::bigint[])`, ids)
}

func (r *Repository) GetDuneEntriesByDuneIds(ctx context.Context, duneIds []dunes.DuneId) ([]*dunes.DuneEntry, error) {
	if len(duneIds) == 0 {
		return nil, nil
	}
	duneIdStrings := lo.Map(duneIds, func(duneId dunes.DuneId, _ int) string { return duneId.String() })
	return r.queryDuneEntries(ctx, `SELECT `+selectDuneEntryColumns+` FROM dunes WHERE dune_id = ANY($1::text[])`, duneIdStrings)
}

func (r *Repository) GetDuneEntriesByNames(ctx context.Context, names []dunes.DuneName) ([]*dunes.DuneEntry, error) {
	if len(names) == 0 {
		return nil, nil
	}
	nameStrings := lo.Map(names, func(name dunes.DuneName, _ int) string { return string(name) })
	return r.queryDuneEntries(ctx, `SELECT `+selectDuneEntryColumns+` FROM dunes WHERE name = ANY($1::text[])`, nameStrings)
}

func (r *Repository) GetDuneEntryByDuneId(ctx context.Context, duneId dunes.DuneId) (*dunes.DuneEntry, error) {
	row := r.querier().QueryRow(ctx, `SELECT `+selectDuneEntryColumns+` FROM dunes WHERE dune_id = $1`, duneId.String())
	entry, err := scanDuneEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return entry, nil
}

func (r *Repository) GetBalancesByAddressIds(ctx context.Context, addressIds []int64) ([]*entity.Balance, error) {
	if len(addressIds) == 0 {
		return nil, nil
	}
	rows, err := r.querier().Query(ctx, `SELECT id, address_id, dune_id, balance_0, balance_1 FROM balances WHERE address_id = ANY($1::bigint[])`, addressIds)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()
	return scanBalances(rows)
}

func scanBalances(rows pgx.Rows) ([]*entity.Balance, error) {
	balances := make([]*entity.Balance, 0)
	for rows.Next() {
		var (
			id, addressId, duneId, balanceLo, balanceHi int64
		)
		if err := rows.Scan(&id, &addressId, &duneId, &balanceLo, &balanceHi); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		balances = append(balances, &entity.Balance{
			Id:          id,
			AddressId:   addressId,
			DuneEntryId: duneId,
			Balance:     uint128FromInt64Pair(balanceLo, balanceHi),
		})
	}
	return balances, errors.WithStack(rows.Err())
}

func (r *Repository) GetUtxoWithBalancesByLocation(ctx context.Context, txHash chainhash.Hash, vout uint32) (*entity.Utxo, []*entity.UtxoBalance, error) {
	rows, err := r.querier().Query(ctx, `
		SELECT `+selectUtxoColumns+`
		FROM utxos u
		JOIN transactions t ON t.id = u.transaction_id
		WHERE t.hash = $1 AND u.vout = $2 AND u.block_spent IS NULL
	`, txHash.String(), int32(vout))
	if err != nil {
		return nil, nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	var utxo *entity.Utxo
	for rows.Next() {
		utxo, err = scanUtxo(rows)
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if utxo == nil {
		return nil, nil, errors.WithStack(errs.NotFound)
	}

	balances, err := r.GetUtxoBalancesByUtxoIds(ctx, []int64{utxo.Id})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get utxo balances")
	}
	return utxo, balances, nil
}

func (r *Repository) GetBalancesByAddress(ctx context.Context, address string) ([]*entity.Balance, error) {
	rows, err := r.querier().Query(ctx, `
		SELECT b.id, b.address_id, b.dune_id, b.balance_0, b.balance_1
		FROM balances b
		JOIN addresses a ON a.id = b.address_id
		WHERE a.address = $1
	`, address)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()
	return scanBalances(rows)
}

func (r *Repository) GetSnapshotBalancesByAddress(ctx context.Context, address string, start, end uint64) (map[int64]*entity.Balance, error) {
	rows, err := r.querier().Query(ctx, `
		SELECT u.address_id, ub.dune_id, ub.balance_0, ub.balance_1
		FROM utxos u
		JOIN utxo_balances ub ON ub.utxo_id = u.id
		JOIN addresses a ON a.id = u.address_id
		WHERE a.address = $1
			AND u.block_created >= $2
			AND u.block_created <= $3
			AND (u.block_spent IS NULL OR u.block_spent > $3)
	`, address, int64(start), int64(end))
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	result := make(map[int64]*entity.Balance)
	for rows.Next() {
		var (
			addressId, duneId, balanceLo, balanceHi int64
		)
		if err := rows.Scan(&addressId, &duneId, &balanceLo, &balanceHi); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		balance, ok := result[duneId]
		if !ok {
			balance = &entity.Balance{
				AddressId:   addressId,
				DuneEntryId: duneId,
			}
			result[duneId] = balance
		}
		balance.Balance = balance.Balance.Add(uint128FromInt64Pair(balanceLo, balanceHi))
	}
	return result, errors.WithStack(rows.Err())
}

// writers

func (r *Repository) CreateAddresses(ctx context.Context, addresses []*entity.Address) error {
	if len(addresses) == 0 {
		return nil
	}
	ids := lo.Map(addresses, func(address *entity.Address, _ int) int64 { return address.Id })
	names := lo.Map(addresses, func(address *entity.Address, _ int) string { return address.Address })
	_, err := r.querier().Exec(ctx, `
		INSERT INTO addresses (id, address)
		SELECT * FROM unnest($1::bigint[], $2::text[])
		ON CONFLICT (id) DO NOTHING
	`, ids, names)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) CreateTransactions(ctx context.Context, txs []*entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	ids := lo.Map(txs, func(tx *entity.Transaction, _ int) int64 { return tx.Id })
	hashes := lo.Map(txs, func(tx *entity.Transaction, _ int) string { return tx.Hash.String() })
	_, err := r.querier().Exec(ctx, `
		INSERT INTO transactions (id, hash)
		SELECT * FROM unnest($1::bigint[], $2::text[])
		ON CONFLICT (id) DO NOTHING
	`, ids, hashes)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) UpsertDuneEntries(ctx context.Context, entries []*dunes.DuneEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, entry := range entries {
		model, err := mapDuneEntryTypeToModel(entry)
		if err != nil {
			return errors.WithStack(err)
		}
		batch.Queue(`
			INSERT INTO dunes (`+selectDuneEntryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			ON CONFLICT (id) DO UPDATE SET
				mints = EXCLUDED.mints,
				burned_amount = EXCLUDED.burned_amount
		`,
			model.Id, model.DuneId, model.Name, model.Symbol, model.Divisibility,
			model.Premine, model.Mints, model.MintCap, model.MintAmount,
			model.MintHeightStart, model.MintHeightEnd, model.MintOffsetStart, model.MintOffsetEnd,
			model.PriceAmount, model.PricePayTo, model.Turbo, model.Unmintable,
			model.BurnedAmount, model.EtchTransactionId, model.DeployerAddressId,
		)
	}
	results := r.sender().SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return errors.Wrap(err, "error during batch exec")
		}
	}
	return errors.WithStack(results.Close())
}

func (r *Repository) CreateUtxos(ctx context.Context, utxos []*entity.Utxo) error {
	if len(utxos) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(utxos))
	transactionIds := make([]int64, 0, len(utxos))
	vouts := make([]int32, 0, len(utxos))
	addressIds := make([]int64, 0, len(utxos))
	valueSats := make([]int64, 0, len(utxos))
	blockCreated := make([]int64, 0, len(utxos))
	for _, utxo := range utxos {
		ids = append(ids, utxo.Id)
		transactionIds = append(transactionIds, utxo.TransactionId)
		vouts = append(vouts, int32(utxo.Vout))
		addressIds = append(addressIds, utxo.AddressId)
		valueSats = append(valueSats, int64(utxo.ValueSats))
		blockCreated = append(blockCreated, int64(utxo.BlockCreated))
	}
	_, err := r.querier().Exec(ctx, `
		INSERT INTO utxos (id, transaction_id, vout, address_id, value_sats, block_created)
		SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::int[], $4::bigint[], $5::bigint[], $6::bigint[])
		ON CONFLICT (transaction_id, vout) DO NOTHING
	`, ids, transactionIds, vouts, addressIds, valueSats, blockCreated)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) SpendUtxos(ctx context.Context, params []datagateway.SpendUtxoParams) error {
	if len(params) == 0 {
		return nil
	}
	utxoIds := lo.Map(params, func(param datagateway.SpendUtxoParams, _ int) int64 { return param.UtxoId })
	blockSpents := lo.Map(params, func(param datagateway.SpendUtxoParams, _ int) int64 { return int64(param.BlockSpent) })
	spentTxIds := lo.Map(params, func(param datagateway.SpendUtxoParams, _ int) int64 { return param.TransactionSpentId })
	_, err := r.querier().Exec(ctx, `
		UPDATE utxos u SET
			block_spent = s.block_spent,
			transaction_spent_id = s.transaction_spent_id
		FROM unnest($1::bigint[], $2::bigint[], $3::bigint[]) AS s(utxo_id, block_spent, transaction_spent_id)
		WHERE u.id = s.utxo_id
	`, utxoIds, blockSpents, spentTxIds)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) CreateUtxoBalances(ctx context.Context, balances []*entity.UtxoBalance) error {
	if len(balances) == 0 {
		return nil
	}
	utxoIds := make([]int64, 0, len(balances))
	duneIds := make([]int64, 0, len(balances))
	balanceLos := make([]int64, 0, len(balances))
	balanceHis := make([]int64, 0, len(balances))
	for _, balance := range balances {
		balanceLo, balanceHi := int64PairFromUint128(balance.Balance)
		utxoIds = append(utxoIds, balance.UtxoId)
		duneIds = append(duneIds, balance.DuneEntryId)
		balanceLos = append(balanceLos, balanceLo)
		balanceHis = append(balanceHis, balanceHi)
	}
	_, err := r.querier().Exec(ctx, `
		INSERT INTO utxo_balances (utxo_id, dune_id, balance_0, balance_1)
		SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::bigint[], $4::bigint[])
		ON CONFLICT (utxo_id, dune_id) DO NOTHING
	`, utxoIds, duneIds, balanceLos, balanceHis)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) UpsertBalances(ctx context.Context, balances []*entity.Balance) error {
	if len(balances) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(balances))
	addressIds := make([]int64, 0, len(balances))
	duneIds := make([]int64, 0, len(balances))
	balanceLos := make([]int64, 0, len(balances))
	balanceHis := make([]int64, 0, len(balances))
	for _, balance := range balances {
		balanceLo, balanceHi := int64PairFromUint128(balance.Balance)
		ids = append(ids, balance.Id)
		addressIds = append(addressIds, balance.AddressId)
		duneIds = append(duneIds, balance.DuneEntryId)
		balanceLos = append(balanceLos, balanceLo)
		balanceHis = append(balanceHis, balanceHi)
	}
	_, err := r.querier().Exec(ctx, `
		INSERT INTO balances (id, address_id, dune_id, balance_0, balance_1)
		SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::bigint[], $4::bigint[], $5::bigint[])
		ON CONFLICT (address_id, dune_id) DO UPDATE SET
			balance_0 = EXCLUDED.balance_0,
			balance_1 = EXCLUDED.balance_1
	`, ids, addressIds, duneIds, balanceLos, balanceHis)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) CreateEvents(ctx context.Context, events []*entity.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(events))
	eventTypes := make([]int16, 0, len(events))
	blockHeights := make([]int64, 0, len(events))
	transactionIds := make([]int64, 0, len(events))
	duneIds := make([]int64, 0, len(events))
	amounts := make([]pgtype.Numeric, 0, len(events))
	fromAddressIds := make([]int64, 0, len(events))
	toAddressIds := make([]int64, 0, len(events))
	for _, event := range events {
		amount, err := numericFromUint128(lo.ToPtr(event.Amount))
		if err != nil {
			return errors.Wrap(err, "failed to map event amount")
		}
		ids = append(ids, event.Id)
		eventTypes = append(eventTypes, int16(event.Type))
		blockHeights = append(blockHeights, int64(event.BlockHeight))
		transactionIds = append(transactionIds, event.TransactionId)
		duneIds = append(duneIds, event.DuneEntryId)
		amounts = append(amounts, amount)
		fromAddressIds = append(fromAddressIds, event.FromAddressId)
		toAddressIds = append(toAddressIds, event.ToAddressId)
	}
	_, err := r.querier().Exec(ctx, `
		INSERT INTO events (id, type, block_height, transaction_id, dune_id, amount, from_address_id, to_address_id)
		SELECT * FROM unnest($1::bigint[], $2::smallint[], $3::bigint[], $4::bigint[], $5::bigint[], $6::numeric[], $7::bigint[], $8::bigint[])
		ON CONFLICT (id) DO NOTHING
	`, ids, eventTypes, blockHeights, transactionIds, duneIds, amounts, fromAddressIds, toAddressIds)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error {
	_, err := r.querier().Exec(ctx, `
		INSERT INTO dunes_indexed_blocks (height, hash, prev_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (height) DO UPDATE SET hash = EXCLUDED.hash, prev_hash = EXCLUDED.prev_hash
	`, block.Height, block.Hash.String(), block.PrevHash.String())
	return errors.Wrap(err, "error during exec")
}
