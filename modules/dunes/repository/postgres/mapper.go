package postgres

import (
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/internal/entity"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
)

// The ledger tables store 128-bit balances as two signed 64-bit halves,
// (balance_0 = low, balance_1 = high), reinterpreted on read. The split is a
// pure serialization concern; all arithmetic runs on the recombined value.

func int64PairFromUint128(src uint128.Uint128) (lo int64, hi int64) {
	return int64(src.Lo), int64(src.Hi)
}

func uint128FromInt64Pair(lo int64, hi int64) uint128.Uint128 {
	return uint128.Uint128{Lo: uint64(lo), Hi: uint64(hi)}
}

// The dune-terms columns use NUMERIC instead; they are written once per etch
// and read in full rows, so the readable form wins there.

func uint128FromNumeric(src pgtype.Numeric) (*uint128.Uint128, error) {
	if !src.Valid {
		return nil, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func numericFromUint128(src *uint128.Uint128) (pgtype.Numeric, error) {
	if src == nil {
		return pgtype.Numeric{}, nil
	}
	bytes := []byte(src.String())
	var result pgtype.Numeric
	err := result.UnmarshalJSON(bytes)
	if err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

type duneEntryModel struct {
	Id                int64
	DuneId            string
	Name              string
	Symbol            int32
	Divisibility      int16
	Premine           pgtype.Numeric
	Mints             pgtype.Numeric
	MintCap           pgtype.Numeric
	MintAmount        pgtype.Numeric
	MintHeightStart   pgtype.Int8
	MintHeightEnd     pgtype.Int8
	MintOffsetStart   pgtype.Int8
	MintOffsetEnd     pgtype.Int8
	PriceAmount       pgtype.Int8
	PricePayTo        string
	Turbo             bool
	Unmintable        bool
	BurnedAmount      pgtype.Numeric
	EtchTransactionId int64
	DeployerAddressId int64
}

func mapDuneEntryModelToType(src duneEntryModel) (*dunes.DuneEntry, error) {
	duneId, err := dunes.NewDuneIdFromString(src.DuneId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse dune id")
	}
	premine, err := uint128FromNumeric(src.Premine)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse premine")
	}
	mints, err := uint128FromNumeric(src.Mints)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mints")
	}
	mintCap, err := uint128FromNumeric(src.MintCap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mint cap")
	}
	mintAmount, err := uint128FromNumeric(src.MintAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mint amount")
	}
	burnedAmount, err := uint128FromNumeric(src.BurnedAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse burned amount")
	}
	entry := &dunes.DuneEntry{
		Id:                src.Id,
		DuneId:            duneId,
		Name:              dunes.DuneName(src.Name),
		Symbol:            rune(src.Symbol),
		Divisibility:      uint8(src.Divisibility),
		MintCap:           mintCap,
		PricePayTo:        src.PricePayTo,
		Turbo:             src.Turbo,
		Unmintable:        src.Unmintable,
		EtchTransactionId: src.EtchTransactionId,
		DeployerAddressId: src.DeployerAddressId,
	}
	if premine != nil {
		entry.Premine = *premine
	}
	if mints != nil {
		entry.Mints = *mints
	}
	if mintAmount != nil {
		entry.MintAmount = *mintAmount
	}
	if burnedAmount != nil {
		entry.BurnedAmount = *burnedAmount
	}
	if src.MintHeightStart.Valid {
		value := uint64(src.MintHeightStart.Int64)
		entry.MintHeightStart = &value
	}
	if src.MintHeightEnd.Valid {
		value := uint64(src.MintHeightEnd.Int64)
		entry.MintHeightEnd = &value
	}
	if src.MintOffsetStart.Valid {
		value := uint64(src.MintOffsetStart.Int64)
		entry.MintOffsetStart = &value
	}
	if src.MintOffsetEnd.Valid {
		value := uint64(src.MintOffsetEnd.Int64)
		entry.MintOffsetEnd = &value
	}
	if src.PriceAmount.Valid {
		value := uint64(src.PriceAmount.Int64)
		entry.PriceAmount = &value
	}
	return entry, nil
}

func mapDuneEntryTypeToModel(src *dunes.DuneEntry) (duneEntryModel, error) {
	premine, err := numericFromUint128(&src.Premine)
	if err != nil {
		return duneEntryModel{}, errors.Wrap(err, "failed to map premine")
	}
	mints, err := numericFromUint128(&src.Mints)
	if err != nil {
		return duneEntryModel{}, errors.Wrap(err, "failed to map mints")
	}
	mintCap, err := numericFromUint128(src.MintCap)
	if err != nil {
		return duneEntryModel{}, errors.Wrap(err, "failed to map mint cap")
	}
	mintAmount, err := numericFromUint128(&src.MintAmount)
	if err != nil {
		return duneEntryModel{}, errors.Wrap(err, "failed to map mint amount")
	}
	burnedAmount, err := numericFromUint128(&src.BurnedAmount)
	if err != nil {
		return duneEntryModel{}, errors.Wrap(err, "failed to map burned amount")
	}
	model := duneEntryModel{
		Id:                src.Id,
		DuneId:            src.DuneId.String(),
		Name:              string(src.Name),
		Symbol:            int32(src.Symbol),
		Divisibility:      int16(src.Divisibility),
		Premine:           premine,
		Mints:             mints,
		MintCap:           mintCap,
		MintAmount:        mintAmount,
		PricePayTo:        src.PricePayTo,
		Turbo:             src.Turbo,
		Unmintable:        src.Unmintable,
		BurnedAmount:      burnedAmount,
		EtchTransactionId: src.EtchTransactionId,
		DeployerAddressId: src.DeployerAddressId,
	}
	if src.MintHeightStart != nil {
		model.MintHeightStart = pgtype.Int8{Int64: int64(*src.MintHeightStart), Valid: true}
	}
	if src.MintHeightEnd != nil {
		model.MintHeightEnd = pgtype.Int8{Int64: int64(*src.MintHeightEnd), Valid: true}
	}
	if src.MintOffsetStart != nil {
		model.MintOffsetStart = pgtype.Int8{Int64: int64(*src.MintOffsetStart), Valid: true}
	}
	if src.MintOffsetEnd != nil {
		model.MintOffsetEnd = pgtype.Int8{Int64: int64(*src.MintOffsetEnd), Valid: true}
	}
	if src.PriceAmount != nil {
		model.PriceAmount = pgtype.Int8{Int64: int64(*src.PriceAmount), Valid: true}
	}
	return model, nil
}

type utxoModel struct {
	Id                 int64
	TransactionId      int64
	Vout               int32
	AddressId          int64
	ValueSats          int64
	BlockCreated       int64
	BlockSpent         pgtype.Int8
	TransactionSpentId pgtype.Int8
}

func mapUtxoModelToType(src utxoModel) *entity.Utxo {
	utxo := &entity.Utxo{
		Id:            src.Id,
		TransactionId: src.TransactionId,
		Vout:          uint32(src.Vout),
		AddressId:     src.AddressId,
		ValueSats:     uint64(src.ValueSats),
		BlockCreated:  uint64(src.BlockCreated),
	}
	if src.BlockSpent.Valid {
		value := uint64(src.BlockSpent.Int64)
		utxo.BlockSpent = &value
	}
	if src.TransactionSpentId.Valid {
		value := src.TransactionSpentId.Int64
		utxo.TransactionSpentId = &value
	}
	return utxo
}

func mapTransactionModelToType(id int64, hash string) (*entity.Transaction, error) {
	parsed, err := chainhash.NewHashFromStr(hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse transaction hash")
	}
	return &entity.Transaction{
		Id:   id,
		Hash: *parsed,
	}, nil
}
