package dunes

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/bitapeslabs/nana/core/types"
	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

// Edict is a declarative balance movement inside a dunestone.
type Edict struct {
	Id     DuneId
	Amount uint128.Uint128
	// Output is the destination vout index. Equal to the transaction's output
	// count, it means "spread across all non-OP_RETURN outputs".
	Output int
}

// Dunestone is the protocol message embedded in a transaction's OP_RETURN output.
type Dunestone struct {
	// Etching is the dune to etch in this transaction
	Etching *Etching
	// Mint is the id of the dune to mint in this transaction
	Mint *DuneId
	// Pointer is the transaction output receiving leftover unallocated dunes.
	// If nil, the first non-OP_RETURN output receives them.
	Pointer *uint32
	// Edicts to execute in this transaction, in declaration order
	Edicts []Edict
	// Cenotaph marks a malformed dunestone. All input dunes of a cenotaph are
	// burned and dunes etched by one are unmintable.
	Cenotaph bool
	// Flaws is a bitmask of the flaws that made the dunestone a cenotaph
	Flaws Flaws
}

// HasActions reports whether the dunestone carries any state-changing action.
func (d *Dunestone) HasActions() bool {
	return d.Etching != nil || d.Mint != nil || len(d.Edicts) > 0
}

// payload schema of the dunestone JSON document
type (
	dunestonePayload struct {
		Protocol *string         `json:"p"`
		Edicts   []edictPayload  `json:"edicts"`
		Etching  *etchingPayload `json:"etching"`
		Mint     *string         `json:"mint"`
		Pointer  *uint32         `json:"pointer"`
	}
	edictPayload struct {
		Id     string `json:"id"`
		Amount string `json:"amount"`
		Output int    `json:"output"`
	}
	etchingPayload struct {
		Divisibility *uint8        `json:"divisibility"`
		Premine      *string       `json:"premine"`
		Dune         *string       `json:"dune"`
		Symbol       *string       `json:"symbol"`
		Terms        *termsPayload `json:"terms"`
		Turbo        *bool         `json:"turbo"`
	}
	termsPayload struct {
		Amount *string       `json:"amount"`
		Cap    *string       `json:"cap"`
		Height [2]*uint64    `json:"height"`
		Offset [2]*uint64    `json:"offset"`
		Price  *pricePayload `json:"price"`
	}
	pricePayload struct {
		Amount uint64 `json:"amount"`
		PayTo  string `json:"pay_to"`
	}
)

// DecipherDunestone extracts and decodes the dunestone of a transaction.
// Returns nil if the transaction carries no OP_RETURN payload. Malformed
// payloads yield a cenotaph dunestone with the flaws that condemned it.
func DecipherDunestone(tx *types.Transaction) *Dunestone {
	payload, flaws := dunestonePayloadFromTx(tx)
	if flaws != 0 {
		return &Dunestone{
			Cenotaph: true,
			Flaws:    flaws,
		}
	}
	if payload == nil {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	var doc dunestonePayload
	if err := decoder.Decode(&doc); err != nil {
		return &Dunestone{
			Cenotaph: true,
			Flaws:    FlawFlagInvalidJSON.Mask(),
		}
	}
	if decoder.More() {
		return &Dunestone{
			Cenotaph: true,
			Flaws:    FlawFlagInvalidJSON.Mask(),
		}
	}

	if doc.Protocol == nil {
		return &Dunestone{
			Cenotaph: true,
			Flaws:    FlawFlagInvalidProtocol.Mask(),
		}
	}
	if _, ok := protocolIdentifiers[*doc.Protocol]; !ok {
		return &Dunestone{
			Cenotaph: true,
			Flaws:    FlawFlagInvalidProtocol.Mask(),
		}
	}

	var (
		dunestone Dunestone
		flawed    Flaws
	)

	if doc.Etching != nil {
		etching, etchingFlaws := decodeEtching(doc.Etching)
		flawed |= etchingFlaws
		dunestone.Etching = etching
	}

	if doc.Mint != nil {
		mintId, err := NewDuneIdFromString(*doc.Mint)
		if err != nil {
			flawed |= FlawFlagInvalidMint.Mask()
		} else {
			dunestone.Mint = &mintId
		}
	}

	for _, edict := range doc.Edicts {
		id, err := NewDuneIdFromString(edict.Id)
		if err != nil {
			flawed |= FlawFlagEdictDuneId.Mask()
			continue
		}
		amount, err := uint128.FromString(edict.Amount)
		if err != nil {
			flawed |= FlawFlagEdictAmount.Mask()
			continue
		}
		// output may equal the vout count (spread form) but not exceed it
		if edict.Output < 0 || edict.Output > len(tx.TxOut) {
			flawed |= FlawFlagEdictOutput.Mask()
			continue
		}
		dunestone.Edicts = append(dunestone.Edicts, Edict{
			Id:     id,
			Amount: amount,
			Output: edict.Output,
		})
	}

	if doc.Pointer != nil {
		if int(*doc.Pointer) < len(tx.TxOut) {
			dunestone.Pointer = doc.Pointer
		}
	}

	if flawed != 0 {
		return &Dunestone{
			Cenotaph: true,
			Flaws:    flawed,
			Etching:  dunestone.Etching,
			Mint:     dunestone.Mint,
		}
	}
	return &dunestone
}

func decodeEtching(src *etchingPayload) (*Etching, Flaws) {
	etching := Etching{
		Turbo: true,
	}
	if src.Turbo != nil {
		etching.Turbo = *src.Turbo
	}
	if src.Divisibility != nil {
		if *src.Divisibility > MAX_DIVISIBILITY {
			return nil, FlawFlagInvalidEtching.Mask()
		}
		etching.Divisibility = *src.Divisibility
	}
	if src.Dune != nil {
		name := DuneName(*src.Dune)
		if !name.IsValid() {
			return nil, FlawFlagInvalidEtching.Mask()
		}
		etching.Dune = &name
	}
	if src.Premine != nil {
		premine, err := uint128.FromString(*src.Premine)
		if err != nil {
			return nil, FlawFlagInvalidEtching.Mask()
		}
		etching.Premine = premine
	}
	if src.Symbol != nil {
		if utf8.RuneCountInString(*src.Symbol) != 1 {
			return nil, FlawFlagInvalidEtching.Mask()
		}
		symbol, _ := utf8.DecodeRuneInString(*src.Symbol)
		etching.Symbol = lo.ToPtr(symbol)
	}
	if src.Terms != nil {
		terms := Terms{
			HeightStart: src.Terms.Height[0],
			HeightEnd:   src.Terms.Height[1],
			OffsetStart: src.Terms.Offset[0],
			OffsetEnd:   src.Terms.Offset[1],
		}
		if src.Terms.Amount != nil {
			amount, err := uint128.FromString(*src.Terms.Amount)
			if err != nil {
				return nil, FlawFlagInvalidEtching.Mask()
			}
			terms.Amount = amount
		}
		if src.Terms.Cap != nil {
			cap, err := uint128.FromString(*src.Terms.Cap)
			if err != nil {
				return nil, FlawFlagInvalidEtching.Mask()
			}
			terms.Cap = &cap
		}
		if src.Terms.Price != nil {
			if src.Terms.Price.PayTo == "" {
				return nil, FlawFlagInvalidEtching.Mask()
			}
			terms.Price = &Price{
				Amount: src.Terms.Price.Amount,
				PayTo:  src.Terms.Price.PayTo,
			}
		}
		etching.Terms = &terms
	}
	return &etching, 0
}

// dunestonePayloadFromTx extracts the raw payload from the first OP_RETURN
// output of the transaction.
func dunestonePayloadFromTx(tx *types.Transaction) ([]byte, Flaws) {
	for _, output := range tx.TxOut {
		tokenizer := txscript.MakeScriptTokenizer(0, output.PkScript)

		// payload must start with OP_RETURN
		tokenizer.Next()
		if opCode := tokenizer.Opcode(); opCode != txscript.OP_RETURN {
			continue
		}

		// construct the payload by concatenating the remaining data pushes
		payload := make([]byte, 0)
		for tokenizer.Next() {
			data := tokenizer.Data()
			if data == nil {
				return nil, FlawFlagInvalidScript.Mask()
			}
			payload = append(payload, data...)
		}
		if tokenizer.Err() != nil {
			return nil, FlawFlagInvalidScript.Mask()
		}
		if len(payload) == 0 {
			return nil, FlawFlagInvalidScript.Mask()
		}

		return payload, Flaws(0)
	}

	// no OP_RETURN output, not a dunestone transaction
	return nil, 0
}
