package httphandler

import (
	"strconv"
	"strings"

	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/modules/dunes/dunes"
	"github.com/bitapeslabs/nana/modules/dunes/usecase"
	"github.com/bitapeslabs/nana/pkg/btcutils"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/uint128"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

// parseLocation parses a "txid:vout" path segment.
func parseLocation(location string) (chainhash.Hash, uint32, error) {
	parts := strings.Split(location, ":")
	if len(parts) != 2 {
		return chainhash.Hash{}, 0, errs.NewPublicError("invalid utxo location: expected \"txid:vout\"")
	}
	txHash, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return chainhash.Hash{}, 0, errs.NewPublicError("invalid utxo location: malformed txid")
	}
	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return chainhash.Hash{}, 0, errs.NewPublicError("invalid utxo location: malformed vout")
	}
	return *txHash, uint32(vout), nil
}

// resolveAddress validates the address for the configured network.
func (h *HttpHandler) resolveAddress(address string) (string, error) {
	if address == "" {
		return "", errs.NewPublicError("'address' is required")
	}
	if _, err := btcutils.ToPkScript(h.network, address); err != nil {
		return "", errs.NewPublicError("unable to resolve address")
	}
	return address, nil
}

// parseDuneId parses an optional dune protocol id path segment.
func parseDuneId(raw string) (dunes.DuneId, bool, error) {
	if raw == "" {
		return dunes.DuneId{}, false, nil
	}
	duneId, err := dunes.NewDuneIdFromString(raw)
	if err != nil {
		return dunes.DuneId{}, false, errs.NewPublicError("invalid dune id: expected \"block:tx\"")
	}
	return duneId, true, nil
}

// balancesResponse renders balances as dune protocol id -> exact amount. An
// empty result renders as {}.
func balancesResponse(balances map[*dunes.DuneEntry]uint128.Uint128, filter *dunes.DuneId) map[string]string {
	result := make(map[string]string)
	for entry, amount := range balances {
		if filter != nil && entry.DuneId != *filter {
			continue
		}
		result[entry.DuneId.String()] = amount.String()
	}
	return result
}
