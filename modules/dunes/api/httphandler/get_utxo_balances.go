package httphandler

import (
	"github.com/bitapeslabs/nana/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) GetUtxoBalances(ctx *fiber.Ctx) error {
	txHash, vout, err := parseLocation(ctx.Params("location"))
	if err != nil {
		return errors.WithStack(err)
	}
	duneId, hasDuneId, err := parseDuneId(ctx.Params("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	balances, err := h.usecase.GetUtxoBalances(ctx.UserContext(), txHash, vout)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(ctx.JSON(map[string]string{}))
		}
		return errors.Wrap(err, "error during GetUtxoBalances")
	}

	var filter = &duneId
	if !hasDuneId {
		filter = nil
	}
	return errors.WithStack(ctx.JSON(balancesResponse(balances, filter)))
}
