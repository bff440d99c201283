package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) GetAddressBalances(ctx *fiber.Ctx) error {
	address, err := h.resolveAddress(ctx.Params("address"))
	if err != nil {
		return errors.WithStack(err)
	}
	duneId, hasDuneId, err := parseDuneId(ctx.Params("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	balances, err := h.usecase.GetBalancesByAddress(ctx.UserContext(), address)
	if err != nil {
		return errors.Wrap(err, "error during GetBalancesByAddress")
	}

	var filter = &duneId
	if !hasDuneId {
		filter = nil
	}
	return errors.WithStack(ctx.JSON(balancesResponse(balances, filter)))
}
