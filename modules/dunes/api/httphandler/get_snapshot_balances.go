package httphandler

import (
	"strconv"

	"github.com/bitapeslabs/nana/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) GetSnapshotBalances(ctx *fiber.Ctx) error {
	start, err := strconv.ParseUint(ctx.Params("start"), 10, 64)
	if err != nil {
		return errors.WithStack(errs.NewPublicError("invalid start block height"))
	}
	end, err := strconv.ParseUint(ctx.Params("end"), 10, 64)
	if err != nil {
		return errors.WithStack(errs.NewPublicError("invalid end block height"))
	}
	if start > end {
		return errors.WithStack(errs.NewPublicError("start block height must not exceed end block height"))
	}
	address, err := h.resolveAddress(ctx.Params("address"))
	if err != nil {
		return errors.WithStack(err)
	}
	duneId, hasDuneId, err := parseDuneId(ctx.Params("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	balances, err := h.usecase.GetSnapshotBalancesByAddress(ctx.UserContext(), address, start, end)
	if err != nil {
		return errors.Wrap(err, "error during GetSnapshotBalancesByAddress")
	}

	var filter = &duneId
	if !hasDuneId {
		filter = nil
	}
	return errors.WithStack(ctx.JSON(balancesResponse(balances, filter)))
}
