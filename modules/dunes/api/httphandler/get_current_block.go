package httphandler

import (
	"github.com/bitapeslabs/nana/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getCurrentBlockResult struct {
	Hash   string `json:"hash"`
	Height int64  `json:"height"`
}

func (h *HttpHandler) GetCurrentBlock(ctx *fiber.Ctx) error {
	blockHeader, err := h.usecase.GetLatestBlock(ctx.UserContext())
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(ctx.JSON(map[string]string{}))
		}
		return errors.Wrap(err, "error during GetLatestBlock")
	}
	return errors.WithStack(ctx.JSON(getCurrentBlockResult{
		Hash:   blockHeader.Hash.String(),
		Height: blockHeader.Height,
	}))
}
