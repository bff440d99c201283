package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/dunes")

	r.Get("/block", h.GetCurrentBlock)
	r.Get("/utxo/:location", h.GetUtxoBalances)
	r.Get("/utxo/:location/:id", h.GetUtxoBalances)
	r.Get("/address/:address", h.GetAddressBalances)
	r.Get("/address/:address/:id", h.GetAddressBalances)
	r.Get("/snapshot/:start/:end/address/:address", h.GetSnapshotBalances)
	r.Get("/snapshot/:start/:end/address/:address/:id", h.GetSnapshotBalances)
	return nil
}
