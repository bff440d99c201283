package api

import (
	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/modules/dunes/api/httphandler"
	"github.com/bitapeslabs/nana/modules/dunes/usecase"
)

func NewHTTPHandler(network common.Network, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(network, usecase)
}
