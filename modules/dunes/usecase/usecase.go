package usecase

import (
	"github.com/bitapeslabs/nana/modules/dunes/datagateway"
)

type Usecase struct {
	dunesDg datagateway.DunesReaderDataGateway
}

func New(dunesDg datagateway.DunesReaderDataGateway) *Usecase {
	return &Usecase{
		dunesDg: dunesDg,
	}
}
