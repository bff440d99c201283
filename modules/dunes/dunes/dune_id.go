package dunes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DuneId is the protocol identifier of a dune: the block height and
// transaction index of its etching.
type DuneId struct {
	BlockHeight uint64
	TxIndex     uint32
}

func NewDuneId(blockHeight uint64, txIndex uint32) DuneId {
	return DuneId{
		BlockHeight: blockHeight,
		TxIndex:     txIndex,
	}
}

// GenesisDuneId is the synthetic id of the genesis dune.
var GenesisDuneId = DuneId{BlockHeight: 1, TxIndex: 0}

var (
	ErrInvalidSeparator       = errors.New("invalid dune id: must contain exactly one separator")
	ErrCannotParseBlockHeight = errors.New("invalid dune id: cannot parse block height")
	ErrCannotParseTxIndex     = errors.New("invalid dune id: cannot parse tx index")
	ErrInvalidSelfReference   = errors.New("invalid dune id: block 0 requires tx index 0")
)

func NewDuneIdFromString(str string) (DuneId, error) {
	strs := strings.Split(str, ":")
	if len(strs) != 2 {
		return DuneId{}, ErrInvalidSeparator
	}
	blockHeightStr, txIndexStr := strs[0], strs[1]
	blockHeight, err := strconv.ParseUint(blockHeightStr, 10, 32)
	if err != nil {
		return DuneId{}, errors.WithStack(errors.Join(err, ErrCannotParseBlockHeight))
	}
	txIndex, err := strconv.ParseUint(txIndexStr, 10, 32)
	if err != nil {
		return DuneId{}, errors.WithStack(errors.Join(err, ErrCannotParseTxIndex))
	}
	// "0:0" is the self-reference form; any other id in block 0 is invalid.
	if blockHeight == 0 && txIndex != 0 {
		return DuneId{}, errors.WithStack(ErrInvalidSelfReference)
	}
	return DuneId{
		BlockHeight: blockHeight,
		TxIndex:     uint32(txIndex),
	}, nil
}

func (d DuneId) IsZero() bool {
	return d == DuneId{}
}

func (d DuneId) String() string {
	return fmt.Sprintf("%d:%d", d.BlockHeight, d.TxIndex)
}

func (d DuneId) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DuneId) UnmarshalText(text []byte) error {
	parsed, err := NewDuneIdFromString(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	*d = parsed
	return nil
}
