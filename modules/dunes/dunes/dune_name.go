package dunes

import (
	"math/big"
	"regexp"
	"slices"
	"strings"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/bitapeslabs/nana/common/errs"
)

// DuneName is the unique protocol name of a dune.
type DuneName string

var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,31}$`)

func (n DuneName) IsValid() bool {
	return nameRegexp.MatchString(string(n))
}

func (n DuneName) String() string {
	return string(n)
}

var ErrInvalidBase26 = errs.ErrorKind("invalid base-26 character: must be in the range [A-Z]")

// base26 interprets the uppercased name as a modified base-26 integer where
// "A" = 0, "Z" = 25, "AA" = 26 and so on. Names containing characters outside
// [A-Za-z] have no base-26 value.
func (n DuneName) base26() (*big.Int, error) {
	x := big.NewInt(0)
	one := big.NewInt(1)
	int26 := big.NewInt(26)
	for i, char := range strings.ToUpper(string(n)) {
		if i > 0 {
			x = x.Add(x, one)
		}
		x = x.Mul(x, int26)
		if char < 'A' || char > 'Z' {
			return nil, ErrInvalidBase26
		}
		x = x.Add(x, big.NewInt(int64(char-'A')))
	}
	return x, nil
}

// nameFromBase26 is the inverse of base26.
func nameFromBase26(value *big.Int) DuneName {
	chars := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// value = value + 1
	value = new(big.Int).Add(value, big.NewInt(1))
	var encoded []byte
	for value.Sign() > 0 {
		// idx = (value - 1) % 26
		idx := new(big.Int).Mod(new(big.Int).Sub(value, big.NewInt(1)), big.NewInt(26)).Int64()
		encoded = append(encoded, chars[idx])
		// value = (value - 1) / 26
		value = new(big.Int).Div(new(big.Int).Sub(value, big.NewInt(1)), big.NewInt(26))
	}
	slices.Reverse(encoded)
	return DuneName(encoded)
}

var firstReservedName = utils.Must(new(big.Int).SetString("6402364363415443603228541259936211926", 10))

// IsReserved reports whether the name falls in the process-reserved range
// used for unnamed etchings.
func (n DuneName) IsReserved() bool {
	value, err := n.base26()
	if err != nil {
		return false
	}
	return value.Cmp(firstReservedName) >= 0
}

// ReservedDuneName generates the reserved name assigned to an unnamed etching
// at the given block height and transaction index.
func ReservedDuneName(blockHeight uint64, txIndex uint32) DuneName {
	// firstReservedName + ((blockHeight << 32) | txIndex)
	increment := new(big.Int).SetUint64(blockHeight)
	increment = increment.Lsh(increment, 32)
	increment = increment.Or(increment, new(big.Int).SetUint64(uint64(txIndex)))
	return nameFromBase26(new(big.Int).Add(firstReservedName, increment))
}

// Commitment returns the commitment bytes of the name: the 16-byte
// little-endian encoding of its base-26 value with trailing zero bytes
// stripped. Names without a base-26 value (containing characters outside
// [A-Za-z]) or whose value does not fit in 128 bits cannot be committed to.
func (n DuneName) Commitment() ([]byte, bool) {
	value, err := n.base26()
	if err != nil {
		return nil, false
	}
	if value.BitLen() > 128 {
		return nil, false
	}
	bytes := value.Bytes()
	slices.Reverse(bytes)
	return bytes, true
}

// MinimumNameLength returns the minimum allowed name length for an etching at
// the given block height. Starting at INITIAL_AVAILABLE, the minimum decreases
// by one every UNLOCK_INTERVAL blocks.
func MinimumNameLength(height uint64) int {
	if height <= GENESIS_BLOCK {
		return INITIAL_AVAILABLE
	}
	unlocked := (height - GENESIS_BLOCK) / UNLOCK_INTERVAL
	if unlocked >= INITIAL_AVAILABLE {
		return 0
	}
	return INITIAL_AVAILABLE - int(unlocked)
}
