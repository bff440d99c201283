package dunes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDuneIdFromString(t *testing.T) {
	test := func(input string, expected DuneId, wantErr bool) {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			duneId, err := NewDuneIdFromString(input)
			if wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, expected, duneId)
		})
	}

	test("840000:1", DuneId{BlockHeight: 840_000, TxIndex: 1}, false)
	test("1:0", DuneId{BlockHeight: 1, TxIndex: 0}, false)
	test("0:0", DuneId{}, false)
	test("0:1", DuneId{}, true)
	test("840000", DuneId{}, true)
	test("840000:1:2", DuneId{}, true)
	test("abc:1", DuneId{}, true)
	test("840000:xyz", DuneId{}, true)
	test("-1:0", DuneId{}, true)
}

func TestDuneIdString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "840000:7", NewDuneId(840_000, 7).String())
	assert.Equal(t, "1:0", GenesisDuneId.String())
}
