package hexutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tables := []struct {
		name string
		in   string
		want []byte
	}{
		{"empty", "", []byte{}},
		{"spaced", "00 FF AB 12", []byte{0x00, 0xff, 0xab, 0x12}},
		{"contiguous", "00ffab12", []byte{0x00, 0xff, 0xab, 0x12}},
		{"prefix", "0x55BE", []byte{0x55, 0xbe}},
		{"upper prefix", "0X55be", []byte{0x55, 0xbe}},
		{"multiline", "55be 4fa5\n\t315e\r\n", []byte{0x55, 0xbe, 0x4f, 0xa5, 0x31, 0x5e}},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, err := Parse(table.in)
			require.NoError(t, err)
			assert.Equal(t, table.want, b)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tables := []struct {
		name string
		in   string
		msg  string
	}{
		{"odd", "ABC", "odd number of digits"},
		{"split digit", "A BC", "odd number of digits"},
		{"bad character", "ZZ", "unexpected 'Z'"},
		{"prefix inside", "00 0x11", "unexpected 'x'"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Parse(table.in)
			assert.ErrorIs(t, err, ErrInvalidHex)
			assert.Contains(t, err.Error(), table.msg)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00 FF AB 12", Format([]byte{0x00, 0xff, 0xab, 0x12}))
	assert.Equal(t, "", Format(nil))

	b, err := Parse(Format([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)
}
