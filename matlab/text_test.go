package matlab

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChars(t *testing.T) {
	le, be := binary.LittleEndian, binary.BigEndian
	cases := []struct {
		name string
		t    DataType
		bo   binary.ByteOrder
		data []byte
		want string
	}{
		{"utf8", DTmiUTF8, le, []byte("héllo"), "héllo"},
		{"latin1", DTmiUINT8, le, []byte{'c', 'a', 'f', 0xe9}, "café"},
		{"utf16le", DTmiUTF16, le, encode(t, le, []uint16{'o', 0x00f8}), "oø"},
		{"ucs2be", DTmiUINT16, be, encode(t, be, []uint16{'a', 'b'}), "ab"},
		{"utf32le", DTmiUTF32, le, encode(t, le, []uint32{0x1f600}), "\U0001F600"},
		{"utf16 surrogates", DTmiUTF16, be, encode(t, be, []uint16{0xD83D, 0xDE00}), "😀"},
		{"utf32 to units", DTmiUINT32, be, encode(t, be, []uint32{'x'}), "x"},
		{"empty", DTmiUTF16, be, nil, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := decodeChars(c.t, c.bo, c.data)
			require.NoError(t, err)
			assert.Equal(t, c.want, string(utf16.Decode(got)))
		})
	}

	units, err := decodeChars(DTmiUTF32, le, encode(t, le, []uint32{0x1f600}))
	require.NoError(t, err)
	assert.Len(t, units, 2, "non-BMP characters take two code units")

	_, err = decodeChars(DTmiDOUBLE, le, make([]byte, 8))
	assert.True(t, errors.Is(err, ErrUnknownTypeCode))

	_, err = decodeChars(DTmiUTF16, le, []byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrMalformedTag))
}
