package matlab

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Before release v7.1 (release 14) matlab used the system default character
// encoding padded out to 16 bits; that is what miUINT16 char data holds.
// Later releases write miUTF8 when the text is 7-bit ASCII and miUTF16 otherwise.
//
// char dimensions count UTF-16 code units, so every encoding is brought to
// code units here; a character outside the BMP takes two of them.
func decodeChars(t DataType, bo binary.ByteOrder, data []byte) ([]uint16, error) {
	var dec *encoding.Decoder
	switch t {
	case DTmiUTF16, DTmiUINT16:
		if len(data)%2 != 0 {
			return nil, errors.Wrapf(ErrMalformedTag, "%d bytes of %s text", len(data), t)
		}
		units := make([]uint16, len(data)/2)
		for i := range units {
			units[i] = bo.Uint16(data[2*i:])
		}
		return units, nil
	case DTmiUTF8, DTmiUINT8, DTmiINT8:
		if utf8.Valid(data) {
			return utf16.Encode([]rune(string(data))), nil
		}
		// Octave writes Latin-1 bytes as miUINT8.
		dec = charmap.ISO8859_1.NewDecoder()
	case DTmiUTF32, DTmiUINT32:
		dec = utf32.UTF32(utf32Endianness(bo), utf32.IgnoreBOM).NewDecoder()
	default:
		return nil, errors.Wrapf(ErrUnknownTypeCode, "%s is not character data", t)
	}
	out, err := dec.Bytes(data)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMatrix, "decoding %s text: %v", t, err)
	}
	return utf16.Encode([]rune(string(out))), nil
}

func utf32Endianness(bo binary.ByteOrder) utf32.Endianness {
	var b [2]byte
	bo.PutUint16(b[:], 1)
	if b[1] == 1 {
		return utf32.BigEndian
	}
	return utf32.LittleEndian
}
