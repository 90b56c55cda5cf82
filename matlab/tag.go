package matlab

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const tagLen = 8

// Tag is the header of a data element.
type Tag struct {
	Type   DataType
	Length uint32 // payload bytes, excluding padding

	small  bool
	inline [4]byte
}

// IsSmall reports whether the element used the small data element format,
// where type, length and up to four payload bytes share one 8 byte unit.
func (t Tag) IsSmall() bool {
	return t.small
}

// Inline returns the payload of a small data element.
func (t Tag) Inline() []byte {
	if !t.small {
		return nil
	}
	return t.inline[:t.Length]
}

// Reads the first 8 bytes. The 8 bytes can be one of two formats: Normal and small data element (sde) format.
// Note that contrary to what the MAT-File Format document says, you have to consider endianness before parsing the first type bytes.
//
// remaining is the number of bytes left in the stream including the tag, or
// -1 when unknown. A clean end of stream returns io.EOF.
func readTag(r io.Reader, bo binary.ByteOrder, remaining int64) (Tag, error) {
	var buf [tagLen]byte
	if n, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			return Tag{}, io.EOF
		}
		return Tag{}, errors.Wrapf(ErrMalformedTag, "short tag: %d of %d bytes", n, tagLen)
	}
	word := bo.Uint32(buf[:4])
	if sdeLen := word >> 16; sdeLen != 0 {
		if sdeLen > 4 {
			return Tag{}, errors.Wrapf(ErrMalformedTag, "small element declares %d bytes", sdeLen)
		}
		t := Tag{Type: DataType(word & 0xffff), Length: sdeLen, small: true}
		copy(t.inline[:], buf[4:])
		return t, nil
	}
	t := Tag{Type: DataType(word), Length: bo.Uint32(buf[4:])}
	if remaining >= 0 && int64(t.Length) > remaining-tagLen {
		return Tag{}, errors.Wrapf(ErrMalformedTag, "%s declares %d bytes, %d remain", t.Type, t.Length, remaining-tagLen)
	}
	return t, nil
}

// readPayload reads the payload of a normal tag. The buffer grows with
// the bytes actually read, so a corrupt length on a stream of unknown size
// fails at the end of the data instead of allocating t.Length bytes up front.
func readPayload(r io.Reader, t Tag) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(t.Length))
	if err == io.EOF {
		return nil, errors.Wrapf(ErrMalformedTag, "%s declares %d bytes, stream ends after %d", t.Type, t.Length, n)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s payload", t.Type)
	}
	return buf.Bytes(), nil
}

// Page 1-10 of the MAT-File Format document says the value of num bytes field does not include padding for types other than matrix.
// This function returns the number of bytes to read for an element that may or may not have padding.
func padTo64Bit(p int) int {
	return (p + 7) &^ 7
}

// subReader walks the sub-elements packed inside an in-memory payload.
type subReader struct {
	r  *bytes.Reader
	bo binary.ByteOrder
}

func newSubReader(data []byte, bo binary.ByteOrder) *subReader {
	return &subReader{r: bytes.NewReader(data), bo: bo}
}

func (s *subReader) offset() int64 {
	return s.r.Size() - int64(s.r.Len())
}

func (s *subReader) done() bool {
	return s.r.Len() == 0
}

// next reads one sub-element and returns its tag and unpadded data. The
// padding implied by the declared length is consumed as well, except where
// the payload ends first.
func (s *subReader) next() (Tag, []byte, error) {
	t, err := readTag(s.r, s.bo, int64(s.r.Len()))
	if err != nil {
		return Tag{}, nil, err
	}
	if t.small {
		return t, t.Inline(), nil
	}
	data, err := readPayload(s.r, t)
	if err != nil {
		return Tag{}, nil, err
	}
	pad := int64(padTo64Bit(int(t.Length)) - int(t.Length))
	if pad > int64(s.r.Len()) {
		pad = int64(s.r.Len())
	}
	if _, err := s.r.Seek(pad, io.SeekCurrent); err != nil {
		return Tag{}, nil, errors.Wrap(err, "skipping padding")
	}
	return t, data, nil
}

// rest returns the unread part of the payload without consuming it.
func (s *subReader) rest() []byte {
	buf := make([]byte, s.r.Len())
	n, _ := s.r.ReadAt(buf, s.offset())
	return buf[:n]
}
