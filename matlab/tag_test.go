package matlab

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTagSmallElement(t *testing.T) {
	for _, bo := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(bo.String(), func(t *testing.T) {
			data := append(smallElement(bo, DTmiINT8, []byte("ab")), 0xAA, 0xBB)
			r := bytes.NewReader(data)

			tag, err := readTag(r, bo, int64(r.Len()))
			require.NoError(t, err)
			assert.True(t, tag.IsSmall())
			assert.Equal(t, DTmiINT8, tag.Type)
			assert.Equal(t, uint32(2), tag.Length)
			assert.Equal(t, []byte("ab"), tag.Inline())
			assert.Equal(t, []byte("ab"), tag.Inline(), "inline payload is stable across reads")
			assert.Equal(t, 2, r.Len(), "tag consumes exactly 8 bytes")
		})
	}
}

func TestReadTagNormal(t *testing.T) {
	bo := binary.LittleEndian
	data := element(bo, DTmiDOUBLE, make([]byte, 16))
	r := bytes.NewReader(data)

	tag, err := readTag(r, bo, int64(r.Len()))
	require.NoError(t, err)
	assert.False(t, tag.IsSmall())
	assert.Nil(t, tag.Inline())
	assert.Equal(t, DTmiDOUBLE, tag.Type)
	assert.Equal(t, uint32(16), tag.Length)
	assert.Equal(t, 16, r.Len())
}

func TestReadTagErrors(t *testing.T) {
	bo := binary.LittleEndian

	_, err := readTag(bytes.NewReader(nil), bo, 0)
	assert.Equal(t, io.EOF, err)

	_, err = readTag(bytes.NewReader([]byte{1, 2, 3}), bo, 3)
	assert.True(t, errors.Is(err, ErrMalformedTag))

	long := rawElement(bo, DTmiUINT8, make([]byte, 4))
	bo.PutUint32(long[4:], 100)
	_, err = readTag(bytes.NewReader(long), bo, int64(len(long)))
	assert.True(t, errors.Is(err, ErrMalformedTag))

	// unknown remaining size defers the check to the payload read
	tag, err := readTag(bytes.NewReader(long), bo, -1)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), tag.Length)

	bad := make([]byte, 8)
	bo.PutUint32(bad, 7<<16|uint32(DTmiUINT8))
	_, err = readTag(bytes.NewReader(bad), bo, 8)
	assert.True(t, errors.Is(err, ErrMalformedTag))
}

func TestSubReaderConsumesPadding(t *testing.T) {
	bo := binary.LittleEndian
	data := append(element(bo, DTmiUINT8, []byte{1, 2, 3, 4, 5, 6}), smallElement(bo, DTmiUINT8, []byte{9})...)
	s := newSubReader(data, bo)

	tag, payload, err := s.next()
	require.NoError(t, err)
	assert.Equal(t, uint32(6), tag.Length)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, payload)
	assert.Equal(t, int64(16), s.offset(), "6 data bytes plus 2 padding bytes")

	tag, payload, err = s.next()
	require.NoError(t, err)
	assert.True(t, tag.IsSmall())
	assert.Equal(t, []byte{9}, payload)
	assert.True(t, s.done())

	_, _, err = s.next()
	assert.Equal(t, io.EOF, err)
}

func TestSubReaderTruncatedPadding(t *testing.T) {
	bo := binary.BigEndian
	data := rawElement(bo, DTmiUINT8, []byte{1, 2, 3})
	s := newSubReader(data, bo)

	_, payload, err := s.next()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)
	assert.True(t, s.done())
}

func TestPadTo64Bit(t *testing.T) {
	assert.Equal(t, 0, padTo64Bit(0))
	assert.Equal(t, 8, padTo64Bit(1))
	assert.Equal(t, 8, padTo64Bit(6))
	assert.Equal(t, 8, padTo64Bit(8))
	assert.Equal(t, 16, padTo64Bit(9))
}
