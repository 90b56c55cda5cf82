package matlab

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

const testHeaderText = "MATLAB 5.0 MAT-file, Platform: posix, Created on: Mon Feb 18 17:12:08 2013"

// header builds a 128 byte header with the given endian marker.
func header(bo binary.ByteOrder, marker string) []byte {
	buf := bytes.Repeat([]byte{' '}, headerLen)
	copy(buf, testHeaderText)
	copy(buf[headerTextLen:], make([]byte, headerSubsystemOffsetLen))
	bo.PutUint16(buf[headerVersionOffset:], 0x0100)
	copy(buf[headerEndianOffset:], marker)
	return buf
}

func encode(t *testing.T, bo binary.ByteOrder, values interface{}) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, binary.Write(&b, bo, values))
	return b.Bytes()
}

// rawElement is a tag and payload without padding.
func rawElement(bo binary.ByteOrder, dt DataType, payload []byte) []byte {
	buf := make([]byte, tagLen, tagLen+len(payload))
	bo.PutUint32(buf, uint32(dt))
	bo.PutUint32(buf[4:], uint32(len(payload)))
	return append(buf, payload...)
}

// element is a tag and payload padded to 8 bytes.
func element(bo binary.ByteOrder, dt DataType, payload []byte) []byte {
	buf := rawElement(bo, dt, payload)
	return append(buf, make([]byte, padTo64Bit(len(payload))-len(payload))...)
}

// smallElement packs up to four payload bytes into one 8 byte unit.
func smallElement(bo binary.ByteOrder, dt DataType, payload []byte) []byte {
	buf := make([]byte, tagLen)
	bo.PutUint32(buf, uint32(len(payload))<<16|uint32(dt))
	copy(buf[4:], payload)
	return buf
}

func flagsElement(bo binary.ByteOrder, class Class, flags byte, nzmax uint32) []byte {
	payload := make([]byte, 8)
	bo.PutUint32(payload, uint32(flags)<<8|uint32(class))
	bo.PutUint32(payload[4:], nzmax)
	return element(bo, DTmiUINT32, payload)
}

func dimsElement(t *testing.T, bo binary.ByteOrder, dims ...int32) []byte {
	return element(bo, DTmiINT32, encode(t, bo, dims))
}

func nameElement(bo binary.ByteOrder, name string) []byte {
	if n := len(name); n > 0 && n <= 4 {
		return smallElement(bo, DTmiINT8, []byte(name))
	}
	return element(bo, DTmiINT8, []byte(name))
}

func matrixElement(bo binary.ByteOrder, parts ...[]byte) []byte {
	return element(bo, DTmiMATRIX, bytes.Join(parts, nil))
}

// compressed wraps an element in a miCOMPRESSED element. MATLAB does not pad
// compressed elements.
func compressed(t *testing.T, bo binary.ByteOrder, el []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	_, err := zw.Write(el)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return rawElement(bo, DTmiCOMPRESSED, b.Bytes())
}

// doubleMatrix is a dense real mxDOUBLE element.
func doubleMatrix(t *testing.T, bo binary.ByteOrder, name string, rows, cols int32, colMajor []float64) []byte {
	return matrixElement(bo,
		flagsElement(bo, MxDouble, 0, 0),
		dimsElement(t, bo, rows, cols),
		nameElement(bo, name),
		element(bo, DTmiDOUBLE, encode(t, bo, colMajor)),
	)
}

// grid3x4 is [[1,2,3,4],[5,6,7,8],[9,10,11,12]] in column-major order.
var grid3x4 = []float64{1, 5, 9, 2, 6, 10, 3, 7, 11, 4, 8, 12}

func matFile(bo binary.ByteOrder, marker string, elements ...[]byte) *bytes.Reader {
	return bytes.NewReader(append(header(bo, marker), bytes.Join(elements, nil)...))
}
