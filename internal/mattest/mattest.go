// Package mattest builds small Level 5 .mat files for tests.
package mattest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// storage type and class codes used by the builders
const (
	miINT8       = 1
	miINT32      = 5
	miUINT32     = 6
	miDOUBLE     = 9
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16

	mxCHAR   = 4
	mxSPARSE = 5
	mxDOUBLE = 6
)

const HeaderText = "MATLAB 5.0 MAT-file, Platform: posix, Created on: Mon Feb 18 17:12:08 2013"

// Builder encodes elements in one byte order.
type Builder struct {
	Order  binary.ByteOrder
	Marker string
}

var (
	LE = Builder{Order: binary.LittleEndian, Marker: "IM"}
	BE = Builder{Order: binary.BigEndian, Marker: "MI"}
)

// File prepends a header to the elements.
func (b Builder) File(elements ...[]byte) []byte {
	buf := bytes.Repeat([]byte{' '}, 128)
	copy(buf, HeaderText)
	copy(buf[116:], make([]byte, 8))
	b.Order.PutUint16(buf[124:], 0x0100)
	copy(buf[126:], b.Marker)
	return append(buf, bytes.Join(elements, nil)...)
}

func (b Builder) element(dt uint32, payload []byte) []byte {
	buf := make([]byte, 8, 8+len(payload)+7)
	b.Order.PutUint32(buf, dt)
	b.Order.PutUint32(buf[4:], uint32(len(payload)))
	buf = append(buf, payload...)
	if pad := (8 - len(payload)%8) % 8; pad > 0 {
		buf = append(buf, make([]byte, pad)...)
	}
	return buf
}

func (b Builder) encode(values interface{}) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, b.Order, values); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (b Builder) matrix(class, flags byte, nzmax uint32, dims []int32, name string, data ...[]byte) []byte {
	fl := make([]byte, 8)
	b.Order.PutUint32(fl, uint32(flags)<<8|uint32(class))
	b.Order.PutUint32(fl[4:], nzmax)
	parts := [][]byte{
		b.element(miUINT32, fl),
		b.element(miINT32, b.encode(dims)),
		b.element(miINT8, []byte(name)),
	}
	parts = append(parts, data...)
	return b.element(miMATRIX, bytes.Join(parts, nil))
}

// Double is a dense real double matrix with values in column-major order.
func (b Builder) Double(name string, rows, cols int32, colMajor []float64) []byte {
	return b.matrix(mxDOUBLE, 0, 0, []int32{rows, cols}, name, b.element(miDOUBLE, b.encode(colMajor)))
}

// Complex is a dense complex double matrix.
func (b Builder) Complex(name string, rows, cols int32, re, im []float64) []byte {
	return b.matrix(mxDOUBLE, 0x08, 0, []int32{rows, cols}, name,
		b.element(miDOUBLE, b.encode(re)),
		b.element(miDOUBLE, b.encode(im)))
}

// Sparse is a real sparse double matrix.
func (b Builder) Sparse(name string, rows, cols int32, ir, jc []int32, pr []float64) []byte {
	return b.matrix(mxSPARSE, 0, uint32(len(ir)), []int32{rows, cols}, name,
		b.element(miINT32, b.encode(ir)),
		b.element(miINT32, b.encode(jc)),
		b.element(miDOUBLE, b.encode(pr)))
}

// ComplexSparse is a complex sparse double matrix.
func (b Builder) ComplexSparse(name string, rows, cols int32, ir, jc []int32, pr, pi []float64) []byte {
	return b.matrix(mxSPARSE, 0x08, uint32(len(ir)), []int32{rows, cols}, name,
		b.element(miINT32, b.encode(ir)),
		b.element(miINT32, b.encode(jc)),
		b.element(miDOUBLE, b.encode(pr)),
		b.element(miDOUBLE, b.encode(pi)))
}

// Char is a 1xN character array holding ASCII text.
func (b Builder) Char(name, text string) []byte {
	return b.matrix(mxCHAR, 0, 0, []int32{1, int32(len(text))}, name, b.element(miUTF8, []byte(text)))
}

// Compressed wraps el in an unpadded miCOMPRESSED element.
func (b Builder) Compressed(el []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(el); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	out := make([]byte, 8, 8+buf.Len())
	b.Order.PutUint32(out, miCOMPRESSED)
	b.Order.PutUint32(out[4:], uint32(buf.Len()))
	return append(out, buf.Bytes()...)
}

// WriteFile writes data to name inside a test temp dir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
