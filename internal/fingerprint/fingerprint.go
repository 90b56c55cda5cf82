// Package fingerprint computes content digests of decoded matrices, so two
// variables can be compared without comparing their values element by element.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/zeebo/blake3"

	"github.com/thisMagpie/nmatrix/matlab"
)

// Sum returns the BLAKE3 digest of m. The digest covers class, dtype,
// dimensions, flags, sparse indices and values, all written little-endian,
// so it does not depend on the byte order the file was stored in. The name is
// not included.
func Sum(m *matlab.Matrix) [32]byte {
	h := blake3.New()
	var b [8]byte
	u64 := func(v uint64) {
		binary.LittleEndian.PutUint64(b[:], v)
		_, _ = h.Write(b[:])
	}

	u64(uint64(m.Class))
	u64(uint64(m.Dtype()))
	u64(uint64(len(m.Dimension)))
	for _, d := range m.Dimension {
		u64(uint64(d))
	}
	var flags uint64
	if m.Flags.Complex {
		flags |= 1
	}
	if m.Flags.Logical {
		flags |= 2
	}
	u64(flags)

	if m.Class == matlab.MxChar {
		_, _ = h.Write([]byte(m.Text()))
	}
	for _, x := range []*matlab.Index{m.RowIndex, m.ColPtr} {
		for _, v := range x.Ints() {
			u64(uint64(v))
		}
	}
	for _, a := range []*matlab.Array{m.Real, m.Imag} {
		if a == nil {
			continue
		}
		if ints, err := a.Int64s(); err == nil {
			for _, v := range ints {
				u64(uint64(v))
			}
			continue
		}
		if vals, err := a.Float64s(); err == nil {
			for _, v := range vals {
				u64(math.Float64bits(v))
			}
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hex returns Sum as a hex string.
func Hex(m *matlab.Matrix) string {
	s := Sum(m)
	return hex.EncodeToString(s[:])
}
