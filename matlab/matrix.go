package matlab

import (
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// flags indicating whether the numeric data is complex, global or logical. See page 1-16 of the MAT-File Format document.
type Flags struct {
	Complex bool
	Global  bool
	Logical bool
}

// Matrix is a decoded miMATRIX element. Values are kept in column-major order.
type Matrix struct {
	Name      string
	Dimension []int // at least length 2
	Flags     Flags
	Class     Class
	NzMax     uint32 // sparse only; a capacity hint, not the nonzero count

	Real *Array // nonzero values for sparse arrays
	Imag *Array // nil unless Flags.Complex

	RowIndex *Index // sparse only, one entry per nonzero
	ColPtr   *Index // sparse only, columns+1 entries

	dtype Dtype
	chars []uint16 // UTF-16 code units, column-major
}

// hint to the compiler
var _ Element = &Matrix{}

func (m *Matrix) Type() DataType {
	return DTmiMATRIX
}

// Value returns the flat value buffer, see Values. Character arrays return
// their []uint16 UTF-16 code units.
func (m *Matrix) Value() interface{} {
	if m.Class == MxChar {
		return m.chars
	}
	if v := m.Values(); v != nil {
		return v.Data
	}
	return nil
}

// Dtype is the element dtype of the matrix, complex when Flags.Complex is set.
func (m *Matrix) Dtype() Dtype {
	return m.dtype
}

// NumElements is the product of the dimensions.
func (m *Matrix) NumElements() int {
	if len(m.Dimension) == 0 {
		return 0
	}
	n := 1
	for _, d := range m.Dimension {
		n *= d
	}
	return n
}

// IsSparse reports whether the matrix holds sparse storage.
func (m *Matrix) IsSparse() bool {
	return m.Class == MxSparse
}

// NNZ is the number of stored nonzeros of a sparse matrix, or the element
// count of a dense one.
func (m *Matrix) NNZ() int {
	if m.IsSparse() {
		return m.Real.Len()
	}
	return m.NumElements()
}

// Values returns real values, or real and imaginary parts joined into a
// complex64/complex128 array when the matrix is complex.
func (m *Matrix) Values() *Array {
	if m.Real == nil {
		return nil
	}
	if m.Imag == nil {
		return m.Real
	}
	v, err := combine(m.Real, m.Imag, m.dtype)
	if err != nil {
		// lengths were checked when the matrix was decoded
		return nil
	}
	return v
}

// DoubleArray is a convenience method to extract the matrix value as []float64.
// Sparse matrices return their nonzeros; use Dense for the full array.
func (m *Matrix) DoubleArray() ([]float64, error) {
	if m.Flags.Complex {
		return nil, errors.Errorf("matlab: %q is complex, use ComplexArray", m.Name)
	}
	if m.Real == nil {
		return nil, errors.Errorf("matlab: %q has no numeric data", m.Name)
	}
	return m.Real.Float64s()
}

// IntArray is a convenience method to extract the matrix value as []int64.
func (m *Matrix) IntArray() ([]int64, error) {
	if m.Flags.Complex || m.Real == nil {
		return nil, errors.Errorf("matlab: %q is not a real integer array", m.Name)
	}
	return m.Real.Int64s()
}

// ComplexArray returns the values as complex128, imaginary parts zero for real matrices.
func (m *Matrix) ComplexArray() ([]complex128, error) {
	v := m.Values()
	if v == nil {
		return nil, errors.Errorf("matlab: %q has no numeric data", m.Name)
	}
	return v.Complex128s()
}

// Dense returns the real values of the matrix as a full column-major
// []float64, expanding sparse storage.
func (m *Matrix) Dense() ([]float64, error) {
	if !m.IsSparse() {
		return m.DoubleArray()
	}
	if m.Flags.Complex {
		return nil, errors.Errorf("matlab: %q is complex, use DenseComplex", m.Name)
	}
	vals, err := m.Real.Float64s()
	if err != nil {
		return nil, err
	}
	out := make([]float64, m.NumElements())
	m.scatter(func(i, k int) { out[i] = vals[k] })
	return out, nil
}

// DenseComplex is Dense for complex values, expanding sparse storage.
func (m *Matrix) DenseComplex() ([]complex128, error) {
	vals, err := m.ComplexArray()
	if err != nil || !m.IsSparse() {
		return vals, err
	}
	out := make([]complex128, m.NumElements())
	m.scatter(func(i, k int) { out[i] = vals[k] })
	return out, nil
}

// scatter calls set with the column-major position and the value index of
// every stored nonzero of a sparse matrix.
func (m *Matrix) scatter(set func(i, k int)) {
	rows := m.Dimension[0]
	ir, jc := m.RowIndex.Ints(), m.ColPtr.Ints()
	for c := 0; c+1 < len(jc); c++ {
		for k := jc[c]; k < jc[c+1]; k++ {
			set(c*rows+ir[k], k)
		}
	}
}

// RowMajor returns the two dimensional matrix as rows of float64.
func (m *Matrix) RowMajor() ([][]float64, error) {
	if len(m.Dimension) != 2 {
		return nil, errors.Errorf("matlab: %q has %d dimensions", m.Name, len(m.Dimension))
	}
	flat, err := m.Dense()
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dimension[0], m.Dimension[1]
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			out[r][c] = flat[c*rows+r]
		}
	}
	return out, nil
}

// Strings returns each row of a character array as a string. Surrogate
// pairs are joined once a row is assembled.
func (m *Matrix) Strings() ([]string, error) {
	if m.Class != MxChar {
		return nil, errors.Errorf("matlab: %q is a %s, not a character array", m.Name, m.Class)
	}
	if len(m.Dimension) == 0 || m.Dimension[0] == 0 {
		return nil, nil
	}
	rows := m.Dimension[0]
	cols := len(m.chars) / rows
	out := make([]string, rows)
	row := make([]uint16, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			row[c] = m.chars[c*rows+r]
		}
		out[r] = string(utf16.Decode(row))
	}
	return out, nil
}

// Text returns the text of a character array, rows joined by newlines.
func (m *Matrix) Text() string {
	rows, err := m.Strings()
	if err != nil {
		return ""
	}
	return strings.Join(rows, "\n")
}
