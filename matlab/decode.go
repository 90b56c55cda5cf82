package matlab

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// array flag bits, second byte of the first flags word
const (
	flagLogical = 0x02
	flagGlobal  = 0x04
	flagComplex = 0x08
)

type decoder struct {
	bo         binary.ByteOrder
	cat        *Catalog
	log        *logrus.Entry
	maxDepth   int
	maxInflate int64
}

func newDecoder(bo binary.ByteOrder, opts *options) *decoder {
	return &decoder{
		bo:         bo,
		cat:        opts.catalog,
		log:        opts.log,
		maxDepth:   opts.maxDepth,
		maxInflate: opts.maxInflateSize,
	}
}

// nameError carries the variable name of a matrix that failed after its name
// sub-element was read.
type nameError struct {
	name string
	err  error
}

func (e *nameError) Error() string { return e.err.Error() }
func (e *nameError) Unwrap() error { return e.err }

// decode turns one data element into a *Matrix, *NumericArray or *Skipped.
// depth counts the miCOMPRESSED wrappers already opened.
func (d *decoder) decode(t Tag, payload []byte, depth int) (Element, error) {
	if t.small {
		payload = t.Inline()
	}
	switch t.Type {
	case DTmiCOMPRESSED:
		if depth >= d.maxDepth {
			return nil, errors.Wrapf(ErrDecompression, "compressed elements nested deeper than %d", d.maxDepth)
		}
		raw, err := inflate(payload, d.maxInflate)
		if err != nil {
			return nil, err
		}
		d.log.Debugf("inflated %d bytes to %d", len(payload), len(raw))
		s := newSubReader(raw, d.bo)
		inner, data, err := s.next()
		if err != nil {
			if err == io.EOF {
				return nil, errors.Wrap(ErrDecompression, "compressed element is empty")
			}
			return nil, err
		}
		if !s.done() {
			d.log.Debugf("ignoring %d bytes after the first element of a compressed stream", len(s.rest()))
		}
		return d.decode(inner, data, depth+1)
	case DTmiMATRIX:
		return d.matrix(payload)
	}
	raw, err := unpack(d.cat, t.Type, d.bo, payload)
	if err != nil {
		return nil, err
	}
	return &NumericArray{typ: t.Type, small: t.small, value: raw}, nil
}

func (d *decoder) matrix(payload []byte) (Element, error) {
	if len(payload) == 0 {
		return &Skipped{}, nil
	}
	s := newSubReader(payload, d.bo)
	flags, class, nzmax, err := d.arrayFlags(s)
	if err != nil {
		return nil, err
	}
	if !class.Supported() {
		if class < MxCell || class > MxOpaque {
			return nil, errors.Wrapf(ErrUnsupportedClass, "class code %d", uint8(class))
		}
		name := d.skippedName(s, class)
		d.log.Debugf("skipping %s %q (%d bytes)", class, name, len(payload))
		return &Skipped{Class: class, Name: name, Length: uint32(len(payload))}, nil
	}

	dim, err := d.dimensionsArray(s)
	if err != nil {
		return nil, err
	}
	name, err := d.arrayName(s)
	if err != nil {
		return nil, err
	}
	m := &Matrix{
		Name:      name,
		Dimension: dim,
		Flags:     flags,
		Class:     class,
		NzMax:     nzmax,
	}
	switch class {
	case MxChar:
		err = d.charData(s, m)
	case MxSparse:
		err = d.sparseData(s, m)
	default:
		err = d.numericData(s, m)
	}
	if err != nil {
		return nil, &nameError{name: name, err: err}
	}
	return m, nil
}

// Docs is wrong about this. The flags word is a uint32 in file byte order:
// class in the low byte, flags in the next one. The second word is nzmax.
func (d *decoder) arrayFlags(s *subReader) (flags Flags, class Class, nzmax uint32, err error) {
	t, data, err := s.next()
	if err != nil {
		return flags, class, 0, errors.Wrap(notEOF(err), "reading array flags")
	}
	if t.Type != DTmiUINT32 {
		return flags, class, 0, errors.Wrapf(ErrInvalidMatrix, "array flags sub element should have type %s, got %s", DTmiUINT32, t.Type)
	}
	if len(data) != 8 {
		return flags, class, 0, errors.Wrapf(ErrInvalidMatrix, "array flags should be 8 bytes, got %d", len(data))
	}
	word := d.bo.Uint32(data[:4])
	f := (word >> 8) & 0xff
	flags = Flags{
		Logical: f&flagLogical != 0,
		Global:  f&flagGlobal != 0,
		Complex: f&flagComplex != 0,
	}
	return flags, Class(word & 0xff), d.bo.Uint32(data[4:]), nil
}

func (d *decoder) dimensionsArray(s *subReader) ([]int, error) {
	t, data, err := s.next()
	if err != nil {
		return nil, errors.Wrap(notEOF(err), "reading dimensions")
	}
	if t.Type != DTmiINT32 {
		return nil, errors.Wrapf(ErrInvalidMatrix, "dimensions sub element should have type %s, got %s", DTmiINT32, t.Type)
	}
	raw, err := unpack(d.cat, t.Type, d.bo, data)
	if err != nil {
		return nil, err
	}
	vals := raw.([]int32)
	if len(vals) < 2 {
		return nil, errors.Wrapf(ErrInvalidMatrix, "%d dimensions, need at least 2", len(vals))
	}
	dim := make([]int, len(vals))
	empty := false
	for i, v := range vals {
		if v > 0 {
			dim[i] = int(v)
		} else {
			empty = true
		}
	}
	if empty {
		return dim, nil
	}
	n := 1
	for _, v := range dim {
		if n > math.MaxInt/v {
			return nil, errors.Wrapf(ErrInvalidMatrix, "dimensions %v overflow the element count", vals)
		}
		n *= v
	}
	return dim, nil
}

// Note that array name can be empty!
func (d *decoder) arrayName(s *subReader) (string, error) {
	t, data, err := s.next()
	if err != nil {
		return "", errors.Wrap(notEOF(err), "reading array name")
	}
	switch t.Type {
	case DTmiINT8, DTmiUINT8, DTmiUTF8:
		return string(data), nil
	default:
		return "", errors.Wrapf(ErrInvalidMatrix, "array name sub element should have type %s, got %s", DTmiINT8, t.Type)
	}
}

// skippedName reads the name of an unsupported array if its layout allows.
// Opaque arrays carry no dimensions before the name.
func (d *decoder) skippedName(s *subReader, class Class) string {
	if class != MxOpaque {
		if _, err := d.dimensionsArray(s); err != nil {
			return ""
		}
	}
	name, err := d.arrayName(s)
	if err != nil {
		return ""
	}
	return name
}

// readRaw reads the next sub-element and unpacks it by its own storage type.
func (d *decoder) readRaw(s *subReader, what string) (interface{}, error) {
	t, data, err := s.next()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrapf(ErrInvalidMatrix, "missing %s", what)
		}
		return nil, errors.Wrapf(err, "reading %s", what)
	}
	return unpack(d.cat, t.Type, d.bo, data)
}

func (d *decoder) numericData(s *subReader, m *Matrix) error {
	dtype, err := d.cat.ClassDtype(m.Class, m.Flags.Complex)
	if err != nil {
		return err
	}
	m.dtype = dtype
	raw, err := d.readRaw(s, "real part")
	if err != nil {
		return err
	}
	if m.Real, err = toArray(raw, realDtype(dtype)); err != nil {
		return err
	}
	if m.Real.Len() != m.NumElements() {
		return errors.Wrapf(ErrInvalidMatrix, "%d values for dimensions %v", m.Real.Len(), m.Dimension)
	}
	if !m.Flags.Complex {
		return nil
	}
	if raw, err = d.readRaw(s, "imaginary part"); err != nil {
		return err
	}
	if m.Imag, err = toArray(raw, realDtype(dtype)); err != nil {
		return err
	}
	if m.Imag.Len() != m.Real.Len() {
		return errors.Wrapf(ErrInvalidMatrix, "imaginary part has %d values, real part %d", m.Imag.Len(), m.Real.Len())
	}
	return nil
}

// A sparse array has 6 sub elements: flags, dims, name, row indices (ir),
// column pointers (jc) and the nonzero values, plus imaginary values when
// complex. The nonzero count is jc[last]; nzmax only sizes ir and pr.
func (d *decoder) sparseData(s *subReader, m *Matrix) error {
	if len(m.Dimension) != 2 {
		return errors.Wrapf(ErrInvalidMatrix, "sparse array with %d dimensions", len(m.Dimension))
	}
	rows, cols := m.Dimension[0], m.Dimension[1]

	dtype := Float64
	if m.Flags.Logical {
		dtype = Byte
	}
	if m.Flags.Complex {
		dtype = Complex128
	}
	m.dtype = dtype
	itype, err := d.cat.IndexDtype(dtype)
	if err != nil {
		return err
	}

	irRaw, err := d.readRaw(s, "sparse row indices")
	if err != nil {
		return err
	}
	jcRaw, err := d.readRaw(s, "sparse column pointers")
	if err != nil {
		return err
	}
	ir, err := convert[int64](irRaw)
	if err != nil {
		return err
	}
	jc, err := convert[int64](jcRaw)
	if err != nil {
		return err
	}
	if len(jc) != cols+1 {
		return errors.Wrapf(ErrInvalidMatrix, "%d column pointers for %d columns", len(jc), cols)
	}
	for c := 1; c < len(jc); c++ {
		if jc[c] < jc[c-1] {
			return errors.Wrapf(ErrInvalidMatrix, "column pointers decrease at column %d", c)
		}
	}
	nnz := int(jc[cols])
	if jc[0] != 0 || len(ir) < nnz {
		return errors.Wrapf(ErrInvalidMatrix, "%d row indices for %d nonzeros", len(ir), nnz)
	}
	ir = ir[:nnz]
	for _, r := range ir {
		if r < 0 || r >= int64(rows) {
			return errors.Wrapf(ErrInvalidMatrix, "row index %d outside %d rows", r, rows)
		}
	}
	if int(m.NzMax) < nnz {
		d.log.Debugf("sparse %q: nzmax %d below nonzero count %d", m.Name, m.NzMax, nnz)
	}
	if m.RowIndex, err = toIndex(ir, itype); err != nil {
		return err
	}
	if m.ColPtr, err = toIndex(jc, itype); err != nil {
		return err
	}

	if s.done() && m.Flags.Logical {
		// some writers leave out the values of logical sparse arrays
		ones := make([]uint8, nnz)
		for i := range ones {
			ones[i] = 1
		}
		m.Real = &Array{Dtype: Byte, Data: ones}
		return nil
	}
	if m.Real, err = d.sparseValues(s, "sparse values", nnz, realDtype(dtype)); err != nil {
		return err
	}
	if m.Flags.Complex {
		if m.Imag, err = d.sparseValues(s, "sparse imaginary values", nnz, realDtype(dtype)); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) sparseValues(s *subReader, what string, nnz int, dtype Dtype) (*Array, error) {
	raw, err := d.readRaw(s, what)
	if err != nil {
		return nil, err
	}
	vals, err := toArray(raw, dtype)
	if err != nil {
		return nil, err
	}
	if vals.Len() < nnz {
		return nil, errors.Wrapf(ErrInvalidMatrix, "%d %s for %d nonzeros", vals.Len(), what, nnz)
	}
	return vals.head(nnz), nil
}

func (d *decoder) charData(s *subReader, m *Matrix) error {
	m.dtype = Char
	if s.done() {
		if m.NumElements() != 0 {
			return errors.Wrap(ErrInvalidMatrix, "missing character data")
		}
		return nil
	}
	t, data, err := s.next()
	if err != nil {
		return errors.Wrap(notEOF(err), "reading character data")
	}
	chars, err := decodeChars(t.Type, d.bo, data)
	if err != nil {
		return err
	}
	if len(chars) != m.NumElements() {
		return errors.Wrapf(ErrInvalidMatrix, "%d UTF-16 code units for dimensions %v", len(chars), m.Dimension)
	}
	m.chars = chars
	return nil
}

// notEOF turns the end of a payload in the middle of a matrix into a
// structural error.
func notEOF(err error) error {
	if err == io.EOF {
		return ErrInvalidMatrix
	}
	return err
}
