package matlab

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Array is a flat, column-major buffer of decoded values. Data holds the Go
// slice for Dtype: []uint8 for Byte, []int8, []int16, []int32, []int64,
// []float32, []float64, []complex64 or []complex128.
type Array struct {
	Dtype Dtype
	Data  interface{}
}

// Len returns the number of values in the array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	switch v := a.Data.(type) {
	case []uint8:
		return len(v)
	case []int8:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []complex64:
		return len(v)
	case []complex128:
		return len(v)
	default:
		return 0
	}
}

// head returns the array cut down to its first n values.
func (a *Array) head(n int) *Array {
	out := &Array{Dtype: a.Dtype}
	switch v := a.Data.(type) {
	case []uint8:
		out.Data = v[:n]
	case []int8:
		out.Data = v[:n]
	case []int16:
		out.Data = v[:n]
	case []int32:
		out.Data = v[:n]
	case []int64:
		out.Data = v[:n]
	case []float32:
		out.Data = v[:n]
	case []float64:
		out.Data = v[:n]
	case []complex64:
		out.Data = v[:n]
	case []complex128:
		out.Data = v[:n]
	}
	return out
}

// Float64s converts a real array to float64.
func (a *Array) Float64s() ([]float64, error) {
	if a == nil {
		return nil, nil
	}
	switch v := a.Data.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []complex64, []complex128:
		return nil, errors.Errorf("matlab: cannot convert %s array to float64", a.Dtype)
	default:
		return convert[float64](a.Data)
	}
}

// Int64s converts an integer array to int64.
func (a *Array) Int64s() ([]int64, error) {
	if a == nil {
		return nil, nil
	}
	switch a.Dtype {
	case Byte, Int8, Int16, Int32, Int64:
		return convert[int64](a.Data)
	default:
		return nil, errors.Errorf("matlab: cannot convert %s array to int64", a.Dtype)
	}
}

// Complex128s converts any numeric array to complex128.
func (a *Array) Complex128s() ([]complex128, error) {
	if a == nil {
		return nil, nil
	}
	switch v := a.Data.(type) {
	case []complex128:
		return append([]complex128(nil), v...), nil
	case []complex64:
		out := make([]complex128, len(v))
		for i, c := range v {
			out[i] = complex128(c)
		}
		return out, nil
	default:
		re, err := convert[float64](a.Data)
		if err != nil {
			return nil, err
		}
		out := make([]complex128, len(re))
		for i, r := range re {
			out[i] = complex(r, 0)
		}
		return out, nil
	}
}

// Index holds sparse row indices or column pointers.
type Index struct {
	Dtype IndexDtype
	Data  interface{} // []uint8, []uint16, []uint32 or []uint64
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	switch v := x.Data.(type) {
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []uint64:
		return len(v)
	default:
		return 0
	}
}

// Ints returns the entries as ints.
func (x *Index) Ints() []int {
	if x == nil {
		return nil
	}
	out, _ := convert[int](x.Data)
	return out
}

// NumericArray is a primitive data element that was not wrapped in a miMATRIX.
type NumericArray struct {
	typ   DataType
	small bool
	value interface{}
}

var _ Element = &NumericArray{}

func (e *NumericArray) Type() DataType {
	return e.typ
}

// Value returns the unpacked slice, typed after the storage type: []int8,
// []uint8, []int16, []uint16, []int32, []uint32, []float32, []float64, []int64
// or []uint64.
func (e *NumericArray) Value() interface{} {
	return e.value
}

// Small reports whether the element was stored in the small element format.
func (e *NumericArray) Small() bool {
	return e.small
}

type number interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 |
		~float32 | ~float64 | ~int
}

func convertSlice[D, S number](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}

// convert copies a raw storage slice into a []D.
func convert[D number](raw interface{}) ([]D, error) {
	switch v := raw.(type) {
	case []uint8:
		return convertSlice[D](v), nil
	case []int8:
		return convertSlice[D](v), nil
	case []uint16:
		return convertSlice[D](v), nil
	case []int16:
		return convertSlice[D](v), nil
	case []uint32:
		return convertSlice[D](v), nil
	case []int32:
		return convertSlice[D](v), nil
	case []uint64:
		return convertSlice[D](v), nil
	case []int64:
		return convertSlice[D](v), nil
	case []float32:
		return convertSlice[D](v), nil
	case []float64:
		return convertSlice[D](v), nil
	default:
		return nil, errors.Errorf("matlab: cannot convert %T", raw)
	}
}

// unpack reinterprets data as a sequence of values of storage type t. The
// slice type follows t; see NumericArray.Value.
func unpack(cat *Catalog, t DataType, bo binary.ByteOrder, data []byte) (interface{}, error) {
	info, err := cat.NumericTypeInfo(t)
	if err != nil {
		return nil, err
	}
	if len(data)%info.Width != 0 {
		return nil, errors.Wrapf(ErrMalformedTag, "%d bytes is not a whole number of %s values", len(data), t)
	}
	n := len(data) / info.Width
	switch t {
	case DTmiINT8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(data[i])
		}
		return out, nil
	case DTmiUINT8, DTmiUTF8:
		return append([]uint8(nil), data...), nil
	case DTmiINT16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(bo.Uint16(data[2*i:]))
		}
		return out, nil
	case DTmiUINT16, DTmiUTF16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = bo.Uint16(data[2*i:])
		}
		return out, nil
	case DTmiINT32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(bo.Uint32(data[4*i:]))
		}
		return out, nil
	case DTmiUINT32, DTmiUTF32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = bo.Uint32(data[4*i:])
		}
		return out, nil
	case DTmiSINGLE:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(bo.Uint32(data[4*i:]))
		}
		return out, nil
	case DTmiDOUBLE:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(bo.Uint64(data[8*i:]))
		}
		return out, nil
	case DTmiINT64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(bo.Uint64(data[8*i:]))
		}
		return out, nil
	case DTmiUINT64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = bo.Uint64(data[8*i:])
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrUnknownTypeCode, "cannot unpack %s", t)
}

// toArray converts raw storage values into an array of real dtype d.
func toArray(raw interface{}, d Dtype) (*Array, error) {
	if err := checkRange(raw, d); err != nil {
		return nil, err
	}
	var (
		data interface{}
		err  error
	)
	switch d {
	case Byte:
		data, err = convert[uint8](raw)
	case Int8:
		data, err = convert[int8](raw)
	case Int16:
		data, err = convert[int16](raw)
	case Int32:
		data, err = convert[int32](raw)
	case Int64:
		data, err = convert[int64](raw)
	case Float32:
		data, err = convert[float32](raw)
	case Float64:
		data, err = convert[float64](raw)
	default:
		return nil, errors.Errorf("matlab: %s is not a real dtype", d)
	}
	if err != nil {
		return nil, err
	}
	return &Array{Dtype: d, Data: data}, nil
}

// intBounds returns the value range of an integer dtype.
func intBounds(d Dtype) (lo, hi int64, ok bool) {
	switch d {
	case Byte:
		return 0, math.MaxUint8, true
	case Int8:
		return math.MinInt8, math.MaxInt8, true
	case Int16:
		return math.MinInt16, math.MaxInt16, true
	case Int32:
		return math.MinInt32, math.MaxInt32, true
	case Int64:
		return math.MinInt64, math.MaxInt64, true
	}
	return 0, 0, false
}

// checkRange fails when a stored value lies outside integer dtype d. MATLAB
// stores integer classes in any type that holds their values, so a wider
// storage type must not wrap.
func checkRange(raw interface{}, d Dtype) error {
	lo, hi, ok := intBounds(d)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []uint64:
		for _, x := range v {
			if x > uint64(hi) {
				return errors.Wrapf(ErrValueRange, "%d does not fit %s", x, d)
			}
		}
	case []float32, []float64:
		vals, _ := convert[float64](raw)
		for _, x := range vals {
			// float64(hi)+1 is the first value out of range, also for int64 where it rounds to 2^63
			if x < float64(lo) || x >= float64(hi)+1 {
				return errors.Wrapf(ErrValueRange, "%g does not fit %s", x, d)
			}
		}
	default:
		vals, err := convert[int64](raw)
		if err != nil {
			return err
		}
		for _, x := range vals {
			if x < lo || x > hi {
				return errors.Wrapf(ErrValueRange, "%d does not fit %s", x, d)
			}
		}
	}
	return nil
}

// realDtype is the component type of a complex dtype.
func realDtype(d Dtype) Dtype {
	switch d {
	case Complex64:
		return Float32
	case Complex128:
		return Float64
	default:
		return d
	}
}

// combine joins real and imaginary parts into a complex array of dtype d.
func combine(re, im *Array, d Dtype) (*Array, error) {
	if re.Len() != im.Len() {
		return nil, errors.Wrapf(ErrInvalidMatrix, "real part has %d values, imaginary part %d", re.Len(), im.Len())
	}
	r, err := convert[float64](re.Data)
	if err != nil {
		return nil, err
	}
	i, err := convert[float64](im.Data)
	if err != nil {
		return nil, err
	}
	switch d {
	case Complex64:
		out := make([]complex64, len(r))
		for k := range r {
			out[k] = complex(float32(r[k]), float32(i[k]))
		}
		return &Array{Dtype: d, Data: out}, nil
	case Complex128:
		out := make([]complex128, len(r))
		for k := range r {
			out[k] = complex(r[k], i[k])
		}
		return &Array{Dtype: d, Data: out}, nil
	}
	return nil, errors.Errorf("matlab: %s is not a complex dtype", d)
}

// toIndex converts raw index values to the index dtype d, widening d when a
// value does not fit it.
func toIndex(raw interface{}, d IndexDtype) (*Index, error) {
	vals, err := convert[int64](raw)
	if err != nil {
		return nil, err
	}
	var hi uint64
	for _, v := range vals {
		if v < 0 {
			return nil, errors.Wrapf(ErrInvalidMatrix, "negative sparse index %d", v)
		}
		if uint64(v) > hi {
			hi = uint64(v)
		}
	}
	for d < Uint64 && hi > d.max() {
		d++
	}
	switch d {
	case Uint8:
		return &Index{Dtype: d, Data: convertSlice[uint8](vals)}, nil
	case Uint16:
		return &Index{Dtype: d, Data: convertSlice[uint16](vals)}, nil
	case Uint32:
		return &Index{Dtype: d, Data: convertSlice[uint32](vals)}, nil
	default:
		return &Index{Dtype: Uint64, Data: convertSlice[uint64](vals)}, nil
	}
}
