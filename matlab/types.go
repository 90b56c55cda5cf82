package matlab

import (
	"fmt"

	"github.com/pkg/errors"
)

// DataType represents matlab data types
type DataType uint32

func (d DataType) String() string {
	switch d {
	case DTmiINT8:
		return "miINT8"
	case DTmiUINT8:
		return "miUINT8"
	case DTmiINT16:
		return "miINT16"
	case DTmiUINT16:
		return "miUINT16"
	case DTmiINT32:
		return "miINT32"
	case DTmiUINT32:
		return "miUINT32"
	case DTmiSINGLE:
		return "miSINGLE"
	case DTmiDOUBLE:
		return "miDOUBLE"
	case DTmiINT64:
		return "miINT64"
	case DTmiUINT64:
		return "miUINT64"
	case DTmiMATRIX:
		return "miMATRIX"
	case DTmiCOMPRESSED:
		return "miCOMPRESSED"
	case DTmiUTF8:
		return "miUTF8"
	case DTmiUTF16:
		return "miUTF16"
	case DTmiUTF32:
		return "miUTF32"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(d))
	}
}

// Known reports whether d belongs to the Level 5 type code set.
func (d DataType) Known() bool {
	for _, t := range dataTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Data Types as specified according to byte indicators
const (
	DataTypeUnknown DataType = iota // errored data type
	DTmiINT8                        // 8 bit, signed
	DTmiUINT8                       // 8 bit, unsigned
	DTmiINT16                       // 16-bit, signed
	DTmiUINT16                      // 16-bit, unsigned
	DTmiINT32                       // 32-bit, signed
	DTmiUINT32                      // 32-bit, unsigned
	DTmiSINGLE                      // IEEE® 754 single format
	_
	DTmiDOUBLE // IEEE 754 double format
	_
	_
	DTmiINT64      // 64-bit, signed
	DTmiUINT64     // 64-bit, unsigned
	DTmiMATRIX     // MATLAB array
	DTmiCOMPRESSED // Compressed Data
	DTmiUTF8       // Unicode UTF-8 Encoded Character Data
	DTmiUTF16      // Unicode UTF-16 Encoded Character Data
	DTmiUTF32      // Unicode UTF-32 Encoded Character Data
)

var dataTypes = []DataType{
	DTmiINT8, DTmiUINT8, DTmiINT16, DTmiUINT16, DTmiINT32, DTmiUINT32, DTmiSINGLE,
	DTmiDOUBLE, DTmiINT64, DTmiUINT64, DTmiMATRIX, DTmiCOMPRESSED, DTmiUTF8, DTmiUTF16, DTmiUTF32,
}

// Class is a MATLAB array class, stored in the array flags of a miMATRIX element.
type Class uint8

func (c Class) String() string {
	switch c {
	case MxCell:
		return "Cell array"
	case MxStruct:
		return "Structure"
	case MxObject:
		return "Object"
	case MxChar:
		return "Character array"
	case MxSparse:
		return "Sparse array"
	case MxDouble:
		return "Double precision array"
	case MxSingle:
		return "Single precision array"
	case MxInt8:
		return "8-bit, signed integer"
	case MxUint8:
		return "8-bit, unsigned integer"
	case MxInt16:
		return "16-bit, signed integer"
	case MxUint16:
		return "16-bit, unsigned integer"
	case MxInt32:
		return "32-bit, signed integer"
	case MxUint32:
		return "32-bit, unsigned integer"
	case MxInt64:
		return "64-bit, signed integer"
	case MxUint64:
		return "64-bit, unsigned integer"
	case MxFunction:
		return "Function handle"
	case MxOpaque:
		return "Opaque object"
	default:
		return "unknown"
	}
}

// MATLAB Array Types (Classes)
const (
	MxUnknown  Class = iota
	MxCell           // Cell array
	MxStruct         // Structure
	MxObject         // Object
	MxChar           // Character array
	MxSparse         // Sparse array
	MxDouble         // Double precision array
	MxSingle         // Single precision array
	MxInt8           // 8-bit, signed integer
	MxUint8          // 8-bit, unsigned integer
	MxInt16          // 16-bit, signed integer
	MxUint16         // 16-bit, unsigned integer
	MxInt32          // 32-bit, signed integer
	MxUint32         // 32-bit, unsigned integer
	MxInt64          // 64-bit, signed integer
	MxUint64         // 64-bit, unsigned integer
	MxFunction       // Function handle
	MxOpaque         // Opaque (class definitions, java objects)
)

var classes = []Class{
	MxCell, MxStruct, MxObject, MxChar, MxSparse, MxDouble, MxSingle, MxInt8, MxUint8,
	MxInt16, MxUint16, MxInt32, MxUint32, MxInt64, MxUint64, MxFunction, MxOpaque,
}

// Numeric reports whether c holds a dense numeric array.
func (c Class) Numeric() bool {
	return c >= MxDouble && c <= MxUint64
}

// Supported reports whether arrays of class c are decoded into values.
func (c Class) Supported() bool {
	return c.Numeric() || c == MxChar || c == MxSparse
}

// Dtype is the element type a decoded array is stored as.
type Dtype uint8

const (
	DtypeUnknown Dtype = iota
	Byte
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Complex64
	Complex128
	Char // UTF-16 code units of a character array
)

func (d Dtype) String() string {
	switch d {
	case Byte:
		return "byte"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	case Char:
		return "char"
	default:
		return "unknown"
	}
}

// Size is the number of bytes one element of d occupies in memory.
func (d Dtype) Size() int {
	switch d {
	case Byte, Int8:
		return 1
	case Int16, Char:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		return 0
	}
}

// IsComplex reports whether d is one of the complex dtypes.
func (d Dtype) IsComplex() bool {
	return d == Complex64 || d == Complex128
}

// dtypes lists the numeric dtypes; Char is kept apart since it never reaches
// the numeric conversions.
var dtypes = []Dtype{Byte, Int8, Int16, Int32, Int64, Float32, Float64, Complex64, Complex128}

// IndexDtype is the unsigned type used for sparse row indices and column pointers.
type IndexDtype uint8

const (
	IndexUnknown IndexDtype = iota
	Uint8
	Uint16
	Uint32
	Uint64
)

func (d IndexDtype) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	default:
		return "unknown"
	}
}

func (d IndexDtype) max() uint64 {
	switch d {
	case Uint8:
		return 1<<8 - 1
	case Uint16:
		return 1<<16 - 1
	case Uint32:
		return 1<<32 - 1
	default:
		return 1<<64 - 1
	}
}

// Precision of a floating point type.
type Precision uint8

const (
	NoPrecision Precision = iota
	Single
	Double
)

// TypeInfo describes how one stored value is laid out.
type TypeInfo struct {
	Signed    bool
	Width     int // bytes: 1, 2, 4 or 8
	Float     bool
	Precision Precision
}

// Catalog maps format type codes and classes onto decoder types. It holds no
// state; DefaultCatalog is shared by every decode.
type Catalog struct{}

// DefaultCatalog is the catalog used unless an option says otherwise.
var DefaultCatalog = &Catalog{}

// NumericTypeInfo returns the layout of a primitive type code. The text codes
// resolve to unsigned integers of their code unit width.
func (*Catalog) NumericTypeInfo(t DataType) (TypeInfo, error) {
	switch t {
	case DTmiINT8:
		return TypeInfo{Signed: true, Width: 1}, nil
	case DTmiUINT8, DTmiUTF8:
		return TypeInfo{Width: 1}, nil
	case DTmiINT16:
		return TypeInfo{Signed: true, Width: 2}, nil
	case DTmiUINT16, DTmiUTF16:
		return TypeInfo{Width: 2}, nil
	case DTmiINT32:
		return TypeInfo{Signed: true, Width: 4}, nil
	case DTmiUINT32, DTmiUTF32:
		return TypeInfo{Width: 4}, nil
	case DTmiSINGLE:
		return TypeInfo{Signed: true, Width: 4, Float: true, Precision: Single}, nil
	case DTmiDOUBLE:
		return TypeInfo{Signed: true, Width: 8, Float: true, Precision: Double}, nil
	case DTmiINT64:
		return TypeInfo{Signed: true, Width: 8}, nil
	case DTmiUINT64:
		return TypeInfo{Width: 8}, nil
	case DTmiMATRIX, DTmiCOMPRESSED:
		return TypeInfo{}, errors.Wrapf(ErrUnknownTypeCode, "%s has no fixed width", t)
	default:
		return TypeInfo{}, errors.Wrapf(ErrUnknownTypeCode, "type code %d", uint32(t))
	}
}

// ClassDtype returns the dtype values of class c are stored as. Unsigned
// classes widen to the next signed type so no value changes sign.
func (*Catalog) ClassDtype(c Class, complex bool) (Dtype, error) {
	var d Dtype
	switch c {
	case MxDouble, MxSparse:
		d = Float64
	case MxSingle:
		d = Float32
	case MxInt8:
		d = Int8
	case MxUint8:
		d = Byte
	case MxInt16:
		d = Int16
	case MxUint16, MxInt32:
		d = Int32
	case MxUint32, MxInt64, MxUint64:
		d = Int64
	case MxCell, MxStruct, MxObject, MxChar, MxFunction, MxOpaque:
		return DtypeUnknown, errors.Wrapf(ErrUnsupportedClass, "%s has no numeric dtype", c)
	default:
		return DtypeUnknown, errors.Wrapf(ErrUnsupportedClass, "class code %d", uint8(c))
	}
	if !complex {
		return d, nil
	}
	if d == Float32 {
		return Complex64, nil
	}
	return Complex128, nil
}

// IndexDtype returns the smallest index type paired with element dtype d.
func (*Catalog) IndexDtype(d Dtype) (IndexDtype, error) {
	switch d {
	case Byte, Int8:
		return Uint8, nil
	case Int16:
		return Uint16, nil
	case Int32, Float32, Complex64:
		return Uint32, nil
	case Int64, Float64, Complex128:
		return Uint64, nil
	default:
		return IndexUnknown, errors.Errorf("matlab: no index type for dtype %d", uint8(d))
	}
}

// check fails on the first member of a closed set the catalog cannot map.
func (c *Catalog) check() error {
	for _, t := range dataTypes {
		if t == DTmiMATRIX || t == DTmiCOMPRESSED {
			continue
		}
		if _, err := c.NumericTypeInfo(t); err != nil {
			return err
		}
	}
	for _, cl := range classes {
		if !cl.Numeric() && cl != MxSparse {
			continue
		}
		if _, err := c.ClassDtype(cl, false); err != nil {
			return err
		}
	}
	for _, d := range dtypes {
		if _, err := c.IndexDtype(d); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := DefaultCatalog.check(); err != nil {
		panic(err)
	}
}
