package matlab

import (
	"fmt"

	"github.com/pkg/errors"
)

// Decode failures are reported as one of these sentinels, usually wrapped with
// context. Match them with errors.Is.
var (
	// ErrHeader means the 128 byte file header is truncated or unusable. It is
	// the only error that aborts a whole Open call.
	ErrHeader = errors.New("matlab: bad file header")

	// ErrMalformedTag means a data element tag declares a length that cannot
	// be satisfied by the bytes that follow it.
	ErrMalformedTag = errors.New("matlab: malformed tag")

	// ErrUnsupportedClass is recorded for cell, struct, object, function and
	// opaque arrays. Those are skipped, not decoded.
	ErrUnsupportedClass = errors.New("matlab: unsupported array class")

	// ErrDecompression means a miCOMPRESSED payload could not be inflated, or
	// inflated past the configured size or nesting bound.
	ErrDecompression = errors.New("matlab: decompression failed")

	// ErrUnknownTypeCode means a type code outside the Level 5 set.
	ErrUnknownTypeCode = errors.New("matlab: unknown type code")

	// ErrInvalidMatrix means a miMATRIX element is structurally inconsistent,
	// e.g. fewer than two dimensions or a sparse array without indices.
	ErrInvalidMatrix = errors.New("matlab: invalid matrix")

	// ErrValueRange means a stored value does not fit the element dtype.
	ErrValueRange = errors.New("matlab: value out of range")
)

// ElementError records a failure to decode one top level data element.
type ElementError struct {
	Index  int    // position among top level elements
	Offset int64  // byte offset of the element tag
	Name   string // variable name, if it was read before the failure
	Err    error
}

func (e *ElementError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("element %d (%q) at offset %d: %v", e.Index, e.Name, e.Offset, e.Err)
	}
	return fmt.Sprintf("element %d at offset %d: %v", e.Index, e.Offset, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}
