// Package matlab reads MATLAB Level 5 .mat files.
//
// A file is decoded in one pass when it is opened. Numeric dense, sparse,
// complex and character arrays become Matrix values; cell, struct, object,
// function handle and opaque arrays are recognised and skipped. A broken
// element does not stop the rest of the file from being read: it is recorded
// in Errors and decoding moves on to the next element.
package matlab

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/thisMagpie/nmatrix/internal/source"
)

const (
	headerLen                = 128
	headerTextLen            = 116
	headerSubsystemOffsetLen = 8
	headerVersionOffset      = headerTextLen + headerSubsystemOffsetLen
	headerEndianOffset       = headerVersionOffset + 2
)

// Header is a matlab .mat file header
type Header struct {
	Text         string // descriptive text, trailing padding removed
	Level        string
	Platform     string
	Created      time.Time
	SubsysOffset [headerSubsystemOffsetLen]byte
	Version      uint16
	ByteOrder    ByteOrder
}

// String implements the stringer interface for Header
// with the standard .mat file prefix (without the filler bytes)
func (h *Header) String() string {
	return fmt.Sprintf("MATLAB %s MAT-file, Platform: %s, Created on: %s", h.Level, h.Platform, h.Created.Format(time.ANSIC))
}

// File represents a .mat matlab file
type File struct {
	Header *Header

	vars    []*Matrix
	records []Record
	errs    []*ElementError
}

// NewFileFromReader reads the header and every data element from r.
// Only a bad header fails the call; element failures are collected in Errors.
func NewFileFromReader(r io.Reader, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	cr := &countingReader{r: r, size: -1}
	if s, ok := r.(io.Seeker); ok {
		cr.size = streamSize(s)
	}

	h, err := readHeader(cr, o)
	if err != nil {
		return nil, err
	}
	f := &File{Header: h}
	f.readAll(cr, newDecoder(h.ByteOrder.Binary(), o))
	return f, nil
}

// Open is NewFileFromReader.
func Open(r io.Reader, opts ...Option) (*File, error) {
	return NewFileFromReader(r, opts...)
}

// OpenFile reads the .mat file at path. Files wrapped in xz or gzip are
// decompressed on the fly.
func OpenFile(path string, opts ...Option) (*File, error) {
	rc, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return NewFileFromReader(rc, opts...)
}

func readHeader(r io.Reader, o *options) (*Header, error) {
	buf := make([]byte, headerLen)
	if n, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrapf(ErrHeader, "read %d of %d header bytes", n, headerLen)
	}
	h := &Header{
		Text: strings.TrimRight(string(buf[:headerTextLen]), " \x00"),
	}
	copy(h.SubsysOffset[:], buf[headerTextLen:headerVersionOffset])
	parseHeaderText(h)

	h.ByteOrder = ResolveByteOrder(buf[headerEndianOffset:headerLen])
	if o.byteOrder != nil {
		h.ByteOrder = *o.byteOrder
	} else if h.ByteOrder == Native && o.strictOrder {
		return nil, errors.Wrapf(ErrHeader, "invalid byte order setting: %q", buf[headerEndianOffset:headerLen])
	}
	if o.strictHeader && h.Level != "5.0" {
		return nil, errors.Wrapf(ErrHeader, "can only read matlab level 5 files, got %q", h.Text)
	}
	h.Version = h.ByteOrder.Binary().Uint16(buf[headerVersionOffset:headerEndianOffset])
	o.log.Debugf("header %q, version %#04x, %s", h.Text, h.Version, h.ByteOrder)
	return h, nil
}

// parseHeaderText fills Level, Platform and Created from text of the form
// "MATLAB 5.0 MAT-file, Platform: posix, Created on: Mon Feb 18 17:12:08 2013".
// Writers other than MATLAB vary the wording, so every field is optional.
func parseHeaderText(h *Header) {
	text := h.Text
	if !strings.HasPrefix(text, "MATLAB ") {
		return
	}
	if fields := strings.Fields(text); len(fields) > 1 {
		h.Level = fields[1]
	}
	if i := strings.Index(text, "Platform: "); i >= 0 {
		p := text[i+len("Platform: "):]
		if j := strings.IndexByte(p, ','); j >= 0 {
			p = p[:j]
		}
		h.Platform = strings.TrimSpace(p)
	}
	if i := strings.Index(text, "Created on: "); i >= 0 {
		date := text[i+len("Created on: "):]
		if len(date) > len(time.ANSIC) {
			date = date[:len(time.ANSIC)]
		}
		// Tolerate bad parsing. .mat files created by Octave doesn't seem to conform to the format
		if created, err := time.Parse(time.ANSIC, strings.TrimSpace(date)); err == nil {
			h.Created = created
		}
	}
}

func (f *File) readAll(cr *countingReader, dec *decoder) {
	for index := 0; ; index++ {
		offset := cr.n
		t, err := readTag(cr, dec.bo, cr.remaining())
		if err == io.EOF {
			return
		}
		if err != nil {
			// the stream cannot be realigned after a bad tag
			f.fail(index, offset, t, err)
			return
		}

		var payload []byte
		if !t.small {
			if payload, err = readPayload(cr, t); err != nil {
				f.fail(index, offset, t, err)
				return
			}
			if t.Type != DTmiMATRIX && t.Type != DTmiCOMPRESSED {
				pad := padTo64Bit(int(t.Length)) - int(t.Length)
				_, _ = io.ReadFull(cr, make([]byte, pad))
			}
		}

		el, err := dec.decode(t, payload, 0)
		if err != nil {
			f.fail(index, offset, t, err)
			continue
		}
		rec := Record{Index: index, Offset: offset, Type: t.Type, Length: t.Length}
		switch e := el.(type) {
		case *Matrix:
			rec.Kind, rec.Class, rec.Name = KindMatrix, e.Class, e.Name
			f.vars = append(f.vars, e)
		case *Skipped:
			rec.Kind, rec.Class, rec.Name = KindSkipped, e.Class, e.Name
			if e.Class != MxUnknown {
				f.errs = append(f.errs, &ElementError{
					Index:  index,
					Offset: offset,
					Name:   e.Name,
					Err:    errors.Wrapf(ErrUnsupportedClass, "%s", e.Class),
				})
			}
		case *NumericArray:
			rec.Kind = KindNumeric
		}
		f.records = append(f.records, rec)
	}
}

func (f *File) fail(index int, offset int64, t Tag, err error) {
	var name string
	var ne *nameError
	if errors.As(err, &ne) {
		name = ne.name
	}
	f.records = append(f.records, Record{Index: index, Offset: offset, Kind: KindFailed, Type: t.Type, Name: name, Length: t.Length})
	f.errs = append(f.errs, &ElementError{Index: index, Offset: offset, Name: name, Err: err})
}

// GetVar returns the first variable in the mat file with the given name
func (f *File) GetVar(name string) (*Matrix, bool) {
	for _, m := range f.vars {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Lookup returns every variable with the given name, in file order.
func (f *File) Lookup(name string) []*Matrix {
	var res []*Matrix
	for _, m := range f.vars {
		if m.Name == name {
			res = append(res, m)
		}
	}
	return res
}

// GetVarsNames returns the names of the variables in the given mat file, in
// file order. A name written twice appears twice.
func (f *File) GetVarsNames() []string {
	res := make([]string, 0, len(f.vars))
	for _, m := range f.vars {
		res = append(res, m.Name)
	}
	return res
}

// Vars returns the decoded variables in file order.
func (f *File) Vars() []*Matrix {
	return append([]*Matrix(nil), f.vars...)
}

// Records describes every top level element, decoded or not.
func (f *File) Records() []Record {
	return append([]Record(nil), f.records...)
}

// Errors returns the per element failures, including skipped unsupported classes.
func (f *File) Errors() []*ElementError {
	return append([]*ElementError(nil), f.errs...)
}

// Err joins Errors into one error, nil when every element decoded.
func (f *File) Err() error {
	var merr *multierror.Error
	for _, e := range f.errs {
		merr = multierror.Append(merr, e)
	}
	return merr.ErrorOrNil()
}

// countingReader tracks the stream offset so element errors can say where
// they happened and tags can be checked against the bytes left.
type countingReader struct {
	r    io.Reader
	n    int64
	size int64 // -1 when unknown
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) remaining() int64 {
	if c.size < 0 {
		return -1
	}
	return c.size - c.n
}

// streamSize returns the bytes left from the current position of s, or -1.
func streamSize(s io.Seeker) int64 {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return -1
	}
	return end - cur
}
