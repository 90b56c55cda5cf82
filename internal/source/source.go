// Package source opens .mat files from disk, unwrapping xz or gzip
// compression when the file starts with the matching magic bytes.
package source

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Format is the outer wrapping of a file.
type Format int

const (
	Plain Format = iota
	XZ
	Gzip
)

func (f Format) String() string {
	switch f {
	case XZ:
		return "xz"
	case Gzip:
		return "gzip"
	default:
		return "plain"
	}
}

var (
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Detect returns the wrapping announced by the first bytes of a file.
func Detect(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return XZ
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	default:
		return Plain
	}
}

// Open opens path for reading. Plain files are returned as *os.File so the
// caller can still seek; wrapped files are streamed through a decompressor.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	head := make([]byte, len(xzMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to rewind %s", path)
	}

	switch Detect(head[:n]) {
	case XZ:
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "failed to read xz stream of %s", path)
		}
		return &wrapped{Reader: xr, closers: []io.Closer{f}}, nil
	case Gzip:
		gr, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "failed to read gzip stream of %s", path)
		}
		return &wrapped{Reader: gr, closers: []io.Closer{gr, f}}, nil
	default:
		return f, nil
	}
}

type wrapped struct {
	io.Reader
	closers []io.Closer
}

func (w *wrapped) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
