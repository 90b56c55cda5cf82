package matlab

import (
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxDepth       = 4
	defaultMaxInflateSize = 1 << 30
)

type options struct {
	byteOrder      *ByteOrder
	strictOrder    bool
	strictHeader   bool
	maxDepth       int
	maxInflateSize int64
	catalog        *Catalog
	log            *logrus.Entry
}

func defaultOptions() *options {
	return &options{
		maxDepth:       defaultMaxDepth,
		maxInflateSize: defaultMaxInflateSize,
		catalog:        DefaultCatalog,
		log:            logrus.WithField("component", "matlab"),
	}
}

// Option configures how a file is read.
type Option func(*options)

// WithByteOrder ignores the header's endian indicator and decodes with o.
func WithByteOrder(o ByteOrder) Option {
	return func(opts *options) {
		opts.byteOrder = &o
	}
}

// WithStrictByteOrder rejects headers whose endian indicator is neither "MI"
// nor "IM" instead of falling back to the host byte order.
func WithStrictByteOrder() Option {
	return func(opts *options) {
		opts.strictOrder = true
	}
}

// WithStrictHeader requires the descriptive text to start with "MATLAB 5.0".
func WithStrictHeader() Option {
	return func(opts *options) {
		opts.strictHeader = true
	}
}

// WithMaxDepth bounds how deeply compressed elements may nest.
func WithMaxDepth(n int) Option {
	return func(opts *options) {
		if n > 0 {
			opts.maxDepth = n
		}
	}
}

// WithMaxInflatedSize bounds the size of one inflated miCOMPRESSED payload.
func WithMaxInflatedSize(n int64) Option {
	return func(opts *options) {
		if n > 0 {
			opts.maxInflateSize = n
		}
	}
}

// WithLogger sets the logger debug output goes to.
func WithLogger(l *logrus.Entry) Option {
	return func(opts *options) {
		if l != nil {
			opts.log = l
		}
	}
}
