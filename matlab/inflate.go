package matlab

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// inflate expands a miCOMPRESSED payload. The result is a nested element
// stream that starts with its own tag. Output beyond limit bytes is an error.
func inflate(payload []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(ErrDecompression, "%v", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	n, err := io.Copy(&out, io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, errors.Wrapf(ErrDecompression, "%v", err)
	}
	if n > limit {
		return nil, errors.Wrapf(ErrDecompression, "inflated data exceeds %d bytes", limit)
	}
	return out.Bytes(), nil
}
