package source

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/thisMagpie/nmatrix/internal/mattest"
)

func TestDetect(t *testing.T) {
	assert.Equal(t, XZ, Detect([]byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 1}))
	assert.Equal(t, Gzip, Detect([]byte{0x1f, 0x8b, 8}))
	assert.Equal(t, Plain, Detect([]byte("MATLAB 5.0")))
	assert.Equal(t, Plain, Detect(nil))
	assert.Equal(t, "xz", XZ.String())
}

func TestOpen(t *testing.T) {
	content := mattest.LE.File(mattest.LE.Double("A", 1, 2, []float64{1, 2}))

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xw.Write(content)
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err = gw.Write(content)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	for name, data := range map[string][]byte{
		"a.mat":    content,
		"a.mat.xz": xzBuf.Bytes(),
		"a.mat.gz": gzBuf.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			rc, err := Open(mattest.WriteFile(t, name, data))
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.NoError(t, rc.Close())
			assert.Equal(t, content, got)
		})
	}
}

func TestOpenPlainIsSeekable(t *testing.T) {
	rc, err := Open(mattest.WriteFile(t, "a.mat", []byte("MATLAB")))
	require.NoError(t, err)
	defer rc.Close()
	_, ok := rc.(io.Seeker)
	assert.True(t, ok)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open("does/not/exist.mat")
	assert.Error(t, err)
}
