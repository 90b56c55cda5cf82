package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thisMagpie/nmatrix/internal/mattest"
	"github.com/thisMagpie/nmatrix/matlab"
)

func TestWrite(t *testing.T) {
	b := mattest.LE
	f, err := matlab.NewFileFromReader(bytes.NewReader(b.File(
		b.Double("A", 2, 3, []float64{1, 4, 2, 5, 3, 6}),
		b.Sparse("S", 3, 2, []int32{2, 0}, []int32{0, 1, 2}, []float64{7, 8}),
		b.Complex("Z", 1, 1, []float64{1}, []float64{-1}),
		b.Char("msg", "hello"),
	)))
	require.NoError(t, err)
	require.NoError(t, f.Err())

	ex, err := Open(filepath.Join(t.TempDir(), "out.db"))
	require.NoError(t, err)
	defer ex.Close()

	n, err := ex.Write(context.Background(), "a.mat", f)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	db := ex.DB()
	count := func(query string, args ...interface{}) int {
		var c int
		require.NoError(t, db.QueryRow(query, args...).Scan(&c))
		return c
	}
	assert.Equal(t, 4, count(`SELECT COUNT(*) FROM variables`))
	assert.Equal(t, 6+2+1, count(`SELECT COUNT(*) FROM entries`))

	var row, col int
	var re float64
	require.NoError(t, db.QueryRow(
		`SELECT e.row, e.col, e.re FROM entries e JOIN variables v ON v.id = e.var_id WHERE v.name = 'A' AND e.idx = 1`,
	).Scan(&row, &col, &re))
	assert.Equal(t, []interface{}{1, 0, 4.0}, []interface{}{row, col, re})

	require.NoError(t, db.QueryRow(
		`SELECT e.row, e.col, e.re FROM entries e JOIN variables v ON v.id = e.var_id WHERE v.name = 'S' ORDER BY e.idx LIMIT 1`,
	).Scan(&row, &col, &re))
	assert.Equal(t, []interface{}{2, 0, 7.0}, []interface{}{row, col, re})

	var text, dims string
	var sparse bool
	require.NoError(t, db.QueryRow(`SELECT text, dims FROM variables WHERE name = 'msg'`).Scan(&text, &dims))
	assert.Equal(t, "hello", text)
	assert.Equal(t, "1x5", dims)
	require.NoError(t, db.QueryRow(`SELECT sparse FROM variables WHERE name = 'S'`).Scan(&sparse))
	assert.True(t, sparse)

	var im float64
	require.NoError(t, db.QueryRow(
		`SELECT e.im FROM entries e JOIN variables v ON v.id = e.var_id WHERE v.name = 'Z'`,
	).Scan(&im))
	assert.Equal(t, -1.0, im)
}

func TestWriteAppends(t *testing.T) {
	b := mattest.LE
	f, err := matlab.NewFileFromReader(bytes.NewReader(b.File(b.Double("A", 1, 1, []float64{1}))))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.db")
	for i := 0; i < 2; i++ {
		ex, err := Open(path)
		require.NoError(t, err)
		_, err = ex.Write(context.Background(), "a.mat", f)
		require.NoError(t, err)
		require.NoError(t, ex.Close())
	}

	ex, err := Open(path)
	require.NoError(t, err)
	defer ex.Close()
	var c int
	require.NoError(t, ex.DB().QueryRow(`SELECT COUNT(*) FROM variables`).Scan(&c))
	assert.Equal(t, 2, c)
}
