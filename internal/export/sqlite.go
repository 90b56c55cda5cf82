// Package export writes decoded .mat variables into a SQLite database, one row
// per variable and one row per stored value.
package export

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/thisMagpie/nmatrix/internal/fingerprint"
	"github.com/thisMagpie/nmatrix/matlab"
)

const schema = `
CREATE TABLE IF NOT EXISTS variables (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	file    TEXT NOT NULL,
	name    TEXT NOT NULL,
	class   TEXT NOT NULL,
	dtype   TEXT NOT NULL,
	dims    TEXT NOT NULL,
	complex INTEGER NOT NULL,
	sparse  INTEGER NOT NULL,
	nnz     INTEGER NOT NULL,
	text    TEXT,
	digest  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	var_id INTEGER NOT NULL REFERENCES variables(id),
	idx    INTEGER NOT NULL,
	row    INTEGER NOT NULL,
	col    INTEGER NOT NULL,
	re     REAL NOT NULL,
	im     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_var ON entries(var_id);
`

// Exporter writes variables into one database.
type Exporter struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*Exporter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Exporter{db: db}, nil
}

// Close closes the database.
func (e *Exporter) Close() error {
	return e.db.Close()
}

// DB exposes the underlying database handle.
func (e *Exporter) DB() *sql.DB {
	return e.db
}

// Write stores every variable of f under the given file label in a single
// transaction and returns the number of variables written.
func (e *Exporter) Write(ctx context.Context, file string, f *matlab.File) (int, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	n := 0
	for _, m := range f.Vars() {
		if err := writeVar(ctx, tx, file, m); err != nil {
			return n, errors.Wrapf(err, "failed to export %q", m.Name)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit")
	}
	logrus.Debugf("exported %d variables from %s", n, file)
	return n, nil
}

func writeVar(ctx context.Context, tx *sql.Tx, file string, m *matlab.Matrix) error {
	dims := make([]string, len(m.Dimension))
	for i, d := range m.Dimension {
		dims[i] = strconv.Itoa(d)
	}
	var text sql.NullString
	if m.Class == matlab.MxChar {
		text = sql.NullString{String: m.Text(), Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO variables (file, name, class, dtype, dims, complex, sparse, nnz, text, digest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file, m.Name, m.Class.String(), m.Dtype().String(), strings.Join(dims, "x"),
		m.Flags.Complex, m.IsSparse(), m.NNZ(), text, fingerprint.Hex(m))
	if err != nil {
		return err
	}
	if m.Class == matlab.MxChar {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	vals, err := m.ComplexArray()
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (var_id, idx, row, col, re, im) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows := m.Dimension[0]
	if m.IsSparse() {
		ir, jc := m.RowIndex.Ints(), m.ColPtr.Ints()
		for c := 0; c+1 < len(jc); c++ {
			for k := jc[c]; k < jc[c+1]; k++ {
				if _, err := stmt.ExecContext(ctx, id, c*rows+ir[k], ir[k], c, real(vals[k]), imag(vals[k])); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for i, v := range vals {
		r, c := 0, 0
		if rows > 0 {
			r, c = i%rows, i/rows
		}
		if _, err := stmt.ExecContext(ctx, id, i, r, c, real(v), imag(v)); err != nil {
			return err
		}
	}
	return nil
}
