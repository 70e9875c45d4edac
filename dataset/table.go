// Package dataset provides the loading, cleaning and splitting stage of the
// fairness pipeline: CSV tables, row filtering with an auditable drop
// report, encoded feature matrices and sensitive-attribute-stratified
// train/test splits.
package dataset

import (
	"encoding/csv"
	"io"
	"os"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// Table is an ordered collection of string-valued rows under a fixed header.
// All pipeline stages before encoding operate on Tables.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table from a header and rows. Every row must have one
// value per column and column names must be unique.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	t := &Table{
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, scierrors.NewSchemaError("NewTable", c, "duplicate column name")
		}
		t.index[c] = i
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, scierrors.NewDimensionError("NewTable", len(columns), len(row), 1)
		}
	}
	return t, nil
}

// ReadCSV reads a table from comma-separated data. The first record is the
// header naming the fields. Leading whitespace in fields is trimmed, which
// matches the ", "-separated census exports this pipeline consumes.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, scierrors.Wrap(scierrors.ErrEmptyData, "ReadCSV: no header row")
	}
	if err != nil {
		return nil, scierrors.Wrap(err, "ReadCSV: reading header")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.Reader reports ragged rows here via ErrFieldCount.
			return nil, scierrors.Wrap(err, "ReadCSV: reading record")
		}
		rows = append(rows, rec)
	}

	return NewTable(header, rows)
}

// ReadCSVFile reads a table from a CSV file on disk.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scierrors.Wrap(err, "ReadCSVFile")
	}
	defer f.Close()
	return ReadCSV(f)
}

// Col returns the index of a named column.
func (t *Table) Col(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Column returns a copy of the values of a named column.
func (t *Table) Column(name string) ([]string, error) {
	j, ok := t.Col(name)
	if !ok {
		return nil, scierrors.NewSchemaError("Table.Column", name, "required field is absent")
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out, nil
}

// subset builds a new table holding the given row indices, sharing the
// header. Row slices are shared, not copied; tables are treated as
// immutable after cleaning.
func (t *Table) subset(idx []int) *Table {
	rows := make([][]string, len(idx))
	for k, i := range idx {
		rows[k] = t.Rows[i]
	}
	return &Table{Columns: t.Columns, Rows: rows, index: t.index}
}
