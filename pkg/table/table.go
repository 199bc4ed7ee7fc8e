// Package table provides the in-memory tabular data model for Tabular.
// A Table is a rectangular collection of rows under named columns. Format
// handlers produce and consume tables wholesale; the table itself knows
// nothing about files or formats.
//
// Cell values are restricted to a small set of dynamic types: nil, bool,
// int64, float64 and string. Readers that parse textual formats use
// InferValue to map raw fields onto these types, and writers use
// FormatValue to render them back.
package table

import (
	"github.com/corvus-data/tabular/pkg/errors"
)

// Row holds the cell values of a single table row, ordered by column.
type Row []interface{}

// Table is an in-memory rectangular dataset: rows by named columns.
// Rows are arity-checked on append so a table is always rectangular.
//
// Column names are not required to be unique (real-world CSV headers are
// not always clean); name lookups resolve to the first occurrence.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    []Row
}

// New creates an empty table with the given name and column set.
func New(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, col := range cols {
		if _, exists := index[col]; !exists {
			index[col] = i
		}
	}

	return &Table{
		name:    name,
		columns: cols,
		index:   index,
	}
}

// Name returns the table name (typically derived from its source).
func (t *Table) Name() string {
	return t.name
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// ColumnIndex returns the position of the named column. For duplicated
// column names the first occurrence wins.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow adds a row to the table. The row must have exactly one cell
// per column.
func (t *Table) AppendRow(row Row) error {
	if len(row) != len(t.columns) {
		return errors.Newf(errors.ErrorTypeValidation,
			"row has %d cells, table %q has %d columns", len(row), t.name, len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns the i-th row. The returned slice is backed by the table;
// callers must not modify it.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Rows returns all rows. The returned slices are backed by the table;
// callers must not modify them.
func (t *Table) Rows() []Row {
	return t.rows
}

// Cell returns the value at row i under the named column. The second
// return value is false when the column does not exist or i is out of
// range.
func (t *Table) Cell(i int, column string) (interface{}, bool) {
	if i < 0 || i >= len(t.rows) {
		return nil, false
	}
	col, ok := t.index[column]
	if !ok {
		return nil, false
	}
	return t.rows[i][col], true
}

// Lookup returns the first row whose cell under keyColumn renders to key.
// It is the table analogue of an indexed lookup: schema sheets, for
// example, are keyed by their "Variable" column.
func (t *Table) Lookup(keyColumn, key string) (Row, bool) {
	col, ok := t.index[keyColumn]
	if !ok {
		return nil, false
	}
	for _, row := range t.rows {
		if FormatValue(row[col]) == key {
			return row, true
		}
	}
	return nil, false
}
