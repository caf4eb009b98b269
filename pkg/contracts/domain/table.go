package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound is returned when a named column does not exist
var ErrColumnNotFound = errors.New("column not found")

// Table is an in-memory, row-major tabular dataset with named columns.
// It lives for the duration of one pipeline run.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table with the given column names
func NewTable(columns []string) *Table {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(t.columns, columns)
	for i, c := range t.columns {
		t.index[c] = i
	}
	return t
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Has reports whether the column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Index returns the position of the column or -1
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// AppendRow appends a row. The row must have one value per column.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns the i-th row. Callers must not modify it.
func (t *Table) Row(i int) []Value {
	return t.rows[i]
}

// Get returns the value at row i in the named column, null if the column is absent
func (t *Table) Get(i int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Null()
	}
	return t.rows[i][c]
}

// Set replaces the value at row i in the named column
func (t *Table) Set(i int, column string, v Value) error {
	c, ok := t.index[column]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	t.rows[i][c] = v
	return nil
}

// Column returns a copy of all values of the named column
func (t *Table) Column(name string) ([]Value, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, nil
}

// AddColumn appends a column, or overwrites it when the name already exists
func (t *Table) AddColumn(name string, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	if c, ok := t.index[name]; ok {
		for i := range t.rows {
			t.rows[i][c] = values[i]
		}
		return nil
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// RenameColumn renames a column. Renaming onto an existing name is an error.
func (t *Table) RenameColumn(from, to string) error {
	c, ok := t.index[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, from)
	}
	if from == to {
		return nil
	}
	if _, exists := t.index[to]; exists {
		return fmt.Errorf("cannot rename %s: column %s already exists", from, to)
	}
	delete(t.index, from)
	t.columns[c] = to
	t.index[to] = c
	return nil
}

// DropColumn removes a column
func (t *Table) DropColumn(name string) error {
	c, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	t.columns = append(t.columns[:c], t.columns[c+1:]...)
	for i, row := range t.rows {
		t.rows[i] = append(row[:c], row[c+1:]...)
	}
	t.reindex()
	return nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := NewTable(t.columns)
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(row))
		copy(r, row)
		out.rows[i] = r
	}
	return out
}

// Filter returns a new table holding copies of the rows for which keep is true
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := NewTable(t.columns)
	for i, row := range t.rows {
		if !keep(i) {
			continue
		}
		r := make([]Value, len(row))
		copy(r, row)
		out.rows = append(out.rows, r)
	}
	return out
}

// Floats returns the non-null numeric values of a column in row order
func (t *Table) Floats(name string) ([]float64, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]float64, 0, len(t.rows))
	for _, row := range t.rows {
		if f, ok := row[c].AsNumber(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// RowKey returns a string that is equal for rows whose values are all equal
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, v := range t.rows[i] {
		if j > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(v.key())
	}
	return b.String()
}

// Require returns an error naming the first missing column
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
	}
	return nil
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		t.index[c] = i
	}
}
