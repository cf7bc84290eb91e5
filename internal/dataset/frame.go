// Package dataset holds the tabular frame used by the ETL pipeline and the
// row filters and combiner that operate on it.
package dataset

import (
	"fmt"

	"github.com/timmy/retweets/internal/domain"
)

// Frame is an immutable table of string cells with named columns.
// Operations return new frames and never modify their receiver.
type Frame struct {
	columns []string
	rows    [][]string
}

// New builds a frame, checking that every row has one cell per column.
func New(columns []string, rows [][]string) (*Frame, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(columns), domain.ErrInvalidInput)
		}
	}
	return &Frame{
		columns: append([]string(nil), columns...),
		rows:    copyRows(rows),
	}, nil
}

// MustNew is New for literals in tests and fixed tables; it panics on a shape mismatch.
func MustNew(columns []string, rows [][]string) *Frame {
	f, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return f
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []string {
	return append([]string(nil), f.rows[i]...)
}

// Rows returns a copy of all rows.
func (f *Frame) Rows() [][]string {
	return copyRows(f.rows)
}

// ColumnIndex returns the position of the named column.
func (f *Frame) ColumnIndex(name string) (int, error) {
	for i, c := range f.columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not in %v: %w", name, f.columns, domain.ErrInvalidInput)
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	idx, err := f.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Select returns a frame holding only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, err := f.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	rows := make([][]string, len(f.rows))
	for r, row := range f.rows {
		out := make([]string, len(idx))
		for i, j := range idx {
			out[i] = row[j]
		}
		rows[r] = out
	}
	return &Frame{columns: append([]string(nil), names...), rows: rows}, nil
}

// Rename assigns names to the columns by position. The number of names must
// equal the number of columns; existing names are ignored.
func (f *Frame) Rename(names []string) (*Frame, error) {
	if len(names) != len(f.columns) {
		return nil, fmt.Errorf("rename to %d columns, frame has %d: %w", len(names), len(f.columns), domain.ErrInvalidInput)
	}
	return &Frame{columns: append([]string(nil), names...), rows: copyRows(f.rows)}, nil
}

// Filter returns the rows for which keep returns true, in their original order.
func (f *Frame) Filter(keep func(row []string) bool) *Frame {
	rows := make([][]string, 0, len(f.rows))
	for _, row := range f.rows {
		if keep(row) {
			rows = append(rows, append([]string(nil), row...))
		}
	}
	return &Frame{columns: append([]string(nil), f.columns...), rows: rows}
}

// FilterErr is Filter with a predicate that can fail; the first error aborts.
func (f *Frame) FilterErr(keep func(row []string) (bool, error)) (*Frame, error) {
	rows := make([][]string, 0, len(f.rows))
	for i, row := range f.rows {
		ok, err := keep(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			rows = append(rows, append([]string(nil), row...))
		}
	}
	return &Frame{columns: append([]string(nil), f.columns...), rows: rows}, nil
}

// MapColumn returns a frame where every cell of the named column is replaced by fn(cell).
func (f *Frame) MapColumn(name string, fn func(string) string) (*Frame, error) {
	idx, err := f.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	rows := copyRows(f.rows)
	for _, row := range rows {
		row[idx] = fn(row[idx])
	}
	return &Frame{columns: append([]string(nil), f.columns...), rows: rows}, nil
}

// Concat stacks b under a. Both frames must have identical column names.
func Concat(a, b *Frame) (*Frame, error) {
	if len(a.columns) != len(b.columns) {
		return nil, fmt.Errorf("concat %d columns with %d: %w", len(a.columns), len(b.columns), domain.ErrInvalidInput)
	}
	for i := range a.columns {
		if a.columns[i] != b.columns[i] {
			return nil, fmt.Errorf("concat column %d: %q != %q: %w", i, a.columns[i], b.columns[i], domain.ErrInvalidInput)
		}
	}
	rows := make([][]string, 0, len(a.rows)+len(b.rows))
	rows = append(rows, copyRows(a.rows)...)
	rows = append(rows, copyRows(b.rows)...)
	return &Frame{columns: append([]string(nil), a.columns...), rows: rows}, nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
