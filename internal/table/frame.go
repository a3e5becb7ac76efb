// Package table holds the in-memory tabular model shared by the parser,
// the derivation engine and the export document.
package table

import (
	"fmt"
	"strings"
)

// IsNull reports whether a cell counts as missing.
// Cells read from text never carry a real null, so "" and "nan" stand in for it.
func IsNull(v string) bool {
	return v == "" || v == "nan"
}

// Frame is an immutable, column-named grid of string cells
type Frame struct {
	columns []string
	rows    [][]string
}

// NewFrame copies columns and rows into a frame; short rows are padded with nulls
func NewFrame(columns []string, rows [][]string) *Frame {
	f := &Frame{columns: append([]string(nil), columns...)}
	f.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		f.rows = append(f.rows, row)
	}
	return f
}

// Columns returns the column names in order
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Len returns the row count
func (f *Frame) Len() int {
	return len(f.rows)
}

// Empty mirrors a dataframe's emptiness: no rows or no columns
func (f *Frame) Empty() bool {
	return f == nil || len(f.columns) == 0 || len(f.rows) == 0
}

// Index returns the position of the first column named col, -1 if absent
func (f *Frame) Index(col string) int {
	for i, c := range f.columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether col exists
func (f *Frame) Has(col string) bool {
	return f.Index(col) >= 0
}

// Column returns a copy of the cells of col
func (f *Frame) Column(col string) ([]string, bool) {
	idx := f.Index(col)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[idx]
	}
	return out, true
}

// Row returns a copy of row i
func (f *Frame) Row(i int) []string {
	return append([]string(nil), f.rows[i]...)
}

// Value returns the cell at (row, col), "" when col is absent
func (f *Frame) Value(row int, col string) string {
	idx := f.Index(col)
	if idx < 0 {
		return ""
	}
	return f.rows[row][idx]
}

// Select returns a frame restricted to cols, in the given order
func (f *Frame) Select(cols ...string) (*Frame, error) {
	idx := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		idx[i] = f.Index(c)
		if idx[i] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("columns not found: %s", strings.Join(missing, ", "))
	}

	return f.pick(idx), nil
}

// pick builds a frame from column positions, so repeated names survive
func (f *Frame) pick(idx []int) *Frame {
	out := &Frame{columns: make([]string, len(idx)), rows: make([][]string, 0, len(f.rows))}
	for i, j := range idx {
		out.columns[i] = f.columns[j]
	}
	for _, r := range f.rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = r[j]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// Rename returns a frame with columns renamed via names; unknown keys are ignored
func (f *Frame) Rename(names map[string]string) *Frame {
	out := NewFrame(f.columns, f.rows)
	for i, c := range out.columns {
		if n, ok := names[c]; ok {
			out.columns[i] = n
		}
	}
	return out
}

// Drop returns a frame without the named columns
func (f *Frame) Drop(cols ...string) *Frame {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keep []int
	for i, c := range f.columns {
		if !drop[c] {
			keep = append(keep, i)
		}
	}
	return f.pick(keep)
}

// RowView gives read access to one row by column name
type RowView struct {
	f *Frame
	i int
}

// Get returns the cell of col in this row
func (r RowView) Get(col string) string {
	return r.f.Value(r.i, col)
}

// Filter returns the rows for which keep is true
func (f *Frame) Filter(keep func(RowView) bool) *Frame {
	out := &Frame{columns: append([]string(nil), f.columns...)}
	for i, r := range f.rows {
		if keep(RowView{f: f, i: i}) {
			out.rows = append(out.rows, append([]string(nil), r...))
		}
	}
	return out
}

// WithColumn returns a frame with col set to values, appended when new
func (f *Frame) WithColumn(col string, values []string) *Frame {
	out := NewFrame(f.columns, f.rows)
	idx := out.Index(col)
	if idx < 0 {
		out.columns = append(out.columns, col)
		idx = len(out.columns) - 1
		for i := range out.rows {
			out.rows[i] = append(out.rows[i], "")
		}
	}
	for i := range out.rows {
		if i < len(values) {
			out.rows[i][idx] = values[i]
		}
	}
	return out
}

// Concat places other's columns to the right of f's.
// Rows are aligned by position; the shorter side is padded with nulls.
func (f *Frame) Concat(other *Frame) *Frame {
	n := len(f.rows)
	if len(other.rows) > n {
		n = len(other.rows)
	}
	out := &Frame{columns: append(append([]string(nil), f.columns...), other.columns...)}
	for i := 0; i < n; i++ {
		row := make([]string, len(out.columns))
		if i < len(f.rows) {
			copy(row, f.rows[i])
		}
		if i < len(other.rows) {
			copy(row[len(f.columns):], other.rows[i])
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// InnerJoin matches rows of f and other on equal, non-null values of column on.
// Output keeps f's row order; other's matches follow in their own order.
// Colliding non-key column names get _x / _y suffixes.
func (f *Frame) InnerJoin(other *Frame, on string) (*Frame, error) {
	li, ri := f.Index(on), other.Index(on)
	if li < 0 || ri < 0 {
		return nil, fmt.Errorf("join column %q not found", on)
	}

	rightCols := make([]int, 0, len(other.columns))
	for j := range other.columns {
		if j != ri {
			rightCols = append(rightCols, j)
		}
	}

	clash := make(map[string]bool)
	for _, j := range rightCols {
		if c := other.columns[j]; c != on && f.Has(c) {
			clash[c] = true
		}
	}

	out := &Frame{}
	for _, c := range f.columns {
		if clash[c] {
			c += "_x"
		}
		out.columns = append(out.columns, c)
	}
	for _, j := range rightCols {
		c := other.columns[j]
		if clash[c] {
			c += "_y"
		}
		out.columns = append(out.columns, c)
	}

	byKey := make(map[string][]int)
	for j, r := range other.rows {
		if !IsNull(r[ri]) {
			byKey[r[ri]] = append(byKey[r[ri]], j)
		}
	}

	for _, l := range f.rows {
		if IsNull(l[li]) {
			continue
		}
		for _, j := range byKey[l[li]] {
			row := append([]string(nil), l...)
			for _, k := range rightCols {
				row = append(row, other.rows[j][k])
			}
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// DropEmptyRows removes rows whose every cell is null
func (f *Frame) DropEmptyRows() *Frame {
	return f.Filter(func(r RowView) bool {
		for _, v := range r.f.rows[r.i] {
			if !IsNull(v) {
				return true
			}
		}
		return false
	})
}

// DropEmptyColumns removes columns whose every cell is null
func (f *Frame) DropEmptyColumns() *Frame {
	var keep []int
	for i := range f.columns {
		for _, r := range f.rows {
			if !IsNull(r[i]) {
				keep = append(keep, i)
				break
			}
		}
	}
	return f.pick(keep)
}

// HasNull reports whether any cell is null
func (f *Frame) HasNull() bool {
	for _, r := range f.rows {
		for _, v := range r {
			if IsNull(v) {
				return true
			}
		}
	}
	return false
}

// Records converts every row into an ordered record
func (f *Frame) Records() []Record {
	out := make([]Record, 0, len(f.rows))
	for _, r := range f.rows {
		rec := make(Record, len(f.columns))
		for i, c := range f.columns {
			rec[i] = Field{Key: c, Value: r[i]}
		}
		out = append(out, rec)
	}
	return out
}
