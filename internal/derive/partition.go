package derive

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/n0roo/ikd-kit/internal/kittype"
	"github.com/n0roo/ikd-kit/internal/table"
)

// ErrEmptyTable is returned when there is nothing to partition
var ErrEmptyTable = errors.New("Table is empty")

// SchemaMismatchError lists every kit type field missing from the table
type SchemaMismatchError struct {
	KitType string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("Required header labels are not set in the table: %s", strings.Join(e.Missing, ", "))
}

// DataIntegrityError names an index set whose rows are only partly filled
type DataIntegrityError struct {
	Set string
	// Rows are 1-based positions in the partitioned table
	Rows []int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("null values in the index table for %s (rows %s)", e.Set, RowList(e.Rows))
}

// RequireFields checks that every field of schema is a column of frame
func RequireFields(frame *table.Frame, schema kittype.Schema) error {
	seen := map[string]bool{}
	var missing []string
	for _, field := range schema.Fields() {
		if seen[field] || frame.Has(field) {
			continue
		}
		seen[field] = true
		missing = append(missing, field)
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &SchemaMismatchError{KitType: schema.Name, Missing: missing}
}

// Partition splits frame into the index sets of schema. Rows that are empty
// across a set's fields are dropped; a row only partly filled fails the
// whole partition.
func Partition(frame *table.Frame, schema kittype.Schema) (map[string][]table.Record, error) {
	if frame.Empty() {
		return nil, ErrEmptyTable
	}
	if err := RequireFields(frame, schema); err != nil {
		return nil, err
	}

	out := make(map[string][]table.Record, len(schema.Sets))
	for _, set := range schema.Sets {
		sub, err := frame.Select(set.Fields...)
		if err != nil {
			return nil, err
		}
		var partial []int
		for i := 0; i < sub.Len(); i++ {
			row := sub.Row(i)
			nulls := 0
			for _, v := range row {
				if table.IsNull(v) {
					nulls++
				}
			}
			if nulls > 0 && nulls < len(row) {
				partial = append(partial, i+1)
			}
		}
		if len(partial) > 0 {
			return nil, &DataIntegrityError{Set: set.Name, Rows: partial}
		}
		out[set.Name] = sub.DropEmptyRows().Records()
	}
	return out, nil
}
