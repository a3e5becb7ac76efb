// Package derive checks index columns and derives override-cycle index
// patterns from them, and splits a finished table into the index sets of a
// kit type for export.
package derive

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/n0roo/ikd-kit/internal/table"
)

// Index-bearing column labels
const (
	LabelI7 = "index_i7"
	LabelI5 = "index_i5"
)

// Override-cycle fields fed by the index columns
const (
	FieldI1 = "override_cycles_pattern_i1"
	FieldI2 = "override_cycles_pattern_i2"
)

// IndexLabels lists the index-bearing labels in derivation order
var IndexLabels = []string{LabelI7, LabelI5}

var sequenceRe = regexp.MustCompile(`^[ACGTacgt]+$`)

// WarningKind distinguishes the two column checks
type WarningKind string

const (
	InvalidSequence WarningKind = "invalid_sequence"
	MixedLength     WarningKind = "mixed_length"
)

// Warning is a non-fatal column check failure
type Warning struct {
	Label string
	Kind  WarningKind
	Count int
	// Rows are 1-based positions in the checked table
	Rows []int
}

func (w Warning) Error() string {
	switch w.Kind {
	case InvalidSequence:
		return fmt.Sprintf("%s data contains %d invalid non-empty sequences. Invalid rows: %v", w.Label, w.Count, w.Rows)
	default:
		return fmt.Sprintf("%s column contains indexes of different lengths", w.Label)
	}
}

// Notifier receives warnings as they are detected
type Notifier interface {
	Warn(w Warning)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Warning)

func (f NotifierFunc) Warn(w Warning) { f(w) }

// Collector keeps every warning it receives
type Collector struct {
	Warnings []Warning
}

func (c *Collector) Warn(w Warning) {
	c.Warnings = append(c.Warnings, w)
}

func notify(n Notifier, w Warning) {
	if n != nil {
		n.Warn(w)
	}
}

// present returns the non-null cells of label with their 1-based row numbers
func present(label string, frame *table.Frame) ([]string, []int) {
	cells, ok := frame.Column(label)
	if !ok {
		return nil, nil
	}
	var values []string
	var rows []int
	for i, v := range cells {
		if table.IsNull(v) {
			continue
		}
		values = append(values, v)
		rows = append(rows, i+1)
	}
	return values, rows
}

// ValidateSequenceColumn checks that every non-empty cell of label is a DNA
// sequence. A violation is reported once, with all offending rows.
func ValidateSequenceColumn(label string, frame *table.Frame, n Notifier) bool {
	values, rows := present(label, frame)
	var bad []int
	for i, v := range values {
		if !sequenceRe.MatchString(v) {
			bad = append(bad, rows[i])
		}
	}
	if len(bad) == 0 {
		return true
	}
	notify(n, Warning{Label: label, Kind: InvalidSequence, Count: len(bad), Rows: bad})
	return false
}

// ValidateUniformLength checks that the non-empty cells of label share one
// length. A column with no values passes.
func ValidateUniformLength(label string, frame *table.Frame, n Notifier) bool {
	if _, ok := uniformLength(label, frame); ok {
		return true
	}
	values, _ := present(label, frame)
	if len(values) == 0 {
		return true
	}
	notify(n, Warning{Label: label, Kind: MixedLength, Count: len(distinctLengths(values))})
	return false
}

// distinctLengths counts characters, not bytes
func distinctLengths(values []string) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range values {
		l := utf8.RuneCountInString(v)
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func uniformLength(label string, frame *table.Frame) (int, bool) {
	values, _ := present(label, frame)
	lengths := distinctLengths(values)
	if len(lengths) != 1 {
		return 0, false
	}
	return lengths[0], true
}

func isIndexLabel(label string) bool {
	return label == LabelI7 || label == LabelI5
}

// CyclePattern returns the common sequence length of an index column. It
// reports false for non-index labels, empty columns and columns failing
// either check.
func CyclePattern(label string, frame *table.Frame, n Notifier) (int, bool) {
	if frame.Empty() || !isIndexLabel(label) || !frame.Has(label) {
		return 0, false
	}
	if !ValidateSequenceColumn(label, frame, n) || !ValidateUniformLength(label, frame, n) {
		return 0, false
	}
	return uniformLength(label, frame)
}

// FieldFor maps an index label to the override-cycle field it feeds
func FieldFor(label string) string {
	switch label {
	case LabelI7:
		return FieldI1
	case LabelI5:
		return FieldI2
	}
	return ""
}

// FormatCycles renders an index length as an override-cycle token
func FormatCycles(length int) string {
	return fmt.Sprintf("I%d", length)
}

// Update sets (or, with an empty Value, clears) one override-cycle field
type Update struct {
	Label string
	Field string
	Value string
}

// Clear reports whether the update empties its field
func (u Update) Clear() bool {
	return u.Value == ""
}

// BulkCycles derives patterns for every index column present in frame.
// Every column is checked before anything is returned; if one fails, no
// updates are produced and ok is false.
func BulkCycles(frame *table.Frame, n Notifier) (updates []Update, ok bool) {
	if frame.Empty() {
		return nil, true
	}
	var labels []string
	for _, label := range IndexLabels {
		if !frame.Has(label) {
			continue
		}
		if !ValidateSequenceColumn(label, frame, n) || !ValidateUniformLength(label, frame, n) {
			return nil, false
		}
		labels = append(labels, label)
	}
	for _, label := range labels {
		if length, ok := uniformLength(label, frame); ok {
			updates = append(updates, Update{Label: label, Field: FieldFor(label), Value: FormatCycles(length)})
		}
	}
	return updates, true
}

// LabelCycle recomputes the pattern of the column just labelled label.
// It reports false when the label is not index-bearing or the table is
// empty; otherwise the update either sets the field or, when the column
// fails its checks, clears it.
func LabelCycle(label string, frame *table.Frame, n Notifier) (Update, bool) {
	if frame.Empty() || !isIndexLabel(label) {
		return Update{}, false
	}
	u := Update{Label: label, Field: FieldFor(label)}
	if length, ok := CyclePattern(label, frame, n); ok {
		u.Value = FormatCycles(length)
	}
	return u, true
}

// RowList formats row numbers for messages
func RowList(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprint(r)
	}
	return strings.Join(parts, ", ")
}
