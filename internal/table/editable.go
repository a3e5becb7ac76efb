package table

import "fmt"

// Editable is the live, user-editable grid.
// Header labels can be reassigned per column; the first label a column had
// before any reassignment is kept so each column can be restored on its own.
type Editable struct {
	labels   []string
	cells    [][]string
	original map[int]string
	hidden   map[int]bool
}

// State is the serializable form of an Editable
type State struct {
	Labels   []string       `json:"labels"`
	Cells    [][]string     `json:"cells"`
	Original map[int]string `json:"original,omitempty"`
	Hidden   []int          `json:"hidden,omitempty"`
}

// FromFrame loads a frame into a new grid, dropping columns with no values
func FromFrame(f *Frame) *Editable {
	f = f.DropEmptyColumns()
	return &Editable{
		labels:   f.Columns(),
		cells:    NewFrame(f.columns, f.rows).rows,
		original: make(map[int]string),
		hidden:   make(map[int]bool),
	}
}

// FromState restores a grid saved with State
func FromState(s State) *Editable {
	e := &Editable{
		labels:   append([]string(nil), s.Labels...),
		cells:    NewFrame(s.Labels, s.Cells).rows,
		original: make(map[int]string),
		hidden:   make(map[int]bool),
	}
	for k, v := range s.Original {
		e.original[k] = v
	}
	for _, h := range s.Hidden {
		e.hidden[h] = true
	}
	return e
}

// State returns a copy of the grid suitable for persisting
func (e *Editable) State() State {
	s := State{
		Labels:   append([]string(nil), e.labels...),
		Cells:    NewFrame(e.labels, e.cells).rows,
		Original: make(map[int]string, len(e.original)),
	}
	for k, v := range e.original {
		s.Original[k] = v
	}
	for i := range e.labels {
		if e.hidden[i] {
			s.Hidden = append(s.Hidden, i)
		}
	}
	return s
}

// Labels returns the current header labels
func (e *Editable) Labels() []string {
	return append([]string(nil), e.labels...)
}

// OriginalLabel returns the label column index had before it was first relabeled
func (e *Editable) OriginalLabel(index int) (string, bool) {
	l, ok := e.original[index]
	return l, ok
}

// Rows returns the row count
func (e *Editable) Rows() int {
	return len(e.cells)
}

func (e *Editable) checkIndex(index int) error {
	if index < 0 || index >= len(e.labels) {
		return fmt.Errorf("column index %d out of range (0-%d)", index, len(e.labels)-1)
	}
	return nil
}

// Set writes a single cell
func (e *Editable) Set(row, col int, value string) error {
	if err := e.checkIndex(col); err != nil {
		return err
	}
	if row < 0 || row >= len(e.cells) {
		return fmt.Errorf("row %d out of range (0-%d)", row, len(e.cells)-1)
	}
	e.cells[row][col] = value
	return nil
}

// Relabel assigns label to column index.
// A different column already carrying label is restored to its original first.
// The returned bool reports whether the column's label actually changed.
func (e *Editable) Relabel(index int, label string) (bool, error) {
	if err := e.checkIndex(index); err != nil {
		return false, err
	}

	if other := e.Find(label); other >= 0 && other != index {
		e.Restore(other)
	}

	old := e.labels[index]
	if _, ok := e.original[index]; !ok {
		e.original[index] = old
	}
	e.labels[index] = label
	return old != label, nil
}

// Restore puts back the original label of column index, if it was relabeled
func (e *Editable) Restore(index int) {
	old, ok := e.original[index]
	if !ok {
		return
	}
	delete(e.original, index)
	if old != "" {
		e.labels[index] = old
	}
}

// RestoreLabel restores the column currently labeled label
func (e *Editable) RestoreLabel(label string) {
	if idx := e.Find(label); idx >= 0 {
		e.Restore(idx)
	}
}

// RestoreAll restores every relabeled column
func (e *Editable) RestoreAll() {
	for idx := range e.original {
		e.Restore(idx)
	}
}

// Find returns the first column labeled label, -1 if none
func (e *Editable) Find(label string) int {
	for i, l := range e.labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Hide marks a column hidden; hidden columns still take part in Snapshot
func (e *Editable) Hide(index int) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.hidden[index] = true
	return nil
}

// Hidden reports whether column index is hidden
func (e *Editable) Hidden(index int) bool {
	return e.hidden[index]
}

// ShowAll clears every hidden flag
func (e *Editable) ShowAll() {
	e.hidden = make(map[int]bool)
}

// Snapshot materializes the grid into a frame named by the current labels
func (e *Editable) Snapshot() *Frame {
	return NewFrame(e.labels, e.cells)
}
