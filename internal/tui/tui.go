// Package tui is the interactive editor for one session: a settings form
// with live field validation and a header relabeling view of the table.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/export"
	"github.com/n0roo/ikd-kit/internal/kittype"
	"github.com/n0roo/ikd-kit/internal/pattern"
	"github.com/n0roo/ikd-kit/internal/session"
	"github.com/n0roo/ikd-kit/internal/table"
)

// Tab represents an editor tab
type Tab int

const (
	TabSettings Tab = iota
	TabTable
)

func (t Tab) String() string {
	return []string{"Settings", "Table"}[t]
}

// Store is the part of the session service the editor uses
type Store interface {
	UpdateSettings(id string, kit export.KitSettings, res export.ResourceSettings) (*session.Session, error)
	Relabel(id string, index int, label string, n derive.Notifier) (*session.Session, session.RelabelResult, error)
	Restore(id string, index int) (*session.Session, error)
	RestoreAll(id string) (*session.Session, error)
	Autoset(id string, n derive.Notifier) (*session.Session, []derive.Update, error)
	LoadTable(id string) (*table.Editable, error)
}

var _ Store = (*session.Service)(nil)

var placeholders = map[string]string{
	export.FieldName:     "GMS560_Index_Kit",
	export.FieldVersion:  "1.2.3",
	export.FieldCyclesR1: "Y151",
	export.FieldCyclesI1: "I8",
	export.FieldCyclesI2: "I8",
	export.FieldCyclesR2: "Y151",
}

// field is one form row; kit_type has no input and cycles through names
type field struct {
	key   string
	input textinput.Model
}

// Model is the editor model
type Model struct {
	store    Store
	registry *kittype.Registry

	sess *session.Session
	grid *table.Editable

	currentTab Tab
	fields     []field
	focus      int
	kitType    string

	column    int
	candidate int

	width    int
	status   string
	warn     bool
	dirty    bool
	saved    bool
	err      error
	quitting bool
}

// NewModel creates the editor for sess
func NewModel(store Store, registry *kittype.Registry, sess *session.Session) (Model, error) {
	grid, err := store.LoadTable(sess.ID)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		store:    store,
		registry: registry,
		sess:     sess,
		grid:     grid,
		kitType:  sess.Resource.KitType,
	}
	for _, key := range append(append([]string(nil), export.KitFields...), export.ResourceFields...) {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[key]
		ti.CharLimit = 256
		ti.Width = 40
		m.fields = append(m.fields, field{key: key, input: ti})
	}
	m.loadValues()
	m.focusField(0)
	return m, nil
}

// loadValues copies the session settings into the inputs
func (m *Model) loadValues() {
	for i := range m.fields {
		key := m.fields[i].key
		v, ok := m.sess.Kit.Get(key)
		if !ok {
			v, _ = m.sess.Resource.Get(key)
		}
		m.fields[i].input.SetValue(v)
	}
	m.kitType = m.sess.Resource.KitType
}

func (m *Model) focusField(i int) tea.Cmd {
	for j := range m.fields {
		m.fields[j].input.Blur()
	}
	m.focus = i
	if m.fields[i].key == export.FieldKitType {
		return nil
	}
	return m.fields[i].input.Focus()
}

// Settings returns the form values. A value its grammar rejects keeps the
// session's value and is reported in the error.
func (m Model) Settings() (export.KitSettings, export.ResourceSettings, error) {
	kit := m.sess.Kit
	res := m.sess.Resource
	var errs []error
	for _, f := range m.fields {
		v := f.input.Value()
		if _, ok := kit.Get(f.key); ok {
			if err := kit.Set(f.key, v); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if f.key != export.FieldKitType {
			if err := res.Set(f.key, v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	res.KitType = m.kitType
	return kit, res, errors.Join(errs...)
}

// FieldState returns the live validation state of a form field
func (m Model) FieldState(key string) pattern.State {
	for _, f := range m.fields {
		if f.key != key {
			continue
		}
		if g := export.GrammarFor(key); g != nil {
			return g.Validate(f.input.Value())
		}
	}
	return pattern.Accepted
}

// Saved reports whether the settings were written at least once
func (m Model) Saved() bool {
	return m.saved
}

// Err returns the last error
func (m Model) Err() error {
	return m.err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+s":
			m.persist()
			return m, nil
		case "tab", "shift+tab":
			if m.currentTab == TabSettings {
				m.currentTab = TabTable
			} else {
				m.currentTab = TabSettings
			}
			return m, nil
		}

		if m.currentTab == TabTable {
			return m.updateTable(msg)
		}
		return m.updateSettings(msg)
	}

	if m.currentTab == TabSettings {
		var cmd tea.Cmd
		m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		return m, m.focusField((m.focus + len(m.fields) - 1) % len(m.fields))
	case "down", "enter":
		return m, m.focusField((m.focus + 1) % len(m.fields))
	}

	f := &m.fields[m.focus]
	if f.key == export.FieldKitType {
		switch msg.String() {
		case "left":
			m.cycleKitType(-1)
		case "right", " ":
			m.cycleKitType(1)
		}
		return m, nil
	}

	// 거부된 입력은 되돌림
	prev := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if g := export.GrammarFor(f.key); g != nil && g.Validate(f.input.Value()) == pattern.Rejected {
		f.input.SetValue(prev)
		m.setStatus(fmt.Sprintf("%s: invalid input", f.key), true)
		return m, cmd
	}
	if f.input.Value() != prev {
		m.dirty = true
	}
	return m, cmd
}

func (m *Model) cycleKitType(step int) {
	names := m.registry.Names()
	if len(names) == 0 {
		return
	}
	idx := 0
	for i, n := range names {
		if n == m.kitType {
			idx = i
			break
		}
	}
	m.kitType = names[(idx+step+len(names))%len(names)]
	m.candidate = 0
	m.dirty = true
}

// candidates are the labels offered for the selected column
func (m Model) candidates() []string {
	schema, ok := m.registry.Get(m.kitType)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, f := range schema.Fields() {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := len(m.grid.Labels())
	cands := m.candidates()
	switch msg.String() {
	case "left":
		if cols > 0 {
			m.column = (m.column + cols - 1) % cols
		}
	case "right":
		if cols > 0 {
			m.column = (m.column + 1) % cols
		}
	case "up":
		if len(cands) > 0 {
			m.candidate = (m.candidate + len(cands) - 1) % len(cands)
		}
	case "down":
		if len(cands) > 0 {
			m.candidate = (m.candidate + 1) % len(cands)
		}
	case "enter":
		if cols > 0 && len(cands) > 0 {
			m.relabel(m.column, cands[m.candidate])
		}
	case "r":
		m.apply(func() (*session.Session, error) { return m.store.Restore(m.sess.ID, m.column) }, "header restored")
	case "R":
		m.apply(func() (*session.Session, error) { return m.store.RestoreAll(m.sess.ID) }, "all headers restored")
	case "a":
		m.autoset()
	}
	return m, nil
}

// persist writes pending form values; table actions call it first
func (m *Model) persist() bool {
	kit, res, err := m.Settings()
	if err != nil {
		m.err = err
		m.setStatus(err.Error(), true)
		return false
	}
	sess, err := m.store.UpdateSettings(m.sess.ID, kit, res)
	if err != nil {
		m.err = err
		m.setStatus(err.Error(), true)
		return false
	}
	m.afterChange(sess)
	m.dirty = false
	m.saved = true
	m.setStatus("saved", false)
	return true
}

func (m *Model) afterChange(sess *session.Session) {
	m.sess = sess
	m.loadValues()
	if grid, err := m.store.LoadTable(sess.ID); err == nil {
		m.grid = grid
	}
}

func (m *Model) apply(fn func() (*session.Session, error), done string) {
	if !m.persist() {
		return
	}
	sess, err := fn()
	if err != nil {
		m.err = err
		m.setStatus(err.Error(), true)
		return
	}
	m.afterChange(sess)
	m.setStatus(done, false)
}

func (m *Model) relabel(index int, label string) {
	if !m.persist() {
		return
	}
	var c derive.Collector
	sess, res, err := m.store.Relabel(m.sess.ID, index, label, &c)
	if err != nil {
		m.err = err
		m.setStatus(err.Error(), true)
		return
	}
	m.afterChange(sess)
	switch {
	case len(c.Warnings) > 0:
		m.setStatus(c.Warnings[0].Error(), true)
	case res.Derived:
		m.setStatus(fmt.Sprintf("%s = %s", res.Update.Field, res.Update.Value), false)
	default:
		m.setStatus(fmt.Sprintf("column %d labeled %s", index, label), false)
	}
}

func (m *Model) autoset() {
	if !m.persist() {
		return
	}
	var c derive.Collector
	sess, updates, err := m.store.Autoset(m.sess.ID, &c)
	if err != nil {
		m.err = err
		m.setStatus(err.Error(), true)
		return
	}
	m.afterChange(sess)
	if len(c.Warnings) > 0 {
		m.setStatus(c.Warnings[0].Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d override cycle field(s) updated", len(updates)), false)
}

func (m *Model) setStatus(s string, warn bool) {
	m.status, m.warn = s, warn
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.currentTab {
	case TabSettings:
		b.WriteString(m.renderSettings())
	case TabTable:
		b.WriteString(m.renderTable())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.warn {
			b.WriteString(rejectedStyle.Render("  " + m.status))
		} else {
			b.WriteString(acceptedStyle.Render("  " + m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := "ikd editor"
	right := m.sess.ID
	if m.dirty {
		right = "● " + right
	}

	width := m.width
	if width < 60 {
		width = 60
	}
	left := lipgloss.NewStyle().Bold(true).Render(title)
	r := lipgloss.NewStyle().Foreground(mutedColor).Render(right)
	gap := width - lipgloss.Width(left) - lipgloss.Width(r) - 4
	if gap < 0 {
		gap = 0
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#2D3748")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Width(width).
		Render(left + strings.Repeat(" ", gap) + r)
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, tab := range []Tab{TabSettings, TabTable} {
		style := tabStyle
		if tab == m.currentTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(tab.String()))
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Index kit / Resources"))
	b.WriteString("\n")

	for i, f := range m.fields {
		cursor := "  "
		if i == m.focus {
			cursor = cursorStyle.Render("> ")
		}
		value := f.input.View()
		icon := " "
		if f.key == export.FieldKitType {
			value = selectedItemStyle.Render("◀ " + m.kitType + " ▶")
		} else if export.GrammarFor(f.key) != nil {
			icon = StateIcon(m.FieldState(f.key))
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s\n", cursor, labelStyle.Render(f.key), icon, value))
	}

	if src := m.sess.SourcePath; src != "" {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("  source: " + src))
	}
	return b.String()
}

func (m Model) renderTable() string {
	var b strings.Builder
	labels := m.grid.Labels()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Table (%d rows, kit type %s)", m.grid.Rows(), m.kitType)))
	b.WriteString("\n")

	if len(labels) == 0 {
		b.WriteString(hiddenStyle.Render("  No columns"))
		return b.String()
	}

	snap := m.grid.Snapshot()
	var cols []string
	for i, l := range labels {
		head := l
		if _, ok := m.grid.OriginalLabel(i); ok {
			head = relabeledStyle.Render(l)
		}
		if m.grid.Hidden(i) {
			head = hiddenStyle.Render(l + " (hidden)")
		}
		var cells []string
		cells = append(cells, head)
		for r := 0; r < snap.Len() && r < 5; r++ {
			cells = append(cells, snap.Row(r)[i])
		}
		style := boxStyle.BorderForeground(mutedColor)
		if i == m.column {
			style = boxStyle
		}
		cols = append(cols, style.Render(strings.Join(cells, "\n")))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("  label for column %d:", m.column)))
	b.WriteString("\n")
	for i, c := range m.candidates() {
		if i == m.candidate {
			b.WriteString(selectedItemStyle.Render(c))
		} else {
			b.WriteString(normalItemStyle.Render(c))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	help := "  [Tab] Switch  [↑↓] Field  [←→] Kit type  [Ctrl+S] Save  [Esc] Quit"
	if m.currentTab == TabTable {
		help = "  [←→] Column  [↑↓] Label  [Enter] Relabel  [r/R] Restore  [a] Autoset cycles  [Esc] Quit"
	}
	return helpStyle.Render(help)
}

// Run starts the editor and saves pending changes on exit
func Run(store Store, registry *kittype.Registry, sess *session.Session) error {
	m, err := NewModel(store, registry, sess)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.dirty {
		if !fm.persist() {
			return fm.err
		}
	}
	return nil
}
