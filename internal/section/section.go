// Package section splits flat, section-delimited text files into named
// blocks of lines and parses the key/value and tab-separated tables inside them.
package section

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/n0roo/ikd-kit/internal/table"
)

// Sections maps a section name to its content lines
type Sections map[string][]string

// FormatError reports malformed section content
type FormatError struct {
	Section string
	Line    int // 1-based line inside the section
	Text    string
	Reason  string
}

func (e *FormatError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("[%s] line %d: %s: %q", e.Section, e.Line, e.Reason, e.Text)
}

// Parse splits text into sections
func Parse(text string) Sections {
	s, _ := ParseReader(strings.NewReader(text))
	return s
}

// ParseReader splits r into sections.
// Blank lines are skipped and every line is trimmed. A "[Name]" line opens
// section Name; lines seen before the first header are dropped. A repeated
// header starts that section over.
func ParseReader(r io.Reader) (Sections, error) {
	sections := make(Sections)
	current := ""
	open := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if IsHeader(line) {
			current = line[1 : len(line)-1]
			open = true
			sections[current] = []string{}
			continue
		}
		if !open {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// IsHeader reports whether a trimmed line is a section header
func IsHeader(line string) bool {
	return len(line) >= 2 && line[0] == '[' && line[len(line)-1] == ']'
}

// Has reports whether the section was present, even if empty
func (s Sections) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Get returns the lines of a section, nil if absent
func (s Sections) Get(name string) []string {
	return s[name]
}

// KeyValues parses a section of key<TAB>value lines
func (s Sections) KeyValues(name string) (map[string]string, []string, error) {
	return KeyValues(name, s[name])
}

// Table parses a section as a tab-separated table with a header row
func (s Sections) Table(name string) (*table.Frame, error) {
	return ParseTable(name, s[name])
}

// KeyValues parses key<TAB>value lines. Keys are normalized with ToSnake and
// returned in file order alongside the map.
func KeyValues(section string, lines []string) (map[string]string, []string, error) {
	kv := make(map[string]string, len(lines))
	keys := make([]string, 0, len(lines))
	for i, line := range lines {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) != 2 {
			return nil, nil, &FormatError{
				Section: section,
				Line:    i + 1,
				Text:    line,
				Reason:  fmt.Sprintf("expected key<TAB>value, got %d field(s)", len(parts)),
			}
		}
		key := ToSnake(parts[0])
		if _, dup := kv[key]; !dup {
			keys = append(keys, key)
		}
		kv[key] = parts[1]
	}
	return kv, keys, nil
}

// ParseTable parses tab-separated lines; the first line is the header.
// Header names are normalized with ToSnake. Rows shorter than the header are
// padded with nulls, longer rows are a FormatError.
func ParseTable(section string, lines []string) (*table.Frame, error) {
	if len(lines) == 0 {
		return table.NewFrame(nil, nil), nil
	}

	header := strings.Split(lines[0], "\t")
	for i, h := range header {
		header[i] = ToSnake(strings.TrimSpace(h))
	}

	rows := make([][]string, 0, len(lines)-1)
	for i, line := range lines[1:] {
		cells := strings.Split(line, "\t")
		if len(cells) > len(header) {
			return nil, &FormatError{
				Section: section,
				Line:    i + 2,
				Text:    line,
				Reason:  fmt.Sprintf("expected %d field(s), saw %d", len(header), len(cells)),
			}
		}
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		rows = append(rows, cells)
	}
	return table.NewFrame(header, rows), nil
}

// ToSnake converts CamelCase or spaced names to snake_case.
// Digits stay attached to the word before them (AdapterRead2 -> adapter_read2)
// and acronym runs form one word (DNAIndex -> dna_index).
func ToSnake(s string) string {
	rs := []rune(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(rs) + 4)

	for i, r := range rs {
		switch {
		case r == ' ' || r == '-':
			r = '_'
		case unicode.IsUpper(r):
			if i > 0 {
				prev := rs[i-1]
				nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('_')
				}
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return out
}
