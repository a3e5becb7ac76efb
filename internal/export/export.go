// Package export assembles the index kit document from the edited table and
// the user's settings, and writes it as JSON or YAML.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/kittype"
	"github.com/n0roo/ikd-kit/internal/table"
)

// Format selects the document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultIndent matches the indentation of previously exported files
const DefaultIndent = 4

// ParseFormat accepts json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (json|yaml)", s)
}

// IndexKit is the index_kit member: kit settings plus the kit type schema
type IndexKit struct {
	KitSettings `yaml:",inline"`
	KitType     map[string][]kittype.IndexSet `json:"kit_type" yaml:"kit_type"`
}

// IndexSetRows holds the exported rows of one index set
type IndexSetRows struct {
	Name string
	Rows []table.Record
}

// Indexes keeps index sets in kit type order when encoded
type Indexes []IndexSetRows

// MarshalJSON writes an object keyed by set name
func (ix Indexes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, set := range ix {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(set.Name)
		if err != nil {
			return nil, err
		}
		rows := set.Rows
		if rows == nil {
			rows = []table.Record{}
		}
		val, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes a mapping keyed by set name
func (ix Indexes) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, set := range ix {
		rows := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		if len(set.Rows) > 0 {
			if err := rows.Encode(set.Rows); err != nil {
				return nil, err
			}
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: set.Name},
			rows,
		)
	}
	return node, nil
}

// Get returns the rows of the named set
func (ix Indexes) Get(name string) ([]table.Record, bool) {
	for _, set := range ix {
		if set.Name == name {
			return set.Rows, true
		}
	}
	return nil, false
}

// Document is the exported file; its four members are always present
type Document struct {
	UserInfo UserInfo         `json:"user_info" yaml:"user_info"`
	Resource ResourceSettings `json:"resource" yaml:"resource"`
	IndexKit IndexKit         `json:"index_kit" yaml:"index_kit"`
	Indexes  Indexes          `json:"indexes" yaml:"indexes"`
}

// Input is everything Build needs
type Input struct {
	Table    *table.Frame
	Registry *kittype.Registry
	User     UserInfo
	Kit      KitSettings
	Resource ResourceSettings
}

// Build validates the table and settings and assembles the document.
// Table errors are reported before settings errors.
func Build(in Input) (*Document, error) {
	if in.Table.Empty() {
		return nil, derive.ErrEmptyTable
	}
	if in.Registry == nil {
		return nil, fmt.Errorf("kit type registry not loaded")
	}
	schema, err := in.Registry.Lookup(in.Resource.KitType)
	if err != nil {
		return nil, err
	}

	sets, err := derive.Partition(in.Table, schema)
	if err != nil {
		return nil, err
	}
	if err := in.Resource.Validate(); err != nil {
		return nil, err
	}
	if err := in.Kit.Validate(); err != nil {
		return nil, err
	}

	user := in.User
	if user.User == "" {
		user.User = user.ADUser
	}

	doc := &Document{
		UserInfo: user,
		Resource: in.Resource,
		IndexKit: IndexKit{KitSettings: in.Kit, KitType: schema.Data()},
	}
	for _, name := range schema.IndexSetNames() {
		doc.Indexes = append(doc.Indexes, IndexSetRows{Name: name, Rows: sets[name]})
	}
	return doc, nil
}

// Write encodes doc to w
func Write(w io.Writer, doc *Document, format Format, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(indent)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("YAML 인코딩 실패: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", indent))
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("JSON 인코딩 실패: %w", err)
		}
		return nil
	}
}

// WriteFile writes doc to path, creating parent directories
func WriteFile(path string, doc *Document, format Format, indent int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("디렉토리 생성 실패: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc, format, indent); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("파일 저장 실패: %w", err)
	}
	return nil
}

// ProposedPath names the export after the loaded file: same base name, new extension
func ProposedPath(source string, format Format) string {
	base := filepath.Base(source)
	if source == "" || base == "." {
		base = "index_kit"
	}
	return EnsureSuffix(strings.TrimSuffix(base, filepath.Ext(base)), format)
}

// EnsureSuffix appends the format extension when path lacks it
func EnsureSuffix(path string, format Format) string {
	ext := "." + string(format)
	if format == "" {
		ext = ".json"
	}
	if path == "" || strings.HasSuffix(strings.ToLower(path), ext) {
		return path
	}
	return path + ext
}
