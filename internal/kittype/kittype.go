// Package kittype describes which index sets and fields belong to a kit type.
// Schemas are loaded once into a Registry and never mutated afterwards.
package kittype

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed kit_type_fields.yaml
var defaultSchemaYAML []byte

// IndexSet is a named group of table fields exported together
type IndexSet struct {
	Name   string   `yaml:"name" json:"name"`
	Fields []string `yaml:"fields" json:"fields"`
}

// Schema is the ordered list of index sets of one kit type
type Schema struct {
	Name string
	Sets []IndexSet
}

// IndexSetNames returns set names in declaration order
func (s Schema) IndexSetNames() []string {
	names := make([]string, 0, len(s.Sets))
	for _, set := range s.Sets {
		if set.Name != "" {
			names = append(names, set.Name)
		}
	}
	return names
}

// Fields returns every field of every set in declaration order.
// Fields shared by several sets appear once per set.
func (s Schema) Fields() []string {
	var fields []string
	for _, set := range s.Sets {
		fields = append(fields, set.Fields...)
	}
	return fields
}

// IndexSetFields returns the fields of the named set, nil if unknown
func (s Schema) IndexSetFields(name string) []string {
	for _, set := range s.Sets {
		if set.Name == name {
			return set.Fields
		}
	}
	return nil
}

// FieldContainer returns the first set containing field, "" if none
func (s Schema) FieldContainer(field string) string {
	for _, set := range s.Sets {
		for _, f := range set.Fields {
			if f == field {
				return set.Name
			}
		}
	}
	return ""
}

// Data returns the schema in its configuration shape (kit type -> sets)
func (s Schema) Data() map[string][]IndexSet {
	sets := make([]IndexSet, len(s.Sets))
	for i, set := range s.Sets {
		sets[i] = IndexSet{Name: set.Name, Fields: append([]string(nil), set.Fields...)}
	}
	return map[string][]IndexSet{s.Name: sets}
}

func (s Schema) validate() error {
	if len(s.Sets) == 0 {
		return fmt.Errorf("kit type %q has no index sets", s.Name)
	}
	for _, set := range s.Sets {
		if set.Name == "" {
			return fmt.Errorf("kit type %q: index set without name", s.Name)
		}
		seen := make(map[string]bool, len(set.Fields))
		for _, f := range set.Fields {
			if seen[f] {
				return fmt.Errorf("kit type %q: field %q repeated in index set %q", s.Name, f, set.Name)
			}
			seen[f] = true
		}
	}
	return nil
}

// Registry holds every configured kit type in file order
type Registry struct {
	names   []string
	schemas map[string]Schema
}

// Parse builds a registry from kit type YAML
func Parse(data []byte) (*Registry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("kit type 파싱 실패: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("kit type 정의가 비어있습니다")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("kit type 정의는 mapping 이어야 합니다 (line %d)", doc.Line)
	}

	reg := &Registry{schemas: make(map[string]Schema)}
	// mapping 노드는 key, value 가 번갈아 나온다
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		var sets []IndexSet
		if err := doc.Content[i+1].Decode(&sets); err != nil {
			return nil, fmt.Errorf("kit type %q 파싱 실패: %w", name, err)
		}
		schema := Schema{Name: name, Sets: sets}
		if err := schema.validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.schemas[name]; dup {
			return nil, fmt.Errorf("kit type %q 중복 정의", name)
		}
		reg.names = append(reg.names, name)
		reg.schemas[name] = schema
	}

	if len(reg.names) == 0 {
		return nil, fmt.Errorf("kit type 정의가 비어있습니다")
	}
	return reg, nil
}

// Load reads a kit type YAML file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kit type 파일 읽기 실패: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded kit type registry
func Default() *Registry {
	reg, err := Parse(defaultSchemaYAML)
	if err != nil {
		panic(err)
	}
	return reg
}

// LoadOrDefault loads path, or the embedded registry when path is empty
func LoadOrDefault(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Get returns the schema for a kit type
func (r *Registry) Get(name string) (Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Lookup returns the schema or an error naming the known kit types
func (r *Registry) Lookup(name string) (Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("unknown kit type %q (known: %v)", name, r.names)
	}
	return s, nil
}

// Names returns kit type names in file order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Schemas returns every schema in file order
func (r *Registry) Schemas() []Schema {
	out := make([]Schema, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.schemas[n])
	}
	return out
}
