// Package ikd models a vendor index kit definition file: kit metadata,
// resources, per-read index candidates and the fixed-position layouts
// built from them.
package ikd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/n0roo/ikd-kit/internal/section"
	"github.com/n0roo/ikd-kit/internal/table"
)

// Kind is the derived index layout of a kit
type Kind string

const (
	FixedSingleIndex    Kind = "fixed_single_index"
	FixedDualIndex      Kind = "fixed_dual_index"
	StandardDualIndex   Kind = "standard_dual_index"
	StandardSingleIndex Kind = "standard_single_index"
)

// Index strategies that enable fixed-position derivation
const (
	StrategyDualOnly   = "DualOnly"
	StrategySingleOnly = "SingleOnly"
)

// Section names recognized in a definition file
const (
	SectionIndexKit  = "IndexKit"
	SectionKit       = "Kit"
	SectionPrepKits  = "SupportedLibraryPrepKits"
	SectionResources = "Resources"
	SectionIndices   = "Indices"
)

const fixedPositionType = "FixedIndexPosition"

// ErrNoKitType is returned when no index table could be derived
var ErrNoKitType = errors.New("index kit has no usable indices")

// Definition is one parsed index kit definition file
type Definition struct {
	Metadata                 map[string]string
	MetadataKeys             []string
	SupportedLibraryPrepKits []string

	// Resources holds the scalar resources, keyed by snake_case name
	Resources map[string]string

	resources *table.Frame
	indices   *table.Frame

	I7          *table.Frame
	I5          *table.Frame
	FixedDual   *table.Frame
	FixedSingle *table.Frame
}

// Load reads and parses a definition file
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("index kit 파일 읽기 실패: %w", err)
	}
	d, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse builds a definition from file text.
// Any error aborts the whole parse; no partial definition is returned.
func Parse(text string) (*Definition, error) {
	sections := section.Parse(text)
	d := &Definition{
		SupportedLibraryPrepKits: append([]string(nil), sections.Get(SectionPrepKits)...),
	}

	// IndexKit 이 비어있으면 Kit 으로 대체
	kitName := SectionIndexKit
	if len(sections.Get(SectionIndexKit)) == 0 {
		kitName = SectionKit
	}
	meta, keys, err := sections.KeyValues(kitName)
	if err != nil {
		return nil, err
	}
	d.Metadata, d.MetadataKeys = meta, keys
	if _, ok := d.Metadata["index_strategy"]; !ok {
		return nil, fmt.Errorf("[%s] missing index_strategy", kitName)
	}

	if d.resources, err = requiredTable(sections, SectionResources, "type", "name", "value"); err != nil {
		return nil, err
	}
	if d.indices, err = requiredTable(sections, SectionIndices, "index_read_number", "name", "sequence"); err != nil {
		return nil, err
	}

	d.Resources = d.scalarResources()
	d.I7 = d.indexCandidates(1, "i7")
	d.I5 = d.indexCandidates(2, "i5")

	if d.FixedDual, err = d.fixedFrame(StrategyDualOnly); err != nil {
		return nil, err
	}
	if d.FixedSingle, err = d.fixedFrame(StrategySingleOnly); err != nil {
		return nil, err
	}
	return d, nil
}

// requiredTable parses a tabular section; a non-empty table must carry cols
func requiredTable(sections section.Sections, name string, cols ...string) (*table.Frame, error) {
	f, err := sections.Table(name)
	if err != nil {
		return nil, err
	}
	if len(f.Columns()) == 0 {
		return f, nil
	}
	var missing []string
	for _, c := range cols {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &section.FormatError{
			Section: name,
			Line:    1,
			Text:    strings.Join(f.Columns(), "\t"),
			Reason:  "missing column(s) " + strings.Join(missing, ", "),
		}
	}
	return f, nil
}

// IndexStrategy returns the declared index strategy
func (d *Definition) IndexStrategy() string {
	return d.Metadata["index_strategy"]
}

func isFixed(r table.RowView) bool {
	return strings.Contains(r.Get("type"), fixedPositionType)
}

func (d *Definition) fixedRows() *table.Frame {
	if !d.resources.Has("type") {
		return table.NewFrame(nil, nil)
	}
	return d.resources.Filter(isFixed)
}

func (d *Definition) scalarResources() map[string]string {
	out := make(map[string]string)
	if !d.resources.Has("type") {
		return out
	}
	other := d.resources.Filter(func(r table.RowView) bool { return !isFixed(r) })
	for i := 0; i < other.Len(); i++ {
		out[section.ToSnake(other.Value(i, "name"))] = other.Value(i, "value")
	}
	return out
}

// indexCandidates selects Indices rows of one read number, renamed per read
func (d *Definition) indexCandidates(readNumber int, read string) *table.Frame {
	if !d.indices.Has("index_read_number") {
		return table.NewFrame(nil, nil)
	}
	rows := d.indices.Filter(func(r table.RowView) bool {
		n, err := strconv.ParseFloat(r.Get("index_read_number"), 64)
		return err == nil && n == float64(readNumber)
	})
	return rows.Rename(map[string]string{
		"name":     "index_" + read + "_name",
		"sequence": "index_" + read,
	}).Drop("index_read_number")
}

// fixedFrame derives the fixed-position table for one strategy.
// Dual rows split "<i7>-<i5>" and inner-join against both candidate tables,
// so names missing from either table drop the row. Single rows carry only
// the i7 name; sequences are not looked up.
func (d *Definition) fixedFrame(strategy string) (*table.Frame, error) {
	fixed := d.fixedRows()
	if d.IndexStrategy() != strategy || fixed.Empty() {
		return table.NewFrame(nil, nil), nil
	}

	fixed = fixed.Rename(map[string]string{"name": "fixed_pos"})
	values, _ := fixed.Column("value")

	if strategy == StrategySingleOnly {
		return fixed.WithColumn("index_i7_name", values).Drop("type", "format", "value"), nil
	}

	i7Names := make([]string, len(values))
	i5Names := make([]string, len(values))
	for i, v := range values {
		parts := strings.SplitN(v, "-", 2)
		i7Names[i] = parts[0]
		if len(parts) == 2 {
			i5Names[i] = parts[1]
		}
	}
	fixed = fixed.WithColumn("index_i7_name", i7Names).
		WithColumn("index_i5_name", i5Names).
		Drop("type", "format", "value")

	if d.I7.Empty() || d.I5.Empty() {
		return table.NewFrame(nil, nil), nil
	}
	joined, err := fixed.InnerJoin(d.I7, "index_i7_name")
	if err != nil {
		return nil, err
	}
	return joined.InnerJoin(d.I5, "index_i5_name")
}

// KitType derives the layout by priority; the first non-empty table wins.
// A fixed strategy whose fixed table came out empty falls through to the
// standard layouts.
func (d *Definition) KitType() (Kind, bool) {
	switch {
	case !d.FixedSingle.Empty():
		return FixedSingleIndex, true
	case !d.FixedDual.Empty():
		return FixedDualIndex, true
	case !d.I7.Empty() && !d.I5.Empty():
		return StandardDualIndex, true
	case !d.I7.Empty():
		return StandardSingleIndex, true
	default:
		return "", false
	}
}

// IndicesFrame returns the unified index table matching KitType.
// Standard dual tables are placed side by side, not matched row by row.
func (d *Definition) IndicesFrame() *table.Frame {
	kind, _ := d.KitType()
	switch kind {
	case FixedSingleIndex:
		return d.FixedSingle
	case FixedDualIndex:
		return d.FixedDual
	case StandardDualIndex:
		return d.I7.Concat(d.I5)
	case StandardSingleIndex:
		return d.I7
	default:
		return table.NewFrame(nil, nil)
	}
}

// Preset holds the settings a loaded definition fills in for the user
type Preset struct {
	KitType      Kind
	Name         string
	DisplayName  string
	Version      string
	Description  string
	AdapterRead1 string
	AdapterRead2 string
}

// Preset returns the kit and resource settings implied by the definition.
// Metadata values lose spaces and hyphens so they pass the name grammar.
func (d *Definition) Preset() (Preset, error) {
	kind, ok := d.KitType()
	if !ok {
		return Preset{}, ErrNoKitType
	}
	clean := func(key string) string {
		return strings.NewReplacer(" ", "", "-", "").Replace(d.Metadata[key])
	}
	return Preset{
		KitType:      kind,
		Name:         clean("name"),
		DisplayName:  clean("display_name"),
		Version:      clean("version"),
		Description:  clean("description"),
		AdapterRead1: d.Resources["adapter"],
		AdapterRead2: d.Resources["adapter_read2"],
	}, nil
}
