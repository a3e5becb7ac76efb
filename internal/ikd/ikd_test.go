package ikd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0roo/ikd-kit/internal/section"
)

func kitFile(strategy string, resources, indices []string) string {
	var b strings.Builder
	b.WriteString("[IndexKit]\n")
	b.WriteString("Name\tIDT-ILMN UD Indexes\n")
	b.WriteString("DisplayName\tIDT ILMN UD-Set A\n")
	b.WriteString("Version\t1.0\n")
	b.WriteString("IndexStrategy\t" + strategy + "\n")
	b.WriteString("[SupportedLibraryPrepKits]\nDNAPrep\nRNAPrep\n")
	if resources != nil {
		b.WriteString("[Resources]\nName\tType\tFormat\tValue\n")
		for _, r := range resources {
			b.WriteString(r + "\n")
		}
	}
	if indices != nil {
		b.WriteString("[Indices]\nName\tSequence\tIndexReadNumber\n")
		for _, r := range indices {
			b.WriteString(r + "\n")
		}
	}
	return b.String()
}

var (
	scalarResources = []string{
		"Adapter\tString\tString\tCTGTCTCTTATACACATCT",
		"AdapterRead2\tString\tString\tAGATCGGAAG",
	}
	dualIndices = []string{
		"A\tACGT\t1",
		"B\tTTTT\t2",
		"D\tGGGG\t1",
	}
)

func TestStandardDual(t *testing.T) {
	d, err := Parse(kitFile("DualOnly", scalarResources, dualIndices))
	require.NoError(t, err)

	kind, ok := d.KitType()
	require.True(t, ok)
	assert.Equal(t, StandardDualIndex, kind)

	assert.Equal(t, []string{"index_i7_name", "index_i7"}, d.I7.Columns())
	assert.Equal(t, 2, d.I7.Len())
	assert.Equal(t, 1, d.I5.Len())

	f := d.IndicesFrame()
	assert.Equal(t, []string{"index_i7_name", "index_i7", "index_i5_name", "index_i5"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "", f.Value(1, "index_i5"))

	assert.Equal(t, "CTGTCTCTTATACACATCT", d.Resources["adapter"])
	assert.Equal(t, "AGATCGGAAG", d.Resources["adapter_read2"])
	assert.Equal(t, []string{"DNAPrep", "RNAPrep"}, d.SupportedLibraryPrepKits)
}

func TestStandardSingle(t *testing.T) {
	d, err := Parse(kitFile("SingleOnly", nil, []string{"A\tACGT\t1"}))
	require.NoError(t, err)

	kind, ok := d.KitType()
	require.True(t, ok)
	assert.Equal(t, StandardSingleIndex, kind)
	assert.Equal(t, d.I7, d.IndicesFrame())
}

func TestFixedDualInnerJoin(t *testing.T) {
	res := append([]string{
		"A01\tFixedIndexPosition\tString\tA-B",
		"A02\tFixedIndexPosition\tString\tA-C",
		"A03\tFixedIndexPosition\tString\tNoDash",
	}, scalarResources...)

	d, err := Parse(kitFile("DualOnly", res, dualIndices))
	require.NoError(t, err)

	kind, _ := d.KitType()
	assert.Equal(t, FixedDualIndex, kind)

	f := d.IndicesFrame()
	require.Equal(t, 1, f.Len(), "unmatched i5 names are dropped by the join")
	assert.Equal(t, []string{"fixed_pos", "index_i7_name", "index_i5_name", "index_i7", "index_i5"}, f.Columns())
	assert.Equal(t, "A01", f.Value(0, "fixed_pos"))
	assert.Equal(t, "ACGT", f.Value(0, "index_i7"))
	assert.Equal(t, "TTTT", f.Value(0, "index_i5"))

	// fixed rows never leak into scalar resources
	_, ok := d.Resources["a01"]
	assert.False(t, ok)
}

func TestFixedSingleSkipsSequenceLookup(t *testing.T) {
	res := []string{"A01\tFixedIndexPosition\tString\tA", "A02\tFixedIndexPosition\tString\tMissing"}
	d, err := Parse(kitFile("SingleOnly", res, []string{"A\tACGT\t1"}))
	require.NoError(t, err)

	kind, _ := d.KitType()
	assert.Equal(t, FixedSingleIndex, kind)

	f := d.IndicesFrame()
	assert.Equal(t, []string{"fixed_pos", "index_i7_name"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "Missing", f.Value(1, "index_i7_name"))
}

func TestFixedStrategyFallsThrough(t *testing.T) {
	// DualOnly 이지만 fixed row 가 없으면 standard 로 내려간다
	d, err := Parse(kitFile("DualOnly", scalarResources, dualIndices))
	require.NoError(t, err)
	assert.True(t, d.FixedDual.Empty())

	// 모든 fixed row 가 join 에서 빠져도 마찬가지
	d, err = Parse(kitFile("DualOnly", []string{"A01\tFixedIndexPosition\tString\tX-Y"}, dualIndices))
	require.NoError(t, err)
	kind, _ := d.KitType()
	assert.Equal(t, StandardDualIndex, kind)

	// strategy 가 맞지 않으면 fixed 를 시도하지 않는다
	d, err = Parse(kitFile("NoIndex", []string{"A01\tFixedIndexPosition\tString\tA-B"}, dualIndices))
	require.NoError(t, err)
	kind, _ = d.KitType()
	assert.Equal(t, StandardDualIndex, kind)
}

func TestNoKitType(t *testing.T) {
	d, err := Parse(kitFile("DualOnly", scalarResources, nil))
	require.NoError(t, err)

	_, ok := d.KitType()
	assert.False(t, ok)
	assert.True(t, d.IndicesFrame().Empty())

	_, err = d.Preset()
	assert.True(t, errors.Is(err, ErrNoKitType))
}

func TestKitSectionFallback(t *testing.T) {
	text := "[Kit]\nName\tOld\nIndexStrategy\tSingleOnly\n[Indices]\nName\tSequence\tIndexReadNumber\nA\tACGT\t1\n"
	d, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "Old", d.Metadata["name"])

	// IndexKit 이 있으면 Kit 보다 우선
	d, err = Parse("[IndexKit]\nName\tNew\nIndexStrategy\tSingleOnly\n" + text)
	require.NoError(t, err)
	assert.Equal(t, "New", d.Metadata["name"])
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("[IndexKit]\nName\tA\n")
	assert.ErrorContains(t, err, "index_strategy")

	_, err = Parse("[IndexKit]\nName A\nIndexStrategy\tDualOnly\n")
	var fe *section.FormatError
	assert.True(t, errors.As(err, &fe))

	_, err = Parse("[IndexKit]\nIndexStrategy\tDualOnly\n[Indices]\nName\tSeq\n")
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Reason, "index_read_number")
}

func TestPreset(t *testing.T) {
	d, err := Parse(kitFile("DualOnly", scalarResources, dualIndices))
	require.NoError(t, err)

	p, err := d.Preset()
	require.NoError(t, err)
	assert.Equal(t, StandardDualIndex, p.KitType)
	assert.Equal(t, "IDTILMNUDIndexes", p.Name)
	assert.Equal(t, "IDTILMNUDSetA", p.DisplayName)
	assert.Equal(t, "1.0", p.Version)
	assert.Equal(t, "CTGTCTCTTATACACATCT", p.AdapterRead1)
	assert.Equal(t, "AGATCGGAAG", p.AdapterRead2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.tsv")
	require.NoError(t, os.WriteFile(path, []byte(kitFile("DualOnly", scalarResources, dualIndices)), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DualOnly", d.IndexStrategy())

	_, err = Load(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}
