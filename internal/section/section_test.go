package section

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "stray line before any header\n" +
	"[IndexKit]\n" +
	"Name\tMy-Kit\n" +
	"DisplayName\tMy Kit 96\n" +
	"IndexStrategy\tDualOnly\n" +
	"\n" +
	"[SupportedLibraryPrepKits]\n" +
	"  PrepKitA  \n" +
	"[Empty]\n" +
	"[Indices]\n" +
	"Name\tSequence\tIndexReadNumber\n" +
	"D701\tATTACTCG\t1\n"

func TestParseSections(t *testing.T) {
	s := Parse(sample)

	assert.Len(t, s, 4)
	assert.Equal(t, []string{"Name\tMy-Kit", "DisplayName\tMy Kit 96", "IndexStrategy\tDualOnly"}, s.Get("IndexKit"))
	assert.Equal(t, []string{"PrepKitA"}, s.Get("SupportedLibraryPrepKits"))
	assert.True(t, s.Has("Empty"))
	assert.Empty(t, s.Get("Empty"))
	assert.False(t, s.Has("Resources"))

	for _, lines := range s {
		for _, l := range lines {
			assert.NotContains(t, l, "stray")
			assert.False(t, IsHeader(l))
		}
	}
}

func TestRepeatedHeaderStartsOver(t *testing.T) {
	s := Parse("[A]\n1\n[B]\n2\n[A]\n3\n")
	assert.Equal(t, []string{"3"}, s.Get("A"))
	assert.Equal(t, []string{"2"}, s.Get("B"))
}

func TestKeyValuesPreservesValues(t *testing.T) {
	s := Parse(sample)
	kv, keys, err := s.KeyValues("IndexKit")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "display_name", "index_strategy"}, keys)
	assert.Equal(t, "My-Kit", kv["name"])
	assert.Equal(t, "My Kit 96", kv["display_name"])
	assert.Len(t, kv, len(s.Get("IndexKit")))
}

func TestKeyValuesFormatError(t *testing.T) {
	for _, line := range []string{"NoTab", "Too\tMany\tTabs"} {
		_, _, err := KeyValues("Kit", []string{"Name\tok", line})
		require.Error(t, err)

		var fe *FormatError
		require.True(t, errors.As(err, &fe), "want *FormatError, got %T", err)
		assert.Equal(t, "Kit", fe.Section)
		assert.Equal(t, 2, fe.Line)
	}
}

func TestParseTable(t *testing.T) {
	s := Parse(sample)
	f, err := s.Table("Indices")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "sequence", "index_read_number"}, f.Columns())
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, "ATTACTCG", f.Value(0, "sequence"))

	empty, err := s.Table("Resources")
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestParseTableRaggedRows(t *testing.T) {
	f, err := ParseTable("Resources", []string{"Name\tType\tFormat\tValue", "Adapter\tString\tString"})
	require.NoError(t, err)
	assert.Equal(t, "", f.Value(0, "value"))

	_, err = ParseTable("Resources", []string{"A\tB", "1\t2\t3"})
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)
}

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"IndexReadNumber":   "index_read_number",
		"AdapterRead2":      "adapter_read2",
		"DisplayName":       "display_name",
		"Name":              "name",
		"index_read_number": "index_read_number",
		"DNAIndex":          "dna_index",
		"Index Read Number": "index_read_number",
		"fixed-pos":         "fixed_pos",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnake(in), "ToSnake(%q)", in)
	}
}

func TestParseReaderLongLines(t *testing.T) {
	long := strings.Repeat("A", 200*1024)
	s, err := ParseReader(strings.NewReader(fmt.Sprintf("[Indices]\nName\tSequence\nx\t%s\n", long)))
	require.NoError(t, err)
	assert.Len(t, s.Get("Indices"), 2)
}
