package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/kittype"
	"github.com/n0roo/ikd-kit/internal/table"
)

func dualTable() *table.Frame {
	return table.NewFrame(
		[]string{"index_i7_name", "index_i7", "index_i5_name", "index_i5"},
		[][]string{
			{"D701", "ATTACTCG", "D501", "TATAGCCT"},
			{"D702", "TCCGGAGA", "", ""},
		},
	)
}

func validInput() Input {
	return Input{
		Table:    dualTable(),
		Registry: kittype.Default(),
		User:     UserInfo{ADUser: "lab", FilePath: "/data/kit.tsv", Timestamp: "261017 10.00.00"},
		Kit:      KitSettings{Name: "GMS560_Index_Kit", DisplayName: "GMS 560", Version: "1.2.3"},
		Resource: ResourceSettings{
			AdapterRead1: "CTGTCTCTTATACACATCT",
			KitType:      "standard_dual_index",
			CyclesR1:     "Yx",
			CyclesI1:     "I8",
			CyclesI2:     "I8",
			CyclesR2:     "Yx",
		},
	}
}

func TestBuildDocument(t *testing.T) {
	doc, err := Build(validInput())
	require.NoError(t, err)

	assert.Equal(t, "lab", doc.UserInfo.User)
	i7, ok := doc.Indexes.Get("i7_indexes")
	require.True(t, ok)
	assert.Len(t, i7, 2)
	i5, _ := doc.Indexes.Get("i5_indexes")
	assert.Len(t, i5, 1)

	want := map[string][]kittype.IndexSet{
		"standard_dual_index": {
			{Name: "i7_indexes", Fields: []string{"index_i7_name", "index_i7"}},
			{Name: "i5_indexes", Fields: []string{"index_i5_name", "index_i5"}},
		},
	}
	if diff := cmp.Diff(want, doc.IndexKit.KitType); diff != "" {
		t.Errorf("kit_type (-want +got):\n%s", diff)
	}
}

func TestWriteJSONHasFourMembers(t *testing.T) {
	doc, err := Build(validInput())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, FormatJSON, DefaultIndent))

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 4)
	for _, key := range []string{"user_info", "resource", "index_kit", "indexes"} {
		assert.Contains(t, decoded, key)
	}

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n    \"user_info\""), out)
	assert.Less(t, strings.Index(out, `"i7_indexes"`), strings.Index(out, `"i5_indexes"`))
	assert.Less(t, strings.Index(out, `"index_i7_name": "D701"`), strings.Index(out, `"index_i7": "ATTACTCG"`))

	var kit map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded["index_kit"], &kit))
	assert.Equal(t, "GMS560_Index_Kit", kit["name"])
	assert.Contains(t, kit, "kit_type")
}

func TestWriteYAML(t *testing.T) {
	doc, err := Build(validInput())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, FormatYAML, 2))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 4)
	indexes := decoded["indexes"].(map[string]interface{})
	assert.Len(t, indexes["i7_indexes"], 2)
}

func TestBuildTableErrorsComeFirst(t *testing.T) {
	in := validInput()
	in.Kit = KitSettings{}
	in.Table = table.NewFrame([]string{"index_i7"}, [][]string{{"ACGT"}})

	_, err := Build(in)
	var mismatch *derive.SchemaMismatchError
	assert.True(t, errors.As(err, &mismatch), "got %v", err)

	in.Table = table.NewFrame(nil, nil)
	_, err = Build(in)
	assert.ErrorIs(t, err, derive.ErrEmptyTable)
}

func TestBuildIncompleteCycles(t *testing.T) {
	in := validInput()
	in.Resource.CyclesI2 = ""

	_, err := Build(in)
	assert.EqualError(t, err, "Incomplete override cycle pattern field: override_cycles_pattern_i2")

	in = validInput()
	in.Resource.CyclesR1 = "Y"
	_, err = Build(in)
	assert.EqualError(t, err, "Incomplete override cycle pattern field: override_cycles_pattern_r1")
}

func TestBuildMissingKitFields(t *testing.T) {
	in := validInput()
	in.Kit = KitSettings{DisplayName: "x"}

	_, err := Build(in)
	assert.EqualError(t, err, "Missing required index kit fields: name, version")

	in.Kit = KitSettings{Name: "kit", DisplayName: "x", Version: "1."}
	_, err = Build(in)
	assert.EqualError(t, err, "Invalid index kit fields: version")
}

func TestBuildUnknownKitType(t *testing.T) {
	in := validInput()
	in.Resource.KitType = "nope"
	_, err := Build(in)
	assert.Error(t, err)
}

func TestSettingsSet(t *testing.T) {
	var r ResourceSettings
	require.NoError(t, r.Set(FieldCyclesI1, "I"))
	assert.Error(t, r.Set(FieldCyclesI1, "Z8"))
	assert.Equal(t, "I", r.CyclesI1)
	assert.Error(t, r.Set("bogus", "x"))
	assert.Error(t, r.Set(FieldAdapterRead1, "ACGN"))

	r.PresetReads()
	assert.Equal(t, "Yx", r.CyclesR1)
	assert.Equal(t, "Yx", r.CyclesR2)

	r.Apply(derive.Update{Field: FieldCyclesI1, Value: "I10"})
	assert.Equal(t, "I10", r.CyclesI1)
	r.Apply(derive.Update{Field: FieldCyclesI1})
	assert.Equal(t, "", r.CyclesI1)

	var k KitSettings
	assert.Error(t, k.Set(FieldName, "has space"))
	require.NoError(t, k.Set(FieldDescription, "anything goes"))
	v, _ := k.Get(FieldDescription)
	assert.Equal(t, "anything goes", v)
}

func TestNewUserInfo(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)
	info := NewUserInfo("", "kit.tsv", now)
	assert.Equal(t, "261017 09.05.03", info.Timestamp)
	assert.Equal(t, info.ADUser, info.User)

	info = NewUserInfo("alice", "kit.tsv", now)
	assert.Equal(t, "alice", info.User)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "kit.json", ProposedPath("/data/in/kit.tsv", FormatJSON))
	assert.Equal(t, "kit.yaml", ProposedPath("kit.csv", FormatYAML))
	assert.Equal(t, "out.json", EnsureSuffix("out", FormatJSON))
	assert.Equal(t, "out.JSON", EnsureSuffix("out.JSON", FormatJSON))

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	doc, err := Build(validInput())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "kit.json")
	require.NoError(t, WriteFile(path, doc, FormatJSON, 0))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"override_cycles_pattern_i1": "I8"`)
}
