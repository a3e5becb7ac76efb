package kittype

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const testSchema = `
lanes:
  - name: lane1
    fields: [index_i7, index_i5, sample_id]
  - name: lane2
    fields: [index_i7, sample_id]
single:
  - name: only
    fields: [index_i7]
`

func TestParsePreservesOrder(t *testing.T) {
	reg, err := Parse([]byte(testSchema))
	if err != nil {
		t.Fatalf("Parse 실패: %v", err)
	}

	if got := reg.Names(); !reflect.DeepEqual(got, []string{"lanes", "single"}) {
		t.Errorf("Names = %v, want [lanes single]", got)
	}

	s, ok := reg.Get("lanes")
	if !ok {
		t.Fatal("lanes schema 없음")
	}
	if got := s.IndexSetNames(); !reflect.DeepEqual(got, []string{"lane1", "lane2"}) {
		t.Errorf("IndexSetNames = %v", got)
	}
	want := []string{"index_i7", "index_i5", "sample_id", "index_i7", "sample_id"}
	if got := s.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields = %v, want %v", got, want)
	}
	if got := s.IndexSetFields("lane2"); !reflect.DeepEqual(got, []string{"index_i7", "sample_id"}) {
		t.Errorf("IndexSetFields(lane2) = %v", got)
	}
	if got := s.IndexSetFields("nope"); got != nil {
		t.Errorf("IndexSetFields(nope) = %v, want nil", got)
	}
	if got := s.FieldContainer("index_i5"); got != "lane1" {
		t.Errorf("FieldContainer(index_i5) = %q, want lane1", got)
	}
	if got := s.FieldContainer("missing"); got != "" {
		t.Errorf("FieldContainer(missing) = %q, want empty", got)
	}
}

func TestParseRejectsDuplicateFieldInSet(t *testing.T) {
	_, err := Parse([]byte("k:\n  - name: s\n    fields: [a, a]\n"))
	if err == nil {
		t.Fatal("중복 필드가 허용됨")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "k: []\n", "- a\n"} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q) 성공, error 기대", in)
		}
	}
}

func TestData(t *testing.T) {
	reg, _ := Parse([]byte(testSchema))
	s, _ := reg.Get("single")
	data := s.Data()
	sets, ok := data["single"]
	if !ok || len(data) != 1 {
		t.Fatalf("Data = %v", data)
	}
	sets[0].Fields[0] = "changed"
	if s.Sets[0].Fields[0] != "index_i7" {
		t.Error("Data 가 schema 내부 slice 를 공유함")
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	for _, name := range []string{"standard_single_index", "standard_dual_index", "fixed_single_index", "fixed_dual_index"} {
		if _, err := reg.Lookup(name); err != nil {
			t.Errorf("default registry: %v", err)
		}
	}
	if _, err := reg.Lookup("nope"); err == nil {
		t.Error("unknown kit type 에 error 없음")
	}
}

func TestLoadOrDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit_types.yaml")
	if err := os.WriteFile(path, []byte(testSchema), 0644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault 실패: %v", err)
	}
	if len(reg.Schemas()) != 2 {
		t.Errorf("Schemas = %d, want 2", len(reg.Schemas()))
	}

	reg, err = LoadOrDefault("")
	if err != nil || len(reg.Names()) != 4 {
		t.Errorf("default: %v %v", reg, err)
	}
}
