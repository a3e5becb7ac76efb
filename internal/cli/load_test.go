package cli

import (
	"path/filepath"
	"testing"
)

func TestLoadDelimitedPresetsReadCycles(t *testing.T) {
	dir := setupTestEnv(t, map[string]string{
		"sheet.csv": "index_i7_name,index_i7\nA01,ACGTACGT\nA02,GGGGCCCC\n",
	})

	loadDelimiter, loadKitType = ",", "standard_single_index"
	t.Cleanup(func() { loadDelimiter, loadKitType = "", "" })

	if err := runLoad(loadCmd, []string{filepath.Join(dir, "sheet.csv")}); err != nil {
		t.Fatalf("load 실패: %v", err)
	}

	svc, cleanup, err := getSessionService()
	if err != nil {
		t.Fatalf("서비스 생성 실패: %v", err)
	}
	defer cleanup()
	sess, err := svc.Latest()
	if err != nil {
		t.Fatalf("세션 조회 실패: %v", err)
	}

	if sess.SourceKind != "csv" {
		t.Errorf("SourceKind = %s, want csv", sess.SourceKind)
	}
	if sess.Resource.CyclesR1 != "Yx" || sess.Resource.CyclesR2 != "Yx" {
		t.Errorf("read cycle 이 Yx 로 설정되지 않음: R1=%q R2=%q", sess.Resource.CyclesR1, sess.Resource.CyclesR2)
	}
	if sess.Resource.CyclesI1 != "I8" {
		t.Errorf("CyclesI1 = %q, want I8", sess.Resource.CyclesI1)
	}
	if sess.Resource.KitType != "standard_single_index" {
		t.Errorf("KitType = %q", sess.Resource.KitType)
	}
}
