package db

import (
	"os"
	"path/filepath"
	"testing"
)

// 임시 DB 생성 헬퍼
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ikd-test-*")
	if err != nil {
		t.Fatalf("임시 디렉토리 생성 실패: %v", err)
	}

	db, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("DB 열기 실패: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

func TestOpen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "ikd-test-*")
	if err != nil {
		t.Fatalf("임시 디렉토리 생성 실패: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// 중첩 디렉토리도 생성되어야 함
	dbPath := filepath.Join(tmpDir, "nested", "ikd.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("DB 열기 실패: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("DB 파일이 생성되지 않음")
	}
	if db.Path() != dbPath {
		t.Errorf("경로 불일치: %s", db.Path())
	}
}

func TestInit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tables := []string{"sessions", "session_tables", "session_events", "exports", "edit_locks", "metadata"}

	for _, table := range tables {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("테이블 %s가 존재하지 않음: %v", table, err)
		}
	}
}

func TestInitIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.Init(); err != nil {
		t.Fatalf("재초기화 실패: %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	version, err := db.GetVersion()
	if err != nil {
		t.Fatalf("버전 조회 실패: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("버전 = %d, 기대값 %d", version, schemaVersion)
	}
}

func TestCascadeDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := db.Exec(`INSERT INTO sessions (id, kit_type) VALUES ('s1', 'standard_dual_index')`); err != nil {
		t.Fatalf("세션 삽입 실패: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO session_events (session_id, event_type) VALUES ('s1', 'load')`); err != nil {
		t.Fatalf("이벤트 삽입 실패: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM sessions WHERE id = 's1'`); err != nil {
		t.Fatalf("세션 삭제 실패: %v", err)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM session_events`).Scan(&count)
	if count != 0 {
		t.Errorf("이벤트가 남아 있음: %d", count)
	}
}
