package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/n0roo/ikd-kit/internal/db"
	"github.com/n0roo/ikd-kit/internal/export"
	"github.com/n0roo/ikd-kit/internal/table"
)

// Session statuses
const (
	StatusOpen     = "open"
	StatusExported = "exported"
)

// Source kinds
const (
	SourceIKD = "ikd"
	SourceCSV = "csv"
)

// Event types
const (
	EventLoad     = "load"
	EventKitType  = "kit_type"
	EventRelabel  = "relabel"
	EventRestore  = "restore"
	EventCycles   = "cycles"
	EventSettings = "settings"
	EventCell     = "cell"
	EventExport   = "export"
)

// Session is one editing session: a loaded table plus its settings
type Session struct {
	ID         string                  `json:"id"`
	KitType    string                  `json:"kit_type"`
	SourcePath string                  `json:"source_path"`
	SourceKind string                  `json:"source_kind"`
	Status     string                  `json:"status"`
	UserName   string                  `json:"user_name"`
	Kit        export.KitSettings      `json:"kit"`
	Resource   export.ResourceSettings `json:"resource"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// Event is a recorded session action
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOptions describes a newly loaded table
type CreateOptions struct {
	SourcePath string
	SourceKind string
	UserName   string
	Kit        export.KitSettings
	Resource   export.ResourceSettings
	Table      *table.Editable
}

// Service handles session operations
type Service struct {
	db *db.DB
}

// NewService creates a new session service
func NewService(database *db.DB) *Service {
	return &Service{db: database}
}

// Create stores a new session and its table in one transaction
func (s *Service) Create(opts CreateOptions) (*Session, error) {
	if opts.Table == nil {
		return nil, fmt.Errorf("세션 생성 실패: 테이블이 없습니다")
	}
	if opts.SourceKind == "" {
		opts.SourceKind = SourceIKD
	}

	kitJSON, resJSON, err := settingsJSON(opts.Kit, opts.Resource)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, kit_type, source_path, source_kind, status, user_name, kit_json, resource_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, opts.Resource.KitType, opts.SourcePath, opts.SourceKind, StatusOpen, opts.UserName, kitJSON, resJSON)
	if err != nil {
		return nil, fmt.Errorf("세션 생성 실패: %w", err)
	}
	if err := saveTable(tx, id, opts.Table); err != nil {
		return nil, err
	}
	if err := logEvent(tx, id, EventLoad, map[string]interface{}{
		"source": opts.SourcePath, "kind": opts.SourceKind, "rows": opts.Table.Rows(),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("커밋 실패: %w", err)
	}

	return s.Get(id)
}

func settingsJSON(kit export.KitSettings, res export.ResourceSettings) (string, string, error) {
	k, err := json.Marshal(kit)
	if err != nil {
		return "", "", fmt.Errorf("설정 직렬화 실패: %w", err)
	}
	r, err := json.Marshal(res)
	if err != nil {
		return "", "", fmt.Errorf("설정 직렬화 실패: %w", err)
	}
	return string(k), string(r), nil
}

const selectSession = `
	SELECT id, kit_type, source_path, source_kind, status, user_name,
	       kit_json, resource_json, created_at, updated_at
	FROM sessions
`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*Session, error) {
	var sess Session
	var source, kind, user sql.NullString
	var kitJSON, resJSON string
	if err := row.Scan(
		&sess.ID, &sess.KitType, &source, &kind, &sess.Status, &user,
		&kitJSON, &resJSON, &sess.CreatedAt, &sess.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sess.SourcePath, sess.SourceKind, sess.UserName = source.String, kind.String, user.String
	if err := json.Unmarshal([]byte(kitJSON), &sess.Kit); err != nil {
		return nil, fmt.Errorf("키트 설정 파싱 실패: %w", err)
	}
	if err := json.Unmarshal([]byte(resJSON), &sess.Resource); err != nil {
		return nil, fmt.Errorf("리소스 설정 파싱 실패: %w", err)
	}
	return &sess, nil
}

// Get retrieves a session by ID
func (s *Service) Get(id string) (*Session, error) {
	sess, err := scanSession(s.db.QueryRow(selectSession+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("세션 '%s'을(를) 찾을 수 없습니다", id)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Latest returns the most recently updated session
func (s *Service) Latest() (*Session, error) {
	sess, err := scanSession(s.db.QueryRow(selectSession + ` ORDER BY updated_at DESC, rowid DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("세션이 없습니다. 먼저 'ikd load'로 파일을 불러오세요")
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve returns the session id, or the latest session when id is empty
func (s *Service) Resolve(id string) (*Session, error) {
	if id == "" {
		return s.Latest()
	}
	return s.Get(id)
}

// List returns sessions, most recent first
func (s *Service) List(limit int) ([]Session, error) {
	query := selectSession + ` ORDER BY updated_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("세션 목록 조회 실패: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// Delete removes a session with its table, events and export log
func (s *Service) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("세션 삭제 실패: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("세션 '%s'을(를) 찾을 수 없습니다", id)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func saveTable(ex execer, id string, t *table.Editable) error {
	st := t.State()
	labels, _ := json.Marshal(st.Labels)
	original, _ := json.Marshal(st.Original)
	hidden, _ := json.Marshal(st.Hidden)
	cells, err := json.Marshal(st.Cells)
	if err != nil {
		return fmt.Errorf("테이블 직렬화 실패: %w", err)
	}

	_, err = ex.Exec(`
		INSERT INTO session_tables (session_id, labels_json, original_json, hidden_json, cells_json, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			labels_json = excluded.labels_json,
			original_json = excluded.original_json,
			hidden_json = excluded.hidden_json,
			cells_json = excluded.cells_json,
			updated_at = CURRENT_TIMESTAMP
	`, id, string(labels), string(original), string(hidden), string(cells))
	if err != nil {
		return fmt.Errorf("테이블 저장 실패: %w", err)
	}
	return touch(ex, id)
}

func touch(ex execer, id string) error {
	_, err := ex.Exec(`UPDATE sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// LoadTable restores the editable table of a session
func (s *Service) LoadTable(id string) (*table.Editable, error) {
	var labels, original, hidden, cells string
	err := s.db.QueryRow(`
		SELECT labels_json, original_json, hidden_json, cells_json
		FROM session_tables WHERE session_id = ?
	`, id).Scan(&labels, &original, &hidden, &cells)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("세션 '%s'의 테이블이 없습니다", id)
	}
	if err != nil {
		return nil, fmt.Errorf("테이블 조회 실패: %w", err)
	}

	var st table.State
	for _, part := range []struct {
		raw string
		dst interface{}
	}{
		{labels, &st.Labels},
		{original, &st.Original},
		{hidden, &st.Hidden},
		{cells, &st.Cells},
	} {
		if err := json.Unmarshal([]byte(part.raw), part.dst); err != nil {
			return nil, fmt.Errorf("테이블 파싱 실패: %w", err)
		}
	}
	return table.FromState(st), nil
}

// SaveTable replaces the stored table of a session
func (s *Service) SaveTable(id string, t *table.Editable) error {
	return saveTable(s.db, id, t)
}

func logEvent(ex execer, id, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	_, err = ex.Exec(`
		INSERT INTO session_events (session_id, event_type, event_data)
		VALUES (?, ?, ?)
	`, id, eventType, string(payload))
	if err != nil {
		return fmt.Errorf("이벤트 기록 실패: %w", err)
	}
	return nil
}

// Events returns the recorded actions of a session, oldest first
func (s *Service) Events(id string) ([]Event, error) {
	rows, err := s.db.Query(`
		SELECT id, event_type, COALESCE(event_data, ''), created_at
		FROM session_events WHERE session_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("이벤트 조회 실패: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Type, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
