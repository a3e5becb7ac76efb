// Package lock keeps one interactive editor per session.
package lock

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/n0roo/ikd-kit/internal/db"
)

// Lock is an edit lock held on a session
type Lock struct {
	SessionID  string    `json:"session_id"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// HeldError is returned when another holder already has the session
type HeldError struct {
	SessionID string
	Holder    string
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("세션 '%s'는 '%s'가 편집 중입니다", e.SessionID, e.Holder)
}

// Service handles lock operations
type Service struct {
	db *db.DB
}

// NewService creates a new lock service
func NewService(database *db.DB) *Service {
	return &Service{db: database}
}

// Holder names the current process, host:pid
func Holder() string {
	host, _ := os.Hostname()
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}

// Acquire locks sessionID for holder. Re-acquiring by the same holder succeeds.
func (s *Service) Acquire(sessionID, holder string) error {
	held, current, err := s.IsLocked(sessionID)
	if err != nil {
		return err
	}
	if held {
		if current == holder {
			return nil
		}
		return &HeldError{SessionID: sessionID, Holder: current}
	}

	if _, err := s.db.Exec(`INSERT INTO edit_locks (session_id, holder) VALUES (?, ?)`, sessionID, holder); err != nil {
		return fmt.Errorf("잠금 획득 실패: %w", err)
	}
	return nil
}

// Release drops the lock on sessionID if holder owns it
func (s *Service) Release(sessionID, holder string) error {
	result, err := s.db.Exec(`DELETE FROM edit_locks WHERE session_id = ? AND holder = ?`, sessionID, holder)
	if err != nil {
		return fmt.Errorf("잠금 해제 실패: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("세션 '%s'에 대한 잠금이 없습니다", sessionID)
	}
	return nil
}

// Force drops the lock on sessionID whoever holds it
func (s *Service) Force(sessionID string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM edit_locks WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, fmt.Errorf("잠금 해제 실패: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// List returns all active locks
func (s *Service) List() ([]Lock, error) {
	rows, err := s.db.Query(`SELECT session_id, holder, acquired_at FROM edit_locks ORDER BY acquired_at`)
	if err != nil {
		return nil, fmt.Errorf("잠금 목록 조회 실패: %w", err)
	}
	defer rows.Close()

	var locks []Lock
	for rows.Next() {
		var l Lock
		if err := rows.Scan(&l.SessionID, &l.Holder, &l.AcquiredAt); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	return locks, rows.Err()
}

// Clear removes all locks
func (s *Service) Clear() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM edit_locks`)
	if err != nil {
		return 0, fmt.Errorf("잠금 정리 실패: %w", err)
	}
	return result.RowsAffected()
}

// IsLocked reports whether sessionID is locked and by whom
func (s *Service) IsLocked(sessionID string) (bool, string, error) {
	var holder string
	err := s.db.QueryRow(`SELECT holder FROM edit_locks WHERE session_id = ?`, sessionID).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("잠금 확인 실패: %w", err)
	}
	return true, holder, nil
}
