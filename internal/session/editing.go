package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/export"
	"github.com/n0roo/ikd-kit/internal/table"
)

// edit loads the table of id, applies fn and saves the table together with
// the session settings and one event.
func (s *Service) edit(id, eventType string, fn func(sess *Session, t *table.Editable) (interface{}, error)) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	t, err := s.LoadTable(id)
	if err != nil {
		return nil, err
	}
	data, err := fn(sess, t)
	if err != nil {
		return nil, err
	}

	kitJSON, resJSON, err := settingsJSON(sess.Kit, sess.Resource)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE sessions SET kit_type = ?, kit_json = ?, resource_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sess.Resource.KitType, kitJSON, resJSON, id); err != nil {
		return nil, fmt.Errorf("세션 업데이트 실패: %w", err)
	}
	if err := saveTable(tx, id, t); err != nil {
		return nil, err
	}
	if err := logEvent(tx, id, eventType, data); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("커밋 실패: %w", err)
	}
	return s.Get(id)
}

// SetKitType switches the active kit type. Every relabeled header goes back
// to its original label.
func (s *Service) SetKitType(id, kitType string) (*Session, error) {
	return s.edit(id, EventKitType, func(sess *Session, t *table.Editable) (interface{}, error) {
		prev := sess.Resource.KitType
		sess.Resource.KitType = kitType
		t.RestoreAll()
		return map[string]string{"from": prev, "to": kitType}, nil
	})
}

// RelabelResult reports what a relabel did to the derived cycle fields
type RelabelResult struct {
	Changed bool
	Update  derive.Update
	// Derived is false when the label is not index-bearing
	Derived bool
}

// Relabel assigns label to column index and recomputes that column's
// override cycles. When the column fails its checks the field is cleared
// and the header is put back.
func (s *Service) Relabel(id string, index int, label string, n derive.Notifier) (*Session, RelabelResult, error) {
	var res RelabelResult
	sess, err := s.edit(id, EventRelabel, func(sess *Session, t *table.Editable) (interface{}, error) {
		changed, err := t.Relabel(index, label)
		if err != nil {
			return nil, err
		}
		res.Changed = changed
		if !changed {
			return map[string]interface{}{"index": index, "label": label, "changed": false}, nil
		}
		if u, ok := derive.LabelCycle(label, t.Snapshot(), n); ok {
			res.Update, res.Derived = u, true
			sess.Resource.Apply(u)
			if u.Clear() {
				t.RestoreLabel(label)
			}
		}
		return map[string]interface{}{"index": index, "label": label, "changed": true, "field": res.Update.Field, "value": res.Update.Value}, nil
	})
	if err != nil {
		return nil, RelabelResult{}, err
	}
	return sess, res, nil
}

// Restore puts back the original header of column index
func (s *Service) Restore(id string, index int) (*Session, error) {
	return s.edit(id, EventRestore, func(sess *Session, t *table.Editable) (interface{}, error) {
		if index < 0 || index >= len(t.Labels()) {
			return nil, fmt.Errorf("column index %d out of range (0-%d)", index, len(t.Labels())-1)
		}
		t.Restore(index)
		return map[string]int{"index": index}, nil
	})
}

// RestoreAll puts back every original header
func (s *Service) RestoreAll(id string) (*Session, error) {
	return s.edit(id, EventRestore, func(sess *Session, t *table.Editable) (interface{}, error) {
		t.RestoreAll()
		return map[string]string{"index": "all"}, nil
	})
}

// Hide hides column index; hidden columns are still exported
func (s *Service) Hide(id string, index int) (*Session, error) {
	return s.edit(id, EventSettings, func(sess *Session, t *table.Editable) (interface{}, error) {
		return map[string]int{"hide": index}, t.Hide(index)
	})
}

// ShowAll unhides every column
func (s *Service) ShowAll(id string) (*Session, error) {
	return s.edit(id, EventSettings, func(sess *Session, t *table.Editable) (interface{}, error) {
		t.ShowAll()
		return map[string]string{"show": "all"}, nil
	})
}

// SetCell changes one table cell
func (s *Service) SetCell(id string, row, col int, value string) (*Session, error) {
	return s.edit(id, EventCell, func(sess *Session, t *table.Editable) (interface{}, error) {
		return map[string]interface{}{"row": row, "col": col, "value": value}, t.Set(row, col, value)
	})
}

// Autoset derives override cycles for every index column. Nothing changes
// unless every index column passes its checks.
func (s *Service) Autoset(id string, n derive.Notifier) (*Session, []derive.Update, error) {
	var updates []derive.Update
	sess, err := s.edit(id, EventCycles, func(sess *Session, t *table.Editable) (interface{}, error) {
		var ok bool
		updates, ok = derive.BulkCycles(t.Snapshot(), n)
		for _, u := range updates {
			sess.Resource.Apply(u)
		}
		return map[string]interface{}{"ok": ok, "updates": updates}, nil
	})
	return sess, updates, err
}

// Set changes one kit or resource setting by key. kit_type goes through
// SetKitType so headers are restored.
func (s *Service) Set(id, key, value string) (*Session, error) {
	if key == export.FieldKitType {
		return s.SetKitType(id, value)
	}
	return s.edit(id, EventSettings, func(sess *Session, t *table.Editable) (interface{}, error) {
		if _, ok := sess.Kit.Get(key); ok {
			return map[string]string{key: value}, sess.Kit.Set(key, value)
		}
		return map[string]string{key: value}, sess.Resource.Set(key, value)
	})
}

// UpdateSettings replaces the kit and resource settings at once
func (s *Service) UpdateSettings(id string, kit export.KitSettings, res export.ResourceSettings) (*Session, error) {
	return s.edit(id, EventSettings, func(sess *Session, t *table.Editable) (interface{}, error) {
		if res.KitType != sess.Resource.KitType {
			t.RestoreAll()
		}
		sess.Kit, sess.Resource = kit, res
		return map[string]interface{}{"kit": kit, "resource": res}, nil
	})
}

// RecordExport logs a written export and marks the session exported
func (s *Service) RecordExport(id, path string, format export.Format) (string, error) {
	exportID := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO exports (id, session_id, path, format) VALUES (?, ?, ?, ?)`,
		exportID, id, path, string(format)); err != nil {
		return "", fmt.Errorf("내보내기 기록 실패: %w", err)
	}
	if _, err := tx.Exec(`UPDATE sessions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		StatusExported, id); err != nil {
		return "", fmt.Errorf("상태 업데이트 실패: %w", err)
	}
	if err := logEvent(tx, id, EventExport, map[string]string{"path": path, "format": string(format)}); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("커밋 실패: %w", err)
	}
	return exportID, nil
}

// Exports lists the export paths of a session, oldest first
func (s *Service) Exports(id string) ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM exports WHERE session_id = ? ORDER BY created_at, rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("내보내기 조회 실패: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
