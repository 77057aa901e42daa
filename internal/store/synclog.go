// synclog.go implements the SyncLog repository backing ScheduledSyncService
// run records.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func (s *SQLiteStore) StartSyncLog(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_log (status, started_at) VALUES (?, ?)
	`, "running", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("start sync log: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) FinishSyncLog(ctx context.Context, id int64, status string, checked, updated, skipped int, errs []string) error {
	b, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal sync log errors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE sync_log SET status = ?, sources_checked = ?, sources_updated = ?, sources_skipped = ?, errors = ?, ended_at = ?
		WHERE id = ?
	`, status, checked, updated, skipped, string(b), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("finish sync log %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) LastSyncLog(ctx context.Context) (*SyncLog, error) {
	var l SyncLog
	var errsJSON sql.NullString
	var startedAt int64
	var endedAt sql.NullInt64

	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, sources_checked, sources_updated, sources_skipped, errors, started_at, ended_at
		FROM sync_log ORDER BY id DESC LIMIT 1
	`)
	err := row.Scan(&l.ID, &l.Status, &l.SourcesChecked, &l.SourcesUpdated, &l.SourcesSkipped, &errsJSON, &startedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last sync log: %w", err)
	}

	l.StartedAt = time.Unix(startedAt, 0).UTC()
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0).UTC()
		l.EndedAt = &t
	}
	if errsJSON.Valid && errsJSON.String != "" {
		if err := json.Unmarshal([]byte(errsJSON.String), &l.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal sync log errors: %w", err)
		}
	}
	return &l, nil
}
