// source.go implements the Source repository: one row per configured
// upstream URL.
//
// Design: UpsertSource is insert-if-absent, not insert-or-replace - the
// orchestrator calls it on every reconcile, and a second call must not reset
// enabled/versionTracking flags an operator already changed.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jpl-au/kbmirror/internal/sink"
)

func (s *SQLiteStore) UpsertSource(ctx context.Context, id, sourceURL string) (*Source, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, source_url, enabled, version_tracking_enabled, is_static_content)
		VALUES (?, ?, 1, 1, 0)
		ON CONFLICT(id) DO NOTHING
	`, id, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("upsert source %s: %w", id, err)
	}
	return s.GetSource(ctx, id)
}

// CreateStaticSource registers a Source for a single addDocument call: version
// tracking is off and is_static_content is set so the scheduler's staleness
// sweep (internal/scheduler) never selects it for cron-driven reconciliation.
// Insert-if-absent, matching UpsertSource's idempotency contract.
func (s *SQLiteStore) CreateStaticSource(ctx context.Context, id, sourceURL string, metadata []byte) (*Source, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, source_url, enabled, version_tracking_enabled, is_static_content, static_metadata)
		VALUES (?, ?, 1, 0, 1, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, sourceURL, nilIfEmptyBytes(metadata))
	if err != nil {
		return nil, fmt.Errorf("create static source %s: %w", id, err)
	}
	return s.GetSource(ctx, id)
}

func nilIfEmptyBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func scanSource(sc interface{ Scan(...any) error }) (Source, error) {
	var src Source
	var staticMeta sql.NullString
	var lastSync, nextSync sql.NullInt64
	err := sc.Scan(&src.ID, &src.SourceURL, &src.Enabled, &src.VersionTrackingEnabled,
		&src.IsStaticContent, &staticMeta, &lastSync, &nextSync)
	if err != nil {
		return src, err
	}
	if staticMeta.Valid {
		src.StaticMetadata = []byte(staticMeta.String)
	}
	if lastSync.Valid {
		t := time.Unix(lastSync.Int64, 0).UTC()
		src.LastSyncAt = &t
	}
	if nextSync.Valid {
		t := time.Unix(nextSync.Int64, 0).UTC()
		src.NextSyncAt = &t
	}
	return src, nil
}

func (s *SQLiteStore) GetSource(ctx context.Context, id string) (*Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, enabled, version_tracking_enabled, is_static_content, static_metadata, last_sync_at, next_sync_at
		FROM sources WHERE id = ?
	`, id)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", id, err)
	}
	return &src, nil
}

func (s *SQLiteStore) listSourcesWhere(ctx context.Context, where string) ([]Source, error) {
	q := `SELECT id, source_url, enabled, version_tracking_enabled, is_static_content, static_metadata, last_sync_at, next_sync_at FROM sources`
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSources(ctx context.Context) ([]Source, error) {
	return s.listSourcesWhere(ctx, "")
}

func (s *SQLiteStore) ListEnabledSources(ctx context.Context) ([]Source, error) {
	return s.listSourcesWhere(ctx, "enabled = 1")
}

func (s *SQLiteStore) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return s.updateSourceFlag(ctx, id, "enabled", enabled)
}

func (s *SQLiteStore) SetVersionTracking(ctx context.Context, id string, enabled bool) error {
	return s.updateSourceFlag(ctx, id, "version_tracking_enabled", enabled)
}

func (s *SQLiteStore) updateSourceFlag(ctx context.Context, id, column string, value bool) error {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE sources SET %s = ? WHERE id = ?`, column), value, id)
	if err != nil {
		return fmt.Errorf("update source %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateSyncTimes(ctx context.Context, id string, lastSync, nextSync time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sources SET last_sync_at = ?, next_sync_at = ? WHERE id = ?`,
		lastSync.Unix(), nextSync.Unix(), id)
	if err != nil {
		return fmt.Errorf("update sync times for %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSource removes the Source row. Sink handles are removed first via
// sk.RemoveBySource, then Documents, then the Source row itself (Versions
// and KnowledgeLinks cascade via FK). If sk.RemoveBySource fails, no row is
// deleted.
func (s *SQLiteStore) DeleteSource(ctx context.Context, id string, sk sink.KnowledgeSink) error {
	if err := sk.RemoveBySource(ctx, id); err != nil {
		return fmt.Errorf("remove sink handles for source %s: %w", id, err)
	}
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ?`, id); err != nil {
			return fmt.Errorf("delete documents for source %s: %w", id, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete source %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}
