// version.go implements the Version repository: the staging -> active ->
// archived (or staging -> failed) state machine.
//
// Design: Activate runs inside a single transaction so that a reader
// querying "the active version for this source" never observes zero or two
// active rows, per the concurrency model's ordering guarantee.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jpl-au/kbmirror/internal/sink"
)

func versionRowID(sourceID, versionID string) string {
	return sourceID + ":" + versionID
}

func (s *SQLiteStore) CreateStaging(ctx context.Context, sourceID, versionID string) (*Version, error) {
	id := versionRowID(sourceID, versionID)
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO versions (id, source_id, version_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, sourceID, versionID, StatusStaging, now)
	if err != nil {
		return nil, fmt.Errorf("create staging version %s: %w", id, err)
	}
	return s.getVersionByID(ctx, id)
}

func scanVersion(sc interface{ Scan(...any) error }) (Version, error) {
	var v Version
	var createdAt int64
	var activatedAt, failedAt sql.NullInt64
	var failureReason sql.NullString
	err := sc.Scan(&v.ID, &v.SourceID, &v.VersionID, &v.Status, &createdAt, &activatedAt, &failedAt, &failureReason)
	if err != nil {
		return v, err
	}
	v.CreatedAt = time.Unix(createdAt, 0).UTC()
	if activatedAt.Valid {
		t := time.Unix(activatedAt.Int64, 0).UTC()
		v.ActivatedAt = &t
	}
	if failedAt.Valid {
		t := time.Unix(failedAt.Int64, 0).UTC()
		v.FailedAt = &t
	}
	if failureReason.Valid {
		v.FailureReason = failureReason.String
	}
	return v, nil
}

const versionColumns = `id, source_id, version_id, status, created_at, activated_at, failed_at, failure_reason`

func (s *SQLiteStore) getVersionByID(ctx context.Context, id string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE id = ?`, id)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get version %s: %w", id, err)
	}
	return &v, nil
}

func (s *SQLiteStore) GetActive(ctx context.Context, sourceID string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE source_id = ? AND status = ?`,
		sourceID, StatusActive)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active version for %s: %w", sourceID, err)
	}
	return &v, nil
}

func (s *SQLiteStore) ListVersions(ctx context.Context, sourceID string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE source_id = ? ORDER BY created_at DESC`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkFailed(ctx context.Context, sourceID, versionID, reason string) error {
	id := versionRowID(sourceID, versionID)
	now := time.Now().Unix()
	result, err := s.db.ExecContext(ctx, `
		UPDATE versions SET status = ?, failed_at = ?, failure_reason = ? WHERE id = ?
	`, StatusFailed, now, reason, id)
	if err != nil {
		return fmt.Errorf("mark version %s failed: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Activate(ctx context.Context, sourceID, versionID string) error {
	id := versionRowID(sourceID, versionID)
	now := time.Now().Unix()
	return s.Tx(ctx, func(tx *sql.Tx) error {
		// archive whatever is currently active for this source (if anything)
		if _, err := tx.ExecContext(ctx, `
			UPDATE versions SET status = ? WHERE source_id = ? AND status = ?
		`, StatusArchived, sourceID, StatusActive); err != nil {
			return fmt.Errorf("archive prior active version: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE versions SET status = ?, activated_at = ? WHERE id = ?
		`, StatusActive, now, id)
		if err != nil {
			return fmt.Errorf("activate version %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *SQLiteStore) DeleteArchivedBySource(ctx context.Context, sourceID string, sk sink.KnowledgeSink) (int64, error) {
	var versionIDs []string
	rows, err := s.db.QueryContext(ctx, `SELECT version_id FROM versions WHERE source_id = ? AND status = ?`, sourceID, StatusArchived)
	if err != nil {
		return 0, fmt.Errorf("list archived versions for %s: %w", sourceID, err)
	}
	for rows.Next() {
		var vid string
		if err := rows.Scan(&vid); err != nil {
			rows.Close()
			return 0, err
		}
		versionIDs = append(versionIDs, vid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, vid := range versionIDs {
		if err := sk.RemoveBySourceVersion(ctx, sourceID, vid); err != nil {
			return 0, fmt.Errorf("remove sink handles for archived version %s/%s: %w", sourceID, vid, err)
		}
	}

	var removed int64
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		for _, vid := range versionIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_links WHERE source_id = ? AND version_id = ?`, sourceID, vid); err != nil {
				return fmt.Errorf("delete knowledge links for archived version %s: %w", vid, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ? AND version_id = ?`, sourceID, vid); err != nil {
				return fmt.Errorf("delete documents for archived version %s: %w", vid, err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE source_id = ? AND status = ?`, sourceID, StatusArchived)
		if err != nil {
			return fmt.Errorf("delete archived versions for %s: %w", sourceID, err)
		}
		removed, _ = result.RowsAffected()
		return nil
	})
	return removed, err
}
