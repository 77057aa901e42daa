// previewcache.go implements the single-row-per-source PreviewCache.
//
// Design: read-compute-write here is deliberately not atomic (no
// SELECT...FOR UPDATE equivalent) - a racing reader may observe a slightly
// stale preview, corrected by the next reconcile.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func (s *SQLiteStore) GetPreviewCache(ctx context.Context, sourceID string) (*PreviewCache, error) {
	var previewJSON string
	var checkedAt int64
	row := s.db.QueryRowContext(ctx, `SELECT preview, checked_at FROM preview_cache WHERE source_id = ?`, sourceID)
	if err := row.Scan(&previewJSON, &checkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get preview cache for %s: %w", sourceID, err)
	}

	var preview SourcePreview
	if err := json.Unmarshal([]byte(previewJSON), &preview); err != nil {
		return nil, fmt.Errorf("unmarshal preview cache for %s: %w", sourceID, err)
	}

	return &PreviewCache{
		SourceID:  sourceID,
		Preview:   preview,
		CheckedAt: time.Unix(checkedAt, 0).UTC(),
	}, nil
}

func (s *SQLiteStore) PutPreviewCache(ctx context.Context, pc PreviewCache) error {
	b, err := json.Marshal(pc.Preview)
	if err != nil {
		return fmt.Errorf("marshal preview for %s: %w", pc.SourceID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preview_cache (source_id, preview, checked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET preview = excluded.preview, checked_at = excluded.checked_at
	`, pc.SourceID, b, pc.CheckedAt.Unix())
	if err != nil {
		return fmt.Errorf("put preview cache for %s: %w", pc.SourceID, err)
	}
	return nil
}
