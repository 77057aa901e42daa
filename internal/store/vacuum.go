// vacuum.go implements garbage collection of archived versions.
//
// Design: there is no recoverable trash here - "archived" already means
// "superseded, kept only for the window where a reader might still be
// resolving against it." Vacuum simply bounds how long that window is.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jpl-au/kbmirror/internal/sink"
)

// Vacuum permanently removes archived Version rows (and their Documents and
// KnowledgeLinks) across all sources. If olderThan is non-nil, only versions
// archived before that duration ago are removed (approximated by createdAt,
// since archival does not currently stamp its own timestamp). Sink handles
// for each affected version are removed via sk.RemoveBySourceVersion before
// its knowledge_links rows are deleted, matching the data model's explicit
// cascade ordering (sink handles -> link rows -> verbatim rows -> version
// rows). Returns the total number of version rows deleted.
func (s *SQLiteStore) Vacuum(ctx context.Context, olderThan *time.Duration, sk sink.KnowledgeSink) (int64, error) {
	q := `SELECT source_id, version_id FROM versions WHERE status = ?`
	args := []any{StatusArchived}
	if olderThan != nil {
		q += ` AND created_at < ?`
		args = append(args, time.Now().Add(-*olderThan).Unix())
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("list archived versions: %w", err)
	}
	type key struct{ sourceID, versionID string }
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.sourceID, &k.versionID); err != nil {
			rows.Close()
			return 0, err
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, k := range keys {
		if err := sk.RemoveBySourceVersion(ctx, k.sourceID, k.versionID); err != nil {
			return 0, fmt.Errorf("vacuum sink handles for %s/%s: %w", k.sourceID, k.versionID, err)
		}
	}

	var totalVersions int64
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_links WHERE source_id = ? AND version_id = ?`, k.sourceID, k.versionID); err != nil {
				return fmt.Errorf("vacuum knowledge links for %s/%s: %w", k.sourceID, k.versionID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ? AND version_id = ?`, k.sourceID, k.versionID); err != nil {
				return fmt.Errorf("vacuum documents for %s/%s: %w", k.sourceID, k.versionID, err)
			}
			result, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE source_id = ? AND version_id = ?`, k.sourceID, k.versionID)
			if err != nil {
				return fmt.Errorf("vacuum version %s/%s: %w", k.sourceID, k.versionID, err)
			}
			n, _ := result.RowsAffected()
			totalVersions += n
		}
		return nil
	})

	return totalVersions, err
}
