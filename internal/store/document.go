// document.go implements the Document repository: verbatim content plus the
// precomputed structural Profile, addressable by URL.
//
// Design: InsertDocument swallows duplicate-key errors rather than returning
// ErrConflict, matching the Ingestor's contract for the GitHub-raw-URL
// second-row insert, where a racing retry must not abort the ingest loop.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jpl-au/kbmirror/internal/analyzer"
)

func (s *SQLiteStore) InsertDocument(ctx context.Context, d Document) error {
	var profileJSON []byte
	if d.Profile != nil {
		b, err := json.Marshal(d.Profile)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		profileJSON = b
	}

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_id, version_id, url, content, content_hash, mime_type, byte_size, profile, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.SourceID, d.VersionID, d.URL, d.Content, d.ContentHash, d.MimeType, d.ByteSize, profileJSON, createdAt.Unix())
	if err != nil {
		if isUniqueConstraint(err) {
			return nil // idempotent: (sourceId, versionId, url) already ingested
		}
		return fmt.Errorf("insert document %s: %w", d.URL, err)
	}
	return nil
}

func isUniqueConstraint(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func scanDocument(sc interface{ Scan(...any) error }) (Document, error) {
	var d Document
	var mimeType sql.NullString
	var byteSize sql.NullInt64
	var profileJSON sql.NullString
	var createdAt int64

	err := sc.Scan(&d.ID, &d.SourceID, &d.VersionID, &d.URL, &d.Content, &d.ContentHash,
		&mimeType, &byteSize, &profileJSON, &createdAt)
	if err != nil {
		return d, err
	}
	if mimeType.Valid {
		d.MimeType = mimeType.String
	}
	if byteSize.Valid {
		d.ByteSize = byteSize.Int64
	}
	if profileJSON.Valid && profileJSON.String != "" {
		var p analyzer.Profile
		if err := json.Unmarshal([]byte(profileJSON.String), &p); err != nil {
			return d, fmt.Errorf("unmarshal profile for %s: %w", d.URL, err)
		}
		d.Profile = &p
	}
	d.CreatedAt = time.Unix(createdAt, 0).UTC()
	return d, nil
}

const documentColumns = `id, source_id, version_id, url, content, content_hash, mime_type, byte_size, profile, created_at`

func (s *SQLiteStore) GetByURL(ctx context.Context, url string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE url = ?
		ORDER BY created_at DESC LIMIT 1
	`, url)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", url, err)
	}
	return &d, nil
}

func (s *SQLiteStore) ListBySourceVersion(ctx context.Context, sourceID, versionID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE source_id = ? AND version_id = ? ORDER BY url
	`, sourceID, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteByURL(ctx context.Context, url string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE url = ?`, url)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", url, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteBySourceVersion(ctx context.Context, sourceID, versionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ? AND version_id = ?`, sourceID, versionID)
	if err != nil {
		return fmt.Errorf("delete documents for %s/%s: %w", sourceID, versionID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("delete documents for source %s: %w", sourceID, err)
	}
	return nil
}
