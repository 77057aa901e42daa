// knowledgelink.go implements the KnowledgeLink repository: the back-pointer
// from a Source/Version into the semantic store's opaque handle.
//
// Design: AddLink is idempotent on the composite id, matching the Ingestor's
// contract that a re-link on a retried ingest is a no-op rather than a
// conflict.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *SQLiteStore) AddLink(ctx context.Context, l KnowledgeLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO knowledge_links (id, source_id, version_id, knowledge_document_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, l.ID, l.SourceID, l.VersionID, l.KnowledgeDocumentID)
	if err != nil {
		return fmt.Errorf("add knowledge link %s: %w", l.ID, err)
	}
	return nil
}

func scanLink(sc interface{ Scan(...any) error }) (KnowledgeLink, error) {
	var l KnowledgeLink
	err := sc.Scan(&l.ID, &l.SourceID, &l.VersionID, &l.KnowledgeDocumentID)
	return l, err
}

const linkColumns = `id, source_id, version_id, knowledge_document_id`

func (s *SQLiteStore) ListLinksBySourceVersion(ctx context.Context, sourceID, versionID string) ([]KnowledgeLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM knowledge_links WHERE source_id = ? AND version_id = ?`, sourceID, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (s *SQLiteStore) ListBySource(ctx context.Context, sourceID string) ([]KnowledgeLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM knowledge_links WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func scanLinks(rows *sql.Rows) ([]KnowledgeLink, error) {
	var out []KnowledgeLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RemoveBySourceVersion(ctx context.Context, sourceID, versionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_links WHERE source_id = ? AND version_id = ?`, sourceID, versionID)
	if err != nil {
		return fmt.Errorf("remove knowledge links for %s/%s: %w", sourceID, versionID, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_links WHERE source_id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("remove knowledge links for source %s: %w", sourceID, err)
	}
	return nil
}
