// interfaces.go defines the storage abstraction for the knowledge-base
// mirror's durable state.
//
// Separated from the SQLite implementation to enable testing and potential
// alternative backends. The interfaces are intentionally granular (one per
// entity) to support interface segregation - consumers only depend on the
// capabilities they need (the Ingestor needs DocumentRepo+KnowledgeLinkRepo,
// the scheduler needs SourceRepo+VersionRepo, and so on).
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jpl-au/kbmirror/internal/sink"
)

// SourceRepo manages the Source table: one row per configured upstream.
type SourceRepo interface {
	// UpsertSource ensures a Source row exists for id, inserting defaults if
	// absent and leaving an existing row's mutable fields untouched.
	UpsertSource(ctx context.Context, id, sourceURL string) (*Source, error)

	// CreateStaticSource registers a single-document Source with version
	// tracking disabled, for the addDocument operation.
	CreateStaticSource(ctx context.Context, id, sourceURL string, metadata []byte) (*Source, error)

	GetSource(ctx context.Context, id string) (*Source, error)
	ListSources(ctx context.Context) ([]Source, error)
	ListEnabledSources(ctx context.Context) ([]Source, error)

	SetVersionTracking(ctx context.Context, id string, enabled bool) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	UpdateSyncTimes(ctx context.Context, id string, lastSync, nextSync time.Time) error

	// DeleteSource removes the source's sink handles via sk before any row is
	// deleted, then, in one transaction, its Document rows and the Source row
	// itself; Version and KnowledgeLink rows go with the Source row through
	// the foreign-key cascade. If sk.RemoveBySource fails, no rows are deleted.
	DeleteSource(ctx context.Context, id string, sk sink.KnowledgeSink) error
}

// VersionRepo manages the Version state machine: staging -> active -> archived,
// or staging -> failed.
type VersionRepo interface {
	// CreateStaging inserts a Version(status=staging) row. Idempotent: if the
	// (sourceId, versionId) row already exists, this is a no-op (ErrConflict
	// is swallowed, not returned).
	CreateStaging(ctx context.Context, sourceID, versionID string) (*Version, error)

	GetActive(ctx context.Context, sourceID string) (*Version, error)
	ListVersions(ctx context.Context, sourceID string) ([]Version, error)

	MarkFailed(ctx context.Context, sourceID, versionID, reason string) error

	// Activate transitions versionID to active and the prior active version
	// (if any) to archived, in a single transaction. Readers querying "latest
	// active" must never observe zero or two active rows for sourceID.
	Activate(ctx context.Context, sourceID, versionID string) error

	// DeleteArchivedBySource permanently removes archived Version rows (and
	// their Documents/KnowledgeLinks) for garbage collection. Sink handles
	// for each archived version are removed via sk before its link rows are
	// deleted. Returns the count of version rows removed.
	DeleteArchivedBySource(ctx context.Context, sourceID string, sk sink.KnowledgeSink) (int64, error)
}

// DocumentRepo manages verbatim Document rows.
type DocumentRepo interface {
	// InsertDocument persists a Document. Duplicate key on
	// (sourceId, versionId, url) is swallowed (idempotent no-op), matching
	// the Ingestor's retry-safe insert contract.
	InsertDocument(ctx context.Context, d Document) error

	GetByURL(ctx context.Context, url string) (*Document, error)
	ListBySourceVersion(ctx context.Context, sourceID, versionID string) ([]Document, error)

	DeleteByURL(ctx context.Context, url string) error
	DeleteBySourceVersion(ctx context.Context, sourceID, versionID string) error
	DeleteBySource(ctx context.Context, sourceID string) error
}

// KnowledgeLinkRepo manages the back-pointers into the semantic store.
type KnowledgeLinkRepo interface {
	// AddLink inserts a KnowledgeLink. Idempotent on the composite id
	// "sourceId:versionId:handle".
	AddLink(ctx context.Context, l KnowledgeLink) error

	ListLinksBySourceVersion(ctx context.Context, sourceID, versionID string) ([]KnowledgeLink, error)
	ListBySource(ctx context.Context, sourceID string) ([]KnowledgeLink, error)

	RemoveBySourceVersion(ctx context.Context, sourceID, versionID string) error
	RemoveBySource(ctx context.Context, sourceID string) error
}

// PreviewCacheRepo manages the single-row-per-source probe cache.
type PreviewCacheRepo interface {
	GetPreviewCache(ctx context.Context, sourceID string) (*PreviewCache, error)
	PutPreviewCache(ctx context.Context, pc PreviewCache) error
}

// PolicyRepo manages per-agent SizePolicy/RefreshPolicy settings.
type PolicyRepo interface {
	GetSizePolicy(ctx context.Context, agentID string) (*SizePolicy, error)
	SetSizePolicy(ctx context.Context, p SizePolicy) error

	GetRefreshPolicy(ctx context.Context, agentID string) (*RefreshPolicy, error)
	SetRefreshPolicy(ctx context.Context, p RefreshPolicy) error
}

// SyncLogRepo manages ScheduledSyncService run records.
type SyncLogRepo interface {
	StartSyncLog(ctx context.Context) (int64, error)
	FinishSyncLog(ctx context.Context, id int64, status string, checked, updated, skipped int, errs []string) error
	LastSyncLog(ctx context.Context) (*SyncLog, error)
}

// Maintainer defines operations for database maintenance and lifecycle.
type Maintainer interface {
	Close() error
	DB() *sql.DB
	Checkpoint(ctx context.Context) error

	// Vacuum permanently removes archived versions (and their documents and
	// knowledge links) older than olderThan across all sources. Sink handles
	// for each affected version are removed via sk before its link rows are
	// deleted. Pass nil to vacuum all archived versions regardless of age.
	Vacuum(ctx context.Context, olderThan *time.Duration, sk sink.KnowledgeSink) (int64, error)
}

// Store composes every repository plus maintenance operations behind a
// single interface. Implementations (SQLiteStore) are thin; the only state
// that matters is the transactional DB behind them.
type Store interface {
	SourceRepo
	VersionRepo
	DocumentRepo
	KnowledgeLinkRepo
	PreviewCacheRepo
	PolicyRepo
	SyncLogRepo
	Maintainer
}
