// Package store defines the persistence types and the Store interface for
// the knowledge-base mirror. Implementations handle the actual database
// operations while consumers depend only on this interface, enabling testing
// and alternative backends.
package store

import (
	"encoding/json"
	"time"

	"github.com/jpl-au/kbmirror/internal/analyzer"
)

// VersionStatus is a Version's position in the staging -> active -> archived
// (or -> failed) state machine. At most one Version per Source may be Active
// at any commit boundary.
type VersionStatus string

const (
	StatusStaging  VersionStatus = "staging"
	StatusActive   VersionStatus = "active"
	StatusArchived VersionStatus = "archived"
	StatusFailed   VersionStatus = "failed"
)

// Source is one configured upstream URL that expands into many documents.
// Mutated only by configuration actions and the sync service.
type Source struct {
	ID                     string
	SourceURL              string
	Enabled                bool
	VersionTrackingEnabled bool
	IsStaticContent        bool
	StaticMetadata         json.RawMessage // opaque, nil if unset
	LastSyncAt             *time.Time
	NextSyncAt             *time.Time
}

// Version is a snapshot label for a Source, identified by the deterministic
// hash of its preview. Id is "sourceId:versionId".
type Version struct {
	ID            string
	SourceID      string
	VersionID     string
	Status        VersionStatus
	CreatedAt     time.Time
	ActivatedAt   *time.Time
	FailedAt      *time.Time
	FailureReason string
}

// Document is a single verbatim document belonging to one Source/Version,
// addressable by URL. Content is the source of truth for every quote
// operation; Profile is the precomputed structural index used by QuoteEngine.
type Document struct {
	ID          string
	SourceID    string
	VersionID   string
	URL         string
	Content     string
	ContentHash string
	MimeType    string
	ByteSize    int64
	Profile     *analyzer.Profile
	CreatedAt   time.Time
}

// KnowledgeLink is the back-pointer from a Source/Version into the semantic
// store. Id is "sourceId:versionId:handle". Deletion cascades from Source.
type KnowledgeLink struct {
	ID                  string
	SourceID            string
	VersionID           string
	KnowledgeDocumentID string
}

// FilePreview is the cheap probe result for one discovered document URL.
type FilePreview struct {
	URL          string
	Path         string
	EstBytes     int64
	ContentType  string
	ETag         string
	LastModified string
}

// SourcePreview is the aggregate probe result for every document URL a
// Source expands to.
type SourcePreview struct {
	SourceID   string
	TotalBytes int64
	Files      []FilePreview
}

// PreviewCache is the single-row-per-source cache of the last probe result.
type PreviewCache struct {
	SourceID  string
	Preview   SourcePreview
	CheckedAt time.Time
}

// SizePolicy gates how large a source's content may be before it is skipped
// or requires confirmation. Persisted per agent.
type SizePolicy struct {
	AgentID              string
	PreviewAlways        bool
	AutoIngestBelowBytes int64
	MaxBytesHardLimit    int64
}

// DefaultSizePolicy returns the package's default size policy for an agent.
func DefaultSizePolicy(agentID string) SizePolicy {
	const mib = 1 << 20
	return SizePolicy{
		AgentID:              agentID,
		PreviewAlways:        false,
		AutoIngestBelowBytes: 50 * mib,
		MaxBytesHardLimit:    1024 * mib,
	}
}

// RefreshPolicy governs caching and concurrency for reconciliation. Persisted
// per agent.
type RefreshPolicy struct {
	AgentID                   string
	PreviewCacheTTLMs         int64
	ReconcileCooldownMs       int64
	MaxConcurrentReconciles   int
	StartupReconcileTimeoutMs int64
}

// DefaultRefreshPolicy returns the package's default refresh policy for an agent.
func DefaultRefreshPolicy(agentID string) RefreshPolicy {
	return RefreshPolicy{
		AgentID:                   agentID,
		PreviewCacheTTLMs:         15 * 60 * 1000,
		ReconcileCooldownMs:       5 * 60 * 1000,
		MaxConcurrentReconciles:   1,
		StartupReconcileTimeoutMs: 60 * 1000,
	}
}

// SyncLog records one run of the ScheduledSyncService.
type SyncLog struct {
	ID             int64
	Status         string // running|completed|failed
	SourcesChecked int
	SourcesUpdated int
	SourcesSkipped int
	Errors         []string
	StartedAt      time.Time
	EndedAt        *time.Time
}

// MarshalJSON encodes a value with indentation for human-readable CLI output.
func MarshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
