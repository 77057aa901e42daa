// Package sink defines the KnowledgeSink boundary: the opaque semantic/
// embedding store the core talks to through four operations and nothing
// else. The core never inspects what a handle means.
package sink

import "context"

// Metadata is an opaque bag of attributes forwarded alongside document
// content when adding it to the semantic store. Recognized keys are a
// concern of the concrete KnowledgeSink implementation, not the core.
type Metadata map[string]any

// KnowledgeSink is the minimal interface the core requires of the semantic
// store. Implementations may be a vector database, a hosted embedding
// service, or (for tests and small deployments) an in-process stub.
type KnowledgeSink interface {
	// Add ingests content plus metadata and returns an opaque handle the
	// core persists as KnowledgeLink.KnowledgeDocumentID.
	Add(ctx context.Context, content string, meta Metadata) (handle string, err error)

	// Remove deletes a single previously-added document by handle.
	Remove(ctx context.Context, handle string) error

	// RemoveBySource deletes every document the sink holds for a source,
	// used when a Source is removed entirely.
	RemoveBySource(ctx context.Context, sourceID string) error

	// RemoveBySourceVersion deletes every document the sink holds for one
	// version of a source, used when that version's documents/links are
	// garbage collected (archival vacuum, staleness-sweep cleanup) without
	// removing the rest of the source.
	RemoveBySourceVersion(ctx context.Context, sourceID, versionID string) error
}
