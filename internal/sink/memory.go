// memory.go implements an in-process KnowledgeSink for tests and small
// single-agent deployments where no external embedding service is
// configured. It holds content and metadata keyed by an opaque handle; it
// does not embed or search - callers needing semantic retrieval wire a
// real sink behind the same interface.
package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// entry is what the in-process sink retains per handle.
type entry struct {
	sourceID  string
	versionID string
	content   string
	meta      Metadata
}

// InMemorySink is a KnowledgeSink backed by a guarded map. Safe for
// concurrent use.
type InMemorySink struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewInMemorySink constructs an empty InMemorySink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{entries: make(map[string]entry)}
}

func (s *InMemorySink) Add(_ context.Context, content string, meta Metadata) (string, error) {
	sourceID, _ := meta["sourceId"].(string)
	versionID, _ := meta["versionId"].(string)
	handle := uuid.NewString()

	s.mu.Lock()
	s.entries[handle] = entry{sourceID: sourceID, versionID: versionID, content: content, meta: meta}
	s.mu.Unlock()

	return handle, nil
}

func (s *InMemorySink) Remove(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[handle]; !ok {
		return fmt.Errorf("sink: handle %q not found", handle)
	}
	delete(s.entries, handle)
	return nil
}

func (s *InMemorySink) RemoveBySource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for handle, e := range s.entries {
		if e.sourceID == sourceID {
			delete(s.entries, handle)
		}
	}
	return nil
}

func (s *InMemorySink) RemoveBySourceVersion(_ context.Context, sourceID, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for handle, e := range s.entries {
		if e.sourceID == sourceID && e.versionID == versionID {
			delete(s.entries, handle)
		}
	}
	return nil
}

// Len reports the number of entries currently held, for tests.
func (s *InMemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
