package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*store.SQLiteStore, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "kbmirror-store-test-*")
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())

	return s, func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}
}

func TestSource_UpsertIsIdempotentOnMutableFields(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.UpsertSource(ctx, "src1", "https://example.com/docs/")
	require.NoError(t, err)
	require.NoError(t, s.SetEnabled(ctx, "src1", false))

	src, err := s.UpsertSource(ctx, "src1", "https://example.com/docs/")
	require.NoError(t, err)
	assert.False(t, src.Enabled, "second upsert must not reset a flag the operator changed")
}

func TestSource_CreateStaticSourceDisablesTracking(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	src, err := s.CreateStaticSource(ctx, "doc1", "https://example.com/whitepaper.pdf", []byte(`{"title":"Whitepaper"}`))
	require.NoError(t, err)
	assert.True(t, src.IsStaticContent)
	assert.False(t, src.VersionTrackingEnabled)
	assert.JSONEq(t, `{"title":"Whitepaper"}`, string(src.StaticMetadata))

	again, err := s.CreateStaticSource(ctx, "doc1", "https://example.com/whitepaper.pdf", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Whitepaper"}`, string(again.StaticMetadata), "insert-if-absent must not clear existing metadata")
}

func TestVersion_AtMostOneActive(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, mustUpsert(s, ctx, "src1"))

	_, err := s.CreateStaging(ctx, "src1", "v1hash")
	require.NoError(t, err)
	require.NoError(t, s.Activate(ctx, "src1", "v1hash"))

	_, err = s.CreateStaging(ctx, "src1", "v2hash")
	require.NoError(t, err)
	require.NoError(t, s.Activate(ctx, "src1", "v2hash"))

	versions, err := s.ListVersions(ctx, "src1")
	require.NoError(t, err)

	activeCount := 0
	var archived []store.Version
	for _, v := range versions {
		if v.Status == store.StatusActive {
			activeCount++
			assert.Equal(t, "v2hash", v.VersionID)
		}
		if v.Status == store.StatusArchived {
			archived = append(archived, v)
		}
	}
	assert.Equal(t, 1, activeCount)
	require.Len(t, archived, 1)
	assert.Equal(t, "v1hash", archived[0].VersionID)
}

func TestVersion_CreateStagingIsIdempotent(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, mustUpsert(s, ctx, "src1"))

	v1, err := s.CreateStaging(ctx, "src1", "hash1")
	require.NoError(t, err)
	v2, err := s.CreateStaging(ctx, "src1", "hash1")
	require.NoError(t, err)
	assert.Equal(t, v1.ID, v2.ID)

	versions, err := s.ListVersions(ctx, "src1")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestDocument_InsertIsIdempotentOnDuplicateKey(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	d := store.Document{ID: "doc1", SourceID: "src1", VersionID: "v1", URL: "https://x/a.md", Content: "hello", ContentHash: "abc"}
	require.NoError(t, s.InsertDocument(ctx, d))
	require.NoError(t, s.InsertDocument(ctx, d)) // duplicate (source,version,url) swallowed

	got, err := s.GetByURL(ctx, "https://x/a.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
}

func TestKnowledgeLink_AddIsIdempotent(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	l := store.KnowledgeLink{ID: "src1:v1:h1", SourceID: "src1", VersionID: "v1", KnowledgeDocumentID: "h1"}
	require.NoError(t, s.AddLink(ctx, l))
	require.NoError(t, s.AddLink(ctx, l))

	links, err := s.ListLinksBySourceVersion(ctx, "src1", "v1")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestPolicy_DefaultsWhenAbsent(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	p, err := s.GetSizePolicy(ctx, "agent1")
	require.NoError(t, err)
	assert.Equal(t, store.DefaultSizePolicy("agent1"), *p)
}

func TestDeleteArchivedBySource_RemovesDocumentsAndLinks(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, mustUpsert(s, ctx, "src1"))

	_, err := s.CreateStaging(ctx, "src1", "v1")
	require.NoError(t, err)
	require.NoError(t, s.Activate(ctx, "src1", "v1"))
	require.NoError(t, s.InsertDocument(ctx, store.Document{ID: "d1", SourceID: "src1", VersionID: "v1", URL: "u1", ContentHash: "h"}))
	require.NoError(t, s.AddLink(ctx, store.KnowledgeLink{ID: "src1:v1:h1", SourceID: "src1", VersionID: "v1", KnowledgeDocumentID: "h1"}))

	sk := sink.NewInMemorySink()
	handle, err := sk.Add(ctx, "content", sink.Metadata{"sourceId": "src1", "versionId": "v1"})
	require.NoError(t, err)
	require.Equal(t, 1, sk.Len())

	_, err = s.CreateStaging(ctx, "src1", "v2")
	require.NoError(t, err)
	require.NoError(t, s.Activate(ctx, "src1", "v2")) // archives v1

	removed, err := s.DeleteArchivedBySource(ctx, "src1", sk)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	docs, err := s.ListBySourceVersion(ctx, "src1", "v1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	links, err := s.ListLinksBySourceVersion(ctx, "src1", "v1")
	require.NoError(t, err)
	assert.Empty(t, links)

	assert.Equal(t, 0, sk.Len(), "archived version's sink handle must be removed")
	assert.Error(t, sk.Remove(ctx, handle), "handle should already be gone")
}

func TestDeleteSource_RemovesSinkHandles(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, mustUpsert(s, ctx, "src1"))
	require.NoError(t, s.InsertDocument(ctx, store.Document{ID: "d1", SourceID: "src1", VersionID: "v1", URL: "u1", ContentHash: "h"}))
	require.NoError(t, s.AddLink(ctx, store.KnowledgeLink{ID: "src1:v1:h1", SourceID: "src1", VersionID: "v1", KnowledgeDocumentID: "h1"}))

	sk := sink.NewInMemorySink()
	_, err := sk.Add(ctx, "content", sink.Metadata{"sourceId": "src1", "versionId": "v1"})
	require.NoError(t, err)
	require.Equal(t, 1, sk.Len())

	require.NoError(t, s.DeleteSource(ctx, "src1", sk))
	assert.Equal(t, 0, sk.Len(), "removing a source must remove all of its sink handles")

	_, err = s.GetSource(ctx, "src1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVacuum_RemovesSinkHandlesForArchivedVersions(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, mustUpsert(s, ctx, "src1"))

	_, err := s.CreateStaging(ctx, "src1", "v1")
	require.NoError(t, err)
	require.NoError(t, s.Activate(ctx, "src1", "v1"))
	require.NoError(t, s.AddLink(ctx, store.KnowledgeLink{ID: "src1:v1:h1", SourceID: "src1", VersionID: "v1", KnowledgeDocumentID: "h1"}))

	sk := sink.NewInMemorySink()
	_, err = sk.Add(ctx, "content", sink.Metadata{"sourceId": "src1", "versionId": "v1"})
	require.NoError(t, err)

	_, err = s.CreateStaging(ctx, "src1", "v2")
	require.NoError(t, err)
	require.NoError(t, s.Activate(ctx, "src1", "v2")) // archives v1

	removed, err := s.Vacuum(ctx, nil, sk)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 0, sk.Len(), "vacuum must remove sink handles for every archived version it sweeps")
}

func mustUpsert(s *store.SQLiteStore, ctx context.Context, id string) error {
	_, err := s.UpsertSource(ctx, id, "https://example.com/"+id+"/")
	return err
}
