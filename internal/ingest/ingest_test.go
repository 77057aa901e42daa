package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/kbmirror/internal/discovery"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/jpl-au/kbmirror/internal/ingest"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
)

func setupStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngestAll_PersistsDocumentAndLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Hello world."))
	}))
	defer srv.Close()

	st := setupStore(t)
	_, err := st.UpsertSource(context.Background(), "src1", srv.URL)
	require.NoError(t, err)
	_, err = st.CreateStaging(context.Background(), "src1", "v1")
	require.NoError(t, err)

	ig := ingest.New(httpclient.New(), st, sink.NewInMemorySink())
	res := ig.IngestAll(context.Background(), "src1", "v1", []discovery.DocURL{{URL: srv.URL, Path: "index"}})

	assert.Equal(t, 1, res.DocumentsIngested)
	assert.Empty(t, res.Failures)

	doc, err := st.GetByURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", doc.Content)

	links, err := st.ListLinksBySourceVersion(context.Background(), "src1", "v1")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestIngestAll_HTMLIsTextExtracted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><script>bad()</script><p>Visible prose.</p></body></html>"))
	}))
	defer srv.Close()

	st := setupStore(t)
	_, err := st.UpsertSource(context.Background(), "src2", srv.URL)
	require.NoError(t, err)
	_, err = st.CreateStaging(context.Background(), "src2", "v1")
	require.NoError(t, err)

	ig := ingest.New(httpclient.New(), st, sink.NewInMemorySink())
	res := ig.IngestAll(context.Background(), "src2", "v1", []discovery.DocURL{{URL: srv.URL}})
	require.Equal(t, 1, res.DocumentsIngested)

	doc, err := st.GetByURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "Visible prose.")
	assert.NotContains(t, doc.Content, "bad()")
}

func TestIngestAll_TruncatesOversizedContent(t *testing.T) {
	big := strings.Repeat("a", 600_000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	st := setupStore(t)
	_, err := st.UpsertSource(context.Background(), "src3", srv.URL)
	require.NoError(t, err)
	_, err = st.CreateStaging(context.Background(), "src3", "v1")
	require.NoError(t, err)

	ig := ingest.New(httpclient.New(), st, sink.NewInMemorySink())
	res := ig.IngestAll(context.Background(), "src3", "v1", []discovery.DocURL{{URL: srv.URL}})
	require.Equal(t, 1, res.DocumentsIngested)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "truncated")

	doc, err := st.GetByURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 500_000, len(doc.Content))
}

func TestIngestAll_PerDocumentFailureIsolation(t *testing.T) {
	st := setupStore(t)
	_, err := st.UpsertSource(context.Background(), "src4", "https://example.invalid/")
	require.NoError(t, err)
	_, err = st.CreateStaging(context.Background(), "src4", "v1")
	require.NoError(t, err)

	ig := ingest.New(httpclient.New(), st, sink.NewInMemorySink())
	res := ig.IngestAll(context.Background(), "src4", "v1", []discovery.DocURL{
		{URL: "://malformed-url"},
	})

	assert.Equal(t, 0, res.DocumentsIngested)
	assert.Len(t, res.Failures, 1)
}
