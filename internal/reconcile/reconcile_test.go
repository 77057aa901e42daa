package reconcile_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jpl-au/kbmirror/internal/clock"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/jpl-au/kbmirror/internal/reconcile"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(n int) string { return strconv.Itoa(n) }

func setup(t *testing.T) *store.SQLiteStore {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "kbmirror-reconcile-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := store.Open(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Init())
	return s
}

func TestVerifyAndReconcileOne_FirstRunThenUpToDate(t *testing.T) {
	st := setup(t)

	body := []byte("Hello world. This is a test document.")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", itoa(len(body)))
		w.Write(body)
	}))
	defer srv.Close()

	sk := sink.NewInMemorySink()
	svc := reconcile.New(st, sk, httpclient.New(), clock.Fixed(time.Unix(1000, 0)), "agent1")

	out1, err := svc.VerifyAndReconcileOne(context.Background(), "src1", srv.URL+"/doc.md")
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusReconciled, out1.Status)
	assert.Equal(t, 1, out1.FileCount)
	assert.Equal(t, 1, sk.Len())

	out2, err := svc.VerifyAndReconcileOne(context.Background(), "src1", srv.URL+"/doc.md")
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusUpToDate, out2.Status)
	assert.Equal(t, out1.VersionID, out2.VersionID)

	versions, err := st.ListVersions(context.Background(), "src1")
	require.NoError(t, err)
	assert.Len(t, versions, 1, "up_to_date reconcile must not create a new Version row")
}

func TestVerifyAndReconcileOne_SizeGate(t *testing.T) {
	st := setup(t)

	big := make([]byte, 2<<20) // 2 MiB
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", itoa(len(big)))
		w.Write(big)
	}))
	defer srv.Close()

	require.NoError(t, st.SetSizePolicy(context.Background(), store.SizePolicy{
		AgentID: "agent1", AutoIngestBelowBytes: 1 << 20, MaxBytesHardLimit: 1 << 20,
	}))

	svc := reconcile.New(st, sink.NewInMemorySink(), httpclient.New(), clock.Real{}, "agent1")
	out, err := svc.VerifyAndReconcileOne(context.Background(), "src1", srv.URL+"/doc.md")
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusSkippedSizeLimit, out.Status)

	versions, err := st.ListVersions(context.Background(), "src1")
	require.NoError(t, err)
	assert.Empty(t, versions)
}
