package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Use temp directory for test database
	tmpDir := t.TempDir()
	origDBPath := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	defer func() { dbPathFunc = origDBPath }()

	t.Run("open and close", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)
		defer Close()

		// Verify database file exists
		assert.FileExists(t, DBPath())
	})

	t.Run("log entry", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		Log(Entry{
			Source:    "reconcile:one",
			Action:    "reconcile",
			SourceID:  "src-1",
			VersionID: "v1",
			Success:   true,
		})

		// Verify entry was written
		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM log").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var source, action, sourceID, versionID string
		var success int
		err = db.QueryRow("SELECT source, action, source_id, version_id, success FROM log WHERE id = 1").
			Scan(&source, &action, &sourceID, &versionID, &success)
		require.NoError(t, err)
		assert.Equal(t, "reconcile:one", source)
		assert.Equal(t, "reconcile", action)
		assert.Equal(t, "src-1", sourceID)
		assert.Equal(t, "v1", versionID)
		assert.Equal(t, 1, success)
	})

	t.Run("log error entry", func(t *testing.T) {
		// Reset global for clean test
		Close()

		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		Log(Entry{
			Source:   "reconcile:one",
			Action:   "reconcile",
			SourceID: "src-missing",
			Category: "Network",
			Success:  false,
			Error:    "fetch failed: connection refused",
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var success int
		var category, errMsg string
		err = db.QueryRow("SELECT success, category, error FROM log ORDER BY id DESC LIMIT 1").
			Scan(&success, &category, &errMsg)
		require.NoError(t, err)
		assert.Equal(t, 0, success)
		assert.Equal(t, "Network", category)
		assert.Equal(t, "fetch failed: connection refused", errMsg)
	})

	t.Run("log with detail", func(t *testing.T) {
		Close()

		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		Log(Entry{
			Source:  "quote:get",
			Action:  "quote",
			Success: true,
			Detail:  map[string]any{"mode": "stats", "charCount": 42},
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var detail string
		err = db.QueryRow("SELECT detail FROM log ORDER BY id DESC LIMIT 1").Scan(&detail)
		require.NoError(t, err)
		assert.Contains(t, detail, "stats")
		assert.Contains(t, detail, "42")
	})

	t.Run("log without logger is noop", func(t *testing.T) {
		Close()

		// Should not panic
		Log(Entry{
			Source:  "sync:run",
			Action:  "sync",
			Success: true,
		})
	})

	t.Run("open is idempotent", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)

		err = Open() // second call should succeed
		require.NoError(t, err)

		Close()
	})
}

func TestHash(t *testing.T) {
	h1 := hash("/home/user/project/kbmirror.db")
	h2 := hash("/home/user/project/kbmirror.db")
	h3 := hash("/home/user/other/kbmirror.db")

	assert.Equal(t, h1, h2, "same input should produce same hash")
	assert.NotEqual(t, h1, h3, "different input should produce different hash")
	assert.Len(t, h1, 16, "BLAKE2b-64 should produce 16 hex chars")
}

func TestDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expected := filepath.Join(home, ".kbmirror", "log", "kbmirror-log.db")

	// Use default path function
	origDBPath := dbPathFunc
	dbPathFunc = defaultDBPath
	defer func() { dbPathFunc = origDBPath }()

	assert.Equal(t, expected, DBPath())
}

func TestBuilder(t *testing.T) {
	// Use temp directory for test database
	tmpDir := t.TempDir()
	origDBPath := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	defer func() { dbPathFunc = origDBPath }()

	t.Run("fluent API success", func(t *testing.T) {
		Close()
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		Event("reconcile:one", "reconcile").
			Source("src-1").
			Version("v1").
			Write(nil) // success

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var source, action, sourceID, versionID string
		var success int
		err = db.QueryRow("SELECT source, action, source_id, version_id, success FROM log ORDER BY id DESC LIMIT 1").
			Scan(&source, &action, &sourceID, &versionID, &success)
		require.NoError(t, err)
		assert.Equal(t, "reconcile:one", source)
		assert.Equal(t, "reconcile", action)
		assert.Equal(t, "src-1", sourceID)
		assert.Equal(t, "v1", versionID)
		assert.Equal(t, 1, success)
	})

	t.Run("fluent API with error", func(t *testing.T) {
		Close()
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		testErr := sql.ErrNoRows // use any error
		Event("reconcile:one", "reconcile").
			Source("src-2").
			Category("Storage").
			Write(testErr)

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var success int
		var errMsg string
		err = db.QueryRow("SELECT success, error FROM log ORDER BY id DESC LIMIT 1").
			Scan(&success, &errMsg)
		require.NoError(t, err)
		assert.Equal(t, 0, success)
		assert.Equal(t, testErr.Error(), errMsg)
	})

	t.Run("fluent API with Detail", func(t *testing.T) {
		Close()
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		Event("quote:get", "quote").
			Detail("mode", "find").
			Detail("matchCount", 42).
			Write(nil)

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var detail string
		err = db.QueryRow("SELECT detail FROM log ORDER BY id DESC LIMIT 1").Scan(&detail)
		require.NoError(t, err)
		assert.Contains(t, detail, "find")
		assert.Contains(t, detail, "42")
	})

	t.Run("fluent API with Retryable", func(t *testing.T) {
		Close()
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetProject(filepath.Join(tmpDir, "project.db"))

		Event("reconcile:one", "reconcile").
			Source("src-3").
			Retryable(true).
			Write(sql.ErrConnDone)

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var retryable int
		err = db.QueryRow("SELECT retryable FROM log ORDER BY id DESC LIMIT 1").Scan(&retryable)
		require.NoError(t, err)
		assert.Equal(t, 1, retryable)
	})
}
