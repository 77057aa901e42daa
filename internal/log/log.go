// Package log provides centralised audit logging for the mirror's
// reconciliation and quote operations. Logs are stored in
// ~/.kbmirror/log/kbmirror-log.db.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("reconcile:one", "reconcile").
//		Source(src.ID).
//		Version(v.VersionID).
//		Write(err)
//
//	log.Event("quote:get", "quote").
//		Detail("mode", mode).
//		Detail("url", url).
//		Write(err)
//
// The source parameter follows the format "{component}:{operation}", e.g.
// "reconcile:one", "ingest:document", "quote:get", "sync:run".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source   string // e.g., "reconcile:one", "mcp:mirrorSource"
	Action   string // verb: reconcile, ingest, sync, quote, etc.
	SourceID string // input: source id this operation concerns
	VersionID string // input: version id this operation concerns

	// Category classifies a failed operation per the errs package taxonomy
	// (Auth, Network, Database, Validation, Classification, Storage, Internal).
	Category string

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success   bool           // whether operation succeeded
	Retryable bool           // whether a failure is retryable (meaningful only if !Success)
	Error     string         // error message if failed
	Detail    map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - CLI commands: "cli:{command}" (e.g., "cli:sync_run", "cli:get_quote")
//   - MCP tools: "mcp:{tool}" (e.g., "mcp:mirrorSource", "mcp:getQuote")
//
// The action describes what operation was performed:
//   - "reconcile", "ingest", "sync", "quote", etc.
//
// Example:
//
//	log.Event("reconcile:one", "reconcile").
//		Source(src.ID).
//		Version(v.VersionID).
//		Write(err)
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Source sets the Source id this operation concerns.
//
// Example:
//
//	log.Event("reconcile:one", "reconcile").Source(src.ID)
func (b *Builder) Source(sourceID string) *Builder {
	b.entry.SourceID = sourceID
	return b
}

// Version sets the Version id this operation concerns.
//
// Example:
//
//	log.Event("reconcile:one", "reconcile").Source(src.ID).Version(versionID)
func (b *Builder) Version(versionID string) *Builder {
	b.entry.VersionID = versionID
	return b
}

// Category sets the error category (errs.Category) for a failed operation.
//
// Example:
//
//	l.Category(string(errs.Network))
func (b *Builder) Category(category string) *Builder {
	b.entry.Category = category
	return b
}

// Retryable marks a failure as retryable or not.
func (b *Builder) Retryable(retryable bool) *Builder {
	b.entry.Retryable = retryable
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// quote requests, match counts, document urls, etc. Can be called multiple
// times to add multiple details.
//
// Example:
//
//	log.Event("quote:get", "quote").
//		Detail("request", request).
//		Detail("url", url)
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
//
// This is the standard way to complete a log entry after an operation.
//
// Example:
//
//	_, err := reconciler.VerifyAndReconcileOne(ctx, src.ID, src.SourceURL)
//	log.Event("reconcile:one", "reconcile").Source(src.ID).Write(err)
//	if err != nil {
//		return err
//	}
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the path to the database file in use, so log entries
// from different databases hash to distinct project ids.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
