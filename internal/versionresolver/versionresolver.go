// Package versionresolver computes the content-independent versionId of a
// SourcePreview and decides whether a reconcile is needed.
package versionresolver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/jpl-au/kbmirror/internal/store"
)

// Resolve computes the deterministic versionId for a preview: SHA-256 over
// every file sorted by path, each contributing
// "url|path|estBytes|etag|lastModified||", followed by "count:N". Stable
// under reordering of preview.Files (the explicit sort); changes whenever
// any probed attribute of any file changes, or a file is added/removed.
func Resolve(preview store.SourcePreview) string {
	files := make([]store.FilePreview, len(preview.Files))
	copy(files, preview.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "%s|%s|%d|%s|%s||", f.URL, f.Path, f.EstBytes, f.ETag, f.LastModified)
	}
	fmt.Fprintf(h, "count:%d", len(files))

	return hex.EncodeToString(h.Sum(nil))
}

// NeedsUpdate reports whether remote differs from local (local being the
// versionId of the latest active Version, or "" if none exists).
func NeedsUpdate(local, remote string) bool {
	return local == "" || local != remote
}
