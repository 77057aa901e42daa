package versionresolver_test

import (
	"testing"

	"github.com/jpl-au/kbmirror/internal/store"
	"github.com/jpl-au/kbmirror/internal/versionresolver"
	"github.com/stretchr/testify/assert"
)

func preview(files ...store.FilePreview) store.SourcePreview {
	return store.SourcePreview{Files: files}
}

func TestResolve_StableUnderReordering(t *testing.T) {
	a := preview(
		store.FilePreview{URL: "u/a", Path: "a", EstBytes: 10, ETag: "x"},
		store.FilePreview{URL: "u/b", Path: "b", EstBytes: 20},
	)
	b := preview(
		store.FilePreview{URL: "u/b", Path: "b", EstBytes: 20},
		store.FilePreview{URL: "u/a", Path: "a", EstBytes: 10, ETag: "x"},
	)

	assert.Equal(t, versionresolver.Resolve(a), versionresolver.Resolve(b))
	assert.Len(t, versionresolver.Resolve(a), 64)
}

func TestResolve_ChangesOnAttributeChange(t *testing.T) {
	base := preview(store.FilePreview{URL: "u/a", Path: "a", EstBytes: 10, ETag: "x"})
	id := versionresolver.Resolve(base)

	cases := []store.SourcePreview{
		preview(store.FilePreview{URL: "u/a", Path: "a", EstBytes: 11, ETag: "x"}),
		preview(store.FilePreview{URL: "u/a", Path: "a", EstBytes: 10, ETag: "y"}),
		preview(store.FilePreview{URL: "u/a", Path: "a", EstBytes: 10, ETag: "x", LastModified: "t"}),
		preview(),
		preview(
			store.FilePreview{URL: "u/a", Path: "a", EstBytes: 10, ETag: "x"},
			store.FilePreview{URL: "u/b", Path: "b", EstBytes: 5},
		),
	}
	for _, c := range cases {
		assert.NotEqual(t, id, versionresolver.Resolve(c))
	}
}

func TestNeedsUpdate(t *testing.T) {
	assert.True(t, versionresolver.NeedsUpdate("", "abc"))
	assert.True(t, versionresolver.NeedsUpdate("abc", "def"))
	assert.False(t, versionresolver.NeedsUpdate("abc", "abc"))
}
