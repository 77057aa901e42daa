// Package preview implements PreviewProbe: cheap HEAD/ranged-GET probing of
// discovered document URLs for size/etag/last-modified, feeding both the
// size gate and the VersionResolver.
package preview

import (
	"context"
	"net/http"

	"github.com/jpl-au/kbmirror/internal/discovery"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/jpl-au/kbmirror/internal/store"
)

// Prober probes a set of discovered URLs for SourcePreview.
type Prober struct {
	client *httpclient.Client
}

// New constructs a Prober over the given HTTP client.
func New(client *httpclient.Client) *Prober {
	return &Prober{client: client}
}

// Probe issues a HEAD (falling back to a ranged GET) against every entry in
// docs, producing a SourcePreview. A per-URL failure never drops the entry:
// it yields a placeholder FilePreview{estBytes:0, contentType:"unknown"}
// rather than aborting the whole probe.
func (p *Prober) Probe(ctx context.Context, sourceID string, docs []discovery.DocURL) store.SourcePreview {
	files := make([]store.FilePreview, len(docs))
	var total int64

	for i, d := range docs {
		fp := p.probeOne(ctx, d)
		files[i] = fp
		total += fp.EstBytes
	}

	return store.SourcePreview{SourceID: sourceID, TotalBytes: total, Files: files}
}

func (p *Prober) probeOne(ctx context.Context, d discovery.DocURL) store.FilePreview {
	ctx, cancel := context.WithTimeout(ctx, httpclient.PreviewTimeout)
	defer cancel()

	fp := store.FilePreview{URL: d.URL, Path: d.Path, EstBytes: 0, ContentType: "unknown"}

	if ok := p.head(ctx, d.URL, &fp); ok {
		return fp
	}
	p.rangedGet(ctx, d.URL, &fp)
	return fp
}

// head issues HEAD and fills fp from the response headers. Returns false if
// the request failed or the response omitted content-length, signalling
// the caller to fall back to a ranged GET.
func (p *Prober) head(ctx context.Context, url string, fp *store.FilePreview) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return false
	}
	fillFromHeaders(fp, resp)
	return true
}

func (p *Prober) rangedGet(ctx context.Context, url string, fp *store.FilePreview) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	fillFromHeaders(fp, resp)
}

func fillFromHeaders(fp *store.FilePreview, resp *http.Response) {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		fp.ContentType = ct
	}
	if resp.ContentLength >= 0 {
		fp.EstBytes = resp.ContentLength
	}
	fp.ETag = resp.Header.Get("ETag")
	fp.LastModified = resp.Header.Get("Last-Modified")
}
