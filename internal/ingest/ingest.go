// Package ingest implements the Ingestor: fetch, normalize, hash, persist
// verbatim content plus its structural profile, and forward to the
// semantic sink - one document at a time, with per-document fault
// isolation so a single bad URL never aborts a version.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/jpl-au/kbmirror/internal/analyzer"
	"github.com/jpl-au/kbmirror/internal/discovery"
	"github.com/jpl-au/kbmirror/internal/errs"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/jpl-au/kbmirror/internal/sink"
	"github.com/jpl-au/kbmirror/internal/store"
)

const maxContentChars = 500_000

var textExtensions = map[string]bool{
	".md": true, ".txt": true, ".markdown": true, ".mdx": true, ".rst": true,
}

// Diagnostic records a non-fatal condition surfaced during ingestion of one
// document (e.g. truncation, a PDF content-type claim without the magic
// bytes).
type Diagnostic struct {
	URL     string
	Message string
}

// Result is the outcome of ingesting one Source's document set.
type Result struct {
	DocumentsIngested int
	Diagnostics       []Diagnostic
	Failures          []error
}

// Ingestor fetches and persists documents for one reconciliation pass.
type Ingestor struct {
	client *httpclient.Client
	store  store.DocumentRepo
	links  store.KnowledgeLinkRepo
	sink   sink.KnowledgeSink
}

// New constructs an Ingestor.
func New(client *httpclient.Client, st store.Store, sk sink.KnowledgeSink) *Ingestor {
	return &Ingestor{client: client, store: st, links: st, sink: sk}
}

// IngestAll runs the per-document ingest loop for sourceID/versionID over
// docs. A per-document failure is caught, recorded, and the loop proceeds
// to the next document - it never aborts the version.
func (ig *Ingestor) IngestAll(ctx context.Context, sourceID, versionID string, docs []discovery.DocURL) Result {
	var res Result

	for _, d := range docs {
		if err := ig.ingestOne(ctx, sourceID, versionID, d, &res); err != nil {
			res.Failures = append(res.Failures, fmt.Errorf("%s: %w", d.URL, err))
			continue
		}
		res.DocumentsIngested++
	}

	return res
}

func (ig *Ingestor) ingestOne(ctx context.Context, sourceID, versionID string, d discovery.DocURL, res *Result) error {
	rawURL := NormalizeURL(d.URL)

	content, mimeType, err := ig.fetch(ctx, d.URL, rawURL, res)
	if err != nil {
		return errs.Wrap(errs.Network, "ingest_fetch", err).WithContext("url", d.URL).WithRetryable(true)
	}

	if len(content) > maxContentChars {
		content = content[:maxContentChars]
		res.Diagnostics = append(res.Diagnostics, Diagnostic{URL: d.URL, Message: "content truncated at 500000 chars"})
	}

	sum := sha256.Sum256([]byte(content))
	contentHash := hex.EncodeToString(sum[:])
	profile := analyzer.Analyze(content)

	doc := store.Document{
		ID:          uuid.NewString(),
		SourceID:    sourceID,
		VersionID:   versionID,
		URL:         d.URL,
		Content:     content,
		ContentHash: contentHash,
		MimeType:    mimeType,
		ByteSize:    int64(len(content)),
		Profile:     &profile,
	}
	if err := ig.store.InsertDocument(ctx, doc); err != nil {
		return errs.Wrap(errs.Storage, "ingest_persist", err)
	}

	if rawURL != d.URL {
		rawDoc := doc
		rawDoc.ID = uuid.NewString()
		rawDoc.URL = rawURL
		// Duplicate-key errors on (sourceId, versionId, url) are swallowed
		// by InsertDocument itself, matching the idempotent-insert contract.
		if err := ig.store.InsertDocument(ctx, rawDoc); err != nil {
			return errs.Wrap(errs.Storage, "ingest_persist_raw", err)
		}
	}

	handle, err := ig.sink.Add(ctx, content, sink.Metadata{
		"sourceId":  sourceID,
		"versionId": versionID,
		"url":       d.URL,
		"mimeType":  mimeType,
	})
	if err != nil {
		return errs.Wrap(errs.Internal, "ingest_sink", err)
	}

	link := store.KnowledgeLink{
		ID:                  sourceID + ":" + versionID + ":" + handle,
		SourceID:            sourceID,
		VersionID:           versionID,
		KnowledgeDocumentID: handle,
	}
	if err := ig.links.AddLink(ctx, link); err != nil {
		return errs.Wrap(errs.Storage, "ingest_link", err)
	}

	return nil
}

// fetch decides transport by a two-step content-type check and returns
// the extracted text plus the routed mime type.
func (ig *Ingestor) fetch(ctx context.Context, originalURL, rawURL string, res *Result) (string, string, error) {
	body, resp, err := ig.client.Get(ctx, rawURL)
	if err != nil {
		return "", "", err
	}

	contentType := resp.Header.Get("Content-Type")
	ext := strings.ToLower(path.Ext(stripQuery(originalURL)))

	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		if !bytes.HasPrefix(body, []byte("%PDF-")) {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{URL: originalURL, Message: "content-type claimed PDF without magic bytes, downgraded to text"})
			return string(body), "text/plain", nil
		}
		// PDF extraction is an external collaborator; the core treats its
		// output as an opaque string it would otherwise receive pre-extracted.
		return string(body), "application/pdf", nil
	case strings.HasPrefix(contentType, "text/html"), strings.HasPrefix(contentType, "application/xhtml"):
		// A full extractor is an external collaborator; absent one, fall
		// back to a minimal text walk so quote lookups see prose instead
		// of markup. Parse failure falls back to the raw body.
		if text, ok := extractHTMLText(body); ok {
			return text, "text/html", nil
		}
		return string(body), "text/html", nil
	case strings.HasPrefix(contentType, "text/"), textExtensions[ext]:
		return string(body), firstNonEmpty(contentType, "text/plain"), nil
	default:
		return string(body), firstNonEmpty(contentType, "application/octet-stream"), nil
	}
}

func stripQuery(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		return url[:idx]
	}
	return url
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
