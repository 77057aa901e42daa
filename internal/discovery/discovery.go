// Package discovery classifies a root URL and enumerates the set of
// document URLs it represents. Discovery is stateless and idempotent:
// re-invocation against a stable upstream yields the same list.
package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jpl-au/kbmirror/internal/httpclient"
)

// Kind classifies how a root URL was interpreted.
type Kind string

const (
	KindLLMSTxt      Kind = "llms_txt"
	KindLLMSFullList Kind = "llms_full_list"
	KindSitemap      Kind = "sitemap"
	KindSingleURL    Kind = "single_url"
)

// DocURL is one discovered document: its absolute URL plus a relative path
// used for readability in the stored schema (never for addressing).
type DocURL struct {
	URL  string
	Path string
}

// Discoverer enumerates the document URLs behind a root URL.
type Discoverer struct {
	client *httpclient.Client
}

// New constructs a Discoverer over the given HTTP client.
func New(client *httpclient.Client) *Discoverer {
	return &Discoverer{client: client}
}

// Classify determines the Kind of a root URL without performing any I/O.
func Classify(rootURL string) Kind {
	switch {
	case strings.HasSuffix(rootURL, "llms-full.txt"):
		return KindLLMSFullList
	case strings.HasSuffix(rootURL, "sitemap.xml"):
		return KindSitemap
	case strings.HasSuffix(rootURL, "/") || strings.HasSuffix(rootURL, "/index.html"):
		return KindLLMSTxt
	default:
		return KindSingleURL
	}
}

// List enumerates the document URLs behind rootURL per its Kind.
func (d *Discoverer) List(ctx context.Context, rootURL string) ([]DocURL, error) {
	switch Classify(rootURL) {
	case KindLLMSTxt:
		return d.listLLMSTxt(ctx, rootURL)
	case KindLLMSFullList:
		return d.listLLMSFullList(ctx, rootURL)
	case KindSitemap:
		return d.listSitemap(ctx, rootURL)
	default:
		return []DocURL{singleURLDoc(rootURL)}, nil
	}
}

func singleURLDoc(rawURL string) DocURL {
	path := strings.TrimPrefix(pathOf(rawURL), "/")
	if path == "" {
		path = "index"
	}
	return DocURL{URL: rawURL, Path: path}
}

func pathOf(rawURL string) string {
	// Strip scheme+host without a full net/url round trip: everything
	// before the third "/" (scheme://host) is the origin; the returned
	// path keeps its leading "/".
	idx := strings.Index(rawURL, "://")
	if idx < 0 {
		return rawURL
	}
	rest := rawURL[idx+3:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return rest[slash:]
	}
	return ""
}

func (d *Discoverer) listLLMSTxt(ctx context.Context, rootURL string) ([]DocURL, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(rootURL, "index.html"), "/")
	listURL := base + "/llms.txt"

	body, _, err := d.client.Get(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("discovery: fetch %s: %w", listURL, err)
	}
	return linesAsDocs(string(body)), nil
}

func (d *Discoverer) listLLMSFullList(ctx context.Context, rootURL string) ([]DocURL, error) {
	body, _, err := d.client.Get(ctx, rootURL)
	if err != nil {
		return nil, fmt.Errorf("discovery: fetch %s: %w", rootURL, err)
	}
	return linesAsDocs(string(body)), nil
}

func linesAsDocs(body string) []DocURL {
	var docs []DocURL
	for _, line := range strings.Split(body, "\n") {
		u := strings.TrimSpace(line)
		if u == "" {
			continue
		}
		docs = append(docs, singleURLDoc(u))
	}
	return docs
}

// sitemapURLSet / sitemapIndex mirror the W3C sitemap 0.9 schema closely
// enough for encoding/xml to decode both <urlset> and <sitemapindex> forms.
// xml.Unmarshal entity-decodes &amp; &lt; &gt; &quot; &apos; automatically.
type sitemapURLSet struct {
	XMLName xml.Name      `xml:"urlset"`
	URLs    []sitemapEntry `xml:"url"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

func (d *Discoverer) listSitemap(ctx context.Context, rootURL string) ([]DocURL, error) {
	body, _, err := d.client.Get(ctx, rootURL)
	if err != nil {
		return nil, fmt.Errorf("discovery: fetch %s: %w", rootURL, err)
	}

	var set sitemapURLSet
	if err := xml.Unmarshal(body, &set); err == nil && len(set.URLs) > 0 {
		docs := make([]DocURL, 0, len(set.URLs))
		for _, u := range set.URLs {
			if u.Loc != "" {
				docs = append(docs, singleURLDoc(u.Loc))
			}
		}
		return docs, nil
	}

	var idx sitemapIndex
	if err := xml.Unmarshal(body, &idx); err != nil {
		return nil, fmt.Errorf("discovery: parse sitemap %s: %w", rootURL, err)
	}

	var docs []DocURL
	for _, s := range idx.Sitemaps {
		if s.Loc == "" {
			continue
		}
		children, err := d.listSitemap(ctx, s.Loc)
		if err != nil {
			continue // one bad child sitemap must not abort discovery
		}
		docs = append(docs, children...)
	}
	return docs, nil
}
