package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jpl-au/kbmirror/internal/discovery"
	"github.com/jpl-au/kbmirror/internal/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, discovery.KindLLMSTxt, discovery.Classify("https://example.com/docs/"))
	assert.Equal(t, discovery.KindLLMSTxt, discovery.Classify("https://example.com/docs/index.html"))
	assert.Equal(t, discovery.KindLLMSFullList, discovery.Classify("https://example.com/llms-full.txt"))
	assert.Equal(t, discovery.KindSitemap, discovery.Classify("https://example.com/sitemap.xml"))
	assert.Equal(t, discovery.KindSingleURL, discovery.Classify("https://example.com/a/b.md"))
}

func TestList_LLMSFullList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("https://example.com/a.md\n\nhttps://example.com/b.md\n"))
	}))
	defer srv.Close()

	d := discovery.New(httpclient.New())
	docs, err := d.List(context.Background(), srv.URL+"/llms-full.txt")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "https://example.com/a.md", docs[0].URL)
}

func TestList_Sitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?>
<urlset><url><loc>https://example.com/a?x=1&amp;y=2</loc></url>
<url><loc>https://example.com/b</loc></url></urlset>`))
	}))
	defer srv.Close()

	d := discovery.New(httpclient.New())
	docs, err := d.List(context.Background(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "https://example.com/a?x=1&y=2", docs[0].URL)
}

func TestList_SingleURL(t *testing.T) {
	d := discovery.New(httpclient.New())
	docs, err := d.List(context.Background(), "https://example.com/docs/page.md")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "docs/page.md", docs[0].Path)
}
