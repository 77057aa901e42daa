package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// extractHTMLText is the Ingestor's minimal text-extraction fallback for
// text/html documents. A real extractor is treated as an external
// collaborator (the rest of this package stores whatever string it is
// handed); this walk exists only so the Ingestor produces a sane quote
// source when no such collaborator is wired in front of it, skipping
// script/style content and collapsing whitespace between block elements.
func extractHTMLText(body []byte) (string, bool) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", false
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String(), true
}
