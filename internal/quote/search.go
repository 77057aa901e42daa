package quote

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jpl-au/kbmirror/internal/store"
)

const (
	searchContext    = 100
	searchAllContext = 50
)

// searchOne finds the first case-insensitive match of needle, returning the
// original-case substring plus a ±100-char context window.
func searchOne(doc *store.Document, needle string) (Result, error) {
	pos, n := indexFold(doc.Content, needle, 0)
	if pos < 0 {
		return Result{}, ErrNoMatch
	}
	m := buildMatch(doc, pos, n, searchContext)
	return Result{Mode: ModeSearch, Match: &m, Quote: m.Quote, LineNumber: m.LineNumber}, nil
}

// searchAll finds every non-overlapping case-insensitive match, advancing by
// 1 byte after each hit.
func searchAll(doc *store.Document, needle string, countOnly bool) Result {
	var matches []SearchMatch
	count := 0
	pos := 0
	for {
		idx, n := indexFold(doc.Content, needle, pos)
		if idx < 0 {
			break
		}
		count++
		if !countOnly {
			matches = append(matches, buildMatch(doc, idx, n, searchAllContext))
		}
		pos = idx + 1
	}
	return Result{Mode: ModeSearchAll, Matches: matches, TotalCount: count}
}

// indexFold finds the first case-insensitive occurrence of needle in s at or
// after byte offset from. Returns the byte offset and byte length of the
// match in s, or (-1, 0) if none.
//
// Folds s and needle rune-by-rune rather than via strings.ToLower on the
// whole string: a handful of runes (the Kelvin sign U+212A, Turkish
// dotted/dotless I, etc.) change UTF-8 width when case-folded, so a byte
// index found in a pre-lowered copy of s does not necessarily land at the
// same offset in s itself. Tracking each rune's own byte offset keeps pos
// anchored to s no matter how folding changes width upstream of the match.
func indexFold(s, needle string, from int) (pos, byteLen int) {
	if needle == "" || from > len(s) {
		return -1, 0
	}

	needleRunes := foldRunes(needle)
	if len(needleRunes) == 0 {
		return -1, 0
	}

	type hayRune struct {
		r      rune
		offset int
		size   int
	}
	var hay []hayRune
	for i := from; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		hay = append(hay, hayRune{r: unicode.ToLower(r), offset: i, size: size})
		i += size
	}

	for i := 0; i+len(needleRunes) <= len(hay); i++ {
		matched := true
		for j, nr := range needleRunes {
			if hay[i+j].r != nr {
				matched = false
				break
			}
		}
		if matched {
			last := hay[i+len(needleRunes)-1]
			return hay[i].offset, last.offset + last.size - hay[i].offset
		}
	}
	return -1, 0
}

// foldRunes lowercases needle rune-by-rune for comparison against hay runes
// folded the same way in indexFold.
func foldRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func buildMatch(doc *store.Document, pos, matchLen, context int) SearchMatch {
	content := doc.Content
	quote := content[pos : pos+matchLen]

	ctxStart := pos - context
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := pos + matchLen + context
	if ctxEnd > len(content) {
		ctxEnd = len(content)
	}

	return SearchMatch{
		Quote:        quote,
		LineNumber:   humanLineNumber(content, pos),
		CharPosition: pos,
		Context:      content[ctxStart:ctxEnd],
	}
}

// humanLineNumber is the 1-based display line number for a search hit:
// 1 + the count of newlines preceding pos. Distinct from Sentence.LineNumber
// (the 0-based index into Profile.Lines used internally).
func humanLineNumber(content string, pos int) int {
	return 1 + strings.Count(content[:pos], "\n")
}
