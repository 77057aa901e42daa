package quote

import (
	"context"
	"strings"

	"github.com/jpl-au/kbmirror/internal/analyzer"
	"github.com/jpl-au/kbmirror/internal/store"
)

const fullModeDisplayLimit = 5000

// Engine resolves quote requests against a Document's stored Profile.
// Lookups are O(1) relative to document size: they index into the
// precomputed Sentences/Paragraphs/Lines arrays rather than rescanning text.
type Engine struct {
	docs store.DocumentRepo
}

// New constructs an Engine over the document store.
func New(docs store.DocumentRepo) *Engine {
	return &Engine{docs: docs}
}

// Lookup resolves (url, rawRequestText, structuredArgs) to a Result.
// structuredArgs, when non-nil, bypasses NL parsing entirely.
func (e *Engine) Lookup(ctx context.Context, url, rawRequestText string, structuredArgs *Request) (Result, error) {
	doc, err := e.docs.GetByURL(ctx, url)
	if err != nil {
		if err == store.ErrNotFound {
			return Result{}, ErrDocumentNotFound
		}
		return Result{}, err
	}
	if doc.Profile == nil {
		return Result{}, ErrDocumentNotFound
	}

	req, ok := ParseRequest(rawRequestText, structuredArgs)
	if !ok {
		return Result{}, ErrUnrecognizedRequest
	}

	return e.resolve(doc, req)
}

func (e *Engine) resolve(doc *store.Document, req Request) (Result, error) {
	p := doc.Profile

	switch req.Mode {
	case ModeStats:
		return Result{Mode: req.Mode, Stats: statsOf(p)}, nil

	case ModeStatSpecific:
		return statSpecific(p, req.Stat)

	case ModeNth:
		return nth(doc, req.Unit, req.Count)

	case ModeFirstN:
		return firstN(doc, req.Unit, req.Count)

	case ModeLastN:
		return lastN(doc, req.Unit, req.Count)

	case ModeParagraph:
		return paragraphAt(doc, req.Count)

	case ModeFirstParagraph:
		return paragraphAt(doc, 1)

	case ModeLastParagraph:
		return paragraphAt(doc, p.ParagraphCount)

	case ModeRange:
		return lineRange(doc, req.Start, req.End)

	case ModeSentenceRange:
		return sentenceRange(doc, req.Start, req.End)

	case ModeParagraphRange:
		return paragraphRange(doc, req.Start, req.End)

	case ModeLine:
		return lineAt(doc, req.LineNumber)

	case ModeFull:
		return fullMode(doc), nil

	case ModeSearch:
		return searchOne(doc, req.Needle)

	case ModeSearchAll:
		return searchAll(doc, req.Needle, req.CountOnly), nil

	case ModeImplicitStart:
		return firstN(doc, UnitSentence, 3)

	case ModeImplicitEnd:
		return lastN(doc, UnitSentence, 3)

	case ModeSection:
		return section(doc, req.SectionName)

	case ModeSectionList:
		return sectionList(doc), nil

	case ModeCompound:
		return compound(doc, req.Sub)
	}

	return Result{}, ErrUnrecognizedRequest
}

func statsOf(p *analyzer.Profile) *Stats {
	return &Stats{
		CharCount:                p.CharCount,
		WordCount:                p.WordCount,
		LineCount:                p.LineCount,
		NonBlankLineCount:        p.NonBlankLineCount,
		SentenceCount:            p.SentenceCount,
		ParagraphCount:           p.ParagraphCount,
		AvgWordsPerSentence:      p.AvgWordsPerSentence,
		AvgSentencesPerParagraph: p.AvgSentencesPerParagraph,
	}
}

func statSpecific(p *analyzer.Profile, stat string) (Result, error) {
	unit, ok := parseUnit(stat)
	if !ok {
		return Result{}, ErrUnrecognizedRequest
	}
	s := statsOf(p)
	var v int
	switch unit {
	case UnitSentence:
		v = s.SentenceCount
	case UnitParagraph:
		v = s.ParagraphCount
	case UnitLine:
		v = s.LineCount
	case UnitWord:
		v = s.WordCount
	}
	return Result{Mode: ModeStatSpecific, StatName: string(unit), StatValue: v}, nil
}

func fullMode(doc *store.Document) Result {
	text := doc.Content
	if len(text) > fullModeDisplayLimit {
		text = text[:fullModeDisplayLimit]
	}
	return Result{Mode: ModeFull, Quote: text, TotalBytes: len(doc.Content)}
}

func sectionList(doc *store.Document) Result {
	var names []string
	for _, h := range headings(doc) {
		names = append(names, h.text)
	}
	return Result{Mode: ModeSectionList, Sections: names}
}

func section(doc *store.Document, name string) (Result, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	hs := headings(doc)
	for i, h := range hs {
		if strings.Contains(strings.ToLower(h.text), name) {
			end := len(doc.Content)
			if i+1 < len(hs) {
				end = hs[i+1].start
			}
			return Result{Mode: ModeSection, SectionName: h.text, Quote: strings.TrimSpace(doc.Content[h.start:end])}, nil
		}
	}
	return Result{}, ErrSectionNotFound
}

func compound(doc *store.Document, sub []Request) (Result, error) {
	var quotes []string
	for _, r := range sub {
		res, err := nth(doc, r.Unit, r.Count)
		if err != nil {
			return Result{}, err
		}
		quotes = append(quotes, res.Quote)
	}
	return Result{Mode: ModeCompound, Quotes: quotes}, nil
}
