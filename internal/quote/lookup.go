package quote

import (
	"strings"

	"github.com/jpl-au/kbmirror/internal/analyzer"
	"github.com/jpl-au/kbmirror/internal/store"
)

// nth resolves the n-th (1-based) sentence/paragraph/line/word.
func nth(doc *store.Document, unit Unit, n int) (Result, error) {
	p := doc.Profile

	if unit == UnitWord {
		words := strings.Fields(doc.Content)
		if n < 1 || n > len(words) {
			return Result{}, errNotFound(unit, n, len(words))
		}
		return Result{Mode: ModeNth, Quote: words[n-1]}, nil
	}

	switch unit {
	case UnitSentence:
		if n < 1 || n > p.SentenceCount {
			return Result{}, errNotFound(unit, n, p.SentenceCount)
		}
		phys, ok := resolveCappedIndex(n-1, p.SentenceCount, p.SentencesCapped, analyzer.CapKeep)
		if !ok {
			return Result{}, errNotRetained(unit)
		}
		s := p.Sentences[phys]
		return Result{Mode: ModeNth, Quote: s.Text, LineNumber: s.LineNumber}, nil

	case UnitParagraph:
		return paragraphAt(doc, n)

	case UnitLine:
		return lineAt(doc, n)
	}

	return Result{}, ErrUnrecognizedRequest
}

func paragraphAt(doc *store.Document, n int) (Result, error) {
	p := doc.Profile
	if n < 1 || n > p.ParagraphCount {
		return Result{}, errNotFound(UnitParagraph, n, p.ParagraphCount)
	}
	phys, ok := resolveCappedIndex(n-1, p.ParagraphCount, p.ParagraphsCapped, analyzer.CapKeep)
	if !ok {
		return Result{}, errNotRetained(UnitParagraph)
	}
	para := p.Paragraphs[phys]
	return Result{Mode: ModeParagraph, Quote: doc.Content[para.Start:para.End]}, nil
}

func lineAt(doc *store.Document, n int) (Result, error) {
	p := doc.Profile
	if n < 1 || n > p.LineCount {
		return Result{}, errNotFound(UnitLine, n, p.LineCount)
	}
	phys, ok := resolveCappedIndex(n-1, p.LineCount, p.LinesCapped, analyzer.CapKeep)
	if !ok {
		return Result{}, errNotRetained(UnitLine)
	}
	line := p.Lines[phys]
	return Result{Mode: ModeLine, Quote: doc.Content[line.Start:line.End], LineNumber: n}, nil
}

func firstN(doc *store.Document, unit Unit, n int) (Result, error) {
	return sliceFromEnd(doc, unit, n, true)
}

func lastN(doc *store.Document, unit Unit, n int) (Result, error) {
	return sliceFromEnd(doc, unit, n, false)
}

func sliceFromEnd(doc *store.Document, unit Unit, n int, fromStart bool) (Result, error) {
	if unit == UnitWord {
		words := strings.Fields(doc.Content)
		if n > len(words) {
			n = len(words)
		}
		var picked []string
		if fromStart {
			picked = words[:n]
		} else {
			picked = words[len(words)-n:]
		}
		return Result{Mode: ModeFirstN, Quotes: picked}, nil
	}

	p := doc.Profile
	total, capped := countAndCapped(p, unit)
	if n > total {
		n = total
	}
	start, end := 1, n
	if !fromStart {
		start, end = total-n+1, total
	}

	quotes, err := sliceQuotes(doc, unit, start, end, capped)
	if err != nil {
		return Result{}, err
	}
	mode := ModeFirstN
	if !fromStart {
		mode = ModeLastN
	}
	return Result{Mode: mode, Quotes: quotes}, nil
}

func countAndCapped(p *analyzer.Profile, unit Unit) (total int, capped bool) {
	switch unit {
	case UnitSentence:
		return p.SentenceCount, p.SentencesCapped
	case UnitParagraph:
		return p.ParagraphCount, p.ParagraphsCapped
	case UnitLine:
		return p.LineCount, p.LinesCapped
	}
	return 0, false
}

// sliceQuotes returns the text of every unit in [start,end] (1-based,
// inclusive), erroring if any requested index falls in a capped gap.
func sliceQuotes(doc *store.Document, unit Unit, start, end int, capped bool) ([]string, error) {
	p := doc.Profile
	total, _ := countAndCapped(p, unit)
	if start < 1 {
		start = 1
	}
	if end > total {
		end = total
	}
	if start > end {
		return nil, nil
	}

	var out []string
	for i := start; i <= end; i++ {
		phys, ok := resolveCappedIndex(i-1, total, capped, analyzer.CapKeep)
		if !ok {
			return nil, errNotRetained(unit)
		}
		switch unit {
		case UnitSentence:
			out = append(out, p.Sentences[phys].Text)
		case UnitParagraph:
			para := p.Paragraphs[phys]
			out = append(out, doc.Content[para.Start:para.End])
		case UnitLine:
			line := p.Lines[phys]
			out = append(out, doc.Content[line.Start:line.End])
		}
	}
	return out, nil
}

func sentenceRange(doc *store.Document, start, end int) (Result, error) {
	return rangeResult(doc, UnitSentence, start, end, ModeSentenceRange)
}

func paragraphRange(doc *store.Document, start, end int) (Result, error) {
	return rangeResult(doc, UnitParagraph, start, end, ModeParagraphRange)
}

func lineRange(doc *store.Document, start, end int) (Result, error) {
	return rangeResult(doc, UnitLine, start, end, ModeRange)
}

// rangeResult resolves an inclusive 1-based [start,end] range, clamped to
// the array end; end == infinite means "to the end".
func rangeResult(doc *store.Document, unit Unit, start, end int, mode Mode) (Result, error) {
	total, capped := countAndCapped(doc.Profile, unit)
	if end == infinite {
		end = total
	}
	quotes, err := sliceQuotes(doc, unit, start, end, capped)
	if err != nil {
		return Result{}, err
	}
	return Result{Mode: mode, Quotes: quotes}, nil
}
