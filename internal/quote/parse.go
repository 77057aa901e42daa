// Package quote implements QuoteEngine: parse a natural-language quote
// request into one mode from a closed set, then resolve it against a
// Document's precomputed Profile in O(1).
package quote

import (
	"regexp"
	"strings"
)

// numTok matches either digits, an ordinal-suffixed number, or a bare word
// (resolved later by parseNumber against cardinals/ordinalWords).
const numTok = `([a-z]+(?:\s+hundred)?|\d+(?:st|nd|rd|th)?)`

var (
	reCompoundAnd = regexp.MustCompile(`\s+and\s+`)

	reSectionList = regexp.MustCompile(`^(list sections|what sections|section list|table of contents|sections?\s+overview)$`)
	reSection     = regexp.MustCompile(`^section\s+(?:on|about|called|named)?\s*"?([a-z0-9 _\-]+?)"?$`)

	reImplicitStart = regexp.MustCompile(`^(the )?(start|beginning|intro|introduction)( of the document)?$|^how does (it|the document) (start|begin)\??$`)
	reImplicitEnd   = regexp.MustCompile(`^(the )?(end|ending|conclusion)( of the document)?$|^how does (it|the document) end\??$`)

	reSearchAllWithCount = regexp.MustCompile(`^(?:count|how many times?)\s+(?:does\s+)?"?(.+?)"?\s+(?:appears?|occurs?|occur)$`)
	reSearchAll          = regexp.MustCompile(`^(?:find all|search all|every occurrence of|all occurrences of|all mentions of)\s+"?(.+?)"?$`)
	reSearch             = regexp.MustCompile(`^(?:find|search(?: for)?|look for|where is|locate)\s+"?(.+?)"?$`)

	reStatSpecific = regexp.MustCompile(`^how many (sentences|paragraphs|lines|words)( are there)?\??$|^(sentence|paragraph|line|word) count$`)
	reStats        = regexp.MustCompile(`^(stats|statistics|summary|overview|document stats)$`)

	reFirstParagraph = regexp.MustCompile(`^(the )?first paragraph$`)
	reLastParagraph  = regexp.MustCompile(`^(the )?last paragraph$`)

	reParagraphRange = regexp.MustCompile(`^paragraphs? ` + numTok + ` ?(?:to|through|-) ?` + numTok + `$`)
	reSentenceRange  = regexp.MustCompile(`^sentences? ` + numTok + ` ?(?:to|through|-) ?` + numTok + `$`)
	reLineRange      = regexp.MustCompile(`^lines? ` + numTok + ` ?(?:to|through|-) ?(` + numTok + `|end)?$`)

	reFirstN = regexp.MustCompile(`^(the )?first ` + numTok + ` (sentences|paragraphs|lines|words)$`)
	reLastN  = regexp.MustCompile(`^(the )?last ` + numTok + ` (sentences|paragraphs|lines|words)$`)

	reNth       = regexp.MustCompile(`^(the )?` + numTok + ` (sentence|paragraph|line|word)$`)
	reParagraph = regexp.MustCompile(`^paragraph ` + numTok + `$`)
	reLine      = regexp.MustCompile(`^line ` + numTok + `$`)

	reFull = regexp.MustCompile(`^(the )?(full|entire|whole) (text|document|content|thing)$`)
)

// ParseRequest resolves raw natural-language text to a Request, trying each
// mode in order against an ordered regex cascade (first match wins).
// structuredArgs, when non-nil, is used as-is and bypasses parsing entirely.
func ParseRequest(rawText string, structuredArgs *Request) (Request, bool) {
	if structuredArgs != nil {
		return *structuredArgs, true
	}

	text := strings.ToLower(strings.TrimSpace(rawText))
	text = strings.TrimSuffix(text, ".")

	if parts := splitCompound(text); len(parts) > 1 {
		var sub []Request
		for _, p := range parts {
			if r, ok := parseSingle(p); ok && r.Mode == ModeNth {
				sub = append(sub, r)
			}
		}
		if len(sub) == len(parts) {
			return Request{Mode: ModeCompound, Sub: sub}, true
		}
	}

	return parseSingle(text)
}

// splitCompound splits on every " and " match. ParseRequest keeps the split
// only when every resulting clause parses as an nth request, so a bare "and"
// inside a search needle does not produce a compound request.
func splitCompound(text string) []string {
	if !reCompoundAnd.MatchString(text) {
		return nil
	}
	return reCompoundAnd.Split(text, -1)
}

func parseSingle(text string) (Request, bool) {
	switch {
	case reSectionList.MatchString(text):
		return Request{Mode: ModeSectionList}, true

	case reSection.MatchString(text):
		m := reSection.FindStringSubmatch(text)
		return Request{Mode: ModeSection, SectionName: strings.TrimSpace(m[1])}, true

	case reImplicitStart.MatchString(text):
		return Request{Mode: ModeImplicitStart}, true

	case reImplicitEnd.MatchString(text):
		return Request{Mode: ModeImplicitEnd}, true

	case reSearchAllWithCount.MatchString(text):
		m := reSearchAllWithCount.FindStringSubmatch(text)
		return Request{Mode: ModeSearchAll, Needle: m[1], CountOnly: true}, true

	case reSearchAll.MatchString(text):
		m := reSearchAll.FindStringSubmatch(text)
		return Request{Mode: ModeSearchAll, Needle: m[1]}, true

	case reSearch.MatchString(text):
		m := reSearch.FindStringSubmatch(text)
		return Request{Mode: ModeSearch, Needle: m[1]}, true

	case reStatSpecific.MatchString(text):
		m := reStatSpecific.FindStringSubmatch(text)
		unit := firstNonEmpty(m[1], m[3])
		return Request{Mode: ModeStatSpecific, Stat: unit}, true

	case reStats.MatchString(text):
		return Request{Mode: ModeStats}, true

	case reFirstParagraph.MatchString(text):
		return Request{Mode: ModeFirstParagraph, Unit: UnitParagraph}, true

	case reLastParagraph.MatchString(text):
		return Request{Mode: ModeLastParagraph, Unit: UnitParagraph}, true

	case reParagraphRange.MatchString(text):
		m := reParagraphRange.FindStringSubmatch(text)
		start, _ := parseNumber(m[1])
		end, _ := parseNumber(m[2])
		return Request{Mode: ModeParagraphRange, Unit: UnitParagraph, Start: start, End: end}, true

	case reSentenceRange.MatchString(text):
		m := reSentenceRange.FindStringSubmatch(text)
		start, _ := parseNumber(m[1])
		end, _ := parseNumber(m[2])
		return Request{Mode: ModeSentenceRange, Unit: UnitSentence, Start: start, End: end}, true

	case reLineRange.MatchString(text):
		m := reLineRange.FindStringSubmatch(text)
		start, _ := parseNumber(m[1])
		end := infinite
		if m[2] != "" && m[2] != "end" {
			end, _ = parseNumber(m[2])
		}
		return Request{Mode: ModeRange, Unit: UnitLine, Start: start, End: end}, true

	case reFirstN.MatchString(text):
		m := reFirstN.FindStringSubmatch(text)
		n, _ := parseNumber(m[2])
		unit, _ := parseUnit(m[3])
		return Request{Mode: ModeFirstN, Unit: unit, Count: n}, true

	case reLastN.MatchString(text):
		m := reLastN.FindStringSubmatch(text)
		n, _ := parseNumber(m[2])
		unit, _ := parseUnit(m[3])
		return Request{Mode: ModeLastN, Unit: unit, Count: n}, true

	case reNth.MatchString(text):
		m := reNth.FindStringSubmatch(text)
		n, _ := parseNumber(m[2])
		unit, _ := parseUnit(m[3])
		return Request{Mode: ModeNth, Unit: unit, Count: n}, true

	case reParagraph.MatchString(text):
		m := reParagraph.FindStringSubmatch(text)
		n, _ := parseNumber(m[1])
		return Request{Mode: ModeParagraph, Unit: UnitParagraph, Count: n}, true

	case reLine.MatchString(text):
		m := reLine.FindStringSubmatch(text)
		n, _ := parseNumber(m[1])
		return Request{Mode: ModeLine, Unit: UnitLine, LineNumber: n}, true

	case reFull.MatchString(text):
		return Request{Mode: ModeFull}, true
	}

	return Request{}, false
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
