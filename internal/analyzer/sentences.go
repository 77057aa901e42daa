package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

// abbreviations is the fixed suppression list from the sentence-boundary
// rules: a `.` immediately following one of these tokens (case-insensitive)
// is never a sentence boundary.
var abbreviations = map[string]bool{}

func init() {
	for _, a := range strings.Fields(
		"Mr Mrs Ms Dr Prof Rev Gen Gov Sgt Cpl Jr Sr Lt Col Maj Capt St Ave Blvd Rd Apt etc e.g i.e vs viz al approx dept est fig no vol ch sec ed Jan Feb Mar Apr Jun Jul Aug Sept Sep Oct Nov Dec",
	) {
		abbreviations[strings.ToLower(strings.TrimSuffix(a, "."))] = true
	}
}

// initialsRun matches a run of single-letter initials like "U.S.A." or "A.".
var initialsRun = regexp.MustCompile(`^[A-Za-z](\.[A-Za-z])*\.?$`)

const rightQuotes = ")\"'”’"

// currentToken returns the contiguous non-whitespace run of text ending at
// (and including) index end (exclusive upper bound, i.e. text[:end]).
func currentToken(text string, end int) string {
	start := end
	for start > 0 && !unicode.IsSpace(rune(text[start-1])) {
		start--
	}
	return text[start:end]
}

// isAbbreviation reports whether the token ending at the dot at position dot
// (text[dot] == '.') suppresses a sentence boundary.
func isAbbreviation(text string, dot int) bool {
	tok := currentToken(text, dot) // text up to (not including) the dot
	full := tok + "."
	bare := strings.ToLower(tok)
	if abbreviations[bare] {
		return true
	}
	if len(tok) == 1 && unicode.IsUpper(rune(tok[0])) {
		return true // single uppercase initial, e.g. "A."
	}
	if initialsRun.MatchString(full) && strings.Contains(tok, ".") {
		return true // multi-letter initials run, e.g. "U.S.A."
	}
	return false
}

// isDecimal reports whether the `.` at position i is a decimal point
// (digit immediately before and after).
func isDecimal(text string, i int) bool {
	if i == 0 || i+1 >= len(text) {
		return false
	}
	return unicode.IsDigit(rune(text[i-1])) && unicode.IsDigit(rune(text[i+1]))
}

// skipRightQuotes advances past any trailing quote/paren characters
// immediately following the terminal punctuation.
func skipRightQuotes(text string, i int) int {
	for i < len(text) {
		r, size := decodeRune(text[i:])
		if strings.ContainsRune(rightQuotes, r) {
			i += size
			continue
		}
		break
	}
	return i
}

func decodeRune(s string) (rune, int) {
	for i, r := range s {
		_ = i
		return r, len(string(r))
	}
	return 0, 0
}

func isWhitespaceOrEnd(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	return unicode.IsSpace(rune(text[i]))
}

// splitSentences segments text into sentences, suppressing false sentence
// boundaries at abbreviations, decimal points, and ellipses.
func splitSentences(text string, lines []Line) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []Sentence
	start := 0
	i := 0
	idx := 0
	n := len(text)

	flush := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			start = end
			return
		}
		// recompute start/end to the trimmed bounds within [start,end)
		lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
		trail := len(raw) - len(strings.TrimRight(raw, " \t\r\n"))
		s := start + lead
		e := end - trail
		sentences = append(sentences, Sentence{
			Index:      idx,
			Start:      s,
			End:        e,
			LineNumber: lineNumberFor(lines, s),
			WordCount:  countWords(trimmed),
			Text:       trimmed,
		})
		idx++
		start = end
	}

	for i < n {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}

		if c == '.' && isDecimal(text, i) {
			i++
			continue
		}

		// ellipsis: 3+ consecutive dots
		if c == '.' {
			j := i
			for j < n && text[j] == '.' {
				j++
			}
			if j-i >= 3 {
				after := skipRightQuotes(text, j)
				if after < n {
					k := after
					for k < n && unicode.IsSpace(rune(text[k])) {
						k++
					}
					if k < n && (unicode.IsUpper(rune(text[k])) || strings.ContainsRune("\"'“‘", rune(text[k]))) && k > after {
						flush(k)
						i = k
						continue
					}
				}
				i = j
				continue
			}
		}

		if c == '.' && isAbbreviation(text, i) {
			i++
			continue
		}

		end := skipRightQuotes(text, i+1)
		if isWhitespaceOrEnd(text, end) {
			flush(end)
			i = end
			continue
		}
		i++
	}

	if start < n {
		flush(n)
	}

	return sentences
}
