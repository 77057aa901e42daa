package quote

import (
	"strconv"
	"strings"
)

// cardinals maps number words to their integer value, following a "parse a
// small human vocabulary with a lookup table, fall back to strconv for
// digits" idiom used throughout this package.
var cardinals = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"hundred": 100,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19, "twentieth": 20,
}

// parseNumber accepts digits ("3"), ordinal suffixes ("3rd", "21st"),
// cardinal words ("three", "one hundred"), and ordinal words ("third").
// Returns ok=false if tok is not a recognized number.
func parseNumber(tok string) (int, bool) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if tok == "" {
		return 0, false
	}

	if n, ok := ordinalWords[tok]; ok {
		return n, true
	}
	if n, ok := cardinals[tok]; ok {
		return n, true
	}

	// "one hundred", "two hundred" etc: two-word cardinal compounds.
	if fields := strings.Fields(tok); len(fields) == 2 {
		a, aok := cardinals[fields[0]]
		b, bok := cardinals[fields[1]]
		if aok && bok && b == 100 {
			return a * b, true
		}
	}

	// strip a trailing ordinal suffix: 1st, 2nd, 3rd, 21st, 4th...
	stripped := tok
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(tok, suffix) {
			stripped = strings.TrimSuffix(tok, suffix)
			break
		}
	}

	if n, err := strconv.Atoi(stripped); err == nil {
		return n, true
	}

	return 0, false
}
