package analyzer

import "strings"

// splitLines indexes every `\n`-delimited line in text. Start/End are byte
// offsets and exclude the newline itself, matching the half-open convention
// used everywhere except this one case.
func splitLines(text string) []Line {
	if text == "" {
		return nil
	}
	var lines []Line
	start := 0
	idx := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, Line{Index: idx, Start: start, End: i})
			idx++
			start = i + 1
		}
	}
	// trailing content without a final newline is still a line
	if start <= len(text) {
		lines = append(lines, Line{Index: idx, Start: start, End: len(text)})
	}
	return lines
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// lineNumberFor returns the index into lines containing byte offset pos.
func lineNumberFor(lines []Line, pos int) int {
	// lines are contiguous and sorted; this is a linear scan over the full
	// (not yet capped) line list.
	for _, l := range lines {
		if pos >= l.Start && pos <= l.End {
			return l.Index
		}
	}
	if len(lines) == 0 {
		return 0
	}
	return lines[len(lines)-1].Index
}
