// Package analyzer implements the DocumentAnalyzer: a pure function mapping
// document text to a structural Profile (sentence/paragraph/line byte-offset
// indices) that the QuoteEngine later uses for O(1) quote lookups.
//
// Line scanning follows a bufio.Scanner-style split; the overall transform
// is a pure function over a string with no I/O, matching the side-effect-
// free style used elsewhere in this codebase.
package analyzer

import "time"

// AnalyzerVersion is bumped whenever the segmentation rules change in a way
// that would alter stored profiles for identical input.
const AnalyzerVersion = "1"

// Cap limits. Arrays larger than the max retain only the first and last
// CapKeep entries; QuoteEngine must check the corresponding Capped flag
// before indexing into the dropped middle.
const (
	MaxSentences  = 1000
	MaxParagraphs = 500
	MaxLines      = 2000
	CapKeep       = 100
)

// Sentence is one detected sentence, with byte offsets into the analyzed text.
type Sentence struct {
	Index      int    `json:"index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	LineNumber int    `json:"lineNumber"` // index into Profile.Lines
	WordCount  int    `json:"wordCount"`
	Text       string `json:"text"`
}

// Paragraph is a maximal run of non-blank lines, with the sentence and line
// ranges it spans.
type Paragraph struct {
	Index         int `json:"index"`
	Start         int `json:"start"`
	End           int `json:"end"`
	LineStart     int `json:"lineStart"`
	LineEnd       int `json:"lineEnd"`
	SentenceStart int `json:"sentenceStart"`
	SentenceEnd   int `json:"sentenceEnd"`
	WordCount     int `json:"wordCount"`
}

// Line is one `\n`-delimited line; Start/End exclude the newline byte.
type Line struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Profile is the precomputed structural index stored alongside a Document.
type Profile struct {
	CharCount         int `json:"charCount"`
	WordCount         int `json:"wordCount"`
	LineCount         int `json:"lineCount"`
	NonBlankLineCount int `json:"nonBlankLineCount"`
	SentenceCount     int `json:"sentenceCount"`
	ParagraphCount    int `json:"paragraphCount"`

	Sentences  []Sentence  `json:"sentences"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Lines      []Line      `json:"lines"`

	// Capped is true when the corresponding array above was truncated to
	// first+last CapKeep entries because the true count exceeded the max.
	SentencesCapped  bool `json:"sentencesCapped"`
	ParagraphsCapped bool `json:"paragraphsCapped"`
	LinesCapped      bool `json:"linesCapped"`

	FirstSentence string `json:"firstSentence"`
	LastSentence  string `json:"lastSentence"`

	AvgWordsPerSentence     float64 `json:"avgWordsPerSentence"`
	AvgSentencesPerParagraph float64 `json:"avgSentencesPerParagraph"`

	AnalyzedAt      time.Time `json:"analyzedAt"`
	AnalyzerVersion string    `json:"analyzerVersion"`
}

// capSlice truncates items to first+last keep entries, setting the capped flag.
func capSlice[T any](items []T, max, keep int) ([]T, bool) {
	if len(items) <= max {
		return items, false
	}
	out := make([]T, 0, keep*2)
	out = append(out, items[:keep]...)
	out = append(out, items[len(items)-keep:]...)
	return out, true
}
