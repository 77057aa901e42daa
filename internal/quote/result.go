package quote

// Stats mirrors Profile's six counters plus the two derived averages,
// returned verbatim by the stats mode.
type Stats struct {
	CharCount                int
	WordCount                int
	LineCount                int
	NonBlankLineCount        int
	SentenceCount            int
	ParagraphCount           int
	AvgWordsPerSentence      float64
	AvgSentencesPerParagraph float64
}

// SearchMatch is one hit from search or search_all.
type SearchMatch struct {
	Quote        string
	LineNumber   int
	CharPosition int
	Context      string
}

// Result is QuoteEngine's response. Only the fields relevant to the request
// Mode are populated; lookup.go decides which fields each mode fills.
type Result struct {
	Mode Mode

	Stats     *Stats
	StatName  string
	StatValue int

	Quote      string
	Quotes     []string
	LineNumber int

	TotalBytes int

	Match      *SearchMatch
	Matches    []SearchMatch
	TotalCount int

	SectionName string
	Sections    []string
}
