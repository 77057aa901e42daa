package analyzer

import "time"

// nowFn is overridden in tests so AnalyzedAt is deterministic.
var nowFn = time.Now

// Analyze is the DocumentAnalyzer's single entry point: a pure function from
// text to a structural Profile. Identical input always yields an identical
// Profile (AnalyzedAt aside), which property-based tests rely on.
func Analyze(text string) Profile {
	lines := splitLines(text)
	sentences := splitSentences(text, lines)
	paragraphs := splitParagraphs(text, lines)
	wireSentenceRanges(paragraphs, sentences)

	nonBlank := 0
	for _, l := range lines {
		if !isBlank(text[l.Start:l.End]) {
			nonBlank++
		}
	}

	p := Profile{
		CharCount:         len(text),
		WordCount:         countWords(text),
		LineCount:         len(lines),
		NonBlankLineCount: nonBlank,
		SentenceCount:     len(sentences),
		ParagraphCount:    len(paragraphs),
		AnalyzedAt:        nowFn(),
		AnalyzerVersion:   AnalyzerVersion,
	}

	if len(sentences) > 0 {
		p.FirstSentence = sentences[0].Text
		p.LastSentence = sentences[len(sentences)-1].Text
		p.AvgWordsPerSentence = float64(p.WordCount) / float64(len(sentences))
	}
	if len(paragraphs) > 0 {
		p.AvgSentencesPerParagraph = float64(len(sentences)) / float64(len(paragraphs))
	}

	p.Sentences, p.SentencesCapped = capSlice(sentences, MaxSentences, CapKeep)
	p.Paragraphs, p.ParagraphsCapped = capSlice(paragraphs, MaxParagraphs, CapKeep)
	p.Lines, p.LinesCapped = capSlice(lines, MaxLines, CapKeep)

	return p
}
