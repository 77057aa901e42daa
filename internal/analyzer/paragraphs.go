package analyzer

// splitParagraphs groups maximal runs of non-blank lines into paragraphs.
// Sentence ranges are back-wired afterward once sentences are known.
func splitParagraphs(text string, lines []Line) []Paragraph {
	var paragraphs []Paragraph
	idx := 0
	i := 0
	for i < len(lines) {
		if isBlank(text[lines[i].Start:lines[i].End]) {
			i++
			continue
		}
		lineStart := i
		for i < len(lines) && !isBlank(text[lines[i].Start:lines[i].End]) {
			i++
		}
		lineEnd := i - 1
		p := Paragraph{
			Index:     idx,
			Start:     lines[lineStart].Start,
			End:       lines[lineEnd].End,
			LineStart: lineStart,
			LineEnd:   lineEnd,
			WordCount: countWords(text[lines[lineStart].Start:lines[lineEnd].End]),
		}
		paragraphs = append(paragraphs, p)
		idx++
	}
	return paragraphs
}

// wireSentenceRanges sets each paragraph's SentenceStart/SentenceEnd to the
// inclusive range of sentence indices whose LineNumber falls within the
// paragraph's line range.
func wireSentenceRanges(paragraphs []Paragraph, sentences []Sentence) {
	for pi := range paragraphs {
		p := &paragraphs[pi]
		p.SentenceStart, p.SentenceEnd = -1, -1
		for _, s := range sentences {
			if s.LineNumber >= p.LineStart && s.LineNumber <= p.LineEnd {
				if p.SentenceStart == -1 {
					p.SentenceStart = s.Index
				}
				p.SentenceEnd = s.Index
			}
		}
		if p.SentenceStart == -1 {
			p.SentenceStart, p.SentenceEnd = 0, -1
		}
	}
}
