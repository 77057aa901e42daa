package analyzer_test

import (
	"strings"
	"testing"

	"github.com/jpl-au/kbmirror/internal/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Empty(t *testing.T) {
	p := analyzer.Analyze("")
	assert.Equal(t, 0, p.CharCount)
	assert.Equal(t, 0, p.WordCount)
	assert.Equal(t, 0, p.SentenceCount)
	assert.Equal(t, 0, p.ParagraphCount)
	assert.Empty(t, p.Sentences)
	assert.Empty(t, p.Paragraphs)
}

func TestAnalyze_NoTerminalPunctuation(t *testing.T) {
	p := analyzer.Analyze("just some words with no ending")
	require.Equal(t, 1, p.SentenceCount)
	assert.Equal(t, "just some words with no ending", p.Sentences[0].Text)
}

func TestAnalyze_AbbreviationNotBoundary(t *testing.T) {
	p := analyzer.Analyze("Dr. Smith arrived. He spoke.")
	require.Equal(t, 2, p.SentenceCount)
	assert.Equal(t, "Dr. Smith arrived.", p.Sentences[0].Text)
	assert.Equal(t, "He spoke.", p.Sentences[1].Text)
}

func TestAnalyze_DecimalNotBoundary(t *testing.T) {
	p := analyzer.Analyze("The value is 3.14 exactly.")
	require.Equal(t, 1, p.SentenceCount)
	assert.Equal(t, "The value is 3.14 exactly.", p.Sentences[0].Text)
}

func TestAnalyze_EllipsisContinues(t *testing.T) {
	p := analyzer.Analyze("Well... I'm not sure what to say.")
	require.Equal(t, 1, p.SentenceCount)
}

func TestAnalyze_EllipsisBoundary(t *testing.T) {
	p := analyzer.Analyze("Wait... Something happened.")
	require.Equal(t, 2, p.SentenceCount)
	assert.Equal(t, "Wait...", p.Sentences[0].Text)
}

func TestAnalyze_Paragraphs(t *testing.T) {
	text := "First paragraph. Still first.\n\nSecond paragraph starts here."
	p := analyzer.Analyze(text)
	require.Equal(t, 2, p.ParagraphCount)
	assert.Equal(t, 0, p.Paragraphs[0].SentenceStart)
	assert.Equal(t, 1, p.Paragraphs[0].SentenceEnd)
	assert.Equal(t, 2, p.Paragraphs[1].SentenceStart)
}

func TestAnalyze_SentenceOffsetsRoundtrip(t *testing.T) {
	text := "Neural Networks are cool. Something else follows."
	p := analyzer.Analyze(text)
	for _, s := range p.Sentences {
		assert.Equal(t, strings.TrimSpace(text[s.Start:s.End]), s.Text)
		assert.True(t, s.LineNumber < len(p.Lines) || len(p.Lines) == 0)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	text := "Mr. Jones went home. It was late. U.S.A. is a country."
	a := analyzer.Analyze(text)
	b := analyzer.Analyze(text)
	assert.Equal(t, a.Sentences, b.Sentences)
	assert.Equal(t, a.SentenceCount, b.SentenceCount)
}

func TestAnalyze_CapsLargeArrays(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < analyzer.MaxSentences+50; i++ {
		sb.WriteString("Word.")
		sb.WriteByte(' ')
	}
	p := analyzer.Analyze(sb.String())
	assert.True(t, p.SentencesCapped)
	assert.Len(t, p.Sentences, analyzer.CapKeep*2)
	assert.Greater(t, p.SentenceCount, len(p.Sentences))
}
