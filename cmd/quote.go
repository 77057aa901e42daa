/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// quote.go implements getQuote: a natural-language or structured lookup
// against a document's structural profile.
package cmd

import (
	"fmt"

	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jpl-au/kbmirror/internal/log"
	"github.com/jpl-au/kbmirror/internal/quote"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <url> <request...>",
	Short: "Resolve a quote request against a mirrored document (getQuote)",
	Long: `Resolves requests like "stats", "the 3rd paragraph", "first 2 sentences",
"find \"exact phrase\"", or "section about installation" against the document's
precomputed structural profile, in constant time relative to document size.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		request := joinArgs(args[1:])

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.quotes.Lookup(cmd.Context(), url, request, nil)
		log.Event("cli:get_quote", "quote").Detail("url", url).Detail("request", request).Write(err)
		if err != nil {
			return PrintJSONError(err)
		}

		if JSON() {
			return PrintJSON(res)
		}
		renderQuoteResult(res)
		return nil
	},
}

func joinArgs(parts []string) string {
	s := parts[0]
	for _, p := range parts[1:] {
		s += " " + p
	}
	return s
}

// renderQuoteResult prints a human-facing rendering of a quote result.
// Markdown-bearing quotes are rendered with glamour; plain scalar results
// (stats, counts) fall back to a bare print.
func renderQuoteResult(res quote.Result) {
	text := displayText(res)
	if text == "" {
		fmt.Fprintln(Out(), "(no text)")
		return
	}
	if rendered, err := glamour.Render(text, "dark"); err == nil {
		fmt.Fprint(Out(), rendered)
		return
	}
	fmt.Fprintln(Out(), text)
}

// displayText picks the most relevant text field off a Result for
// rendering, since Result's shape varies by Mode.
func displayText(res quote.Result) string {
	switch {
	case res.Stats != nil:
		s := res.Stats
		return fmt.Sprintf("chars: %d  words: %d  lines: %d  sentences: %d  paragraphs: %d",
			s.CharCount, s.WordCount, s.LineCount, s.SentenceCount, s.ParagraphCount)
	case res.StatName != "":
		return res.StatName + ": " + strconv.Itoa(res.StatValue)
	case len(res.Quotes) > 0:
		return strings.Join(res.Quotes, "\n\n")
	case res.Quote != "":
		return res.Quote
	case res.Match != nil:
		return res.Match.Quote
	case len(res.Matches) > 0:
		var lines []string
		for _, m := range res.Matches {
			lines = append(lines, fmt.Sprintf("line %d: %s", m.LineNumber, m.Quote))
		}
		return strings.Join(lines, "\n")
	case len(res.Sections) > 0:
		return strings.Join(res.Sections, "\n")
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}
