package quote

import (
	"regexp"
	"strings"

	"github.com/jpl-au/kbmirror/internal/store"
)

var atxHeading = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

type heading struct {
	text  string
	start int // byte offset of the heading line itself, section content starts here
}

// headings scans the document's (possibly capped) Lines for Markdown ATX
// headings (`# Title` .. `###### Title`). Content beyond the retained line
// window is invisible to section/section_list, matching the cap contract.
func headings(doc *store.Document) []heading {
	var out []heading
	for _, l := range doc.Profile.Lines {
		line := strings.TrimSpace(doc.Content[l.Start:l.End])
		if m := atxHeading.FindStringSubmatch(line); m != nil {
			out = append(out, heading{text: strings.TrimSpace(m[1]), start: l.Start})
		}
	}
	return out
}
