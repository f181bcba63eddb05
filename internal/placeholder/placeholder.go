// Package placeholder shields literal spans (URLs, e-mail addresses) from
// text rewriting by swapping them for numbered markers (⟦0⟧, ⟦1⟧, …) and
// putting them back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	// http(s) and www URLs up to the next whitespace; trailing sentence
	// punctuation is left outside the match.
	reURL = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"]*[^\s<>".,;:!?)\]]`)

	reEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)

	reMarker = regexp.MustCompile(`⟦(\d+)⟧`)
)

// Protect replaces URLs and e-mail addresses with markers in the order they
// appear and returns the captured originals.
func Protect(text string) (string, []string) {
	var spans []string

	replace := func(match string) string {
		id := fmt.Sprintf("⟦%d⟧", len(spans))
		spans = append(spans, match)
		return id
	}

	// URLs first: an address inside a mailto-less URL stays part of the URL.
	text = reURL.ReplaceAllStringFunc(text, replace)
	text = reEmail.ReplaceAllStringFunc(text, replace)

	return text, spans
}

// Restore substitutes markers in text with the spans captured by Protect.
// Unknown indices are left as they are.
func Restore(text string, spans []string) string {
	if len(spans) == 0 {
		return text
	}
	return reMarker.ReplaceAllStringFunc(text, func(match string) string {
		sub := reMarker.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(spans) {
			return match
		}
		return spans[idx]
	})
}
