// Package chunker cuts text into pieces small enough for length-limited
// endpoints such as the speech synthesis API, preferring natural breaks.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultMaxRunes is the longest text the speech endpoint accepts per call.
const DefaultMaxRunes = 200

// Chunk splits text into trimmed pieces of at most maxRunes code points.
// Within each window it cuts, in order of preference, at:
//  1. a line break
//  2. sentence-ending punctuation (. ! ? ।) followed by a space
//  3. a comma, semicolon or colon followed by a space
//  4. any whitespace
//  5. maxRunes, when the window has no boundary at all
//
// maxRunes <= 0 means DefaultMaxRunes. Blank text yields no chunks.
func Chunk(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}

	var chunks []string
	remaining := []rune(strings.TrimSpace(text))

	for len(remaining) > maxRunes {
		split := findSplit(remaining[:maxRunes+1], maxRunes)
		if piece := strings.TrimSpace(string(remaining[:split])); piece != "" {
			chunks = append(chunks, piece)
		}
		remaining = []rune(strings.TrimSpace(string(remaining[split:])))
	}

	if piece := strings.TrimSpace(string(remaining)); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// findSplit returns the rune index to cut window at. window holds one rune
// past the limit so a boundary sitting exactly at the limit is visible.
func findSplit(window []rune, limit int) int {
	if i := lastBoundary(window, limit, func(r, _ rune) bool { return r == '\n' }); i > 0 {
		return i
	}
	if i := lastBoundary(window, limit, func(r, next rune) bool {
		return isSentenceEnd(r) && unicode.IsSpace(next)
	}); i > 0 {
		return i + 1
	}
	if i := lastBoundary(window, limit, func(r, next rune) bool {
		return (r == ',' || r == ';' || r == ':') && unicode.IsSpace(next)
	}); i > 0 {
		return i + 1
	}
	if i := lastBoundary(window, limit, func(r, _ rune) bool { return unicode.IsSpace(r) }); i > 0 {
		return i
	}
	return limit
}

// lastBoundary scans backwards for the last rune, within the first limit
// runes, that satisfies match. next is the rune after it.
func lastBoundary(window []rune, limit int, match func(r, next rune) bool) int {
	for i := limit - 1; i > 0; i-- {
		var next rune
		if i+1 < len(window) {
			next = window[i+1]
		}
		if match(window[i], next) {
			return i
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '।'
}
