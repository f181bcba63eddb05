// Package postprocess tidies text returned by a chat model before it is shown
// to the user as a summary.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean strips reasoning blocks, a leading "Here is the summary:" style
// preamble and wrapping quotes, then flattens list formatting into a single
// paragraph.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removePreamble(text)
	text = removeQuoteWrapping(text)
	text = flatten(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so every tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opening tag with no close means the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// preamblePatterns are anchored at the start and need a colon, so a summary
// that merely begins with "Here" is left alone.
var preamblePatterns = []*regexp.Regexp{
	// "Here is / Here's [a|the] [short|brief|concise] summary [in Hindi]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: a| the)? (?:short |brief |concise )?(?:summary|translation)(?: in \p{L}+)?\s*:`),
	// "[The] [short] summary:" / "Summary:" / "TL;DR:"
	regexp.MustCompile(`(?i)^(?:the )?(?:short |brief |concise )?(?:summary|tl;dr)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] summary:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: a| the)? (?:short |brief |concise )?summary(?: in \p{L}+)?\s*:`),
}

func removePreamble(text string) string {
	for _, re := range preamblePatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// removeQuoteWrapping strips one matching pair of outer quotes:
// "…" '…' «…» and the curly variants.
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

var listMarkerRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// flatten joins non-empty lines with single spaces after dropping list
// markers.
func flatten(text string) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = listMarkerRe.ReplaceAllString(line, "")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
