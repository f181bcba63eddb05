// Package summarizer shortens a text to a few sentences.
package summarizer

import (
	"context"
	"regexp"
	"strings"

	"github.com/valpere/smarttranslate/internal/apperr"
)

// MaxSentences is the length of an extractive summary.
const MaxSentences = 3

type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text, lang string) (string, error)
}

// Extractive keeps the leading sentences of the text. It never calls out.
type Extractive struct{}

func (Extractive) Name() string {
	return "extractive"
}

func (Extractive) Summarize(_ context.Context, text, _ string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("no text provided")
	}

	sentences := Sentences(text)
	if len(sentences) > MaxSentences {
		sentences = sentences[:MaxSentences]
	}
	summary := strings.Join(sentences, " ")
	if summary == "" {
		return text, nil
	}
	return summary, nil
}

// sentenceEnd matches terminal punctuation (Latin or the Devanagari danda)
// and the whitespace after it.
var sentenceEnd = regexp.MustCompile(`[.!?।]\s+`)

// Sentences splits text after sentence-ending punctuation that is followed
// by whitespace. The punctuation stays with its sentence.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation; keep it, drop the whitespace.
		end := loc[0] + len(strings.TrimRight(text[loc[0]:loc[1]], " \t\r\n\f\v"))
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
