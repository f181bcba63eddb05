// Package detector guesses the language of short texts.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Supported is the default candidate set: English plus the Indian languages
// the service targets and their close script neighbours.
var Supported = []lingua.Language{
	lingua.English,
	lingua.Hindi,
	lingua.Marathi,
	lingua.Bengali,
	lingua.Gujarati,
	lingua.Punjabi,
	lingua.Tamil,
	lingua.Telugu,
	lingua.Urdu,
}

type Detector struct {
	detector lingua.LanguageDetector
	codes    map[string]struct{}
}

// New builds a detector restricted to languages, or to Supported when none
// are given. Fewer candidates make detection faster and more accurate.
func New(languages ...lingua.Language) *Detector {
	if len(languages) == 0 {
		languages = Supported
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	codes := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		codes[strings.ToLower(l.IsoCode639_1().String())] = struct{}{}
	}
	return &Detector{detector: detector, codes: codes}
}

// Knows reports whether code is one of the detector's candidate languages.
func (d *Detector) Knows(code string) bool {
	_, ok := d.codes[strings.ToLower(code)]
	return ok
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Resolve returns lang unchanged unless it is empty or "auto", in which case
// the language of text is detected. fallback is used when detection fails.
func (d *Detector) Resolve(lang, text, fallback string) string {
	if lang != "" && !strings.EqualFold(lang, "auto") {
		return lang
	}
	if code, ok := d.DetectISO(text); ok {
		return code
	}
	return fallback
}
