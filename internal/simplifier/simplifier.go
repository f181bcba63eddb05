// Package simplifier implements "friendly mode": it rewrites English source
// text with plainer vocabulary and shorter lines before it is translated.
package simplifier

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/placeholder"
)

// MaxSentenceWords is the longest sentence kept on one line; longer ones are
// broken up at commas.
const MaxSentenceWords = 24

// Terms maps complex vocabulary onto simpler replacements. Keys are lower
// case; multi-word keys match any run of whitespace between their words.
var Terms = map[string]string{
	"utilize":        "use",
	"utilise":        "use",
	"commence":       "start",
	"terminate":      "end",
	"facilitate":     "help",
	"approximately":  "about",
	"assistance":     "help",
	"inquire":        "ask",
	"enrollment":     "join",
	"enrolment":      "join",
	"enroll":         "join",
	"enrol":          "join",
	"authentication": "login",
	"authorization":  "access",
	"permissions":    "access",
	"preferences":    "settings",
	"profile":        "account",
	"instructor":     "teacher",
	"instructors":    "teachers",
	"lectures":       "lessons",
	"modules":        "units",
	"assignments":    "homework",
	"quizzes":        "tests",
	"assessments":    "tests",
	"dashboard":      "home",
	"verification":   "check",
	"credentials":    "login details",
	"subsequently":   "later",
	"sufficient":     "enough",
	"additional":     "more",
	"purchase":       "buy",
	"require":        "need",
	"requires":       "needs",
	"demonstrate":    "show",
	"obtain":         "get",
	"regarding":      "about",
	"numerous":       "many",
	"individuals":    "people",
	"notify":         "tell",
	"modify":         "change",
	"submit":         "send",
	"navigate":       "go",

	"in order to":           "to",
	"prior to":              "before",
	"with regard to":        "about",
	"in the event that":     "if",
	"due to the fact that":  "because",
	"at this point in time": "now",
	"a large number of":     "many",
	"in addition":           "also",
}

var (
	reLineBreak  = regexp.MustCompile(`\r\n?`)
	reHorizontal = regexp.MustCompile(`[\t ]+`)
	reTrailing   = regexp.MustCompile(`[ \x{00A0}]+\n`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)

	// "1) ", "1. ", "• ", "* ", "- " at the start of a line
	reEnumeration = regexp.MustCompile(`^(?:\d+[.)]|[-*•●▪])\s+`)
	reInlineBullet = regexp.MustCompile(`(\S)[ \t]*[•●▪][ \t]*`)

	reTerms = buildTermsRegexp(Terms)
)

// buildTermsRegexp compiles one alternation with the longest keys first so a
// longer key always wins over a key that is its prefix.
func buildTermsRegexp(terms map[string]string) *regexp.Regexp {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	alts := make([]string, len(keys))
	for i, k := range keys {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(k), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// Apply simplifies text in friendly mode and returns it untouched otherwise.
func Apply(mode internal.Mode, text string) string {
	if mode != internal.ModeFriendly {
		return text
	}
	return Simplify(text)
}

// Simplify normalises whitespace, substitutes plainer vocabulary and breaks
// the text into one sentence per line, bullets as "- " lines.
func Simplify(text string) string {
	out := normalize(text)
	if out == "" {
		return out
	}

	out, spans := placeholder.Protect(out)
	out = substitute(out)
	out = resegment(out)

	return placeholder.Restore(out, spans)
}

func normalize(text string) string {
	text = reLineBreak.ReplaceAllString(text, "\n")
	text = reHorizontal.ReplaceAllString(text, " ")
	text = reTrailing.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func substitute(text string) string {
	return reTerms.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.ToLower(strings.Join(strings.Fields(match), " "))
		repl, ok := Terms[key]
		if !ok {
			return match
		}
		first, _ := utf8.DecodeRuneInString(match)
		if unicode.IsUpper(first) {
			return capitalize(repl)
		}
		return repl
	})
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func resegment(text string) string {
	text = reInlineBullet.ReplaceAllString(text, "${1}\n- ")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			out = append(out, "")
			continue
		}

		bullet := reEnumeration.MatchString(line)
		if bullet {
			line = strings.TrimSpace(reEnumeration.ReplaceAllString(line, ""))
			if line == "" {
				continue
			}
		}

		for i, sentence := range SplitSentences(line) {
			for j, part := range splitLong(sentence) {
				if j > 0 || (bullet && i == 0) {
					part = "- " + part
				}
				out = append(out, part)
			}
		}
	}

	joined := reBlankRuns.ReplaceAllString(strings.Join(out, "\n"), "\n\n")
	return strings.TrimSpace(joined)
}

// SplitSentences cuts line after '.', '!' or '?' when whitespace follows and
// the next word starts with an uppercase letter or a digit.
func SplitSentences(line string) []string {
	runes := []rune(line)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && (unicode.IsUpper(runes[j]) || unicode.IsDigit(runes[j])) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j
			i = j - 1
		}
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitLong breaks a sentence of more than MaxSentenceWords words at its
// commas. Sentences without commas are returned whole.
func splitLong(sentence string) []string {
	if len(strings.Fields(sentence)) <= MaxSentenceWords {
		return []string{sentence}
	}

	var parts []string
	for _, p := range strings.Split(sentence, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) <= 1 {
		return []string{sentence}
	}
	return parts
}
