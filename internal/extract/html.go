package extract

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/valpere/smarttranslate/internal/apperr"
)

// HTML extracts the visible text of a page's body.
type HTML struct{}

var (
	blockTags = map[string]bool{
		"p": true, "div": true, "br": true, "li": true, "tr": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"section": true, "article": true, "header": true, "footer": true, "blockquote": true,
	}
	horizontalRuns = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankLines     = regexp.MustCompile(`\n\s*\n+`)
)

func (HTML) Extract(_ context.Context, path, _ string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.Extraction("failed to read file", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", apperr.Extraction("failed to parse html", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var sb strings.Builder
	for _, n := range doc.Find("body").Nodes {
		collectText(n, &sb)
	}
	return tidy(sb.String()), nil
}

// collectText writes the text under n, starting a new line at every block
// element.
func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if blockTags[n.Data] {
			sb.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteByte('\n')
	}
}

func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(horizontalRuns.ReplaceAllString(l, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
