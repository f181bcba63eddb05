// Package markdown renders Markdown documents to plain text for translation.
package markdown

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags,
	}
	renderer := html.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// ToPlainText renders md and keeps only its text. Entities are decoded,
// code blocks are dropped and block elements stay on separate lines.
func ToPlainText(md []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ToHTML(md)))
	if err != nil {
		return "", err
	}
	doc.Find("pre").Remove()

	lines := strings.Split(doc.Text(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text), nil
}
