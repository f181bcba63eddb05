// Package extract pulls plain text out of uploaded documents and images.
package extract

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/valpere/smarttranslate/internal/apperr"
	"github.com/valpere/smarttranslate/internal/markdown"
)

// Extractor reads the text of the file at path. ext is the lower-case
// extension of the original file name, dot included.
type Extractor interface {
	Extract(ctx context.Context, path, ext string) (string, error)
}

// Registry picks an Extractor by file extension and falls back to a default
// for anything unregistered.
type Registry struct {
	byExt    map[string]Extractor
	fallback Extractor
}

func NewRegistry(fallback Extractor) *Registry {
	return &Registry{byExt: make(map[string]Extractor), fallback: fallback}
}

// Register maps one or more extensions (".pdf", "pdf" and ".PDF" are
// equivalent) to e.
func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[normalizeExt(ext)] = e
	}
}

func (r *Registry) Extract(ctx context.Context, path, ext string) (string, error) {
	ext = normalizeExt(ext)
	e, ok := r.byExt[ext]
	if !ok {
		e = r.fallback
	}
	if e == nil {
		return "", apperr.Validation("unsupported file type %q", ext)
	}
	return e.Extract(ctx, path, ext)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// NewDefault wires the standard extractors: plain text, Markdown and HTML
// are read in process, PDFs and everything else go to the Python scripts.
func NewDefault(py *Python) *Registry {
	r := NewRegistry(py.Script("ocr.py"))
	r.Register(Text{}, ".txt")
	r.Register(Markdown{}, ".md", ".markdown")
	r.Register(HTML{}, ".html", ".htm")
	r.Register(py.Script("pdf_reader.py"), ".pdf")
	return r
}

// Text returns the file contents as-is.
type Text struct{}

func (Text) Extract(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Extraction("failed to read file", err)
	}
	if !utf8.Valid(data) {
		return "", apperr.Validation("text file is not valid UTF-8")
	}
	return string(data), nil
}

type Markdown struct{}

func (Markdown) Extract(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Extraction("failed to read file", err)
	}
	text, err := markdown.ToPlainText(data)
	if err != nil {
		return "", apperr.Extraction("failed to render markdown", err)
	}
	return text, nil
}
