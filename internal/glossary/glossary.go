// Package glossary produces per-token glosses for words the reader hovers
// over. Lookups go through an injected cache and are batched into a single
// upstream call where possible.
package glossary

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/valpere/smarttranslate/internal/apperr"
	"github.com/valpere/smarttranslate/internal/cache"
	"github.com/valpere/smarttranslate/internal/translator"
)

const (
	DefaultMaxTokens   = 300
	DefaultConcurrency = 8
	DefaultTargetLang  = "en"
)

type Options struct {
	MaxTokens   int
	Concurrency int
	Logger      *zap.SugaredLogger
}

type Service struct {
	translator  translator.Translator
	cache       cache.GlossCache
	maxTokens   int
	concurrency int
	log         *zap.SugaredLogger
}

func NewService(tr translator.Translator, c cache.GlossCache, opts Options) *Service {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if c == nil {
		c = cache.NewMemoryCache(0)
	}
	return &Service{
		translator:  tr,
		cache:       c,
		maxTokens:   opts.MaxTokens,
		concurrency: opts.Concurrency,
		log:         opts.Logger,
	}
}

// Gloss returns a gloss for every token it could translate. Tokens that are
// empty or made only of digits are never looked up; failed per-token lookups
// are left out of the result. An empty targetLang means English.
func (s *Service) Gloss(ctx context.Context, tokens []string, sourceLang, targetLang string) (map[string]string, error) {
	if targetLang == "" {
		targetLang = DefaultTargetLang
	}
	if sourceLang == "" {
		sourceLang = translator.AutoDetect
	}

	working := s.prepare(tokens)
	result := make(map[string]string, len(working))

	var misses []string
	for _, tok := range working {
		if gloss, ok := s.cache.Get(ctx, cache.Key(sourceLang, targetLang, tok)); ok {
			result[tok] = gloss
			continue
		}
		misses = append(misses, tok)
	}
	if len(misses) == 0 {
		return result, nil
	}

	resp, err := s.translator.Translate(ctx, translator.TranslateRequest{
		Text:       strings.Join(misses, "\n"),
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUpstream {
			return nil, err
		}
		return nil, apperr.Upstream("gloss lookup failed", err)
	}

	segments := strings.Split(strings.TrimRight(resp.TranslatedText, "\n"), "\n")
	if len(segments) == len(misses) {
		for i, tok := range misses {
			s.store(ctx, result, sourceLang, targetLang, tok, segments[i])
		}
		return result, nil
	}

	s.log.Debugw("bulk gloss misaligned, falling back to per-token lookups",
		"requested", len(misses), "returned", len(segments))

	return result, s.glossEach(ctx, result, misses, sourceLang, targetLang)
}

// glossEach looks tokens up one by one. Individual failures are logged and
// the token is omitted.
func (s *Service) glossEach(ctx context.Context, result map[string]string, tokens []string, sourceLang, targetLang string) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, tok := range tokens {
		g.Go(func() error {
			resp, err := s.translator.Translate(gctx, translator.TranslateRequest{
				Text:       tok,
				SourceLang: sourceLang,
				TargetLang: targetLang,
			})
			if err != nil {
				s.log.Debugw("token gloss failed", "token", tok, "error", err)
				return nil
			}
			mu.Lock()
			s.store(gctx, result, sourceLang, targetLang, tok, resp.TranslatedText)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) store(ctx context.Context, result map[string]string, sourceLang, targetLang, tok, gloss string) {
	gloss = strings.TrimSpace(gloss)
	if gloss == "" {
		return
	}
	result[tok] = gloss
	if err := s.cache.Set(ctx, cache.Key(sourceLang, targetLang, tok), gloss); err != nil {
		s.log.Warnw("gloss cache write failed", "token", tok, "error", err)
	}
}

// prepare trims, filters and de-duplicates tokens, keeping first-occurrence
// order, and caps the working set.
func (s *Service) prepare(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, min(len(tokens), s.maxTokens))

	for _, tok := range tokens {
		tok = norm.NFC.String(strings.TrimSpace(tok))
		if tok == "" || isDigits(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == s.maxTokens {
			break
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Tokenize splits text on whitespace and strips leading and trailing
// characters that are neither letters, marks nor digits. Combining marks are
// kept so Indic words survive intact.
func Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(text) {
		tok := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r)
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
