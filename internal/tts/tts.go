// Package tts turns text into MP3 speech using the translate speech
// endpoint.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/valpere/smarttranslate/internal/apperr"
	"github.com/valpere/smarttranslate/internal/chunker"
)

const (
	DefaultURL  = "https://translate.google.com/translate_tts"
	DefaultLang = "ta"
)

type Config struct {
	URL         string
	DefaultLang string
	Timeout     time.Duration
}

type Service struct {
	url         string
	defaultLang string
	client      *resty.Client
}

func NewService(cfg Config) *Service {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = DefaultLang
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Service{
		url:         cfg.URL,
		defaultLang: cfg.DefaultLang,
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", "Mozilla/5.0"),
	}
}

// Synthesize returns MP3 audio for text. The endpoint limits the length of
// each request, so text is fetched piece by piece and the MP3 frames are
// concatenated in order.
func (s *Service) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("no text provided")
	}
	if lang = strings.TrimSpace(lang); lang == "" {
		lang = s.defaultLang
	}

	chunks := chunker.Chunk(text, chunker.DefaultMaxRunes)

	var audio bytes.Buffer
	for i, chunk := range chunks {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ie":      "UTF-8",
				"client":  "tw-ob",
				"tl":      lang,
				"q":       chunk,
				"total":   strconv.Itoa(len(chunks)),
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(utf8.RuneCountInString(chunk)),
			}).
			Get(s.url)
		if err != nil {
			return nil, apperr.Upstream("speech request failed", err)
		}
		if resp.IsError() {
			return nil, apperr.Upstream("speech request failed", fmt.Errorf("chunk %d: status %s", i, resp.Status()))
		}
		audio.Write(resp.Body())
	}
	return audio.Bytes(), nil
}
