package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/valpere/smarttranslate/internal/apperr"
)

// DefaultGTXURL is the public, unauthenticated translate endpoint.
const DefaultGTXURL = "https://translate.googleapis.com/translate_a/single"

// GTXService talks to the "client=gtx" translate endpoint. The response is a
// nested array whose first element lists [translated, original, ...] tuples,
// one per sentence.
type GTXService struct {
	baseURL string
	client  *resty.Client
}

func NewGTXService(baseURL string, timeout time.Duration) *GTXService {
	if baseURL == "" {
		baseURL = DefaultGTXURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GTXService{
		baseURL: baseURL,
		client:  resty.New().SetTimeout(timeout),
	}
}

func (s *GTXService) Name() string {
	return "gtx"
}

func (s *GTXService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     sourceOrAuto(req.SourceLang),
			"tl":     req.TargetLang,
			"dt":     "t",
			"q":      req.Text,
		}).
		Get(s.baseURL)
	if err != nil {
		return nil, apperr.Upstream("gtx request failed", err)
	}
	if resp.IsError() {
		return nil, apperr.Upstream("gtx request failed", fmt.Errorf("status %s: %s", resp.Status(), truncate(resp.String(), 200)))
	}

	text, err := ParseGTX(resp.Body())
	if err != nil {
		return nil, apperr.Upstream("gtx response malformed", err)
	}

	result.TranslatedText = text
	return result, nil
}

// ParseGTX concatenates the first element of every sentence tuple, with no
// separator, to rebuild the translated text.
func ParseGTX(body []byte) (string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response")
	}

	segments, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected segment list %T", raw[0])
	}

	var sb strings.Builder
	for i, seg := range segments {
		tuple, ok := seg.([]any)
		if !ok || len(tuple) == 0 {
			return "", fmt.Errorf("unexpected segment %d: %T", i, seg)
		}
		// Transliteration rows carry null in the translated slot.
		if part, ok := tuple[0].(string); ok {
			sb.WriteString(part)
		}
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
