package translator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/valpere/smarttranslate/internal/apperr"
)

const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

type MyMemoryService struct {
	baseURL string
	email   string
	client  *resty.Client
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  any    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func NewMyMemoryService(baseURL, email string, timeout time.Duration) *MyMemoryService {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MyMemoryService{
		baseURL: baseURL,
		email:   email,
		client:  resty.New().SetTimeout(timeout),
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	// MyMemory has no auto-detection.
	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == AutoDetect {
		sourceLang = "en"
	}

	params := map[string]string{
		"q":        req.Text,
		"langpair": sourceLang + "|" + req.TargetLang,
	}
	if s.email != "" {
		params["de"] = s.email
	}

	var body myMemoryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get(s.baseURL)
	if err != nil {
		return nil, apperr.Upstream("mymemory request failed", err)
	}
	if resp.IsError() {
		return nil, apperr.Upstream("mymemory request failed", fmt.Errorf("status %s", resp.Status()))
	}

	// responseStatus arrives as a number or, on some errors, a string.
	if status := fmt.Sprint(body.ResponseStatus); status != "200" {
		return nil, apperr.Upstream("mymemory request failed", fmt.Errorf("API error: %s (%s)", body.ResponseDetails, status))
	}

	result.TranslatedText = body.ResponseData.TranslatedText
	return result, nil
}
