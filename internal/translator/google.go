package translator

import (
	"context"
	"fmt"
	"sync"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/smarttranslate/internal/apperr"
)

// GoogleService uses the Cloud Translation v2 API. The client is created
// lazily on first use and shared afterwards.
type GoogleService struct {
	credentials string
	project     string
	extra       []option.ClientOption

	once      sync.Once
	client    *translate.Client
	clientErr error
}

// NewGoogleService uses credentialsFile, or application default credentials
// when it is empty. projectID, if set, is billed as the quota project. opts
// are passed to the client after those two.
func NewGoogleService(credentialsFile, projectID string, opts ...option.ClientOption) *GoogleService {
	return &GoogleService{credentials: credentialsFile, project: projectID, extra: opts}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) getClient(ctx context.Context) (*translate.Client, error) {
	s.once.Do(func() {
		var opts []option.ClientOption
		if s.credentials != "" {
			opts = append(opts, option.WithCredentialsFile(s.credentials))
		}
		if s.project != "" {
			opts = append(opts, option.WithQuotaProject(s.project))
		}
		opts = append(opts, s.extra...)
		s.client, s.clientErr = translate.NewClient(context.WithoutCancel(ctx), opts...)
	})
	return s.client, s.clientErr
}

func (s *GoogleService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return nil, apperr.Validation("invalid target language %q", req.TargetLang)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, apperr.Upstream("failed to create google client", err)
	}

	// Plain text keeps newlines and leaves quotes unescaped; the API
	// defaults to HTML.
	opts := &translate.Options{Format: translate.Text}
	if src := sourceOrAuto(req.SourceLang); src != AutoDetect {
		sourceLangTag, err := language.Parse(src)
		if err != nil {
			return nil, apperr.Validation("invalid source language %q", src)
		}
		opts.Source = sourceLangTag
	}

	translations, err := client.Translate(ctx, []string{req.Text}, targetLangTag, opts)
	if err != nil {
		return nil, apperr.Upstream("google translation failed", err)
	}
	if len(translations) == 0 {
		return nil, apperr.Upstream("google translation failed", fmt.Errorf("no translation returned"))
	}

	result.TranslatedText = translations[0].Text
	return result, nil
}

// Close releases the underlying client, if one was created.
func (s *GoogleService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
