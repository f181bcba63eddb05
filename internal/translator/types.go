package translator

import (
	"context"
	"time"
)

// AutoDetect asks the provider to detect the source language itself.
const AutoDetect = "auto"

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string        `json:"service_name"`
	TranslatedText string        `json:"translated_text"`
	Latency        time.Duration `json:"latency"`
}

// Translator is a pluggable translation provider. Implementations return
// apperr Upstream errors for provider failures and never retry.
type Translator interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error)
}

func sourceOrAuto(lang string) string {
	if lang == "" {
		return AutoDetect
	}
	return lang
}
