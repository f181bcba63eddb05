// Package pipeline runs a translation request end to end: optional
// simplification, the provider call and the optional history save.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
	"github.com/valpere/smarttranslate/internal/simplifier"
	"github.com/valpere/smarttranslate/internal/translator"
)

const DefaultTimeout = 15 * time.Second

// HistorySaver records a finished translation for a user.
type HistorySaver interface {
	Create(ctx context.Context, userID, original, translated, lang string) (*internal.HistoryRecord, error)
}

// LanguageChecker inspects a finished translation, e.g. that it is in the
// requested language.
type LanguageChecker interface {
	Check(translated, targetLang string) error
}

type Config struct {
	Timeout time.Duration

	// Checker failures are logged; the translation is still returned.
	Checker LanguageChecker
}

type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	Mode       internal.Mode

	// UserID and Save together ask for the result to be kept in history.
	UserID string
	Save   bool
}

type Result struct {
	TranslatedText string
	ServiceName    string
	Latency        time.Duration

	// Saved is the history record written for this request, if any.
	Saved *internal.HistoryRecord
}

type Pipeline struct {
	translator translator.Translator
	history    HistorySaver
	config     Config
	log        *zap.SugaredLogger
}

// New builds a Pipeline. history may be nil, in which case nothing is saved.
func New(tr translator.Translator, history HistorySaver, config Config, log *zap.SugaredLogger) *Pipeline {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		translator: tr,
		history:    history,
		config:     config,
		log:        log,
	}
}

func (p *Pipeline) Translate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Validation("text is required")
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return nil, apperr.Validation("target language is required")
	}

	text := simplifier.Apply(req.Mode, req.Text)

	callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	res, err := p.translator.Translate(callCtx, translator.TranslateRequest{
		Text:       text,
		SourceLang: req.SourceLang,
		TargetLang: strings.TrimSpace(req.TargetLang),
	})
	if err != nil {
		return nil, upstream(err)
	}

	if p.config.Checker != nil {
		if err := p.config.Checker.Check(res.TranslatedText, req.TargetLang); err != nil {
			p.log.Warnw("suspicious translation", "service", res.ServiceName, "lang", req.TargetLang, "error", err)
		}
	}

	out := &Result{
		TranslatedText: res.TranslatedText,
		ServiceName:    res.ServiceName,
		Latency:        res.Latency,
	}

	if req.Save && req.UserID != "" && p.history != nil {
		// The translation is returned even when saving fails.
		rec, err := p.history.Create(ctx, req.UserID, req.Text, res.TranslatedText, req.TargetLang)
		if err != nil {
			p.log.Warnw("failed to save history", "user", req.UserID, "lang", req.TargetLang, "error", err)
		} else {
			out.Saved = rec
		}
	}

	return out, nil
}

func upstream(err error) error {
	if apperr.Is(err, apperr.KindUpstream) || apperr.Is(err, apperr.KindValidation) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream("translation timed out", err)
	}
	return apperr.Upstream("translation failed", err)
}
