/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/auth"
	"github.com/valpere/smarttranslate/internal/cache"
	"github.com/valpere/smarttranslate/internal/config"
	"github.com/valpere/smarttranslate/internal/detector"
	"github.com/valpere/smarttranslate/internal/extract"
	"github.com/valpere/smarttranslate/internal/glossary"
	"github.com/valpere/smarttranslate/internal/history"
	"github.com/valpere/smarttranslate/internal/httpapi"
	"github.com/valpere/smarttranslate/internal/pipeline"
	"github.com/valpere/smarttranslate/internal/store"
	"github.com/valpere/smarttranslate/internal/store/mongostore"
	"github.com/valpere/smarttranslate/internal/summarizer"
	"github.com/valpere/smarttranslate/internal/translator"
	"github.com/valpere/smarttranslate/internal/tts"
	"github.com/valpere/smarttranslate/internal/validator"
)

// repository is what both persistence backends provide.
type repository interface {
	history.Repository
	auth.UserStore
	UserByID(ctx context.Context, id string) (*internal.User, error)
	Close() error
}

// runtime owns everything built from the configuration and closes it in
// reverse order.
type runtime struct {
	translator translator.Translator
	repo       repository
	sqlite     *store.Store
	det        *detector.Detector
	closers    []func() error
}

// langDetector is built lazily; loading the language models takes a while.
func (rt *runtime) langDetector() *detector.Detector {
	if rt.det == nil {
		rt.det = detector.New()
	}
	return rt.det
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

func newRuntime(ctx context.Context, c *config.Config) (*runtime, error) {
	rt := &runtime{}

	tr, err := buildTranslator(c.Translate)
	if err != nil {
		return nil, err
	}
	rt.translator = tr
	if closer, ok := tr.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, closer.Close)
	}

	switch c.Store.Backend {
	case "mongo":
		m, err := mongostore.New(ctx, c.Store.MongoURI, c.Store.MongoDB)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.repo = m
		rt.closers = append(rt.closers, m.Close)
	default:
		s, err := rt.openSQLite(c.Store.SQLitePath)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.repo = s
	}
	return rt, nil
}

// openSQLite opens the SQLite store once; the history backend and the
// persistent gloss cache share it.
func (rt *runtime) openSQLite(path string) (*store.Store, error) {
	if rt.sqlite != nil {
		return rt.sqlite, nil
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	rt.sqlite = s
	rt.closers = append(rt.closers, s.Close)
	return s, nil
}

func buildTranslator(c config.TranslateConfig) (translator.Translator, error) {
	switch c.Provider {
	case "gtx":
		return translator.NewGTXService(c.APIURL, c.Timeout), nil
	case "google":
		return translator.NewGoogleService(c.Credentials, c.ProjectID), nil
	case "mymemory":
		return translator.NewMyMemoryService("", c.MyMemoryEmail, c.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", c.Provider)
	}
}

func (rt *runtime) glossCache(ctx context.Context, c config.Config) (cache.GlossCache, error) {
	ttl := time.Duration(c.Glossary.RedisTTL) * time.Second

	switch c.Glossary.Cache {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.Glossary.RedisURL, TTL: ttl})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, rc.Close)
		return rc, nil
	case "sqlite":
		s, err := rt.openSQLite(c.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s.GlossCache(), nil
	default:
		return cache.NewMemoryCache(time.Duration(c.Glossary.MemoryTTL) * time.Second), nil
	}
}

func (rt *runtime) glossary(ctx context.Context, c config.Config) (*glossary.Service, error) {
	gc, err := rt.glossCache(ctx, c)
	if err != nil {
		return nil, err
	}
	return glossary.NewService(rt.translator, gc, glossary.Options{
		MaxTokens:   c.Glossary.MaxTokens,
		Concurrency: c.Glossary.Concurrency,
		Logger:      logger,
	}), nil
}

func (rt *runtime) pipeline(c config.Config, hist *history.Service) *pipeline.Pipeline {
	return pipeline.New(rt.translator, hist, pipeline.Config{
		Timeout: c.Translate.Timeout,
		Checker: validator.New(rt.langDetector()),
	}, logger)
}

func (rt *runtime) auth(c config.Config) *auth.Service {
	return auth.NewService(c.Auth.JWTSecret, c.Auth.TokenTTL, rt.repo)
}

func buildSummarizer(c config.SummarizerConfig) summarizer.Summarizer {
	if c.Provider == "openai" {
		return summarizer.NewOpenAI(summarizer.OpenAIConfig{
			APIKey:  c.OpenAIAPIKey,
			Model:   c.OpenAIModel,
			BaseURL: c.OpenAIBaseURL,
		})
	}
	return summarizer.Extractive{}
}

func buildExtractor(c config.ExtractConfig) *extract.Registry {
	return extract.NewDefault(&extract.Python{
		Interpreter: c.Python,
		ScriptsDir:  c.ScriptsDir,
		Timeout:     c.Timeout,
	})
}

// services assembles everything the HTTP API needs.
func (rt *runtime) services(ctx context.Context, c config.Config) (httpapi.Services, error) {
	gl, err := rt.glossary(ctx, c)
	if err != nil {
		return httpapi.Services{}, err
	}
	hist := history.NewService(rt.repo)

	return httpapi.Services{
		Pipeline:   rt.pipeline(c, hist),
		Glossary:   gl,
		History:    hist,
		Auth:       rt.auth(c),
		Summarizer: buildSummarizer(c.Summarizer),
		Speech: tts.NewService(tts.Config{
			URL:         c.TTS.APIURL,
			DefaultLang: c.TTS.DefaultLang,
			Timeout:     c.Translate.Timeout,
		}),
		Extractor: buildExtractor(c.Extract),
		Detector:  rt.langDetector(),
	}, nil
}
