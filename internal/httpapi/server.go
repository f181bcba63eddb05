// Package httpapi exposes the translation services over HTTP/JSON.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/smarttranslate/internal/auth"
	"github.com/valpere/smarttranslate/internal/detector"
	"github.com/valpere/smarttranslate/internal/extract"
	"github.com/valpere/smarttranslate/internal/glossary"
	"github.com/valpere/smarttranslate/internal/history"
	"github.com/valpere/smarttranslate/internal/pipeline"
	"github.com/valpere/smarttranslate/internal/summarizer"
	"github.com/valpere/smarttranslate/internal/tts"
)

const (
	DefaultMaxUploadBytes = 20 << 20
	maxJSONBytes          = 5 << 20
)

// Services are the collaborators behind the routes. Detector may be nil, in
// which case "auto" source languages are passed through to the provider.
type Services struct {
	Pipeline   *pipeline.Pipeline
	Glossary   *glossary.Service
	History    *history.Service
	Auth       *auth.Service
	Summarizer summarizer.Summarizer
	Speech     *tts.Service
	Extractor  extract.Extractor
	Detector   *detector.Detector
}

type Options struct {
	MaxUploadBytes int64
	Logger         *zap.SugaredLogger
}

type Server struct {
	svc            Services
	maxUploadBytes int64
	log            *zap.SugaredLogger
}

// NewServer returns the full handler: routes wrapped in CORS and request
// logging.
func NewServer(svc Services, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	s := &Server{svc: svc, maxUploadBytes: opts.MaxUploadBytes, log: opts.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /translate", s.handleTranslate)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("POST /glossary", s.handleGlossary)
	mux.HandleFunc("POST /translateTokens", s.handleTranslateTokens)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /tts", s.handleTTS)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/history", s.requireAuth(s.handleListHistory))
	mux.Handle("POST /api/history", s.requireAuth(s.handleCreateHistory))
	mux.Handle("DELETE /api/history", s.requireAuth(s.handleClearHistory))
	mux.Handle("DELETE /api/history/{id}", s.requireAuth(s.handleDeleteHistory))

	return withCORS(s.withLogging(mux))
}

type ctxKey int

const userIDKey ctxKey = iota

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireAuth rejects requests without a valid bearer token before next
// runs, so storage is never reached unauthenticated.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.authenticate(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return "", err
	}
	return s.svc.Auth.VerifyToken(token)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.statusCode,
			"duration", time.Since(start),
		)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(statusCode int) {
	lrw.statusCode = statusCode
	lrw.ResponseWriter.WriteHeader(statusCode)
}
