package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
	"github.com/valpere/smarttranslate/internal/glossary"
	"github.com/valpere/smarttranslate/internal/pipeline"
	"github.com/valpere/smarttranslate/internal/translator"
)

type translateRequest struct {
	Text string `json:"text"`
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Mode string `json:"mode"`
	Save bool   `json:"save,omitempty"`
}

type translateResponse struct {
	Translated string `json:"translated"`
	HistoryID  string `json:"historyId,omitempty"`
	// Saved is reported only when the request asked for save.
	Saved *bool `json:"saved,omitempty"`
}

type summarizeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
}

type glossaryRequest struct {
	Tokens []string `json:"tokens"`
	Lang   string   `json:"lang"`
}

type glossaryResponse struct {
	Map   map[string]string `json:"map"`
	Count int               `json:"count"`
}

type translateTokensRequest struct {
	Tokens []string `json:"tokens"`
	From   string   `json:"from"`
	To     string   `json:"to"`
}

type ttsRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type credentialsRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *internal.User `json:"user"`
	Token string         `json:"token"`
}

type historyCreateRequest struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Lang       string `json:"lang"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTranslate works without a token. Saving to history additionally
// needs save=true and a valid token; a missing or bad token skips the save
// and the response reports saved=false.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var userID string
	if req.Save {
		if id, err := s.authenticate(r); err == nil {
			userID = id
		} else {
			s.log.Debugw("translate save skipped", "error", err)
		}
	}

	res, err := s.svc.Pipeline.Translate(r.Context(), pipeline.Request{
		Text:       req.Text,
		SourceLang: req.From,
		TargetLang: req.To,
		Mode:       internal.ParseMode(req.Mode),
		UserID:     userID,
		Save:       req.Save,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := translateResponse{Translated: res.TranslatedText}
	if res.Saved != nil {
		resp.HistoryID = res.Saved.ID
	}
	if req.Save {
		saved := res.Saved != nil
		resp.Saved = &saved
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "No text provided")
		return
	}

	summary, err := s.svc.Summarizer.Summarize(r.Context(), req.Text, req.Lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	var req glossaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Tokens == nil || strings.TrimSpace(req.Lang) == "" {
		badRequest(w, "tokens and lang required")
		return
	}

	m, err := s.svc.Glossary.Gloss(r.Context(), req.Tokens, req.Lang, glossary.DefaultTargetLang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, glossaryResponse{Map: m, Count: len(m)})
}

func (s *Server) handleTranslateTokens(w http.ResponseWriter, r *http.Request) {
	var req translateTokensRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Tokens == nil {
		badRequest(w, "tokens required")
		return
	}

	from := req.From
	if s.svc.Detector != nil {
		from = s.svc.Detector.Resolve(from, strings.Join(req.Tokens, " "), translator.AutoDetect)
	}

	m, err := s.svc.Glossary.Gloss(r.Context(), req.Tokens, from, req.To)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"map": m})
}

// handleUpload stores the multipart "file" in a temp file for the
// extractor and removes it on every path out.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
			return
		}
		badRequest(w, "No file uploaded")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "smarttranslate-upload-*"+ext)
	if err != nil {
		s.writeError(w, r, apperr.Internal("failed to store upload", err))
		return
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		s.writeError(w, r, apperr.Internal("failed to store upload", err))
		return
	}

	text, err := s.svc.Extractor.Extract(r.Context(), tmp.Name(), ext)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	audio, err := s.svc.Speech.Synthesize(r.Context(), req.Text, req.Lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `inline; filename="tts.mp3"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, token, err := s.svc.Auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: u, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, token, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: u, Token: token})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.History.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateHistory(w http.ResponseWriter, r *http.Request) {
	var req historyCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.History.Create(r.Context(), userIDFrom(r.Context()), req.Original, req.Translated, req.Lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.History.DeleteAll(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.History.DeleteOne(r.Context(), userIDFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}
