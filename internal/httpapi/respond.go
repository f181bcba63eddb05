package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/valpere/smarttranslate/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeError maps err onto its status code. Server-side failures are logged
// with their cause; the client only sees the public message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		s.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error": apperr.Public(err),
	})
}

// decodeJSON reads a JSON body into v. It writes the error response itself
// and reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		case errors.Is(err, io.EOF):
			badRequest(w, "request body is required")
		default:
			badRequest(w, "invalid JSON body")
		}
		return false
	}
	return true
}
