package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/smarttranslate/internal/auth"
	"github.com/valpere/smarttranslate/internal/extract"
	"github.com/valpere/smarttranslate/internal/glossary"
	"github.com/valpere/smarttranslate/internal/history"
	"github.com/valpere/smarttranslate/internal/pipeline"
	"github.com/valpere/smarttranslate/internal/store"
	"github.com/valpere/smarttranslate/internal/summarizer"
	"github.com/valpere/smarttranslate/internal/translator"
	"github.com/valpere/smarttranslate/internal/tts"
)

type testEnv struct {
	handler http.Handler
	fake    *translator.Fake
	auth    *auth.Service
}

func newTestEnv(t *testing.T, fake *translator.Fake) *testEnv {
	t.Helper()

	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	speech := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-" + r.URL.Query().Get("tl")))
	}))
	t.Cleanup(speech.Close)

	hist := history.NewService(db)
	authSvc := auth.NewService("test-secret", time.Hour, db)

	handler := NewServer(Services{
		Pipeline:   pipeline.New(fake, hist, pipeline.Config{}, nil),
		Glossary:   glossary.NewService(fake, nil, glossary.Options{}),
		History:    hist,
		Auth:       authSvc,
		Summarizer: summarizer.Extractive{},
		Speech:     tts.NewService(tts.Config{URL: speech.URL}),
		Extractor:  extract.NewRegistry(extract.Text{}),
	}, Options{MaxUploadBytes: 1 << 10})

	return &testEnv{handler: handler, fake: fake, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})

	rec := env.do(t, http.MethodPost, "/translate", "", map[string]any{
		"text": "We will commence the enrollment process.",
		"to":   "hi",
		"mode": "friendly",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp translateResponse
	decodeBody(t, rec, &resp)
	if resp.Translated != "[hi] We will start the join process." {
		t.Errorf("unexpected translation %q", resp.Translated)
	}
	if resp.HistoryID != "" {
		t.Errorf("nothing should be saved, got history id %q", resp.HistoryID)
	}
	if resp.Saved != nil {
		t.Errorf("saved must be omitted when save was not requested, got %v", *resp.Saved)
	}
}

func TestTranslate_Validation(t *testing.T) {
	fake := &translator.Fake{}
	env := newTestEnv(t, fake)

	tests := []struct {
		name string
		body any
	}{
		{"empty text", map[string]any{"text": "  ", "to": "hi"}},
		{"missing target", map[string]any{"text": "hello"}},
		{"invalid json", "{"},
		{"empty body", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/translate", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
		})
	}

	if n := len(fake.Calls()); n != 0 {
		t.Errorf("rejected requests must not reach the provider, got %d calls", n)
	}
}

func TestTranslate_UpstreamErrorIsGeneric(t *testing.T) {
	fake := &translator.Fake{Fn: func(translator.TranslateRequest) (string, error) {
		return "", errors.New("secret provider detail")
	}}
	env := newTestEnv(t, fake)

	rec := env.do(t, http.MethodPost, "/translate", "", map[string]any{"text": "hello", "to": "ta"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret provider detail") {
		t.Errorf("provider detail leaked: %s", rec.Body)
	}
}

func TestTranslate_SaveToHistory(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})
	token := env.register(t, "asha@example.com")

	rec := env.do(t, http.MethodPost, "/translate", token, map[string]any{
		"text": "hello", "to": "ta", "save": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp translateResponse
	decodeBody(t, rec, &resp)
	if resp.HistoryID == "" {
		t.Fatal("expected a history id")
	}
	if resp.Saved == nil || !*resp.Saved {
		t.Errorf("expected saved=true, got %v", resp.Saved)
	}

	// Without a valid token the translation still succeeds but is not kept.
	for _, tok := range []string{"bogus", ""} {
		rec = env.do(t, http.MethodPost, "/translate", tok, map[string]any{
			"text": "bye", "to": "ta", "save": true,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("token %q: expected 200, got %d", tok, rec.Code)
		}
		var skipped translateResponse
		decodeBody(t, rec, &skipped)
		if skipped.Saved == nil || *skipped.Saved {
			t.Errorf("token %q: expected saved=false, got %v", tok, skipped.Saved)
		}
		if skipped.HistoryID != "" {
			t.Errorf("token %q: unexpected history id %q", tok, skipped.HistoryID)
		}
	}

	rec = env.do(t, http.MethodGet, "/api/history", token, nil)
	var list struct {
		Items []map[string]any `json:"items"`
	}
	decodeBody(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0]["_id"] != resp.HistoryID {
		t.Errorf("unexpected history %v", list.Items)
	}
}

func TestSummarize(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})

	rec := env.do(t, http.MethodPost, "/summarize", "", map[string]string{
		"text": "One. Two. Three. Four. Five.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["summary"] != "One. Two. Three." {
		t.Errorf("unexpected summary %q", resp["summary"])
	}

	rec = env.do(t, http.MethodPost, "/summarize", "", map[string]string{"text": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty text, got %d", rec.Code)
	}
}

func TestGlossary(t *testing.T) {
	fake := &translator.Fake{Fn: func(req translator.TranslateRequest) (string, error) {
		return strings.ToUpper(req.Text), nil
	}}
	env := newTestEnv(t, fake)

	rec := env.do(t, http.MethodPost, "/glossary", "", map[string]any{
		"tokens": []string{"5", "Utilize", "5"},
		"lang":   "ta",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp glossaryResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 1 || resp.Map["Utilize"] != "UTILIZE" {
		t.Errorf("unexpected glossary %+v", resp)
	}

	calls := fake.Calls()
	if len(calls) != 1 || calls[0].SourceLang != "ta" || calls[0].TargetLang != "en" {
		t.Errorf("unexpected provider calls %+v", calls)
	}

	rec = env.do(t, http.MethodPost, "/glossary", "", map[string]any{"tokens": []string{"a"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without lang, got %d", rec.Code)
	}
}

func TestTranslateTokens(t *testing.T) {
	fake := &translator.Fake{Fn: func(req translator.TranslateRequest) (string, error) {
		lines := strings.Split(req.Text, "\n")
		for i, l := range lines {
			lines[i] = req.TargetLang + ":" + l
		}
		return strings.Join(lines, "\n"), nil
	}}
	env := newTestEnv(t, fake)

	rec := env.do(t, http.MethodPost, "/translateTokens", "", map[string]any{
		"tokens": []string{"pani", "ghar"},
		"from":   "hi",
		"to":     "en",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Map map[string]string `json:"map"`
	}
	decodeBody(t, rec, &resp)
	if resp.Map["pani"] != "en:pani" || resp.Map["ghar"] != "en:ghar" {
		t.Errorf("unexpected map %v", resp.Map)
	}
}

func TestHistory_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/history"},
		{http.MethodPost, "/api/history"},
		{http.MethodDelete, "/api/history"},
		{http.MethodDelete, "/api/history/abc"},
	} {
		rec := env.do(t, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHistory_CRUD(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	var ids []string
	for _, original := range []string{"one", "two", "three"} {
		rec := env.do(t, http.MethodPost, "/api/history", alice, map[string]string{
			"original": original, "translated": "t-" + original, "lang": "hi",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("create: status %d body %s", rec.Code, rec.Body)
		}
		var resp struct {
			Item map[string]any `json:"item"`
		}
		decodeBody(t, rec, &resp)
		ids = append(ids, resp.Item["_id"].(string))
	}

	rec := env.do(t, http.MethodPost, "/api/history", alice, map[string]string{"original": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete item, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/history/"+ids[0], bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting another user's item: expected 404, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/history/"+ids[0], alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body)
	}
	var deleted struct {
		Deleted bool   `json:"deleted"`
		ID      string `json:"id"`
	}
	decodeBody(t, rec, &deleted)
	if !deleted.Deleted || deleted.ID != ids[0] {
		t.Errorf("unexpected delete response %+v", deleted)
	}

	rec = env.do(t, http.MethodGet, "/api/history", alice, nil)
	var list struct {
		Items []map[string]any `json:"items"`
	}
	decodeBody(t, rec, &list)
	if len(list.Items) != 2 || list.Items[0]["original"] != "three" {
		t.Errorf("expected newest first, got %v", list.Items)
	}

	rec = env.do(t, http.MethodDelete, "/api/history", alice, nil)
	var cleared struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	decodeBody(t, rec, &cleared)
	if cleared.DeletedCount != 2 {
		t.Errorf("expected deletedCount 2, got %d", cleared.DeletedCount)
	}

	rec = env.do(t, http.MethodGet, "/api/history", alice, nil)
	if strings.TrimSpace(rec.Body.String()) != `{"items":[]}` {
		t.Errorf("expected empty list, got %s", rec.Body)
	}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})
	env.register(t, "ravi@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ravi@example.com", "password": "another1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ravi@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body)
	}
	var resp struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.User["username"] != "ravi" {
		t.Errorf("unexpected user %v", resp.User)
	}
	if _, ok := resp.User["passwordHash"]; ok {
		t.Error("password hash must not be serialised")
	}
	if _, err := env.auth.VerifyToken(resp.Token); err != nil {
		t.Errorf("login token invalid: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ravi@example.com", "password": "wrong-pass",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}
}

func newUpload(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, newUpload(t, "file", "notes.txt", "plain words"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["text"] != "plain words" {
		t.Errorf("unexpected text %q", resp["text"])
	}

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, newUpload(t, "other", "notes.txt", "x"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, newUpload(t, "file", "big.txt", strings.Repeat("a", 4<<10)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized file: expected 413, got %d", rec.Code)
	}
}

func TestUpload_RemovesTempFiles(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	uploads := []struct {
		name     string
		filename string
		content  string
		want     int
	}{
		{"extracted", "notes.txt", "plain words", http.StatusOK},
		{"extraction fails", "broken.txt", "\xff\xfe\xfd", http.StatusBadRequest},
		{"fallback extractor fails", "notes.xyz", "\xc3\x28", http.StatusBadRequest},
	}
	for _, u := range uploads {
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, newUpload(t, "file", u.filename, u.content))
		if rec.Code != u.want {
			t.Errorf("%s: expected %d, got %d: %s", u.name, u.want, rec.Code, rec.Body)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		t.Errorf("temp file left behind: %s", e.Name())
	}
}

func TestTTS(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})

	rec := env.do(t, http.MethodPost, "/tts", "", map[string]string{"text": "vanakkam", "lang": "ta"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.String() != "ID3-ta" {
		t.Errorf("unexpected audio %q", rec.Body)
	}

	rec = env.do(t, http.MethodPost, "/tts", "", map[string]string{"text": " "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: expected 400, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, &translator.Fake{})

	rec := env.do(t, http.MethodOptions, "/translate", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
