package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"google.golang.org/api/option"

	"github.com/valpere/smarttranslate/internal/apperr"
)

func TestGTXService_Translate_Success(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client": q.Get("client"),
			"sl":     q.Get("sl"),
			"tl":     q.Get("tl"),
			"dt":     q.Get("dt"),
			"q":      q.Get("q"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["नमस्ते। ","Hello. ",null,null,1],["आप कैसे हैं?","How are you?",null,null,1]],null,"en"]`))
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 5*time.Second)

	result, err := svc.Translate(context.Background(), TranslateRequest{
		Text:       "Hello. How are you?",
		TargetLang: "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "नमस्ते। आप कैसे हैं?" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}
	if result.ServiceName != "gtx" {
		t.Errorf("expected service name 'gtx', got %q", result.ServiceName)
	}

	want := map[string]string{
		"client": "gtx",
		"sl":     "auto",
		"tl":     "hi",
		"dt":     "t",
		"q":      "Hello. How are you?",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s: got %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestGTXService_Translate_ExplicitSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sl := r.URL.Query().Get("sl"); sl != "en" {
			t.Errorf("expected sl=en, got %q", sl)
		}
		w.Write([]byte(`[[["வணக்கம்","Hello"]]]`))
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 0)
	result, err := svc.Translate(context.Background(), TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "ta",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "வணக்கம்" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}
}

func TestGTXService_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Too Many Requests"))
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 5*time.Second)
	_, err := svc.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "hi"})

	if err == nil {
		t.Fatal("expected error for non-OK status")
	}
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestGTXService_Translate_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 5*time.Second)
	_, err := svc.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "hi"})

	if !apperr.Is(err, apperr.KindUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestGTXService_Translate_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[[["x","y"]]]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewGTXService(server.URL, 5*time.Second)
	if _, err := svc.Translate(ctx, TranslateRequest{Text: "Hello", TargetLang: "hi"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestParseGTX(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "single segment", body: `[[["Hola","Hello",null,null,10]],null,"en"]`, want: "Hola"},
		{name: "segments joined without separator", body: `[[["a","x"],["b","y"],["c","z"]]]`, want: "abc"},
		{name: "null translation skipped", body: `[[["a","x"],[null,null,"translit"]]]`, want: "a"},
		{name: "empty segment list", body: `[[]]`, want: ""},
		{name: "not json", body: `<html>`, wantErr: true},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "first element not a list", body: `["oops"]`, wantErr: true},
		{name: "segment not a list", body: `[["oops"]]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGTX([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMyMemoryService_Name(t *testing.T) {
	svc := NewMyMemoryService("", "", 0)

	if svc.Name() != "mymemory" {
		t.Errorf("expected 'mymemory', got %q", svc.Name())
	}
}

func TestMyMemoryService_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("langpair") != "en|ta" {
			t.Errorf("expected langpair en|ta, got %q", q.Get("langpair"))
		}
		if q.Get("de") != "me@example.com" {
			t.Errorf("expected de=me@example.com, got %q", q.Get("de"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"responseData":   map[string]any{"translatedText": "வணக்கம்", "match": 0.9},
			"responseStatus": 200,
		})
	}))
	defer server.Close()

	svc := NewMyMemoryService(server.URL, "me@example.com", 5*time.Second)
	result, err := svc.Translate(context.Background(), TranslateRequest{
		Text:       "Hello",
		SourceLang: "auto",
		TargetLang: "ta",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "வணக்கம்" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}
}

func TestMyMemoryService_Translate_QuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"responseData":    map[string]any{"translatedText": ""},
			"responseStatus":  "403",
			"responseDetails": "QUOTA EXCEEDED",
		})
	}))
	defer server.Close()

	svc := NewMyMemoryService(server.URL, "", 5*time.Second)
	_, err := svc.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "ta"})

	if !apperr.Is(err, apperr.KindUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestFake_DefaultAndCalls(t *testing.T) {
	f := &Fake{}

	result, err := f.Translate(context.Background(), TranslateRequest{Text: "Hi", TargetLang: "bn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "[bn] Hi" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}
	if calls := f.Calls(); len(calls) != 1 || calls[0].Text != "Hi" {
		t.Errorf("unexpected calls %+v", calls)
	}
}

func TestFake_Fn(t *testing.T) {
	boom := errors.New("boom")
	f := &Fake{Fn: func(req TranslateRequest) (string, error) {
		if req.Text == "fail" {
			return "", boom
		}
		return "ok", nil
	}}

	if _, err := f.Translate(context.Background(), TranslateRequest{Text: "fail"}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	result, err := f.Translate(context.Background(), TranslateRequest{Text: "x"})
	if err != nil || result.TranslatedText != "ok" {
		t.Errorf("unexpected result %+v, %v", result, err)
	}
}

func TestGoogleService_InvalidTargetLanguage(t *testing.T) {
	svc := NewGoogleService("", "")

	_, err := svc.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "!!"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGoogleService_RequestsPlainText(t *testing.T) {
	var format, source, target string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format = r.FormValue("format")
		source = r.FormValue("source")
		target = r.FormValue("target")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"don't\nstop"}]}}`))
	}))
	defer server.Close()

	svc := NewGoogleService("", "",
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	defer svc.Close()

	result, err := svc.Translate(context.Background(), TranslateRequest{Text: "a\nb", SourceLang: "en", TargetLang: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "text" {
		t.Errorf("expected format=text, got %q", format)
	}
	if source != "en" || target != "hi" {
		t.Errorf("unexpected languages source=%q target=%q", source, target)
	}
	if result.TranslatedText != "don't\nstop" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}

	if _, err := svc.Translate(context.Background(), TranslateRequest{Text: "x", TargetLang: "ta"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "text" || source != "" {
		t.Errorf("auto source must still ask for text and omit source, got format=%q source=%q", format, source)
	}
}
