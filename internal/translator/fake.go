package translator

import (
	"context"
	"sync"
)

// Fake is an in-memory Translator for tests and offline runs. By default it
// answers "[tl] text"; Fn overrides that.
type Fake struct {
	Fn func(req TranslateRequest) (string, error)

	mu    sync.Mutex
	calls []TranslateRequest
}

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.Fn != nil {
		text, err := f.Fn(req)
		if err != nil {
			return nil, err
		}
		return &ServiceResult{ServiceName: f.Name(), TranslatedText: text}, nil
	}
	return &ServiceResult{ServiceName: f.Name(), TranslatedText: "[" + req.TargetLang + "] " + req.Text}, nil
}

// Calls returns a copy of every request seen so far.
func (f *Fake) Calls() []TranslateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]TranslateRequest, len(f.calls))
	copy(out, f.calls)
	return out
}
