package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/smarttranslate/internal/apperr"
	"github.com/valpere/smarttranslate/internal/postprocess"
)

type OpenAIConfig struct {
	APIKey      string
	Model       string // default "gpt-4o-mini"
	BaseURL     string // optional, for compatible endpoints
	Temperature float32
}

// OpenAI asks a chat model for a short summary written in the requested
// language.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

func (s *OpenAI) Name() string {
	return "openai"
}

func (s *OpenAI) Summarize(ctx context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("no text provided")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(lang)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: s.temperature,
	})
	if err != nil {
		return "", apperr.Upstream("summary request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Upstream("summary request failed", fmt.Errorf("no choices returned"))
	}

	summary := postprocess.Clean(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", apperr.Upstream("summary request failed", fmt.Errorf("empty summary"))
	}
	return summary, nil
}

func systemPrompt(lang string) string {
	return fmt.Sprintf(`You summarise documents for readers who are not native English speakers.
Write at most %d short, plain sentences in %s.
Keep names, numbers and dates exactly as written.
Reply with the summary only: no preamble, no list markers, no quotes.`, MaxSentences, LanguageName(lang))
}

// LanguageName returns the English name of a language code, or the code
// itself when it is not recognised. An empty code means the text's own
// language.
func LanguageName(code string) string {
	if code == "" {
		return "the same language as the text"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
