// Package deepseek talks to DeepSeek's OpenAI-compatible chat completions API.
package deepseek

import (
	"context"
	"strings"
	"time"

	"tradeshot/internal/api"
	"tradeshot/internal/llm"
	"tradeshot/internal/store"
	"tradeshot/internal/trace"
	"tradeshot/internal/types"
)

const DefaultBaseURL = "https://api.deepseek.com"

type Analyzer struct {
	cfg      *store.Config
	client   *api.Client
	endpoint string
	apiKey   string
}

func NewAnalyzer(cfg *store.Config) *Analyzer {
	base := cfg.LLM.Endpoint
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.LLM.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Analyzer{
		cfg:      cfg,
		client:   api.NewClient(api.WithTimeout(timeout), api.WithLogging(true)),
		endpoint: strings.TrimRight(base, "/") + "/chat/completions",
		apiKey:   cfg.LLM.APIKey,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Analyze returns the model's raw reply to the extraction prompt.
func (a *Analyzer) Analyze(ctx context.Context, rawText, imagePath string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "deepseek-api-call")
	defer span.End()

	return a.complete(ctx, llm.AnalysisPrompt(rawText), a.cfg.LLM.Temperature, a.cfg.LLM.MaxTokens)
}

// Summarize writes the email summary for rec.
func (a *Analyzer) Summarize(ctx context.Context, rec types.TradeRecord) (string, error) {
	ctx, span := trace.StartSpan(ctx, "deepseek-summary-call")
	defer span.End()

	return a.complete(ctx, llm.SummaryPrompt(rec), a.cfg.LLM.Summary.Temperature, a.cfg.LLM.Summary.MaxTokens)
}

func (a *Analyzer) complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	if a.apiKey == "" {
		return "", llm.ErrNotConfigured
	}

	system := a.cfg.LLM.System
	if system == "" {
		system = llm.DefaultSystemPrompt
	}
	body := chatRequest{
		Model: a.cfg.LLM.Model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	resp, err := a.client.POST(ctx, a.endpoint, body, map[string]string{
		"Authorization": "Bearer " + a.apiKey,
	})
	if err != nil {
		return "", err
	}
	return llm.ExtractContent(resp.Body), nil
}
