// Package claude talks to the Anthropic Messages API.
package claude

import (
	"context"
	"time"

	"tradeshot/internal/api"
	"tradeshot/internal/llm"
	"tradeshot/internal/store"
	"tradeshot/internal/trace"
	"tradeshot/internal/types"
)

const (
	DefaultEndpoint = "https://api.anthropic.com/v1/messages"
	apiVersion      = "2023-06-01"
)

type Analyzer struct {
	cfg      *store.Config
	client   *api.Client
	endpoint string
	apiKey   string
}

func NewAnalyzer(cfg *store.Config) *Analyzer {
	// a proxy or gateway can be set through llm.endpoint / CLAUDE_API_ENDPOINT
	endpoint := cfg.LLM.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.LLM.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Analyzer{
		cfg: cfg,
		client: api.NewClient(
			api.WithTimeout(timeout),
			api.WithHeader("anthropic-version", apiVersion),
			api.WithLogging(true),
		),
		endpoint: endpoint,
		apiKey:   cfg.LLM.APIKey,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
}

func (a *Analyzer) Analyze(ctx context.Context, rawText, imagePath string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	return a.complete(ctx, llm.AnalysisPrompt(rawText), a.cfg.LLM.Temperature, a.cfg.LLM.MaxTokens)
}

func (a *Analyzer) Summarize(ctx context.Context, rec types.TradeRecord) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-summary-call")
	defer span.End()

	return a.complete(ctx, llm.SummaryPrompt(rec), a.cfg.LLM.Summary.Temperature, a.cfg.LLM.Summary.MaxTokens)
}

func (a *Analyzer) complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	if a.apiKey == "" {
		return "", llm.ErrNotConfigured
	}
	if maxTokens <= 0 {
		// the Messages API requires max_tokens
		maxTokens = 500
	}
	system := a.cfg.LLM.System
	if system == "" {
		system = llm.DefaultSystemPrompt
	}

	body := messagesRequest{
		Model:       a.cfg.LLM.Model,
		System:      system,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	resp, err := a.client.POST(ctx, a.endpoint, body, map[string]string{"x-api-key": a.apiKey})
	if err != nil {
		return "", err
	}
	return llm.ExtractContent(resp.Body), nil
}
