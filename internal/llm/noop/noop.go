package noop

import (
	"context"

	"tradeshot/internal/llm"
	"tradeshot/internal/logger"
	"tradeshot/internal/types"
)

// Analyzer is used when no LLM provider is configured. The pipeline then
// relies on text heuristics alone.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(ctx context.Context, rawText, imagePath string) (string, error) {
	logger.Debug(ctx, "Noop analyzer called", "image", imagePath)
	return "", llm.ErrNotConfigured
}

func (a *Analyzer) Summarize(ctx context.Context, rec types.TradeRecord) (string, error) {
	return "", llm.ErrNotConfigured
}
