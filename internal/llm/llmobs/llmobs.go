package llmobs

import (
	"context"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/trace"
	"tradeshot/internal/types"
)

// Provider is what every LLM backend implements.
type Provider interface {
	interfaces.Analyzer
	interfaces.Summarizer
}

// observableProvider wraps a provider with observability (logging & tracing)
type observableProvider struct {
	provider Provider
}

// Compile-time interface check
var _ Provider = (*observableProvider)(nil)

// Wrap wraps a provider with observability middleware
func Wrap(provider Provider) Provider {
	return &observableProvider{provider: provider}
}

func (op *observableProvider) Analyze(ctx context.Context, rawText, imagePath string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Analyze")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting trade analysis",
		"image", imagePath,
		"text_len", len(rawText),
	)

	out, err := op.provider.Analyze(ctx, rawText, imagePath)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trade analysis failed", err,
			"image", imagePath,
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Trade analysis received",
		"image", imagePath,
		"reply_len", len(out),
	)
	return out, nil
}

func (op *observableProvider) Summarize(ctx context.Context, rec types.TradeRecord) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Summarize")
	defer span.End()

	out, err := op.provider.Summarize(ctx, rec)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trade summary failed", err,
			"trade_id", rec.TradeID,
		)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Trade summary received",
		"trade_id", rec.TradeID,
		"summary_len", len(out),
	)
	return out, nil
}
