package interfaces

import (
	"context"

	"tradeshot/internal/types"
)

// Analyzer interprets recognized text and returns the model's raw reply.
type Analyzer interface {
	Analyze(ctx context.Context, rawText, imagePath string) (string, error)
}

// Summarizer writes a short human summary of a trade for the email body.
type Summarizer interface {
	Summarize(ctx context.Context, record types.TradeRecord) (string, error)
}
