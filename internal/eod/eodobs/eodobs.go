package eodobs

import (
	"context"
	"time"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/trace"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{
		summarizer: summarizer,
	}
}

func (oes *observableEodSummarizer) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeDay")
	defer span.End()

	date := t.UTC().Format("2006-01-02")
	logger.InfoSkip(ctx, 1, "Starting daily summary", "date", date)

	path, err := oes.summarizer.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Daily summary failed", err, "date", date)
		return "", err
	}

	if path == "" {
		logger.InfoSkip(ctx, 1, "No trades found for daily summary", "date", date)
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "Daily summary written", "date", date, "path", path)
	return path, nil
}

func (oes *observableEodSummarizer) SummarizeToday() (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeToday")
	defer span.End()

	path, err := oes.summarizer.SummarizeToday()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Today's summary failed", err)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Today's summary finished", "path", path)
	return path, nil
}
