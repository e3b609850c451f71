package pipelineobs

import (
	"context"
	"time"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/trace"
	"tradeshot/internal/types"
)

type observableProcessor struct {
	processor interfaces.Processor
}

var _ interfaces.Processor = (*observableProcessor)(nil)

func Wrap(p interfaces.Processor) interfaces.Processor {
	return &observableProcessor{processor: p}
}

func (op *observableProcessor) ProcessSingle(ctx context.Context, imagePath string, sendEmail bool) types.Result {
	ctx, span := trace.StartSpan(ctx, "pipeline.ProcessSingle")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Processing screenshot", "image", imagePath, "send_email", sendEmail)

	res := op.processor.ProcessSingle(ctx, imagePath, sendEmail)
	if res.Error != "" {
		logger.WarnSkip(ctx, 1, "Screenshot processed with error",
			"image", imagePath,
			"error", res.Error,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return res
	}

	logger.InfoSkip(ctx, 1, "Screenshot processed",
		"image", imagePath,
		"trade_id", res.TradeID,
		"ticker", res.Ticker,
		"notification", res.NotificationStatus.String(),
		"warnings", len(res.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (op *observableProcessor) ProcessBatch(ctx context.Context, path string, sendEmail bool) (types.BatchResult, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.ProcessBatch")
	defer span.End()

	start := time.Now()
	batch, err := op.processor.ProcessBatch(ctx, path, sendEmail)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Batch failed", err,
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return batch, err
	}

	logger.InfoSkip(ctx, 1, "Batch completed",
		"path", path,
		"total", batch.Total,
		"ok", batch.OK,
		"fail", batch.Fail,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return batch, nil
}

func (op *observableProcessor) SearchLogs(query string, limit int) ([]types.TradeRecord, error) {
	ctx, span := trace.StartSpan(context.Background(), "pipeline.SearchLogs")
	defer span.End()

	recs, err := op.processor.SearchLogs(query, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Search failed", err, "query", query)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Search completed", "query", query, "limit", limit, "found", len(recs))
	return recs, nil
}

func (op *observableProcessor) LatestTrade() (types.TradeRecord, error) {
	return op.processor.LatestTrade()
}

func (op *observableProcessor) Trade(ctx context.Context, tradeID string) (types.TradeRecord, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.Trade")
	defer span.End()

	rec, err := op.processor.Trade(ctx, tradeID)
	if err != nil {
		logger.DebugSkip(ctx, 1, "Trade lookup failed", "trade_id", tradeID, "error", err)
	}
	return rec, err
}

func (op *observableProcessor) Stats(ctx context.Context) (types.Stats, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.Stats")
	defer span.End()

	stats, err := op.processor.Stats(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Stats failed", err)
	}
	return stats, err
}
