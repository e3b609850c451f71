package interfaces

import (
	"context"

	"tradeshot/internal/types"
)

// Processor is the query surface shared by the CLI and the HTTP server.
type Processor interface {
	ProcessSingle(ctx context.Context, imagePath string, sendEmail bool) types.Result
	ProcessBatch(ctx context.Context, path string, sendEmail bool) (types.BatchResult, error)
	SearchLogs(query string, limit int) ([]types.TradeRecord, error)
	LatestTrade() (types.TradeRecord, error)
	Trade(ctx context.Context, tradeID string) (types.TradeRecord, error)
	Stats(ctx context.Context) (types.Stats, error)
}
