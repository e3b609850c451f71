package pipeline

import "tradeshot/internal/types"

// Assemble builds the result for one screenshot. The returned record carries
// the notification status; the stored one does not.
func Assemble(rec types.TradeRecord, storage types.StorageResult, status types.NotificationStatus) types.Result {
	rec = rec.WithNotification(status)
	res := types.Result{
		TradeID:            rec.TradeID,
		Image:              rec.SourceImagePath,
		Ticker:             rec.Ticker,
		Direction:          rec.Direction,
		EntryPrice:         rec.EntryPrice,
		ExitPrice:          rec.ExitPrice,
		PnLAmount:          rec.PnLAmount,
		Confidence:         rec.Confidence,
		Record:             rec,
		SavedFiles:         storage.SavedFiles(),
		Storage:            storage,
		NotificationStatus: status,
		EmailSent:          status.Sent(),
	}
	if storage.LogErr != nil {
		res.Error = "trade log write failed: " + storage.LogErr.Error()
	}
	return res
}
