package interfaces

import (
	"context"

	"tradeshot/internal/types"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message. StatusCode is the provider's HTTP
// status when one was received, 0 otherwise.
type Sender interface {
	Send(ctx context.Context, msg Message) (statusCode int, err error)
	Recipient() string
}

// TradeStore is the persistence surface the pipeline writes through.
type TradeStore interface {
	Append(record types.TradeRecord) types.StorageResult
	AppendNotification(attempt types.NotificationAttempt) error
	Search(query string, limit int) ([]types.TradeRecord, error)
	Latest() (types.TradeRecord, error)
	Record(tradeID string) (types.TradeRecord, error)
	All() ([]types.TradeRecord, error)
}
