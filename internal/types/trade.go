package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and PnL are written as JSON numbers so the dashboard can read the log directly.
	decimal.MarshalJSONWithoutQuotes = true
}

// UnknownTicker is stored when no instrument symbol could be recovered.
const UnknownTicker = "UNKNOWN"

// Direction is the side of a trade as read from the screenshot.
type Direction string

const (
	DirectionLong    Direction = "long"
	DirectionShort   Direction = "short"
	DirectionUnknown Direction = "unknown"
)

// ParseDirection maps broker wording onto a Direction. Anything it does not
// recognise becomes DirectionUnknown.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "bought", "buy to open", "bto":
		return DirectionLong
	case "short", "sell", "sold", "sell short", "sell to open", "sto":
		return DirectionShort
	default:
		return DirectionUnknown
	}
}

// TradeRecord is one trade recovered from a screenshot. It is created once by
// the normalizer and never edited after it has been appended to the log.
type TradeRecord struct {
	TradeID             string             `json:"trade_id"`
	Ticker              string             `json:"ticker"`
	Direction           Direction          `json:"direction"`
	EntryPrice          *decimal.Decimal   `json:"entry_price,omitempty"`
	ExitPrice           *decimal.Decimal   `json:"exit_price,omitempty"`
	PnLAmount           *decimal.Decimal   `json:"pnl_amount,omitempty"`
	PnL                 string             `json:"pnl,omitempty"`
	Timeframe           string             `json:"timeframe,omitempty"`
	DateTime            string             `json:"date_time,omitempty"`
	ReasonOrAnnotations string             `json:"reason_or_annotations,omitempty"`
	Confidence          float64            `json:"confidence"`
	Timestamp           time.Time          `json:"timestamp"`
	SourceImagePath     string             `json:"source_image_path"`
	NotificationStatus  NotificationStatus `json:"notification_status,omitzero"`
}

// HasPnL reports whether a PnL amount was recovered. A recovered zero counts.
func (t TradeRecord) HasPnL() bool {
	return t.PnLAmount != nil
}

// IsEmpty reports whether nothing beyond the defaults was recovered.
func (t TradeRecord) IsEmpty() bool {
	return t.Ticker == UnknownTicker &&
		t.Direction == DirectionUnknown &&
		t.EntryPrice == nil &&
		t.ExitPrice == nil &&
		t.PnLAmount == nil &&
		t.PnL == "" &&
		t.Timeframe == "" &&
		t.DateTime == "" &&
		t.ReasonOrAnnotations == ""
}

// Outcome classifies the trade by the sign of its PnL.
func (t TradeRecord) Outcome() string {
	switch {
	case t.PnLAmount == nil:
		return "INFO"
	case t.PnLAmount.IsPositive():
		return "PROFIT"
	case t.PnLAmount.IsNegative():
		return "LOSS"
	default:
		return "FLAT"
	}
}

// TextFields returns every text-valued field, used for keyword search.
func (t TradeRecord) TextFields() []string {
	return []string{
		t.TradeID,
		t.Ticker,
		string(t.Direction),
		t.PnL,
		t.Timeframe,
		t.DateTime,
		t.ReasonOrAnnotations,
		t.SourceImagePath,
		t.NotificationStatus.String(),
	}
}

// WithNotification returns a copy annotated with the dispatcher outcome.
func (t TradeRecord) WithNotification(status NotificationStatus) TradeRecord {
	t.NotificationStatus = status
	return t
}

// Dec is a convenience for building optional decimal fields.
func Dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
