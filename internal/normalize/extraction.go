package normalize

import (
	"github.com/shopspring/decimal"

	"tradeshot/internal/types"
)

// extraction holds whatever one extraction path recovered. Zero values mean
// "not found" so the two paths can be merged field by field.
type extraction struct {
	ticker    string
	direction types.Direction
	entry     *decimal.Decimal
	exit      *decimal.Decimal
	pnlAmount *decimal.Decimal
	pnl       string
	timeframe string
	dateTime  string
	notes     string
}

func (e extraction) empty() bool {
	return e.ticker == "" &&
		(e.direction == "" || e.direction == types.DirectionUnknown) &&
		e.entry == nil &&
		e.exit == nil &&
		e.pnlAmount == nil &&
		e.pnl == "" &&
		e.timeframe == "" &&
		e.dateTime == "" &&
		e.notes == ""
}

// fill copies every field o has that e lacks.
func (e *extraction) fill(o extraction) {
	if e.ticker == "" {
		e.ticker = o.ticker
	}
	if e.direction == "" || e.direction == types.DirectionUnknown {
		e.direction = o.direction
	}
	if e.entry == nil {
		e.entry = o.entry
	}
	if e.exit == nil {
		e.exit = o.exit
	}
	if e.pnlAmount == nil {
		e.pnlAmount = o.pnlAmount
	}
	if e.pnl == "" {
		e.pnl = o.pnl
	}
	if e.timeframe == "" {
		e.timeframe = o.timeframe
	}
	if e.dateTime == "" {
		e.dateTime = o.dateTime
	}
	if e.notes == "" {
		e.notes = o.notes
	}
}
