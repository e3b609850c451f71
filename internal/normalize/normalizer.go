// Package normalize turns recognizer text and analyzer replies into a typed
// TradeRecord. It never fails: whatever cannot be recovered is left absent.
package normalize

import (
	"math"
	"time"

	"tradeshot/internal/id"
	"tradeshot/internal/types"
)

type Normalizer struct {
	now   func() time.Time
	newID func(time.Time) string
}

type Option func(*Normalizer)

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithIDSource overrides trade id generation.
func WithIDSource(fn func(time.Time) string) Option {
	return func(n *Normalizer) { n.newID = fn }
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now, newID: id.NewAt}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize is the single creation point of a TradeRecord. Structured analyzer
// fields take precedence and are completed from the recognized text only.
// A prose reply is scanned too, but a symbol is taken from it only when it
// carries a digit, '!' or '/'. An analyzer error object contributes nothing.
func (n *Normalizer) Normalize(rawText, analyzerOutput string, confidence float64, sourcePath string) types.TradeRecord {
	var e extraction

	out := types.ResolveAnalyzerOutput(analyzerOutput)
	if out.IsStructured() && !isFailureReply(out.Fields()) {
		e = fromStructured(out.Fields())
	}

	e.fill(fromText(rawText))
	if prose := out.Text(); prose != "" {
		p := fromText(prose)
		p.ticker = findTicker(prose, looksLikeContract)
		e.fill(p)
	}

	ts := n.now().UTC()
	rec := types.TradeRecord{
		TradeID:             n.newID(ts),
		Ticker:              e.ticker,
		Direction:           e.direction,
		EntryPrice:          e.entry,
		ExitPrice:           e.exit,
		PnLAmount:           e.pnlAmount,
		PnL:                 Sanitize(e.pnl),
		Timeframe:           Sanitize(e.timeframe),
		DateTime:            Sanitize(e.dateTime),
		ReasonOrAnnotations: Sanitize(e.notes),
		Confidence:          clampConfidence(confidence),
		Timestamp:           ts,
		SourceImagePath:     Sanitize(sourcePath),
	}
	rec.Ticker = cleanTicker(rec.Ticker)
	if rec.Ticker == "" {
		rec.Ticker = types.UnknownTicker
	}
	if rec.Direction == "" {
		rec.Direction = types.DirectionUnknown
	}
	return rec
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}
