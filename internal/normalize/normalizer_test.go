package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/types"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return New(
		WithClock(func() time.Time { return fixedNow }),
		WithIDSource(func(time.Time) string { return "01TESTID" }),
	)
}

func requireDec(t *testing.T, want string, got *decimal.Decimal) {
	t.Helper()
	require.NotNil(t, got, "expected %s, got absent", want)
	assert.True(t, decimal.RequireFromString(want).Equal(*got), "want %s got %s", want, got)
}

func TestNormalize_RawTextScenario(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("NQ1! SHORT entry 22880.75 exit 22878.0 pnl +2220.00", "", 91.5, "shots/nq.png")

	assert.Equal(t, "NQ1!", rec.Ticker)
	assert.Equal(t, types.DirectionShort, rec.Direction)
	requireDec(t, "22880.75", rec.EntryPrice)
	requireDec(t, "22878.0", rec.ExitPrice)
	requireDec(t, "2220.00", rec.PnLAmount)
	assert.Equal(t, 91.5, rec.Confidence)
	assert.Equal(t, "01TESTID", rec.TradeID)
	assert.Equal(t, fixedNow, rec.Timestamp)
	assert.Equal(t, "shots/nq.png", rec.SourceImagePath)
}

func TestNormalize_StructuredAnalyzerOutput(t *testing.T) {
	n := newTestNormalizer()
	reply := "```json\n" + `{"ticker": "es1!", "timeframe": "5m", "entry_price": "$5,120.25",
		"exit_price": 5118.5, "direction": "Short", "pnl": "+87.50 USD", "date_time": "2025-03-14 09:31"}` + "\n```"

	rec := n.Normalize("", reply, 80, "a.png")

	assert.Equal(t, "ES1!", rec.Ticker)
	assert.Equal(t, types.DirectionShort, rec.Direction)
	requireDec(t, "5120.25", rec.EntryPrice)
	requireDec(t, "5118.5", rec.ExitPrice)
	requireDec(t, "87.50", rec.PnLAmount)
	assert.Equal(t, "+87.50 USD", rec.PnL)
	assert.Equal(t, "5m", rec.Timeframe)
	assert.Equal(t, "2025-03-14 09:31", rec.DateTime)
}

func TestNormalize_DirectionDefaultsToUnknownWhenAbsent(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("", `{"ticker": "AAPL", "pnl_amount": "-1,250.40"}`, 50, "a.png")

	assert.Equal(t, "AAPL", rec.Ticker)
	assert.Equal(t, types.DirectionUnknown, rec.Direction)
	requireDec(t, "-1250.40", rec.PnLAmount)
}

func TestNormalize_EmbeddedJSONInProse(t *testing.T) {
	n := newTestNormalizer()
	reply := `Here is the trade: {"symbol": "BTC/USD", "side": "buy", "profit": 12.5} hope that helps`

	rec := n.Normalize("", reply, 0, "a.png")

	assert.Equal(t, "BTC/USD", rec.Ticker)
	assert.Equal(t, types.DirectionLong, rec.Direction)
	requireDec(t, "12.5", rec.PnLAmount)
}

func TestNormalize_NothingRecoverable(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("lorem ipsum dolor", "I could not read this image.", 0, "blank.png")

	assert.Equal(t, types.UnknownTicker, rec.Ticker)
	assert.Equal(t, types.DirectionUnknown, rec.Direction)
	assert.Nil(t, rec.EntryPrice)
	assert.Nil(t, rec.ExitPrice)
	assert.Nil(t, rec.PnLAmount)
	assert.True(t, rec.IsEmpty())
	assert.Equal(t, "01TESTID", rec.TradeID)
}

func TestNormalize_ErrorObjectIsUnusable(t *testing.T) {
	n := newTestNormalizer()
	reply := `{"error": "API request timed out", "ticker": "UNKNOWN", "direction": "unknown", "pnl_amount": 0}`

	rec := n.Normalize("", reply, 0, "a.png")

	assert.Equal(t, types.UnknownTicker, rec.Ticker)
	assert.Equal(t, types.DirectionUnknown, rec.Direction)
	assert.Nil(t, rec.PnLAmount)
	assert.False(t, rec.HasPnL())
	assert.True(t, rec.IsEmpty())
}

func TestNormalize_ErrorObjectStillUsesRecognizedText(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("ES1! long pnl 40", `{"error": "rate limited", "pnl_amount": 0}`, 60, "a.png")

	assert.Equal(t, "ES1!", rec.Ticker)
	requireDec(t, "40", rec.PnLAmount)
}

func TestNormalize_RefusalProseYieldsNoTicker(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("lorem ipsum", "The OCR text is unreadable, I cannot determine the trade.", 0, "a.png")

	assert.Equal(t, types.UnknownTicker, rec.Ticker)
	assert.Equal(t, types.DirectionUnknown, rec.Direction)
	assert.True(t, rec.IsEmpty())
}

func TestNormalize_ProseReplyWithContractSymbol(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("", "This was a short on NQ1! with pnl +310.50", 0, "a.png")

	assert.Equal(t, "NQ1!", rec.Ticker)
	assert.Equal(t, types.DirectionShort, rec.Direction)
	requireDec(t, "310.50", rec.PnLAmount)
}

func TestNormalize_StructuredNotesDoNotFillFields(t *testing.T) {
	n := newTestNormalizer()
	reply := `{"ticker": "NQ1!", "pnl_amount": 2220, "reason_or_annotations": "waited for the sell-off, entry 100"}`

	rec := n.Normalize("", reply, 70, "a.png")

	assert.Equal(t, types.DirectionUnknown, rec.Direction)
	assert.Nil(t, rec.EntryPrice)
	requireDec(t, "2220", rec.PnLAmount)
}

func TestNormalize_StructuredCompletedFromText(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("CL1! LONG entry 71.20 exit 71.85 P&L: $650.00", `{"ticker": "CL1!"}`, 70, "a.png")

	assert.Equal(t, "CL1!", rec.Ticker)
	assert.Equal(t, types.DirectionLong, rec.Direction)
	requireDec(t, "71.20", rec.EntryPrice)
	requireDec(t, "71.85", rec.ExitPrice)
	requireDec(t, "650.00", rec.PnLAmount)
}

func TestNormalize_StructuredWinsOverText(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("MES1! SELL pnl -20", `{"ticker": "MNQ1!", "direction": "long", "pnl_amount": 45}`, 70, "a.png")

	assert.Equal(t, "MNQ1!", rec.Ticker)
	assert.Equal(t, types.DirectionLong, rec.Direction)
	requireDec(t, "45", rec.PnLAmount)
}

func TestNormalize_ZeroPnLIsPresent(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("", `{"ticker": "ES1!", "pnl_amount": 0}`, 70, "a.png")

	require.True(t, rec.HasPnL())
	assert.True(t, rec.PnLAmount.IsZero())
	assert.Equal(t, "FLAT", rec.Outcome())
}

func TestNormalize_ConfidenceClamped(t *testing.T) {
	n := newTestNormalizer()
	assert.Equal(t, 100.0, n.Normalize("", "", 140, "a").Confidence)
	assert.Equal(t, 0.0, n.Normalize("", "", -3, "a").Confidence)
}

func TestNormalize_SanitizesText(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("", `{"ticker": "NQ1!", "reason_or_annotations": "broke VWAP \\ retest \u0007 ok"}`, 0, "a.png")

	assert.Equal(t, "broke VWAP  retest  ok", rec.ReasonOrAnnotations)
}

func TestNormalize_RoundTripIsIdempotent(t *testing.T) {
	n := newTestNormalizer()
	rec := n.Normalize("NQ1! SHORT entry 22880.75 exit 22878.0 pnl +2220.00", "", 91.5, "shots/nq.png")

	first, err := json.Marshal(rec)
	require.NoError(t, err)

	var back types.TradeRecord
	require.NoError(t, json.Unmarshal(first, &back))

	second, err := json.Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.NotContains(t, string(first), "notification_status")
}

func TestNormalize_DefaultIDsAreUnique(t *testing.T) {
	n := New()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		rec := n.Normalize("", "", 0, "a.png")
		require.False(t, seen[rec.TradeID], "duplicate id %s", rec.TradeID)
		seen[rec.TradeID] = true
	}
}
