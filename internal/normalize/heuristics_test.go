package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/types"
)

func TestFindTicker(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"NQ1! SHORT entry 1", "NQ1!"},
		{"Position: LONG ES1! qty 2", "ES1!"},
		{"filled BUY 10 AAPL @ 187.20", "AAPL"},
		{"BTC/USD 1H chart", "BTC/USD"},
		{"USD PNL TOTAL 12", ""},
		{"M5 SHORT", ""},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, findTicker(tt.text, nil))
		})
	}
}

func TestFindTicker_ContractFilter(t *testing.T) {
	assert.Equal(t, "", findTicker("The OCR text is unreadable", nil))
	assert.Equal(t, "", findTicker("Looks like AAPL was bought", looksLikeContract))
	assert.Equal(t, "MES1!", findTicker("Looks like MES1! was bought", looksLikeContract))
	assert.Equal(t, "ETH/USDT", findTicker("Pair ETH/USDT closed", looksLikeContract))
}

func TestFromText_LossLabelNegates(t *testing.T) {
	e := fromText("ES1! Loss: 125.00")
	require.NotNil(t, e.pnlAmount)
	assert.Equal(t, "-125", e.pnlAmount.String())
}

func TestFromText_StopLossIsNotPnL(t *testing.T) {
	e := fromText("NQ1! long entry 100 stop loss 95 close 110")
	require.NotNil(t, e.entry)
	require.NotNil(t, e.exit)
	assert.Equal(t, "100", e.entry.String())
	assert.Equal(t, "110", e.exit.String())
	assert.Nil(t, e.pnlAmount)
}

func TestFromText_SignedAmountFallback(t *testing.T) {
	e := fromText("MNQ1! closed trade -$35.50 today")
	require.NotNil(t, e.pnlAmount)
	assert.Equal(t, "-35.5", e.pnlAmount.String())
}

func TestFromText_Direction(t *testing.T) {
	assert.Equal(t, types.DirectionShort, fromText("we sold the high").direction)
	assert.Equal(t, types.DirectionLong, fromText("Bought 2 contracts").direction)
	assert.Equal(t, types.Direction(""), fromText("flat day").direction)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$1,234.50", "1234.5", true},
		{"+2220.00", "2220", true},
		{"-$35.50", "-35.5", true},
		{"$-35.50", "-35.5", true},
		{"(42.10)", "-42.1", true},
		{"+38.07 USD", "38.07", true},
		{"n/a", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a\tb\nc", Sanitize("  a\tb\nc\x00  "))
	assert.Equal(t, "C:pathfile", Sanitize(`C:\path\file`))
	assert.Equal(t, "caf", Sanitize("café"))
}
