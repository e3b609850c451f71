package notify

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/types"
)

func TestRenderEmailHTML(t *testing.T) {
	rec := tradeWithPnL("2220.00")
	rec.Timeframe = "5m"
	rec.ReasonOrAnnotations = `<script>alert(1)</script> \ faded the open`

	subject, text, html, err := RenderEmail(rec, "First paragraph.\n\nSecond paragraph.")
	require.NoError(t, err)
	assert.Equal(t, "Trade Alert: NQ1! - PROFIT", subject)
	assert.Contains(t, text, "Timeframe:  5m")
	assert.NotContains(t, text, `\`)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, "Trade Alert: NQ1!", doc.Find("h2.title").Text())
	assert.Equal(t, "PROFIT", doc.Find("p.outcome").Text())
	assert.True(t, doc.Find("p.outcome").HasClass("profit"))
	assert.Equal(t, "SHORT", doc.Find("td.direction").Text())
	assert.Equal(t, "22880.75", doc.Find("td.entry").Text())
	assert.Equal(t, "22878", doc.Find("td.exit").Text())
	assert.Equal(t, "+$2220.00", doc.Find("td.pnl").Text())
	assert.Equal(t, "5m", doc.Find("td.timeframe").Text())
	assert.Equal(t, 0, doc.Find("td.datetime").Length())
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Contains(t, doc.Find("p.notes").Text(), "<script>")

	paras := doc.Find("p.summary")
	require.Equal(t, 2, paras.Length())
	assert.Equal(t, "Second paragraph.", paras.Eq(1).Text())
}

func TestRenderEmailWithoutPnL(t *testing.T) {
	rec := tradeWithPnL("")
	subject, _, html, err := RenderEmail(rec, "")
	require.NoError(t, err)
	assert.Equal(t, "Trade Alert: NQ1! - INFO", subject)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, "n/a", doc.Find("td.pnl").Text())
	assert.Equal(t, 0, doc.Find("p.summary").Length())
}

func TestSubjectFlat(t *testing.T) {
	assert.Equal(t, "Trade Alert: ES1! - FLAT", Subject(types.TradeRecord{Ticker: "ES1!", PnLAmount: types.Dec("0")}))
}
