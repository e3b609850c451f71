package eod

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/types"
)

type staticSource []types.TradeRecord

func (s staticSource) All() ([]types.TradeRecord, error) { return s, nil }

func rec(id, ticker, pnl string, at time.Time, dir types.Direction) types.TradeRecord {
	r := types.TradeRecord{TradeID: id, Ticker: ticker, Direction: dir, Timestamp: at}
	if pnl != "" {
		r.PnLAmount = types.Dec(pnl)
	}
	return r
}

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func sampleRecords() staticSource {
	return staticSource{
		rec("A", "NQ1!", "2220.00", day.Add(-time.Hour), types.DirectionShort),
		rec("B", "NQ1!", "150.25", day.Add(9*time.Hour), types.DirectionLong),
		rec("C", "ES1!", "-75.5", day.Add(10*time.Hour), types.DirectionShort),
		rec("D", "UNKNOWN", "", day.Add(11*time.Hour), types.DirectionUnknown),
		rec("E", "CL1!", "0", day.Add(12*time.Hour), types.DirectionLong),
	}
}

func TestSummarizeDay(t *testing.T) {
	dir := t.TempDir()
	s := &eodSummarizer{source: sampleRecords(), dir: dir, now: func() time.Time { return day.Add(20 * time.Hour) }}

	path, err := s.SummarizeDay(day.Add(15 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, summaryPath(dir, day), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var sum types.DailySummary
	require.NoError(t, json.Unmarshal(b, &sum))

	assert.Equal(t, "2025-03-14", sum.Date)
	assert.Equal(t, 4, sum.TotalTrades)
	assert.Equal(t, "74.75", sum.TotalPnL.String())
	assert.Equal(t, 1, sum.Winners)
	assert.Equal(t, 1, sum.Losers)
}

func TestSummarizeDayWithoutTrades(t *testing.T) {
	s := &eodSummarizer{source: sampleRecords(), dir: t.TempDir(), now: time.Now}
	path, err := s.SummarizeDay(day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestDefaultSummarizer(t *testing.T) {
	t.Cleanup(func() { SetDefaultSummarizer(unconfigured{}) })

	_, err := SummarizeToday()
	assert.Error(t, err)

	SetDefaultSummarizer(NewSummarizer(sampleRecords(), t.TempDir()))
	path, err := SummarizeDay(day)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(sampleRecords())

	assert.Equal(t, 5, st.TotalTrades)
	assert.Equal(t, 4, st.TradesWithPnL)
	assert.Equal(t, 2, st.WinningTrades)
	assert.Equal(t, 1, st.LosingTrades)
	assert.Equal(t, 50.0, st.WinRate)
	assert.Equal(t, "2294.75", st.TotalPnL.String())
	assert.Equal(t, "573.69", st.AveragePnL.String())
	require.NotNil(t, st.BestTrade)
	assert.Equal(t, "A", st.BestTrade.TradeID)
	require.NotNil(t, st.WorstTrade)
	assert.Equal(t, "C", st.WorstTrade.TradeID)
	assert.Equal(t, []string{"CL1!", "ES1!", "NQ1!"}, st.UniqueTickers)
	assert.Equal(t, map[string]int{"short": 2, "long": 2, "unknown": 1}, st.Directions)
	assert.Len(t, st.PnLHistory, 4)
	require.NotNil(t, st.LatestTrade)
	assert.Equal(t, "E", st.LatestTrade.TradeID)
}

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil)
	assert.Zero(t, st.TotalTrades)
	assert.Zero(t, st.WinRate)
	assert.True(t, st.TotalPnL.IsZero())
	assert.Nil(t, st.LatestTrade)
	assert.NotNil(t, st.PnLHistory)
}
