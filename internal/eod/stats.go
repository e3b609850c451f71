package eod

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"tradeshot/internal/types"
)

// ComputeStats aggregates records given in log order. Records without a PnL
// amount count toward totals but not toward wins, losses or PnL sums.
func ComputeStats(recs []types.TradeRecord) types.Stats {
	st := types.Stats{
		TotalTrades:   len(recs),
		TotalPnL:      decimal.Zero,
		AveragePnL:    decimal.Zero,
		UniqueTickers: []string{},
		Directions:    map[string]int{},
		PnLHistory:    []types.PnLPoint{},
	}

	tickers := map[string]bool{}
	for i := range recs {
		r := recs[i]
		st.Directions[string(r.Direction)]++
		if r.Ticker != "" && r.Ticker != types.UnknownTicker && !tickers[r.Ticker] {
			tickers[r.Ticker] = true
			st.UniqueTickers = append(st.UniqueTickers, r.Ticker)
		}
		if r.PnLAmount == nil {
			continue
		}

		pnl := *r.PnLAmount
		st.TradesWithPnL++
		st.TotalPnL = st.TotalPnL.Add(pnl)
		switch {
		case pnl.IsPositive():
			st.WinningTrades++
		case pnl.IsNegative():
			st.LosingTrades++
		}
		if st.BestTrade == nil || pnl.GreaterThan(*st.BestTrade.PnLAmount) {
			st.BestTrade = &recs[i]
		}
		if st.WorstTrade == nil || pnl.LessThan(*st.WorstTrade.PnLAmount) {
			st.WorstTrade = &recs[i]
		}
		st.PnLHistory = append(st.PnLHistory, types.PnLPoint{
			Date:    r.Timestamp,
			PnL:     pnl,
			Ticker:  r.Ticker,
			TradeID: r.TradeID,
		})
	}
	sort.Strings(st.UniqueTickers)

	if st.TradesWithPnL > 0 {
		st.WinRate = math.Round(float64(st.WinningTrades)/float64(st.TradesWithPnL)*10000) / 100
		st.AveragePnL = st.TotalPnL.Div(decimal.NewFromInt(int64(st.TradesWithPnL))).Round(2)
	}
	if len(recs) > 0 {
		st.LatestTrade = &recs[len(recs)-1]
	}
	return st
}
