package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PnLPoint is one entry of the PnL history shown on the dashboard.
type PnLPoint struct {
	Date    time.Time       `json:"date"`
	PnL     decimal.Decimal `json:"pnl"`
	Ticker  string          `json:"ticker"`
	TradeID string          `json:"trade_id"`
}

// Stats aggregates the trade log.
type Stats struct {
	TotalTrades   int             `json:"total_trades"`
	TradesWithPnL int             `json:"trades_with_pnl"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	WinRate       float64         `json:"win_rate"`
	TotalPnL      decimal.Decimal `json:"total_pnl"`
	AveragePnL    decimal.Decimal `json:"average_pnl"`
	BestTrade     *TradeRecord    `json:"best_trade,omitempty"`
	WorstTrade    *TradeRecord    `json:"worst_trade,omitempty"`
	UniqueTickers []string        `json:"unique_tickers"`
	Directions    map[string]int  `json:"directions"`
	PnLHistory    []PnLPoint      `json:"pnl_history"`
	LatestTrade   *TradeRecord    `json:"latest_trade,omitempty"`
}

// DailySummary is the document written for one day of trades.
type DailySummary struct {
	Date        string          `json:"date"`
	Trades      []TradeRecord   `json:"trades"`
	TotalTrades int             `json:"total_trades"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	Winners     int             `json:"winners"`
	Losers      int             `json:"losers"`
	CreatedAt   time.Time       `json:"created_at"`
}
