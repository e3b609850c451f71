// Package eod writes end-of-day trade summaries and computes journal stats.
package eod

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tradeshot/internal/types"
)

// RecordSource is the part of the trade store the summarizer reads.
type RecordSource interface {
	All() ([]types.TradeRecord, error)
}

type eodSummarizer struct {
	// mu serializes rewrites; the pipeline refreshes a day after every trade.
	mu     sync.Mutex
	source RecordSource
	dir    string
	now    func() time.Time
}

func summaryPath(dir string, t time.Time) string {
	return filepath.Join(dir, "daily_summary_"+t.UTC().Format("2006-01-02")+".json")
}

// SummarizeDay writes the summary for the UTC date of t and returns its path.
// An empty path with a nil error means there were no trades that day.
func (s *eodSummarizer) SummarizeDay(t time.Time) (string, error) {
	if s.source == nil {
		return "", errors.New("eod summarizer has no trade source")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.source.All()
	if err != nil {
		return "", fmt.Errorf("read trade log: %w", err)
	}

	day := t.UTC().Format("2006-01-02")
	sum := types.DailySummary{Date: day, Trades: []types.TradeRecord{}, TotalPnL: decimal.Zero}
	for _, r := range recs {
		if r.Timestamp.UTC().Format("2006-01-02") != day {
			continue
		}
		sum.Trades = append(sum.Trades, r)
		if r.PnLAmount == nil {
			continue
		}
		sum.TotalPnL = sum.TotalPnL.Add(*r.PnLAmount)
		switch {
		case r.PnLAmount.IsPositive():
			sum.Winners++
		case r.PnLAmount.IsNegative():
			sum.Losers++
		}
	}
	sum.TotalTrades = len(sum.Trades)
	if sum.TotalTrades == 0 {
		return "", nil
	}
	sum.CreatedAt = s.now().UTC()

	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return "", err
	}
	outPath := summaryPath(s.dir, t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	if err := writeAtomic(outPath, append(b, '\n')); err != nil {
		return "", err
	}
	return outPath, nil
}

// writeAtomic replaces path via a temp file and rename so readers never see a
// half-written summary.
func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".summary-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *eodSummarizer) SummarizeToday() (string, error) {
	return s.SummarizeDay(s.now())
}
