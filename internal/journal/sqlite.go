// Package journal mirrors the trade log into SQLite for lookups and stats.
// Like the log, it is insert-only.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"

	"tradeshot/internal/types"
)

var ErrNotFound = errors.New("trade not in journal")

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// tsLayout is fixed width so timestamps sort correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

const insertColumns = `(trade_id, ticker, direction, entry_price, exit_price, pnl_amount, confidence, timestamp, source_image_path, raw_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, verb string, rec types.TradeRecord) (sql.Result, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, verb+` INTO trades `+insertColumns,
		rec.TradeID, rec.Ticker, string(rec.Direction),
		nullDecimal(rec.EntryPrice), nullDecimal(rec.ExitPrice), nullDecimal(rec.PnLAmount),
		rec.Confidence, rec.Timestamp.UTC().Format(tsLayout), rec.SourceImagePath, string(raw),
	)
}

// RecordTrade inserts rec. Inserting an existing trade_id is an error.
func (j *SQLite) RecordTrade(ctx context.Context, rec types.TradeRecord) error {
	_, err := insert(ctx, j.db, "INSERT", rec)
	return err
}

// Backfill inserts the records the journal does not hold yet, in one
// transaction, and returns how many were added. It brings the journal level
// with the trade log after it was enabled late or missed a write.
func (j *SQLite) Backfill(ctx context.Context, recs []types.TradeRecord) (int, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, rec := range recs {
		res, err := insert(ctx, tx, "INSERT OR IGNORE", rec)
		if err != nil {
			return 0, fmt.Errorf("backfill %s: %w", rec.TradeID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (types.TradeRecord, error) {
	var raw string
	err := j.db.QueryRowContext(ctx, `SELECT raw_json FROM trades WHERE trade_id = ?`, tradeID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TradeRecord{}, ErrNotFound
	}
	if err != nil {
		return types.TradeRecord{}, err
	}
	var rec types.TradeRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return types.TradeRecord{}, err
	}
	return rec, nil
}

// Trades returns every journaled trade, oldest first.
func (j *SQLite) Trades(ctx context.Context) ([]types.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT raw_json FROM trades ORDER BY timestamp, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.TradeRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec types.TradeRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TickerCounts returns the number of trades per ticker.
func (j *SQLite) TickerCounts(ctx context.Context) (map[string]int, error) {
	return j.groupCount(ctx, "ticker")
}

func (j *SQLite) directionCounts(ctx context.Context) (map[string]int, error) {
	return j.groupCount(ctx, "direction")
}

// groupCount runs COUNT(*) grouped by one of the fixed column names above.
func (j *SQLite) groupCount(ctx context.Context, column string) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM trades GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// Stats computes the dashboard aggregates. Counts come from SQL; PnL sums are
// done with decimals over the pnl_amount column, since SQLite would sum the
// text amounts as floats.
func (j *SQLite) Stats(ctx context.Context) (types.Stats, error) {
	st := types.Stats{
		TotalPnL:      decimal.Zero,
		AveragePnL:    decimal.Zero,
		UniqueTickers: []string{},
		PnLHistory:    []types.PnLPoint{},
	}

	dirs, err := j.directionCounts(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("direction counts: %w", err)
	}
	st.Directions = dirs
	for _, n := range dirs {
		st.TotalTrades += n
	}

	tickers, err := j.TickerCounts(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("ticker counts: %w", err)
	}
	for t := range tickers {
		if t != "" && t != types.UnknownTicker {
			st.UniqueTickers = append(st.UniqueTickers, t)
		}
	}
	sort.Strings(st.UniqueTickers)

	var bestID, worstID string
	var best, worst decimal.Decimal
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, ticker, timestamp, pnl_amount FROM trades
		WHERE pnl_amount IS NOT NULL ORDER BY timestamp, rowid`)
	if err != nil {
		return types.Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, ticker, ts, amount string
		if err := rows.Scan(&id, &ticker, &ts, &amount); err != nil {
			return types.Stats{}, err
		}
		pnl, err := decimal.NewFromString(amount)
		if err != nil {
			continue
		}
		at, _ := time.Parse(tsLayout, ts)

		st.TradesWithPnL++
		st.TotalPnL = st.TotalPnL.Add(pnl)
		switch {
		case pnl.IsPositive():
			st.WinningTrades++
		case pnl.IsNegative():
			st.LosingTrades++
		}
		if bestID == "" || pnl.GreaterThan(best) {
			bestID, best = id, pnl
		}
		if worstID == "" || pnl.LessThan(worst) {
			worstID, worst = id, pnl
		}
		st.PnLHistory = append(st.PnLHistory, types.PnLPoint{Date: at, PnL: pnl, Ticker: ticker, TradeID: id})
	}
	if err := rows.Err(); err != nil {
		return types.Stats{}, err
	}

	if st.TradesWithPnL > 0 {
		st.WinRate = math.Round(float64(st.WinningTrades)/float64(st.TradesWithPnL)*10000) / 100
		st.AveragePnL = st.TotalPnL.Div(decimal.NewFromInt(int64(st.TradesWithPnL))).Round(2)
		if st.BestTrade, err = j.tradePtr(ctx, bestID); err != nil {
			return types.Stats{}, err
		}
		if st.WorstTrade, err = j.tradePtr(ctx, worstID); err != nil {
			return types.Stats{}, err
		}
	}

	var latestID string
	err = j.db.QueryRowContext(ctx, `SELECT trade_id FROM trades ORDER BY timestamp DESC, rowid DESC LIMIT 1`).Scan(&latestID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return types.Stats{}, err
	default:
		if st.LatestTrade, err = j.tradePtr(ctx, latestID); err != nil {
			return types.Stats{}, err
		}
	}
	return st, nil
}

func (j *SQLite) tradePtr(ctx context.Context, id string) (*types.TradeRecord, error) {
	rec, err := j.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
