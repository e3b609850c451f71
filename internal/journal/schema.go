package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry_price TEXT,
	exit_price TEXT,
	pnl_amount TEXT,
	confidence REAL NOT NULL,
	timestamp TEXT NOT NULL,
	source_image_path TEXT NOT NULL,
	raw_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);
CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker);
`
