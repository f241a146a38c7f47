package journal

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	symbol TEXT NOT NULL,
	created DATETIME NOT NULL,
	start DATETIME NOT NULL,
	end DATETIME NOT NULL,
	initial_balance REAL NOT NULL,
	final_equity REAL NOT NULL,
	trades INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fills (
	run_id TEXT NOT NULL,
	fill_id INTEGER NOT NULL,
	order_id INTEGER NOT NULL,
	timestamp DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	qty INTEGER NOT NULL,
	side TEXT NOT NULL,
	fill_price REAL NOT NULL,
	fees REAL NOT NULL,
	PRIMARY KEY (run_id, fill_id)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	cash REAL NOT NULL,
	margin_used REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run_time ON equity(run_id, time);
`
