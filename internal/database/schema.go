package database

// schemas maps database names to their DDL. Statements use IF NOT
// EXISTS so Migrate is safe to run on every startup.
var schemas = map[string]string{
	"proposals":  proposalsSchema,
	"chaincache": chainCacheSchema,
}

const proposalsSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    mode TEXT NOT NULL,
    allocation TEXT NOT NULL,
    cash_usd REAL NOT NULL,
    budget_equity_usd REAL NOT NULL,
    budget_options_usd REAL NOT NULL,
    n_bullish INTEGER NOT NULL DEFAULT 0,
    n_bearish INTEGER NOT NULL DEFAULT 0,
    note TEXT
);

CREATE TABLE IF NOT EXISTS proposals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    ticker TEXT NOT NULL,
    direction TEXT,
    sleeve TEXT,
    score REAL,
    est_cost_usd REAL NOT NULL,
    contracts INTEGER,
    qty REAL,
    limit_price REAL,
    option_symbol TEXT,
    option_type TEXT,
    option_price REAL,
    option_delta REAL,
    notes TEXT,
    UNIQUE(run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_proposals_run ON proposals(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

const chainCacheSchema = `
CREATE TABLE IF NOT EXISTS chain_snapshots (
    underlying TEXT PRIMARY KEY,
    fetched_at TEXT NOT NULL,
    payload BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chain_fetched ON chain_snapshots(fetched_at);
`
