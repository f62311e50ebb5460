package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	recorded_at DATETIME NOT NULL,
	params TEXT NOT NULL,
	processed INTEGER NOT NULL,
	unprocessed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	run_id TEXT NOT NULL,
	key TEXT NOT NULL,
	label TEXT NOT NULL,
	book TEXT NOT NULL,
	asset TEXT NOT NULL,
	size REAL NOT NULL,
	size_type TEXT NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (run_id, key)
);

CREATE TABLE IF NOT EXISTS book_history (
	run_id TEXT NOT NULL,
	book TEXT NOT NULL,
	ts DATETIME NOT NULL,
	cash REAL NOT NULL,
	mtm REAL NOT NULL,
	total REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_book_history_run ON book_history(run_id, book, ts);
`
