package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
	transaction_id TEXT PRIMARY KEY,
	position       INTEGER NOT NULL,
	description    TEXT NOT NULL,
	amount         TEXT NOT NULL,
	tx_date        TEXT NOT NULL,
	tx_type        TEXT NOT NULL CHECK (tx_type IN ('income', 'expense')),
	category       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	goal_id       TEXT PRIMARY KEY,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	target_amount TEXT NOT NULL,
	is_completed  INTEGER NOT NULL DEFAULT 0,
	budget_plan   TEXT NOT NULL DEFAULT '',
	plan_status   TEXT NOT NULL DEFAULT 'idle'
);

CREATE TABLE IF NOT EXISTS categories (
	label    TEXT PRIMARY KEY,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_state (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	points     INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);
`
