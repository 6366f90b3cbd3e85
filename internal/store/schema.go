package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS prices (
    date                 TEXT PRIMARY KEY,
    price                REAL NOT NULL,
    source               TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fetch_log (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    source               TEXT NOT NULL,
    fetched_at           TEXT NOT NULL,
    points               INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetch_log_time ON fetch_log(fetched_at);
`
