package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the journal schema.
// Times are stored as Unix nanoseconds so both drivers compare them the same way.
const Schema = `
-- Analysis records table
CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    user_id TEXT NOT NULL,

    -- Timestamps
    time_ns INTEGER NOT NULL,
    recorded_time_ns INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,

    -- Execution context
    mode TEXT NOT NULL,
    provider TEXT NOT NULL,
    model TEXT,
    demo BOOLEAN NOT NULL DEFAULT 0,

    -- Document
    fingerprint TEXT,
    pages INTEGER NOT NULL DEFAULT 0,
    chunks INTEGER NOT NULL DEFAULT 0,

    -- Usage
    calls INTEGER NOT NULL DEFAULT 0,
    cache_hits INTEGER NOT NULL DEFAULT 0,
    tokens_in INTEGER NOT NULL DEFAULT 0,
    tokens_out INTEGER NOT NULL DEFAULT 0,
    estimated_cost REAL NOT NULL DEFAULT 0,

    -- Outcome
    risk_score INTEGER NOT NULL DEFAULT 0,
    risk_label TEXT,
    status TEXT NOT NULL,
    error_kind TEXT,
    error TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_analyses_time ON analyses(time_ns);
CREATE INDEX IF NOT EXISTS idx_analyses_user_id ON analyses(user_id);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_fingerprint ON analyses(fingerprint);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const recordColumns = `id, request_id, user_id,
	time_ns, recorded_time_ns, duration_ms,
	mode, provider, model, demo,
	fingerprint, pages, chunks,
	calls, cache_hits, tokens_in, tokens_out, estimated_cost,
	risk_score, risk_label, status, error_kind, error`
