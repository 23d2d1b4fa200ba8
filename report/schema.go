package report

// Schema is the DDL for the healing history database.
const Schema = `
-- Healing events: every heal, suggestion and exhaustion across runs.
CREATE TABLE IF NOT EXISTS heals (
    id           TEXT PRIMARY KEY,
    test_file    TEXT NOT NULL DEFAULT '',
    old_selector TEXT NOT NULL,
    new_selector TEXT NOT NULL DEFAULT '',
    strategy     TEXT NOT NULL DEFAULT '',
    action       TEXT NOT NULL,
    attempts     INTEGER NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_heals_action ON heals(action);
CREATE INDEX IF NOT EXISTS idx_heals_file ON heals(test_file);
CREATE INDEX IF NOT EXISTS idx_heals_created ON heals(created_at DESC);
`
