package store

// schemaSQL defines the SQLite schema for the wikihop database.
const schemaSQL = `
-- non-redirect and redirect pages by canonical ID
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,              -- underscore form, e.g. Computer_science
    is_redirect INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_pages_title ON pages (title COLLATE NOCASE);

-- adjacency lists plus precomputed degree counters per page.
-- The counters must always equal the cardinality of their lists;
-- the engine reads them instead of the lists to estimate fan-out.
CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY,
    outgoing_links_count INTEGER NOT NULL,
    incoming_links_count INTEGER NOT NULL,
    outgoing_links TEXT NOT NULL,     -- '|'-separated page IDs
    incoming_links TEXT NOT NULL      -- '|'-separated page IDs
);

-- redirect aliases resolved during title lookup
CREATE TABLE IF NOT EXISTS redirects (
    source_id INTEGER PRIMARY KEY,
    target_id INTEGER NOT NULL
);

-- one row per completed search, written after the response is computed
CREATE TABLE IF NOT EXISTS searches (
    source_id INTEGER NOT NULL,
    target_id INTEGER NOT NULL,
    duration REAL NOT NULL,           -- seconds
    degrees_count INTEGER,            -- NULL when no path exists
    paths_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
`

// initSchema creates all tables if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
