// Package store provides SQLite-backed persistence for the page link
// graph: page titles, redirects, per-page adjacency lists with
// precomputed degree counters, and the searches log. The graph tables
// are written once by the loader and treated as immutable afterwards;
// the store supports any number of concurrent readers.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store manages the wikihop SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the database at dbPath, creating parent
// directories as needed and initializing the schema if the database
// is new.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}

	// Enable WAL mode for better concurrent read access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// OpenReadOnly opens an existing database at dbPath without write
// access. Loading and analytics inserts fail on a read-only store;
// queries and searches work as usual.
func OpenReadOnly(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Stats holds table counts for the status command.
type Stats struct {
	PageCount     int64
	LinkCount     int64
	RedirectCount int64
	SearchCount   int64
}

// GetStats returns statistics about the database contents.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	for _, q := range []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM pages", &stats.PageCount},
		{"SELECT COUNT(*) FROM links", &stats.LinkCount},
		{"SELECT COUNT(*) FROM redirects", &stats.RedirectCount},
		{"SELECT COUNT(*) FROM searches", &stats.SearchCount},
	} {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count rows: %w", err)
		}
	}

	return &stats, nil
}
