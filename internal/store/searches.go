package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SearchRecord describes one completed search for the analytics log.
type SearchRecord struct {
	SourceID int64
	TargetID int64
	Duration time.Duration
	Paths    [][]int64
}

// RecordSearch appends a search to the searches table. Callers treat
// failures as non-fatal: the search result has already been computed
// and must not be overturned by a logging problem.
func (s *Store) RecordSearch(ctx context.Context, rec SearchRecord) error {
	var degrees sql.NullInt64
	if len(rec.Paths) > 0 {
		degrees = sql.NullInt64{Int64: int64(len(rec.Paths[0]) - 1), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (source_id, target_id, duration, degrees_count, paths_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SourceID, rec.TargetID, rec.Duration.Seconds(), degrees, len(rec.Paths),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert search record: %w", err)
	}
	return nil
}
