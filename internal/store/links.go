package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wikihop/wikihop/internal/search"
)

// Neighbors returns the adjacency list in the given direction for every
// requested page ID, in one bulk query. Every requested ID gets an entry;
// pages without a links row get an empty slice.
func (s *Store) Neighbors(ctx context.Context, dir search.Direction, ids []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(ids))
	for _, id := range ids {
		out[id] = nil
	}
	if len(ids) == 0 {
		return out, nil
	}

	column := "outgoing_links"
	if dir == search.Incoming {
		column = "incoming_links"
	}

	query := `SELECT id, ` + column + ` FROM links WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query %s links: %w", dir, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var list string
		if err := rows.Scan(&id, &list); err != nil {
			return nil, fmt.Errorf("scan links row: %w", err)
		}
		neighbors, err := parseLinkList(list)
		if err != nil {
			return nil, fmt.Errorf("links row %d: %w", id, err)
		}
		out[id] = neighbors
	}
	return out, rows.Err()
}

// DegreeSum returns the sum of the precomputed link counters in the
// given direction over the requested page IDs.
func (s *Store) DegreeSum(ctx context.Context, dir search.Direction, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	column := "outgoing_links_count"
	if dir == search.Incoming {
		column = "incoming_links_count"
	}

	query := `SELECT COALESCE(SUM(` + column + `), 0) FROM links WHERE id IN (` + placeholders(len(ids)) + `)`

	var sum int64
	if err := s.db.QueryRowContext(ctx, query, idArgs(ids)...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum %s degrees: %w", dir, err)
	}
	return sum, nil
}

// parseLinkList splits a '|'-separated ID list as stored in the links
// table. An empty string means no links.
func parseLinkList(list string) ([]int64, error) {
	if list == "" {
		return nil, nil
	}

	parts := strings.Split(list, "|")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse link ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var _ search.GraphStore = (*Store)(nil)
