package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Page is a resolved, canonical (non-redirect) page.
type Page struct {
	ID    int64
	Title string // readable form, spaces instead of underscores
}

// ErrPageNotFound is returned when a title matches no page, or when a
// redirect points at a page that no longer exists.
var ErrPageNotFound = errors.New("store: page not found")

// sanitizeTitle converts a user-supplied title to the stored underscore
// form.
func sanitizeTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// readableTitle converts a stored title back to its display form.
func readableTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

// ResolvePage returns the canonical non-redirect page for the provided
// title, handling incorrect capitalization and following redirects.
// The second return value reports whether a redirect was followed.
// Returns ErrPageNotFound if no matching page exists.
func (s *Store) ResolvePage(ctx context.Context, title string) (Page, bool, error) {
	sanitized := sanitizeTitle(title)
	if sanitized == "" {
		return Page{}, false, fmt.Errorf("%w: empty title", ErrPageNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, is_redirect FROM pages WHERE title = ? COLLATE NOCASE`,
		sanitized)
	if err != nil {
		return Page{}, false, fmt.Errorf("query pages by title: %w", err)
	}
	defer rows.Close()

	type match struct {
		id         int64
		title      string
		isRedirect bool
	}

	var matches []match
	for rows.Next() {
		var m match
		if err := rows.Scan(&m.id, &m.title, &m.isRedirect); err != nil {
			return Page{}, false, fmt.Errorf("scan page row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return Page{}, false, fmt.Errorf("iterate page rows: %w", err)
	}

	if len(matches) == 0 {
		return Page{}, false, fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}

	// The lookup is case-insensitive, so several pages can match.
	// Prefer a non-redirect page whose title matches exactly.
	for _, m := range matches {
		if m.title == sanitized && !m.isRedirect {
			return Page{ID: m.id, Title: readableTitle(m.title)}, false, nil
		}
	}

	// Next, any non-redirect match.
	for _, m := range matches {
		if !m.isRedirect {
			return Page{ID: m.id, Title: readableTitle(m.title)}, false, nil
		}
	}

	// All matches are redirects: follow the first one to its target.
	var page Page
	var storedTitle string
	err = s.db.QueryRowContext(ctx,
		`SELECT pages.id, pages.title
		 FROM redirects JOIN pages ON pages.id = redirects.target_id
		 WHERE redirects.source_id = ?`,
		matches[0].id).Scan(&page.ID, &storedTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, false, fmt.Errorf("%w: %q (dangling redirect)", ErrPageNotFound, title)
	}
	if err != nil {
		return Page{}, false, fmt.Errorf("follow redirect: %w", err)
	}

	page.Title = readableTitle(storedTitle)
	return page, true, nil
}

// PageTitles returns the readable title of every provided page ID in a
// single batched query. IDs with no matching page are omitted from the
// result.
func (s *Store) PageTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	titles := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	query := `SELECT id, title FROM pages WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query page titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan title row: %w", err)
		}
		titles[id] = readableTitle(title)
	}
	return titles, rows.Err()
}

// placeholders returns "?,?,...,?" with n placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
