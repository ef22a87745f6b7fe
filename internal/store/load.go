package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Bulk import of the dump files produced by the offline pipeline.
// All three loaders read tab-separated lines and run in a single
// transaction so a failed import leaves the database unchanged.
//
// Formats:
//
//	pages:     id <TAB> title <TAB> is_redirect
//	redirects: source_id <TAB> target_id
//	links:     id <TAB> outgoing('|'-separated) <TAB> incoming('|'-separated)
//
// Degree counters are computed from the lists at load time, which keeps
// them consistent with the list cardinality by construction.

// scannerFor returns a line scanner sized for dump rows; hub pages can
// carry adjacency lists of tens of thousands of IDs on one line.
func scannerFor(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return sc
}

// LoadPages imports pages rows. Pages flagged as redirects that have no
// row in the redirects table can be removed afterwards with
// PruneDanglingRedirects.
func (s *Store) LoadPages(r io.Reader) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin pages load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO pages (id, title, is_redirect) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare pages insert: %w", err)
	}
	defer stmt.Close()

	var count int64
	sc := scannerFor(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return 0, fmt.Errorf("pages line %d: expected 3 fields, got %d", count+1, len(fields))
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("pages line %d: parse id: %w", count+1, err)
		}
		isRedirect := fields[2] == "1"

		if _, err := stmt.Exec(id, fields[1], isRedirect); err != nil {
			return 0, fmt.Errorf("insert page %d: %w", id, err)
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read pages file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit pages load: %w", err)
	}
	return count, nil
}

// LoadRedirects imports redirect rows.
func (s *Store) LoadRedirects(r io.Reader) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin redirects load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO redirects (source_id, target_id) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare redirects insert: %w", err)
	}
	defer stmt.Close()

	var count int64
	sc := scannerFor(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return 0, fmt.Errorf("redirects line %d: expected 2 fields, got %d", count+1, len(fields))
		}

		source, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("redirects line %d: parse source: %w", count+1, err)
		}
		target, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("redirects line %d: parse target: %w", count+1, err)
		}

		if _, err := stmt.Exec(source, target); err != nil {
			return 0, fmt.Errorf("insert redirect %d: %w", source, err)
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read redirects file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit redirects load: %w", err)
	}
	return count, nil
}

// LoadLinks imports adjacency rows, computing both degree counters from
// the lists.
func (s *Store) LoadLinks(r io.Reader) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin links load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO links
		 (id, outgoing_links_count, incoming_links_count, outgoing_links, incoming_links)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare links insert: %w", err)
	}
	defer stmt.Close()

	var count int64
	sc := scannerFor(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return 0, fmt.Errorf("links line %d: expected 3 fields, got %d", count+1, len(fields))
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("links line %d: parse id: %w", count+1, err)
		}

		outgoing := linkCount(fields[1])
		incoming := linkCount(fields[2])

		if _, err := stmt.Exec(id, outgoing, incoming, fields[1], fields[2]); err != nil {
			return 0, fmt.Errorf("insert links %d: %w", id, err)
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read links file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit links load: %w", err)
	}
	return count, nil
}

// PruneDanglingRedirects removes redirect rows whose target page does
// not exist and pages flagged as redirects that have no redirect row.
// Mirrors the pruning the offline pipeline applies to the raw dump.
func (s *Store) PruneDanglingRedirects() (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM redirects WHERE target_id NOT IN (SELECT id FROM pages WHERE is_redirect = 0)`)
	if err != nil {
		return 0, fmt.Errorf("prune dangling redirects: %w", err)
	}
	redirects, _ := res.RowsAffected()

	res, err = s.db.Exec(
		`DELETE FROM pages WHERE is_redirect = 1 AND id NOT IN (SELECT source_id FROM redirects)`)
	if err != nil {
		return 0, fmt.Errorf("prune redirect pages: %w", err)
	}
	pages, _ := res.RowsAffected()

	return redirects + pages, nil
}

func linkCount(list string) int {
	if list == "" {
		return 0
	}
	return strings.Count(list, "|") + 1
}
