// Package history persists the outcome of room checks so operators can see
// what was live, when, and which strategy produced the data.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Check is one row of check history.
type Check struct {
	RoomURL   string
	Title     string
	Author    string
	Live      bool
	Strategy  string
	CheckedAt time.Time
}

// Store is a sqlite-backed check history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_url TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		live INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		checked_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checks_room ON checks(room_url, checked_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record appends one check.
func (s *Store) Record(c Check) error {
	_, err := s.db.Exec(
		`INSERT INTO checks (room_url, title, author, live, strategy, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.RoomURL, c.Title, c.Author, boolToInt(c.Live), c.Strategy, c.CheckedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording check: %w", err)
	}
	return nil
}

// Recent returns the newest checks, most recent first.
func (s *Store) Recent(limit int) ([]Check, error) {
	rows, err := s.db.Query(
		`SELECT room_url, title, author, live, strategy, checked_at
		 FROM checks ORDER BY checked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying checks: %w", err)
	}
	defer rows.Close()
	return scanChecks(rows)
}

// RoomLatest returns the most recent check of one room, or nil when the
// room was never checked.
func (s *Store) RoomLatest(roomURL string) (*Check, error) {
	rows, err := s.db.Query(
		`SELECT room_url, title, author, live, strategy, checked_at
		 FROM checks WHERE room_url = ? ORDER BY checked_at DESC, id DESC LIMIT 1`, roomURL)
	if err != nil {
		return nil, fmt.Errorf("querying room: %w", err)
	}
	defer rows.Close()

	checks, err := scanChecks(rows)
	if err != nil || len(checks) == 0 {
		return nil, err
	}
	return &checks[0], nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanChecks(rows *sql.Rows) ([]Check, error) {
	var out []Check
	for rows.Next() {
		var c Check
		var live int
		if err := rows.Scan(&c.RoomURL, &c.Title, &c.Author, &live, &c.Strategy, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("scanning check: %w", err)
		}
		c.Live = live != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading checks: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
