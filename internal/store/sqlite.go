// Package store persists lexicon snapshots and keeps an unbounded archive of
// every event the engine has emitted, in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/lexis/internal/lexicon"
)

// schema is executed on every open; IF NOT EXISTS keeps it idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS lexicon_state (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    generation INTEGER NOT NULL,
    body       TEXT NOT NULL,
    saved_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS event_archive (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    generation INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    body       TEXT NOT NULL,
    logged_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_archive_generation ON event_archive(generation);
`

// SQLiteStore is a snapshot store backed by SQLite in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one connection avoids SQLITE_BUSY between
	// pooled connections that would each need their own PRAGMAs.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveState replaces the stored snapshot with state.
func (s *SQLiteStore) SaveState(ctx context.Context, state *lexicon.State) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}
	const q = `
		INSERT INTO lexicon_state (id, generation, body, saved_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			generation = excluded.generation,
			body = excluded.body,
			saved_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, q, state.Generation, string(body)); err != nil {
		return fmt.Errorf("store: save state at generation %d: %w", state.Generation, err)
	}
	return nil
}

// LoadState returns the stored snapshot, normalized. The boolean is false
// when nothing has been saved yet.
func (s *SQLiteStore) LoadState(ctx context.Context) (*lexicon.State, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM lexicon_state WHERE id = 1").Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load state: %w", err)
	}
	var state lexicon.State
	if err := json.Unmarshal([]byte(body), &state); err != nil {
		return nil, false, fmt.Errorf("store: decode state: %w", err)
	}
	state.Normalize()
	return &state, true, nil
}

// ArchiveEvents appends events to the archive in one transaction.
func (s *SQLiteStore) ArchiveEvents(ctx context.Context, events []lexicon.LoggedEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin archive: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO event_archive (generation, kind, body, logged_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("store: prepare archive: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("store: encode event: %w", err)
		}
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, ev.Event.Generation(), string(ev.Event.Kind()), string(body), at.UTC()); err != nil {
			return fmt.Errorf("store: archive %s event: %w", ev.Event.Kind(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit archive: %w", err)
	}
	return nil
}

// ArchivedEvents returns up to limit archived events with generation >=
// sinceGen, oldest first. A non-positive limit returns them all.
func (s *SQLiteStore) ArchivedEvents(ctx context.Context, sinceGen, limit int) ([]lexicon.LoggedEvent, error) {
	q := "SELECT body FROM event_archive WHERE generation >= ? ORDER BY id"
	args := []any{sinceGen}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: archived events: %w", err)
	}
	defer rows.Close()

	var events []lexicon.LoggedEvent
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan archived event: %w", err)
		}
		var ev lexicon.LoggedEvent
		if err := json.Unmarshal([]byte(body), &ev); err != nil {
			return nil, fmt.Errorf("store: decode archived event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: archived events: %w", err)
	}
	return events, nil
}

// CountArchived returns the number of archived events of each kind.
func (s *SQLiteStore) CountArchived(ctx context.Context) (map[lexicon.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM event_archive GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("store: count archived: %w", err)
	}
	defer rows.Close()

	counts := make(map[lexicon.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("store: scan count: %w", err)
		}
		counts[lexicon.Kind(kind)] = n
	}
	return counts, rows.Err()
}
