// Package history handles SQLite persistence of finished focus sessions.
// The log is local-only and informational: reporting totals remain the
// backend's job, this just feeds the "today" figure in the status bar.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// Entry is one finished session.
type Entry struct {
	SessionID       string
	Tag             string
	DurationMinutes int
	ElapsedSeconds  int
	Outcome         Outcome
	Note            string
	StartedAt       time.Time
	EndedAt         time.Time
}

// Summary aggregates finished sessions over a day.
type Summary struct {
	Sessions       int
	FocusedSeconds int
}

// Store wraps SQLite access for the session log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			note TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Insert stores a finished session.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, tag, duration_minutes, elapsed_seconds, outcome, note, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID,
		e.Tag,
		e.DurationMinutes,
		e.ElapsedSeconds,
		string(e.Outcome),
		e.Note,
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.EndedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// DaySummary returns the number of completed sessions and total focused
// seconds for the calendar day containing t, in t's location. Cancelled
// sessions are excluded from both figures.
func (s *Store) DaySummary(ctx context.Context, t time.Time) (Summary, error) {
	year, month, day := t.Date()
	from := time.Date(year, month, day, 0, 0, 0, 0, t.Location()).UTC()
	to := from.Add(24 * time.Hour)

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(elapsed_seconds), 0)
		 FROM sessions
		 WHERE outcome = ? AND ended_at >= ? AND ended_at < ?`,
		string(OutcomeCompleted),
		from.Format(time.RFC3339Nano),
		to.Format(time.RFC3339Nano),
	)

	var sum Summary
	if err := row.Scan(&sum.Sessions, &sum.FocusedSeconds); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// Recent returns the most recent finished sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, tag, duration_minutes, elapsed_seconds, outcome, note, started_at, ended_at
		 FROM sessions
		 ORDER BY ended_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var outcome, startedAt, endedAt string
		if err := rows.Scan(&e.SessionID, &e.Tag, &e.DurationMinutes, &e.ElapsedSeconds, &outcome, &e.Note, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		e.Outcome = Outcome(outcome)
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if e.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
