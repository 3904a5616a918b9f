// Package store keeps a history of jumpcut runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one row of the runs table.
type Run struct {
	ID               string
	Input            string
	Output           string
	PlanPath         string
	Status           Status
	OriginalDuration float64
	EditedDuration   float64
	RemovedDuration  float64
	Error            string
	CreatedAt        time.Time
	FinishedAt       time.Time
}

// Outcome is what Finish records once a run completes.
type Outcome struct {
	Output           string
	PlanPath         string
	OriginalDuration float64
	EditedDuration   float64
	RemovedDuration  float64
	Err              error
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	plan_path TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	original_duration REAL NOT NULL DEFAULT 0,
	edited_duration REAL NOT NULL DEFAULT 0,
	removed_duration REAL NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open creates or connects to the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a running entry for input and returns its id.
func (s *Store) Record(ctx context.Context, input string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, status, created_at) VALUES (?, ?, ?, ?)`,
		id, input, string(StatusRunning), formatTime(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// Finish marks a run as succeeded, or failed when out.Err is set.
func (s *Store) Finish(ctx context.Context, id string, out Outcome) error {
	status := StatusSucceeded
	var msg string
	if out.Err != nil {
		status = StatusFailed
		msg = out.Err.Error()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET output = ?, plan_path = ?, status = ?, original_duration = ?,
			edited_duration = ?, removed_duration = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		out.Output, out.PlanPath, string(status), out.OriginalDuration,
		out.EditedDuration, out.RemovedDuration, msg, formatTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input, output, plan_path, status, original_duration, edited_duration,
			removed_duration, error, created_at, finished_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			status            string
			created, finished string
		)
		if err := rows.Scan(&r.ID, &r.Input, &r.Output, &r.PlanPath, &status, &r.OriginalDuration,
			&r.EditedDuration, &r.RemovedDuration, &r.Error, &created, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Status = Status(status)
		r.CreatedAt = parseTime(created)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
