// Package store persists resolve-run history in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run is one recorded resolve run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Species      int
	Resolved     int
	Unresolved   int
	Annotated    int
	Workers      int
	RateInterval time.Duration
	CacheDir     string
	StatusPath   string
}

// Store wraps the run-history database. Failures recording history never
// abort a resolve run; callers log and continue.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and
// configures WAL mode.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "store: create dir %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	started_at       DATETIME NOT NULL,
	finished_at      DATETIME NOT NULL,
	species          INTEGER NOT NULL,
	resolved         INTEGER NOT NULL,
	unresolved       INTEGER NOT NULL,
	annotated        INTEGER NOT NULL,
	workers          INTEGER NOT NULL,
	rate_interval_ms INTEGER NOT NULL,
	cache_dir        TEXT NOT NULL,
	status_path      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Migrate brings the schema current.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run row and returns its generated id.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs
			(id, started_at, finished_at, species, resolved, unresolved,
			 annotated, workers, rate_interval_ms, cache_dir, status_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Species, run.Resolved, run.Unresolved, run.Annotated,
		run.Workers, run.RateInterval.Milliseconds(),
		run.CacheDir, run.StatusPath,
	)
	if err != nil {
		return "", eris.Wrap(err, "store: insert run")
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, species, resolved, unresolved,
		        annotated, workers, rate_interval_ms, cache_dir, status_path
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var intervalMS int64
		if err := rows.Scan(
			&run.ID, &run.StartedAt, &run.FinishedAt,
			&run.Species, &run.Resolved, &run.Unresolved, &run.Annotated,
			&run.Workers, &intervalMS, &run.CacheDir, &run.StatusPath,
		); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		run.RateInterval = time.Duration(intervalMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "store: iterate runs")
}
