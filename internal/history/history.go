// Package history keeps a local journal of decompose and analyze runs in
// SQLite, so `bpkit check` can show what happened to a project over time.
// History is best-effort: a project that cannot open its journal still
// decomposes and analyzes normally.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunKind distinguishes journal entries.
type RunKind string

const (
	RunDecompose RunKind = "decompose"
	RunAnalyze   RunKind = "analyze"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID            string
	Kind          RunKind
	DeckVersion   string
	Constitutions int
	Errors        int
	Warnings      int
	DurationMS    int64
	StartedAt     time.Time
}

// Store is the run journal. SQLite with WAL mode; a single connection
// because SQLite allows one writer at a time.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to history database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one run. The generated run id is returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, deck_version, constitutions, errors, warnings, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), string(run.Kind), run.DeckVersion, run.Constitutions,
		run.Errors, run.Warnings, run.DurationMS, run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id.String(), nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, deck_version, constitutions, errors, warnings, duration_ms, started_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var kind, startedAt string
		if err := rows.Scan(&r.ID, &kind, &r.DeckVersion, &r.Constitutions,
			&r.Errors, &r.Warnings, &r.DurationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Kind = RunKind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = ts
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
