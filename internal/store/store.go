// Package store keeps run history in a SQLite database that lives next
// to the produced clips.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clipkit/clipkit/internal/types"
)

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

type Run struct {
	ID         string
	Input      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is still going
	Status     string
	Clips      int
	Err        string
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			clips INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS clips (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			clip_id TEXT NOT NULL,
			start_sec REAL NOT NULL,
			end_sec REAL NOT NULL,
			score INTEGER NOT NULL,
			text TEXT NOT NULL,
			file TEXT NOT NULL,
			captioned INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateRun(ctx context.Context, id, input string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, started_at, status) VALUES (?, ?, ?, ?)`,
		id, input, now, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, id, status string, clips int, runErr string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, clips = ?, error = ? WHERE id = ?`,
		now, status, clips, nullableString(runErr), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func (s *Store) AddClip(ctx context.Context, runID string, clip types.ManifestClip) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clips (run_id, clip_id, start_sec, end_sec, score, text, file, captioned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, clip.ID, clip.StartSec, clip.EndSec, clip.Score, clip.Text, clip.File, boolToInt(clip.Captioned),
	)
	if err != nil {
		return fmt.Errorf("insert clip: %w", err)
	}
	return nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, started_at, finished_at, status, clips, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RunClips(ctx context.Context, runID string) ([]types.ManifestClip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT clip_id, start_sec, end_sec, score, text, file, captioned
		 FROM clips WHERE run_id = ? ORDER BY start_sec`, runID)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	var out []types.ManifestClip
	for rows.Next() {
		var (
			c         types.ManifestClip
			captioned int
		)
		if err := rows.Scan(&c.ID, &c.StartSec, &c.EndSec, &c.Score, &c.Text, &c.File, &captioned); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		c.Captioned = captioned != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		r          Run
		startedAt  string
		finishedAt sql.NullString
		runErr     sql.NullString
	)
	if err := scanner.Scan(&r.ID, &r.Input, &startedAt, &finishedAt, &r.Status, &r.Clips, &runErr); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.StartedAt = parseTimeString(startedAt)
	if finishedAt.Valid {
		r.FinishedAt = parseTimeString(finishedAt.String)
	}
	if runErr.Valid {
		r.Err = runErr.String
	}
	return r, nil
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
