// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state records sync runs and per-file outcomes in a SQLite index.
package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/handbook-sync/pkg/types"
)

// Store manages the sync-state SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating its directory and
// schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			endpoint TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			created INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			output_dir TEXT NOT NULL,
			path TEXT NOT NULL,
			item_id INTEGER NOT NULL,
			link TEXT,
			title TEXT,
			sha256 TEXT NOT NULL,
			outcome TEXT NOT NULL,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			synced_at TEXT NOT NULL,
			PRIMARY KEY (output_dir, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded sync run.
type Run struct {
	ID         int64     `json:"id" yaml:"id"`
	Endpoint   string    `json:"endpoint" yaml:"endpoint"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Created    int       `json:"created" yaml:"created"`
	Updated    int       `json:"updated" yaml:"updated"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
}

// File is the last recorded state of one output file.
type File struct {
	OutputDir string        `json:"output_dir" yaml:"output_dir"`
	Path      string        `json:"path" yaml:"path"`
	ItemID    int64         `json:"item_id" yaml:"item_id"`
	Link      string        `json:"link" yaml:"link"`
	Title     string        `json:"title" yaml:"title"`
	SHA256    string        `json:"sha256" yaml:"sha256"`
	Outcome   types.Outcome `json:"outcome" yaml:"outcome"`
	RunID     int64         `json:"run_id" yaml:"run_id"`
	SyncedAt  time.Time     `json:"synced_at" yaml:"synced_at"`
}

// BeginRun inserts a run row and returns its ID.
func (s *Store) BeginRun(ctx context.Context, endpoint, outputDir string, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (endpoint, output_dir, started_at) VALUES (?, ?, ?)`,
		endpoint, outputDir, formatTime(startedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// RecordFile upserts the state of one output file for runID.
func (s *Store) RecordFile(ctx context.Context, runID int64, outputDir, path string, item types.Item, doc string, outcome types.Outcome, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (output_dir, path, item_id, link, title, sha256, outcome, run_id, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(output_dir, path) DO UPDATE SET
			item_id = excluded.item_id,
			link = excluded.link,
			title = excluded.title,
			sha256 = excluded.sha256,
			outcome = excluded.outcome,
			run_id = excluded.run_id,
			synced_at = excluded.synced_at`,
		outputDir, path, item.ID, item.Link, item.Title, Digest(doc), string(outcome), runID, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("recording file %s: %w", path, err)
	}
	return nil
}

// FinishRun stores the final counts of runID.
func (s *Store) FinishRun(ctx context.Context, runID int64, created, updated, skipped int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, created = ?, updated = ?, skipped = ? WHERE id = ?`,
		formatTime(at), created, updated, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	return nil
}

// Runs returns the most recent runs first, at most limit rows (0 = all).
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, endpoint, output_dir, started_at, COALESCE(finished_at, ''), created, updated, skipped
		FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Endpoint, &r.OutputDir, &started, &finished, &r.Created, &r.Updated, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the recorded files ordered by output directory and path.
// An empty outputDir returns files for every directory.
func (s *Store) Files(ctx context.Context, outputDir string) ([]File, error) {
	query := `SELECT output_dir, path, item_id, COALESCE(link, ''), COALESCE(title, ''), sha256, outcome, run_id, synced_at
		FROM files`
	var args []any
	if outputDir != "" {
		query += ` WHERE output_dir = ?`
		args = append(args, outputDir)
	}
	query += ` ORDER BY output_dir, path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var outcome, synced string
		if err := rows.Scan(&f.OutputDir, &f.Path, &f.ItemID, &f.Link, &f.Title, &f.SHA256, &outcome, &f.RunID, &synced); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		f.Outcome = types.Outcome(outcome)
		f.SyncedAt = parseTime(synced)
		files = append(files, f)
	}
	return files, rows.Err()
}

// Digest returns the hex SHA-256 of a rendered document.
func Digest(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return hex.EncodeToString(sum[:])
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
