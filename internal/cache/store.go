// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists each run's enrichment batch to a local SQLite
// database. The cache exists for debugging: it lets a run's results be
// inspected or re-exported after the email has gone out, and old runs are
// pruned rather than kept forever.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperfetch/pkg/types"
)

const dbFile = "paperfetch.db"

// Store manages the run cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database under cfg.Dir (default
// "cache"), creating the schema if needed.
func Open(cfg types.CacheConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
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
			query TEXT NOT NULL,
			window_from TEXT NOT NULL,
			window_to TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			score INTEGER,
			rating_failure TEXT,
			bullets TEXT,
			summary_failure TEXT,
			url TEXT,
			PRIMARY KEY (run_id, title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunInfo summarizes one cached run.
type RunInfo struct {
	ID        int64     `json:"id" yaml:"id"`
	Query     string    `json:"query" yaml:"query"`
	From      time.Time `json:"from" yaml:"from"`
	To        time.Time `json:"to" yaml:"to"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Papers    int       `json:"papers" yaml:"papers"`
}

// SaveRun stores a completed batch and returns the run id.
func (s *Store) SaveRun(ctx context.Context, query string, from, to time.Time, batch types.ResultBatch) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, window_from, window_to, created_at) VALUES (?, ?, ?, ?)`,
		query,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for title, result := range batch {
		var score any
		if result.Rating.OK() {
			score = result.Rating.Score
		}
		var bullets any
		if result.Summary.OK() {
			data, err := json.Marshal(result.Summary.Bullets)
			if err != nil {
				return 0, fmt.Errorf("marshaling bullets for %q: %w", title, err)
			}
			bullets = string(data)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, title, score, rating_failure, bullets, summary_failure, url)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, title, score, result.Rating.FailureReason, bullets, result.Summary.FailureReason, result.URL,
		); err != nil {
			return 0, fmt.Errorf("inserting result for %q: %w", title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// LoadRun rebuilds the batch for one cached run.
func (s *Store) LoadRun(ctx context.Context, runID int64) (RunInfo, types.ResultBatch, error) {
	info, err := s.runInfo(ctx, runID)
	if err != nil {
		return RunInfo{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, score, rating_failure, bullets, summary_failure, url
		 FROM results WHERE run_id = ?`, runID)
	if err != nil {
		return RunInfo{}, nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	batch := make(types.ResultBatch)
	for rows.Next() {
		var (
			title, ratingFailure, summaryFailure, url string
			score                                     sql.NullInt64
			bulletsJSON                               sql.NullString
		)
		if err := rows.Scan(&title, &score, &ratingFailure, &bulletsJSON, &summaryFailure, &url); err != nil {
			return RunInfo{}, nil, fmt.Errorf("scanning result: %w", err)
		}

		var summary types.SummaryOutcome
		if bulletsJSON.Valid {
			var bullets []string
			if err := json.Unmarshal([]byte(bulletsJSON.String), &bullets); err != nil {
				return RunInfo{}, nil, fmt.Errorf("parsing bullets for %q: %w", title, err)
			}
			summary = types.Summarized(bullets)
		} else {
			summary = types.SummaryFailed(summaryFailure)
		}

		var rating types.RatingOutcome
		if score.Valid {
			rating = types.Rated(int(score.Int64))
		} else {
			rating = types.RatingFailed(ratingFailure)
		}

		batch[title] = types.EnrichmentResult{Summary: summary, Rating: rating, URL: url}
	}
	if err := rows.Err(); err != nil {
		return RunInfo{}, nil, fmt.Errorf("iterating results: %w", err)
	}

	info.Papers = len(batch)
	return info, batch, nil
}

func (s *Store) runInfo(ctx context.Context, runID int64) (RunInfo, error) {
	var (
		info                      RunInfo
		fromStr, toStr, createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, window_from, window_to, created_at FROM runs WHERE id = ?`, runID,
	).Scan(&info.ID, &info.Query, &fromStr, &toStr, &createdAt)
	if err == sql.ErrNoRows {
		return RunInfo{}, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("querying run %d: %w", runID, err)
	}

	info.From, _ = time.Parse(time.RFC3339, fromStr)
	info.To, _ = time.Parse(time.RFC3339, toStr)
	info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return info, nil
}

// ListRuns returns all cached runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.query, r.window_from, r.window_to, r.created_at, COUNT(res.title)
		 FROM runs r LEFT JOIN results res ON res.run_id = r.id
		 GROUP BY r.id ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info                      RunInfo
			fromStr, toStr, createdAt string
		)
		if err := rows.Scan(&info.ID, &info.Query, &fromStr, &toStr, &createdAt, &info.Papers); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		info.From, _ = time.Parse(time.RFC3339, fromStr)
		info.To, _ = time.Parse(time.RFC3339, toStr)
		info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were
// removed. A non-positive keep defaults to 20.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		keep = 20
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading pruned count: %w", err)
	}
	return int(n), nil
}
