package project

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord summarizes one solve or batch invocation.
type RunRecord struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"` // puzzle file or directory
	Puzzles   int       `json:"puzzles"`
	Solved    int       `json:"solved"`
	Elapsed   float64   `json:"elapsed_seconds"`
}

// PuzzleRecord is the outcome of one puzzle within a run.
type PuzzleRecord struct {
	RunID      string  `json:"run_id"`
	File       string  `json:"file"`
	Status     string  `json:"status"`
	Elapsed    float64 `json:"elapsed_seconds"`
	Candidates int     `json:"candidates"`
	BestHits   int     `json:"best_hits"`
	Layout     string  `json:"layout,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// startedLayout sorts lexically in time order.
const startedLayout = "2006-01-02T15:04:05.000000000Z"

// History is a SQLite store of past runs.
type History struct {
	db *sql.DB
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, fmt.Errorf("empty history path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initHistory(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func initHistory(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			source TEXT NOT NULL,
			puzzles INTEGER NOT NULL,
			solved INTEGER NOT NULL,
			elapsed REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS puzzles (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			file TEXT NOT NULL,
			status TEXT NOT NULL,
			elapsed REAL NOT NULL,
			candidates INTEGER NOT NULL,
			best_hits INTEGER NOT NULL,
			layout TEXT,
			error TEXT,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_puzzles_file ON puzzles(file);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to initialize history: %w", err)
		}
	}
	return nil
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.New().String()
}

// Record stores a run and its puzzle outcomes in one transaction. An empty
// run ID is filled in.
func (h *History) Record(run RunRecord, puzzles []PuzzleRecord) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := h.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs(id, started_at, source, puzzles, solved, elapsed) VALUES(?,?,?,?,?,?)`,
		run.ID, run.StartedAt.UTC().Format(startedLayout), run.Source, run.Puzzles, run.Solved, run.Elapsed,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO puzzles(run_id, seq, file, status, elapsed, candidates, best_hits, layout, error) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare puzzle insert: %w", err)
	}
	defer stmt.Close()
	for i, p := range puzzles {
		if _, err := stmt.Exec(run.ID, i, p.File, p.Status, p.Elapsed, p.Candidates, p.BestHits, p.Layout, p.Error); err != nil {
			return "", fmt.Errorf("failed to insert puzzle %s: %w", p.File, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// RecentRuns returns up to limit runs, newest first. A non-positive limit
// returns all runs.
func (h *History) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.Query(
		`SELECT id, started_at, source, puzzles, solved, elapsed FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		var (
			r       RunRecord
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Source, &r.Puzzles, &r.Solved, &r.Elapsed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(startedLayout, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Puzzles returns the puzzle outcomes of a run in the order they were solved.
func (h *History) Puzzles(runID string) ([]PuzzleRecord, error) {
	rows, err := h.db.Query(
		`SELECT file, status, elapsed, candidates, best_hits, COALESCE(layout,''), COALESCE(error,'')
		 FROM puzzles WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query puzzles: %w", err)
	}
	defer rows.Close()

	out := []PuzzleRecord{}
	for rows.Next() {
		p := PuzzleRecord{RunID: runID}
		if err := rows.Scan(&p.File, &p.Status, &p.Elapsed, &p.Candidates, &p.BestHits, &p.Layout, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to scan puzzle: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close releases the database.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// HasRun reports whether a run with the given ID is stored.
func (h *History) HasRun(id string) (bool, error) {
	var n int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id=?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up run: %w", err)
	}
	return n > 0, nil
}
