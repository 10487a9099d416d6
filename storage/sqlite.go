// Package storage provides SQLite-based persistence for training runs.
// Runs and episodes live in two tables of a pure-Go sqlite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one invocation of the training command.
type Run struct {
	ID        string
	Seed      int64
	Board     string // "WxH"
	StartedAt time.Time
	Episodes  int
	Record    int
}

// Episode is one finished game inside a run.
type Episode struct {
	RunID     string
	Game      int
	Score     int
	Record    int
	MeanScore float64
	Steps     int
	Cause     string
	Loss      float64
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			board TEXT NOT NULL,
			started_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			game INTEGER NOT NULL,
			score INTEGER NOT NULL,
			record INTEGER NOT NULL,
			mean_score REAL NOT NULL,
			steps INTEGER NOT NULL,
			cause TEXT NOT NULL,
			loss REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id, game);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records the beginning of a training run.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, seed, board, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Seed, run.Board, run.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save run: %w", err)
	}
	return nil
}

// RecordEpisode appends a finished game to its run.
func (s *Store) RecordEpisode(ctx context.Context, e Episode) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (run_id, game, score, record, mean_score, steps, cause, loss, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Game, e.Score, e.Record, e.MeanScore, e.Steps, e.Cause, e.Loss, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save episode: %w", err)
	}
	return nil
}

// Episodes returns the games of a run in play order. A limit <= 0 returns all.
func (s *Store) Episodes(ctx context.Context, runID string, limit int) ([]Episode, error) {
	query := `SELECT run_id, game, score, record, mean_score, steps, cause, loss, created_at
		 FROM episodes WHERE run_id = ? ORDER BY game`
	args := []any{runID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var createdAt int64
		if err := rows.Scan(&e.RunID, &e.Game, &e.Score, &e.Record, &e.MeanScore, &e.Steps, &e.Cause, &e.Loss, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return episodes, nil
}

// Runs lists training runs, newest first, with their episode count and record.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.seed, r.board, r.started_at, COUNT(e.id), COALESCE(MAX(e.score), 0)
		 FROM runs r LEFT JOIN episodes e ON e.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt int64
		if err := rows.Scan(&r.ID, &r.Seed, &r.Board, &startedAt, &r.Episodes, &r.Record); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.StartedAt = time.Unix(0, startedAt)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// BestScore returns the highest score across every run, 0 if none.
func (s *Store) BestScore(ctx context.Context) (int, error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(score) FROM episodes").Scan(&best); err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	return int(best.Int64), nil
}
