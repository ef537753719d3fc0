package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const runsSchema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	center_time    TEXT NOT NULL,
	window_minutes INTEGER NOT NULL,
	sheet          TEXT NOT NULL,
	filled         INTEGER NOT NULL,
	missing_count  INTEGER NOT NULL,
	output_path    TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_runs_created ON report_runs(created_at);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(runsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run record and returns its assigned ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO report_runs
		 (center_time, window_minutes, sheet, filled, missing_count, output_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Center.Format(time.RFC3339),
		run.WindowMinutes,
		run.Sheet,
		run.Filled,
		run.MissingCount,
		run.OutputPath,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := `SELECT id, center_time, window_minutes, sheet, filled, missing_count, output_path, created_at
	      FROM report_runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var center, created string
		if err := rows.Scan(&r.ID, &center, &r.WindowMinutes, &r.Sheet, &r.Filled, &r.MissingCount, &r.OutputPath, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.Center, err = time.Parse(time.RFC3339, center); err != nil {
			return nil, fmt.Errorf("bad center_time %q: %w", center, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", created, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
