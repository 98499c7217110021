// Package store persists the validation-run ledger: one row per engine
// run, with the full report for later inspection. The ledger observes
// outcomes; engine correctness never depends on it.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Run is one recorded validation run.
type Run struct {
	ID         string          `json:"id"`
	TenantKey  string          `json:"tenant_key"`
	FileName   string          `json:"file_name"`
	Status     string          `json:"status"`
	Report     json.RawMessage `json:"report"`
	RowsTotal  int             `json:"rows_total"`
	RowsFailed int             `json:"rows_failed"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Stats aggregates the ledger by status.
type Stats struct {
	TotalRuns int64 `json:"total_runs"`
	Valid     int64 `json:"valid"`
	HasErrors int64 `json:"has_errors"`
	Fatal     int64 `json:"fatal"`
}

// SQLiteStore is the SQLite-backed run ledger.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the ledger database,
// applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordRun inserts a new run, assigning its ID and timestamp.
func (s *SQLiteStore) RecordRun(run Run) (*Run, error) {
	run.ID = ulid.Make().String()
	run.CreatedAt = time.Now().UTC()
	if run.Report == nil {
		run.Report = json.RawMessage("{}")
	}

	_, err := s.db.Exec(`
		INSERT INTO validation_runs (id, tenant_key, file_name, status, report, rows_total, rows_failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TenantKey, run.FileName, run.Status, string(run.Report),
		run.RowsTotal, run.RowsFailed, run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &run, nil
}

// GetRun fetches a run by ID, returning ErrRunNotFound when absent.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, tenant_key, file_name, status, report, rows_total, rows_failed, created_at
		FROM validation_runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A limit below 1
// defaults to 50.
func (s *SQLiteStore) ListRuns(limit int) ([]Run, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, tenant_key, file_name, status, report, rows_total, rows_failed, created_at
		FROM validation_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Stats aggregates run counts per status.
func (s *SQLiteStore) Stats() (*Stats, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM validation_runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		stats.TotalRuns += count
		switch status {
		case "Valid":
			stats.Valid = count
		case "Has Errors":
			stats.HasErrors = count
		case "Fatal Error":
			stats.Fatal = count
		}
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*Run, error) {
	var run Run
	var report, createdAt string
	if err := r.Scan(&run.ID, &run.TenantKey, &run.FileName, &run.Status,
		&report, &run.RowsTotal, &run.RowsFailed, &createdAt); err != nil {
		return nil, err
	}
	run.Report = json.RawMessage(report)

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	return &run, nil
}
