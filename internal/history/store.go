// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed batch runs in a local SQLite database.
// The store is an append-only audit log; resolution never reads from it.
package history

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
			started TEXT NOT NULL,
			mode TEXT NOT NULL,
			max_results INTEGER NOT NULL,
			terms INTEGER NOT NULL,
			downloaded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS term_results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			term TEXT NOT NULL,
			error TEXT,
			downloaded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_term_results_run ON term_results(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one completed batch run with its per-term rows.
func (s *Store) Record(started time.Time, cfg types.BatchConfig, result types.BatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (started, mode, max_results, terms, downloaded, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		started.UTC().Format(time.RFC3339), string(cfg.Mode), cfg.MaxResults,
		result.TermsProcessed(), result.FilesDownloaded(), result.FilesFailed(), result.FilesSkipped(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	for _, tr := range result.Terms {
		if _, err := tx.Exec(
			`INSERT INTO term_results (run_id, term, error, downloaded, failed, skipped)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, tr.Term, tr.ResolutionErr, tr.SuccessCount(), tr.FailureCount(), tr.SkipCount(),
		); err != nil {
			return fmt.Errorf("inserting term result for %q: %w", tr.Term, err)
		}
	}

	return tx.Commit()
}

// List writes the most recent n runs to w, newest first, with their
// per-term counts.
func (s *Store) List(w io.Writer, n int) error {
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started, mode, max_results, terms, downloaded, failed, skipped
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id, maxResults, terms, downloaded, failed, skipped int64
			started, mode                                      string
		)
		if err := rows.Scan(&id, &started, &mode, &maxResults, &terms, &downloaded, &failed, &skipped); err != nil {
			return fmt.Errorf("scanning run: %w", err)
		}
		fmt.Fprintf(w, "run %d  %s  mode=%s k=%d  %d term(s): %d downloaded, %d failed, %d skipped\n",
			id, started, mode, maxResults, terms, downloaded, failed, skipped)
		if err := s.listTerms(w, id); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating runs: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(w, "No recorded runs.")
	}
	return nil
}

func (s *Store) listTerms(w io.Writer, runID int64) error {
	rows, err := s.db.Query(
		`SELECT term, error, downloaded, failed, skipped
		 FROM term_results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return fmt.Errorf("querying term results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			term, termErr               string
			downloaded, failed, skipped int64
		)
		if err := rows.Scan(&term, &termErr, &downloaded, &failed, &skipped); err != nil {
			return fmt.Errorf("scanning term result: %w", err)
		}
		if termErr != "" {
			fmt.Fprintf(w, "  %s: error (%s)\n", term, termErr)
			continue
		}
		fmt.Fprintf(w, "  %s: %d downloaded, %d failed, %d skipped\n", term, downloaded, failed, skipped)
	}
	return rows.Err()
}
