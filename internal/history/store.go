// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a ledger of batch runs in a local SQLite
// database. Each run is recorded with its summary counts and one row per
// processed file, so past batches can be listed and inspected without
// keeping report files around.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/pdfwork/pkg/types"
)

// Run is one recorded batch.
type Run struct {
	ID        string          `json:"id" yaml:"id"`
	StartedAt time.Time       `json:"started_at" yaml:"started_at"`
	Operation types.Operation `json:"operation" yaml:"operation"`
	Root      string          `json:"root" yaml:"root"`
	OutputDir string          `json:"output_dir" yaml:"output_dir"`

	TotalFiles  int           `json:"total_files" yaml:"total_files"`
	Succeeded   int           `json:"succeeded" yaml:"succeeded"`
	Failed      int           `json:"failed" yaml:"failed"`
	InputBytes  int64         `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64         `json:"output_bytes" yaml:"output_bytes"`
	Duration    time.Duration `json:"duration" yaml:"duration"`

	Files []FileRecord `json:"files,omitempty" yaml:"files,omitempty"`
}

// FileRecord is one per-file row of a recorded run.
type FileRecord struct {
	Index       int           `json:"index" yaml:"index"`
	SourcePath  string        `json:"source_path" yaml:"source_path"`
	OutputPath  string        `json:"output_path" yaml:"output_path"`
	Succeeded   bool          `json:"succeeded" yaml:"succeeded"`
	ExitCode    int           `json:"exit_code" yaml:"exit_code"`
	InputBytes  int64         `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64         `json:"output_bytes" yaml:"output_bytes"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRun builds a Run record from a finished batch. IDs are ULIDs, so the
// ledger sorts by creation time.
func NewRun(op types.Operation, root, outputDir string, s types.BatchSummary) Run {
	run := Run{
		ID:          ulid.Make().String(),
		StartedAt:   time.Now().UTC(),
		Operation:   op,
		Root:        root,
		OutputDir:   outputDir,
		TotalFiles:  s.TotalFiles,
		Succeeded:   s.Succeeded,
		Failed:      s.Failed,
		InputBytes:  s.TotalInputBytes,
		OutputBytes: s.TotalOutputBytes,
		Duration:    s.TotalDuration,
	}
	for _, r := range s.Results {
		run.Files = append(run.Files, FileRecord{
			Index:       r.Task.Index,
			SourcePath:  r.Task.SourcePath,
			OutputPath:  r.OutputPath,
			Succeeded:   r.Succeeded,
			ExitCode:    r.ExitCode,
			InputBytes:  r.InputBytes,
			OutputBytes: r.OutputBytes,
			Duration:    r.Duration,
			Error:       r.ErrorMessage,
		})
	}
	return run
}

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
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
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			operation TEXT NOT NULL,
			root TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			total_files INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			input_bytes INTEGER NOT NULL,
			output_bytes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_files (
			run_id TEXT NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			source_path TEXT NOT NULL,
			output_path TEXT,
			succeeded INTEGER NOT NULL,
			exit_code INTEGER NOT NULL,
			input_bytes INTEGER NOT NULL,
			output_bytes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts a run and its per-file rows in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, operation, root, output_dir,
			total_files, succeeded, failed, input_bytes, output_bytes, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), string(run.Operation),
		run.Root, run.OutputDir, run.TotalFiles, run.Succeeded, run.Failed,
		run.InputBytes, run.OutputBytes, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, idx, source_path, output_path,
			succeeded, exit_code, input_bytes, output_bytes, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range run.Files {
		_, err := stmt.ExecContext(ctx,
			run.ID, f.Index, f.SourcePath, f.OutputPath, f.Succeeded,
			f.ExitCode, f.InputBytes, f.OutputBytes, f.Duration.Milliseconds(), f.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting file row %d: %w", f.Index, err)
		}
	}

	return tx.Commit()
}

// List returns the most recent runs, newest first, without per-file rows.
// A limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, operation, root, output_dir,
		total_files, succeeded, failed, input_bytes, output_bytes, duration_ms
		FROM runs ORDER BY id DESC`
	args := []any{}
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
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its per-file rows in enumeration order.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, operation, root, output_dir,
			total_files, succeeded, failed, input_bytes, output_bytes, duration_ms
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, source_path, output_path, succeeded, exit_code,
			input_bytes, output_bytes, duration_ms, error
		 FROM run_files WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f FileRecord
		var durationMs int64
		var outputPath, errMsg sql.NullString
		if err := rows.Scan(&f.Index, &f.SourcePath, &outputPath, &f.Succeeded,
			&f.ExitCode, &f.InputBytes, &f.OutputBytes, &durationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning file row: %w", err)
		}
		f.OutputPath = outputPath.String
		f.Error = errMsg.String
		f.Duration = time.Duration(durationMs) * time.Millisecond
		run.Files = append(run.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var startedAt string
	var durationMs int64
	err := sc.Scan(&run.ID, &startedAt, &run.Operation, &run.Root, &run.OutputDir,
		&run.TotalFiles, &run.Succeeded, &run.Failed,
		&run.InputBytes, &run.OutputBytes, &durationMs)
	if err != nil {
		return Run{}, err
	}

	run.Duration = time.Duration(durationMs) * time.Millisecond
	if t, perr := time.Parse(time.RFC3339Nano, startedAt); perr == nil {
		run.StartedAt = t
	}
	return run, nil
}
