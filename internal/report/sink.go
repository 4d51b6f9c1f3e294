package report

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sbomstat/internal/resolver"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

var (
	// ErrLocked indicates another process holds the database lock.
	ErrLocked = errors.New("report database is locked by another process")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

// Run describes one recorded invocation.
type Run struct {
	ID         string
	Kind       string
	Title      string
	RecordedAt time.Time
	Processed  int
	Skipped    int
	Hits       *int
	Misses     *int
}

// Sink appends runs to a SQLite database.
type Sink struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// OpenSink opens or creates the database at path and takes an exclusive lock
// on path+".lock" for the lifetime of the sink.
func OpenSink(ctx context.Context, path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	sink := &Sink{db: db, path: path, lock: lock}
	if err := sink.initSchema(ctx); err != nil {
		_ = sink.Close()
		return nil, err
	}
	return sink, nil
}

// Path returns the database location.
func (s *Sink) Path() string {
	return s.path
}

// Close closes the database and releases the lock.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

func (s *Sink) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate it)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Sink) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Sink) insertRun(ctx context.Context, tx *sql.Tx, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, title, recorded_at, processed, skipped, hits, misses)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.Title,
		run.RecordedAt.Format(time.RFC3339Nano),
		run.Processed,
		run.Skipped,
		nullableInt(run.Hits),
		nullableInt(run.Misses),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordFrequency stores a frequency report and returns the run id.
func (s *Sink) RecordFrequency(ctx context.Context, run Run, f *Frequency) (string, error) {
	if run.Title == "" {
		run.Title = f.Title
	}
	if run.Processed == 0 {
		run.Processed = f.Processed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertRun(ctx, tx, &run); err != nil {
		return "", err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO frequency_entries (run_id, key, count) VALUES (?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()
	for _, entry := range f.Entries() {
		if _, err := stmt.ExecContext(ctx, run.ID, entry.Key, entry.Count); err != nil {
			return "", fmt.Errorf("insert entry %q: %w", entry.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

// RecordMatch stores a match report and returns the run id.
func (s *Sink) RecordMatch(ctx context.Context, run Run, result resolver.Result) (string, error) {
	hits, misses := result.Hits, result.Misses
	run.Hits, run.Misses = &hits, &misses
	if run.Skipped == 0 {
		run.Skipped = result.Skipped
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertRun(ctx, tx, &run); err != nil {
		return "", err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO match_rows (run_id, source, target_count, targets) VALUES (?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("prepare match insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range result.Rows {
		if _, err := stmt.ExecContext(ctx, run.ID, row.Source, row.Count(), strings.Join(row.Targets, " ")); err != nil {
			return "", fmt.Errorf("insert match row %q: %w", row.Source, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

// Runs lists recorded runs, newest first.
func (s *Sink) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, title, recorded_at, processed, skipped, hits, misses
        FROM runs ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run          Run
			recordedAt   string
			hits, misses sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.Title, &recordedAt, &run.Processed, &run.Skipped, &hits, &misses); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			run.RecordedAt = ts
		}
		run.Hits = intPtr(hits)
		run.Misses = intPtr(misses)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FrequencyEntries returns the stored entries of one run sorted by key.
func (s *Sink) FrequencyEntries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, count FROM frequency_entries WHERE run_id = ? ORDER BY key", runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MatchRows returns the stored rows of one run sorted by source.
func (s *Sink) MatchRows(ctx context.Context, runID string) ([]resolver.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source, targets FROM match_rows WHERE run_id = ? ORDER BY source", runID)
	if err != nil {
		return nil, fmt.Errorf("query match rows: %w", err)
	}
	defer rows.Close()

	var out []resolver.Row
	for rows.Next() {
		var (
			row     resolver.Row
			targets string
		)
		if err := rows.Scan(&row.Source, &targets); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		row.Targets = strings.Fields(targets)
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
