package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Run is one recorded kernel run.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	Mode        string
	N           int
	Seed        uint64
	Threads     int
	Iterations  int
	Elapsed     time.Duration
	LastAverage float64
	Status      string
	// Error is the failure message, empty on success.
	Error string
}

// Store provides durable storage for the run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// schema. This function is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts r. A zero ID is replaced by a new random UUID, which is
// returned.
func (s *Store) Record(ctx context.Context, r Run) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, mode, size, seed, threads, iterations, elapsed_ns, last_average, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.StartedAt.UTC().Format(time.RFC3339Nano), r.Mode, r.N, int64(r.Seed),
		r.Threads, r.Iterations, r.Elapsed.Nanoseconds(), r.LastAverage, r.Status, errText,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run: %w", err)
	}
	return r.ID, nil
}

const selectRuns = `
	SELECT id, started_at, mode, size, seed, threads, iterations, elapsed_ns, last_average, status, error
	FROM runs`

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("run not found")

// Recent returns up to limit runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	return s.query(ctx, selectRuns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	runs, err := s.query(ctx, selectRuns+` WHERE id = ?`, id.String())
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return runs[0], nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r         Run
		id        string
		startedAt string
		seed      int64
		elapsedNs int64
		lastAvg   sql.NullFloat64
		errText   sql.NullString
	)
	if err := rows.Scan(&id, &startedAt, &r.Mode, &r.N, &seed, &r.Threads, &r.Iterations,
		&elapsedNs, &lastAvg, &r.Status, &errText); err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Run{}, fmt.Errorf("corrupt timestamp %q: %w", startedAt, err)
	}
	r.Seed = uint64(seed)
	r.Elapsed = time.Duration(elapsedNs)
	r.LastAverage = lastAvg.Float64
	r.Error = errText.String
	return r, nil
}
