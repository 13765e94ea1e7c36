// Package report records batch comparison results in a SQLite database.
package report

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Status values stored per comparison
const (
	StatusChanged    = "changed"
	StatusUnchanged  = "unchanged"
	StatusFailed     = "failed"
	StatusTooComplex = "too_complex"
)

// Row is one recorded comparison
type Row struct {
	RunID    int64
	Name     string
	Status   string
	Inserted int
	Deleted  int
	Modified int
	Duration time.Duration
	Error    string
}

// Store wraps the report database
type Store struct {
	db *sql.DB
}

// goose keeps its dialect and filesystem in package state
var gooseMu sync.Mutex

// Open opens or creates the database at path and applies pending migrations
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewRunID returns an identifier for a batch run
func NewRunID() int64 {
	return time.Now().UnixMicro()
}

// Record inserts one comparison result
func (s *Store) Record(ctx context.Context, r Row) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comparisons (run_id, name, status, inserted, deleted, modified, duration_us, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Name, r.Status, r.Inserted, r.Deleted, r.Modified, r.Duration.Microseconds(), r.Error)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", r.Name, err)
	}
	return nil
}

// Rows returns the results of the most recent run, or of every run when
// all is set, ordered by run then name
func (s *Store) Rows(ctx context.Context, all bool) ([]Row, error) {
	query := `SELECT run_id, name, status, inserted, deleted, modified, duration_us, error
		FROM comparisons`
	if !all {
		query += ` WHERE run_id = (SELECT MAX(run_id) FROM comparisons)`
	}
	query += ` ORDER BY run_id, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Row
	for rows.Next() {
		var r Row
		var micros int64
		if err := rows.Scan(&r.RunID, &r.Name, &r.Status, &r.Inserted, &r.Deleted, &r.Modified, &micros, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		r.Duration = time.Duration(micros) * time.Microsecond
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comparisons: %w", err)
	}
	return result, nil
}
