// Package store persists projects, tasks and dependencies in SQLite. It is
// the storage collaborator around the scheduling engine: every new
// dependency goes through cpm's gate while the project's mutation lock is
// held, so the cycle check always runs against the committed graph.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Sentinel errors for store lookups.
var (
	// ErrProjectNotFound indicates no project matches the given name or ID.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound indicates the task does not exist in the project.
	ErrTaskNotFound = errors.New("task not found")
	// ErrProjectExists indicates a project with the same name already exists.
	ErrProjectExists = errors.New("project already exists")
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup. Dependencies deliberately carry no
// foreign key on predecessor_id: a reference to a deleted task is allowed
// and ignored by the scheduler.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    start_date TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    project_id TEXT    NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    id         TEXT    NOT NULL,
    name       TEXT    NOT NULL DEFAULT '',
    duration   INTEGER NOT NULL CHECK (duration >= 0),
    start_date TEXT    NOT NULL DEFAULT '',
    is_group   INTEGER NOT NULL DEFAULT 0,
    position   INTEGER NOT NULL,
    PRIMARY KEY (project_id, id)
);

CREATE TABLE IF NOT EXISTS dependencies (
    project_id     TEXT NOT NULL,
    task_id        TEXT NOT NULL,
    predecessor_id TEXT NOT NULL,
    PRIMARY KEY (project_id, task_id, predecessor_id),
    FOREIGN KEY (project_id, task_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE
);
`

const dateLayout = time.DateOnly

// Project is a stored project.
type Project struct {
	ID        string
	Name      string
	Start     time.Time
	CreatedAt time.Time
}

// Store is a SQLite-backed project store. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open opens (or creates) the database at dbPath, enables WAL mode, busy
// timeout and foreign keys, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// One connection: SQLite has a single writer and the PRAGMAs below are
	// per-connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{db: db, locks: make(map[string]*sync.Mutex)}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// lock acquires the mutation lock for projectID and returns its release.
// All writes that consult the dependency graph run under this lock.
func (s *Store) lock(projectID string) func() {
	s.mu.Lock()
	l, ok := s.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[projectID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// inTx runs fn inside a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse date %q: %w", s, err)
	}
	return t, nil
}
