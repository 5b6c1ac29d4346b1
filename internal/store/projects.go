package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateProject inserts a new project with a generated ID. Returns
// ErrProjectExists if the name is taken.
func (s *Store) CreateProject(ctx context.Context, name string, start time.Time) (Project, error) {
	p := Project{
		ID:        uuid.NewString(),
		Name:      name,
		Start:     start,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	const q = `INSERT INTO projects (id, name, start_date, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, p.ID, p.Name, formatDate(start), p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Project{}, fmt.Errorf("%w: %s", ErrProjectExists, name)
		}
		return Project{}, fmt.Errorf("store: create project %q: %w", name, err)
	}
	return p, nil
}

// Projects returns all projects ordered by name.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, start_date, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: query projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate projects: %w", err)
	}
	return out, nil
}

// FindProject looks a project up by ID or name.
func (s *Store) FindProject(ctx context.Context, ref string) (Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, start_date, created_at FROM projects WHERE id = ? OR name = ? LIMIT 1`, ref, ref)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, ref)
	}
	return p, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (Project, error) {
	var p Project
	var start, created string
	if err := sc.Scan(&p.ID, &p.Name, &start, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, err
		}
		return Project{}, fmt.Errorf("store: scan project: %w", err)
	}
	var err error
	if p.Start, err = parseDate(start); err != nil {
		return Project{}, err
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Project{}, fmt.Errorf("store: parse created_at %q: %w", created, err)
	}
	return p, nil
}
