package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/papapumpkin/critpath/internal/cpm"
)

// querier is satisfied by *sql.DB and *sql.Tx so reads can run inside the
// transaction that holds the project's mutation lock.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tasks returns the project's tasks in insertion order. Predecessor lists
// are in the order the dependencies were recorded.
func (s *Store) Tasks(ctx context.Context, projectID string) ([]cpm.Task, error) {
	if err := s.checkProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	return loadTasks(ctx, s.db, projectID)
}

// Schedule loads the project and runs the CPM passes over it.
func (s *Store) Schedule(ctx context.Context, projectID string) (*cpm.Schedule, error) {
	p, err := s.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := loadTasks(ctx, s.db, p.ID)
	if err != nil {
		return nil, err
	}
	sched, err := cpm.RescheduleAll(tasks)
	if err != nil {
		return nil, err
	}
	if !p.Start.IsZero() {
		sched.Anchor = p.Start
	}
	return sched, nil
}

// PutTask inserts or updates a task's attributes, then proposes each of
// its declared predecessors through the gate. The whole call is one
// transaction: if any predecessor is rejected nothing is written.
// Marking a task as a group deletes every edge that touches it. If the
// update would revive a stored cycle it fails with a *cpm.CycleError.
func (s *Store) PutTask(ctx context.Context, projectID string, task cpm.Task) error {
	if task.Duration < 0 {
		return fmt.Errorf("%w: %s has duration %d", cpm.ErrInvalidDuration, task.ID, task.Duration)
	}

	unlock := s.lock(projectID)
	defer unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkProject(ctx, tx, projectID); err != nil {
			return err
		}
		const upsert = `
			INSERT INTO tasks (project_id, id, name, duration, start_date, is_group, position)
			VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE project_id = ?))
			ON CONFLICT (project_id, id) DO UPDATE SET
				name = excluded.name,
				duration = excluded.duration,
				start_date = excluded.start_date,
				is_group = excluded.is_group`
		_, err := tx.ExecContext(ctx, upsert,
			projectID, task.ID, task.Name, task.Duration, formatDate(task.StartDate), task.IsGroup, projectID)
		if err != nil {
			return fmt.Errorf("store: put task %q: %w", task.ID, err)
		}

		if task.IsGroup {
			// Group tasks take no part in scheduling; their edges go with them
			// so that ungrouping later cannot bring back a stale chain.
			_, err := tx.ExecContext(ctx,
				`DELETE FROM dependencies WHERE project_id = ? AND (task_id = ? OR predecessor_id = ?)`,
				projectID, task.ID, task.ID)
			if err != nil {
				return fmt.Errorf("store: drop edges of group %q: %w", task.ID, err)
			}
		}

		tasks, err := loadTasks(ctx, tx, projectID)
		if err != nil {
			return err
		}
		// Turning a group back into a task, or giving a dangling reference
		// a target, revives stored edges the gate never saw.
		if err := cpm.Validate(tasks); err != nil {
			return err
		}
		for _, pred := range task.Predecessors {
			if _, err := proposeAndInsert(ctx, tx, projectID, tasks, pred, task.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddDependency records that target depends on source. The proposal runs
// through the gate against the committed task list while the project's
// mutation lock is held, so concurrent proposals cannot jointly close a
// cycle. A DuplicateEdge outcome writes nothing.
func (s *Store) AddDependency(ctx context.Context, projectID, source, target string) (cpm.Outcome, error) {
	unlock := s.lock(projectID)
	defer unlock()

	var outcome cpm.Outcome
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkProject(ctx, tx, projectID); err != nil {
			return err
		}
		tasks, err := loadTasks(ctx, tx, projectID)
		if err != nil {
			return err
		}
		outcome, err = proposeAndInsert(ctx, tx, projectID, tasks, source, target)
		return err
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// proposeAndInsert gates source → target against tasks (updating it in
// place on acceptance) and inserts the accepted edge.
func proposeAndInsert(ctx context.Context, q querier, projectID string, tasks []cpm.Task, source, target string) (cpm.Outcome, error) {
	outcome, err := cpm.ProposeDependency(tasks, source, target)
	if err != nil {
		return 0, err
	}
	if outcome == cpm.DuplicateEdge {
		return outcome, nil
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO dependencies (project_id, task_id, predecessor_id) VALUES (?, ?, ?)`,
		projectID, target, source)
	if err != nil {
		return 0, fmt.Errorf("store: insert dependency %s → %s: %w", source, target, err)
	}
	return outcome, nil
}

// RemoveDependency deletes the edge source → target. It reports whether
// an edge was removed. Removing an edge can never introduce a cycle, so it
// bypasses the gate.
func (s *Store) RemoveDependency(ctx context.Context, projectID, source, target string) (bool, error) {
	unlock := s.lock(projectID)
	defer unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM dependencies WHERE project_id = ? AND task_id = ? AND predecessor_id = ?`,
		projectID, target, source)
	if err != nil {
		return false, fmt.Errorf("store: remove dependency %s → %s: %w", source, target, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: remove dependency rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteTask removes a task, its own predecessor list and every edge that
// names it as a predecessor. Returns ErrTaskNotFound if it does not exist.
func (s *Store) DeleteTask(ctx context.Context, projectID, taskID string) error {
	unlock := s.lock(projectID)
	defer unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM tasks WHERE project_id = ? AND id = ?`, projectID, taskID)
		if err != nil {
			return fmt.Errorf("store: delete task %q: %w", taskID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("store: delete task rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM dependencies WHERE project_id = ? AND predecessor_id = ?`, projectID, taskID)
		if err != nil {
			return fmt.Errorf("store: delete edges of %q: %w", taskID, err)
		}
		return nil
	})
}

// ImportTasks replaces the project's tasks with the given list. The list
// is validated as a whole first, since its edges did not pass the gate one
// by one. Self-references and edges touching a group task are not stored.
func (s *Store) ImportTasks(ctx context.Context, projectID string, tasks []cpm.Task) error {
	if err := cpm.Validate(tasks); err != nil {
		return err
	}

	unlock := s.lock(projectID)
	defer unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkProject(ctx, tx, projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("store: clear dependencies: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("store: clear tasks: %w", err)
		}

		// First occurrence of an ID wins, matching the scheduler.
		seen := make(map[string]bool, len(tasks))
		var kept []cpm.Task
		for _, t := range tasks {
			if !seen[t.ID] {
				seen[t.ID] = true
				kept = append(kept, t)
			}
		}
		for i, t := range kept {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (project_id, id, name, duration, start_date, is_group, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				projectID, t.ID, t.Name, t.Duration, formatDate(t.StartDate), t.IsGroup, i+1)
			if err != nil {
				return fmt.Errorf("store: import task %q: %w", t.ID, err)
			}
		}
		group := make(map[string]bool, len(kept))
		for _, t := range kept {
			group[t.ID] = t.IsGroup
		}
		for _, t := range kept {
			if t.IsGroup {
				continue
			}
			for _, pred := range t.Predecessors {
				if pred == t.ID || group[pred] {
					continue
				}
				_, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO dependencies (project_id, task_id, predecessor_id) VALUES (?, ?, ?)`,
					projectID, t.ID, pred)
				if err != nil {
					return fmt.Errorf("store: import dependency %s → %s: %w", pred, t.ID, err)
				}
			}
		}
		return nil
	})
}

func (s *Store) checkProject(ctx context.Context, q querier, projectID string) error {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = ?`, projectID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return fmt.Errorf("store: lookup project: %w", err)
	}
	return nil
}

// loadTasks reads every task of a project with its predecessor list.
func loadTasks(ctx context.Context, q querier, projectID string) ([]cpm.Task, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, duration, start_date, is_group FROM tasks
		 WHERE project_id = ? ORDER BY position, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []cpm.Task
	index := make(map[string]int)
	for rows.Next() {
		var t cpm.Task
		var start string
		if err := rows.Scan(&t.ID, &t.Name, &t.Duration, &start, &t.IsGroup); err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		if t.StartDate, err = parseDate(start); err != nil {
			return nil, err
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate tasks: %w", err)
	}
	rows.Close()

	deps, err := q.QueryContext(ctx,
		`SELECT task_id, predecessor_id FROM dependencies WHERE project_id = ? ORDER BY rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: query dependencies: %w", err)
	}
	defer deps.Close()

	for deps.Next() {
		var taskID, pred string
		if err := deps.Scan(&taskID, &pred); err != nil {
			return nil, fmt.Errorf("store: scan dependency: %w", err)
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Predecessors = append(tasks[i].Predecessors, pred)
		}
	}
	if err := deps.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate dependencies: %w", err)
	}
	return tasks, nil
}
