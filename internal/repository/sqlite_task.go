package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
)

const taskColumns = `id, tenant_id, title, description, assignee_id, priority, status,
		start_date, due_date, shadow, booking_id, created_at, updated_at, completed_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

// Create inserts the task and its dependent edges.
func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TenantID,
		t.Title,
		t.Description,
		t.AssigneeID,
		string(t.Priority),
		string(t.Status),
		nullableTimeToString(t.StartDate),
		nullableTimeToString(t.DueDate),
		boolToInt(t.Shadow),
		t.BookingID,
		formatTS(t.CreatedAt),
		formatTS(t.UpdatedAt),
		nullableTimeToString(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	for _, dep := range t.Dependents {
		if err := r.AddDependent(ctx, t.ID, dep); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns the task with its dependent ids populated.
func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	t.Dependents, err = r.ListDependentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByAssignee(ctx context.Context, assigneeID string, includeShadow bool) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = ?`
	if !includeShadow {
		query += ` AND shadow = 0`
	}
	query += ` ORDER BY due_date IS NULL, due_date, created_at`
	return r.queryTasks(ctx, query, assigneeID)
}

// ListDueBetween returns the assignee's tasks with a due date in [from, to).
func (r *SQLiteTaskRepo) ListDueBetween(ctx context.Context, assigneeID string, from, to time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE assignee_id = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?
		ORDER BY due_date, id`
	return r.queryTasks(ctx, query, assigneeID, formatTS(from), formatTS(to))
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, assignee_id = ?, priority = ?, status = ?,
		start_date = ?, due_date = ?, updated_at = ?, completed_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Description,
		t.AssigneeID,
		string(t.Priority),
		string(t.Status),
		nullableTimeToString(t.StartDate),
		nullableTimeToString(t.DueDate),
		formatTS(t.UpdatedAt),
		nullableTimeToString(t.CompletedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

// AddDependent records the edge once. Self edges and unknown tasks are
// rejected by the table constraints.
func (r *SQLiteTaskRepo) AddDependent(ctx context.Context, taskID, dependentID string) error {
	query := `INSERT INTO task_dependents (task_id, dependent_id) VALUES (?, ?)
		ON CONFLICT(task_id, dependent_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, taskID, dependentID); err != nil {
		return fmt.Errorf("adding dependent: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) RemoveDependent(ctx context.Context, taskID, dependentID string) error {
	query := `DELETE FROM task_dependents WHERE task_id = ? AND dependent_id = ?`
	if _, err := r.db.ExecContext(ctx, query, taskID, dependentID); err != nil {
		return fmt.Errorf("removing dependent: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) ListDependentIDs(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT dependent_id FROM task_dependents WHERE task_id = ? ORDER BY dependent_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing dependents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning dependent: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependents: %w", err)
	}
	return ids, nil
}

func (r *SQLiteTaskRepo) LogActivity(ctx context.Context, a *domain.TaskActivity) error {
	query := `INSERT INTO task_activity (id, task_id, action, detail, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.TaskID, a.Action, a.Detail, formatTS(a.CreatedAt)); err != nil {
		return fmt.Errorf("logging task activity: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) ListActivity(ctx context.Context, taskID string) ([]domain.TaskActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, action, detail, created_at FROM task_activity
		WHERE task_id = ? ORDER BY created_at, rowid`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing task activity: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskActivity
	for rows.Next() {
		var a domain.TaskActivity
		var createdStr string
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Action, &a.Detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning task activity: %w", err)
		}
		if a.CreatedAt, err = parseTS(createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task activity: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var priorityStr, statusStr, createdStr, updatedStr string
	var startStr, dueStr, completedStr sql.NullString
	var shadow int

	err := s.Scan(
		&t.ID, &t.TenantID, &t.Title, &t.Description, &t.AssigneeID, &priorityStr, &statusStr,
		&startStr, &dueStr, &shadow, &t.BookingID, &createdStr, &updatedStr, &completedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Priority = domain.TaskPriority(priorityStr)
	t.Status = domain.TaskStatus(statusStr)
	t.Shadow = intToBool(shadow)
	t.StartDate = parseNullableTime(startStr)
	t.DueDate = parseNullableTime(dueStr)
	t.CompletedAt = parseNullableTime(completedStr)

	if t.CreatedAt, err = parseTS(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTS(updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}
