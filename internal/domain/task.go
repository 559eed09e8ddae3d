package domain

import (
	"errors"
	"time"
)

// MetaShadow marks a task as the worklist shadow of a booked meeting.
const MetaShadow = "shadow"

type Task struct {
	ID          string
	TenantID    string
	Title       string
	Description string
	AssigneeID  string
	Priority    TaskPriority
	Status      TaskStatus
	StartDate   *time.Time
	DueDate     *time.Time
	Dependents  []string // tasks whose dates shift when this task's due date shifts
	Shadow      bool
	BookingID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Validate checks the structural invariants of a task.
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if !ValidTaskStatuses[t.Status] {
		return errors.New("unknown task status " + string(t.Status))
	}
	if t.StartDate != nil && t.DueDate != nil && t.DueDate.Before(*t.StartDate) {
		return errors.New("task due date is before its start date")
	}
	return nil
}

// IsTerminal reports whether the task is completed or cancelled.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskCancelled
}

// ShiftDates moves the due date, and the start date when set, by delta.
// Returns false when the task has no due date to shift.
func (t *Task) ShiftDates(delta time.Duration, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.Add(delta)
	t.DueDate = &due
	if t.StartDate != nil {
		start := t.StartDate.Add(delta)
		t.StartDate = &start
	}
	t.UpdatedAt = now
	return true
}

// SetStatus transitions the task and maintains CompletedAt.
func (t *Task) SetStatus(s TaskStatus, now time.Time) {
	if s == TaskCompleted && t.Status != TaskCompleted {
		t.CompletedAt = &now
	}
	if s != TaskCompleted {
		t.CompletedAt = nil
	}
	t.Status = s
	t.UpdatedAt = now
}

// DueDateChanged reports whether two optional due dates differ.
func DueDateChanged(prev, next *time.Time) bool {
	if prev == nil || next == nil {
		return prev != next
	}
	return !prev.Equal(*next)
}

// TaskActivity is one entry of a task's append-only activity log.
type TaskActivity struct {
	ID        string
	TaskID    string
	Action    string
	Detail    string
	CreatedAt time.Time
}

const (
	ActivityCreated      = "created"
	ActivityUpdated      = "updated"
	ActivityDueShifted   = "due_shifted"
	ActivityStatusChange = "status_changed"
)
