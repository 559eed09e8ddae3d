package service

import (
	"context"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	tasks      repository.TaskRepo
	uow        db.UnitOfWork
	propagator *Propagator
	opts       Options
}

func NewTaskService(repos Repos, uow db.UnitOfWork, opts Options) TaskService {
	opts = opts.withDefaults()
	return &taskService{
		tasks:      repos.Tasks,
		uow:        uow,
		propagator: NewPropagator(uow, opts),
		opts:       opts,
	}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) error {
	now := s.opts.Now()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	t.CreatedAt, t.UpdatedAt = now, now
	if err := t.Validate(); err != nil {
		return &ValidationError{Field: "task", Msg: err.Error()}
	}
	for _, dep := range t.Dependents {
		if dep == t.ID {
			return invalid("dependents", "a task cannot depend on itself")
		}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		if err := tasks.Create(ctx, t); err != nil {
			return err
		}
		return tasks.LogActivity(ctx, s.activity(t.ID, domain.ActivityCreated, t.Title))
	})
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// ListByAssignee hides the shadow tasks of bookings.
func (s *taskService) ListByAssignee(ctx context.Context, assigneeID string) ([]*domain.Task, error) {
	return s.tasks.ListByAssignee(ctx, assigneeID, false)
}

func (s *taskService) Update(ctx context.Context, t *domain.Task) (result *PropagationResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"task": t.ID}
	defer func() {
		if result != nil {
			fields["shifted"] = len(result.Shifted)
			fields["cycles"] = len(result.CyclesDetected)
		}
		observe(ctx, s.opts.Observer, "update-task", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		prev, err := tasks.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}

		now := s.opts.Now()
		next := t.Status
		t.Status, t.CompletedAt = prev.Status, prev.CompletedAt
		t.SetStatus(next, now)
		t.CreatedAt = prev.CreatedAt
		if err := t.Validate(); err != nil {
			return &ValidationError{Field: "task", Msg: err.Error()}
		}
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		if err := tasks.LogActivity(ctx, s.activity(t.ID, domain.ActivityUpdated, "")); err != nil {
			return err
		}
		if prev.Status != t.Status {
			if err := tasks.LogActivity(ctx, s.activity(t.ID, domain.ActivityStatusChange, string(t.Status))); err != nil {
				return err
			}
		}

		if prev.DueDate == nil || t.DueDate == nil || !domain.DueDateChanged(prev.DueDate, t.DueDate) {
			result = &PropagationResult{}
			return nil
		}
		result, err = s.propagator.propagate(ctx, tasks, t.ID, t.DueDate.Sub(*prev.DueDate))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *taskService) SetStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	if !domain.ValidTaskStatuses[status] {
		return invalid("status", "unknown task status %q", status)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t.Status == status {
			return nil
		}
		t.SetStatus(status, s.opts.Now())
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		return tasks.LogActivity(ctx, s.activity(id, domain.ActivityStatusChange, string(status)))
	})
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// AddDependent records that dependentID shifts with taskID. Edges that close
// a cycle are accepted; propagation detects and reports them.
func (s *taskService) AddDependent(ctx context.Context, taskID, dependentID string) error {
	if taskID == dependentID {
		return invalid("dependent_id", "a task cannot depend on itself")
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}
	if _, err := s.tasks.GetByID(ctx, dependentID); err != nil {
		return err
	}
	return s.tasks.AddDependent(ctx, taskID, dependentID)
}

func (s *taskService) RemoveDependent(ctx context.Context, taskID, dependentID string) error {
	return s.tasks.RemoveDependent(ctx, taskID, dependentID)
}

func (s *taskService) Activity(ctx context.Context, taskID string) ([]domain.TaskActivity, error) {
	return s.tasks.ListActivity(ctx, taskID)
}

func (s *taskService) OnTaskDueDateChanged(ctx context.Context, taskID string, oldDue, newDue time.Time) (*PropagationResult, error) {
	return s.propagator.OnDueDateChanged(ctx, taskID, oldDue, newDue)
}

func (s *taskService) activity(taskID, action, detail string) *domain.TaskActivity {
	return &domain.TaskActivity{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Action:    action,
		Detail:    detail,
		CreatedAt: s.opts.Now(),
	}
}
