package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/repository"
	"github.com/google/uuid"
)

// Propagator shifts the transitive dependents of a task by the same delta
// as the task's due date.
type Propagator struct {
	uow      db.UnitOfWork
	maxDepth int
	now      func() time.Time
}

func NewPropagator(uow db.UnitOfWork, opts Options) *Propagator {
	opts = opts.withDefaults()
	return &Propagator{uow: uow, maxDepth: opts.PropagationMaxDepth, now: opts.Now}
}

// OnDueDateChanged propagates newDue - oldDue from taskID in a single
// transaction. A zero delta is a no-op.
func (p *Propagator) OnDueDateChanged(ctx context.Context, taskID string, oldDue, newDue time.Time) (*PropagationResult, error) {
	delta := newDue.Sub(oldDue)
	if delta == 0 {
		return &PropagationResult{}, nil
	}
	var res *PropagationResult
	err := p.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		if _, err := tasks.GetByID(ctx, taskID); err != nil {
			return err
		}
		var err error
		res, err = p.propagate(ctx, tasks, taskID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// propagate walks the dependents of rootID depth-first through tasks, which
// must be bound to the caller's transaction. Every task is shifted at most
// once per run. Completed and cancelled dependents are skipped and stop the
// walk along their branch, as do dependents without a due date. An edge
// back to a task on the current path is recorded as a cycle and not
// followed.
func (p *Propagator) propagate(ctx context.Context, tasks repository.TaskRepo, rootID string, delta time.Duration) (*PropagationResult, error) {
	res := &PropagationResult{Delta: delta}
	if delta == 0 {
		return res, nil
	}
	w := &propagationWalk{
		tasks:    tasks,
		delta:    delta,
		now:      p.now(),
		maxDepth: p.maxDepth,
		root:     rootID,
		res:      res,
		visited:  map[string]bool{rootID: true},
		onPath:   map[string]bool{rootID: true},
	}
	if err := w.visit(ctx, rootID, 0); err != nil {
		return nil, err
	}
	return res, nil
}

type propagationWalk struct {
	tasks    repository.TaskRepo
	delta    time.Duration
	now      time.Time
	maxDepth int
	root     string
	res      *PropagationResult
	visited  map[string]bool
	onPath   map[string]bool
}

func (w *propagationWalk) visit(ctx context.Context, id string, depth int) error {
	deps, err := w.tasks.ListDependentIDs(ctx, id)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if w.onPath[dep] {
			w.res.CyclesDetected = append(w.res.CyclesDetected, dep)
			continue
		}
		if w.visited[dep] {
			continue
		}
		w.visited[dep] = true
		if depth+1 > w.maxDepth {
			return fmt.Errorf("%w: %d levels below task %s", ErrPropagationDepthExceeded, w.maxDepth, w.root)
		}

		t, err := w.tasks.GetByID(ctx, dep)
		if err != nil {
			return err
		}
		if t.IsTerminal() || t.DueDate == nil {
			w.res.Skipped = append(w.res.Skipped, dep)
			continue
		}

		oldDue := *t.DueDate
		t.ShiftDates(w.delta, w.now)
		if err := w.tasks.Update(ctx, t); err != nil {
			return err
		}
		if err := w.tasks.LogActivity(ctx, &domain.TaskActivity{
			ID:        uuid.New().String(),
			TaskID:    t.ID,
			Action:    domain.ActivityDueShifted,
			Detail:    fmt.Sprintf("%s -> %s (via %s)", oldDue.Format(time.RFC3339), t.DueDate.Format(time.RFC3339), id),
			CreatedAt: w.now,
		}); err != nil {
			return err
		}
		w.res.Shifted = append(w.res.Shifted, TaskShift{TaskID: t.ID, OldDue: oldDue, NewDue: *t.DueDate, Depth: depth + 1})

		w.onPath[dep] = true
		err = w.visit(ctx, dep, depth+1)
		w.onPath[dep] = false
		if err != nil {
			return err
		}
	}
	return nil
}
