package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/repository"
	"github.com/alexanderramin/horizon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

// addTasks stores one dated task per id, due on consecutive days from monday.
func (e *testEnv) addTasks(t *testing.T, ids ...string) {
	t.Helper()
	for i, id := range ids {
		task := testutil.NewTestTask("task "+id,
			testutil.WithAssignee(e.host.ID),
			testutil.WithDueDate(monday.AddDate(0, 0, i)))
		task.ID = id
		require.NoError(t, e.repos.Tasks.Create(context.Background(), task))
	}
}

func (e *testEnv) link(t *testing.T, edges ...[2]string) {
	t.Helper()
	for _, edge := range edges {
		require.NoError(t, e.repos.Tasks.AddDependent(context.Background(), edge[0], edge[1]))
	}
}

func (e *testEnv) dueOf(t *testing.T, id string) time.Time {
	t.Helper()
	task, err := e.repos.Tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	return *task.DueDate
}

func shiftedIDs(res *PropagationResult) []string {
	var out []string
	for _, s := range res.Shifted {
		out = append(out, s.TaskID)
	}
	return out
}

func TestOnTaskDueDateChanged_Chain(t *testing.T) {
	env := newTestEnv(t)
	env.addTasks(t, "a", "b", "c")
	env.link(t, [2]string{"a", "b"}, [2]string{"b", "c"})
	svc := NewTaskService(env.repos, env.uow, env.opts)

	res, err := svc.OnTaskDueDateChanged(context.Background(), "a", monday, monday.Add(2*day))
	require.NoError(t, err)

	assert.Equal(t, 2*day, res.Delta)
	assert.Equal(t, []string{"b", "c"}, shiftedIDs(res))
	assert.Equal(t, 2, res.Shifted[1].Depth)
	assert.True(t, env.dueOf(t, "b").Equal(monday.AddDate(0, 0, 3)))
	assert.True(t, env.dueOf(t, "c").Equal(monday.AddDate(0, 0, 4)))
	// The root is the caller's to move.
	assert.True(t, env.dueOf(t, "a").Equal(monday))

	acts, err := svc.Activity(context.Background(), "c")
	require.NoError(t, err)
	require.NotEmpty(t, acts)
	assert.Equal(t, domain.ActivityDueShifted, acts[len(acts)-1].Action)
}

func TestOnTaskDueDateChanged_ZeroDeltaIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.addTasks(t, "a", "b")
	env.link(t, [2]string{"a", "b"})

	res, err := NewTaskService(env.repos, env.uow, env.opts).OnTaskDueDateChanged(context.Background(), "a", monday, monday)
	require.NoError(t, err)
	assert.Empty(t, res.Shifted)
	assert.True(t, env.dueOf(t, "b").Equal(monday.AddDate(0, 0, 1)))
}

func TestOnTaskDueDateChanged_UnknownRoot(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewTaskService(env.repos, env.uow, env.opts).OnTaskDueDateChanged(context.Background(), "ghost", monday, monday.Add(day))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOnTaskDueDateChanged_CycleTerminates(t *testing.T) {
	env := newTestEnv(t)
	env.addTasks(t, "a", "b", "c")
	env.link(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	res, err := NewTaskService(env.repos, env.uow, env.opts).OnTaskDueDateChanged(context.Background(), "a", monday, monday.Add(day))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, shiftedIDs(res))
	assert.Equal(t, []string{"a"}, res.CyclesDetected)
	assert.True(t, env.dueOf(t, "a").Equal(monday), "the root is not shifted through the cycle")
}

func TestOnTaskDueDateChanged_DiamondShiftsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addTasks(t, "a", "b", "c", "d")
	env.link(t, [2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})

	res, err := NewTaskService(env.repos, env.uow, env.opts).OnTaskDueDateChanged(context.Background(), "a", monday, monday.Add(day))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, shiftedIDs(res))
	assert.Empty(t, res.CyclesDetected)
	assert.True(t, env.dueOf(t, "d").Equal(monday.AddDate(0, 0, 4)), "shifted by one delta, not two")
}

func TestOnTaskDueDateChanged_SkipsTerminalAndUndated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a", "b", "d")
	undated := testutil.NewTestTask("undated", testutil.WithAssignee(env.host.ID))
	undated.ID = "c"
	require.NoError(t, env.repos.Tasks.Create(ctx, undated))
	done := testutil.NewTestTask("done", testutil.WithDueDate(monday), testutil.WithTaskStatus(domain.TaskCompleted))
	done.ID = "e"
	require.NoError(t, env.repos.Tasks.Create(ctx, done))
	// b and d sit behind the skipped tasks.
	env.link(t, [2]string{"a", "c"}, [2]string{"c", "b"}, [2]string{"a", "e"}, [2]string{"e", "d"})

	res, err := NewTaskService(env.repos, env.uow, env.opts).OnTaskDueDateChanged(ctx, "a", monday, monday.Add(day))
	require.NoError(t, err)
	assert.Empty(t, res.Shifted)
	assert.ElementsMatch(t, []string{"c", "e"}, res.Skipped)
	assert.True(t, env.dueOf(t, "e").Equal(monday))
	assert.True(t, env.dueOf(t, "d").Equal(monday.AddDate(0, 0, 2)))
}

func TestOnTaskDueDateChanged_DepthLimitRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.addTasks(t, "a", "b", "c", "d")
	env.link(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	env.opts.PropagationMaxDepth = 2

	_, err := NewTaskService(env.repos, env.uow, env.opts).OnTaskDueDateChanged(context.Background(), "a", monday, monday.Add(day))
	require.ErrorIs(t, err, ErrPropagationDepthExceeded)
	assert.True(t, env.dueOf(t, "b").Equal(monday.AddDate(0, 0, 1)), "shifts above the limit are rolled back")
	assert.True(t, env.dueOf(t, "c").Equal(monday.AddDate(0, 0, 2)))
}

func TestTaskUpdate_PropagatesInSameTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a", "b")
	env.link(t, [2]string{"a", "b"})
	svc := NewTaskService(env.repos, env.uow, env.opts)

	a, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	due := a.DueDate.Add(-day)
	a.DueDate = &due
	a.Title = "renamed"

	res, err := svc.Update(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, -day, res.Delta)
	assert.Equal(t, []string{"b"}, shiftedIDs(res))
	assert.True(t, env.dueOf(t, "b").Equal(monday))
}

func TestTaskUpdate_NoPropagationWithoutDateChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a", "b")
	env.link(t, [2]string{"a", "b"})
	svc := NewTaskService(env.repos, env.uow, env.opts)

	a, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	a.Title = "renamed"
	res, err := svc.Update(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, res.Shifted)

	// Clearing a due date is not a shift.
	a.DueDate = nil
	res, err = svc.Update(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, res.Shifted)
	assert.True(t, env.dueOf(t, "b").Equal(monday.AddDate(0, 0, 1)))
}

func TestTaskUpdate_WriteFailureRollsBackWholeChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a", "b", "c")
	env.link(t, [2]string{"a", "b"}, [2]string{"b", "c"})
	boom := errors.New("disk full")

	// Writes: a, a's activity, b, b's activity, then c fails.
	failing := &testutil.FailOnNthExecUoW{DB: env.db, FailOn: 5, Err: boom}
	svc := NewTaskService(env.repos, failing, env.opts)

	a, err := env.repos.Tasks.GetByID(ctx, "a")
	require.NoError(t, err)
	due := a.DueDate.Add(3 * day)
	a.DueDate = &due

	_, err = svc.Update(ctx, a)
	require.ErrorIs(t, err, boom)
	assert.True(t, env.dueOf(t, "a").Equal(monday))
	assert.True(t, env.dueOf(t, "b").Equal(monday.AddDate(0, 0, 1)))
	assert.True(t, env.dueOf(t, "c").Equal(monday.AddDate(0, 0, 2)))
}

func TestTaskUpdate_StatusMaintainsCompletedAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a")
	svc := NewTaskService(env.repos, env.uow, env.opts)

	a, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	a.Status = domain.TaskCompleted
	_, err = svc.Update(ctx, a)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(fixedNow))

	acts, err := svc.Activity(ctx, "a")
	require.NoError(t, err)
	var actions []string
	for _, act := range acts {
		actions = append(actions, act.Action)
	}
	assert.Contains(t, actions, domain.ActivityStatusChange)
}

func TestTaskSetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a")
	svc := NewTaskService(env.repos, env.uow, env.opts)

	require.NoError(t, svc.SetStatus(ctx, "a", domain.TaskCompleted))
	got, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	require.NoError(t, svc.SetStatus(ctx, "a", domain.TaskInProgress))
	got, err = svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)

	assert.True(t, IsValidation(svc.SetStatus(ctx, "a", "someday")))
	assert.ErrorIs(t, svc.SetStatus(ctx, "ghost", domain.TaskCompleted), repository.ErrNotFound)
}

func TestTaskCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewTaskService(env.repos, env.uow, env.opts)

	task := &domain.Task{Title: "Write proposal", AssigneeID: env.host.ID}
	require.NoError(t, svc.Create(ctx, task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, domain.TaskTodo, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)

	assert.True(t, IsValidation(svc.Create(ctx, &domain.Task{})))
	start, due := monday.Add(day), monday
	assert.True(t, IsValidation(svc.Create(ctx, &domain.Task{Title: "x", StartDate: &start, DueDate: &due})))
}

func TestTaskListByAssignee_HidesShadows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a")
	shadow := testutil.NewTestTask("meeting", testutil.WithAssignee(env.host.ID), testutil.AsShadow("booking-1"))
	require.NoError(t, env.repos.Tasks.Create(ctx, shadow))

	list, err := NewTaskService(env.repos, env.uow, env.opts).ListByAssignee(ctx, env.host.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

func TestTaskAddDependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addTasks(t, "a", "b")
	svc := NewTaskService(env.repos, env.uow, env.opts)

	assert.True(t, IsValidation(svc.AddDependent(ctx, "a", "a")))
	assert.ErrorIs(t, svc.AddDependent(ctx, "a", "ghost"), repository.ErrNotFound)
	require.NoError(t, svc.AddDependent(ctx, "a", "b"))

	a, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.Dependents)

	require.NoError(t, svc.RemoveDependent(ctx, "a", "b"))
	a, err = svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a.Dependents)
}
