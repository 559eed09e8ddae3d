package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskRepo(t *testing.T) *SQLiteTaskRepo {
	t.Helper()
	return NewSQLiteTaskRepo(testutil.NewTestDB(t))
}

func TestTaskRepo_CreateWithDependents(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	b := testutil.NewTestTask("Review")
	c := testutil.NewTestTask("Ship")
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, c))

	due := testutil.At(day, 17, 0)
	a := testutil.NewTestTask("Draft",
		testutil.WithDueDate(due),
		testutil.WithStartDate(due.AddDate(0, 0, -2)),
		testutil.WithAssignee("alice"),
		testutil.WithDependents(c.ID, b.ID),
	)
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AssigneeID)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	require.NotNil(t, got.StartDate)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, got.Dependents)
	assert.Nil(t, got.CompletedAt)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	_, err := newTaskRepo(t).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_DependentEdges(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	a := testutil.NewTestTask("A")
	b := testutil.NewTestTask("B")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.AddDependent(ctx, a.ID, b.ID))
	require.NoError(t, repo.AddDependent(ctx, a.ID, b.ID), "adding twice is a no-op")
	ids, err := repo.ListDependentIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids)

	assert.Error(t, repo.AddDependent(ctx, a.ID, a.ID), "self edge rejected")
	assert.Error(t, repo.AddDependent(ctx, a.ID, "ghost"), "unknown dependent rejected")

	require.NoError(t, repo.RemoveDependent(ctx, a.ID, b.ID))
	ids, err = repo.ListDependentIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTaskRepo_ListByAssigneeHidesShadows(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	normal := testutil.NewTestTask("Write proposal", testutil.WithAssignee("alice"))
	shadow := testutil.NewTestTask("Call with client", testutil.WithAssignee("alice"), testutil.AsShadow("bk-1"))
	other := testutil.NewTestTask("Other", testutil.WithAssignee("bob"))
	for _, task := range []*domain.Task{normal, shadow, other} {
		require.NoError(t, repo.Create(ctx, task))
	}

	visible, err := repo.ListByAssignee(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, normal.ID, visible[0].ID)

	all, err := repo.ListByAssignee(ctx, "alice", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTaskRepo_ListDueBetween(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	in := testutil.NewTestTask("In", testutil.WithAssignee("alice"), testutil.WithDueDate(testutil.At(day, 12, 0)))
	edge := testutil.NewTestTask("Edge", testutil.WithAssignee("alice"), testutil.WithDueDate(day.AddDate(0, 0, 1)))
	undated := testutil.NewTestTask("Undated", testutil.WithAssignee("alice"))
	for _, task := range []*domain.Task{in, edge, undated} {
		require.NoError(t, repo.Create(ctx, task))
	}

	tasks, err := repo.ListDueBetween(ctx, "alice", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, in.ID, tasks[0].ID)
}

func TestTaskRepo_UpdateAndActivity(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	task := testutil.NewTestTask("Draft", testutil.WithDueDate(testutil.At(day, 17, 0)))
	require.NoError(t, repo.Create(ctx, task))

	now := time.Now().UTC()
	task.ShiftDates(48*time.Hour, now)
	task.SetStatus(domain.TaskCompleted, now)
	require.NoError(t, repo.Update(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, testutil.At(day, 17, 0).Add(48*time.Hour).Equal(*got.DueDate))
	assert.Equal(t, domain.TaskCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	require.NoError(t, repo.LogActivity(ctx, &domain.TaskActivity{
		ID: "a1", TaskID: task.ID, Action: domain.ActivityDueShifted, Detail: "+48h", CreatedAt: now,
	}))
	require.NoError(t, repo.LogActivity(ctx, &domain.TaskActivity{
		ID: "a2", TaskID: task.ID, Action: domain.ActivityStatusChange, Detail: "completed", CreatedAt: now,
	}))
	acts, err := repo.ListActivity(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, domain.ActivityDueShifted, acts[0].Action)
	assert.Equal(t, domain.ActivityStatusChange, acts[1].Action)
}

func TestTaskRepo_DeleteCascadesEdges(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(database)
	ctx := context.Background()

	a := testutil.NewTestTask("A")
	b := testutil.NewTestTask("B")
	require.NoError(t, repo.Create(ctx, b))
	a.Dependents = []string{b.ID}
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, repo.Delete(ctx, b.ID))
	ids, err := repo.ListDependentIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
