package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_ShiftDates(t *testing.T) {
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	start := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC)
	task := &Task{StartDate: &start, DueDate: &due}

	assert.True(t, task.ShiftDates(48*time.Hour, now))
	assert.Equal(t, time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC), *task.DueDate)
	assert.Equal(t, time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC), *task.StartDate)
	assert.Equal(t, now, task.UpdatedAt)
	assert.Equal(t, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), due, "original value must not be aliased")
}

func TestTask_ShiftDatesWithoutDueDate(t *testing.T) {
	task := &Task{}
	assert.False(t, task.ShiftDates(time.Hour, time.Now()))
	assert.Nil(t, task.DueDate)
}

func TestTask_SetStatusMaintainsCompletedAt(t *testing.T) {
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskTodo}
	task.SetStatus(TaskCompleted, now)
	assert.NotNil(t, task.CompletedAt)
	assert.True(t, task.IsTerminal())

	task.SetStatus(TaskInProgress, now)
	assert.Nil(t, task.CompletedAt)
	assert.False(t, task.IsTerminal())
}

func TestTask_Validate(t *testing.T) {
	start := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 0, -1)
	assert.Error(t, (&Task{Status: TaskTodo}).Validate())
	assert.Error(t, (&Task{Title: "x", Status: "bogus"}).Validate())
	assert.Error(t, (&Task{Title: "x", Status: TaskTodo, StartDate: &start, DueDate: &due}).Validate())
	assert.NoError(t, (&Task{Title: "x", Status: TaskTodo}).Validate())
}

func TestDueDateChanged(t *testing.T) {
	a := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("X", 3600))
	c := a.Add(time.Hour)
	assert.False(t, DueDateChanged(nil, nil))
	assert.True(t, DueDateChanged(nil, &a))
	assert.True(t, DueDateChanged(&a, nil))
	assert.False(t, DueDateChanged(&a, &b), "same instant in another zone is unchanged")
	assert.True(t, DueDateChanged(&a, &c))
}

func TestCalendarEvent_Validate(t *testing.T) {
	start := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	ok := &CalendarEvent{OwnerID: "p1", Start: start, End: start.Add(time.Hour), Kind: EventMeeting}
	assert.NoError(t, ok.Validate())

	zero := *ok
	zero.End = zero.Start
	assert.NoError(t, zero.Validate(), "zero-length events are allowed")

	backwards := *ok
	backwards.End = start.Add(-time.Minute)
	assert.Error(t, backwards.Validate())

	badKind := *ok
	badKind.Kind = "party"
	assert.Error(t, badKind.Validate())

	noOwner := *ok
	noOwner.OwnerID = ""
	assert.Error(t, noOwner.Validate())
}

func TestCalendarEvent_Involves(t *testing.T) {
	e := &CalendarEvent{OwnerID: "p1", Attendees: []string{"p2"}}
	assert.True(t, e.Involves("p1"))
	assert.True(t, e.Involves("p2"))
	assert.False(t, e.Involves("p3"))
}

func TestEventUpdate_Apply(t *testing.T) {
	start := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	e := CalendarEvent{Title: "Old", Start: start, End: start.Add(time.Hour), Attendees: []string{"a"}}
	newTitle := "New"
	newEnd := start.Add(2 * time.Hour)
	attendees := []string{"b", "c"}
	u := EventUpdate{Title: &newTitle, End: &newEnd, Attendees: &attendees}

	got := u.Apply(e)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, start, got.Start)
	assert.Equal(t, newEnd, got.End)
	assert.Equal(t, []string{"b", "c"}, got.Attendees)
	assert.Equal(t, "Old", e.Title, "source is not mutated")
	assert.True(t, u.TouchesSchedule())
	assert.False(t, EventUpdate{Title: &newTitle}.TouchesSchedule())
}
