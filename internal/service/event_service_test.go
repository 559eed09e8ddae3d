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

func newEventService(env *testEnv) EventService {
	return NewEventService(env.repos, env.uow, env.opts)
}

func TestCreateEvent_ConflictReturnsDataAndPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()
	env.addEvent(t, env.host.ID, at(10, 0), at(10, 30))

	dup := testutil.NewTestEvent(env.host.ID, at(10, 0), at(10, 30))
	created, conflict, err := svc.CreateEvent(ctx, dup, false)
	require.NoError(t, err)
	assert.Nil(t, created)
	require.NotNil(t, conflict)
	assert.True(t, conflict.HasConflict)

	from, to := at(0, 0), at(23, 59)
	events, err := svc.GetEvents(ctx, env.host.ID, &from, &to)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	created, conflict, err = svc.CreateEvent(ctx, dup, true)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	require.NotNil(t, created)
	events, err = svc.GetEvents(ctx, env.host.ID, &from, &to)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestCreateEvent_BackToBackCoexist(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	_, conflict, err := svc.CreateEvent(ctx, testutil.NewTestEvent(env.host.ID, at(10, 0), at(10, 30)), false)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	_, conflict, err = svc.CreateEvent(ctx, testutil.NewTestEvent(env.host.ID, at(10, 30), at(11, 0)), false)
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestCreateEvent_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	tests := []struct {
		name string
		ev   *domain.CalendarEvent
	}{
		{"end before start", testutil.NewTestEvent(env.host.ID, at(11, 0), at(10, 0))},
		{"missing owner", testutil.NewTestEvent("", at(10, 0), at(11, 0))},
		{"unknown kind", testutil.NewTestEvent(env.host.ID, at(10, 0), at(11, 0), testutil.WithKind("party"))},
		{"bad recurrence", testutil.NewTestEvent(env.host.ID, at(10, 0), at(11, 0), testutil.WithRecurrence("FREQ=SOMETIMES"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateEvent(ctx, tt.ev, false)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestCreateEvent_DefaultsAndStoreRollback(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("disk full")
	// Exec 1 inserts the event, exec 2 clears its attendee rows.
	svc := NewEventService(env.repos, &testutil.FailOnNthExecUoW{DB: env.db, FailOn: 2, Err: boom}, env.opts)
	ctx := context.Background()

	ev := &domain.CalendarEvent{OwnerID: env.host.ID, Title: "Planning", Start: at(9, 0), End: at(9, 30)}
	_, _, err := svc.CreateEvent(ctx, ev, false)
	require.ErrorIs(t, err, boom)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, domain.EventMeeting, ev.Kind)

	_, err = env.repos.Events.GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateEvent_MovingChecksEverythingButItself(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	ev := env.addEvent(t, env.host.ID, at(10, 0), at(11, 0))
	env.addEvent(t, env.host.ID, at(13, 0), at(14, 0))

	start, end := at(10, 30), at(11, 30)
	moved, conflict, err := svc.UpdateEvent(ctx, ev.ID, domain.EventUpdate{Start: &start, End: &end}, false)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.True(t, start.Equal(moved.Start))

	start, end = at(13, 30), at(14, 30)
	moved, conflict, err = svc.UpdateEvent(ctx, ev.ID, domain.EventUpdate{Start: &start, End: &end}, false)
	require.NoError(t, err)
	assert.Nil(t, moved)
	require.NotNil(t, conflict)
	assert.Len(t, conflict.ConflictingEvents, 1)

	stored, err := svc.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, at(10, 30).Equal(stored.Start), "conflicting move is not applied")

	moved, conflict, err = svc.UpdateEvent(ctx, ev.ID, domain.EventUpdate{Start: &start, End: &end}, true)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.True(t, start.Equal(moved.Start))
}

func TestUpdateEvent_TitleOnlySkipsConflictCheck(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	a := env.addEvent(t, env.host.ID, at(10, 0), at(11, 0))
	env.addEvent(t, env.host.ID, at(10, 0), at(11, 0))

	title := "Renamed"
	updated, conflict, err := svc.UpdateEvent(ctx, a.ID, domain.EventUpdate{Title: &title}, false)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateEvent_InvalidAndMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()
	ev := env.addEvent(t, env.host.ID, at(10, 0), at(11, 0))

	end := at(9, 0)
	_, _, err := svc.UpdateEvent(ctx, ev.ID, domain.EventUpdate{End: &end}, false)
	assert.True(t, IsValidation(err))

	_, _, err = svc.UpdateEvent(ctx, "missing", domain.EventUpdate{End: &end}, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()
	ev := env.addEvent(t, env.host.ID, at(10, 0), at(11, 0))

	require.NoError(t, svc.DeleteEvent(ctx, ev.ID))
	_, err := svc.GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEvent(ctx, ev.ID), repository.ErrNotFound)
}

func TestGetEvents_ExpandsRecurringWithinBounds(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()
	env.addEvent(t, env.host.ID, at(8, 0), at(8, 15), testutil.WithRecurrence("FREQ=DAILY;COUNT=10"), testutil.WithTitle("Standup"))
	env.addEvent(t, env.host.ID, at(12, 0), at(13, 0))

	from, to := monday, monday.AddDate(0, 0, 3)
	events, err := svc.GetEvents(ctx, env.host.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "Standup", events[0].Title)
	assert.NotEmpty(t, events[0].OccurrenceOf)
	assert.True(t, at(12, 0).Equal(events[1].Start))

	all, err := svc.GetEvents(ctx, env.host.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2, "open ranges return stored series unexpanded")

	_, err = svc.GetEvents(ctx, "", nil, nil)
	assert.True(t, IsValidation(err))
}

func TestImportEvents_IdempotentOnUID(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	batch := []domain.CalendarEvent{
		{Title: "Dentist", Start: at(15, 0), End: at(16, 0), ExternalUID: "uid-1"},
		{Title: "Flight", Start: at(18, 0), End: at(21, 0), ExternalUID: "uid-2"},
	}
	res, err := svc.ImportEvents(ctx, env.host.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Created: 2}, res)

	batch[0].End = at(16, 30)
	res, err = svc.ImportEvents(ctx, env.host.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Updated: 2}, res)

	got, err := env.repos.Events.GetByExternalUID(ctx, env.host.ID, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceICS, got.Source)
	assert.True(t, at(16, 30).Equal(got.End))

	_, err = svc.ImportEvents(ctx, env.host.ID, []domain.CalendarEvent{{Title: "No UID", Start: at(9, 0), End: at(10, 0)}})
	assert.True(t, IsValidation(err))
}

func TestImportedEventsBlockBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := newEventService(env).ImportEvents(ctx, env.host.ID, []domain.CalendarEvent{
		{Title: "Busy", Start: at(9, 0), End: at(17, 0), ExternalUID: "all-day-block"},
	})
	require.NoError(t, err)

	res, err := NewSlotService(env.repos, env.opts).GetAvailableSlots(ctx, env.tenant.ID, monday, 30)
	require.NoError(t, err)
	assert.Empty(t, res.Bookable())
}

func TestCreateEvent_SeriesRepeatsInOwnerZone(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	nyTenant := testutil.NewTestTenant("Harbor", testutil.WithTimezone("America/New_York"))
	require.NoError(t, env.repos.Tenants.Create(ctx, nyTenant))
	owner := testutil.NewTestParticipant(nyTenant.ID, "Noor")
	require.NoError(t, env.repos.Participants.Create(ctx, owner))

	start := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC) // 09:00 EST
	created, conflict, err := svc.CreateEvent(ctx, &domain.CalendarEvent{
		OwnerID: owner.ID, Title: "Weekly", Start: start, End: start.Add(time.Hour),
		Recurrence: "FREQ=WEEKLY;BYDAY=MO",
	}, false)
	require.NoError(t, err)
	require.Nil(t, conflict)
	assert.Equal(t, "America/New_York", created.Timezone)

	from := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	events, err := svc.GetEvents(ctx, owner.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, time.Date(2026, 7, 6, 13, 0, 0, 0, time.UTC).Equal(events[0].Start), "still 09:00 local in summer")

	single, _, err := svc.CreateEvent(ctx, &domain.CalendarEvent{
		OwnerID: owner.ID, Title: "Once", Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 1).Add(time.Hour),
	}, false)
	require.NoError(t, err)
	assert.Empty(t, single.Timezone)

	utcSeries, _, err := svc.CreateEvent(ctx, &domain.CalendarEvent{
		OwnerID: env.host.ID, Title: "Standup", Start: at(9, 0), End: at(9, 15),
		Recurrence: "FREQ=DAILY;COUNT=3",
	}, false)
	require.NoError(t, err)
	assert.Empty(t, utcSeries.Timezone)
}

func TestImportEvents_UpdateCarriesZoneAndExclusions(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	ctx := context.Background()

	series := domain.CalendarEvent{
		Title: "Standup", Start: at(8, 0), End: at(8, 15), ExternalUID: "series-1",
		Recurrence: "FREQ=DAILY;COUNT=5",
	}
	_, err := svc.ImportEvents(ctx, env.host.ID, []domain.CalendarEvent{series})
	require.NoError(t, err)

	series.Timezone = "Europe/Berlin"
	series.ExDates = []time.Time{at(8, 0).AddDate(0, 0, 1)}
	res, err := svc.ImportEvents(ctx, env.host.ID, []domain.CalendarEvent{series})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	got, err := env.repos.Events.GetByExternalUID(ctx, env.host.ID, "series-1")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	require.Len(t, got.ExDates, 1)
	assert.True(t, at(8, 0).AddDate(0, 0, 1).Equal(got.ExDates[0]))
}
