package recurrence

import (
	"testing"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standup() domain.CalendarEvent {
	start := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC) // Monday
	return domain.CalendarEvent{
		ID:         "standup",
		OwnerID:    "p1",
		Title:      "Standup",
		Start:      start,
		End:        start.Add(15 * time.Minute),
		Kind:       domain.EventMeeting,
		Recurrence: "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR",
	}
}

func TestOccurrences_WeekWindow(t *testing.T) {
	from := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	occ, err := Occurrences(standup(), from, to)
	require.NoError(t, err)
	require.Len(t, occ, 5, "one per weekday")
	for _, o := range occ {
		assert.Equal(t, 9, o.Start.Hour())
		assert.Equal(t, 30, o.Start.Minute())
		assert.Equal(t, 15*time.Minute, o.End.Sub(o.Start))
		assert.Equal(t, "standup", o.OccurrenceOf)
		assert.Equal(t, "standup", o.SeriesID())
		assert.NotEqual(t, "standup", o.ID)
	}
	assert.Equal(t, time.Monday, occ[0].Start.Weekday())
	assert.Equal(t, time.Friday, occ[4].Start.Weekday())
}

func TestOccurrences_PartialOverlapAtWindowStart(t *testing.T) {
	ev := standup()
	from := time.Date(2025, 3, 17, 9, 40, 0, 0, time.UTC)
	to := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	occ, err := Occurrences(ev, from, to)
	require.NoError(t, err)
	require.Len(t, occ, 1, "the 09:30 instance still runs at 09:40")
}

func TestOccurrences_BackToBackExcluded(t *testing.T) {
	ev := standup()
	from := time.Date(2025, 3, 17, 9, 45, 0, 0, time.UTC)
	to := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	occ, err := Occurrences(ev, from, to)
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestExpand_MixedEvents(t *testing.T) {
	single := domain.CalendarEvent{
		ID:    "single",
		Start: time.Date(2025, 3, 18, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 18, 15, 0, 0, 0, time.UTC),
	}
	outside := domain.CalendarEvent{
		ID:    "outside",
		Start: time.Date(2025, 4, 18, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 18, 15, 0, 0, 0, time.UTC),
	}
	broken := single
	broken.ID = "broken"
	broken.Recurrence = "FREQ=SOMETIMES"

	from := time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	got := Expand([]domain.CalendarEvent{standup(), single, outside, broken}, from, to)

	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.SeriesID())
	}
	assert.ElementsMatch(t, []string{"standup", "single", "broken"}, ids)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(""))
	assert.NoError(t, Validate("FREQ=WEEKLY;COUNT=4"))
	assert.NoError(t, Validate("RRULE:FREQ=WEEKLY;BYDAY=MO"))
	assert.Error(t, Validate("FREQ=SOMETIMES"))
}

func TestOccurrences_CountLimitsSeries(t *testing.T) {
	ev := standup()
	ev.Recurrence = "FREQ=DAILY;COUNT=3"
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	occ, err := Occurrences(ev, from, to)
	require.NoError(t, err)
	assert.Len(t, occ, 3)
}

func TestOccurrences_KeepsWallClockAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, ny) // Monday, EST
	ev := domain.CalendarEvent{
		ID:         "weekly",
		OwnerID:    "p1",
		Start:      start.UTC(),
		End:        start.Add(time.Hour).UTC(),
		Timezone:   "America/New_York",
		Recurrence: "FREQ=WEEKLY;BYDAY=MO",
	}
	from := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	occ, err := Occurrences(ev, from, to)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.True(t, time.Date(2026, 7, 6, 13, 0, 0, 0, time.UTC).Equal(occ[0].Start), "09:00 EDT")
	assert.Equal(t, 9, occ[0].Start.In(ny).Hour())
	assert.Equal(t, time.Hour, occ[0].Duration())
	assert.Equal(t, time.UTC, occ[0].Start.Location())
}

func TestOccurrences_UTCSeriesShiftsLocalTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ev := domain.CalendarEvent{
		ID:         "weekly",
		OwnerID:    "p1",
		Start:      time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC),
		Recurrence: "FREQ=WEEKLY;BYDAY=MO",
	}
	from := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)

	occ, err := Occurrences(ev, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, 14, occ[0].Start.Hour())
	assert.Equal(t, 10, occ[0].Start.In(ny).Hour())
}

func TestOccurrences_SkipsExDates(t *testing.T) {
	ev := standup()
	ev.ExDates = []time.Time{time.Date(2025, 3, 18, 9, 30, 0, 0, time.UTC)}
	from := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

	occ, err := Occurrences(ev, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, occ, 4)
	for _, o := range occ {
		assert.NotEqual(t, time.Tuesday, o.Start.Weekday())
		assert.Empty(t, o.ExDates)
	}
}

func TestOccurrences_ExDateMatchesInstantInAnyZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, ny)
	ev := domain.CalendarEvent{
		ID:         "weekly",
		OwnerID:    "p1",
		Start:      start.UTC(),
		End:        start.Add(30 * time.Minute).UTC(),
		Timezone:   "America/New_York",
		Recurrence: "FREQ=WEEKLY;BYDAY=MO",
		ExDates:    []time.Time{time.Date(2026, 7, 13, 13, 0, 0, 0, time.UTC)},
	}
	from := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)

	occ, err := Occurrences(ev, from, from.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, 6, occ[0].Start.Day())
}
