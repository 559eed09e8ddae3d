package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConflicts_BackToBackDoesNotConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	env.addEvent(t, env.host.ID, at(10, 0), at(10, 30))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(10, 30), at(11, 0), "")
	assert.False(t, det.HasConflict)
	det = svc.DetectConflicts(context.Background(), env.host.ID, at(9, 30), at(10, 0), "")
	assert.False(t, det.HasConflict)
}

func TestDetectConflicts_SuggestsGapsOfTheDay(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	existing := env.addEvent(t, env.host.ID, at(10, 0), at(10, 30))
	env.addEvent(t, env.host.ID, at(11, 0), at(16, 0))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(10, 0), at(10, 30), "")
	require.True(t, det.HasConflict)
	require.Len(t, det.ConflictingEvents, 1)
	assert.Equal(t, existing.ID, det.ConflictingEvents[0].ID)
	// Gaps: 09:00-10:00, 10:30-11:00, 16:00-17:00 (tail of day).
	assert.Equal(t, []string{"Mon 09:00", "Mon 10:30", "Mon 16:00"}, startsOf(det.SuggestedTimes))
}

func TestDetectConflicts_SuggestionsRespectLimitAndNow(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(at(9, 20))
	env.opts.SuggestionLimit = 1
	svc := NewConflictService(env.repos, env.opts)
	env.addEvent(t, env.host.ID, at(13, 0), at(14, 0))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(13, 0), at(14, 0), "")
	require.True(t, det.HasConflict)
	assert.Equal(t, []string{"Mon 09:20"}, startsOf(det.SuggestedTimes))
}

func TestDetectConflicts_ExcludesEditedEvent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	ev := env.addEvent(t, env.host.ID, at(10, 0), at(11, 0))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(10, 30), at(11, 30), ev.ID)
	assert.False(t, det.HasConflict)
}

func TestDetectConflicts_AttendeeCommitmentsCount(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	other := env.addParticipant(t, "Oskar")
	env.addEvent(t, other.ID, at(14, 0), at(15, 0), testutil.WithAttendees(env.host.ID))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(14, 30), at(15, 30), "")
	assert.True(t, det.HasConflict)
}

func TestDetectConflicts_RecurringSeriesBlocks(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	weekBefore := monday.AddDate(0, 0, -7)
	series := env.addEvent(t, env.host.ID, testutil.At(weekBefore, 10, 0), testutil.At(weekBefore, 10, 30),
		testutil.WithRecurrence("FREQ=DAILY"))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(10, 15), at(10, 45), "")
	require.True(t, det.HasConflict)
	assert.Equal(t, series.ID, det.ConflictingEvents[0].SeriesID())
	assert.True(t, at(10, 0).Equal(det.ConflictingEvents[0].Start))

	det = svc.DetectConflicts(context.Background(), env.host.ID, at(10, 15), at(10, 45), series.ID)
	assert.False(t, det.HasConflict, "excluding the series excludes its occurrences")
}

func TestDetectConflicts_ZeroLengthEventsDoNotBlock(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	env.addEvent(t, env.host.ID, at(10, 15), at(10, 15), testutil.WithKind(domain.EventReminder))

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(10, 0), at(10, 30), "")
	assert.False(t, det.HasConflict)
}

func TestDetectConflicts_FailOpenButStrictFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	env.addEvent(t, env.host.ID, at(10, 0), at(10, 30))
	require.NoError(t, env.db.Close())

	det := svc.DetectConflicts(context.Background(), env.host.ID, at(10, 0), at(10, 30), "")
	assert.False(t, det.HasConflict)

	_, err := svc.CheckStrict(context.Background(), env.host.ID, at(10, 0), at(10, 30), "")
	assert.Error(t, err)
}

func TestCheckStrict_ReturnsConflictError(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	env.addEvent(t, env.host.ID, at(10, 0), at(10, 30))

	det, err := svc.CheckStrict(context.Background(), env.host.ID, at(10, 0), at(10, 30), "")
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.True(t, det.HasConflict)
	assert.Len(t, ce.Detection.ConflictingEvents, 1)

	_, err = svc.CheckStrict(context.Background(), env.host.ID, at(11, 0), at(10, 0), "")
	assert.True(t, IsValidation(err))
}

func TestOverlapIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	svc := NewConflictService(env.repos, env.opts)
	a := env.addParticipant(t, "A")
	b := env.addParticipant(t, "B")
	env.addEvent(t, a.ID, at(10, 0), at(11, 0))
	env.addEvent(t, b.ID, at(10, 30), at(11, 30))

	ab := svc.DetectConflicts(context.Background(), a.ID, at(10, 30), at(11, 30), "")
	ba := svc.DetectConflicts(context.Background(), b.ID, at(10, 0), at(11, 0), "")
	assert.Equal(t, ab.HasConflict, ba.HasConflict)
	assert.True(t, ab.HasConflict)
}
