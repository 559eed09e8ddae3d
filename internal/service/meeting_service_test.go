package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/alexanderramin/horizon/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMeetingService(env *testEnv) MeetingService {
	return NewMeetingService(NewAvailabilityService(env.repos), env.opts)
}

func TestFindOptimalMeetingTime_PreferredDate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addParticipant(t, "Alice")
	bob := env.addParticipant(t, "Bob")
	env.addEvent(t, alice.ID, at(9, 0), at(12, 0))
	env.addEvent(t, bob.ID, at(13, 0), at(15, 0))

	day := monday
	times, err := newMeetingService(env).FindOptimalMeetingTime(context.Background(),
		[]string{alice.ID, bob.ID}, 60, &day)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mon 12:00", "Mon 15:00"}, startsOf(times))
}

func TestFindOptimalMeetingTime_ResultsValidForEveryone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ids := []string{env.host.ID}
	busy := map[string][]interval.Interval{}
	for i, name := range []string{"A", "B", "C"} {
		p := env.addParticipant(t, name)
		ids = append(ids, p.ID)
		for d := 0; d < 5; d++ {
			day := monday.AddDate(0, 0, d)
			start := day.Add(time.Duration(9+i*2+d%2) * time.Hour)
			env.addEvent(t, p.ID, start, start.Add(90*time.Minute))
			busy[p.ID] = append(busy[p.ID], interval.New(start, start.Add(90*time.Minute)))
		}
	}
	env.setNow(monday)

	times, err := newMeetingService(env).FindOptimalMeetingTime(ctx, ids, 45, nil)
	require.NoError(t, err)
	require.Len(t, times, scheduler.DefaultSuggestionLimit)
	for _, start := range times {
		cand := interval.New(start, start.Add(45*time.Minute))
		for id, ivs := range busy {
			for _, b := range ivs {
				assert.False(t, cand.Overlaps(b), "%s overlaps %s's commitment", start, id)
			}
		}
	}
}

func TestFindOptimalMeetingTime_NeverInThePast(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(at(14, 10).Add(20 * time.Second))
	day := monday

	times, err := newMeetingService(env).FindOptimalMeetingTime(context.Background(), []string{env.host.ID}, 30, &day)
	require.NoError(t, err)
	require.NotEmpty(t, times)
	assert.Equal(t, "Mon 14:11", startsOf(times)[0])

	yesterday := monday.AddDate(0, 0, -1)
	times, err = newMeetingService(env).FindOptimalMeetingTime(context.Background(), []string{env.host.ID}, 30, &yesterday)
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestFindOptimalMeetingTime_NoCommonTime(t *testing.T) {
	env := newTestEnv(t)
	a := env.addParticipant(t, "A")
	b := env.addParticipant(t, "B")
	env.addEvent(t, a.ID, at(9, 0), at(13, 0))
	env.addEvent(t, b.ID, at(13, 0), at(17, 0))
	day := monday

	times, err := newMeetingService(env).FindOptimalMeetingTime(context.Background(), []string{a.ID, b.ID, a.ID}, 30, &day)
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestFindOptimalMeetingTime_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := newMeetingService(env)

	_, err := svc.FindOptimalMeetingTime(context.Background(), nil, 30, nil)
	assert.True(t, IsValidation(err))
	_, err = svc.FindOptimalMeetingTime(context.Background(), []string{env.host.ID}, 0, nil)
	assert.True(t, IsValidation(err))
}

type failingAvailability struct{ err error }

func (f failingAvailability) Availability(context.Context, string, time.Time, time.Time) ([]scheduler.DayAvailability, error) {
	return nil, f.err
}

func TestFindOptimalMeetingTime_FetchFailureFailsCall(t *testing.T) {
	boom := errors.New("store unavailable")
	svc := NewMeetingService(failingAvailability{err: boom}, Options{Now: func() time.Time { return fixedNow }})

	_, err := svc.FindOptimalMeetingTime(context.Background(), []string{"a", "b"}, 30, nil)
	assert.ErrorIs(t, err, boom)
}
