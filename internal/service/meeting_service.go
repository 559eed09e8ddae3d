package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/alexanderramin/horizon/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

type meetingService struct {
	availability AvailabilityService
	opts         Options
}

func NewMeetingService(availability AvailabilityService, opts Options) MeetingService {
	return &meetingService{availability: availability, opts: opts.withDefaults()}
}

// FindOptimalMeetingTime returns up to SuggestionLimit start times at which
// every participant is free for durationMin. The search covers the
// preferred calendar date, or the next SearchDays days from now. Times in
// the past are never offered.
func (s *meetingService) FindOptimalMeetingTime(ctx context.Context, participantIDs []string, durationMin int, preferredDate *time.Time) (times []time.Time, err error) {
	startedAt := time.Now()
	fields := map[string]any{"participants": len(participantIDs), "duration_min": durationMin}
	defer func() {
		fields["found"] = len(times)
		observe(ctx, s.opts.Observer, "find-meeting-time", startedAt, fields, err)
	}()

	order := uniqueIDs(participantIDs)
	if len(order) == 0 {
		return nil, invalid("participant_ids", "at least one participant is required")
	}
	if durationMin <= 0 {
		return nil, invalid("duration_min", "must be positive")
	}

	now := ceilMinute(s.opts.Now())
	from, to := now, now.AddDate(0, 0, s.opts.SearchDays)
	if preferredDate != nil {
		from = localDate(*preferredDate, preferredDate.Location())
		to = from.AddDate(0, 0, 1)
	}
	if !to.After(now) {
		return nil, nil
	}

	free := make([][]interval.Interval, len(order))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range order {
		g.Go(func() error {
			days, err := s.availability.Availability(gctx, id, from, to)
			if err != nil {
				return fmt.Errorf("availability of %s: %w", id, err)
			}
			free[i] = notBefore(scheduler.FlattenFree(days), now)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string][]interval.Interval, len(order))
	for i, id := range order {
		byID[id] = free[i]
	}
	times = scheduler.FindCommonSlots(order, byID, time.Duration(durationMin)*time.Minute, s.opts.SuggestionLimit)
	return times, nil
}

// notBefore trims every interval to start no earlier than t.
func notBefore(ivs []interval.Interval, t time.Time) []interval.Interval {
	out := make([]interval.Interval, 0, len(ivs))
	for _, iv := range ivs {
		if !iv.End.After(t) {
			continue
		}
		if iv.Start.Before(t) {
			iv.Start = t
		}
		out = append(out, iv)
	}
	return out
}

func ceilMinute(t time.Time) time.Time {
	if r := t.Truncate(time.Minute); !r.Equal(t) {
		return r.Add(time.Minute)
	}
	return t
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
