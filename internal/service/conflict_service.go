package service

import (
	"context"
	"time"

	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/alexanderramin/horizon/internal/scheduler"
)

type conflictService struct {
	reader calendarReader
	opts   Options
}

func NewConflictService(repos Repos, opts Options) ConflictService {
	return &conflictService{reader: repos.calendar(), opts: opts.withDefaults()}
}

func (s *conflictService) DetectConflicts(ctx context.Context, participantID string, start, end time.Time, excludeEventID string) ConflictDetection {
	det, err := detectConflicts(ctx, s.reader, s.opts, participantID, start, end, excludeEventID)
	if err != nil {
		s.opts.Logger.WarnContext(ctx, "conflict detection failed, reporting no conflict",
			"participant", participantID, "error", err)
		return ConflictDetection{}
	}
	return det
}

func (s *conflictService) CheckStrict(ctx context.Context, participantID string, start, end time.Time, excludeEventID string) (ConflictDetection, error) {
	return checkStrict(ctx, s.reader, s.opts, participantID, start, end, excludeEventID)
}

func checkStrict(ctx context.Context, r calendarReader, opts Options, participantID string, start, end time.Time, excludeEventID string) (ConflictDetection, error) {
	det, err := detectConflicts(ctx, r, opts, participantID, start, end, excludeEventID)
	if err != nil {
		return ConflictDetection{}, err
	}
	if det.HasConflict {
		return det, &ConflictError{Detection: det}
	}
	return det, nil
}

// detectConflicts lists the participant's commitments overlapping
// [start, end). On a conflict it suggests gap starts inside the policy
// window of the candidate's calendar day. A zero-length candidate occupies
// no time and never conflicts.
func detectConflicts(ctx context.Context, r calendarReader, opts Options, participantID string, start, end time.Time, excludeEventID string) (ConflictDetection, error) {
	if participantID == "" {
		return ConflictDetection{}, invalid("participant_id", "is required")
	}
	if end.Before(start) {
		return ConflictDetection{}, invalid("end", "is before start")
	}
	candidate := interval.New(start, end)
	if candidate.Empty() {
		return ConflictDetection{}, nil
	}

	policy, err := r.policyForParticipant(ctx, participantID)
	if err != nil {
		return ConflictDetection{}, err
	}
	dayStart, dayEnd := policy.DayWindow(start)
	from, to := start, end
	if dayStart.Before(from) {
		from = dayStart
	}
	if dayEnd.After(to) {
		to = dayEnd
	}

	events, err := r.occurrences(ctx, participantID, from, to)
	if err != nil {
		return ConflictDetection{}, err
	}
	events = withoutEvent(events, excludeEventID)

	var det ConflictDetection
	for _, ev := range events {
		if ev.Start.Equal(ev.End) {
			continue
		}
		if candidate.Overlaps(interval.New(ev.Start, ev.End)) {
			det.ConflictingEvents = append(det.ConflictingEvents, ev)
		}
	}
	if len(det.ConflictingEvents) == 0 {
		return det, nil
	}

	det.HasConflict = true
	det.SuggestedTimes = scheduler.SuggestAlternatives(
		interval.New(dayStart, dayEnd),
		scheduler.BusyIntervals(events),
		candidate.Duration(),
		opts.Now(),
		opts.SuggestionLimit,
	)
	return det, nil
}
