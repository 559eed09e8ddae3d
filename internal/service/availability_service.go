package service

import (
	"context"
	"time"

	"github.com/alexanderramin/horizon/internal/scheduler"
)

type availabilityService struct {
	reader calendarReader
}

func NewAvailabilityService(repos Repos) AvailabilityService {
	return &availabilityService{reader: repos.calendar()}
}

// Availability fetches the participant's commitments for the whole range
// once and derives the free gaps of every working day in it. The result is
// advisory; bookings re-validate at commit time.
func (s *availabilityService) Availability(ctx context.Context, participantID string, from, to time.Time) ([]scheduler.DayAvailability, error) {
	if participantID == "" {
		return nil, invalid("participant_id", "is required")
	}
	if !from.Before(to) {
		return nil, invalid("range", "start must be before end")
	}
	policy, err := s.reader.policyForParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	events, err := s.reader.occurrences(ctx, participantID, from, to)
	if err != nil {
		return nil, err
	}
	return scheduler.FreeDays(policy, from, to, scheduler.BusyIntervals(events)), nil
}
