package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/alexanderramin/horizon/internal/repository"
	"github.com/alexanderramin/horizon/internal/scheduler"
)

type slotService struct {
	reader       calendarReader
	meetingTypes repository.MeetingTypeRepo
	opts         Options
}

func NewSlotService(repos Repos, opts Options) SlotService {
	return &slotService{reader: repos.calendar(), meetingTypes: repos.MeetingTypes, opts: opts.withDefaults()}
}

// GetAvailableSlots lists the bookable slots of the tenant's host on the
// calendar date of date, read in the tenant policy timezone.
func (s *slotService) GetAvailableSlots(ctx context.Context, tenantID string, date time.Time, durationMin int, opts ...SlotOption) (res scheduler.SlotResult, err error) {
	var q slotQuery
	for _, opt := range opts {
		opt(&q)
	}
	startedAt := time.Now()
	fields := map[string]any{"tenant": tenantID, "duration_min": durationMin, "include_blocked": q.includeBlocked}
	defer func() {
		fields["status"] = string(res.Status)
		fields["slots"] = len(res.Slots)
		observe(ctx, s.opts.Observer, "get-available-slots", startedAt, fields, err)
	}()

	if durationMin <= 0 {
		return scheduler.SlotResult{}, invalid("duration_min", "must be positive")
	}
	if date.IsZero() {
		return scheduler.SlotResult{}, invalid("date", "is required")
	}
	tenant, err := s.reader.tenant(ctx, tenantID)
	if err != nil {
		return scheduler.SlotResult{}, err
	}
	host, err := s.reader.host(ctx, tenant)
	if err != nil {
		return scheduler.SlotResult{}, err
	}
	policy, err := s.reader.policyForTenant(ctx, tenant)
	if err != nil {
		return scheduler.SlotResult{}, err
	}

	day := localDate(date, policy.Location())
	busy, err := hostBusy(ctx, s.reader, policy, host.ID, day)
	if err != nil {
		return scheduler.SlotResult{}, err
	}
	return scheduler.GenerateSlots(scheduler.SlotRequest{
		Policy:         policy,
		Date:           day,
		DurationMin:    durationMin,
		Busy:           busy,
		Now:            s.opts.Now(),
		IncludeBlocked: q.includeBlocked,
	}), nil
}

func (s *slotService) SlotsForMeetingType(ctx context.Context, tenantID, meetingTypeID string, date time.Time, opts ...SlotOption) (scheduler.SlotResult, error) {
	mt, err := activeMeetingType(ctx, s.meetingTypes, tenantID, meetingTypeID)
	if err != nil {
		return scheduler.SlotResult{}, err
	}
	return s.GetAvailableSlots(ctx, tenantID, date, mt.DurationMin, opts...)
}

func activeMeetingType(ctx context.Context, repo repository.MeetingTypeRepo, tenantID, id string) (*domain.MeetingType, error) {
	if id == "" {
		return nil, invalid("meeting_type_id", "is required")
	}
	mt, err := repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("meeting_type_id", "unknown meeting type %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading meeting type: %w", err)
	}
	if mt.TenantID != tenantID {
		return nil, invalid("meeting_type_id", "meeting type %q belongs to another tenant", id)
	}
	if !mt.Active {
		return nil, invalid("meeting_type_id", "meeting type %q is inactive", mt.Name)
	}
	return mt, nil
}

// hostBusy loads the host's busy set for the working day containing date,
// widened by the buffer so that padding sees commitments just outside the
// window.
func hostBusy(ctx context.Context, r calendarReader, policy domain.AvailabilityPolicy, hostID string, date time.Time) ([]interval.Interval, error) {
	start, end := policy.DayWindow(date)
	events, err := r.occurrences(ctx, hostID, start.Add(-policy.Buffer()), end.Add(policy.Buffer()))
	if err != nil {
		return nil, err
	}
	return scheduler.BusyIntervals(events), nil
}

// localDate returns midnight in loc of the calendar date t carries.
func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
