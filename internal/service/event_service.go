package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/recurrence"
	"github.com/alexanderramin/horizon/internal/repository"
	"github.com/google/uuid"
)

type eventService struct {
	events repository.EventRepo
	uow    db.UnitOfWork
	opts   Options
}

func NewEventService(repos Repos, uow db.UnitOfWork, opts Options) EventService {
	return &eventService{events: repos.Events, uow: uow, opts: opts.withDefaults()}
}

// GetEvents lists the participant's events. When both bounds are given,
// recurring series are expanded into the occurrences inside the range.
func (s *eventService) GetEvents(ctx context.Context, participantID string, start, end *time.Time) ([]domain.CalendarEvent, error) {
	if participantID == "" {
		return nil, invalid("participant_id", "is required")
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, invalid("end", "is before start")
	}
	stored, err := s.events.ListForParticipant(ctx, participantID, repository.EventRange{From: start, To: end})
	if err != nil {
		return nil, err
	}
	out := make([]domain.CalendarEvent, 0, len(stored))
	for _, ev := range stored {
		out = append(out, *ev)
	}
	if start == nil || end == nil {
		return out, nil
	}
	out = recurrence.Expand(out, *start, *end)
	sortEvents(out)
	return out, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	return s.events.GetByID(ctx, id)
}

// CreateEvent persists ev unless it overlaps an existing commitment of its
// owner. With force the check is skipped. The check and the insert share a
// transaction, so a store failure during the check aborts the write.
func (s *eventService) CreateEvent(ctx context.Context, ev *domain.CalendarEvent, force bool) (created *domain.CalendarEvent, conflict *ConflictDetection, err error) {
	startedAt := time.Now()
	fields := map[string]any{"owner": ev.OwnerID, "force": force}
	defer func() {
		fields["conflict"] = conflict != nil
		observe(ctx, s.opts.Observer, "create-event", startedAt, fields, err)
	}()

	now := s.opts.Now()
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Kind == "" {
		ev.Kind = domain.EventMeeting
	}
	if ev.Source == "" {
		ev.Source = domain.SourceNative
	}
	ev.CreatedAt, ev.UpdatedAt = now, now
	if err = validateEvent(ev); err != nil {
		return nil, nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		cal := txCalendarReader(tx)
		// A series without its own zone repeats on its owner's wall clock.
		if ev.IsRecurring() && ev.Timezone == "" {
			policy, err := cal.policyForParticipant(ctx, ev.OwnerID)
			if err != nil {
				return err
			}
			if policy.Timezone != "UTC" {
				ev.Timezone = policy.Timezone
			}
		}
		if !force {
			_, cerr := checkStrict(ctx, cal, s.opts, ev.OwnerID, ev.Start, ev.End, "")
			var ce *ConflictError
			if errors.As(cerr, &ce) {
				conflict = &ce.Detection
				return nil
			}
			if cerr != nil {
				return cerr
			}
		}
		return repository.NewSQLiteEventRepo(tx).Create(ctx, ev)
	})
	if err != nil {
		return nil, nil, err
	}
	if conflict != nil {
		return nil, conflict, nil
	}
	return ev, nil, nil
}

// UpdateEvent applies upd to the stored event. Moving the event or changing
// its attendees re-runs the strict conflict check against everything except
// the event itself.
func (s *eventService) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate, force bool) (updated *domain.CalendarEvent, conflict *ConflictDetection, err error) {
	startedAt := time.Now()
	fields := map[string]any{"event": id, "force": force}
	defer func() {
		fields["conflict"] = conflict != nil
		observe(ctx, s.opts.Observer, "update-event", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		events := repository.NewSQLiteEventRepo(tx)
		cur, err := events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := upd.Apply(*cur)
		next.UpdatedAt = s.opts.Now()
		if err := validateEvent(&next); err != nil {
			return err
		}
		if !force && upd.TouchesSchedule() {
			_, cerr := checkStrict(ctx, txCalendarReader(tx), s.opts, next.OwnerID, next.Start, next.End, id)
			var ce *ConflictError
			if errors.As(cerr, &ce) {
				conflict = &ce.Detection
				return nil
			}
			if cerr != nil {
				return cerr
			}
		}
		if err := events.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if conflict != nil {
		return nil, conflict, nil
	}
	return updated, nil, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.opts.Observer, "delete-event", startedAt, map[string]any{"event": id}, err)
	}()
	return s.events.Delete(ctx, id)
}

func (s *eventService) ImportEvents(ctx context.Context, ownerID string, events []domain.CalendarEvent) (result *ImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"owner": ownerID, "count": len(events)}
	defer func() {
		if result != nil {
			fields["created"] = result.Created
			fields["updated"] = result.Updated
		}
		observe(ctx, s.opts.Observer, "import-events", startedAt, fields, err)
	}()

	if ownerID == "" {
		return nil, invalid("owner_id", "is required")
	}

	res := &ImportResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteEventRepo(tx)
		now := s.opts.Now()
		for i := range events {
			in := events[i]
			if in.ExternalUID == "" {
				return invalid("uid", "imported event %q has no UID", in.Title)
			}

			existing, err := repo.GetByExternalUID(ctx, ownerID, in.ExternalUID)
			switch {
			case err == nil:
				existing.Title = in.Title
				existing.Description = in.Description
				existing.Start, existing.End = in.Start, in.End
				existing.AllDay = in.AllDay
				existing.Recurrence = in.Recurrence
				existing.Timezone = in.Timezone
				existing.ExDates = in.ExDates
				existing.UpdatedAt = now
				if err := validateEvent(existing); err != nil {
					return err
				}
				if err := repo.Update(ctx, existing); err != nil {
					return err
				}
				res.Updated++
			case errors.Is(err, repository.ErrNotFound):
				in.ID = uuid.New().String()
				in.OwnerID = ownerID
				in.Source = domain.SourceICS
				if in.Kind == "" {
					in.Kind = domain.EventMeeting
				}
				in.CreatedAt, in.UpdatedAt = now, now
				if err := validateEvent(&in); err != nil {
					return err
				}
				if err := repo.Create(ctx, &in); err != nil {
					return err
				}
				res.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func validateEvent(ev *domain.CalendarEvent) error {
	if err := ev.Validate(); err != nil {
		return &ValidationError{Field: "event", Msg: err.Error()}
	}
	if err := recurrence.Validate(ev.Recurrence); err != nil {
		return &ValidationError{Field: "recurrence", Msg: err.Error()}
	}
	return nil
}
