package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/alexanderramin/horizon/internal/repository"
	"github.com/alexanderramin/horizon/internal/room"
	"github.com/alexanderramin/horizon/internal/scheduler"
	"github.com/google/uuid"
)

// bookingNamespace seeds the deterministic IDs of saga step artifacts.
var bookingNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("horizon.booking"))

// stepID derives the ID of the artifact a booking step creates. A resumed
// booking finds the artifacts of earlier attempts instead of duplicating
// them.
func stepID(bookingID, step string) string {
	return uuid.NewSHA1(bookingNamespace, []byte(bookingID+"/"+step)).String()
}

type bookingService struct {
	repos  Repos
	reader calendarReader
	rooms  room.Provisioner
	uow    db.UnitOfWork
	opts   Options
}

func NewBookingService(repos Repos, rooms room.Provisioner, uow db.UnitOfWork, opts Options) BookingService {
	return &bookingService{
		repos:  repos,
		reader: repos.calendar(),
		rooms:  rooms,
		uow:    uow,
		opts:   opts.withDefaults(),
	}
}

// CreateBooking drives a booking through
//
//	requested → slot_validated → room_provisioned → event_persisted →
//	shadow_task_created → complete
//
// persisting each state in the same transaction as the step's own write.
// Any failure marks the booking failed and stops. A request reusing the
// idempotency key of a failed or interrupted booking resumes it.
func (s *bookingService) CreateBooking(ctx context.Context, req BookingRequest) (bookingID string, err error) {
	startedAt := time.Now()
	fields := map[string]any{"tenant": req.TenantID, "meeting_type": req.MeetingTypeID}
	defer func() {
		fields["booking"] = bookingID
		observe(ctx, s.opts.Observer, "create-booking", startedAt, fields, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.opts.BookingTimeout)
	defer cancel()

	// Bookings are stored at whole seconds; a retry must compare equal.
	req.Start = req.Start.UTC().Truncate(time.Second)
	mt, host, err := s.resolve(ctx, req)
	if err != nil {
		return "", err
	}
	b, err := s.begin(ctx, req, mt, host)
	if err != nil {
		return "", err
	}
	fields["resumed_from"] = string(b.State)

	if err := s.run(ctx, b, mt); err != nil {
		s.recordFailure(ctx, b, err)
		return "", fmt.Errorf("booking %s: %w", b.ID, err)
	}
	return b.ID, nil
}

func (s *bookingService) resolve(ctx context.Context, req BookingRequest) (*domain.MeetingType, *domain.Participant, error) {
	if req.Start.IsZero() {
		return nil, nil, invalid("start", "is required")
	}
	if req.Client.Name == "" {
		return nil, nil, invalid("client.name", "is required")
	}
	tenant, err := s.reader.tenant(ctx, req.TenantID)
	if err != nil {
		return nil, nil, err
	}
	mt, err := activeMeetingType(ctx, s.repos.MeetingTypes, tenant.ID, req.MeetingTypeID)
	if err != nil {
		return nil, nil, err
	}
	host, err := s.reader.host(ctx, tenant)
	if err != nil {
		return nil, nil, err
	}
	return mt, host, nil
}

// begin loads the booking an idempotency key already names, or records a
// new one in the requested state.
func (s *bookingService) begin(ctx context.Context, req BookingRequest, mt *domain.MeetingType, host *domain.Participant) (*domain.Booking, error) {
	key := req.IdempotencyKey
	if key != "" {
		existing, err := s.repos.Bookings.GetByIdempotencyKey(ctx, key)
		if err == nil {
			return resumeBooking(existing, req)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading booking: %w", err)
		}
	} else {
		key = uuid.New().String()
	}

	now := s.opts.Now()
	start := req.Start.UTC()
	b := &domain.Booking{
		ID:             uuid.New().String(),
		TenantID:       req.TenantID,
		MeetingTypeID:  mt.ID,
		HostID:         host.ID,
		IdempotencyKey: key,
		Client:         req.Client,
		Start:          start,
		End:            start.Add(mt.Duration()),
		State:          domain.BookingRequested,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repos.Bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("recording booking: %w", err)
	}
	return b, nil
}

func resumeBooking(b *domain.Booking, req BookingRequest) (*domain.Booking, error) {
	if b.TenantID != req.TenantID || b.MeetingTypeID != req.MeetingTypeID || !b.Start.Equal(req.Start) {
		return nil, invalid("idempotency_key", "already used for a different booking")
	}
	switch b.State {
	case domain.BookingCompensated:
		return nil, invalid("idempotency_key", "booking %s was compensated", b.ID)
	case domain.BookingFailed:
		b.State = b.FailedStep
		if b.State.StepIndex() < 0 {
			b.State = domain.BookingRequested
		}
		b.FailedStep = ""
		b.LastError = ""
	}
	return b, nil
}

func (s *bookingService) run(ctx context.Context, b *domain.Booking, mt *domain.MeetingType) error {
	for b.State != domain.BookingComplete {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch b.State {
		case domain.BookingRequested:
			err = s.validateSlot(ctx, b)
		case domain.BookingSlotValidated:
			err = s.provisionRoom(ctx, b, mt)
		case domain.BookingRoomProvisioned:
			err = s.persistEvent(ctx, b, mt)
		case domain.BookingEventPersisted:
			err = s.createShadowTask(ctx, b, mt)
		case domain.BookingShadowTaskCreated:
			err = s.commit(ctx, b, domain.BookingComplete, nil)
		default:
			err = fmt.Errorf("unexpected state %s", b.State)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// commit runs write against a copy of b, advances the copy to next and
// persists it, all in one transaction. b changes only when the commit
// succeeds.
func (s *bookingService) commit(ctx context.Context, b *domain.Booking, next domain.BookingState, write func(ctx context.Context, tx db.DBTX, nb *domain.Booking) error) error {
	nb := *b
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if write != nil {
			if err := write(ctx, tx, &nb); err != nil {
				return err
			}
		}
		if err := nb.Advance(next, s.opts.Now()); err != nil {
			return err
		}
		return repository.NewSQLiteBookingRepo(tx).Update(ctx, &nb)
	})
	if err != nil {
		return err
	}
	*b = nb
	return nil
}

func (s *bookingService) validateSlot(ctx context.Context, b *domain.Booking) error {
	return s.commit(ctx, b, domain.BookingSlotValidated, func(ctx context.Context, tx db.DBTX, nb *domain.Booking) error {
		policy, busy, err := s.hostCalendar(ctx, tx, nb)
		if err != nil {
			return err
		}
		switch check := scheduler.ValidateSlot(policy, nb.Start, bookingMinutes(nb), busy, s.opts.Now()); check {
		case scheduler.SlotOK:
			return nil
		case scheduler.SlotConflict:
			return ErrSlotUnavailable
		default:
			return invalid("start", "requested time is not bookable (%s)", check)
		}
	})
}

func (s *bookingService) provisionRoom(ctx context.Context, b *domain.Booking, mt *domain.MeetingType) error {
	rm, err := s.rooms.Provision(ctx, room.Request{
		Key:   stepID(b.ID, "room"),
		Title: mt.Name,
		Start: b.Start,
		End:   b.End,
	})
	if err != nil {
		return fmt.Errorf("provisioning room: %w", err)
	}
	// The room exists from here on; keep it referenced even if the state
	// update fails so compensation can release it.
	b.RoomID, b.RoomURL = rm.ID, rm.URL
	return s.commit(ctx, b, domain.BookingRoomProvisioned, nil)
}

func (s *bookingService) persistEvent(ctx context.Context, b *domain.Booking, mt *domain.MeetingType) error {
	eventID := stepID(b.ID, "event")
	return s.commit(ctx, b, domain.BookingEventPersisted, func(ctx context.Context, tx db.DBTX, nb *domain.Booking) error {
		events := repository.NewSQLiteEventRepo(tx)
		_, err := events.GetByID(ctx, eventID)
		if err == nil {
			nb.EventID = eventID
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		policy, busy, err := s.hostCalendar(ctx, tx, nb)
		if err != nil {
			return err
		}
		// Lead time and working hours were checked at validation. Only a
		// commitment written since then can fail this re-check.
		if scheduler.ValidateSlot(policy, nb.Start, bookingMinutes(nb), busy, time.Time{}) == scheduler.SlotConflict {
			return ErrSlotUnavailable
		}

		now := s.opts.Now()
		meta := map[string]string{"booking_id": nb.ID}
		if nb.Client.Email != "" {
			meta["client_email"] = nb.Client.Email
		}
		if nb.Client.Phone != "" {
			meta["client_phone"] = nb.Client.Phone
		}
		ev := &domain.CalendarEvent{
			ID:          eventID,
			TenantID:    nb.TenantID,
			OwnerID:     nb.HostID,
			Title:       fmt.Sprintf("%s with %s", mt.Name, nb.Client.Name),
			Description: nb.Client.Notes,
			Start:       nb.Start,
			End:         nb.End,
			Kind:        domain.EventMeeting,
			RoomRef:     nb.RoomURL,
			Source:      domain.SourceBooking,
			Metadata:    meta,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := events.Create(ctx, ev); err != nil {
			return fmt.Errorf("persisting event: %w", err)
		}
		nb.EventID = eventID
		return nil
	})
}

func (s *bookingService) createShadowTask(ctx context.Context, b *domain.Booking, mt *domain.MeetingType) error {
	taskID := stepID(b.ID, "task")
	return s.commit(ctx, b, domain.BookingShadowTaskCreated, func(ctx context.Context, tx db.DBTX, nb *domain.Booking) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		_, err := tasks.GetByID(ctx, taskID)
		if err == nil {
			nb.TaskID = taskID
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		now := s.opts.Now()
		start, due := nb.Start, nb.End
		t := &domain.Task{
			ID:          taskID,
			TenantID:    nb.TenantID,
			Title:       fmt.Sprintf("%s with %s", mt.Name, nb.Client.Name),
			Description: nb.RoomURL,
			AssigneeID:  nb.HostID,
			Priority:    domain.PriorityHigh,
			Status:      domain.TaskTodo,
			StartDate:   &start,
			DueDate:     &due,
			Shadow:      true,
			BookingID:   nb.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("creating shadow task: %w", err)
		}
		if err := tasks.LogActivity(ctx, &domain.TaskActivity{
			ID: uuid.New().String(), TaskID: t.ID, Action: domain.ActivityCreated,
			Detail: "booking " + nb.ID, CreatedAt: now,
		}); err != nil {
			return err
		}
		nb.TaskID = taskID
		return nil
	})
}

// hostCalendar loads the host policy and busy set inside tx.
func (s *bookingService) hostCalendar(ctx context.Context, tx db.DBTX, b *domain.Booking) (domain.AvailabilityPolicy, []interval.Interval, error) {
	r := txCalendarReader(tx)
	tenant, err := r.tenant(ctx, b.TenantID)
	if err != nil {
		return domain.AvailabilityPolicy{}, nil, err
	}
	policy, err := r.policyForTenant(ctx, tenant)
	if err != nil {
		return domain.AvailabilityPolicy{}, nil, err
	}
	busy, err := hostBusy(ctx, r, policy, b.HostID, b.Start)
	if err != nil {
		return domain.AvailabilityPolicy{}, nil, err
	}
	return policy, busy, nil
}

func (s *bookingService) recordFailure(ctx context.Context, b *domain.Booking, cause error) {
	b.Fail(cause, s.opts.Now())
	// The request context may already be past its deadline.
	if err := s.repos.Bookings.Update(context.WithoutCancel(ctx), b); err != nil {
		s.opts.Logger.ErrorContext(ctx, "recording booking failure", "booking", b.ID, "error", err)
	}
}

func (s *bookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.repos.Bookings.GetByID(ctx, id)
}

func (s *bookingService) List(ctx context.Context, tenantID string) ([]*domain.Booking, error) {
	return s.repos.Bookings.ListByTenant(ctx, tenantID)
}

// Compensate accepts failed bookings, and bookings stuck mid-saga for
// longer than the booking timeout.
func (s *bookingService) Compensate(ctx context.Context, bookingID string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.opts.Observer, "compensate-booking", startedAt, map[string]any{"booking": bookingID}, err)
	}()

	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	now := s.opts.Now()
	switch {
	case b.State == domain.BookingCompensated:
		return nil
	case b.State == domain.BookingComplete:
		return invalid("booking", "booking %s is complete", b.ID)
	case b.State != domain.BookingFailed && now.Sub(b.UpdatedAt) < s.opts.BookingTimeout:
		return invalid("booking", "booking %s is still in progress", b.ID)
	}

	if b.RoomID != "" {
		if err := s.rooms.Release(ctx, b.RoomID); err != nil {
			return fmt.Errorf("releasing room %s: %w", b.RoomID, err)
		}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTaskRepo(tx).Delete(ctx, stepID(b.ID, "task")); err != nil {
			return err
		}
		err := repository.NewSQLiteEventRepo(tx).Delete(ctx, stepID(b.ID, "event"))
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		nb := *b
		nb.EventID, nb.TaskID = "", ""
		nb.MarkCompensated(now)
		return repository.NewSQLiteBookingRepo(tx).Update(ctx, &nb)
	})
}

// CompensateFailed rolls back every failed booking and every booking whose
// saga stalled for longer than the booking timeout, such as one abandoned
// by a crashed process.
func (s *bookingService) CompensateFailed(ctx context.Context) (int, error) {
	failed, err := s.repos.Bookings.ListByState(ctx, domain.BookingFailed)
	if err != nil {
		return 0, err
	}
	stale, err := s.repos.Bookings.ListStale(ctx, s.opts.Now().Add(-s.opts.BookingTimeout))
	if err != nil {
		return 0, err
	}
	var errs []error
	done := 0
	for _, b := range append(failed, stale...) {
		if err := s.Compensate(ctx, b.ID); err != nil {
			errs = append(errs, fmt.Errorf("booking %s: %w", b.ID, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

func bookingMinutes(b *domain.Booking) int {
	return int(b.End.Sub(b.Start) / time.Minute)
}
