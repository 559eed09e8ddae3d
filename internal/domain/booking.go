package domain

import (
	"fmt"
	"time"
)

type BookingState string

const (
	BookingRequested         BookingState = "requested"
	BookingSlotValidated     BookingState = "slot_validated"
	BookingRoomProvisioned   BookingState = "room_provisioned"
	BookingEventPersisted    BookingState = "event_persisted"
	BookingShadowTaskCreated BookingState = "shadow_task_created"
	BookingComplete          BookingState = "complete"
	BookingFailed            BookingState = "failed"
	BookingCompensated       BookingState = "compensated"
)

// bookingSteps is the forward path of the booking saga.
var bookingSteps = []BookingState{
	BookingRequested,
	BookingSlotValidated,
	BookingRoomProvisioned,
	BookingEventPersisted,
	BookingShadowTaskCreated,
	BookingComplete,
}

// StepIndex returns the position of s on the forward path, or -1.
func (s BookingState) StepIndex() int {
	for i, step := range bookingSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Reached reports whether a booking in state s has completed step target.
func (s BookingState) Reached(target BookingState) bool {
	i, j := s.StepIndex(), target.StepIndex()
	return i >= 0 && j >= 0 && i >= j
}

type ClientDetails struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type Booking struct {
	ID             string
	TenantID       string
	MeetingTypeID  string
	HostID         string
	IdempotencyKey string
	Client         ClientDetails
	Start          time.Time
	End            time.Time
	State          BookingState
	FailedStep     BookingState
	RoomID         string
	RoomURL        string
	EventID        string
	TaskID         string
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Advance moves the booking one step forward. Skipping or repeating a step
// is rejected.
func (b *Booking) Advance(next BookingState, now time.Time) error {
	cur := b.State.StepIndex()
	if cur < 0 || next.StepIndex() != cur+1 {
		return fmt.Errorf("booking %s: invalid transition %s -> %s", b.ID, b.State, next)
	}
	b.State = next
	b.UpdatedAt = now
	return nil
}

// Fail records the failing step and error. The artifacts already created stay
// referenced so they can be compensated.
func (b *Booking) Fail(cause error, now time.Time) {
	if b.State != BookingFailed {
		b.FailedStep = b.State
	}
	b.State = BookingFailed
	if cause != nil {
		b.LastError = cause.Error()
	}
	b.UpdatedAt = now
}

// MarkCompensated records that the artifacts of a failed booking were
// cleaned up. The booking cannot be resumed afterwards.
func (b *Booking) MarkCompensated(now time.Time) {
	b.State = BookingCompensated
	b.UpdatedAt = now
}

// Resumable reports whether a retried request may continue this booking.
func (b *Booking) Resumable() bool {
	return b.State.StepIndex() >= 0 && b.State != BookingComplete
}
