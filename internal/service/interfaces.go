package service

import (
	"context"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/scheduler"
)

// ConflictDetection is the structured outcome of a conflict check. A
// conflict is data for the caller to act on, not an error.
type ConflictDetection struct {
	HasConflict       bool
	ConflictingEvents []domain.CalendarEvent
	SuggestedTimes    []time.Time
}

type ConflictService interface {
	// DetectConflicts is advisory: a store failure is logged and reported as
	// no conflict.
	DetectConflicts(ctx context.Context, participantID string, start, end time.Time, excludeEventID string) ConflictDetection
	// CheckStrict fails closed: store errors are returned, and a conflict
	// yields a *ConflictError.
	CheckStrict(ctx context.Context, participantID string, start, end time.Time, excludeEventID string) (ConflictDetection, error)
}

// ImportResult summarizes an external calendar import.
type ImportResult struct {
	Created int
	Updated int
}

type EventService interface {
	GetEvents(ctx context.Context, participantID string, start, end *time.Time) ([]domain.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (*domain.CalendarEvent, error)
	CreateEvent(ctx context.Context, ev *domain.CalendarEvent, force bool) (*domain.CalendarEvent, *ConflictDetection, error)
	UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate, force bool) (*domain.CalendarEvent, *ConflictDetection, error)
	DeleteEvent(ctx context.Context, id string) error
	// ImportEvents upserts externally sourced busy blocks keyed by ExternalUID.
	// Imported events never pass through conflict checks.
	ImportEvents(ctx context.Context, ownerID string, events []domain.CalendarEvent) (*ImportResult, error)
}

type AvailabilityService interface {
	Availability(ctx context.Context, participantID string, from, to time.Time) ([]scheduler.DayAvailability, error)
}

type SlotService interface {
	GetAvailableSlots(ctx context.Context, tenantID string, date time.Time, durationMin int, opts ...SlotOption) (scheduler.SlotResult, error)
	SlotsForMeetingType(ctx context.Context, tenantID, meetingTypeID string, date time.Time, opts ...SlotOption) (scheduler.SlotResult, error)
}

// SlotOption adjusts a slot query.
type SlotOption func(*slotQuery)

type slotQuery struct {
	includeBlocked bool
}

// WithBlocked also returns the candidate slots that are unavailable, marked
// as not available. By default only bookable slots are returned.
func WithBlocked() SlotOption {
	return func(q *slotQuery) { q.includeBlocked = true }
}

type MeetingService interface {
	FindOptimalMeetingTime(ctx context.Context, participantIDs []string, durationMin int, preferredDate *time.Time) ([]time.Time, error)
}

// BookingRequest is the input of one booking attempt. Requests sharing an
// IdempotencyKey resume the same booking.
type BookingRequest struct {
	TenantID       string
	MeetingTypeID  string
	Start          time.Time
	Client         domain.ClientDetails
	IdempotencyKey string
}

type BookingService interface {
	CreateBooking(ctx context.Context, req BookingRequest) (string, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, tenantID string) ([]*domain.Booking, error)
	// Compensate releases the room and removes the event and shadow task of
	// a failed booking.
	Compensate(ctx context.Context, bookingID string) error
	// CompensateFailed compensates every failed booking and returns how many
	// were cleaned up.
	CompensateFailed(ctx context.Context) (int, error)
}

// TaskShift records one dependent moved by a propagation run.
type TaskShift struct {
	TaskID string
	OldDue time.Time
	NewDue time.Time
	Depth  int
}

// PropagationResult describes what a due-date propagation did.
type PropagationResult struct {
	Delta          time.Duration
	Shifted        []TaskShift
	Skipped        []string
	CyclesDetected []string
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]*domain.Task, error)
	// Update persists t and, when its due date moved, shifts its dependents
	// in the same transaction.
	Update(ctx context.Context, t *domain.Task) (*PropagationResult, error)
	SetStatus(ctx context.Context, id string, status domain.TaskStatus) error
	Delete(ctx context.Context, id string) error
	AddDependent(ctx context.Context, taskID, dependentID string) error
	RemoveDependent(ctx context.Context, taskID, dependentID string) error
	Activity(ctx context.Context, taskID string) ([]domain.TaskActivity, error)
	OnTaskDueDateChanged(ctx context.Context, taskID string, oldDue, newDue time.Time) (*PropagationResult, error)
}

type TimelineService interface {
	Timeline(ctx context.Context, participantID string, from, to time.Time) ([]domain.TimelineItem, error)
}

type TenantService interface {
	CreateTenant(ctx context.Context, t *domain.Tenant) error
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	ListTenants(ctx context.Context) ([]*domain.Tenant, error)
	SetHost(ctx context.Context, tenantID, participantID string) error
	AddParticipant(ctx context.Context, p *domain.Participant) error
	ListParticipants(ctx context.Context, tenantID string) ([]*domain.Participant, error)
	// Policy returns the tenant's resolved policy, defaults included.
	Policy(ctx context.Context, tenantID string) (domain.AvailabilityPolicy, error)
	SetPolicy(ctx context.Context, p *domain.AvailabilityPolicy) error
	CreateMeetingType(ctx context.Context, m *domain.MeetingType) error
	ListMeetingTypes(ctx context.Context, tenantID string) ([]*domain.MeetingType, error)
	SetMeetingTypeActive(ctx context.Context, id string, active bool) error
}

type BillingService interface {
	AddInvoice(ctx context.Context, inv *domain.Invoice) error
	AddContract(ctx context.Context, c *domain.Contract) error
}
