package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
)

// EventRange bounds an event listing. A nil bound is open.
type EventRange struct {
	From *time.Time
	To   *time.Time
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*domain.CalendarEvent, error)
	GetByExternalUID(ctx context.Context, ownerID, uid string) (*domain.CalendarEvent, error)
	// ListForParticipant returns events the participant owns or attends that
	// touch the range. Recurring series starting before the range end are
	// always included so callers can expand them.
	ListForParticipant(ctx context.Context, participantID string, rng EventRange) ([]*domain.CalendarEvent, error)
	Update(ctx context.Context, e *domain.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string, includeShadow bool) ([]*domain.Task, error)
	ListDueBetween(ctx context.Context, assigneeID string, from, to time.Time) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	AddDependent(ctx context.Context, taskID, dependentID string) error
	RemoveDependent(ctx context.Context, taskID, dependentID string) error
	ListDependentIDs(ctx context.Context, taskID string) ([]string, error)
	LogActivity(ctx context.Context, a *domain.TaskActivity) error
	ListActivity(ctx context.Context, taskID string) ([]domain.TaskActivity, error)
}

type TenantRepo interface {
	Create(ctx context.Context, t *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)
	Update(ctx context.Context, t *domain.Tenant) error
}

type ParticipantRepo interface {
	Create(ctx context.Context, p *domain.Participant) error
	GetByID(ctx context.Context, id string) (*domain.Participant, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Participant, error)
}

type PolicyRepo interface {
	// Get returns ErrNotFound when the tenant has not configured a policy.
	Get(ctx context.Context, tenantID string) (*domain.AvailabilityPolicy, error)
	Upsert(ctx context.Context, p *domain.AvailabilityPolicy) error
}

type MeetingTypeRepo interface {
	Create(ctx context.Context, m *domain.MeetingType) error
	GetByID(ctx context.Context, id string) (*domain.MeetingType, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.MeetingType, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type InvoiceRepo interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	ListDueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Invoice, error)
}

type ContractRepo interface {
	Create(ctx context.Context, c *domain.Contract) error
	ListDueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Contract, error)
}

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Booking, error)
	ListByState(ctx context.Context, state domain.BookingState) ([]*domain.Booking, error)
	ListStale(ctx context.Context, before time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}
