package testutil

import (
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/google/uuid"
)

// Tenant options
type TenantOption func(*domain.Tenant)

func WithTimezone(tz string) TenantOption {
	return func(t *domain.Tenant) {
		t.Timezone = tz
	}
}

func WithHost(participantID string) TenantOption {
	return func(t *domain.Tenant) {
		t.HostID = participantID
	}
}

func NewTestTenant(name string, opts ...TenantOption) *domain.Tenant {
	now := time.Now().UTC()
	t := &domain.Tenant{
		ID:        uuid.New().String(),
		Name:      name,
		Timezone:  "UTC",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Participant options
type ParticipantOption func(*domain.Participant)

func WithRole(r domain.ParticipantRole) ParticipantOption {
	return func(p *domain.Participant) {
		p.Role = r
	}
}

func WithEmail(e string) ParticipantOption {
	return func(p *domain.Participant) {
		p.Email = e
	}
}

func NewTestParticipant(tenantID, name string, opts ...ParticipantOption) *domain.Participant {
	p := &domain.Participant{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Role:      domain.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestMeetingType(tenantID, name string, durationMin int) *domain.MeetingType {
	return &domain.MeetingType{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        name,
		DurationMin: durationMin,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
}

// Event options
type EventOption func(*domain.CalendarEvent)

func WithAttendees(ids ...string) EventOption {
	return func(e *domain.CalendarEvent) {
		e.Attendees = ids
	}
}

func WithKind(k domain.EventKind) EventOption {
	return func(e *domain.CalendarEvent) {
		e.Kind = k
	}
}

func WithTitle(title string) EventOption {
	return func(e *domain.CalendarEvent) {
		e.Title = title
	}
}

func WithRecurrence(rule string) EventOption {
	return func(e *domain.CalendarEvent) {
		e.Recurrence = rule
	}
}

func WithEventTenant(tenantID string) EventOption {
	return func(e *domain.CalendarEvent) {
		e.TenantID = tenantID
	}
}

func WithMetadata(k, v string) EventOption {
	return func(e *domain.CalendarEvent) {
		if e.Metadata == nil {
			e.Metadata = map[string]string{}
		}
		e.Metadata[k] = v
	}
}

// NewTestEvent builds a meeting owned by ownerID over [start, end).
func NewTestEvent(ownerID string, start, end time.Time, opts ...EventOption) *domain.CalendarEvent {
	now := time.Now().UTC()
	e := &domain.CalendarEvent{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     "Meeting",
		Start:     start,
		End:       end,
		Kind:      domain.EventMeeting,
		Source:    domain.SourceNative,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Task options
type TaskOption func(*domain.Task)

func WithDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithStartDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.StartDate = &d
	}
}

func WithAssignee(id string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeID = id
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithDependents(ids ...string) TaskOption {
	return func(t *domain.Task) {
		t.Dependents = ids
	}
}

func AsShadow(bookingID string) TaskOption {
	return func(t *domain.Task) {
		t.Shadow = true
		t.BookingID = bookingID
	}
}

func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Priority:  domain.PriorityMedium,
		Status:    domain.TaskTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func NewTestInvoice(ownerID, number string, due time.Time, status domain.InvoiceStatus) *domain.Invoice {
	return &domain.Invoice{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Number:      number,
		AmountCents: 125000,
		Status:      status,
		DueDate:     due,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTestContract(ownerID, title string, due time.Time, status domain.PaymentStatus) *domain.Contract {
	return &domain.Contract{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Title:         title,
		ValueCents:    500000,
		PaymentStatus: status,
		PaymentDue:    due,
		CreatedAt:     time.Now().UTC(),
	}
}
