package service

import (
	"context"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/google/uuid"
)

type tenantService struct {
	repos  Repos
	reader calendarReader
	uow    db.UnitOfWork
	opts   Options
}

func NewTenantService(repos Repos, uow db.UnitOfWork, opts Options) TenantService {
	return &tenantService{repos: repos, reader: repos.calendar(), uow: uow, opts: opts.withDefaults()}
}

func (s *tenantService) CreateTenant(ctx context.Context, t *domain.Tenant) error {
	if t.Name == "" {
		return invalid("name", "is required")
	}
	if t.Timezone == "" {
		t.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(t.Timezone); err != nil {
		return invalid("timezone", "unknown timezone %q", t.Timezone)
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := s.opts.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	return s.repos.Tenants.Create(ctx, t)
}

func (s *tenantService) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.reader.tenant(ctx, id)
}

func (s *tenantService) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	return s.repos.Tenants.List(ctx)
}

func (s *tenantService) SetHost(ctx context.Context, tenantID, participantID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := txCalendarReader(tx)
		t, err := r.tenant(ctx, tenantID)
		if err != nil {
			return err
		}
		t.HostID = participantID
		if _, err := r.host(ctx, t); err != nil {
			return err
		}
		t.UpdatedAt = s.opts.Now()
		return r.tenants.Update(ctx, t)
	})
}

func (s *tenantService) AddParticipant(ctx context.Context, p *domain.Participant) error {
	if p.Name == "" {
		return invalid("name", "is required")
	}
	if p.Role == "" {
		p.Role = domain.RoleMember
	}
	switch p.Role {
	case domain.RoleOwner, domain.RoleAdmin, domain.RoleMember:
	default:
		return invalid("role", "unknown role %q", p.Role)
	}
	if _, err := s.reader.tenant(ctx, p.TenantID); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = s.opts.Now()
	return s.repos.Participants.Create(ctx, p)
}

func (s *tenantService) ListParticipants(ctx context.Context, tenantID string) ([]*domain.Participant, error) {
	return s.repos.Participants.ListByTenant(ctx, tenantID)
}

func (s *tenantService) Policy(ctx context.Context, tenantID string) (domain.AvailabilityPolicy, error) {
	t, err := s.reader.tenant(ctx, tenantID)
	if err != nil {
		return domain.AvailabilityPolicy{}, err
	}
	return s.reader.policyForTenant(ctx, t)
}

func (s *tenantService) SetPolicy(ctx context.Context, p *domain.AvailabilityPolicy) error {
	if _, err := s.reader.tenant(ctx, p.TenantID); err != nil {
		return err
	}
	if err := validatePolicy(p); err != nil {
		return err
	}
	return s.repos.Policies.Upsert(ctx, p)
}

func validatePolicy(p *domain.AvailabilityPolicy) error {
	if len(p.Weekdays) == 0 {
		return invalid("weekdays", "at least one working day is required")
	}
	for _, d := range p.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return invalid("weekdays", "weekday %d is out of range", d)
		}
	}
	if p.DayStartMin < 0 || p.DayEndMin > 24*60 || p.DayStartMin >= p.DayEndMin {
		return invalid("hours", "working day %s-%s is empty or out of range",
			domain.FormatClock(p.DayStartMin), domain.FormatClock(p.DayEndMin))
	}
	if p.GranularityMin <= 0 {
		return invalid("granularity_min", "must be positive")
	}
	if p.BufferMin < 0 {
		return invalid("buffer_min", "must not be negative")
	}
	if p.LeadTimeMin < 0 {
		return invalid("lead_time_min", "must not be negative")
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return invalid("timezone", "unknown timezone %q", p.Timezone)
		}
	}
	return nil
}

func (s *tenantService) CreateMeetingType(ctx context.Context, m *domain.MeetingType) error {
	if m.Name == "" {
		return invalid("name", "is required")
	}
	if m.DurationMin <= 0 {
		return invalid("duration_min", "must be positive")
	}
	if _, err := s.reader.tenant(ctx, m.TenantID); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Active = true
	m.CreatedAt = s.opts.Now()
	return s.repos.MeetingTypes.Create(ctx, m)
}

func (s *tenantService) ListMeetingTypes(ctx context.Context, tenantID string) ([]*domain.MeetingType, error) {
	return s.repos.MeetingTypes.ListByTenant(ctx, tenantID)
}

func (s *tenantService) SetMeetingTypeActive(ctx context.Context, id string, active bool) error {
	return s.repos.MeetingTypes.SetActive(ctx, id, active)
}

