package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/recurrence"
	"github.com/alexanderramin/horizon/internal/repository"
)

// calendarReader groups the reads shared by the scheduling use cases. It is
// built either over the service repos or over an open transaction, never a
// mix: an in-memory database has a single connection.
type calendarReader struct {
	events       repository.EventRepo
	tenants      repository.TenantRepo
	participants repository.ParticipantRepo
	policies     repository.PolicyRepo
}

func txCalendarReader(tx db.DBTX) calendarReader {
	return calendarReader{
		events:       repository.NewSQLiteEventRepo(tx),
		tenants:      repository.NewSQLiteTenantRepo(tx),
		participants: repository.NewSQLiteParticipantRepo(tx),
		policies:     repository.NewSQLitePolicyRepo(tx),
	}
}

func (r calendarReader) tenant(ctx context.Context, id string) (*domain.Tenant, error) {
	if id == "" {
		return nil, invalid("tenant_id", "is required")
	}
	t, err := r.tenants.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("tenant_id", "unknown tenant %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading tenant: %w", err)
	}
	return t, nil
}

func (r calendarReader) policyForTenant(ctx context.Context, t *domain.Tenant) (domain.AvailabilityPolicy, error) {
	p, err := r.policies.Get(ctx, t.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ResolvePolicy(nil, t.Timezone), nil
	}
	if err != nil {
		return domain.AvailabilityPolicy{}, fmt.Errorf("loading availability policy: %w", err)
	}
	return domain.ResolvePolicy(p, t.Timezone), nil
}

// policyForParticipant resolves the policy of the participant's tenant.
// Participants the store does not know, such as external attendees, get the
// defaults.
func (r calendarReader) policyForParticipant(ctx context.Context, participantID string) (domain.AvailabilityPolicy, error) {
	p, err := r.participants.GetByID(ctx, participantID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ResolvePolicy(nil, ""), nil
	}
	if err != nil {
		return domain.AvailabilityPolicy{}, fmt.Errorf("loading participant: %w", err)
	}
	t, err := r.tenants.GetByID(ctx, p.TenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ResolvePolicy(nil, ""), nil
	}
	if err != nil {
		return domain.AvailabilityPolicy{}, fmt.Errorf("loading tenant: %w", err)
	}
	return r.policyForTenant(ctx, t)
}

// host returns the tenant's designated host, or its most senior owner/admin.
func (r calendarReader) host(ctx context.Context, t *domain.Tenant) (*domain.Participant, error) {
	if t.HostID != "" {
		p, err := r.participants.GetByID(ctx, t.HostID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("host", "designated host %q does not exist", t.HostID)
		}
		if err != nil {
			return nil, fmt.Errorf("loading host: %w", err)
		}
		if p.TenantID != t.ID || !p.CanHost() {
			return nil, invalid("host", "participant %q cannot host for tenant %q", p.ID, t.ID)
		}
		return p, nil
	}

	members, err := r.participants.ListByTenant(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	for _, p := range members {
		if p.CanHost() {
			return p, nil
		}
	}
	return nil, invalid("host", "tenant %q has no owner or admin", t.ID)
}

// occurrences returns the participant's events overlapping [from, to) with
// recurring series expanded, ordered by start.
func (r calendarReader) occurrences(ctx context.Context, participantID string, from, to time.Time) ([]domain.CalendarEvent, error) {
	stored, err := r.events.ListForParticipant(ctx, participantID, repository.EventRange{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	flat := make([]domain.CalendarEvent, 0, len(stored))
	for _, ev := range stored {
		flat = append(flat, *ev)
	}
	out := recurrence.Expand(flat, from, to)
	sortEvents(out)
	return out, nil
}

// withoutEvent drops the event with the given ID and every occurrence of it.
func withoutEvent(events []domain.CalendarEvent, id string) []domain.CalendarEvent {
	if id == "" {
		return events
	}
	out := events[:0:0]
	for _, ev := range events {
		if ev.SeriesID() == id {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func sortEvents(evs []domain.CalendarEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		if !evs[i].Start.Equal(evs[j].Start) {
			return evs[i].Start.Before(evs[j].Start)
		}
		return evs[i].ID < evs[j].ID
	})
}
