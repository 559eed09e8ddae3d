package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
)

// SQLiteTenantRepo implements TenantRepo using a SQLite database.
type SQLiteTenantRepo struct {
	db db.DBTX
}

// NewSQLiteTenantRepo creates a new SQLiteTenantRepo.
func NewSQLiteTenantRepo(conn db.DBTX) *SQLiteTenantRepo {
	return &SQLiteTenantRepo{db: conn}
}

func (r *SQLiteTenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	query := `INSERT INTO tenants (id, name, timezone, host_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Timezone, t.HostID, formatTS(t.CreatedAt), formatTS(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting tenant: %w", err)
	}
	return nil
}

func (r *SQLiteTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `SELECT id, name, timezone, host_id, created_at, updated_at FROM tenants WHERE id = ?`
	return scanTenant(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, timezone, host_id, created_at, updated_at FROM tenants ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}
	return tenants, nil
}

func (r *SQLiteTenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	query := `UPDATE tenants SET name = ?, timezone = ?, host_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, t.Name, t.Timezone, t.HostID, formatTS(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("updating tenant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tenant %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func scanTenant(s scanner) (*domain.Tenant, error) {
	var t domain.Tenant
	var createdStr, updatedStr string
	err := s.Scan(&t.ID, &t.Name, &t.Timezone, &t.HostID, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning tenant: %w", err)
	}
	if t.CreatedAt, err = parseTS(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTS(updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

// SQLiteParticipantRepo implements ParticipantRepo using a SQLite database.
type SQLiteParticipantRepo struct {
	db db.DBTX
}

// NewSQLiteParticipantRepo creates a new SQLiteParticipantRepo.
func NewSQLiteParticipantRepo(conn db.DBTX) *SQLiteParticipantRepo {
	return &SQLiteParticipantRepo{db: conn}
}

func (r *SQLiteParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	query := `INSERT INTO participants (id, tenant_id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.TenantID, p.Name, p.Email, string(p.Role), formatTS(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting participant: %w", err)
	}
	return nil
}

func (r *SQLiteParticipantRepo) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	query := `SELECT id, tenant_id, name, email, role, created_at FROM participants WHERE id = ?`
	return scanParticipant(r.db.QueryRowContext(ctx, query, id))
}

// ListByTenant returns participants ordered by role seniority, then join time.
func (r *SQLiteParticipantRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Participant, error) {
	query := `SELECT id, tenant_id, name, email, role, created_at FROM participants
		WHERE tenant_id = ?
		ORDER BY CASE role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	var out []*domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating participants: %w", err)
	}
	return out, nil
}

func scanParticipant(s scanner) (*domain.Participant, error) {
	var p domain.Participant
	var roleStr, createdStr string
	err := s.Scan(&p.ID, &p.TenantID, &p.Name, &p.Email, &roleStr, &createdStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("participant: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning participant: %w", err)
	}
	p.Role = domain.ParticipantRole(roleStr)
	if p.CreatedAt, err = parseTS(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}

// SQLitePolicyRepo implements PolicyRepo using a SQLite database.
type SQLitePolicyRepo struct {
	db db.DBTX
}

// NewSQLitePolicyRepo creates a new SQLitePolicyRepo.
func NewSQLitePolicyRepo(conn db.DBTX) *SQLitePolicyRepo {
	return &SQLitePolicyRepo{db: conn}
}

func (r *SQLitePolicyRepo) Get(ctx context.Context, tenantID string) (*domain.AvailabilityPolicy, error) {
	query := `SELECT tenant_id, weekdays, day_start_min, day_end_min, granularity_min,
		buffer_min, lead_time_min, timezone
		FROM availability_policies WHERE tenant_id = ?`
	var p domain.AvailabilityPolicy
	var weekdays string
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&p.TenantID, &weekdays, &p.DayStartMin, &p.DayEndMin, &p.GranularityMin,
		&p.BufferMin, &p.LeadTimeMin, &p.Timezone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("availability policy: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning availability policy: %w", err)
	}
	if p.Weekdays, err = domain.ParseWeekdays(weekdays); err != nil {
		return nil, fmt.Errorf("parsing weekdays: %w", err)
	}
	return &p, nil
}

func (r *SQLitePolicyRepo) Upsert(ctx context.Context, p *domain.AvailabilityPolicy) error {
	query := `INSERT INTO availability_policies (tenant_id, weekdays, day_start_min, day_end_min,
		granularity_min, buffer_min, lead_time_min, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			weekdays = excluded.weekdays,
			day_start_min = excluded.day_start_min,
			day_end_min = excluded.day_end_min,
			granularity_min = excluded.granularity_min,
			buffer_min = excluded.buffer_min,
			lead_time_min = excluded.lead_time_min,
			timezone = excluded.timezone`
	_, err := r.db.ExecContext(ctx, query,
		p.TenantID, domain.FormatWeekdays(p.Weekdays), p.DayStartMin, p.DayEndMin,
		p.GranularityMin, p.BufferMin, p.LeadTimeMin, p.Timezone)
	if err != nil {
		return fmt.Errorf("upserting availability policy: %w", err)
	}
	return nil
}

// SQLiteMeetingTypeRepo implements MeetingTypeRepo using a SQLite database.
type SQLiteMeetingTypeRepo struct {
	db db.DBTX
}

// NewSQLiteMeetingTypeRepo creates a new SQLiteMeetingTypeRepo.
func NewSQLiteMeetingTypeRepo(conn db.DBTX) *SQLiteMeetingTypeRepo {
	return &SQLiteMeetingTypeRepo{db: conn}
}

func (r *SQLiteMeetingTypeRepo) Create(ctx context.Context, m *domain.MeetingType) error {
	query := `INSERT INTO meeting_types (id, tenant_id, name, duration_min, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.TenantID, m.Name, m.DurationMin, boolToInt(m.Active), formatTS(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting meeting type: %w", err)
	}
	return nil
}

func (r *SQLiteMeetingTypeRepo) GetByID(ctx context.Context, id string) (*domain.MeetingType, error) {
	query := `SELECT id, tenant_id, name, duration_min, active, created_at FROM meeting_types WHERE id = ?`
	return scanMeetingType(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteMeetingTypeRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.MeetingType, error) {
	query := `SELECT id, tenant_id, name, duration_min, active, created_at FROM meeting_types
		WHERE tenant_id = ? ORDER BY duration_min, name`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing meeting types: %w", err)
	}
	defer rows.Close()

	var out []*domain.MeetingType
	for rows.Next() {
		m, err := scanMeetingType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meeting types: %w", err)
	}
	return out, nil
}

func (r *SQLiteMeetingTypeRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE meeting_types SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("updating meeting type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meeting type %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanMeetingType(s scanner) (*domain.MeetingType, error) {
	var m domain.MeetingType
	var active int
	var createdStr string
	err := s.Scan(&m.ID, &m.TenantID, &m.Name, &m.DurationMin, &active, &createdStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("meeting type: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning meeting type: %w", err)
	}
	m.Active = intToBool(active)
	if m.CreatedAt, err = parseTS(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}
