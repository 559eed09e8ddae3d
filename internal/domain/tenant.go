package domain

import "time"

type Tenant struct {
	ID        string
	Name      string
	Timezone  string
	HostID    string // designated booking host; empty means first owner/admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Participant struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	Role      ParticipantRole
	CreatedAt time.Time
}

// CanHost reports whether the participant may act as a booking host.
func (p *Participant) CanHost() bool {
	return p.Role == RoleOwner || p.Role == RoleAdmin
}

type MeetingType struct {
	ID          string
	TenantID    string
	Name        string
	DurationMin int
	Active      bool
	CreatedAt   time.Time
}

// Duration returns the fixed meeting length.
func (m *MeetingType) Duration() time.Duration {
	return time.Duration(m.DurationMin) * time.Minute
}
