package domain

import (
	"errors"
	"fmt"
	"time"
)

type CalendarEvent struct {
	ID            string
	TenantID      string
	OwnerID       string
	Title         string
	Description   string
	Start         time.Time
	End           time.Time
	Kind          EventKind
	Attendees     []string
	RoomRef       string
	AllDay        bool
	ReminderMin   int
	Recurrence    string // RRULE body, empty for single events
	Timezone      string // IANA zone the series repeats in; empty means UTC
	ExDates       []time.Time
	Source        EventSource
	ExternalUID   string
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OccurrenceOf  string // set on expanded occurrences of a recurring event
}

// Validate checks the structural invariants of an event.
func (e *CalendarEvent) Validate() error {
	if e.OwnerID == "" {
		return errors.New("event owner is required")
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return errors.New("event start and end are required")
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("event end %s is before start %s",
			e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
	}
	if !ValidEventKinds[e.Kind] {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.Timezone != "" {
		if _, err := time.LoadLocation(e.Timezone); err != nil {
			return fmt.Errorf("unknown event timezone %q", e.Timezone)
		}
	}
	return nil
}

// Location returns the zone recurrences are computed in. Wall-clock rules
// such as "every Monday 09:00" keep their local time across DST changes.
func (e *CalendarEvent) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration returns End - Start.
func (e *CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Involves reports whether the participant owns or attends the event.
func (e *CalendarEvent) Involves(participantID string) bool {
	if e.OwnerID == participantID {
		return true
	}
	for _, a := range e.Attendees {
		if a == participantID {
			return true
		}
	}
	return false
}

// IsRecurring reports whether the event carries a recurrence rule.
func (e *CalendarEvent) IsRecurring() bool {
	return e.Recurrence != ""
}

// SeriesID returns the ID of the stored event an occurrence was expanded from.
func (e *CalendarEvent) SeriesID() string {
	if e.OccurrenceOf != "" {
		return e.OccurrenceOf
	}
	return e.ID
}

// EventUpdate carries a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Start       *time.Time
	End         *time.Time
	Kind        *EventKind
	Attendees   *[]string
	RoomRef     *string
	AllDay      *bool
	ReminderMin *int
	Recurrence  *string
	Timezone    *string
}

// Apply returns a copy of e with the update applied.
func (u EventUpdate) Apply(e CalendarEvent) CalendarEvent {
	e.Title = CoalescePtr(u.Title, e.Title)
	e.Description = CoalescePtr(u.Description, e.Description)
	e.Start = CoalescePtr(u.Start, e.Start)
	e.End = CoalescePtr(u.End, e.End)
	e.Kind = CoalescePtr(u.Kind, e.Kind)
	e.RoomRef = CoalescePtr(u.RoomRef, e.RoomRef)
	e.AllDay = CoalescePtr(u.AllDay, e.AllDay)
	e.ReminderMin = CoalescePtr(u.ReminderMin, e.ReminderMin)
	e.Recurrence = CoalescePtr(u.Recurrence, e.Recurrence)
	e.Timezone = CoalescePtr(u.Timezone, e.Timezone)
	if u.Attendees != nil {
		e.Attendees = append([]string(nil), (*u.Attendees)...)
	}
	return e
}

// TouchesSchedule reports whether the update moves the event in time or
// changes who attends it, which requires a fresh conflict check.
func (u EventUpdate) TouchesSchedule() bool {
	return u.Start != nil || u.End != nil || u.Attendees != nil || u.Recurrence != nil || u.Timezone != nil
}
