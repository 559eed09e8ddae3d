package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
)

const eventColumns = `e.id, e.tenant_id, e.owner_id, e.title, e.description, e.start_at, e.end_at,
		e.kind, e.room_ref, e.all_day, e.reminder_min, e.metadata,
		e.recurrence, e.timezone, e.exdates, e.source, e.external_uid, e.created_at, e.updated_at`

// SQLiteEventRepo implements EventRepo using a SQLite database.
type SQLiteEventRepo struct {
	db db.DBTX
}

// NewSQLiteEventRepo creates a new SQLiteEventRepo.
func NewSQLiteEventRepo(conn db.DBTX) *SQLiteEventRepo {
	return &SQLiteEventRepo{db: conn}
}

func (r *SQLiteEventRepo) Create(ctx context.Context, e *domain.CalendarEvent) error {
	meta, err := encodeMetadata(e.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO events (id, tenant_id, owner_id, title, description, start_at, end_at,
		kind, room_ref, all_day, reminder_min, metadata, recurrence, timezone, exdates, source, external_uid,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.TenantID,
		e.OwnerID,
		e.Title,
		e.Description,
		formatTS(e.Start),
		formatTS(e.End),
		string(e.Kind),
		e.RoomRef,
		boolToInt(e.AllDay),
		e.ReminderMin,
		meta,
		e.Recurrence,
		e.Timezone,
		formatTimeList(e.ExDates),
		string(e.Source),
		e.ExternalUID,
		formatTS(e.CreatedAt),
		formatTS(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return r.replaceAttendees(ctx, e.ID, e.Attendees)
}

func (r *SQLiteEventRepo) GetByID(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadAttendees(ctx, []*domain.CalendarEvent{ev}); err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *SQLiteEventRepo) GetByExternalUID(ctx context.Context, ownerID, uid string) (*domain.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.owner_id = ? AND e.external_uid = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, ownerID, uid))
	if err != nil {
		return nil, err
	}
	if err := r.loadAttendees(ctx, []*domain.CalendarEvent{ev}); err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *SQLiteEventRepo) ListForParticipant(ctx context.Context, participantID string, rng EventRange) ([]*domain.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events e
		WHERE (e.owner_id = ? OR EXISTS (
			SELECT 1 FROM event_attendees a WHERE a.event_id = e.id AND a.participant_id = ?))`
	args := []any{participantID, participantID}
	if rng.To != nil {
		query += ` AND e.start_at < ?`
		args = append(args, formatTS(*rng.To))
	}
	if rng.From != nil {
		// Zero-length markers at the range start still belong to the range.
		query += ` AND (e.recurrence != '' OR e.end_at > ? OR e.start_at >= ?)`
		from := formatTS(*rng.From)
		args = append(args, from, from)
	}
	query += ` ORDER BY e.start_at, e.id`

	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadAttendees(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *SQLiteEventRepo) Update(ctx context.Context, e *domain.CalendarEvent) error {
	meta, err := encodeMetadata(e.Metadata)
	if err != nil {
		return err
	}
	query := `UPDATE events SET title = ?, description = ?, start_at = ?, end_at = ?, kind = ?,
		room_ref = ?, all_day = ?, reminder_min = ?, metadata = ?, recurrence = ?,
		timezone = ?, exdates = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Title,
		e.Description,
		formatTS(e.Start),
		formatTS(e.End),
		string(e.Kind),
		e.RoomRef,
		boolToInt(e.AllDay),
		e.ReminderMin,
		meta,
		e.Recurrence,
		e.Timezone,
		formatTimeList(e.ExDates),
		formatTS(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", e.ID, ErrNotFound)
	}
	return r.replaceAttendees(ctx, e.ID, e.Attendees)
}

func (r *SQLiteEventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteEventRepo) replaceAttendees(ctx context.Context, eventID string, attendees []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_attendees WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("clearing attendees: %w", err)
	}
	seen := make(map[string]bool, len(attendees))
	for i, pid := range attendees {
		if pid == "" || seen[pid] {
			continue
		}
		seen[pid] = true
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO event_attendees (event_id, participant_id, position) VALUES (?, ?, ?)`,
			eventID, pid, i); err != nil {
			return fmt.Errorf("inserting attendee: %w", err)
		}
	}
	return nil
}

// queryEvents runs query and returns the scanned events. Rows are closed
// before returning so callers may issue follow-up queries on the same
// connection.
func (r *SQLiteEventRepo) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*domain.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// loadAttendees fills Attendees for all events with one query.
func (r *SQLiteEventRepo) loadAttendees(ctx context.Context, events []*domain.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[string]*domain.CalendarEvent, len(events))
	args := make([]any, 0, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
		args = append(args, ev.ID)
	}

	query := `SELECT event_id, participant_id FROM event_attendees
		WHERE event_id IN (` + placeholders(len(args)) + `)
		ORDER BY event_id, position`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("loading attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, pid string
		if err := rows.Scan(&eventID, &pid); err != nil {
			return fmt.Errorf("scanning attendee: %w", err)
		}
		if ev := byID[eventID]; ev != nil {
			ev.Attendees = append(ev.Attendees, pid)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating attendees: %w", err)
	}
	return nil
}

func scanEvent(s scanner) (*domain.CalendarEvent, error) {
	var e domain.CalendarEvent
	var startStr, endStr, kindStr, metaStr, exdatesStr, sourceStr, createdStr, updatedStr string
	var allDay int

	err := s.Scan(
		&e.ID, &e.TenantID, &e.OwnerID, &e.Title, &e.Description, &startStr, &endStr,
		&kindStr, &e.RoomRef, &allDay, &e.ReminderMin, &metaStr,
		&e.Recurrence, &e.Timezone, &exdatesStr, &sourceStr, &e.ExternalUID, &createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	e.Kind = domain.EventKind(kindStr)
	e.Source = domain.EventSource(sourceStr)
	e.AllDay = intToBool(allDay)

	if e.Start, err = parseTS(startStr); err != nil {
		return nil, fmt.Errorf("parsing start_at: %w", err)
	}
	if e.End, err = parseTS(endStr); err != nil {
		return nil, fmt.Errorf("parsing end_at: %w", err)
	}
	if e.CreatedAt, err = parseTS(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTS(updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if e.ExDates, err = parseTimeList(exdatesStr); err != nil {
		return nil, fmt.Errorf("parsing exdates: %w", err)
	}
	if metaStr != "" && metaStr != "{}" {
		if err := json.Unmarshal([]byte(metaStr), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return &e, nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}
