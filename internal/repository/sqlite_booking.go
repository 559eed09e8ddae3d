package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/domain"
)

const bookingColumns = `id, tenant_id, meeting_type_id, host_id, idempotency_key,
		client_name, client_email, client_phone, client_notes, start_at, end_at,
		state, failed_step, room_id, room_url, event_id, task_id, last_error, created_at, updated_at`

// SQLiteBookingRepo implements BookingRepo using a SQLite database.
type SQLiteBookingRepo struct {
	db db.DBTX
}

// NewSQLiteBookingRepo creates a new SQLiteBookingRepo.
func NewSQLiteBookingRepo(conn db.DBTX) *SQLiteBookingRepo {
	return &SQLiteBookingRepo{db: conn}
}

func (r *SQLiteBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.TenantID,
		b.MeetingTypeID,
		b.HostID,
		b.IdempotencyKey,
		b.Client.Name,
		b.Client.Email,
		b.Client.Phone,
		b.Client.Notes,
		formatTS(b.Start),
		formatTS(b.End),
		string(b.State),
		string(b.FailedStep),
		b.RoomID,
		b.RoomURL,
		b.EventID,
		b.TaskID,
		b.LastError,
		formatTS(b.CreatedAt),
		formatTS(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}
	return nil
}

func (r *SQLiteBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteBookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE idempotency_key = ?`
	return scanBooking(r.db.QueryRowContext(ctx, query, key))
}

func (r *SQLiteBookingRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = ? ORDER BY start_at, id`
	return r.queryBookings(ctx, query, tenantID)
}

func (r *SQLiteBookingRepo) ListByState(ctx context.Context, state domain.BookingState) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE state = ? ORDER BY updated_at, id`
	return r.queryBookings(ctx, query, string(state))
}

// ListStale returns bookings still mid-saga whose last step happened before
// the given instant.
func (r *SQLiteBookingRepo) ListStale(ctx context.Context, before time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE state NOT IN (?, ?, ?) AND updated_at < ?
		ORDER BY updated_at, id`
	return r.queryBookings(ctx, query,
		string(domain.BookingComplete),
		string(domain.BookingFailed),
		string(domain.BookingCompensated),
		formatTS(before),
	)
}

// Update persists the mutable saga fields.
func (r *SQLiteBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET host_id = ?, start_at = ?, end_at = ?, state = ?, failed_step = ?,
		room_id = ?, room_url = ?, event_id = ?, task_id = ?, last_error = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		b.HostID,
		formatTS(b.Start),
		formatTS(b.End),
		string(b.State),
		string(b.FailedStep),
		b.RoomID,
		b.RoomURL,
		b.EventID,
		b.TaskID,
		b.LastError,
		formatTS(b.UpdatedAt),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %s: %w", b.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteBookingRepo) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookings: %w", err)
	}
	return out, nil
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var b domain.Booking
	var startStr, endStr, stateStr, failedStr, createdStr, updatedStr string

	err := s.Scan(
		&b.ID, &b.TenantID, &b.MeetingTypeID, &b.HostID, &b.IdempotencyKey,
		&b.Client.Name, &b.Client.Email, &b.Client.Phone, &b.Client.Notes, &startStr, &endStr,
		&stateStr, &failedStr, &b.RoomID, &b.RoomURL, &b.EventID, &b.TaskID, &b.LastError,
		&createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning booking: %w", err)
	}

	b.State = domain.BookingState(stateStr)
	b.FailedStep = domain.BookingState(failedStr)
	if b.Start, err = parseTS(startStr); err != nil {
		return nil, fmt.Errorf("parsing start_at: %w", err)
	}
	if b.End, err = parseTS(endStr); err != nil {
		return nil, fmt.Errorf("parsing end_at: %w", err)
	}
	if b.CreatedAt, err = parseTS(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTS(updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &b, nil
}
