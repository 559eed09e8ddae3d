package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE statements are re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillEventSource(db); err != nil {
		return fmt.Errorf("backfilling event source: %w", err)
	}
	if err := migrateBackfillShadowTasks(db); err != nil {
		return fmt.Errorf("backfilling shadow tasks: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		timezone   TEXT NOT NULL DEFAULT 'UTC',
		host_id    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS participants (
		id         TEXT PRIMARY KEY,
		tenant_id  TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT 'member'
		           CHECK(role IN ('owner','admin','member')),
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_participants_tenant ON participants(tenant_id)`,

	`CREATE TABLE IF NOT EXISTS availability_policies (
		tenant_id       TEXT PRIMARY KEY REFERENCES tenants(id) ON DELETE CASCADE,
		weekdays        TEXT NOT NULL DEFAULT '1,2,3,4,5',
		day_start_min   INTEGER NOT NULL DEFAULT 540,
		day_end_min     INTEGER NOT NULL DEFAULT 1020,
		granularity_min INTEGER NOT NULL DEFAULT 15,
		buffer_min      INTEGER NOT NULL DEFAULT 15,
		lead_time_min   INTEGER NOT NULL DEFAULT 60,
		timezone        TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS meeting_types (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		duration_min INTEGER NOT NULL CHECK(duration_min > 0),
		active       INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_meeting_types_tenant ON meeting_types(tenant_id)`,

	`CREATE TABLE IF NOT EXISTS events (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL DEFAULT '',
		owner_id     TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		start_at     TEXT NOT NULL,
		end_at       TEXT NOT NULL,
		kind         TEXT NOT NULL DEFAULT 'meeting'
		             CHECK(kind IN ('meeting','call','reminder','deadline','task-shadow','invoice-shadow')),
		room_ref     TEXT NOT NULL DEFAULT '',
		all_day      INTEGER NOT NULL DEFAULT 0,
		reminder_min INTEGER NOT NULL DEFAULT 0,
		metadata     TEXT NOT NULL DEFAULT '{}',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		CHECK(end_at >= start_at)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_owner_start ON events(owner_id, start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_tenant ON events(tenant_id)`,

	`CREATE TABLE IF NOT EXISTS event_attendees (
		event_id       TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		participant_id TEXT NOT NULL,
		position       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (event_id, participant_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_event_attendees_participant ON event_attendees(participant_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		assignee_id  TEXT NOT NULL DEFAULT '',
		priority     TEXT NOT NULL DEFAULT 'medium'
		             CHECK(priority IN ('low','medium','high','urgent')),
		status       TEXT NOT NULL DEFAULT 'todo'
		             CHECK(status IN ('todo','in_progress','completed','cancelled')),
		start_date   TEXT,
		due_date     TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		completed_at TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date)`,

	`CREATE TABLE IF NOT EXISTS task_dependents (
		task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		dependent_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, dependent_id),
		CHECK(task_id != dependent_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_dependents_dependent ON task_dependents(dependent_id)`,

	`CREATE TABLE IF NOT EXISTS task_activity (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		action     TEXT NOT NULL,
		detail     TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_activity_task ON task_activity(task_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL DEFAULT '',
		owner_id     TEXT NOT NULL,
		number       TEXT NOT NULL DEFAULT '',
		amount_cents INTEGER NOT NULL DEFAULT 0,
		status       TEXT NOT NULL DEFAULT 'draft'
		             CHECK(status IN ('draft','sent','paid','overdue','cancelled')),
		due_date     TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_invoices_owner_due ON invoices(owner_id, due_date)`,

	`CREATE TABLE IF NOT EXISTS contracts (
		id             TEXT PRIMARY KEY,
		tenant_id      TEXT NOT NULL DEFAULT '',
		owner_id       TEXT NOT NULL,
		title          TEXT NOT NULL DEFAULT '',
		value_cents    INTEGER NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'pending'
		               CHECK(payment_status IN ('pending','partial','paid')),
		payment_due    TEXT NOT NULL,
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_contracts_owner_due ON contracts(owner_id, payment_due)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id              TEXT PRIMARY KEY,
		tenant_id       TEXT NOT NULL,
		meeting_type_id TEXT NOT NULL,
		host_id         TEXT NOT NULL DEFAULT '',
		idempotency_key TEXT NOT NULL,
		client_name     TEXT NOT NULL DEFAULT '',
		client_email    TEXT NOT NULL DEFAULT '',
		client_phone    TEXT NOT NULL DEFAULT '',
		client_notes    TEXT NOT NULL DEFAULT '',
		start_at        TEXT NOT NULL,
		end_at          TEXT NOT NULL,
		state           TEXT NOT NULL DEFAULT 'requested'
		                CHECK(state IN ('requested','slot_validated','room_provisioned','event_persisted',
		                                'shadow_task_created','complete','failed','compensated')),
		failed_step     TEXT NOT NULL DEFAULT '',
		room_id         TEXT NOT NULL DEFAULT '',
		room_url        TEXT NOT NULL DEFAULT '',
		event_id        TEXT NOT NULL DEFAULT '',
		task_id         TEXT NOT NULL DEFAULT '',
		last_error      TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_idempotency ON bookings(idempotency_key)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_state ON bookings(state)`,

	// Recurrence and import provenance on events
	`ALTER TABLE events ADD COLUMN recurrence TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE events ADD COLUMN source TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE events ADD COLUMN external_uid TEXT NOT NULL DEFAULT ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_external_uid ON events(owner_id, external_uid) WHERE external_uid != ''`,

	// Recurring series repeat in their own zone and may exclude instances
	`ALTER TABLE events ADD COLUMN timezone TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE events ADD COLUMN exdates TEXT NOT NULL DEFAULT ''`,

	// Booking-created tasks are shadow tasks hidden from task lists
	`ALTER TABLE tasks ADD COLUMN shadow INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE tasks ADD COLUMN booking_id TEXT NOT NULL DEFAULT ''`,
}

// migrateBackfillEventSource labels rows created before the source column
// existed. Imported rows are recognisable by their external UID.
// Idempotent: only rows with an empty source are touched.
func migrateBackfillEventSource(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx,
		`UPDATE events SET source = 'ics' WHERE source = '' AND external_uid != ''`); err != nil {
		return fmt.Errorf("labelling imported events: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE events SET source = 'native' WHERE source = ''`); err != nil {
		return fmt.Errorf("labelling native events: %w", err)
	}
	return nil
}

// migrateBackfillShadowTasks flags tasks that were written by a booking
// before the shadow column existed.
func migrateBackfillShadowTasks(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET shadow = 1
		WHERE shadow = 0 AND booking_id != ''`); err != nil {
		return fmt.Errorf("flagging booking tasks: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET shadow = 1, booking_id = b.id
		FROM bookings b
		WHERE b.task_id = tasks.id AND tasks.shadow = 0`); err != nil {
		return fmt.Errorf("linking booking tasks: %w", err)
	}
	return nil
}
