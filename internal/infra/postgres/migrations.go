package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names referenced by repositories when mapping unique violations.
const (
	ConstraintActiveSlot   = "appointments_active_slot_idx"
	ConstraintConfirmation = "appointments_confirmation_number_key"
	ConstraintPaymentEvent = "payment_records_event_id_key"
	ConstraintStaffEmail   = "staff_email_key"
)

// migrations run in order on every start; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS measurement_leads (
		id               UUID PRIMARY KEY,
		name             TEXT NOT NULL DEFAULT '',
		email            TEXT NOT NULL DEFAULT '',
		phone            TEXT NOT NULL DEFAULT '',
		property_address TEXT NOT NULL,
		total_sqft       DOUBLE PRECISION NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'new',
		appointment_id   UUID,
		payment_ref      TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id                  UUID PRIMARY KEY,
		measurement_id      TEXT NOT NULL DEFAULT '',
		customer_name       TEXT NOT NULL,
		customer_email      TEXT NOT NULL,
		customer_phone      TEXT NOT NULL,
		property_address    TEXT NOT NULL,
		appointment_date    DATE NOT NULL,
		appointment_time    TEXT NOT NULL,
		duration_minutes    INTEGER NOT NULL,
		status              TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'completed', 'cancelled')),
		confirmation_number TEXT NOT NULL,
		special_requests    TEXT NOT NULL DEFAULT '',
		send_reminders      BOOLEAN NOT NULL DEFAULT false,
		terms_accepted      BOOLEAN NOT NULL CHECK (terms_accepted),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT appointments_confirmation_number_key UNIQUE (confirmation_number)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot_idx
		ON appointments (appointment_date, appointment_time)
		WHERE status IN ('pending', 'confirmed')`,
	`CREATE INDEX IF NOT EXISTS appointments_date_status_idx
		ON appointments (appointment_date, status)`,
	`CREATE TABLE IF NOT EXISTS payment_records (
		id                UUID PRIMARY KEY,
		event_id          TEXT NOT NULL,
		event_type        TEXT NOT NULL,
		outcome           TEXT NOT NULL,
		payment_intent_id TEXT NOT NULL DEFAULT '',
		amount_cents      BIGINT NOT NULL DEFAULT 0,
		currency          TEXT NOT NULL DEFAULT '',
		measurement_id    TEXT NOT NULL DEFAULT '',
		failure_message   TEXT NOT NULL DEFAULT '',
		occurred_at       TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT payment_records_event_id_key UNIQUE (event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT staff_email_key UNIQUE (email)
	)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
