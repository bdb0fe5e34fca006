package appointmentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/schedule"
	"github.com/yanqian/roofbook/internal/infra/postgres"
)

const appointmentColumns = `id, measurement_id, customer_name, customer_email, customer_phone, property_address,
	appointment_date, appointment_time, duration_minutes, status, confirmation_number,
	special_requests, send_reminders, terms_accepted, created_at, updated_at`

var activeStatuses = []string{string(booking.StatusPending), string(booking.StatusConfirmed)}

// PostgresRepository persists appointments in Postgres. The partial unique index on
// active (date, time) is the backstop; a per-date advisory lock serializes capacity checks.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List implements booking.Repository.
func (r *PostgresRepository) List(ctx context.Context, filter booking.Filter) ([]booking.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE true`
	var args []any
	if !filter.Date.IsZero() {
		args = append(args, dateArg(filter.Date))
		query += fmt.Sprintf(" AND appointment_date = $%d", len(args))
	}
	if len(filter.StatusIn) > 0 {
		statuses := make([]string, len(filter.StatusIn))
		for i, s := range filter.StatusIn {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	query += " ORDER BY appointment_date, to_timestamp(appointment_time, 'HH12:MI AM')::time"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]booking.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// Create implements booking.Repository.
func (r *PostgresRepository) Create(ctx context.Context, appt booking.Appointment, maxPerDay int) (booking.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return booking.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "appointments:"+appt.Date.String()); err != nil {
		return booking.Appointment{}, err
	}
	var count int
	if err := tx.QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE appointment_date = $1 AND status = ANY($2)
	`, dateArg(appt.Date), activeStatuses).Scan(&count); err != nil {
		return booking.Appointment{}, err
	}
	if maxPerDay > 0 && count >= maxPerDay {
		return booking.Appointment{}, booking.ErrDayFull
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING `+appointmentColumns,
		appt.ID, appt.MeasurementID, appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone, appt.PropertyAddress,
		dateArg(appt.Date), appt.Time, appt.DurationMinutes, string(appt.Status), appt.ConfirmationNumber,
		appt.SpecialRequests, appt.SendReminders, appt.TermsAccepted,
	)
	created, err := scanAppointment(row)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, postgres.ConstraintActiveSlot):
			return booking.Appointment{}, booking.ErrDuplicateSlot
		case postgres.IsUniqueViolation(err, postgres.ConstraintConfirmation):
			return booking.Appointment{}, booking.ErrDuplicateConfirmation
		}
		return booking.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return booking.Appointment{}, booking.ErrDuplicateSlot
		}
		return booking.Appointment{}, err
	}
	return created, nil
}

// UpdateStatus implements booking.Repository. Terminal appointments are left untouched.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status booking.Status) (booking.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return booking.Appointment{}, booking.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING `+appointmentColumns, id, string(status), activeStatuses)
	appt, err := scanAppointment(row)
	if err == nil {
		return appt, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return booking.Appointment{}, err
	}
	if _, err := r.Get(ctx, id); err != nil {
		return booking.Appointment{}, err
	}
	return booking.Appointment{}, booking.ErrTerminalStatus
}

// Get implements booking.Repository.
func (r *PostgresRepository) Get(ctx context.Context, id string) (booking.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return booking.Appointment{}, booking.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Appointment{}, booking.ErrNotFound
	}
	return appt, err
}

// CountByDateRange implements booking.Repository.
func (r *PostgresRepository) CountByDateRange(ctx context.Context, from, to schedule.Date) (map[schedule.Date]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment_date, count(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2 AND status = ANY($3)
		GROUP BY appointment_date
	`, dateArg(from), dateArg(to), activeStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[schedule.Date]int)
	for rows.Next() {
		var (
			day   time.Time
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[schedule.DateOf(day)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (booking.Appointment, error) {
	var (
		appt   booking.Appointment
		day    time.Time
		status string
	)
	if err := row.Scan(
		&appt.ID,
		&appt.MeasurementID,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&appt.PropertyAddress,
		&day,
		&appt.Time,
		&appt.DurationMinutes,
		&status,
		&appt.ConfirmationNumber,
		&appt.SpecialRequests,
		&appt.SendReminders,
		&appt.TermsAccepted,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return booking.Appointment{}, err
	}
	appt.Date = schedule.DateOf(day)
	appt.Status = booking.Status(status)
	return appt, nil
}

func dateArg(d schedule.Date) time.Time {
	return d.Time(time.UTC)
}

var _ booking.Repository = (*PostgresRepository)(nil)
