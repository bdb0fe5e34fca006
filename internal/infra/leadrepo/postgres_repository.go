package leadrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/roofbook/internal/domain/lead"
)

const leadColumns = `id, name, email, phone, property_address, total_sqft, status,
	COALESCE(appointment_id::text, ''), payment_ref, created_at, updated_at`

// PostgresRepository persists measurement leads in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new lead row.
func (r *PostgresRepository) Create(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO measurement_leads (id, name, email, phone, property_address, total_sqft, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+leadColumns,
		l.ID, l.Name, l.Email, l.Phone, l.PropertyAddress, l.TotalSqft, string(l.Status), l.CreatedAt)
	return scanLead(row)
}

// Get fetches by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id string) (lead.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return lead.Lead{}, lead.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM measurement_leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return lead.Lead{}, lead.ErrNotFound
	}
	return l, err
}

// MarkBooked links the lead to its appointment. A paid lead keeps its status.
func (r *PostgresRepository) MarkBooked(ctx context.Context, id, appointmentID string) error {
	return r.exec(ctx, id, `
		UPDATE measurement_leads
		SET status = CASE WHEN status = 'paid' THEN status ELSE 'booked' END,
			appointment_id = $2,
			updated_at = now()
		WHERE id = $1
	`, appointmentID)
}

// MarkPaid records the payment reference.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id, paymentRef string) error {
	return r.exec(ctx, id, `
		UPDATE measurement_leads
		SET status = 'paid', payment_ref = $2, updated_at = now()
		WHERE id = $1
	`, paymentRef)
}

func (r *PostgresRepository) exec(ctx context.Context, id, query string, arg any) error {
	if _, err := uuid.Parse(id); err != nil {
		return lead.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, query, id, arg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lead.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (lead.Lead, error) {
	var (
		l      lead.Lead
		status string
	)
	if err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.PropertyAddress,
		&l.TotalSqft,
		&status,
		&l.AppointmentID,
		&l.PaymentRef,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return lead.Lead{}, err
	}
	l.Status = lead.Status(status)
	return l, nil
}

var _ lead.Repository = (*PostgresRepository)(nil)
