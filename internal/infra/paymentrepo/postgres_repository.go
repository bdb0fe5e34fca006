package paymentrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/roofbook/internal/domain/payment"
	"github.com/yanqian/roofbook/internal/infra/postgres"
)

// PostgresRepository persists payment records in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores the record; replayed events map to payment.ErrDuplicateEvent.
func (r *PostgresRepository) Insert(ctx context.Context, record payment.Record) error {
	var occurredAt any
	if !record.OccurredAt.IsZero() {
		occurredAt = record.OccurredAt
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_records
			(id, event_id, event_type, outcome, payment_intent_id, amount_cents, currency,
			 measurement_id, failure_message, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, record.ID, record.EventID, record.EventType, string(record.Outcome), record.PaymentIntentID,
		record.AmountCents, record.Currency, record.MeasurementID, record.FailureMessage, occurredAt, record.CreatedAt)
	if postgres.IsUniqueViolation(err, postgres.ConstraintPaymentEvent) {
		return payment.ErrDuplicateEvent
	}
	return err
}

var _ payment.Repository = (*PostgresRepository)(nil)
