package payment

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateEvent indicates the processor event was already recorded.
	ErrDuplicateEvent = errors.New("payment event already recorded")
	// ErrInvalidSignature indicates the webhook payload failed verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

const (
	CodeInvalidSignature = "invalid_signature"
	CodeNotConfigured    = "payments_not_configured"
)

// Outcome is the processor's verdict on a payment.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Event is a verified processor notification about one payment intent.
type Event struct {
	ID              string
	Type            string
	Outcome         Outcome
	PaymentIntentID string
	AmountCents     int64
	Currency        string
	MeasurementID   string
	FailureMessage  string
	OccurredAt      time.Time
}

// Record is the stored payment result.
type Record struct {
	ID              string    `json:"id"`
	EventID         string    `json:"eventId"`
	EventType       string    `json:"eventType"`
	Outcome         Outcome   `json:"outcome"`
	PaymentIntentID string    `json:"paymentIntentId"`
	AmountCents     int64     `json:"amountCents"`
	Currency        string    `json:"currency"`
	MeasurementID   string    `json:"measurementId,omitempty"`
	FailureMessage  string    `json:"failureMessage,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Result tells the webhook caller what happened.
type Result struct {
	EventID   string `json:"eventId"`
	Status    string `json:"status"`
	Recorded  bool   `json:"recorded"`
	Duplicate bool   `json:"duplicate"`
}

// EventParser verifies and decodes a raw webhook body. Events that carry no
// payment outcome are returned with an empty Outcome.
type EventParser interface {
	Parse(payload []byte, signature string) (Event, error)
}

// Repository stores payment records idempotently by event id.
type Repository interface {
	Insert(ctx context.Context, record Record) error
}

// LeadMarker flags the measurement lead as paid.
type LeadMarker interface {
	MarkPaid(ctx context.Context, id, paymentRef string) error
}
