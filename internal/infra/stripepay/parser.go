package stripepay

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/yanqian/roofbook/internal/domain/payment"
)

const (
	eventSucceeded = "payment_intent.succeeded"
	eventFailed    = "payment_intent.payment_failed"

	// MetadataMeasurementID is the PaymentIntent metadata key that links a payment to its lead.
	MetadataMeasurementID = "measurement_id"
)

// Parser verifies Stripe webhook signatures and decodes payment intent events.
type Parser struct {
	secret    string
	tolerance time.Duration
}

// NewParser returns nil when no webhook secret is configured.
func NewParser(secret string, tolerance time.Duration) *Parser {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Parser{secret: secret, tolerance: tolerance}
}

// Parse implements payment.EventParser.
func (p *Parser) Parse(payload []byte, signature string) (payment.Event, error) {
	if strings.TrimSpace(signature) == "" {
		return payment.Event{}, payment.ErrInvalidSignature
	}
	evt, err := webhook.ConstructEventWithTolerance(payload, signature, p.secret, p.tolerance)
	if err != nil {
		return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	out := payment.Event{
		ID:         evt.ID,
		Type:       string(evt.Type),
		OccurredAt: time.Unix(evt.Created, 0).UTC(),
	}
	switch out.Type {
	case eventSucceeded:
		out.Outcome = payment.OutcomeSucceeded
	case eventFailed:
		out.Outcome = payment.OutcomeFailed
	default:
		return out, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &intent); err != nil {
		return payment.Event{}, fmt.Errorf("invalid payment intent payload: %w", err)
	}
	out.PaymentIntentID = intent.ID
	out.AmountCents = intent.Amount
	out.Currency = string(intent.Currency)
	out.MeasurementID = strings.TrimSpace(intent.Metadata[MetadataMeasurementID])
	if intent.LastPaymentError != nil {
		out.FailureMessage = intent.LastPaymentError.Msg
	}
	return out, nil
}

var _ payment.EventParser = (*Parser)(nil)
