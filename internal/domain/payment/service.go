package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// Service records payment processor results.
type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (Result, error)
}

type service struct {
	parser EventParser
	repo   Repository
	leads  LeadMarker
	logger *slog.Logger
}

// NewService constructs a Service instance. A nil parser disables the webhook.
func NewService(parser EventParser, repo Repository, leads LeadMarker, logger *slog.Logger) Service {
	return &service{
		parser: parser,
		repo:   repo,
		leads:  leads,
		logger: logger.With("component", "payment.service"),
	}
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) (Result, error) {
	if s.parser == nil {
		return Result{}, apperrors.Wrap(CodeNotConfigured, "payment webhook not configured", nil)
	}
	evt, err := s.parser.Parse(payload, signature)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return Result{}, apperrors.Wrap(CodeInvalidSignature, "invalid signature", err)
		}
		return Result{}, apperrors.Wrap("validation_error", "invalid webhook payload", err)
	}
	s.logger.Info("payment provider event received", "event_id", evt.ID, "event_type", evt.Type)

	if evt.Outcome == "" {
		return Result{EventID: evt.ID, Status: "ignored"}, nil
	}

	record := Record{
		ID:              uuid.NewString(),
		EventID:         evt.ID,
		EventType:       evt.Type,
		Outcome:         evt.Outcome,
		PaymentIntentID: evt.PaymentIntentID,
		AmountCents:     evt.AmountCents,
		Currency:        evt.Currency,
		MeasurementID:   evt.MeasurementID,
		FailureMessage:  evt.FailureMessage,
		OccurredAt:      evt.OccurredAt,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			s.logger.Info("payment provider event duplicate ignored", "event_id", evt.ID)
			return Result{EventID: evt.ID, Status: "duplicate", Duplicate: true}, nil
		}
		return Result{}, apperrors.Wrap("persistence_failure", "failed to record payment", err)
	}

	if evt.Outcome == OutcomeSucceeded && evt.MeasurementID != "" {
		if err := s.leads.MarkPaid(ctx, evt.MeasurementID, evt.PaymentIntentID); err != nil {
			s.logger.Warn("failed to mark lead paid", "measurement_id", evt.MeasurementID, "payment_intent", evt.PaymentIntentID, "error", err)
		}
	}
	return Result{EventID: evt.ID, Status: string(evt.Outcome), Recorded: true}, nil
}
