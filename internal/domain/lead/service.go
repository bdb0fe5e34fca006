package lead

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/roofbook/internal/domain/booking"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// Service exposes measurement lead intake.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (Lead, error)
	Get(ctx context.Context, id string) (Lead, error)
	MarkPaid(ctx context.Context, id, paymentRef string) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "lead.service"),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (Lead, error) {
	lead := Lead{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		PropertyAddress: strings.TrimSpace(req.PropertyAddress),
		TotalSqft:       req.TotalSqft,
		Status:          StatusNew,
	}
	if lead.PropertyAddress == "" {
		return Lead{}, apperrors.Wrap(booking.CodeValidation, "property address is required", nil)
	}
	if lead.Email != "" {
		if _, err := mail.ParseAddress(lead.Email); err != nil {
			return Lead{}, apperrors.Wrap(booking.CodeValidation, "email address is invalid", err)
		}
	}
	if lead.TotalSqft < 0 {
		return Lead{}, apperrors.Wrap(booking.CodeValidation, "total square footage cannot be negative", nil)
	}
	now := time.Now().UTC()
	lead.CreatedAt, lead.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return Lead{}, apperrors.Wrap(booking.CodePersistenceFailure, "failed to save measurement", err)
	}
	s.logger.Info("measurement lead captured", "lead_id", created.ID, "sqft", created.TotalSqft)
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (Lead, error) {
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Lead{}, apperrors.Wrap(booking.CodeNotFound, "measurement not found", err)
		}
		return Lead{}, apperrors.Wrap(booking.CodePersistenceFailure, "failed to load measurement", err)
	}
	return lead, nil
}

func (s *service) MarkPaid(ctx context.Context, id, paymentRef string) error {
	if err := s.repo.MarkPaid(ctx, id, paymentRef); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.Wrap(booking.CodeNotFound, "measurement not found", err)
		}
		return apperrors.Wrap(booking.CodePersistenceFailure, "failed to mark measurement paid", err)
	}
	s.logger.Info("measurement lead paid", "lead_id", id, "payment_ref", paymentRef)
	return nil
}

// BookingLeads adapts a Repository to the booking workflow's read-and-mark contract.
type BookingLeads struct {
	repo Repository
}

// NewBookingLeads wraps repo.
func NewBookingLeads(repo Repository) *BookingLeads {
	return &BookingLeads{repo: repo}
}

func (b *BookingLeads) Get(ctx context.Context, id string) (booking.LeadRecord, error) {
	lead, err := b.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return booking.LeadRecord{}, booking.ErrNotFound
		}
		return booking.LeadRecord{}, err
	}
	return booking.LeadRecord{
		ID:              lead.ID,
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		PropertyAddress: lead.PropertyAddress,
		TotalSqft:       lead.TotalSqft,
	}, nil
}

func (b *BookingLeads) MarkBooked(ctx context.Context, id, appointmentID string) error {
	return b.repo.MarkBooked(ctx, id, appointmentID)
}

var _ booking.LeadStore = (*BookingLeads)(nil)
