package booking

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yanqian/roofbook/internal/domain/schedule"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// Operations is the staff-facing appointment API.
type Operations interface {
	List(ctx context.Context, filter Filter) ([]Appointment, error)
	Get(ctx context.Context, id string) (Appointment, error)
	Cancel(ctx context.Context, id string) (Appointment, error)
	Complete(ctx context.Context, id string) (Appointment, error)
	SendReminders(ctx context.Context, date schedule.Date) (int, error)
}

type operations struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewOperations constructs the staff API.
func NewOperations(repo Repository, notifier Notifier, logger *slog.Logger) Operations {
	return &operations{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("component", "booking.operations"),
	}
}

func (o *operations) List(ctx context.Context, filter Filter) ([]Appointment, error) {
	for _, status := range filter.StatusIn {
		if !status.Valid() {
			return nil, apperrors.Wrap(CodeValidation, "unknown status "+string(status), nil)
		}
	}
	appts, err := o.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(CodePersistenceFailure, "failed to list appointments", err)
	}
	return appts, nil
}

func (o *operations) Get(ctx context.Context, id string) (Appointment, error) {
	appt, err := o.repo.Get(ctx, id)
	if err != nil {
		return Appointment{}, mapLookupError(err)
	}
	return appt, nil
}

// Cancel frees the slot immediately and tells the customer.
func (o *operations) Cancel(ctx context.Context, id string) (Appointment, error) {
	appt, err := o.transition(ctx, id, StatusCancelled)
	if err != nil {
		return Appointment{}, err
	}
	if err := o.notifier.Notify(ctx, CancellationMessage(appt)); err != nil {
		o.logger.Error("cancellation notification failed", "code", CodeNotificationFailure, "appointment_id", appt.ID, "error", err)
	}
	return appt, nil
}

func (o *operations) Complete(ctx context.Context, id string) (Appointment, error) {
	return o.transition(ctx, id, StatusCompleted)
}

func (o *operations) transition(ctx context.Context, id string, status Status) (Appointment, error) {
	appt, err := o.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrTerminalStatus) {
			return Appointment{}, apperrors.Wrap(CodeInvalidTransition, "appointment is already completed or cancelled", err)
		}
		return Appointment{}, mapLookupError(err)
	}
	o.logger.Info("appointment status changed", "appointment_id", appt.ID, "status", string(status))
	return appt, nil
}

// SendReminders notifies customers who opted in for confirmed appointments on date.
func (o *operations) SendReminders(ctx context.Context, date schedule.Date) (int, error) {
	appts, err := o.repo.List(ctx, Filter{Date: date, StatusIn: []Status{StatusConfirmed}})
	if err != nil {
		return 0, apperrors.Wrap(CodePersistenceFailure, "failed to list appointments for reminders", err)
	}
	sent := 0
	for _, appt := range appts {
		if !appt.SendReminders {
			continue
		}
		if err := o.notifier.Notify(ctx, ReminderMessage(appt)); err != nil {
			o.logger.Error("reminder notification failed", "code", CodeNotificationFailure, "appointment_id", appt.ID, "error", err)
			continue
		}
		sent++
	}
	o.logger.Info("reminders sent", "date", date.String(), "sent", sent, "candidates", len(appts))
	return sent, nil
}

func mapLookupError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperrors.Wrap(CodeNotFound, "appointment not found", err)
	}
	return apperrors.Wrap(CodePersistenceFailure, "failed to load appointment", err)
}
