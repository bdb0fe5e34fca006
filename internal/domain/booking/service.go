package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/yanqian/roofbook/internal/domain/schedule"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// Service exposes availability queries and the booking workflow to the UI layer.
type Service interface {
	GetDayAvailability(ctx context.Context, date schedule.Date) (schedule.DayAvailability, error)
	GetSlotAvailability(ctx context.Context, date schedule.Date) ([]schedule.SlotAvailability, error)
	GetMonth(ctx context.Context, view schedule.MonthView) (schedule.MonthGrid, error)
	Review(ctx context.Context, req BookingRequest) (Summary, error)
	AttemptBooking(ctx context.Context, req BookingRequest) (Confirmation, error)
	Commit(ctx context.Context, tx Transaction) (Transaction, error)
	Hold(ctx context.Context, req HoldRequest) (Hold, error)
	ReleaseHold(ctx context.Context, req HoldRequest) error
	Receipt(ctx context.Context, confirmationNumber string) (Receipt, error)
}

type service struct {
	cfg          Config
	resolver     *schedule.Resolver
	repo         Repository
	notifier     Notifier
	leads        LeadStore
	holds        HoldStore
	receipts     ReceiptStore
	confirmation ConfirmationGenerator
	inflight     singleflight.Group
	tracer       trace.Tracer
	logger       *slog.Logger
}

// Option customizes a service.
type Option func(*service)

// WithConfirmationGenerator replaces the confirmation number scheme.
func WithConfirmationGenerator(gen ConfirmationGenerator) Option {
	return func(s *service) {
		if gen != nil {
			s.confirmation = gen
		}
	}
}

// NewService constructs a Service instance.
func NewService(
	cfg Config,
	resolver *schedule.Resolver,
	repo Repository,
	notifier Notifier,
	leads LeadStore,
	holds HoldStore,
	receipts ReceiptStore,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = 60
	}
	if cfg.MaxSpecialRequests <= 0 {
		cfg.MaxSpecialRequests = 1000
	}
	s := &service{
		cfg:          cfg,
		resolver:     resolver,
		repo:         repo,
		notifier:     notifier,
		leads:        leads,
		holds:        holds,
		receipts:     receipts,
		confirmation: NewConfirmationNumber,
		tracer:       otel.Tracer("roofbook/booking"),
		logger:       logger.With("component", "booking.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetDayAvailability(ctx context.Context, date schedule.Date) (schedule.DayAvailability, error) {
	count, err := s.countFor(ctx, date)
	if err != nil {
		return schedule.DayAvailability{}, err
	}
	return s.resolver.DayAvailability(date, count), nil
}

func (s *service) GetSlotAvailability(ctx context.Context, date schedule.Date) ([]schedule.SlotAvailability, error) {
	return s.slotSnapshot(ctx, date, "")
}

// GetMonth builds the grid for view; a zero view means the current month.
func (s *service) GetMonth(ctx context.Context, view schedule.MonthView) (schedule.MonthGrid, error) {
	today := s.resolver.Today()
	if view.Year == 0 {
		view.Year, view.Month = today.Year, today.Month
	}
	first, last := view.First(), view.Last()
	counts, err := s.repo.CountByDateRange(ctx, first, last)
	if err != nil {
		return schedule.MonthGrid{}, apperrors.Wrap(CodePersistenceFailure, "failed to load month availability", err)
	}
	days := make([]schedule.DayAvailability, 0, last.Day)
	for d := first; !d.After(last); d = d.AddDays(1) {
		days = append(days, s.resolver.DayAvailability(d, counts[d]))
	}
	view.Today = today
	return schedule.BuildMonth(view, days), nil
}

func (s *service) Review(ctx context.Context, req BookingRequest) (Summary, error) {
	if !req.TermsAccepted {
		return Summary{}, apperrors.Wrap(CodeTermsNotAccepted, "terms and conditions must be accepted", nil)
	}
	tx, err := s.prepare(ctx, req)
	if err != nil {
		return Summary{}, err
	}
	summary, _ := tx.Summary()
	return summary, nil
}

func (s *service) AttemptBooking(ctx context.Context, req BookingRequest) (Confirmation, error) {
	// Terms are checked before any collaborator is touched.
	if !req.TermsAccepted {
		return Confirmation{}, apperrors.Wrap(CodeTermsNotAccepted, "terms and conditions must be accepted", nil)
	}
	if req.IdempotencyKey == "" {
		return s.attempt(ctx, req)
	}
	result, err, shared := s.inflight.Do(req.IdempotencyKey, func() (any, error) {
		return s.attempt(ctx, req)
	})
	if shared {
		s.logger.Info("duplicate submission collapsed", "idempotency_key", req.IdempotencyKey)
	}
	if err != nil {
		return Confirmation{}, err
	}
	return result.(Confirmation), nil
}

func (s *service) attempt(ctx context.Context, req BookingRequest) (Confirmation, error) {
	tx, err := s.prepare(ctx, req)
	if err != nil {
		return Confirmation{}, err
	}
	tx, err = s.Commit(ctx, tx)
	if err != nil {
		return Confirmation{}, err
	}
	confirmation, _ := tx.Confirmation()
	return confirmation, nil
}

// prepare walks a fresh transaction through date, slot and review.
func (s *service) prepare(ctx context.Context, req BookingRequest) (Transaction, error) {
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return Transaction{}, apperrors.Wrap(CodeValidation, "date must be formatted as YYYY-MM-DD", err)
	}
	details, err := s.withLead(ctx, req.details())
	if err != nil {
		return Transaction{}, err
	}

	day, err := s.GetDayAvailability(ctx, date)
	if err != nil {
		return Transaction{}, err
	}
	tx, err := Begin().SelectDate(day)
	if err != nil {
		return Transaction{}, err
	}
	slots, err := s.slotSnapshot(ctx, date, details.HoldToken)
	if err != nil {
		return Transaction{}, err
	}
	if tx, err = tx.WithSlots(slots); err != nil {
		return Transaction{}, err
	}
	if tx, err = tx.SelectSlot(req.Time); err != nil {
		return Transaction{}, err
	}
	return tx.Review(details, s.cfg)
}

// Commit re-validates the reviewed selection against fresh data and persists it.
func (s *service) Commit(ctx context.Context, tx Transaction) (Transaction, error) {
	tx, err := tx.BeginCommit()
	if err != nil {
		return tx, err
	}
	ctx, span := s.tracer.Start(ctx, "booking.commit", trace.WithAttributes(
		attribute.String("booking.date", tx.Date().String()),
		attribute.String("booking.time", tx.Slot()),
	))
	defer span.End()

	appt, err := s.commit(ctx, tx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.CodeOf(err))
		s.logger.Warn("booking commit failed", "date", tx.Date().String(), "time", tx.Slot(), "code", apperrors.CodeOf(err), "error", err)
		return tx.Fail(err), err
	}
	span.SetAttributes(attribute.String("booking.appointment_id", appt.ID))

	committed, err := tx.Succeed(appt)
	if err != nil {
		return tx, err
	}
	s.logger.Info("appointment booked", "appointment_id", appt.ID, "confirmation", appt.ConfirmationNumber, "date", appt.Date.String(), "time", appt.Time)
	summary, _ := committed.Summary()
	s.afterCommit(ctx, appt, summary, tx.Details().HoldToken)
	return committed, nil
}

func (s *service) commit(ctx context.Context, tx Transaction) (Appointment, error) {
	date, label := tx.Date(), tx.Slot()
	details := tx.Details()

	count, err := s.countFor(ctx, date)
	if err != nil {
		return Appointment{}, err
	}
	if !s.resolver.IsDateBookable(date, count) {
		return Appointment{}, apperrors.Wrap(CodeDateUnavailable, date.String()+" is no longer available", nil)
	}
	booked, err := s.bookedLabels(ctx, date)
	if err != nil {
		return Appointment{}, err
	}
	if booked.Has(label) || !s.resolver.IsSlot(date, label) {
		return Appointment{}, apperrors.Wrap(CodeSlotUnavailable, label+" is no longer available", nil)
	}
	if err := s.checkHold(ctx, date, label, details.HoldToken); err != nil {
		return Appointment{}, err
	}

	now := time.Now().UTC()
	appt := Appointment{
		ID:                 uuid.NewString(),
		MeasurementID:      details.MeasurementID,
		CustomerName:       details.Customer.Name,
		CustomerEmail:      details.Customer.Email,
		CustomerPhone:      details.Customer.Phone,
		PropertyAddress:    details.PropertyAddress,
		Date:               date,
		Time:               label,
		DurationMinutes:    s.cfg.DurationMinutes,
		Status:             StatusConfirmed,
		ConfirmationNumber: s.confirmation(now),
		SpecialRequests:    details.SpecialRequests,
		SendReminders:      details.SendReminders,
		TermsAccepted:      details.TermsAccepted,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created, err := s.repo.Create(ctx, appt, s.resolver.MaxPerDay())
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, ErrDuplicateSlot), errors.Is(err, ErrDuplicateConfirmation):
		return Appointment{}, apperrors.Wrap(CodeSlotUnavailable, label+" was just booked by someone else", err)
	case errors.Is(err, ErrDayFull):
		return Appointment{}, apperrors.Wrap(CodeDateUnavailable, date.String()+" was just fully booked", err)
	default:
		return Appointment{}, apperrors.Wrap(CodePersistenceFailure, "failed to save appointment, please retry", err)
	}
}

// afterCommit runs the side effects that never undo a booking.
func (s *service) afterCommit(ctx context.Context, appt Appointment, summary Summary, holdToken string) {
	if err := s.notifier.Notify(ctx, ConfirmationMessage(appt, summary.Estimate)); err != nil {
		s.logger.Error("customer notification failed", "code", CodeNotificationFailure, "appointment_id", appt.ID, "error", err)
	}
	if err := s.notifier.Notify(ctx, OperationsAlert(appt)); err != nil {
		s.logger.Error("operations notification failed", "code", CodeNotificationFailure, "appointment_id", appt.ID, "error", err)
	}
	if appt.MeasurementID != "" {
		if err := s.leads.MarkBooked(ctx, appt.MeasurementID, appt.ID); err != nil {
			s.logger.Warn("failed to mark lead booked", "measurement_id", appt.MeasurementID, "appointment_id", appt.ID, "error", err)
		}
	}
	receipt := Receipt{
		ConfirmationNumber: appt.ConfirmationNumber,
		AppointmentID:      appt.ID,
		Date:               appt.Date,
		Time:               appt.Time,
		DurationMinutes:    appt.DurationMinutes,
		CustomerName:       appt.CustomerName,
		PropertyAddress:    appt.PropertyAddress,
		Estimate:           summary.Estimate,
		IssuedAt:           appt.CreatedAt,
	}
	if err := s.receipts.Save(ctx, receipt); err != nil {
		s.logger.Warn("failed to archive receipt", "confirmation", appt.ConfirmationNumber, "error", err)
	}
	if s.holdsEnabled() && holdToken != "" {
		if err := s.holds.Release(ctx, HoldKey(appt.Date, appt.Time), holdToken); err != nil {
			s.logger.Warn("failed to release hold", "confirmation", appt.ConfirmationNumber, "error", err)
		}
	}
}

func (s *service) Hold(ctx context.Context, req HoldRequest) (Hold, error) {
	if !s.holdsEnabled() {
		return Hold{}, apperrors.Wrap(CodeHoldsDisabled, "slot holds are not enabled", nil)
	}
	date, label, err := parseSelection(req.Date, req.Time)
	if err != nil {
		return Hold{}, err
	}
	day, err := s.GetDayAvailability(ctx, date)
	if err != nil {
		return Hold{}, err
	}
	if !day.IsBookable {
		return Hold{}, apperrors.Wrap(CodeDateUnavailable, date.String()+" is not available for booking", nil)
	}
	booked, err := s.bookedLabels(ctx, date)
	if err != nil {
		return Hold{}, err
	}
	if booked.Has(label) || !s.resolver.IsSlot(date, label) {
		return Hold{}, apperrors.Wrap(CodeSlotUnavailable, label+" is not available", nil)
	}

	token := req.Token
	if token == "" {
		token = uuid.NewString()
	}
	key := HoldKey(date, label)
	ok, err := s.holds.Acquire(ctx, key, token, s.cfg.HoldTTL)
	if err != nil {
		return Hold{}, apperrors.Wrap(CodePersistenceFailure, "failed to hold slot", err)
	}
	if !ok {
		holders, err := s.holds.Holders(ctx, []string{key})
		if err != nil {
			return Hold{}, apperrors.Wrap(CodePersistenceFailure, "failed to hold slot", err)
		}
		if holders[key] != token {
			return Hold{}, apperrors.Wrap(CodeHoldConflict, label+" is being booked by someone else", nil)
		}
	}
	return Hold{
		Token:     token,
		Date:      date,
		Time:      label,
		ExpiresAt: time.Now().UTC().Add(s.cfg.HoldTTL),
	}, nil
}

func (s *service) ReleaseHold(ctx context.Context, req HoldRequest) error {
	if !s.holdsEnabled() {
		return apperrors.Wrap(CodeHoldsDisabled, "slot holds are not enabled", nil)
	}
	date, label, err := parseSelection(req.Date, req.Time)
	if err != nil {
		return err
	}
	if req.Token == "" {
		return apperrors.Wrap(CodeValidation, "hold token is required", nil)
	}
	if err := s.holds.Release(ctx, HoldKey(date, label), req.Token); err != nil {
		return apperrors.Wrap(CodePersistenceFailure, "failed to release hold", err)
	}
	return nil
}

func (s *service) Receipt(ctx context.Context, confirmationNumber string) (Receipt, error) {
	receipt, err := s.receipts.Load(ctx, confirmationNumber)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Receipt{}, apperrors.Wrap(CodeNotFound, "confirmation not found", err)
		}
		return Receipt{}, apperrors.Wrap(CodePersistenceFailure, "failed to load receipt", err)
	}
	return receipt, nil
}

func (s *service) holdsEnabled() bool {
	return s.cfg.HoldTTL > 0 && s.holds != nil
}

func (s *service) checkHold(ctx context.Context, date schedule.Date, label, token string) error {
	if !s.holdsEnabled() {
		return nil
	}
	key := HoldKey(date, label)
	holders, err := s.holds.Holders(ctx, []string{key})
	if err != nil {
		return apperrors.Wrap(CodePersistenceFailure, "failed to check slot holds", err)
	}
	if holder, ok := holders[key]; ok && holder != token {
		return apperrors.Wrap(CodeHoldConflict, label+" is being booked by someone else", nil)
	}
	return nil
}

// withLead fills contact fields the client left blank from the measurement lead.
func (s *service) withLead(ctx context.Context, d Details) (Details, error) {
	if d.MeasurementID == "" {
		return d, nil
	}
	lead, err := s.leads.Get(ctx, d.MeasurementID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return d, apperrors.Wrap(CodeNotFound, "measurement not found", err)
		}
		return d, apperrors.Wrap(CodePersistenceFailure, "failed to load measurement", err)
	}
	if d.Customer.Name == "" {
		d.Customer.Name = lead.Name
	}
	if d.Customer.Email == "" {
		d.Customer.Email = lead.Email
	}
	if d.Customer.Phone == "" {
		d.Customer.Phone = lead.Phone
	}
	if d.PropertyAddress == "" {
		d.PropertyAddress = lead.PropertyAddress
	}
	if d.RoofAreaSqft == 0 {
		d.RoofAreaSqft = lead.TotalSqft
	}
	return d, nil
}

func (s *service) countFor(ctx context.Context, date schedule.Date) (int, error) {
	counts, err := s.repo.CountByDateRange(ctx, date, date)
	if err != nil {
		return 0, apperrors.Wrap(CodePersistenceFailure, "failed to load day availability", err)
	}
	return counts[date], nil
}

func (s *service) bookedLabels(ctx context.Context, date schedule.Date) (schedule.LabelSet, error) {
	appts, err := s.repo.List(ctx, Filter{Date: date, StatusIn: ActiveStatuses})
	if err != nil {
		return nil, apperrors.Wrap(CodePersistenceFailure, "failed to load booked slots", err)
	}
	booked := make(schedule.LabelSet, len(appts))
	for _, appt := range appts {
		booked[appt.Time] = struct{}{}
	}
	return booked, nil
}

// slotSnapshot marks booked slots and, with holds enabled, slots held under another token.
func (s *service) slotSnapshot(ctx context.Context, date schedule.Date, ownToken string) ([]schedule.SlotAvailability, error) {
	if !s.resolver.HoursFor(date).Open {
		return []schedule.SlotAvailability{}, nil
	}
	booked, err := s.bookedLabels(ctx, date)
	if err != nil {
		return nil, err
	}
	slots := s.resolver.SlotsFor(date, booked)
	if !s.holdsEnabled() {
		return slots, nil
	}
	keys := make([]string, len(slots))
	for i, slot := range slots {
		keys[i] = HoldKey(date, slot.Time.Label())
	}
	holders, err := s.holds.Holders(ctx, keys)
	if err != nil {
		s.logger.Warn("hold lookup failed, showing slots without holds", "date", date.String(), "error", err)
		return slots, nil
	}
	held := make(schedule.LabelSet)
	for _, slot := range slots {
		label := slot.Time.Label()
		if token, ok := holders[HoldKey(date, label)]; ok && token != ownToken {
			held[label] = struct{}{}
		}
	}
	return schedule.MarkHeld(slots, held), nil
}

func parseSelection(rawDate, rawTime string) (schedule.Date, string, error) {
	date, err := schedule.ParseDate(rawDate)
	if err != nil {
		return schedule.Date{}, "", apperrors.Wrap(CodeValidation, "date must be formatted as YYYY-MM-DD", err)
	}
	slot, err := schedule.ParseSlotLabel(rawTime)
	if err != nil {
		return schedule.Date{}, "", apperrors.Wrap(CodeValidation, "time must look like 9:00 AM", err)
	}
	return date, slot.Label(), nil
}
