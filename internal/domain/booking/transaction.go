package booking

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/yanqian/roofbook/internal/domain/schedule"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// State is a step of a single booking attempt.
type State string

const (
	StateStart         State = "start"
	StateSelecting     State = "selecting"
	StateSlotChosen    State = "slot_chosen"
	StateReviewPending State = "review_pending"
	StateCommitting    State = "committing"
	StateCommitted     State = "committed"
	StateFailed        State = "failed"
)

// Transaction is one booking attempt as an immutable value. Every transition
// returns a new value; the receiver is never modified.
type Transaction struct {
	state   State
	day     schedule.DayAvailability
	slots   []schedule.SlotAvailability
	slot    string
	details Details
	summary *Summary
	appt    *Appointment
	err     error
}

// Begin starts an attempt with nothing selected.
func Begin() Transaction {
	return Transaction{state: StateStart}
}

func (t Transaction) State() State { return t.state }
func (t Transaction) Date() schedule.Date { return t.day.Date }
func (t Transaction) Day() schedule.DayAvailability { return t.day }
func (t Transaction) Slots() []schedule.SlotAvailability { return t.slots }
func (t Transaction) Slot() string { return t.slot }
func (t Transaction) Details() Details { return t.details }
func (t Transaction) Err() error { return t.err }

// Summary returns the review summary once Review succeeded.
func (t Transaction) Summary() (Summary, bool) {
	if t.summary == nil {
		return Summary{}, false
	}
	return *t.summary, true
}

// Appointment returns the committed appointment.
func (t Transaction) Appointment() (Appointment, bool) {
	if t.appt == nil {
		return Appointment{}, false
	}
	return *t.appt, true
}

// Confirmation is available once committed.
func (t Transaction) Confirmation() (Confirmation, bool) {
	if t.state != StateCommitted || t.appt == nil {
		return Confirmation{}, false
	}
	return Confirmation{
		AppointmentID:      t.appt.ID,
		ConfirmationNumber: t.appt.ConfirmationNumber,
		Date:               t.appt.Date,
		Time:               t.appt.Time,
	}, true
}

// SelectDate moves to Selecting when the day is bookable. Any earlier choice is dropped.
func (t Transaction) SelectDate(day schedule.DayAvailability) (Transaction, error) {
	if err := t.expect("select date", StateStart, StateSelecting, StateSlotChosen, StateReviewPending, StateFailed); err != nil {
		return t, err
	}
	if !day.IsBookable {
		return t, apperrors.Wrap(CodeDateUnavailable, fmt.Sprintf("%s is not available for booking", day.Date), nil)
	}
	return Transaction{
		state:   StateSelecting,
		day:     day,
		details: t.details,
	}, nil
}

// WithSlots attaches the availability snapshot for the selected date.
func (t Transaction) WithSlots(slots []schedule.SlotAvailability) (Transaction, error) {
	if err := t.expect("load slots", StateSelecting); err != nil {
		return t, err
	}
	next := t
	next.slots = append([]schedule.SlotAvailability(nil), slots...)
	return next, nil
}

// SelectSlot picks a time from the last snapshot.
func (t Transaction) SelectSlot(label string) (Transaction, error) {
	if err := t.expect("select slot", StateSelecting, StateSlotChosen, StateReviewPending, StateFailed); err != nil {
		return t, err
	}
	slot, err := schedule.ParseSlotLabel(label)
	if err != nil {
		return t, apperrors.Wrap(CodeValidation, "time must look like 9:00 AM", err)
	}
	label = slot.Label()
	found := false
	for _, candidate := range t.slots {
		if candidate.Time.Label() != label {
			continue
		}
		found = true
		if !candidate.Available() {
			return t, apperrors.Wrap(CodeSlotUnavailable, label+" is no longer available", nil)
		}
	}
	if !found {
		return t, apperrors.Wrap(CodeSlotUnavailable, label+" is not offered on "+t.day.Date.String(), nil)
	}
	next := t
	next.state = StateSlotChosen
	next.slot = label
	next.summary = nil
	next.err = nil
	return next, nil
}

// Review validates the customer details and freezes the summary.
func (t Transaction) Review(details Details, cfg Config) (Transaction, error) {
	if err := t.expect("review", StateSlotChosen, StateReviewPending, StateFailed); err != nil {
		return t, err
	}
	if t.slot == "" {
		return t, apperrors.Wrap(CodeInvalidTransition, "no slot selected", nil)
	}
	if !details.TermsAccepted {
		return t, apperrors.Wrap(CodeTermsNotAccepted, "terms and conditions must be accepted", nil)
	}
	normalized, err := normalizeDetails(details, cfg.MaxSpecialRequests)
	if err != nil {
		return t, apperrors.Wrap(CodeValidation, err.Error(), nil)
	}
	summary := Summary{
		Date:            t.day.Date,
		Time:            t.slot,
		DurationMinutes: cfg.DurationMinutes,
		Address:         normalized.PropertyAddress,
		Contact:         normalized.Customer,
		SpecialRequests: normalized.SpecialRequests,
		SendReminders:   normalized.SendReminders,
		Estimate:        EstimateCost(normalized.RoofAreaSqft, cfg.UnitRate),
	}
	next := t
	next.state = StateReviewPending
	next.details = normalized
	next.summary = &summary
	next.err = nil
	return next, nil
}

// BeginCommit enters Committing. A Failed attempt with a summary may commit again.
func (t Transaction) BeginCommit() (Transaction, error) {
	if err := t.expect("commit", StateReviewPending, StateFailed); err != nil {
		return t, err
	}
	if t.summary == nil {
		return t, apperrors.Wrap(CodeInvalidTransition, "booking has not been reviewed", nil)
	}
	next := t
	next.state = StateCommitting
	next.err = nil
	return next, nil
}

// Succeed records the persisted appointment.
func (t Transaction) Succeed(appt Appointment) (Transaction, error) {
	if err := t.expect("complete commit", StateCommitting); err != nil {
		return t, err
	}
	next := t
	next.state = StateCommitted
	next.appt = &appt
	return next, nil
}

// Fail records a commit failure. A lost slot returns to slot selection, a lost
// date returns to the start, anything else leaves the attempt Failed and retryable.
func (t Transaction) Fail(err error) Transaction {
	if t.state != StateCommitting {
		return t
	}
	next := t
	next.err = err
	switch apperrors.CodeOf(err) {
	case CodeSlotUnavailable, CodeHoldConflict:
		next.state = StateSelecting
		next.slot = ""
		next.summary = nil
		next.slots = nil
	case CodeDateUnavailable:
		next.state = StateStart
		next.day = schedule.DayAvailability{}
		next.slot = ""
		next.summary = nil
		next.slots = nil
	default:
		next.state = StateFailed
	}
	return next
}

func (t Transaction) expect(action string, allowed ...State) error {
	current := State(t.stateName())
	for _, state := range allowed {
		if current == state {
			return nil
		}
	}
	return apperrors.Wrap(CodeInvalidTransition, fmt.Sprintf("cannot %s while %s", action, t.stateName()), nil)
}

func (t Transaction) stateName() string {
	if t.state == "" {
		return string(StateStart)
	}
	return string(t.state)
}

func normalizeDetails(d Details, maxSpecial int) (Details, error) {
	d.Customer.Name = strings.TrimSpace(d.Customer.Name)
	d.Customer.Email = strings.ToLower(strings.TrimSpace(d.Customer.Email))
	d.Customer.Phone = strings.TrimSpace(d.Customer.Phone)
	d.PropertyAddress = strings.TrimSpace(d.PropertyAddress)
	d.SpecialRequests = strings.TrimSpace(d.SpecialRequests)

	switch {
	case d.Customer.Name == "":
		return d, fmt.Errorf("name is required")
	case d.Customer.Email == "":
		return d, fmt.Errorf("email is required")
	case d.Customer.Phone == "":
		return d, fmt.Errorf("phone is required")
	case d.PropertyAddress == "":
		return d, fmt.Errorf("property address is required")
	}
	if addr, err := mail.ParseAddress(d.Customer.Email); err != nil || addr.Address != d.Customer.Email {
		return d, fmt.Errorf("email address is invalid")
	}
	if countDigits(d.Customer.Phone) < 7 {
		return d, fmt.Errorf("phone number is invalid")
	}
	if maxSpecial > 0 && len([]rune(d.SpecialRequests)) > maxSpecial {
		return d, fmt.Errorf("special requests cannot exceed %d characters", maxSpecial)
	}
	if d.RoofAreaSqft < 0 {
		return d, fmt.Errorf("roof area cannot be negative")
	}
	return d, nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
