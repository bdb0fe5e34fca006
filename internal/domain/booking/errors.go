package booking

import "errors"

// Error codes carried by AppError values returned from this package.
const (
	CodeDateUnavailable     = "date_unavailable"
	CodeSlotUnavailable     = "slot_unavailable"
	CodeTermsNotAccepted    = "terms_not_accepted"
	CodeValidation          = "validation_error"
	CodePersistenceFailure  = "persistence_failure"
	CodeNotificationFailure = "notification_failure"
	CodeNotFound            = "not_found"
	CodeInvalidTransition   = "invalid_transition"
	CodeHoldConflict        = "hold_conflict"
	CodeHoldsDisabled       = "holds_disabled"
)

var (
	// ErrDuplicateSlot indicates an active appointment already occupies the (date, time).
	ErrDuplicateSlot = errors.New("slot already booked")
	// ErrDuplicateConfirmation indicates a confirmation number collision.
	ErrDuplicateConfirmation = errors.New("confirmation number already exists")
	// ErrDayFull indicates the date reached its capacity at write time.
	ErrDayFull = errors.New("day is fully booked")
	// ErrNotFound is returned for unknown appointments and receipts.
	ErrNotFound = errors.New("not found")
	// ErrTerminalStatus is returned when updating a completed or cancelled appointment.
	ErrTerminalStatus = errors.New("appointment is in a terminal status")
)
