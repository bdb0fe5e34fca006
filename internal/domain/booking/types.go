package booking

import (
	"time"

	"github.com/yanqian/roofbook/internal/domain/schedule"
)

// Config drives booking behavior.
type Config struct {
	DurationMinutes    int
	UnitRate           float64
	MaxSpecialRequests int
	HoldTTL            time.Duration
}

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses block a slot and count toward daily capacity.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// Active reports whether the status occupies its slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s.Active() || s.Terminal()
}

// Appointment is the persisted booking.
type Appointment struct {
	ID                 string        `json:"id"`
	MeasurementID      string        `json:"measurementId,omitempty"`
	CustomerName       string        `json:"customerName"`
	CustomerEmail      string        `json:"customerEmail"`
	CustomerPhone      string        `json:"customerPhone"`
	PropertyAddress    string        `json:"propertyAddress"`
	Date               schedule.Date `json:"date"`
	Time               string        `json:"time"`
	DurationMinutes    int           `json:"durationMinutes"`
	Status             Status        `json:"status"`
	ConfirmationNumber string        `json:"confirmationNumber"`
	SpecialRequests    string        `json:"specialRequests,omitempty"`
	SendReminders      bool          `json:"sendReminders"`
	TermsAccepted      bool          `json:"termsAccepted"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Customer groups the contact fields.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Details is everything collected from the customer besides date and time.
type Details struct {
	MeasurementID   string
	Customer        Customer
	PropertyAddress string
	RoofAreaSqft    float64
	SpecialRequests string
	SendReminders   bool
	TermsAccepted   bool
	HoldToken       string
}

// BookingRequest is the attemptBooking input as received from a client.
type BookingRequest struct {
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	MeasurementID   string  `json:"measurementId"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	PropertyAddress string  `json:"propertyAddress"`
	RoofAreaSqft    float64 `json:"roofAreaSqft"`
	SpecialRequests string  `json:"specialRequests"`
	SendReminders   bool    `json:"sendReminders"`
	TermsAccepted   bool    `json:"termsAccepted"`
	HoldToken       string  `json:"holdToken"`
	IdempotencyKey  string  `json:"-"`
}

func (r BookingRequest) details() Details {
	return Details{
		MeasurementID: r.MeasurementID,
		Customer: Customer{
			Name:  r.Name,
			Email: r.Email,
			Phone: r.Phone,
		},
		PropertyAddress: r.PropertyAddress,
		RoofAreaSqft:    r.RoofAreaSqft,
		SpecialRequests: r.SpecialRequests,
		SendReminders:   r.SendReminders,
		TermsAccepted:   r.TermsAccepted,
		HoldToken:       r.HoldToken,
	}
}

// Estimate is the advisory cost range shown during review.
type Estimate struct {
	AreaSqft float64 `json:"areaSqft"`
	Low      int64   `json:"low"`
	High     int64   `json:"high"`
}

// Summary is the immutable review shown before commit.
type Summary struct {
	Date            schedule.Date `json:"date"`
	Time            string        `json:"time"`
	DurationMinutes int           `json:"durationMinutes"`
	Address         string        `json:"address"`
	Contact         Customer      `json:"contact"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	SendReminders   bool          `json:"sendReminders"`
	Estimate        *Estimate     `json:"estimate,omitempty"`
}

// Confirmation is returned by a successful booking.
type Confirmation struct {
	AppointmentID      string        `json:"appointmentId"`
	ConfirmationNumber string        `json:"confirmationNumber"`
	Date               schedule.Date `json:"date"`
	Time               string        `json:"time"`
}

// Filter narrows appointment listings. A zero Date matches every date and an
// empty StatusIn matches every status.
type Filter struct {
	Date     schedule.Date
	StatusIn []Status
}

// Matches applies the filter to one appointment.
func (f Filter) Matches(appt Appointment) bool {
	if !f.Date.IsZero() && appt.Date != f.Date {
		return false
	}
	if len(f.StatusIn) == 0 {
		return true
	}
	for _, status := range f.StatusIn {
		if appt.Status == status {
			return true
		}
	}
	return false
}

// LeadRecord is the read-only view of an upstream measurement lead.
type LeadRecord struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	PropertyAddress string
	TotalSqft       float64
}

// Hold is a short-lived soft reservation of one slot.
type Hold struct {
	Token     string        `json:"token"`
	Date      schedule.Date `json:"date"`
	Time      string        `json:"time"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// HoldRequest asks for a soft hold. An empty token requests a new one.
type HoldRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Token string `json:"token"`
}

// Receipt is the archived confirmation document.
type Receipt struct {
	ConfirmationNumber string        `json:"confirmationNumber"`
	AppointmentID      string        `json:"appointmentId"`
	Date               schedule.Date `json:"date"`
	Time               string        `json:"time"`
	DurationMinutes    int           `json:"durationMinutes"`
	CustomerName       string        `json:"customerName"`
	PropertyAddress    string        `json:"propertyAddress"`
	Estimate           *Estimate     `json:"estimate,omitempty"`
	IssuedAt           time.Time     `json:"issuedAt"`
}
