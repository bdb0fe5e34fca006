package lead

import (
	"errors"
	"time"
)

// ErrNotFound indicates an unknown lead id.
var ErrNotFound = errors.New("lead not found")

// Status tracks where a lead is in the funnel.
type Status string

const (
	StatusNew    Status = "new"
	StatusBooked Status = "booked"
	StatusPaid   Status = "paid"
)

// Lead is a satellite measurement request captured by the funnel.
type Lead struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PropertyAddress string    `json:"propertyAddress"`
	TotalSqft       float64   `json:"totalSqft"`
	Status          Status    `json:"status"`
	AppointmentID   string    `json:"appointmentId,omitempty"`
	PaymentRef      string    `json:"paymentRef,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateRequest captures the measurement form.
type CreateRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	PropertyAddress string  `json:"propertyAddress"`
	TotalSqft       float64 `json:"totalSqft"`
}
