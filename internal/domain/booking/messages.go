package booking

import (
	"fmt"
	"strings"
)

// Audience selects who a message is for.
type Audience string

const (
	AudienceCustomer   Audience = "customer"
	AudienceOperations Audience = "operations"
)

// MessageKind names the event behind a message.
type MessageKind string

const (
	KindConfirmation MessageKind = "confirmation"
	KindOpsAlert     MessageKind = "ops_alert"
	KindReminder     MessageKind = "reminder"
	KindCancellation MessageKind = "cancellation"
)

// Message is a rendered notification. Channels pick the recipient from the appointment.
type Message struct {
	Audience    Audience    `json:"audience"`
	Kind        MessageKind `json:"kind"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	Appointment Appointment `json:"appointment"`
}

// ConfirmationMessage tells the customer the inspection is booked.
func ConfirmationMessage(appt Appointment, estimate *Estimate) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, your roof inspection is confirmed for %s at %s.\n", firstName(appt.CustomerName), appt.Date, appt.Time)
	fmt.Fprintf(&b, "Address: %s\n", appt.PropertyAddress)
	fmt.Fprintf(&b, "Confirmation number: %s\n", appt.ConfirmationNumber)
	if estimate != nil {
		fmt.Fprintf(&b, "Estimated project range: $%d - $%d\n", estimate.Low, estimate.High)
	}
	return Message{
		Audience:    AudienceCustomer,
		Kind:        KindConfirmation,
		Subject:     "Inspection confirmed: " + appt.ConfirmationNumber,
		Body:        b.String(),
		Appointment: appt,
	}
}

// OperationsAlert tells the office a new inspection was booked.
func OperationsAlert(appt Appointment) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New inspection %s on %s at %s.\n", appt.ConfirmationNumber, appt.Date, appt.Time)
	fmt.Fprintf(&b, "Customer: %s <%s> %s\n", appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone)
	fmt.Fprintf(&b, "Address: %s\n", appt.PropertyAddress)
	if appt.SpecialRequests != "" {
		fmt.Fprintf(&b, "Requests: %s\n", appt.SpecialRequests)
	}
	return Message{
		Audience:    AudienceOperations,
		Kind:        KindOpsAlert,
		Subject:     fmt.Sprintf("New booking %s %s", appt.Date, appt.Time),
		Body:        b.String(),
		Appointment: appt,
	}
}

// ReminderMessage reminds the customer of an upcoming inspection.
func ReminderMessage(appt Appointment) Message {
	return Message{
		Audience: AudienceCustomer,
		Kind:     KindReminder,
		Subject:  "Reminder: roof inspection " + appt.Date.String(),
		Body: fmt.Sprintf("Hi %s, a reminder that your roof inspection is on %s at %s (%s).\n",
			firstName(appt.CustomerName), appt.Date, appt.Time, appt.ConfirmationNumber),
		Appointment: appt,
	}
}

// CancellationMessage tells the customer the inspection was cancelled.
func CancellationMessage(appt Appointment) Message {
	return Message{
		Audience: AudienceCustomer,
		Kind:     KindCancellation,
		Subject:  "Inspection cancelled: " + appt.ConfirmationNumber,
		Body: fmt.Sprintf("Hi %s, your roof inspection on %s at %s has been cancelled.\n",
			firstName(appt.CustomerName), appt.Date, appt.Time),
		Appointment: appt,
	}
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
