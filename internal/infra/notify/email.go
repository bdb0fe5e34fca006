package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends plain-text email via unauthenticated SMTP. When opsAddress is
// set, operations messages go there; customer messages go to the appointment's email.
type EmailChannel struct {
	addr       string
	from       string
	opsAddress string
	send       sendMailFunc
}

// NewEmailChannel returns nil when no SMTP host is configured.
func NewEmailChannel(host, port, from, opsAddress string) *EmailChannel {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil
	}
	port = strings.TrimSpace(port)
	if port == "" {
		port = "25"
	}
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@roofbook.local"
	}
	return &EmailChannel{
		addr:       fmt.Sprintf("%s:%s", host, port),
		from:       from,
		opsAddress: strings.TrimSpace(opsAddress),
		send:       smtp.SendMail,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(_ context.Context, msg booking.Message) error {
	to := msg.Appointment.CustomerEmail
	if msg.Audience == booking.AudienceOperations {
		to = c.opsAddress
	}
	if to == "" {
		return errors.New("email recipient missing")
	}
	return c.send(c.addr, nil, c.from, []string{to}, []byte(buildMessage(c.from, to, msg.Subject, msg.Body)))
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		sanitizeHeader(subject),
		body,
	)
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
