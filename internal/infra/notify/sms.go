package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSChannel texts customers through Twilio.
type SMSChannel struct {
	api  messageCreator
	from string
}

// NewSMSChannel returns nil when Twilio credentials are missing.
func NewSMSChannel(accountSID, authToken, from string) *SMSChannel {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" || strings.TrimSpace(from) == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSChannel{api: client.Api, from: from}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Deliver(_ context.Context, msg booking.Message) error {
	to := strings.TrimSpace(msg.Appointment.CustomerPhone)
	if to == "" {
		return errors.New("sms recipient missing")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(smsBody(msg))
	_, err := c.api.CreateMessage(params)
	return err
}

// smsBody keeps texts to the first line plus the confirmation number.
func smsBody(msg booking.Message) string {
	first, _, _ := strings.Cut(msg.Body, "\n")
	if n := msg.Appointment.ConfirmationNumber; n != "" && !strings.Contains(first, n) {
		first += " Ref " + n
	}
	return first
}
