package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/schedule"
	"github.com/yanqian/roofbook/internal/infra/queue"
)

func sampleAppointment() booking.Appointment {
	return booking.Appointment{
		ID:                 "4f7f3c1e-0000-4000-8000-000000000001",
		CustomerName:       "Dana Smith",
		CustomerEmail:      "dana@example.com",
		CustomerPhone:      "+15125550100",
		PropertyAddress:    "12 Oak St",
		Date:               schedule.NewDate(2026, 10, 19),
		Time:               "9:00 AM",
		Status:             booking.StatusConfirmed,
		ConfirmationNumber: "RR-ABC-123456",
	}
}

type recordingChannel struct {
	name string
	err  error

	mu   sync.Mutex
	msgs []booking.Message
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Deliver(_ context.Context, msg booking.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestDispatcher_RoutesByAudience(t *testing.T) {
	q := queue.NewImmediateQueue()
	email := &recordingChannel{name: "email"}
	sms := &recordingChannel{name: "sms", err: errors.New("carrier down")}
	ops := &recordingChannel{name: "kafka"}
	d := NewDispatcher(q, []Channel{email, sms, nil}, []Channel{ops}, newTestLogger())

	appt := sampleAppointment()
	require.NoError(t, d.Notify(context.Background(), booking.ConfirmationMessage(appt, nil)))
	require.NoError(t, d.Notify(context.Background(), booking.OperationsAlert(appt)))
	q.Close()

	require.Len(t, email.msgs, 1)
	require.Len(t, sms.msgs, 1)
	require.Len(t, ops.msgs, 1)
	require.Equal(t, booking.KindConfirmation, email.msgs[0].Kind)
	require.Equal(t, appt.ConfirmationNumber, email.msgs[0].Appointment.ConfirmationNumber)
	require.Equal(t, booking.KindOpsAlert, ops.msgs[0].Kind)

	err := d.Deliver(context.Background(), booking.ConfirmationMessage(appt, nil))
	require.ErrorContains(t, err, "carrier down")
}

func TestEmailChannel_PicksRecipient(t *testing.T) {
	require.Nil(t, NewEmailChannel("", "25", "", ""))

	ch := NewEmailChannel("mail.local", "", "", "office@roofbook.test")
	var sent []string
	var bodies []string
	ch.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		require.Equal(t, "mail.local:25", addr)
		require.Equal(t, "no-reply@roofbook.local", from)
		sent = append(sent, to...)
		bodies = append(bodies, string(msg))
		return nil
	}

	appt := sampleAppointment()
	require.NoError(t, ch.Deliver(context.Background(), booking.ConfirmationMessage(appt, nil)))
	require.NoError(t, ch.Deliver(context.Background(), booking.OperationsAlert(appt)))
	require.Equal(t, []string{"dana@example.com", "office@roofbook.test"}, sent)
	require.Contains(t, bodies[0], "Subject: Inspection confirmed: RR-ABC-123456")

	appt.CustomerEmail = ""
	require.Error(t, ch.Deliver(context.Background(), booking.ConfirmationMessage(appt, nil)))
}

type stubTwilio struct {
	params []*twilioApi.CreateMessageParams
}

func (s *stubTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	s.params = append(s.params, params)
	return &twilioApi.ApiV2010Message{}, nil
}

func TestSMSChannel_SendsFirstLine(t *testing.T) {
	require.Nil(t, NewSMSChannel("", "token", "+15125550000"))

	api := &stubTwilio{}
	ch := &SMSChannel{api: api, from: "+15125550000"}
	appt := sampleAppointment()
	require.NoError(t, ch.Deliver(context.Background(), booking.ConfirmationMessage(appt, nil)))

	require.Len(t, api.params, 1)
	require.Equal(t, "+15125550100", *api.params[0].To)
	require.Equal(t, "+15125550000", *api.params[0].From)
	require.Contains(t, *api.params[0].Body, "confirmed for 2026-10-19 at 9:00 AM")
	require.Contains(t, *api.params[0].Body, "RR-ABC-123456")
}

type stubWriter struct {
	msgs []kafka.Message
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func TestKafkaChannel_PublishesBookingEvent(t *testing.T) {
	require.Nil(t, NewKafkaChannel(" , ", "topic"))
	require.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers("a:9092, b:9092,"))

	w := &stubWriter{}
	ch := &KafkaChannel{writer: w, topic: "booking.appointment.confirmed.v1"}
	appt := sampleAppointment()
	require.NoError(t, ch.Deliver(context.Background(), booking.OperationsAlert(appt)))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	require.Equal(t, "booking.appointment.confirmed.v1", msg.Topic)
	require.Equal(t, appt.ID, string(msg.Key))

	carrier := &headerCarrier{headers: msg.Headers}
	require.Equal(t, "booking.appointment.confirmed.v1", carrier.Get("event_type"))
	require.Equal(t, "RR-ABC-123456:ops_alert", carrier.Get("event_id"))

	var evt bookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	require.Equal(t, appt.ConfirmationNumber, evt.Appointment.ConfirmationNumber)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
