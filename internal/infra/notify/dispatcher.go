package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/infra/queue"
)

const jobName = "booking.notify"

// Channel delivers a rendered message over one medium.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, msg booking.Message) error
}

// Dispatcher implements booking.Notifier by queueing messages; the queue worker
// fans each message out to the channels registered for its audience.
type Dispatcher struct {
	queue    queue.Queue
	channels map[booking.Audience][]Channel
	logger   *slog.Logger
}

// NewDispatcher wires the queue handler. customer and operations list the
// channels per audience; nil channels are skipped.
func NewDispatcher(q queue.Queue, customer, operations []Channel, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		queue: q,
		channels: map[booking.Audience][]Channel{
			booking.AudienceCustomer:   compact(customer),
			booking.AudienceOperations: compact(operations),
		},
		logger: logger.With("component", "notify.dispatcher"),
	}
	q.SetHandler(d.handle)
	return d
}

// Notify enqueues the message for background delivery.
func (d *Dispatcher) Notify(ctx context.Context, msg booking.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return d.queue.Enqueue(ctx, jobName, payload)
}

// Deliver sends the message on every channel of its audience and joins the failures.
func (d *Dispatcher) Deliver(ctx context.Context, msg booking.Message) error {
	var errs []error
	for _, ch := range d.channels[msg.Audience] {
		if err := ch.Deliver(ctx, msg); err != nil {
			d.logger.Warn("notification delivery failed",
				"channel", ch.Name(),
				"kind", msg.Kind,
				"confirmation", msg.Appointment.ConfirmationNumber,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		d.logger.Info("notification delivered", "channel", ch.Name(), "kind", msg.Kind, "confirmation", msg.Appointment.ConfirmationNumber)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) handle(ctx context.Context, name string, payload []byte) {
	if name != jobName {
		d.logger.Warn("unknown job ignored", "job", name)
		return
	}
	var msg booking.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		d.logger.Error("notification payload invalid", "error", err)
		return
	}
	_ = d.Deliver(ctx, msg)
}

// Close drains the queue and closes channels that hold connections.
func (d *Dispatcher) Close() error {
	d.queue.Close()
	var errs []error
	for _, channels := range d.channels {
		for _, ch := range channels {
			if closer, ok := ch.(io.Closer); ok {
				errs = append(errs, closer.Close())
			}
		}
	}
	return errors.Join(errs...)
}

func compact(channels []Channel) []Channel {
	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

var _ booking.Notifier = (*Dispatcher)(nil)
