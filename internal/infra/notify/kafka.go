package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaChannel publishes operations messages as booking events.
type KafkaChannel struct {
	writer messageWriter
	topic  string
}

type bookingEvent struct {
	EventType   string              `json:"eventType"`
	Kind        booking.MessageKind `json:"kind"`
	Appointment booking.Appointment `json:"appointment"`
	OccurredAt  time.Time           `json:"occurredAt"`
}

// NewKafkaChannel returns nil when no brokers are configured.
func NewKafkaChannel(brokers, topic string) *KafkaChannel {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		return nil
	}
	if topic == "" {
		topic = "booking.appointment.confirmed.v1"
	}
	return &KafkaChannel{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(list...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}
}

func (c *KafkaChannel) Name() string { return "kafka" }

func (c *KafkaChannel) Deliver(ctx context.Context, msg booking.Message) error {
	eventType := c.topic
	if msg.Kind != booking.KindOpsAlert {
		eventType = "booking.appointment." + string(msg.Kind)
	}
	value, err := json.Marshal(bookingEvent{
		EventType:   eventType,
		Kind:        msg.Kind,
		Appointment: msg.Appointment,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	out := kafka.Message{
		Topic: c.topic,
		Key:   []byte(msg.Appointment.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(msg.Appointment.ConfirmationNumber + ":" + string(msg.Kind))},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	out.Headers = injectTraceHeaders(ctx, out.Headers)
	return c.writer.WriteMessages(ctx, out)
}

// Close flushes the writer.
func (c *KafkaChannel) Close() error {
	return c.writer.Close()
}

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
