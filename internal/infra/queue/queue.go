package queue

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Handler executes one delivered job.
type Handler func(ctx context.Context, name string, payload []byte)

// Queue accepts jobs and delivers them to the registered handler.
type Queue interface {
	Enqueue(ctx context.Context, name string, payload []byte) error
	SetHandler(handler Handler)
	Close()
}

type jobEnvelope struct {
	Name        string `json:"name"`
	Payload     []byte `json:"payload"`
	Traceparent string `json:"traceparent,omitempty"`
	Tracestate  string `json:"tracestate,omitempty"`
}

func traceStrings(ctx context.Context) (string, string) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier["traceparent"], carrier["tracestate"]
}

func withTrace(ctx context.Context, traceparent, tracestate string) context.Context {
	if traceparent == "" && tracestate == "" {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
		"traceparent": traceparent,
		"tracestate":  tracestate,
	})
}
