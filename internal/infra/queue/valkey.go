package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyQueue persists jobs in a Valkey list and delivers them to a handler.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	logger      *slog.Logger
	pollTimeout time.Duration

	mu      sync.Mutex
	handler Handler
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, queueKey string, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "roofbook:notifications"
	}
	return &ValkeyQueue{
		client:      client,
		queueKey:    queueKey,
		logger:      logger.With("component", "queue.valkey"),
		pollTimeout: 5 * time.Second,
	}
}

// SetHandler starts the worker loop that pops jobs and invokes the handler.
func (q *ValkeyQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
	if handler == nil || q.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.done = make(chan struct{})
	go q.consume(ctx)
}

// Enqueue pushes a job onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, name string, payload []byte) error {
	traceparent, tracestate := traceStrings(ctx)
	encoded, err := json.Marshal(jobEnvelope{
		Name:        name,
		Payload:     payload,
		Traceparent: traceparent,
		Tracestate:  tracestate,
	})
	if err != nil {
		return err
	}
	cmd := q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()
	return q.client.Do(ctx, cmd).Error()
}

// Close stops the worker loop after the current pop returns.
func (q *ValkeyQueue) Close() {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.cancel = nil
	q.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (q *ValkeyQueue) consume(ctx context.Context) {
	defer close(q.done)
	for {
		if ctx.Err() != nil {
			return
		}
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if !valkey.IsValkeyNil(err) && ctx.Err() == nil {
				q.logger.Warn("valkey queue pop failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			q.logger.Warn("valkey queue payload decode failed", "error", err)
			continue
		}
		var job jobEnvelope
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			q.logger.Warn("valkey queue unmarshal failed", "error", err)
			continue
		}
		q.mu.Lock()
		handler := q.handler
		q.mu.Unlock()
		if handler == nil {
			continue
		}
		handler(withTrace(context.Background(), job.Traceparent, job.Tracestate), job.Name, job.Payload)
	}
}

var _ Queue = (*ValkeyQueue)(nil)
