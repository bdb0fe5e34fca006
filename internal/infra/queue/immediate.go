package queue

import (
	"context"
	"sync"
)

// ImmediateQueue runs the handler in a goroutine on enqueue.
type ImmediateQueue struct {
	mu      sync.RWMutex
	handler Handler
	wg      sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue() *ImmediateQueue {
	return &ImmediateQueue{}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue invokes the handler asynchronously, detached from the caller's cancellation.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload []byte) error {
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return nil
	}
	detached := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		handler(detached, name, payload)
	}()
	return nil
}

// Close waits for in-flight jobs.
func (q *ImmediateQueue) Close() {
	q.wg.Wait()
}

var _ Queue = (*ImmediateQueue)(nil)
