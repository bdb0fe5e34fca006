package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImmediateQueue_DeliversDetachedFromCaller(t *testing.T) {
	q := NewImmediateQueue()
	var (
		mu   sync.Mutex
		got  []string
		errs []error
	)
	q.SetHandler(func(ctx context.Context, name string, payload []byte) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, name+":"+string(payload))
		errs = append(errs, ctx.Err())
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(ctx, "notify", []byte("a")))
	cancel()
	require.NoError(t, q.Enqueue(context.Background(), "notify", []byte("b")))
	q.Close()

	require.ElementsMatch(t, []string{"notify:a", "notify:b"}, got)
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestImmediateQueue_NoHandlerDropsJob(t *testing.T) {
	q := NewImmediateQueue()
	require.NoError(t, q.Enqueue(context.Background(), "notify", nil))
	q.Close()
}
