package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/roofbook/internal/domain/schedule"
)

type stubSender struct {
	dates []schedule.Date
	err   error
}

func (s *stubSender) SendReminders(_ context.Context, date schedule.Date) (int, error) {
	s.dates = append(s.dates, date)
	return 3, s.err
}

func TestScheduler_RunOnceTargetsTomorrow(t *testing.T) {
	sender := &stubSender{}
	today := func() schedule.Date { return schedule.NewDate(2026, 12, 31) }
	s, err := NewScheduler("0 9 * * *", time.UTC, sender, today, newTestLogger())
	require.NoError(t, err)

	require.Equal(t, 3, s.RunOnce(context.Background()))
	require.Equal(t, []schedule.Date{schedule.NewDate(2027, 1, 1)}, sender.dates)

	sender.err = errors.New("db down")
	s.RunOnce(context.Background())
	require.Len(t, sender.dates, 2)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every morning", time.UTC, &stubSender{}, nil, newTestLogger())
	require.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler("@daily", nil, &stubSender{}, func() schedule.Date { return schedule.NewDate(2026, 10, 15) }, newTestLogger())
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
