package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/roofbook/internal/domain/schedule"
)

// Sender sends reminders for confirmed appointments on one date.
type Sender interface {
	SendReminders(ctx context.Context, date schedule.Date) (int, error)
}

// Scheduler runs the day-before reminder job on a cron spec in the business timezone.
type Scheduler struct {
	cron    *cron.Cron
	sender  Sender
	today   func() schedule.Date
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler parses spec (standard five-field cron) and registers the job.
func NewScheduler(spec string, loc *time.Location, sender Sender, today func() schedule.Date, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		sender:  sender,
		today:   today,
		timeout: 2 * time.Minute,
		logger:  logger.With("component", "reminder.scheduler"),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the job in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "entries", len(s.cron.Entries()))
}

// Stop waits for a running job or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce sends reminders for tomorrow's appointments.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	date := s.today().AddDays(1)
	sent, err := s.sender.SendReminders(ctx, date)
	if err != nil {
		s.logger.Error("reminder run failed", "date", date.String(), "error", err)
		return sent
	}
	s.logger.Info("reminder run complete", "date", date.String(), "sent", sent)
	return sent
}
