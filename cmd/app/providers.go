package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/roofbook/internal/bootstrap"
	"github.com/yanqian/roofbook/internal/domain/auth"
	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/lead"
	"github.com/yanqian/roofbook/internal/domain/payment"
	"github.com/yanqian/roofbook/internal/domain/schedule"
	"github.com/yanqian/roofbook/internal/infra/appointmentrepo"
	"github.com/yanqian/roofbook/internal/infra/config"
	"github.com/yanqian/roofbook/internal/infra/holdstore"
	"github.com/yanqian/roofbook/internal/infra/leadrepo"
	"github.com/yanqian/roofbook/internal/infra/notify"
	"github.com/yanqian/roofbook/internal/infra/paymentrepo"
	"github.com/yanqian/roofbook/internal/infra/postgres"
	"github.com/yanqian/roofbook/internal/infra/queue"
	"github.com/yanqian/roofbook/internal/infra/receipts"
	"github.com/yanqian/roofbook/internal/infra/reminder"
	"github.com/yanqian/roofbook/internal/infra/staffrepo"
	"github.com/yanqian/roofbook/internal/infra/stripepay"
	"github.com/yanqian/roofbook/internal/infra/telemetry"
)

func provideTelemetry(cfg *config.Config, logger *slog.Logger) (telemetry.Shutdown, error) {
	shutdown, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	if cfg.Telemetry.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Telemetry.OTLPEndpoint, "sample_ratio", cfg.Telemetry.SampleRatio)
	}
	return shutdown, nil
}

func provideWeeklyHours(cfg *config.Config) (schedule.WeeklyHours, error) {
	if len(cfg.Schedule.Hours) == 0 {
		return schedule.DefaultWeeklyHours(), nil
	}
	var week schedule.WeeklyHours
	for day, key := range config.Weekdays {
		entry, ok := cfg.Schedule.Hours[key]
		if !ok || !entry.Open {
			week[day] = schedule.Closed()
			continue
		}
		start, err := schedule.ParseTimeOfDay(entry.Start)
		if err != nil {
			return schedule.WeeklyHours{}, fmt.Errorf("schedule.hours.%s.start: %w", key, err)
		}
		end, err := schedule.ParseTimeOfDay(entry.End)
		if err != nil {
			return schedule.WeeklyHours{}, fmt.Errorf("schedule.hours.%s.end: %w", key, err)
		}
		week[day] = schedule.OpenBetween(start, end)
	}
	if err := week.Validate(cfg.Schedule.StepMinutes); err != nil {
		return schedule.WeeklyHours{}, err
	}
	return week, nil
}

func provideResolver(cfg *config.Config, week schedule.WeeklyHours) (*schedule.Resolver, error) {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return schedule.NewResolver(week, schedule.Config{
		Location:         loc,
		StepMinutes:      cfg.Schedule.StepMinutes,
		MaxPerDay:        cfg.Schedule.MaxPerDay,
		LimitedThreshold: cfg.Schedule.LimitedThreshold,
	}), nil
}

func provideBookingConfig(cfg *config.Config) booking.Config {
	return booking.Config{
		DurationMinutes:    cfg.Booking.DurationMinutes,
		UnitRate:           cfg.Booking.UnitRate,
		MaxSpecialRequests: cfg.Booking.MaxSpecialRequests,
		HoldTTL:            cfg.Booking.HoldTTL,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

// providePostgres returns nil when postgres is not configured or unreachable;
// repositories then fall back to memory.
func providePostgres(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	pool, err := postgres.Open(context.Background(), cfg.Postgres)
	if err != nil {
		if errors.Is(err, postgres.ErrNotConfigured) {
			logger.Info("postgres dsn not set, using memory repositories")
		} else {
			logger.Error("postgres unavailable, using memory repositories", "error", err)
		}
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

// provideValkey returns nil when valkey is disabled or unreachable.
func provideValkey(cfg *config.Config, logger *slog.Logger) valkey.Client {
	if !cfg.Valkey.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey enabled", "addr", cfg.Valkey.Addr)
	return client
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideAppointmentRepository(pool *pgxpool.Pool) booking.Repository {
	if pool == nil {
		return appointmentrepo.NewMemoryRepository()
	}
	return appointmentrepo.NewPostgresRepository(pool)
}

func provideLeadRepository(pool *pgxpool.Pool) lead.Repository {
	if pool == nil {
		return leadrepo.NewMemoryRepository()
	}
	return leadrepo.NewPostgresRepository(pool)
}

func providePaymentRepository(pool *pgxpool.Pool) payment.Repository {
	if pool == nil {
		return paymentrepo.NewMemoryRepository()
	}
	return paymentrepo.NewPostgresRepository(pool)
}

func provideStaffRepository(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (auth.Repository, error) {
	var repo auth.Repository = staffrepo.NewMemoryRepository()
	if pool != nil {
		repo = staffrepo.NewPostgresRepository(pool)
	}
	added, err := staffrepo.Seed(context.Background(), repo, cfg.Auth.Staff)
	if err != nil {
		return nil, fmt.Errorf("seed staff: %w", err)
	}
	if added > 0 {
		logger.Info("staff accounts seeded", "count", added)
	}
	return repo, nil
}

func provideHoldStore(cfg *config.Config, client valkey.Client) booking.HoldStore {
	if client == nil {
		return holdstore.NewMemoryStore()
	}
	return holdstore.NewValkeyStore(client, cfg.Valkey.KeyPrefix)
}

func provideQueue(cfg *config.Config, client valkey.Client, logger *slog.Logger) queue.Queue {
	if client == nil {
		return queue.NewImmediateQueue()
	}
	return queue.NewValkeyQueue(client, cfg.Notify.QueueKey, logger)
}

func provideDispatcher(cfg *config.Config, q queue.Queue, logger *slog.Logger) *notify.Dispatcher {
	var customer, operations []notify.Channel
	smtp := cfg.Notify.SMTP
	if email := notify.NewEmailChannel(smtp.Host, smtp.Port, smtp.From, smtp.OpsAddress); email != nil {
		customer = append(customer, email)
		if smtp.OpsAddress != "" {
			operations = append(operations, email)
		}
	}
	tw := cfg.Notify.Twilio
	if sms := notify.NewSMSChannel(tw.AccountSID, tw.AuthToken, tw.FromNumber); sms != nil {
		customer = append(customer, sms)
	}
	if stream := notify.NewKafkaChannel(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic); stream != nil {
		operations = append(operations, stream)
	}
	if len(customer) == 0 && len(operations) == 0 {
		logger.Warn("no notification channels configured; messages will only be logged")
	}
	return notify.NewDispatcher(q, customer, operations, logger)
}

func provideReceiptStore(cfg *config.Config, logger *slog.Logger) booking.ReceiptStore {
	r := cfg.Receipts
	if strings.TrimSpace(r.Endpoint) == "" {
		return receipts.NewMemoryStore()
	}
	store, err := receipts.NewObjectStore(r.Endpoint, r.AccessKey, r.SecretKey, r.Bucket, r.Region, logger)
	if err != nil {
		logger.Error("receipt storage unavailable, using memory", "error", err)
		return receipts.NewMemoryStore()
	}
	return store
}

func provideBookingLeads(repo lead.Repository) booking.LeadStore {
	return lead.NewBookingLeads(repo)
}

func provideBookingService(
	cfg booking.Config,
	resolver *schedule.Resolver,
	repo booking.Repository,
	notifier booking.Notifier,
	leads booking.LeadStore,
	holds booking.HoldStore,
	store booking.ReceiptStore,
	logger *slog.Logger,
) booking.Service {
	return booking.NewService(cfg, resolver, repo, notifier, leads, holds, store, logger)
}

func providePaymentService(cfg *config.Config, repo payment.Repository, leads lead.Repository, logger *slog.Logger) payment.Service {
	var parser payment.EventParser
	if p := stripepay.NewParser(cfg.Payments.StripeWebhookSecret, cfg.Payments.Tolerance); p != nil {
		parser = p
	}
	return payment.NewService(parser, repo, leads, logger)
}

func provideReminderScheduler(cfg *config.Config, resolver *schedule.Resolver, ops booking.Operations, logger *slog.Logger) (*reminder.Scheduler, error) {
	if !cfg.Reminders.Enabled {
		return nil, nil
	}
	return reminder.NewScheduler(cfg.Reminders.Spec, resolver.Location(), ops, resolver.Today, logger)
}

func provideCleanup(pool *pgxpool.Pool, client valkey.Client, dispatcher *notify.Dispatcher, shutdown telemetry.Shutdown, logger *slog.Logger) bootstrap.Cleanup {
	return func(ctx context.Context) {
		if err := dispatcher.Close(); err != nil {
			logger.Warn("notification channels close failed", "error", err)
		}
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
		if client != nil {
			client.Close()
		}
		if pool != nil {
			pool.Close()
		}
	}
}
