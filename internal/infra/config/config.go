package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weekdays lists the keys accepted under schedule.hours, indexed like time.Weekday.
var Weekdays = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Booking   BookingConfig   `yaml:"booking"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Valkey    ValkeyConfig    `yaml:"valkey"`
	Auth      AuthConfig      `yaml:"auth"`
	Notify    NotifyConfig    `yaml:"notify"`
	Receipts  ReceiptsConfig  `yaml:"receipts"`
	Reminders RemindersConfig `yaml:"reminders"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for transient server failures.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LogConfig selects level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ScheduleConfig is the business calendar policy plus capacity knobs.
type ScheduleConfig struct {
	Timezone         string                    `yaml:"timezone"`
	StepMinutes      int                       `yaml:"stepMinutes"`
	MaxPerDay        int                       `yaml:"maxPerDay"`
	LimitedThreshold int                       `yaml:"limitedThreshold"`
	Hours            map[string]DayHoursConfig `yaml:"hours"`
}

// DayHoursConfig describes one weekday. Start and End use 24h "HH:MM".
type DayHoursConfig struct {
	Open  bool   `yaml:"open"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// BookingConfig tunes the booking transaction.
type BookingConfig struct {
	DurationMinutes    int           `yaml:"durationMinutes"`
	UnitRate           float64       `yaml:"unitRate"`
	MaxSpecialRequests int           `yaml:"maxSpecialRequests"`
	HoldTTL            time.Duration `yaml:"holdTtl"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for holds and the job queue.
type ValkeyConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// AuthConfig drives staff authentication.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
	Staff           []StaffConfig `yaml:"staff"`
}

// StaffConfig seeds one operations account. PasswordHash is a bcrypt hash.
type StaffConfig struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"passwordHash"`
}

// NotifyConfig groups the outbound channels.
type NotifyConfig struct {
	QueueKey string       `yaml:"queueKey"`
	SMTP     SMTPConfig   `yaml:"smtp"`
	Twilio   TwilioConfig `yaml:"twilio"`
	Kafka    KafkaConfig  `yaml:"kafka"`
}

// SMTPConfig configures the email channel. OpsAddress receives internal alerts.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	From       string `yaml:"from"`
	OpsAddress string `yaml:"opsAddress"`
}

// TwilioConfig configures the SMS channel.
type TwilioConfig struct {
	AccountSID string `yaml:"accountSid"`
	AuthToken  string `yaml:"authToken"`
	FromNumber string `yaml:"fromNumber"`
}

// KafkaConfig configures the operations event stream.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

// ReceiptsConfig points at S3-compatible storage for confirmation receipts.
type ReceiptsConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// RemindersConfig schedules the day-before reminder job.
type RemindersConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// PaymentsConfig holds the payment processor webhook settings.
type PaymentsConfig struct {
	StripeWebhookSecret string        `yaml:"stripeWebhookSecret"`
	Tolerance           time.Duration `yaml:"tolerance"`
}

// TelemetryConfig controls OpenTelemetry tracing export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SCHEDULE_TIMEZONE"); v != "" {
		cfg.Schedule.Timezone = v
	}
	if v := os.Getenv("SCHEDULE_MAX_PER_DAY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.MaxPerDay = parsed
		}
	}
	if v := os.Getenv("BOOKING_UNIT_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Booking.UnitRate = parsed
		}
	}
	if v := os.Getenv("BOOKING_HOLD_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Booking.HoldTTL = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Notify.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		cfg.Notify.SMTP.Port = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Notify.SMTP.From = v
	}
	if v := os.Getenv("OPS_EMAIL"); v != "" {
		cfg.Notify.SMTP.OpsAddress = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Notify.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Notify.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.Notify.Twilio.FromNumber = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Notify.Kafka.Brokers = v
	}
	if v := os.Getenv("RECEIPTS_ENDPOINT"); v != "" {
		cfg.Receipts.Endpoint = v
	}
	if v := os.Getenv("RECEIPTS_ACCESS_KEY"); v != "" {
		cfg.Receipts.AccessKey = v
	}
	if v := os.Getenv("RECEIPTS_SECRET_KEY"); v != "" {
		cfg.Receipts.SecretKey = v
	}
	if v := os.Getenv("RECEIPTS_BUCKET"); v != "" {
		cfg.Receipts.Bucket = v
	}
	if v := os.Getenv("REMINDERS_ENABLED"); v != "" {
		cfg.Reminders.Enabled = parseBool(v)
	}
	if v := os.Getenv("REMINDERS_SPEC"); v != "" {
		cfg.Reminders.Spec = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Payments.StripeWebhookSecret = v
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_SAMPLING_RATIO"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Telemetry.SampleRatio = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/payments/stripe/webhook",
				},
			},
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Schedule: ScheduleConfig{
			Timezone:         "America/Chicago",
			StepMinutes:      30,
			MaxPerDay:        20,
			LimitedThreshold: 15,
			Hours: map[string]DayHoursConfig{
				"sunday":    {Open: true, Start: "08:00", End: "19:00"},
				"monday":    {Open: true, Start: "08:00", End: "19:00"},
				"tuesday":   {Open: true, Start: "08:00", End: "19:00"},
				"wednesday": {Open: true, Start: "08:00", End: "19:00"},
				"thursday":  {Open: true, Start: "08:00", End: "19:00"},
				"friday":    {Open: true, Start: "08:00", End: "17:00"},
				"saturday":  {Open: false},
			},
		},
		Booking: BookingConfig{
			DurationMinutes:    60,
			UnitRate:           4.5,
			MaxSpecialRequests: 1000,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			KeyPrefix: "roofbook",
		},
		Auth: AuthConfig{
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Notify: NotifyConfig{
			QueueKey: "roofbook:notifications",
			SMTP: SMTPConfig{
				Port: "25",
				From: "no-reply@roofbook.local",
			},
			Kafka: KafkaConfig{
				Topic: "booking.appointment.confirmed.v1",
			},
		},
		Receipts: ReceiptsConfig{
			Bucket: "roofbook-receipts",
			Region: "auto",
		},
		Reminders: RemindersConfig{
			Enabled: true,
			Spec:    "0 9 * * *",
		},
		Payments: PaymentsConfig{
			Tolerance: 5 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "roofbook",
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Schedule.StepMinutes <= 0 || 60%c.Schedule.StepMinutes != 0 {
		return errors.New("schedule.stepMinutes must divide an hour")
	}
	if c.Schedule.MaxPerDay <= 0 {
		return errors.New("schedule.maxPerDay must be positive")
	}
	if c.Schedule.LimitedThreshold < 0 || c.Schedule.LimitedThreshold > c.Schedule.MaxPerDay {
		return errors.New("schedule.limitedThreshold must be between 0 and maxPerDay")
	}
	for key := range c.Schedule.Hours {
		if !isWeekdayKey(key) {
			return fmt.Errorf("schedule.hours: unknown weekday %q", key)
		}
	}
	for _, day := range Weekdays {
		hours := c.Schedule.Hours[day]
		if !hours.Open {
			continue
		}
		start, err := time.Parse("15:04", hours.Start)
		if err != nil {
			return fmt.Errorf("schedule.hours.%s.start: %w", day, err)
		}
		end, err := time.Parse("15:04", hours.End)
		if err != nil {
			return fmt.Errorf("schedule.hours.%s.end: %w", day, err)
		}
		if !start.Before(end) {
			return fmt.Errorf("schedule.hours.%s: start must be before end", day)
		}
	}
	if c.Booking.DurationMinutes <= 0 {
		return errors.New("booking.durationMinutes must be positive")
	}
	if c.Booking.UnitRate < 0 {
		return errors.New("booking.unitRate cannot be negative")
	}
	if c.Booking.MaxSpecialRequests <= 0 {
		return errors.New("booking.maxSpecialRequests must be positive")
	}
	if c.Booking.HoldTTL < 0 {
		return errors.New("booking.holdTtl cannot be negative")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if len(c.Auth.Staff) > 0 && strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty when staff accounts are configured")
	}
	if c.Reminders.Enabled && strings.TrimSpace(c.Reminders.Spec) == "" {
		return errors.New("reminders.spec cannot be empty when reminders are enabled")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return errors.New("telemetry.sampleRatio must be within [0,1]")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}

func isWeekdayKey(key string) bool {
	for _, day := range Weekdays {
		if key == day {
			return true
		}
	}
	return false
}
