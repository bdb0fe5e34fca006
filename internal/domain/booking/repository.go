package booking

import (
	"context"
	"time"

	"github.com/yanqian/roofbook/internal/domain/schedule"
)

// Repository abstracts appointment persistence. Create must refuse a second active
// appointment for the same (date, time) with ErrDuplicateSlot and a write that would
// exceed maxPerDay active appointments with ErrDayFull.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Appointment, error)
	Create(ctx context.Context, appt Appointment, maxPerDay int) (Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Appointment, error)
	Get(ctx context.Context, id string) (Appointment, error)
	CountByDateRange(ctx context.Context, from, to schedule.Date) (map[schedule.Date]int, error)
}

// Notifier delivers customer and operations messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LeadStore reads and marks the upstream measurement lead.
type LeadStore interface {
	Get(ctx context.Context, id string) (LeadRecord, error)
	MarkBooked(ctx context.Context, id, appointmentID string) error
}

// HoldStore keeps soft holds keyed by HoldKey.
type HoldStore interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
	Holders(ctx context.Context, keys []string) (map[string]string, error)
}

// ReceiptStore archives confirmation receipts.
type ReceiptStore interface {
	Save(ctx context.Context, receipt Receipt) error
	Load(ctx context.Context, confirmationNumber string) (Receipt, error)
}

// HoldKey identifies one slot of one date.
func HoldKey(date schedule.Date, label string) string {
	return date.String() + "|" + label
}
