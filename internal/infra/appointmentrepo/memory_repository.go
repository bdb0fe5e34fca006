package appointmentrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/schedule"
)

// MemoryRepository is an in-memory booking.Repository used for tests/dev.
// A single mutex covers check-and-insert so slot and capacity checks cannot race.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]booking.Appointment
	byConf  map[string]string
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]booking.Appointment),
		byConf:  make(map[string]string),
	}
}

// List implements booking.Repository. Results are ordered by date then slot.
func (r *MemoryRepository) List(_ context.Context, filter booking.Filter) ([]booking.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]booking.Appointment, 0)
	for _, appt := range r.records {
		if filter.Matches(appt) {
			out = append(out, appt)
		}
	}
	sortAppointments(out)
	return out, nil
}

// Create implements booking.Repository.
func (r *MemoryRepository) Create(_ context.Context, appt booking.Appointment, maxPerDay int) (booking.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byConf[appt.ConfirmationNumber]; exists {
		return booking.Appointment{}, booking.ErrDuplicateConfirmation
	}
	count := 0
	for _, existing := range r.records {
		if existing.Date != appt.Date || !existing.Status.Active() {
			continue
		}
		if existing.Time == appt.Time && appt.Status.Active() {
			return booking.Appointment{}, booking.ErrDuplicateSlot
		}
		count++
	}
	if appt.Status.Active() && maxPerDay > 0 && count >= maxPerDay {
		return booking.Appointment{}, booking.ErrDayFull
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	r.records[appt.ID] = appt
	r.byConf[appt.ConfirmationNumber] = appt.ID
	return appt, nil
}

// UpdateStatus implements booking.Repository.
func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status booking.Status) (booking.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.records[id]
	if !ok {
		return booking.Appointment{}, booking.ErrNotFound
	}
	if appt.Status.Terminal() {
		return booking.Appointment{}, booking.ErrTerminalStatus
	}
	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()
	r.records[id] = appt
	return appt, nil
}

// Get implements booking.Repository.
func (r *MemoryRepository) Get(_ context.Context, id string) (booking.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.records[id]
	if !ok {
		return booking.Appointment{}, booking.ErrNotFound
	}
	return appt, nil
}

// CountByDateRange implements booking.Repository. Only active appointments count.
func (r *MemoryRepository) CountByDateRange(_ context.Context, from, to schedule.Date) (map[schedule.Date]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[schedule.Date]int)
	for _, appt := range r.records {
		if !appt.Status.Active() || appt.Date.Before(from) || appt.Date.After(to) {
			continue
		}
		counts[appt.Date]++
	}
	return counts, nil
}

func sortAppointments(appts []booking.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return slotMinutes(a.Time) < slotMinutes(b.Time)
	})
}

func slotMinutes(label string) int {
	slot, err := schedule.ParseSlotLabel(label)
	if err != nil {
		return -1
	}
	return slot.TimeOfDay().Minutes()
}

var _ booking.Repository = (*MemoryRepository)(nil)
