package leadrepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/roofbook/internal/domain/lead"
)

// MemoryRepository provides an in-memory lead store for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]lead.Lead
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{leads: make(map[string]lead.Lead)}
}

// Create stores the lead.
func (r *MemoryRepository) Create(_ context.Context, l lead.Lead) (lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[l.ID] = l
	return l, nil
}

// Get returns a lead by id.
func (r *MemoryRepository) Get(_ context.Context, id string) (lead.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leads[id]
	if !ok {
		return lead.Lead{}, lead.ErrNotFound
	}
	return l, nil
}

// MarkBooked links the lead to its appointment.
func (r *MemoryRepository) MarkBooked(_ context.Context, id, appointmentID string) error {
	return r.update(id, func(l *lead.Lead) {
		if l.Status != lead.StatusPaid {
			l.Status = lead.StatusBooked
		}
		l.AppointmentID = appointmentID
	})
}

// MarkPaid records the payment reference.
func (r *MemoryRepository) MarkPaid(_ context.Context, id, paymentRef string) error {
	return r.update(id, func(l *lead.Lead) {
		l.Status = lead.StatusPaid
		l.PaymentRef = paymentRef
	})
}

func (r *MemoryRepository) update(id string, fn func(*lead.Lead)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return lead.ErrNotFound
	}
	fn(&l)
	l.UpdatedAt = time.Now().UTC()
	r.leads[id] = l
	return nil
}

var _ lead.Repository = (*MemoryRepository)(nil)
