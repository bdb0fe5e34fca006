package paymentrepo

import (
	"context"
	"sync"

	"github.com/yanqian/roofbook/internal/domain/payment"
)

// MemoryRepository keeps payment records in memory, unique by event id.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]payment.Record
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]payment.Record)}
}

// Insert stores the record unless its event was already seen.
func (r *MemoryRepository) Insert(_ context.Context, record payment.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.EventID]; ok {
		return payment.ErrDuplicateEvent
	}
	r.records[record.EventID] = record
	return nil
}

var _ payment.Repository = (*MemoryRepository)(nil)
