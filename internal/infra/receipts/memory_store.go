package receipts

import (
	"context"
	"strings"
	"sync"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

// MemoryStore keeps receipts in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu       sync.RWMutex
	receipts map[string]booking.Receipt
}

// NewMemoryStore constructs storage.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{receipts: make(map[string]booking.Receipt)}
}

// Save stores the receipt under its confirmation number.
func (s *MemoryStore) Save(_ context.Context, receipt booking.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[normalize(receipt.ConfirmationNumber)] = receipt
	return nil
}

// Load returns booking.ErrNotFound for unknown numbers.
func (s *MemoryStore) Load(_ context.Context, confirmationNumber string) (booking.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[normalize(confirmationNumber)]
	if !ok {
		return booking.Receipt{}, booking.ErrNotFound
	}
	return receipt, nil
}

func normalize(n string) string {
	return strings.ToUpper(strings.TrimSpace(n))
}

var _ booking.ReceiptStore = (*MemoryStore)(nil)
