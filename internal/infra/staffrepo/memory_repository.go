package staffrepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/roofbook/internal/domain/auth"
)

// MemoryRepository provides an in-memory staff store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	staff      map[int64]auth.Staff
	emailIndex map[string]int64
	seq        int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		staff:      make(map[int64]auth.Staff),
		emailIndex: make(map[string]int64),
	}
}

// Add stores the staff record.
func (r *MemoryRepository) Add(_ context.Context, email, name, passwordHash string) (auth.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[email]; exists {
		return auth.Staff{}, auth.ErrEmailExists
	}
	r.seq++
	staff := auth.Staff{
		ID:           r.seq,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.staff[staff.ID] = staff
	r.emailIndex[email] = staff.ID
	return staff, nil
}

// GetByEmail returns a staff account by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.Staff, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.staff[id], true, nil
	}
	return auth.Staff{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.Staff, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	staff, ok := r.staff[id]
	return staff, ok, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
