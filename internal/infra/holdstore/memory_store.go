package holdstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

type holdRecord struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps slot holds in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.Mutex
	holds map[string]holdRecord
	now   func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		holds: make(map[string]holdRecord),
		now:   time.Now,
	}
}

// Acquire takes the hold when it is free, expired, or already owned by token.
func (s *MemoryStore) Acquire(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if current, ok := s.holds[key]; ok && current.token != token && !hasExpired(current.expiresAt, now) {
		return false, nil
	}
	s.holds[key] = holdRecord{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

// Release drops the hold only when token still owns it.
func (s *MemoryStore) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.holds[key]; ok && current.token == token {
		delete(s.holds, key)
	}
	return nil
}

// Holders returns the live token per key; free keys are absent.
func (s *MemoryStore) Holders(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		current, ok := s.holds[key]
		if !ok {
			continue
		}
		if hasExpired(current.expiresAt, now) {
			delete(s.holds, key)
			continue
		}
		out[key] = current.token
	}
	return out, nil
}

func hasExpired(ts, now time.Time) bool {
	return !ts.After(now)
}

var _ booking.HoldStore = (*MemoryStore)(nil)
