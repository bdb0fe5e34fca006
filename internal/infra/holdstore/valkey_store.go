package holdstore

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

// releaseScript deletes the key only while it still carries the caller's token.
var releaseScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the TTL only while the caller owns the key.
var refreshScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// ValkeyStore keeps slot holds in a Valkey-compatible database so every
// instance sees the same holds.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "roofbook"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	full := s.holdKey(key)
	cmd := s.client.B().Set().Key(full).Value(token).Nx().Px(ttl).Build()
	err := s.client.Do(ctx, cmd).Error()
	if err == nil {
		return true, nil
	}
	if !valkey.IsValkeyNil(err) {
		return false, err
	}
	refreshed, err := refreshScript.Exec(ctx, s.client, []string{full}, []string{token, fmt.Sprint(ttl.Milliseconds())}).AsInt64()
	if err != nil {
		return false, err
	}
	return refreshed == 1, nil
}

func (s *ValkeyStore) Release(ctx context.Context, key, token string) error {
	err := releaseScript.Exec(ctx, s.client, []string{s.holdKey(key)}, []string{token}).Error()
	if valkey.IsValkeyNil(err) {
		return nil
	}
	return err
}

func (s *ValkeyStore) Holders(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.holdKey(key)
	}
	arr, err := s.client.Do(ctx, s.client.B().Mget().Key(full...).Build()).ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return out, nil
		}
		return nil, err
	}
	for i, msg := range arr {
		if i >= len(keys) {
			break
		}
		token, err := msg.ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		out[keys[i]] = token
	}
	return out, nil
}

func (s *ValkeyStore) holdKey(key string) string {
	return fmt.Sprintf("%s:hold:%s", s.prefix, key)
}

var _ booking.HoldStore = (*ValkeyStore)(nil)
