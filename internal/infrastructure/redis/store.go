package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barangaysm/portal-api/internal/domain"
)

// compareAndDelete deletes the key only when its value equals the argument.
// Running it server-side makes the OTP check-then-delete step atomic: two
// concurrent verifications with the correct code can both read it, but only
// one of them wins the delete.
var compareAndDelete = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Store is the ephemeral key-value store backing OTP codes and credential
// liveness records. An expired key is indistinguishable from a deleted one.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Put writes value under key with the given TTL. An existing key is
// overwritten and its TTL reset, which is how OTP re-issuance invalidates the
// previous code.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w: %w", key, domain.ErrUnavailable, err)
	}
	return nil
}

// Get returns the live value for key. A missing or expired key yields
// domain.ErrNotFound; transport failures yield domain.ErrUnavailable so
// callers surface 5xx instead of treating an outage as "not found".
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		return "", fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("redis get %q: %w: %w", key, domain.ErrUnavailable, err)
	}
	return v, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w: %w", key, domain.ErrUnavailable, err)
	}
	return nil
}

// CompareAndDelete atomically deletes key when its current value equals
// expect. It reports whether this call performed the delete; false covers
// absent, expired, and mismatched values alike.
func (s *Store) CompareAndDelete(ctx context.Context, key, expect string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, s.client, []string{key}, expect).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete %q: %w: %w", key, domain.ErrUnavailable, err)
	}
	return n == 1, nil
}
