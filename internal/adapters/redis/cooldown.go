// Package redis provides Redis-backed adapters for failwire.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCooldownPrefix namespaces cooldown keys.
const DefaultCooldownPrefix = "failwire:cooldown:"

// CooldownStore tracks alert windows with SET NX PX, so the first caller in a
// window wins across every process sharing the Redis instance.
type CooldownStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCooldownStore creates a cooldown store with the default key prefix.
func NewCooldownStore(client redis.UniversalClient) *CooldownStore {
	return NewCooldownStoreWithPrefix(client, DefaultCooldownPrefix)
}

// NewCooldownStoreWithPrefix creates a cooldown store with a custom key prefix.
func NewCooldownStoreWithPrefix(client redis.UniversalClient, prefix string) *CooldownStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultCooldownPrefix
	}
	return &CooldownStore{client: client, prefix: prefix}
}

// Acquire reports whether key is outside its cooldown window, opening a new
// window of length window when it is.
func (s *CooldownStore) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	if key == "" {
		return false, errors.New("cooldown key cannot be empty")
	}
	if window <= 0 {
		return true, nil
	}

	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Reset clears the window for key.
func (s *CooldownStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Remaining returns how long key stays in cooldown, or zero when it is not.
func (s *CooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis pttl: %w", err)
	}
	// PTTL reports -2 for a missing key and -1 for one without expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
