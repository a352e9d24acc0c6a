// Package cache provides the idempotency fast-path stores backing dispatch
// deduplication.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vansales/backend/internal/domain/shared"
)

// RedisIdempotencyStore shares dedupe state across instances. SETNX gives an
// atomic mark-if-absent, and Redis expiry bounds the memory the state takes.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewRedisIdempotencyStore wraps an existing Redis client. keyPrefix
// namespaces the dedupe keys within the shared database.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "vansales:idem:"
	}
	return &RedisIdempotencyStore{client: client, prefix: keyPrefix}
}

// MarkProcessed records the key atomically. False means another request got
// there first.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	marked, err := s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark idempotency key: %w", err)
	}
	return marked, nil
}

// IsProcessed reports whether the key is currently recorded.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Close closes the underlying Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
