package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers recently processed keys so duplicate requests
// can be answered from the existing record without touching storage. It is a
// fast path only: the durable guarantee is the unique index on the action
// store's idempotency key, and callers must stay correct when the store is
// nil or loses entries.
type IdempotencyStore interface {
	// MarkProcessed records the key for the given TTL. It reports true when
	// the key was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the key is currently recorded.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
