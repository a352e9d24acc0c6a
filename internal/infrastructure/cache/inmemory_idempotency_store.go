package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vansales/backend/internal/domain/shared"
)

// How often expired keys are swept out of the in-memory store.
const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps dedupe state in process memory for
// single-instance deployments and tests. A background sweeper reclaims
// expired keys; reads treat expired entries as absent regardless.
type InMemoryIdempotencyStore struct {
	mu   sync.RWMutex
	seen map[string]time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		seen: make(map[string]time.Time),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.sweep()
	return s
}

// MarkProcessed records the key. False means a live entry already exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if until, ok := s.seen[key]; ok && now.Before(until) {
		return false, nil
	}
	s.seen[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether a live entry exists for the key.
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	until, ok := s.seen[key]
	s.mu.RUnlock()
	return ok && time.Now().Before(until), nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweep() {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, until := range s.seen {
				if now.After(until) {
					delete(s.seen, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
