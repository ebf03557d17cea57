package analyzer

import (
	"sync"
	"time"
)

// ttlCache is a small per-analyzer result cache keyed by token address.
// Eviction is lazy: entries past their TTL are dropped on read, no sweeper.
type ttlCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[T]
}

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

func newTTLCache[T any](ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry[T]),
	}
}

func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *ttlCache[T]) put(key string, value T) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[T]{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}
