package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
	seq       uint64
}

// Memory is an in-process TTL cache. The zero TTL keeps entries forever.
// With a positive entry limit, a full cache drops expired entries first and
// then the oldest insertion.
type Memory[V any] struct {
	mu         sync.RWMutex
	store      map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	seq        uint64
	now        func() time.Time
}

func NewMemory[V any](ttl time.Duration) *Memory[V] {
	return &Memory[V]{
		store: make(map[string]entry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithMaxEntries bounds the cache; n <= 0 means unbounded.
func (c *Memory[V]) WithMaxEntries(n int) *Memory[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxEntries = n
	return c
}

// Get retrieves a value if present and not expired.
func (c *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[key]
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

func (c *Memory[V]) Set(_ context.Context, key string, value V) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.store[key]; !exists && c.maxEntries > 0 && len(c.store) >= c.maxEntries {
		c.evictLocked(now)
	}

	c.seq++
	e := entry[V]{value: value, seq: c.seq}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.store[key] = e
}

// evictLocked makes room for one entry. Callers hold the write lock.
func (c *Memory[V]) evictLocked(now time.Time) {
	c.sweepLocked(now)
	for len(c.store) >= c.maxEntries {
		var (
			oldestKey string
			oldestSeq uint64
			found     bool
		)
		for key, e := range c.store {
			if !found || e.seq < oldestSeq {
				oldestKey, oldestSeq, found = key, e.seq, true
			}
		}
		if !found {
			return
		}
		delete(c.store, oldestKey)
	}
}

// Len counts stored entries, expired ones included until the next sweep.
func (c *Memory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Memory[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]entry[V])
}

// Sweep drops expired entries and returns how many were removed.
func (c *Memory[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

func (c *Memory[V]) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range c.store {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.store, key)
			removed++
		}
	}
	return removed
}

// Janitor sweeps every interval until ctx is done.
func (c *Memory[V]) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
