// Package cache provides the short-TTL read-through cache that fronts feed
// assembly. Entries expire lazily: an expired entry is masked at lookup
// time, not removed, until it is overwritten or explicitly deleted. There
// is deliberately no background sweep.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores opaque payloads under string keys with a per-entry TTL.
// Implementations never surface errors: a failed lookup is a miss, a failed
// write is dropped. Writes are last-writer-wins.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
	Remove(ctx context.Context, key string)
}

// Option mutates memory cache configuration.
type Option func(*Memory)

// WithMaxEntries bounds the number of stored entries; the least recently
// used entry is evicted when the bound is exceeded. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Memory) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock overrides the time source. Primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Memory) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// Memory is the in-process Cache implementation. Safe for concurrent use.
type Memory struct {
	maxEntries int
	clock      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	lru     *list.List
	index   map[string]*list.Element
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an in-process cache.
func NewMemory(options ...Option) *Memory {
	c := &Memory{
		clock:   time.Now,
		entries: make(map[string]*entry),
		lru:     list.New(),
		index:   make(map[string]*list.Element),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Get returns the payload stored under key when present and not expired.
// Expired entries are treated as absent but kept in place.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().After(e.expiresAt) {
		return nil, false
	}
	if el, ok := c.index[key]; ok {
		c.lru.MoveToFront(el)
	}
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true
}

// Put stores or unconditionally replaces the entry under key with
// expiry now+ttl.
func (c *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{value: stored, expiresAt: c.clock().Add(ttl)}
	if el, ok := c.index[key]; ok {
		c.lru.MoveToFront(el)
	} else {
		c.index[key] = c.lru.PushFront(key)
	}

	if c.maxEntries > 0 {
		for len(c.entries) > c.maxEntries {
			oldest := c.lru.Back()
			if oldest == nil {
				break
			}
			evicted := oldest.Value.(string)
			c.lru.Remove(oldest)
			delete(c.index, evicted)
			delete(c.entries, evicted)
		}
	}
}

// Remove deletes the entry under key, if any.
func (c *Memory) Remove(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.lru.Remove(el)
		delete(c.index, key)
	}
	delete(c.entries, key)
}

// Len reports the number of stored entries, including expired ones that
// have not yet been overwritten or removed.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
