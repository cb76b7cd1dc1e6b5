package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Caches and sources take one so tests can
// move time forward without sleeping.
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Observer is notified of every lookup
type Observer interface {
	CacheLookup(cache string, hit bool)
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// TTLCache is a thread-safe in-memory map whose entries expire a fixed
// duration after insertion. There is no size bound.
type TTLCache[V any] struct {
	name     string
	ttl      time.Duration
	clock    Clock
	observer Observer
	entries  map[string]entry[V]
	mutex    sync.RWMutex
}

// Option configures a TTLCache
type Option func(*options)

type options struct {
	clock    Clock
	observer Observer
}

// WithClock replaces the system clock
func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithObserver reports hits and misses to o
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// NewTTLCache creates a cache named name whose entries live for ttl
func NewTTLCache[V any](name string, ttl time.Duration, opts ...Option) *TTLCache[V] {
	o := options{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	return &TTLCache[V]{
		name:     name,
		ttl:      ttl,
		clock:    o.clock,
		observer: o.observer,
		entries:  make(map[string]entry[V]),
	}
}

// Name returns the cache name used in metrics
func (c *TTLCache[V]) Name() string {
	return c.name
}

// TTL returns the entry lifetime
func (c *TTLCache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key unless it is missing or at least ttl old
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	e, exists := c.entries[key]
	c.mutex.RUnlock()

	hit := exists && c.clock().Sub(e.insertedAt) < c.ttl
	if c.observer != nil {
		c.observer.CacheLookup(c.name, hit)
	}
	if !hit {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Put stores value under key, resetting its age
func (c *TTLCache[V]) Put(key string, value V) {
	now := c.clock()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry[V]{value: value, insertedAt: now}
}

// Len returns the number of stored entries, expired or not
func (c *TTLCache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// Purge removes expired entries and returns how many were dropped
func (c *TTLCache[V]) Purge() int {
	now := c.clock()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, key)
			count++
		}
	}

	return count
}
