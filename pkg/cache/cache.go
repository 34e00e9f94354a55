// Package cache stores analyzer results keyed by content and request shape.
//
// Payloads are JSON. They are canonicalized (RFC 8785) when stored, so a
// replayed result is byte-for-byte identical no matter how the analyzer
// formatted it the first time. Entries expire after a fixed TTL; expired
// entries are dropped when read and by the periodic Sweeper.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/gowebpki/jcs"
	"golang.org/x/sync/singleflight"
)

// Source says where a Fetch result came from.
type Source int

const (
	// Hit means the payload was already cached.
	Hit Source = iota

	// Computed means this caller ran the fill function.
	Computed

	// Shared means another caller ran the fill function concurrently and
	// this caller received its result.
	Shared
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case Hit:
		return "hit"
	case Computed:
		return "computed"
	case Shared:
		return "shared"
	}
	return "unknown"
}

// Observer receives cache events. Implemented by the metrics collector.
type Observer interface {
	CacheHit()
	CacheMiss()
	CacheEvicted(n int)
	CacheEntries(n int)
}

// Entry is a cached payload and its expiry. Entries are never modified
// after they are stored.
type Entry struct {
	Payload   []byte
	ExpiresAt time.Time
}

// Cache is an in-memory TTL cache. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group

	observer Observer
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithObserver reports hits, misses, and evictions.
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the payload stored under key. Expired entries are
// removed and reported as missing.
func (c *Cache) Get(key string) ([]byte, bool) {
	v, ok := c.peek(key)
	if c.observer != nil {
		if ok {
			c.observer.CacheHit()
		} else {
			c.observer.CacheMiss()
		}
	}
	return v, ok
}

func (c *Cache) peek(key string) ([]byte, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	if !c.now().Before(e.ExpiresAt) {
		delete(c.entries, key)
		n := len(c.entries)
		c.mu.Unlock()
		c.evicted(1, n)
		return nil, false
	}
	c.mu.Unlock()

	out := make([]byte, len(e.Payload))
	copy(out, e.Payload)
	return out, true
}

// Set canonicalizes payload and stores it under key, replacing any previous
// entry. It returns the canonical bytes.
func (c *Cache) Set(key string, payload []byte) ([]byte, error) {
	canonical, err := jcs.Transform(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize payload for %q: %w", key, err)
	}

	stored := make([]byte, len(canonical))
	copy(stored, canonical)

	c.mu.Lock()
	c.entries[key] = Entry{Payload: stored, ExpiresAt: c.now().Add(c.ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.CacheEntries(n)
	}
	return canonical, nil
}

// Fetch returns the payload under key, calling fill on a miss and storing
// its result. Concurrent misses on the same key share one fill call.
// The returned bytes are always the canonical stored form.
func (c *Cache) Fetch(key string, fill func() ([]byte, error)) ([]byte, Source, error) {
	if v, ok := c.Get(key); ok {
		return v, Hit, nil
	}

	filled := false
	res, err, shared := c.group.Do(key, func() (any, error) {
		// A flight that finished just before this one started may have
		// stored the value already.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		raw, err := fill()
		if err != nil {
			return nil, err
		}
		canonical, err := c.Set(key, raw)
		if err != nil {
			return nil, err
		}
		filled = true
		return canonical, nil
	})
	if err != nil {
		return nil, Computed, err
	}

	payload := res.([]byte)
	out := make([]byte, len(payload))
	copy(out, payload)

	switch {
	case filled:
		return out, Computed, nil
	case shared:
		return out, Shared, nil
	default:
		return out, Hit, nil
	}
}

// Sweep removes every expired entry and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.evicted(removed, n)
	return removed
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evicted(removed, remaining int) {
	if c.observer == nil {
		return
	}
	if removed > 0 {
		c.observer.CacheEvicted(removed)
	}
	c.observer.CacheEntries(remaining)
}
