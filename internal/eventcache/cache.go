// Package eventcache absorbs read bursts for active-event queries.
package eventcache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/liveops/internal/domain"
)

// DefaultTTL is the lifetime of a cached query result.
const DefaultTTL = 90 * time.Second

// DefaultSize bounds the number of (timezone, filter) fingerprints kept.
const DefaultSize = 512

// Key is the query fingerprint.
type Key struct {
	Timezone   string
	TypeFilter domain.EventType
}

func (k Key) String() string {
	return k.Timezone + "|" + string(k.TypeFilter)
}

type entry struct {
	generation uint64
	events     []domain.Event
}

// Cache holds store results for active-event queries.
//
// Fills are generation guarded: a caller reads Generation before querying the
// store and passes it to Set, so a result fetched before an InvalidateAll is
// dropped instead of resurrecting pre-invalidation data.
type Cache struct {
	mu         sync.Mutex
	generation uint64
	lru        *expirable.LRU[Key, entry]
	ttl        time.Duration
}

// New creates a cache with the given size and TTL. Non-positive values use defaults.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		lru: expirable.NewLRU[Key, entry](size, nil, ttl),
		ttl: ttl,
	}
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Generation returns the current invalidation generation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Get returns the cached events for key. The returned slice must not be modified.
func (c *Cache) Get(key Key) ([]domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok || e.generation != c.generation {
		return nil, false
	}
	return e.events, true
}

// Set stores events for key if no invalidation happened since generation was read.
// It reports whether the entry was stored.
func (c *Cache) Set(key Key, events []domain.Event, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false
	}
	stored := make([]domain.Event, len(events))
	copy(stored, events)
	c.lru.Add(key, entry{generation: generation, events: stored})
	return true
}

// InvalidateAll drops every entry and bumps the generation in one step.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
