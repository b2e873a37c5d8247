package cache

import (
	"context"
	"sync"
	"time"

	"github.com/civicmed/outbreak-engine/internal/adapter/metrics"
	"github.com/civicmed/outbreak-engine/internal/domain"
)

// Memory is the in-process implementation of domain.ResultCache: a bounded
// map with TTL checks on read and oldest-entry eviction on write.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]*domain.CacheEntry
	ttl      time.Duration
	capacity int
	metrics  *metrics.EngineMetrics
	now      func() time.Time
}

// NewMemory creates an in-memory result cache. m may be nil.
func NewMemory(ttl time.Duration, capacity int, m *metrics.EngineMetrics) *Memory {
	return &Memory{
		entries:  make(map[string]*domain.CacheEntry),
		ttl:      ttl,
		capacity: capacity,
		metrics:  m,
		now:      time.Now,
	}
}

// Get returns the entry for key if present and not expired.
func (c *Memory) Get(_ context.Context, key string) (*domain.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.ComputedAt) >= c.ttl {
		return nil, false
	}
	return entry, true
}

// Put stores an entry. When the store exceeds capacity, the single entry
// with the oldest ComputedAt is evicted.
func (c *Memory) Put(_ context.Context, key string, entry *domain.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	if len(c.entries) > c.capacity {
		var (
			oldestKey string
			oldestAt  time.Time
		)
		for k, e := range c.entries {
			if oldestKey == "" || e.ComputedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.ComputedAt
			}
		}
		delete(c.entries, oldestKey)
	}

	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(len(c.entries)))
	}
}

// Len reports the number of resident entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
