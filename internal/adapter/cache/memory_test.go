package cache

import (
	"context"
	"testing"
	"time"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

func entryAt(at time.Time) *domain.CacheEntry {
	return &domain.CacheEntry{ComputedAt: at}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Hit Within TTL", func(t *testing.T) {
		c := NewMemory(5*time.Minute, 4, nil)
		c.now = func() time.Time { return base }

		c.Put(ctx, "dengue|all", entryAt(base))
		if _, ok := c.Get(ctx, "dengue|all"); !ok {
			t.Fatal("expected a cache hit inside the TTL")
		}
	})

	t.Run("Expired Entry Misses", func(t *testing.T) {
		c := NewMemory(5*time.Minute, 4, nil)
		now := base
		c.now = func() time.Time { return now }

		c.Put(ctx, "dengue|all", entryAt(base))
		now = base.Add(5 * time.Minute)
		if _, ok := c.Get(ctx, "dengue|all"); ok {
			t.Fatal("expected a miss once the TTL elapsed")
		}
	})

	t.Run("Unknown Key Misses", func(t *testing.T) {
		c := NewMemory(5*time.Minute, 4, nil)
		if _, ok := c.Get(ctx, "all|all"); ok {
			t.Fatal("expected a miss for an unknown key")
		}
	})

	t.Run("Capacity Evicts Oldest", func(t *testing.T) {
		c := NewMemory(time.Hour, 2, nil)
		c.now = func() time.Time { return base.Add(3 * time.Minute) }

		c.Put(ctx, "a", entryAt(base))
		c.Put(ctx, "b", entryAt(base.Add(time.Minute)))
		c.Put(ctx, "c", entryAt(base.Add(2*time.Minute)))

		if c.Len() != 2 {
			t.Fatalf("expected 2 resident entries, got %d", c.Len())
		}
		if _, ok := c.Get(ctx, "a"); ok {
			t.Error("expected the oldest entry to be evicted")
		}
		if _, ok := c.Get(ctx, "b"); !ok {
			t.Error("expected entry b to survive")
		}
		if _, ok := c.Get(ctx, "c"); !ok {
			t.Error("expected entry c to survive")
		}
	})

	t.Run("Overwrite Does Not Evict", func(t *testing.T) {
		c := NewMemory(time.Hour, 2, nil)
		c.now = func() time.Time { return base.Add(time.Minute) }

		c.Put(ctx, "a", entryAt(base))
		c.Put(ctx, "b", entryAt(base))
		c.Put(ctx, "a", entryAt(base.Add(time.Minute)))

		if c.Len() != 2 {
			t.Fatalf("expected 2 entries after overwrite, got %d", c.Len())
		}
		entry, ok := c.Get(ctx, "a")
		if !ok {
			t.Fatal("expected entry a to be present")
		}
		if !entry.ComputedAt.Equal(base.Add(time.Minute)) {
			t.Error("expected the newer entry to replace the old one")
		}
	})
}
