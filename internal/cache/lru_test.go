// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Set("u1", "a", 1)
	c.Set("u1", "b", 2)
	c.Set("u2", "c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, found := c.Get(key)
		if !found || got != want {
			t.Errorf("Get(%q) = %d, %v; want %d", key, got, found, want)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Expected len 3, got %d", c.Len())
	}

	if !c.Remove("a") {
		t.Error("Expected Remove to report the key")
	}
	if c.Remove("a") {
		t.Error("Second Remove should report nothing")
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string](3, time.Minute)
	c.Set("", "a", "a")
	c.Set("", "b", "b")
	c.Set("", "c", "c")

	// 'a' becomes most recently used, so 'b' is evicted next.
	c.Get("a")
	c.Set("", "d", "d")

	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("Expected %q to be present", key)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("u1", "a", 1)
	c.Set("u1", "b", 2)
	now = now.Add(30 * time.Second)
	c.Set("u1", "c", 3)

	now = now.Add(31 * time.Second)
	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be expired")
	}
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("Expected 1 expired entry removed, got %d", removed)
	}
	if _, found := c.Get("c"); !found {
		t.Error("Expected 'c' to survive")
	}

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 1, 1, 1", hits, misses, size)
	}
}

func TestLRU_RemoveOwner(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("u1", "u1|*", 1)
	c.Set("u1", "u1|books", 2)
	c.Set("u2", "u2|*", 3)

	if n := c.RemoveOwner("u1"); n != 2 {
		t.Errorf("Expected 2 entries removed, got %d", n)
	}
	if _, found := c.Get("u1|books"); found {
		t.Error("u1 entries should be gone")
	}
	if _, found := c.Get("u2|*"); !found {
		t.Error("u2 entries should remain")
	}
	if n := c.RemoveOwner("u1"); n != 0 {
		t.Errorf("Expected nothing left for u1, got %d", n)
	}

	// Re-owning a key moves it between owners.
	c.Set("u3", "u2|*", 4)
	if n := c.RemoveOwner("u2"); n != 0 {
		t.Errorf("Expected u2 to own nothing after re-owning, got %d", n)
	}
	if n := c.RemoveOwner("u3"); n != 1 {
		t.Errorf("Expected u3 to own the key, got %d", n)
	}
}

func TestLRU_EvictionUntagsOwner(t *testing.T) {
	c := NewLRU[int](1, time.Minute)
	c.Set("u1", "a", 1)
	c.Set("u2", "b", 2)

	if n := c.RemoveOwner("u1"); n != 0 {
		t.Errorf("Evicted entry still tagged: %d", n)
	}
	if len(c.owners) != 1 {
		t.Errorf("Expected one owner index, got %d", len(c.owners))
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int](100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			owner := fmt.Sprintf("u%d", g%3)
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%s|%d", owner, i%20)
				c.Set(owner, key, i)
				c.Get(key)
				if i%50 == 0 {
					c.RemoveOwner(owner)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Capacity exceeded: %d", c.Len())
	}
}
