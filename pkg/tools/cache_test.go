package tools

import "testing"

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache(2)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	if _, ok := c.Get("a"); ok {
		t.Errorf("oldest entry should have been evicted")
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != "3" {
		t.Errorf("Get(c) = %q, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUCacheGetRefreshesRecency(t *testing.T) {
	c := NewLRUCache(2)
	c.Set("a", "1")
	c.Set("b", "2")

	// Touching "a" makes "b" the eviction candidate.
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("a"); !ok {
		t.Errorf("recently used entry should survive")
	}
	if _, ok := c.Get("b"); ok {
		t.Errorf("least recently used entry should be evicted")
	}
}

func TestLRUCacheUpdateExisting(t *testing.T) {
	c := NewLRUCache(2)
	c.Set("a", "1")
	c.Set("a", "updated")

	if v, _ := c.Get("a"); v != "updated" {
		t.Errorf("Get(a) = %q, want updated", v)
	}
	if c.Len() != 1 {
		t.Errorf("updating a key must not grow the cache")
	}
}
