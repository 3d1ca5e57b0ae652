package tools

import (
	"container/list"
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys tool results by their exact input. Entries never expire, they
// are only evicted by capacity.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

type lruEntry struct {
	key   string
	value string
}

// LRUCache is a bounded in-process cache with least-recently-used eviction.
// Safe for concurrent use.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *LRUCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).value, true
}

func (c *LRUCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruEntry).value = value
		return
	}
	c.items[key] = c.order.PushFront(&lruEntry{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// TieredCache layers a shared redis tier behind the local LRU so multiple
// instances reuse each other's tool results. Redis failures are logged and
// otherwise ignored, the local tier keeps working.
type TieredCache struct {
	local  *LRUCache
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *log.Logger
}

func NewTieredCache(local *LRUCache, rdb *redis.Client, prefix string, ttl time.Duration, logger *log.Logger) *TieredCache {
	return &TieredCache{local: local, rdb: rdb, ttl: ttl, prefix: prefix, logger: logger}
}

func (c *TieredCache) Get(key string) (string, bool) {
	if v, ok := c.local.Get(key); ok {
		return v, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("[CACHE] Redis read failed: %v", err)
		}
		return "", false
	}
	c.local.Set(key, v)
	return v, true
}

func (c *TieredCache) Set(key, value string) {
	c.local.Set(key, value)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rdb.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Printf("[CACHE] Redis write failed: %v", err)
	}
}
