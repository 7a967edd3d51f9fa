package cache

import (
	"context"
	"sync"
	"time"
)

// inMemoryItem represents a cache item with expiration.
type inMemoryItem struct {
	value      []byte
	expiration time.Time
}

// isExpired checks if the item has expired.
func (i *inMemoryItem) isExpired() bool {
	if i.expiration.IsZero() {
		return false
	}
	return time.Now().After(i.expiration)
}

// InMemoryCache is a thread-safe in-memory cache implementation. It is
// process local; sharing entries across instances needs one of the
// networked backends.
type InMemoryCache struct {
	items      sync.Map // map[string]*inMemoryItem
	cleanupMu  sync.Mutex
	stopClean  chan struct{}
	cleanupInt time.Duration
}

const defaultCleanupInterval = 5 * time.Minute

// NewInMemoryCache creates a new in-memory cache.
func NewInMemoryCache() RawCache {
	c := &InMemoryCache{
		stopClean:  make(chan struct{}),
		cleanupInt: defaultCleanupInterval,
	}

	go c.startCleanup()

	return c
}

// startCleanup periodically removes expired items.
func (c *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopClean:
			return
		}
	}
}

// cleanup removes expired items from the cache.
func (c *InMemoryCache) cleanup() {
	c.items.Range(func(key, value interface{}) bool {
		item, ok := value.(*inMemoryItem)
		if ok && item.isExpired() {
			c.items.Delete(key)
		}
		return true
	})
}

// Get retrieves an item from the cache.
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := c.items.Load(key)
	if !ok {
		return nil, false, nil
	}

	item, ok := value.(*inMemoryItem)
	if !ok || item.isExpired() {
		c.items.Delete(key)
		return nil, false, nil
	}

	return item.value, true, nil
}

// Set sets an item in the cache with the specified TTL.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := &inMemoryItem{
		value: value,
	}

	if ttl > 0 {
		item.expiration = time.Now().Add(ttl)
	}

	c.items.Store(key, item)
	return nil
}

// Delete removes an item from the cache.
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache.
func (c *InMemoryCache) Exists(_ context.Context, key string) (bool, error) {
	value, ok := c.items.Load(key)
	if !ok {
		return false, nil
	}

	if item, itemOK := value.(*inMemoryItem); itemOK && item.isExpired() {
		c.items.Delete(key)
		return false, nil
	}

	return true, nil
}

// Flush clears all items from the cache. Entries are deleted in place
// so readers ranging concurrently keep a valid map.
func (c *InMemoryCache) Flush(_ context.Context) error {
	c.items.Range(func(key, _ interface{}) bool {
		c.items.Delete(key)
		return true
	})
	return nil
}

// Close stops the cleanup goroutine and releases resources.
func (c *InMemoryCache) Close() error {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()

	select {
	case <-c.stopClean:
		// Already closed
		return nil
	default:
		close(c.stopClean)
	}

	return nil
}
