package loader

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheEntries = 64
	DefaultCacheTTL     = 10 * time.Minute
)

// CacheParams bounds a Cache. Zero values fall back to the defaults.
type CacheParams struct {
	MaxEntries int
	TTL        time.Duration
}

type cacheEntry struct {
	key     string
	data    []byte
	expires time.Time
}

// Cache memoizes loaded content by key. Concurrent loads of the same key
// share one call, and failed loads are not cached. Entries expire after
// the TTL and the least recently used entry is evicted once MaxEntries is
// reached, so a long running server picks up changed sources.
type Cache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	group      singleflight.Group
}

func NewCache() *Cache {
	return NewCacheWithParams(CacheParams{})
}

func NewCacheWithParams(params CacheParams) *Cache {
	maxEntries := params.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Load returns the cached content for key or calls fn to produce it.
func (c *Cache) Load(key string, fn func() ([]byte, error)) ([]byte, error) {
	if b, ok := c.get(key); ok {
		return b, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		if b, ok := c.get(key); ok {
			return b, nil
		}
		b, err := fn()
		if err != nil {
			return nil, err
		}
		c.put(key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Len reports the number of cached entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if !c.now().Before(entry.expires) {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.data, true
}

func (c *Cache) put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.data, entry.expires = data, expires
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, data: data, expires: expires})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}
