package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// MemoryCache is a size-bounded LRU whose entries also expire after a TTL.
// It is safe for concurrent use.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	ll         *list.List
	items      map[string]*list.Element
	now        func() time.Time

	stop chan struct{}
	done chan struct{}
}

// MemoryOption configures a MemoryCache
type MemoryOption func(*MemoryCache)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// NewMemoryCache creates a cache holding at most maxEntries values for ttl
// each. Non-positive arguments fall back to the package defaults.
func NewMemoryCache(maxEntries int, ttl time.Duration, opts ...MemoryOption) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	entry := el.Value.(*memoryEntry)
	if !c.now().Before(entry.expiresAt) {
		c.removeElement(el)
		return "", false
	}
	c.ll.MoveToFront(el)
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expires
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&memoryEntry{key: key, value: value, expiresAt: expires})
	c.items[key] = el
	for c.ll.Len() > c.maxEntries {
		c.removeElement(c.ll.Back())
	}
}

// Clear drops every entry.
func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// StartJanitor purges expired entries every interval until Close is called.
func (c *MemoryCache) StartJanitor(interval time.Duration) {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stop, c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.purgeExpired()
			case <-stop:
				return
			}
		}
	}()
}

// Close stops the janitor, if running.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

func (c *MemoryCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*memoryEntry).expiresAt) {
			c.removeElement(el)
		}
		el = prev
	}
}

func (c *MemoryCache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*memoryEntry).key)
}
