// Package cache keeps recent scrape results in memory so repeat requests
// for the same URL skip the crawl entirely.
package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/use-agent/prospect/models"
)

// Key hashes the URL together with the settings that change what a
// scrape returns. Two requests with the same key would produce the same
// result, so they can share a cache entry.
func Key(url string, s *models.ScrapeSettings) string {
	h := xxhash.New()
	_, _ = h.WriteString(url)
	_, _ = h.WriteString("|" + s.FetchMode)
	_, _ = h.WriteString("|" + strconv.Itoa(s.MaxDepth))
	_, _ = h.WriteString("|" + strconv.Itoa(s.MaxPages))
	_, _ = h.WriteString("|" + strconv.Itoa(s.ProfileVisits))
	_, _ = h.WriteString("|" + strconv.FormatBool(s.Interactive()))
	return strconv.FormatUint(h.Sum64(), 16)
}

type entry struct {
	result    *models.ScrapeResult
	createdAt time.Time
}

// Cache is an in-memory TTL cache for scrape results. Safe for
// concurrent use. Callers must treat returned results as read-only.
type Cache struct {
	maxEntries int
	maxAge     time.Duration
	done       chan struct{}
	once       sync.Once

	mu    sync.RWMutex
	store map[string]*entry
}

// New creates a Cache holding at most maxEntries results, each fresh for
// maxAge. A background loop evicts stale entries until Stop is called.
func New(maxEntries int, maxAge time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	if maxAge <= 0 {
		maxAge = 15 * time.Minute
	}
	c := &Cache{
		maxEntries: maxEntries,
		maxAge:     maxAge,
		done:       make(chan struct{}),
		store:      make(map[string]*entry),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the cached result for key if it is still fresh.
func (c *Cache) Get(key string) (*models.ScrapeResult, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok || time.Since(e.createdAt) > c.maxAge {
		return nil, false
	}
	return e.result, true
}

// Set stores a result. At capacity, one arbitrary entry is evicted to
// make room (map iteration order is random).
func (c *Cache) Set(key string, result *models.ScrapeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key] = &entry{result: result, createdAt: time.Now()}
}

// Len returns the number of cached entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop terminates the eviction loop. Idempotent.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-c.maxAge)
			c.mu.Lock()
			for k, e := range c.store {
				if e.createdAt.Before(cutoff) {
					delete(c.store, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
