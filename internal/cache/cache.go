package cache

import (
	"strings"
	"sync"
	"time"
)

// ResponseCache memoizes serialized successful responses by request key. The
// backing store is swappable; handlers only depend on this interface.
type ResponseCache interface {
	Lookup(key string) ([]byte, bool)
	Store(key string, payload []byte, ttl time.Duration)
}

// Key derives a deterministic cache key from the endpoint name and the exact
// literal values of its route parameters. Comparison is by string, so "10"
// and "10.0" are different keys.
func Key(endpoint string, params ...string) string {
	return endpoint + ":" + strings.Join(params, ":")
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache is a process-local ResponseCache. Expiry is checked lazily on
// lookup; the background sweep only reclaims memory and is not needed for
// correctness. Writes for the same key are last-writer-wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	sweepTicker *time.Ticker
	stopSweep   chan struct{}
}

// NewMemoryCache creates a MemoryCache and starts its sweep goroutine.
func NewMemoryCache() *MemoryCache {
	memoryCache := &MemoryCache{
		entries:     make(map[string]entry),
		sweepTicker: time.NewTicker(5 * time.Minute),
		stopSweep:   make(chan struct{}),
	}

	go memoryCache.sweep()

	return memoryCache
}

// Lookup returns the cached payload for key if present and not expired.
func (c *MemoryCache) Lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	cached, found := c.entries[key]
	c.mu.RUnlock()

	if !found || time.Now().After(cached.expiresAt) {
		return nil, false
	}
	return cached.payload, true
}

// Store records payload under key for ttl, replacing any existing entry.
func (c *MemoryCache) Store(key string, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop terminates the sweep goroutine.
func (c *MemoryCache) Stop() {
	c.sweepTicker.Stop()
	close(c.stopSweep)
}

func (c *MemoryCache) sweep() {
	for {
		select {
		case <-c.sweepTicker.C:
			now := time.Now()
			c.mu.Lock()
			for key, cached := range c.entries {
				if now.After(cached.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopSweep:
			return
		}
	}
}
