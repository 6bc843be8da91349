package authz

import (
	"sync"
	"time"

	"github.com/creastudio/studiogate/internal/model"
)

// roleCache is a short-TTL in-memory cache of resolved roles. It trades a
// bounded staleness window (role changes take effect within one TTL) for
// eliminating a database query per gated request.
type roleCache struct {
	mu      sync.RWMutex
	entries map[string]cachedRole
	ttl     time.Duration
	done    chan struct{}
}

type cachedRole struct {
	role      model.Role
	expiresAt time.Time
}

// newRoleCache creates a cache with the given TTL.
// Call Close to stop the background eviction goroutine.
func newRoleCache(ttl time.Duration) *roleCache {
	c := &roleCache{
		entries: make(map[string]cachedRole),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.evictLoop()
	return c
}

// Get returns the cached role and true if a valid entry exists.
func (c *roleCache) Get(key string) (model.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.role, true
}

// Set stores a role with the configured TTL.
func (c *roleCache) Set(key string, role model.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedRole{
		role:      role,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Close stops the background eviction goroutine.
func (c *roleCache) Close() {
	close(c.done)
}

// evictLoop removes expired entries every minute.
func (c *roleCache) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *roleCache) evictExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
}
