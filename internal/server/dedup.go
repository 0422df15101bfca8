package server

import (
	"sync"
	"time"
)

// seenTTL is how long a delivery id is remembered
const seenTTL = 5 * time.Minute

// seenCache remembers recently processed delivery ids
type seenCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

func newSeenCache(ttl time.Duration) *seenCache {
	return &seenCache{ttl: ttl, seen: make(map[string]time.Time)}
}

// markSeen records id and reports whether it had already been seen within the ttl.
// Empty ids are never treated as duplicates.
func (c *seenCache) markSeen(id string, now time.Time) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Expire old records while marking so the map cannot grow without bound
	cutoff := now.Add(-c.ttl)
	for k, ts := range c.seen {
		if ts.Before(cutoff) {
			delete(c.seen, k)
		}
	}

	if _, ok := c.seen[id]; ok {
		return true
	}
	c.seen[id] = now
	return false
}

// forget drops id so a later delivery is handled again
func (c *seenCache) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, id)
}
