package edu

import (
	"sync"
	"time"
)

const (
	// DefaultPreviewCacheSize is the maximum number of rendered previews kept.
	DefaultPreviewCacheSize = 20
	// DefaultPreviewTTL is how long a cached preview stays valid.
	DefaultPreviewTTL = 30 * time.Minute
)

type previewEntry struct {
	fingerprint string
	rendered    string
	insertedAt  time.Time
}

// PreviewCache caches rendered slide previews keyed by a per-slide identifier.
// An entry is valid only while its stored fingerprint (the raw markdown the
// preview was rendered from) equals the content being requested and while it
// has not expired. Eviction is strict insertion order: when the cache is full
// the oldest-inserted entry goes, regardless of how recently it was read.
//
// A miss is never an error; callers fall back to re-rendering via the server.
type PreviewCache struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	max     int
	entries map[string]previewEntry
	order   []string
}

// NewPreviewCache creates a PreviewCache holding at most max entries, each
// valid for ttl after insertion.
func NewPreviewCache(max int, ttl time.Duration, clock Clock) *PreviewCache {
	return &PreviewCache{
		clock:   clock,
		ttl:     ttl,
		max:     max,
		entries: make(map[string]previewEntry),
	}
}

// Get returns the cached rendered HTML for key, or "" and false if there is
// no entry, the entry expired, or the entry was rendered from different
// content than the caller is asking about.
func (c *PreviewCache) Get(key, content string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if e.fingerprint != content {
		return "", false
	}
	if c.clock.Now().Sub(e.insertedAt) > c.ttl {
		return "", false
	}
	return e.rendered, true
}

// Set stores the rendered HTML for key, recording content as the entry's
// fingerprint. Overwriting an existing key counts as a fresh insertion for
// eviction purposes. If the cache exceeds its size limit the single
// oldest-inserted entry is evicted.
func (c *PreviewCache) Set(key, content, rendered string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeFromOrder(key)
	}

	c.entries[key] = previewEntry{
		fingerprint: content,
		rendered:    rendered,
		insertedAt:  c.clock.Now(),
	}
	c.order = append(c.order, key)

	if len(c.entries) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of entries currently held.
func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PreviewCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
