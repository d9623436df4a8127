// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package grid

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wneessen/dist2coast/internal/geo"
)

type cacheEntry struct {
	Distance float64
	Found    bool
	Expiry   time.Time
}

// CacheObserver is notified about cache hits and misses.
type CacheObserver func(hit bool)

// CachedLookup caches the results of another Lookup, including misses.
type CachedLookup struct {
	lookup    Lookup
	precision int
	ttlHit    time.Duration
	ttlMiss   time.Duration
	observer  CacheObserver

	mu    sync.RWMutex
	cache map[Key]cacheEntry
}

// NewCachedLookup wraps lookup with a TTL cache keyed at the given precision.
func NewCachedLookup(lookup Lookup, precision int, ttlHit, ttlMiss time.Duration) *CachedLookup {
	return &CachedLookup{
		lookup:    lookup,
		precision: precision,
		ttlHit:    ttlHit,
		ttlMiss:   ttlMiss,
		cache:     make(map[Key]cacheEntry),
	}
}

// WithObserver sets a function that is called on every cache access.
func (c *CachedLookup) WithObserver(observer CacheObserver) *CachedLookup {
	c.observer = observer
	return c
}

func (c *CachedLookup) Name() string {
	return "lookup cache using " + c.lookup.Name()
}

func (c *CachedLookup) DistanceToCoast(ctx context.Context, coord geo.Coordinate) (float64, error) {
	key := NewKey(coord, c.precision)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		if time.Now().Before(entry.Expiry) {
			c.observe(true)
			if !entry.Found {
				return 0, NotFoundError(coord)
			}
			return entry.Distance, nil
		}
		c.drop(key)
	}
	c.observe(false)

	dist, err := c.lookup.DistanceToCoast(ctx, coord)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	ttl := c.ttlHit
	if !found {
		ttl = c.ttlMiss
	}
	if ttl > 0 {
		c.mu.Lock()
		c.cache[key] = cacheEntry{
			Distance: dist,
			Found:    found,
			Expiry:   time.Now().Add(ttl),
		}
		c.mu.Unlock()
	}

	return dist, err
}

// Prune drops all expired entries and returns how many were dropped.
func (c *CachedLookup) Prune() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	pruned := 0
	for key, entry := range c.cache {
		if !now.Before(entry.Expiry) {
			delete(c.cache, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of cached entries, including expired ones not yet dropped.
func (c *CachedLookup) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// drop removes the entry for key if it is still expired.
func (c *CachedLookup) drop(key Key) {
	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && !time.Now().Before(entry.Expiry) {
		delete(c.cache, key)
	}
	c.mu.Unlock()
}

// Purge drops all cached entries.
func (c *CachedLookup) Purge() {
	c.mu.Lock()
	c.cache = make(map[Key]cacheEntry)
	c.mu.Unlock()
}

func (c *CachedLookup) observe(hit bool) {
	if c.observer != nil {
		c.observer(hit)
	}
}
