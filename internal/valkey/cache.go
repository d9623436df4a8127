// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package valkey provides a shared cache for grid lookups backed by Valkey.
package valkey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
)

const keyPrefix = "dist2coast:grid"

// Cache implements grid.Lookup by caching the distances of another Lookup in Valkey.
// Only hits are cached. Valkey failures fall back to the wrapped Lookup.
type Cache struct {
	client    valkey.Client
	lookup    grid.Lookup
	precision int
	ttl       time.Duration
	onError   func(error)
}

// New creates a new Valkey cache client in front of lookup.
func New(addr string, lookup grid.Lookup, precision int, ttl time.Duration) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}
	return &Cache{client: client, lookup: lookup, precision: precision, ttl: ttl}, nil
}

// OnError registers a function that is called with cache failures.
func (c *Cache) OnError(fn func(error)) *Cache {
	c.onError = fn
	return c
}

// Name satisfies the grid.Lookup interface.
func (c *Cache) Name() string {
	return "valkey cache using " + c.lookup.Name()
}

// DistanceToCoast satisfies the grid.Lookup interface.
func (c *Cache) DistanceToCoast(ctx context.Context, coord geo.Coordinate) (float64, error) {
	key := Key(coord, c.precision)
	dist, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsFloat64()
	switch {
	case err == nil:
		return dist, nil
	case !valkey.IsValkeyNil(err):
		c.fail(fmt.Errorf("failed to get %s: %w", key, err))
	}

	dist, err = c.lookup.DistanceToCoast(ctx, coord)
	if err != nil {
		return 0, err
	}
	value := strconv.FormatFloat(dist, 'g', -1, 64)
	cmd := c.client.B().Set().Key(key).Value(value).Ex(c.ttl).Build()
	if err = c.client.Do(ctx, cmd).Error(); err != nil {
		c.fail(fmt.Errorf("failed to set %s: %w", key, err))
	}
	return dist, nil
}

// Ping checks that Valkey is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("failed to ping valkey: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}

func (c *Cache) fail(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// Key returns the cache key of a lattice coordinate.
func Key(coord geo.Coordinate, precision int) string {
	k := grid.NewKey(coord, precision)
	return keyPrefix + ":" + strconv.Itoa(precision) + ":" + strconv.Itoa(int(k.LatQ)) + ":" +
		strconv.Itoa(int(k.LonQ))
}
