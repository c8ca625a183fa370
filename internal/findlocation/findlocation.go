// Package findlocation defines the geo-IP resolver collaborator: a single
// resolve address → optional location call. The real database lookup is out
// of scope here; this package only carries the collaborator's shape plus a
// cache, since the aggregator shard awaits this call inline and a
// slow/uncached resolver would stall the single-writer loop.
package findlocation

import (
	"context"
	"sync"

	"github.com/availproject/substrate-telemetry-core/internal/node"
)

// Resolver resolves a node's reported address to an optional location.
type Resolver interface {
	Resolve(ctx context.Context, address string) (*node.NodeLocation, error)
}

// Null is a Resolver that never finds a location, used where no real geo-IP
// backend is wired (tests, and any deployment that doesn't need this field).
type Null struct{}

func (Null) Resolve(context.Context, string) (*node.NodeLocation, error) { return nil, nil }

// Cache decorates a Resolver with an unbounded in-memory cache keyed by
// address, since the same address is resolved repeatedly across
// reconnecting nodes and system-interval churn.
type Cache struct {
	inner Resolver

	mu    sync.RWMutex
	cache map[string]*node.NodeLocation
}

// NewCache wraps inner with an address->location cache.
func NewCache(inner Resolver) *Cache {
	return &Cache{inner: inner, cache: make(map[string]*node.NodeLocation)}
}

func (c *Cache) Resolve(ctx context.Context, address string) (*node.NodeLocation, error) {
	c.mu.RLock()
	if loc, ok := c.cache[address]; ok {
		c.mu.RUnlock()
		return loc, nil
	}
	c.mu.RUnlock()

	loc, err := c.inner.Resolve(ctx, address)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[address] = loc
	c.mu.Unlock()
	return loc, nil
}
