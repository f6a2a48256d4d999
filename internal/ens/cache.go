package ens

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = time.Hour
)

// CachedResolver memoises successful lookups for a fixed TTL. Failures are
// not cached and not retried.
type CachedResolver struct {
	next  Resolver
	cache *expirable.LRU[string, Identity]
}

func NewCachedResolver(next Resolver, size int, ttl time.Duration) *CachedResolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{
		next:  next,
		cache: expirable.NewLRU[string, Identity](size, nil, ttl),
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, addressOrName string) (Identity, error) {
	key := Normalize(addressOrName)
	if id, ok := c.cache.Get(key); ok {
		return id, nil
	}
	id, err := c.next.Resolve(ctx, key)
	if err != nil {
		return Identity{}, err
	}
	c.cache.Add(key, id)
	return id, nil
}

func (c *CachedResolver) Purge() {
	c.cache.Purge()
}
