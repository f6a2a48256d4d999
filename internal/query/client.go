// Package query caches the results of keyed upstream reads. Concurrent
// reads of the same key share one upstream call, and successful results
// are served from memory until their stale time passes.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"contracthub/internal/cache/memory"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime   = 5 * time.Minute
	DefaultMaxEntries  = 2048
	// DefaultCallTimeout bounds a shared upstream call, which outlives the
	// caller that started it.
	DefaultCallTimeout = time.Minute

	keySep = "\x1f"
)

// ErrTypeMismatch is returned when a shared call produced a value of a
// different type than the caller expects for the same key.
var ErrTypeMismatch = errors.New("query result type mismatch")

// Key identifies a query; parts are compared in order.
type Key []string

func (k Key) String() string {
	return strings.Join(k, keySep)
}

type Options struct {
	// StaleTime is how long a result is served from cache. Zero uses the
	// client default; negative disables caching for the call.
	StaleTime time.Duration
}

type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Shared  uint64 `json:"shared"`
	Entries int    `json:"entries"`
}

type Client struct {
	cache       *memory.LRUTTL[string, any]
	group       singleflight.Group
	staleTime   time.Duration
	callTimeout time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
	shared atomic.Uint64
}

func NewClient(maxEntries int, staleTime time.Duration) *Client {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Client{
		cache:       memory.NewLRUTTL[string, any](maxEntries, 0, staleTime),
		staleTime:   staleTime,
		callTimeout: DefaultCallTimeout,
	}
}

// Fetch returns the cached value for key or calls fn once for all
// concurrent callers. Errors are returned to every waiting caller and are
// never cached. fn runs detached from the cancellation of any single
// caller, bounded by the client's call timeout; a cancelled caller stops
// waiting without failing the others.
func Fetch[T any](ctx context.Context, c *Client, key Key, opts Options, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return fn(ctx)
	}
	k := key.String()
	if opts.StaleTime >= 0 {
		if v, ok := c.cache.Get(k); ok {
			if typed, ok := v.(T); ok {
				c.hits.Add(1)
				return typed, nil
			}
		}
	}
	c.misses.Add(1)

	ch := c.group.DoChan(k, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()
		v, err := fn(callCtx)
		if err != nil {
			return nil, err
		}
		stale := opts.StaleTime
		if stale == 0 {
			stale = c.staleTime
		}
		if stale > 0 {
			c.cache.SetTTL(k, v, 0, stale)
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("%w: key %s holds %T, want %T", ErrTypeMismatch, strings.Join(key, "/"), res.Val, zero)
		}
		return typed, nil
	}
}

// Invalidate drops every entry whose key starts with prefix and returns
// how many were removed. An empty prefix clears the cache.
func (c *Client) Invalidate(prefix ...string) int {
	if c == nil {
		return 0
	}
	p := Key(prefix).String()
	return c.cache.DeleteFunc(func(k string) bool {
		return p == "" || k == p || strings.HasPrefix(k, p+keySep)
	})
}

func (c *Client) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Shared:  c.shared.Load(),
		Entries: c.cache.Len(),
	}
}
