// Package blob fronts the blob mirror with in-process caches. Content under
// a root CID never changes, so cached blobs are never invalidated: only the
// LRU bounds evict them. Listings and download URLs do change (other
// replicas add paths, presigned URLs expire) and are held for a short TTL.
package blob

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	memcache "contracthub/internal/cache/memory"
	blobrepo "contracthub/internal/gateway/repository/blob"

	"golang.org/x/sync/singleflight"
)

type Store = blobrepo.Store

// originReadTimeout bounds a shared origin read, which outlives the caller
// that started it.
const originReadTimeout = 30 * time.Second

type Config struct {
	MaxEntries int
	MaxBytes   int

	ListTTL        time.Duration
	ListMaxEntries int

	// URLTTL must stay below the origin's presigned URL lifetime.
	URLTTL        time.Duration
	URLMaxEntries int
}

func DefaultConfig() Config {
	return Config{
		MaxEntries:     4096,
		MaxBytes:       128 << 20,
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
		URLTTL:         5 * time.Minute,
		URLMaxEntries:  1024,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxEntries <= 0 {
		c.MaxEntries = def.MaxEntries
	}
	if c.MaxBytes < 0 {
		c.MaxBytes = def.MaxBytes
	}
	if c.ListTTL <= 0 {
		c.ListTTL = def.ListTTL
	}
	if c.ListMaxEntries <= 0 {
		c.ListMaxEntries = def.ListMaxEntries
	}
	if c.URLTTL <= 0 {
		c.URLTTL = def.URLTTL
	}
	if c.URLMaxEntries <= 0 {
		c.URLMaxEntries = def.URLMaxEntries
	}
	return c
}

type MetricsSnapshot struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	SharedReads   uint64 `json:"shared_reads"`
	SkippedWrites uint64 `json:"skipped_writes"`
	ListHits      uint64 `json:"list_hits"`
	ListMisses    uint64 `json:"list_misses"`
	URLHits       uint64 `json:"url_hits"`
	URLMisses     uint64 `json:"url_misses"`
	OriginReads   uint64 `json:"origin_reads"`
	OriginWrites  uint64 `json:"origin_writes"`
	OriginErrors  uint64 `json:"origin_errors"`
}

type metrics struct {
	hits, misses, sharedReads, skippedWrites atomic.Uint64
	listHits, listMisses, urlHits, urlMisses atomic.Uint64
	originReads, originWrites, originErrors  atomic.Uint64
}

// CachedStore is a blob Store served from memory where possible.
type CachedStore struct {
	origin Store
	reads  singleflight.Group

	blobs *memcache.LRUTTL[string, []byte]
	lists *memcache.LRUTTL[string, []string]
	urls  *memcache.LRUTTL[string, string]
	m     metrics
}

func NewCachedStore(origin Store, cfg Config) *CachedStore {
	cfg = cfg.withDefaults()
	return &CachedStore{
		origin: origin,
		blobs:  memcache.NewLRUTTL[string, []byte](cfg.MaxEntries, cfg.MaxBytes, memcache.NoExpiry),
		lists:  memcache.NewLRUTTL[string, []string](cfg.ListMaxEntries, 0, cfg.ListTTL),
		urls:   memcache.NewLRUTTL[string, string](cfg.URLMaxEntries, 0, cfg.URLTTL),
	}
}

// Put writes content to the origin unless the key is already held; a key's
// content cannot change once written.
func (s *CachedStore) Put(ctx context.Context, root, path string, content []byte) error {
	root, path = normalize(root, path)
	key := blobKey(root, path)
	if _, ok := s.blobs.Get(key); ok {
		s.m.skippedWrites.Add(1)
		return nil
	}
	s.m.originWrites.Add(1)
	if err := s.origin.Put(ctx, root, path, content); err != nil {
		s.m.originErrors.Add(1)
		return err
	}
	s.blobs.Set(key, slices.Clone(content), len(content))
	s.appendListed(root, path)
	return nil
}

// Get serves a blob from memory, or reads it from the origin once for all
// concurrent callers of the same key. A cancelled caller stops waiting
// without failing the others.
func (s *CachedStore) Get(ctx context.Context, root, path string) ([]byte, error) {
	root, path = normalize(root, path)
	key := blobKey(root, path)
	if raw, ok := s.blobs.Get(key); ok {
		s.m.hits.Add(1)
		return slices.Clone(raw), nil
	}
	s.m.misses.Add(1)

	ch := s.reads.DoChan(key, func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), originReadTimeout)
		defer cancel()
		s.m.originReads.Add(1)
		raw, err := s.origin.Get(readCtx, root, path)
		if err != nil {
			if !blobrepo.IsNotFound(err) {
				s.m.originErrors.Add(1)
			}
			return nil, err
		}
		raw = slices.Clone(raw)
		s.blobs.Set(key, raw, len(raw))
		return raw, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		s.m.sharedReads.Add(1)
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return slices.Clone(res.Val.([]byte)), nil
}

// GetURL returns the origin's download URL for a blob, or "" when the
// origin has none.
func (s *CachedStore) GetURL(ctx context.Context, root, path string) (string, error) {
	root, path = normalize(root, path)
	key := blobKey(root, path)
	if u, ok := s.urls.Get(key); ok {
		s.m.urlHits.Add(1)
		return u, nil
	}
	s.m.urlMisses.Add(1)
	u, err := s.origin.GetURL(ctx, root, path)
	if err != nil {
		s.m.originErrors.Add(1)
		return "", err
	}
	if u != "" {
		s.urls.Set(key, u, len(u))
	}
	return u, nil
}

// List returns the mirrored paths under root.
func (s *CachedStore) List(ctx context.Context, root string) ([]string, error) {
	root, _ = normalize(root, "")
	if paths, ok := s.lists.Get(root); ok {
		s.m.listHits.Add(1)
		return slices.Clone(paths), nil
	}
	s.m.listMisses.Add(1)
	paths, err := s.origin.List(ctx, root)
	if err != nil {
		s.m.originErrors.Add(1)
		return nil, err
	}
	paths = slices.Clone(paths)
	slices.Sort(paths)
	s.lists.Set(root, paths, listSize(paths))
	return slices.Clone(paths), nil
}

// appendListed adds a newly written path to a cached listing. Blobs are
// never removed, so a listing only grows.
func (s *CachedStore) appendListed(root, path string) {
	paths, ok := s.lists.Get(root)
	if !ok {
		return
	}
	i, found := slices.BinarySearch(paths, path)
	if found {
		return
	}
	paths = slices.Insert(slices.Clone(paths), i, path)
	s.lists.Set(root, paths, listSize(paths))
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:          s.m.hits.Load(),
		Misses:        s.m.misses.Load(),
		SharedReads:   s.m.sharedReads.Load(),
		SkippedWrites: s.m.skippedWrites.Load(),
		ListHits:      s.m.listHits.Load(),
		ListMisses:    s.m.listMisses.Load(),
		URLHits:       s.m.urlHits.Load(),
		URLMisses:     s.m.urlMisses.Load(),
		OriginReads:   s.m.originReads.Load(),
		OriginWrites:  s.m.originWrites.Load(),
		OriginErrors:  s.m.originErrors.Load(),
	}
}

func normalize(root, path string) (string, string) {
	return strings.TrimSpace(root), strings.Trim(strings.TrimSpace(path), "/")
}

func blobKey(root, path string) string {
	return root + "/" + path
}

func listSize(paths []string) int {
	n := 0
	for _, p := range paths {
		n += len(p)
	}
	return n
}
