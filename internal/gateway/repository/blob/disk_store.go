package blob

import (
	"context"

	"contracthub/internal/cache/disk"
)

// DiskStore keeps blobs in a local LRU/TTL directory; used by the CLI and
// single-node deployments.
type DiskStore struct {
	lru *disk.Store
}

func NewDiskStore(cfg disk.Config) (*DiskStore, error) {
	lru, err := disk.New(cfg)
	if err != nil {
		return nil, err
	}
	return &DiskStore{lru: lru}, nil
}

func (s *DiskStore) Put(ctx context.Context, root, path string, content []byte) error {
	root, path, err := normalizeKey(root, path)
	if err != nil {
		return err
	}
	return s.lru.Set(ctx, objectKey(root, path), content)
}

func (s *DiskStore) Get(ctx context.Context, root, path string) ([]byte, error) {
	root, path, err := normalizeKey(root, path)
	if err != nil {
		return nil, err
	}
	raw, ok, err := s.lru.Get(ctx, objectKey(root, path))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (s *DiskStore) List(ctx context.Context, root string) ([]string, error) {
	root, _, err := normalizeKey(root, "")
	if err != nil {
		return nil, err
	}
	keys, err := s.lru.Keys(ctx, root+"/")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, pathFromKey(root, k))
	}
	return out, nil
}

func (s *DiskStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}

// Close writes pending index changes.
func (s *DiskStore) Close() error {
	return s.lru.Close()
}
