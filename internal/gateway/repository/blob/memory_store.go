package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, root, path string, content []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	root, path, err := normalizeKey(root, path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[objectKey(root, path)] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, root, path string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	root, path, err := normalizeKey(root, path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[objectKey(root, path)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, root string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	root, _, err := normalizeKey(root, "")
	if err != nil {
		return nil, err
	}
	prefix := root + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 4)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			out = append(out, pathFromKey(root, key))
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetURL is empty: in-memory blobs are not addressable from outside.
func (s *MemoryStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}
