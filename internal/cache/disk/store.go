// Package disk keeps immutable documents in a local directory. An index
// file records sizes, expiry and recency so a reopened store keeps serving
// what it held before a restart.
package disk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

var ErrClosed = errors.New("disk store is closed")

type Config struct {
	Root       string
	IndexFile  string
	MaxEntries int
	// MaxBytes bounds the total size of stored values; zero means unbounded.
	MaxBytes int64
	TTL      time.Duration
}

type entry struct {
	File      string    `json:"file"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// indexRecord is one line of the index, listed from least to most
// recently used.
type indexRecord struct {
	Key string `json:"key"`
	entry
}

type indexFile struct {
	Entries []indexRecord `json:"entries"`
}

// Store is a size- and count-bounded LRU of files with a per-entry TTL.
// Reads only reorder the in-memory LRU; the index is written on mutation
// and on Flush.
type Store struct {
	mu sync.Mutex

	dataDir   string
	indexPath string
	maxBytes  int64
	ttl       time.Duration

	lru        *simplelru.LRU[string, entry]
	totalBytes int64
	dirty      bool
	closed     bool
	now        func() time.Time
}

func New(cfg Config) (*Store, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, fmt.Errorf("root is required")
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	name := strings.TrimSpace(cfg.IndexFile)
	if name == "" {
		name = "index.json"
	}

	s := &Store{
		dataDir:   filepath.Join(root, "data"),
		indexPath: filepath.Join(root, name),
		maxBytes:  cfg.MaxBytes,
		ttl:       cfg.TTL,
		now:       time.Now,
	}
	lru, err := simplelru.NewLRU[string, entry](cfg.MaxEntries, s.onEvict)
	if err != nil {
		return nil, err
	}
	s.lru = lru
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, err
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return s, s.persistLocked()
}

// onEvict runs under s.mu for every entry leaving the LRU.
func (s *Store) onEvict(_ string, ent entry) {
	s.totalBytes -= ent.Size
	if s.totalBytes < 0 {
		s.totalBytes = 0
	}
	_ = os.Remove(filepath.Join(s.dataDir, ent.File))
	s.dirty = true
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, fmt.Errorf("key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	ent, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if s.now().After(ent.ExpiresAt) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	raw, err := os.ReadFile(filepath.Join(s.dataDir, ent.File))
	if err != nil {
		if os.IsNotExist(err) {
			s.lru.Remove(key)
			return nil, false, nil
		}
		return nil, false, err
	}
	s.dirty = true
	return raw, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	file := fileName(key)
	path := filepath.Join(s.dataDir, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := writeFileAtomic(path, value); err != nil {
		return err
	}
	if old, ok := s.lru.Peek(key); ok {
		s.totalBytes -= old.Size
	}
	size := int64(len(value))
	s.lru.Add(key, entry{File: file, Size: size, ExpiresAt: s.now().Add(s.ttl)})
	s.totalBytes += size
	s.evictLocked()
	return s.persistLocked()
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.lru.Remove(strings.TrimSpace(key)) {
		return s.persistLocked()
	}
	return nil
}

// Keys lists the live keys starting with prefix in sorted order.
func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	now := s.now()
	var keys []string
	for _, key := range s.lru.Keys() {
		ent, ok := s.lru.Peek(key)
		if !ok || now.After(ent.ExpiresAt) || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Purge()
	s.totalBytes = 0
	return s.persistLocked()
}

// Flush writes the index if reads changed recency since the last write.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.closed {
		return nil
	}
	return s.persistLocked()
}

// Close flushes the index. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// evictLocked drops expired entries and then the least recently used ones
// until the byte budget holds.
func (s *Store) evictLocked() {
	now := s.now()
	for _, key := range s.lru.Keys() {
		if ent, ok := s.lru.Peek(key); ok && now.After(ent.ExpiresAt) {
			s.lru.Remove(key)
		}
	}
	for s.maxBytes > 0 && s.totalBytes > s.maxBytes && s.lru.Len() > 0 {
		s.lru.RemoveOldest()
	}
}

func (s *Store) loadIndex() error {
	raw, err := os.ReadFile(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var idx indexFile
	if err := json.Unmarshal(raw, &idx); err != nil {
		return fmt.Errorf("read disk index: %w", err)
	}
	for _, rec := range idx.Entries {
		if _, err := os.Stat(filepath.Join(s.dataDir, rec.File)); err != nil {
			continue
		}
		s.lru.Add(rec.Key, rec.entry)
		s.totalBytes += rec.Size
	}
	return nil
}

func (s *Store) persistLocked() error {
	keys := s.lru.Keys()
	idx := indexFile{Entries: make([]indexRecord, 0, len(keys))}
	for _, key := range keys {
		if ent, ok := s.lru.Peek(key); ok {
			idx.Entries = append(idx.Entries, indexRecord{Key: key, entry: ent})
		}
	}
	raw, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.indexPath, raw); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// fileName shards files by the first byte of the key hash.
func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(h[:2], h+".bin")
}
