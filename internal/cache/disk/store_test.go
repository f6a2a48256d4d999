package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = t.TempDir()
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Minute
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestStoreTTLExpiry(t *testing.T) {
	store := newTestStore(t, Config{MaxEntries: 10})
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Set(ctx, "QmRoot/0", []byte("{}")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := store.Get(ctx, "QmRoot/0"); err != nil || !ok {
		t.Fatalf("get before expiry: ok=%v err=%v", ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, err := store.Get(ctx, "QmRoot/0"); err != nil {
		t.Fatalf("get after expiry: %v", err)
	} else if ok {
		t.Fatalf("expected miss after ttl expiry")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be dropped, len=%d", store.Len())
	}
}

func TestStoreKeysByPrefix(t *testing.T) {
	store := newTestStore(t, Config{MaxEntries: 10})
	ctx := context.Background()
	for _, k := range []string{"QmB/1", "QmA/2", "QmA/1"} {
		if err := store.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	keys, err := store.Keys(ctx, "QmA/")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "QmA/1" || keys[1] != "QmA/2" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := newTestStore(t, Config{MaxEntries: 2})
	ctx := context.Background()

	for _, k := range []string{"a", "b"} {
		if err := store.Set(ctx, k, []byte(k+k)); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if _, ok, err := store.Get(ctx, "a"); err != nil || !ok {
		t.Fatalf("touch a: ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "c", []byte("cc")); err != nil {
		t.Fatalf("set c: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok, err := store.Get(ctx, k); err != nil || !ok {
			t.Fatalf("expected %s to remain: ok=%v err=%v", k, ok, err)
		}
	}
}

func TestStoreByteBudget(t *testing.T) {
	store := newTestStore(t, Config{MaxEntries: 10, MaxBytes: 8})
	ctx := context.Background()

	if err := store.Set(ctx, "old", []byte("12345")); err != nil {
		t.Fatalf("set old: %v", err)
	}
	if err := store.Set(ctx, "new", []byte("67890")); err != nil {
		t.Fatalf("set new: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "old"); ok {
		t.Fatalf("expected old to be evicted by the byte budget")
	}
	if _, ok, _ := store.Get(ctx, "new"); !ok {
		t.Fatalf("expected new to remain")
	}
}

func TestStoreOverwriteKeepsByteCount(t *testing.T) {
	store := newTestStore(t, Config{MaxEntries: 10, MaxBytes: 6})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Set(ctx, "k", []byte("abcdef")); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatalf("rewriting a key must not evict it")
	}
}

func TestStoreRestoresFromIndex(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store := newTestStore(t, Config{Root: root, MaxEntries: 2})
	for _, k := range []string{"first", "second"} {
		if err := store.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if _, ok, _ := store.Get(ctx, "first"); !ok {
		t.Fatalf("touch first")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, _, err := store.Get(ctx, "first"); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	reopened := newTestStore(t, Config{Root: root, MaxEntries: 2})
	raw, ok, err := reopened.Get(ctx, "first")
	if err != nil || !ok || string(raw) != "first" {
		t.Fatalf("persisted key: raw=%q ok=%v err=%v", raw, ok, err)
	}
	// Recency survived the restart, so "second" is now the oldest.
	if err := reopened.Set(ctx, "third", []byte("third")); err != nil {
		t.Fatalf("set third: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "second"); ok {
		t.Fatalf("expected second to be evicted after reopen")
	}
}

func TestStoreSkipsMissingFilesOnLoad(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	store := newTestStore(t, Config{Root: root})
	if err := store.Set(ctx, "gone", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := os.RemoveAll(filepath.Join(root, "data")); err != nil {
		t.Fatalf("remove data: %v", err)
	}

	reopened := newTestStore(t, Config{Root: root})
	if reopened.Len() != 0 {
		t.Fatalf("expected index entries without files to be dropped, len=%d", reopened.Len())
	}
}
