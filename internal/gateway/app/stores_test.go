package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"contracthub/internal/gateway/config"

	"github.com/charmbracelet/log"
)

func TestInitBlobStoreBackends(t *testing.T) {
	logger := log.New(io.Discard)
	dir := t.TempDir()
	cases := []config.BlobConfig{
		{Backend: "memory"},
		{Backend: "sqlite", DSN: filepath.Join(dir, "blobs.db")},
		{Backend: "disk", DiskRoot: filepath.Join(dir, "disk")},
	}
	for _, bc := range cases {
		t.Run(bc.Backend, func(t *testing.T) {
			cfg := &config.Config{Blob: bc}
			store, closer, err := initBlobStore(cfg, logger)
			if err != nil {
				t.Fatalf("init %s: %v", bc.Backend, err)
			}
			defer func() { _ = closer() }()

			ctx := context.Background()
			if err := store.Put(ctx, "QmRoot", "0", []byte("doc")); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := store.Get(ctx, "QmRoot", "0")
			if err != nil || string(got) != "doc" {
				t.Fatalf("get = %q, %v", got, err)
			}
		})
	}
}

func TestInitBlobStoreRejectsMisconfiguration(t *testing.T) {
	logger := log.New(io.Discard)
	for _, bc := range []config.BlobConfig{
		{Backend: "postgres"},
		{Backend: "s3"},
		{Backend: "cassandra"},
	} {
		if _, _, err := initBlobStore(&config.Config{Blob: bc}, logger); err == nil {
			t.Fatalf("expected error for %+v", bc)
		}
	}
}
