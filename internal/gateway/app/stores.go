package app

import (
	"fmt"
	"time"

	cacheblob "contracthub/internal/cache/blob"
	"contracthub/internal/cache/disk"
	"contracthub/internal/gateway/config"
	blobrepo "contracthub/internal/gateway/repository/blob"

	"github.com/charmbracelet/log"
)

// initBlobStore builds the mirror of fetched IPFS documents, fronted by an
// in-memory cache.
func initBlobStore(cfg *config.Config, logger *log.Logger) (*cacheblob.CachedStore, func() error, error) {
	origin, closer, err := chooseBlobOrigin(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cacheblob.NewCachedStore(origin, cacheblob.DefaultConfig()), closer, nil
}

func chooseBlobOrigin(cfg *config.Config, logger *log.Logger) (blobrepo.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Blob.Backend {
	case "", "memory":
		logger.Info("blob store: in-memory")
		return blobrepo.NewMemoryStore(), noop, nil
	case "postgres", "sqlite":
		if cfg.Blob.DSN == "" {
			return nil, nil, fmt.Errorf("blob store %s requires BLOB_STORE_DSN", cfg.Blob.Backend)
		}
		store, err := blobrepo.OpenSQLStore(blobrepo.Dialect(cfg.Blob.Backend), cfg.Blob.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s blob store: %w", cfg.Blob.Backend, err)
		}
		logger.Info("blob store: sql", "dialect", cfg.Blob.Backend)
		return store, store.Close, nil
	case "disk":
		store, err := blobrepo.NewDiskStore(disk.Config{
			Root:       cfg.Blob.DiskRoot,
			MaxEntries: 50000,
			MaxBytes:   2 << 30,
			TTL:        7 * 24 * time.Hour,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open disk blob store: %w", err)
		}
		logger.Info("blob store: disk", "root", cfg.Blob.DiskRoot)
		return store, store.Close, nil
	case "s3":
		if !cfg.Artifact.CanUseS3() {
			return nil, nil, fmt.Errorf("blob store s3 requires ARTIFACT_S3_ENDPOINT, credentials and bucket")
		}
		s3Cfg := blobrepo.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		}
		store, err := blobrepo.NewS3Store(s3Cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize blob s3 store: %w", err)
		}
		logger.Info("blob store: s3", "bucket", s3Cfg.Bucket, "endpoint", s3Cfg.Endpoint)
		return store, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob store %q", cfg.Blob.Backend)
	}
}
