package config

import (
	"os"
	"path/filepath"
	"strings"
)

// applyLocalDefaults fills in what a developer machine is expected to have:
// a sqlite mirror under tmp/ and the public ENS lookup API.
func applyLocalDefaults(cfg *Config) {
	if cfg.Blob.Backend == "" {
		cfg.Blob.Backend = "sqlite"
	}
	if cfg.Blob.Backend == "sqlite" && cfg.Blob.DSN == "" {
		cfg.Blob.DSN = filepath.Join("tmp", "blobs.db")
	}
	if cfg.Blob.DiskRoot == "" {
		cfg.Blob.DiskRoot = filepath.Join("tmp", "blobs")
	}
	if cfg.ENS.RPCURL == "" && cfg.ENS.APIBaseURL == "" {
		cfg.ENS.APIBaseURL = firstNonEmpty(strings.TrimSpace(os.Getenv("ENS_API_BASE_URL")), "https://thirdweb.com")
	}
}
