package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// CORSOrigins lists browser origins allowed to call the API; empty
	// allows any.
	CORSOrigins []string

	IPFS      IPFSConfig
	ENS       ENSConfig
	Publisher PublisherConfig
	Blob      BlobConfig
	Artifact  ArtifactConfig

	BuiltinRegistryPath string
}

type IPFSConfig struct {
	Gateways []string
	// FetchTimeout bounds one gateway request.
	FetchTimeout time.Duration
}

// ENSConfig selects the identity resolver: on-chain when RPCURL is set,
// otherwise the lookup API at APIBaseURL.
type ENSConfig struct {
	RPCURL     string
	APIBaseURL string
}

type PublisherConfig struct {
	RPCURL  string
	Address string
}

// BlobConfig selects the mirror of fetched IPFS documents.
type BlobConfig struct {
	Backend  string
	DSN      string
	DiskRoot string
}

type ArtifactConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (c ArtifactConfig) CanUseS3() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	return FromEnv(*port), nil
}

// FromEnv builds the configuration from environment variables, using port
// unless PORT is set.
func FromEnv(port string) *Config {
	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			port = envPort
		} else {
			port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:        port,
		Env:         env,
		LogLevel:    firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		IPFS: IPFSConfig{
			Gateways:     splitList(os.Getenv("IPFS_GATEWAYS")),
			FetchTimeout: parseDuration(os.Getenv("IPFS_FETCH_TIMEOUT"), 30*time.Second),
		},
		ENS: ENSConfig{
			RPCURL:     strings.TrimSpace(os.Getenv("ETH_RPC_URL")),
			APIBaseURL: strings.TrimSpace(os.Getenv("ENS_API_BASE_URL")),
		},
		Publisher: PublisherConfig{
			RPCURL:  strings.TrimSpace(os.Getenv("PUBLISHER_RPC_URL")),
			Address: strings.TrimSpace(os.Getenv("PUBLISHER_ADDRESS")),
		},
		Blob: BlobConfig{
			Backend:  strings.ToLower(strings.TrimSpace(os.Getenv("BLOB_STORE"))),
			DSN:      strings.TrimSpace(os.Getenv("BLOB_STORE_DSN")),
			DiskRoot: strings.TrimSpace(os.Getenv("BLOB_DISK_ROOT")),
		},
		Artifact:            loadArtifactConfig(env),
		BuiltinRegistryPath: strings.TrimSpace(os.Getenv("BUILTIN_REGISTRY_PATH")),
	}
	if strings.EqualFold(env, "local") {
		applyLocalDefaults(cfg)
	}
	if cfg.Blob.Backend == "" {
		cfg.Blob.Backend = "memory"
	}
	return cfg
}

func loadArtifactConfig(env string) ArtifactConfig {
	return ArtifactConfig{
		Endpoint:  resolveArtifactEndpoint(env),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "contracthub-blobs"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")), strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT")))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
