package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"contracthub/internal/builtin"
	"contracthub/internal/cache/disk"
	"contracthub/internal/ens"
	blobrepo "contracthub/internal/gateway/repository/blob"
	"contracthub/internal/publish"
	"contracthub/internal/storage"
	"contracthub/internal/util/jsonutil"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	gateways []string
	cacheDir string
	ensAPI   string
	rpcURL   string
	registry string
	builtins string
	timeout  time.Duration
	verbose  bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "contractctl",
		Short: "Inspect published contract metadata and extensions",
		Long: `contractctl resolves contract metadata the same way the gateway does,
without running a server.

Documents fetched from IPFS are mirrored under --cache-dir when it is set.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringSliceVar(&flags.gateways, "gateway", splitEnv("IPFS_GATEWAYS"), "IPFS HTTP gateways, tried in order")
	pf.StringVar(&flags.cacheDir, "cache-dir", os.Getenv("CONTRACTCTL_CACHE_DIR"), "directory mirroring fetched IPFS documents")
	pf.StringVar(&flags.ensAPI, "ens-api", os.Getenv("ENS_API_BASE_URL"), "base URL of an ENS lookup API")
	pf.StringVar(&flags.rpcURL, "rpc", os.Getenv("ETH_RPC_URL"), "Ethereum JSON-RPC endpoint for ENS and the publisher registry")
	pf.StringVar(&flags.registry, "registry", publish.DefaultRegistryAddress, "publisher registry contract address")
	pf.StringVar(&flags.builtins, "builtins", os.Getenv("BUILTIN_REGISTRY_PATH"), "YAML file overriding built-in contract entries")
	pf.DurationVar(&flags.timeout, "timeout", 30*time.Second, "overall request timeout")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log fetches and fallbacks")

	cmd.AddCommand(
		newExtensionsCommand(),
		newMetadataCommand(flags),
		newENSCommand(flags),
		newVersionsCommand(flags),
	)
	return cmd
}

func splitEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func (f *rootFlags) logger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "contractctl"})
	if f.verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}

// env holds what a subcommand built from the flags, plus the cleanup to run
// when it is done.
type env struct {
	svc     *publish.Service
	closers []func()
}

func (e *env) Close() {
	for _, c := range e.closers {
		c()
	}
}

func (f *rootFlags) service(logger *log.Logger, needPublisher bool) (*env, error) {
	builtins, err := builtin.LoadFile(builtin.Default(), f.builtins)
	if err != nil {
		return nil, err
	}
	e := &env{}

	var content storage.ContentStore = storage.NewGatewayStore(f.gateways,
		storage.WithHTTPClient(&http.Client{Timeout: f.timeout}),
		storage.WithLogger(logger))
	if f.cacheDir != "" {
		mirror, err := blobrepo.NewDiskStore(disk.Config{
			Root:       f.cacheDir,
			MaxEntries: 10000,
			MaxBytes:   512 << 20,
			TTL:        30 * 24 * time.Hour,
		})
		if err != nil {
			return nil, fmt.Errorf("open cache dir: %w", err)
		}
		e.closers = append(e.closers, func() {
			if err := mirror.Close(); err != nil {
				logger.Warn("flush cache index failed", "err", err)
			}
		})
		content = storage.NewMirroredStore(content, mirror, logger)
	}

	opts := []publish.Option{publish.WithLogger(logger)}
	var client *ethclient.Client
	if f.rpcURL != "" {
		client, err = ethclient.Dial(f.rpcURL)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("dial rpc: %w", err)
		}
		e.closers = append(e.closers, client.Close)
	}
	switch {
	case client != nil:
		opts = append(opts, publish.WithResolver(ens.NewChainResolver(client)))
	case f.ensAPI != "":
		opts = append(opts, publish.WithResolver(ens.NewHTTPResolver(f.ensAPI, nil)))
	}
	if needPublisher {
		if client == nil {
			e.Close()
			return nil, fmt.Errorf("--rpc (or ETH_RPC_URL) is required to read the publisher registry")
		}
		pub, err := publish.NewChainPublisher(client, f.registry)
		if err != nil {
			e.Close()
			return nil, err
		}
		opts = append(opts, publish.WithPublisher(pub))
	}
	e.svc = publish.New(builtins, content, opts...)
	return e, nil
}

func printJSON(w io.Writer, v any) error {
	raw, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}
