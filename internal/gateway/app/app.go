package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"contracthub/internal/builtin"
	"contracthub/internal/ens"
	"contracthub/internal/gateway/config"
	"contracthub/internal/gateway/handler"
	"contracthub/internal/gateway/server"
	"contracthub/internal/publish"
	"contracthub/internal/query"
	"contracthub/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/ethclient"
)

type App struct {
	server  *server.Server
	logger  *log.Logger
	closers []func() error
}

// NewLogger returns the process logger at the given level name.
func NewLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "contracthub"})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := NewLogger(cfg.LogLevel)
	log.SetDefault(logger)

	// Dependencies
	builtins, err := builtin.LoadFile(builtin.Default(), cfg.BuiltinRegistryPath)
	if err != nil {
		return nil, err
	}
	blobs, closeBlobs, err := initBlobStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{logger: logger, closers: []func() error{closeBlobs}}

	gateway := storage.NewGatewayStore(cfg.IPFS.Gateways,
		storage.WithHTTPClient(&http.Client{Timeout: cfg.IPFS.FetchTimeout}),
		storage.WithLogger(logger))
	content := storage.NewMirroredStore(gateway, blobs, logger)
	queries := query.NewClient(0, 0)

	opts := []publish.Option{publish.WithQueryClient(queries), publish.WithLogger(logger)}
	resolver, err := a.newResolver(cfg)
	if err != nil {
		return nil, err
	}
	if resolver != nil {
		opts = append(opts, publish.WithResolver(ens.NewCachedResolver(resolver, 0, ens.DefaultCacheTTL)))
	}
	if cfg.Publisher.RPCURL != "" {
		client, err := ethclient.Dial(cfg.Publisher.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to dial publisher rpc: %w", err)
		}
		a.closers = append(a.closers, func() error { client.Close(); return nil })
		pub, err := publish.NewChainPublisher(client, cfg.Publisher.Address)
		if err != nil {
			return nil, err
		}
		opts = append(opts, publish.WithPublisher(pub))
	} else {
		logger.Warn("PUBLISHER_RPC_URL not set; publisher registry endpoints are disabled")
	}
	svc := publish.New(builtins, content, opts...)

	// Routing & Server
	h := handler.New(svc, queries, blobs, logger)
	a.server = server.New(cfg.Port, server.NewRouter(h, logger, cfg.CORSOrigins...), logger)
	return a, nil
}

func (a *App) newResolver(cfg *config.Config) (ens.Resolver, error) {
	switch {
	case cfg.ENS.RPCURL != "":
		client, err := ethclient.Dial(cfg.ENS.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to dial ens rpc: %w", err)
		}
		a.closers = append(a.closers, func() error { client.Close(); return nil })
		a.logger.Info("ens resolver: chain")
		return ens.NewChainResolver(client), nil
	case cfg.ENS.APIBaseURL != "":
		a.logger.Info("ens resolver: http", "base", cfg.ENS.APIBaseURL)
		return ens.NewHTTPResolver(cfg.ENS.APIBaseURL, nil), nil
	default:
		a.logger.Warn("no ENS resolver configured; publishers are shown as addresses")
		return nil, nil
	}
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	for _, c := range a.closers {
		err = errors.Join(err, c())
	}
	return err
}
