// Package storage fetches content-addressed documents from IPFS.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contracthub/internal/contractid"

	"github.com/charmbracelet/log"
)

// maxResponseBody caps the amount of data read from a gateway (10 MiB).
const maxResponseBody int64 = 10 << 20

var (
	ErrFetch    = errors.New("content fetch failed")
	ErrTooLarge = errors.New("content exceeds size limit")
)

// DefaultGateways is used when no gateway is configured.
var DefaultGateways = []string{
	"https://gateway.ipfscdn.io/ipfs/",
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
}

// ContentStore fetches the document behind an ipfs:// URI.
type ContentStore interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// GatewayStore resolves ipfs:// URIs through HTTP gateways. Gateways are
// tried in order; the next one is used when a gateway errors or answers
// with a non-2xx status.
type GatewayStore struct {
	gateways []string
	client   *http.Client
	maxBody  int64
	logger   *log.Logger
}

type GatewayOption func(*GatewayStore)

func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *GatewayStore) {
		if c != nil {
			g.client = c
		}
	}
}

func WithMaxBody(n int64) GatewayOption {
	return func(g *GatewayStore) {
		if n > 0 {
			g.maxBody = n
		}
	}
}

func WithLogger(l *log.Logger) GatewayOption {
	return func(g *GatewayStore) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGatewayStore(gateways []string, opts ...GatewayOption) *GatewayStore {
	cleaned := make([]string, 0, len(gateways))
	for _, gw := range gateways {
		gw = strings.TrimSpace(gw)
		if gw == "" {
			continue
		}
		cleaned = append(cleaned, strings.TrimRight(gw, "/")+"/")
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultGateways...)
	}
	g := &GatewayStore{
		gateways: cleaned,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBody:  maxResponseBody,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GatewayURL returns the primary gateway URL of uri. Non-ipfs values are
// returned unchanged.
func (g *GatewayStore) GatewayURL(uri string) string {
	c, path, err := contractid.ParseURI(uri)
	if err != nil {
		return uri
	}
	return g.gatewayURL(g.gateways[0], c.String(), path)
}

func (g *GatewayStore) gatewayURL(gw, root, path string) string {
	if path == "" {
		return gw + root
	}
	return gw + root + "/" + path
}

func (g *GatewayStore) Fetch(ctx context.Context, uri string) ([]byte, error) {
	c, path, err := contractid.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	canonical := contractid.Canonical(c, path)
	var lastErr error
	for _, gw := range g.gateways {
		target := g.gatewayURL(gw, c.String(), path)
		body, err := g.get(ctx, target)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFetch, canonical, ctx.Err())
		}
		g.logger.Warn("gateway fetch failed", "url", target, "err", err)
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrFetch, canonical, lastErr)
}

func (g *GatewayStore) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if int64(len(body)) > g.maxBody {
		return nil, ErrTooLarge
	}
	return body, nil
}
