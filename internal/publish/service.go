// Package publish composes display metadata for published and
// pre-published contracts from the content store, the publisher registry
// and ENS.
package publish

import (
	"context"
	"errors"
	"fmt"

	"contracthub/internal/builtin"
	"contracthub/internal/ens"
	"contracthub/internal/query"
	"contracthub/internal/storage"

	"github.com/charmbracelet/log"
)

var (
	ErrBuiltIn             = errors.New("built-in contracts have no publish metadata")
	ErrRegistryUnavailable = errors.New("publisher registry not configured")
)

// Publisher reads the on-chain publisher registry.
type Publisher interface {
	GetAll(ctx context.Context, publisher string) ([]PublishedContract, error)
	GetAllVersions(ctx context.Context, publisher, contractID string) ([]PublishedContract, error)
	GetPublisherProfileURI(ctx context.Context, publisher string) (string, error)
}

type Service struct {
	builtins  *builtin.Registry
	content   storage.ContentStore
	resolver  ens.Resolver
	publisher Publisher
	queries   *query.Client
	logger    *log.Logger
}

type Option func(*Service)

func WithResolver(r ens.Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithQueryClient caches identity lookups made while composing records.
func WithQueryClient(q *query.Client) Option {
	return func(s *Service) { s.queries = q }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a Service. builtins may be nil, in which case no identifier
// is treated as built-in.
func New(builtins *builtin.Registry, content storage.ContentStore, opts ...Option) *Service {
	s := &Service{
		builtins: builtins,
		content:  content,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Builtins() *builtin.Registry {
	return s.builtins
}

// resolveIdentity looks up addressOrName through the query cache when one
// is configured.
func (s *Service) resolveIdentity(ctx context.Context, addressOrName string) (ens.Identity, error) {
	if s.resolver == nil {
		return ens.Placeholder(addressOrName), nil
	}
	key := ens.Normalize(addressOrName)
	return query.Fetch(ctx, s.queries, query.ENSKey(key), query.Options{StaleTime: query.ENSStaleTime},
		func(ctx context.Context) (ens.Identity, error) {
			return s.resolver.Resolve(ctx, key)
		})
}

// ResolveIdentity exposes identity resolution to callers outside the
// composition pipeline.
func (s *Service) ResolveIdentity(ctx context.Context, addressOrName string) (ens.Identity, error) {
	if addressOrName == "" {
		return ens.Identity{}, nil
	}
	if !ens.IsAddress(ens.Normalize(addressOrName)) && !ens.IsENSName(ens.Normalize(addressOrName)) {
		return ens.Identity{}, ens.ErrInvalidIdentity
	}
	return s.resolveIdentity(ctx, addressOrName)
}

// publisherAddress turns an address or ENS name into the address the
// registry is keyed by.
func (s *Service) publisherAddress(ctx context.Context, addressOrName string) (string, error) {
	input := ens.Normalize(addressOrName)
	if input == "" {
		return "", fmt.Errorf("%w: empty publisher", ens.ErrInvalidIdentity)
	}
	if ens.IsAddress(input) {
		return input, nil
	}
	if !ens.IsENSName(input) {
		return "", ens.ErrInvalidIdentity
	}
	id, err := s.resolveIdentity(ctx, input)
	if err != nil {
		return "", err
	}
	if id.Address == "" {
		return "", fmt.Errorf("%w: %s", ens.ErrUnresolved, input)
	}
	return id.Address, nil
}
