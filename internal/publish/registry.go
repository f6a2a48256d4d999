package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"contracthub/internal/query"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the metadata fan-out of list operations.
const maxConcurrentFetches = 8

func (s *Service) registry() (Publisher, error) {
	if s.publisher == nil {
		return nil, ErrRegistryUnavailable
	}
	return s.publisher, nil
}

// FetchPublishedContractInfo loads the publish metadata of one registry
// entry, without identity enrichment.
func (s *Service) FetchPublishedContractInfo(ctx context.Context, c PublishedContract) (PublishedContractInfo, error) {
	meta, err := s.fetchFull(ctx, c.MetadataURI)
	if err != nil {
		return PublishedContractInfo{}, err
	}
	return PublishedContractInfo{
		Name:               meta.Name,
		PublishedTimestamp: c.Timestamp,
		PublishedMetadata:  meta,
	}, nil
}

// FetchAllVersions lists every published version of contractID, newest
// first.
func (s *Service) FetchAllVersions(ctx context.Context, publisher, contractID string) ([]PublishedVersion, error) {
	if contractID == "" {
		return nil, fmt.Errorf("contract name is not defined")
	}
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	address, err := s.publisherAddress(ctx, publisher)
	if err != nil {
		return nil, err
	}
	versions, err := reg.GetAllVersions(ctx, address, contractID)
	if err != nil {
		return nil, fmt.Errorf("get versions of %s: %w", contractID, err)
	}

	out := make([]PublishedVersion, len(versions))
	for i, v := range versions {
		info, err := query.Fetch(ctx, s.queries, query.PublishedContractKey(v.ID, v.MetadataURI), query.Options{},
			func(ctx context.Context) (PublishedContractInfo, error) {
				return s.FetchPublishedContractInfo(ctx, v)
			})
		if err != nil {
			return nil, err
		}
		md := info.PublishedMetadata
		out[len(versions)-1-i] = PublishedVersion{
			PublishedContract: v,
			Version:           md.Version,
			Name:              md.Name,
			DisplayName:       md.DisplayName,
			Description:       md.Description,
			Publisher:         md.Publisher,
			Audit:             md.Audit,
			Logo:              md.Logo,
		}
	}
	return out, nil
}

// FetchPublishedContracts lists the contracts of publisher with their
// metadata. Entries without an id are skipped. An entry whose metadata
// cannot be loaded is returned with empty metadata.
func (s *Service) FetchPublishedContracts(ctx context.Context, publisher string) ([]PublishedContractDetails, error) {
	return s.WatchPublishedContracts(ctx, publisher, nil)
}

// WatchPublishedContracts is FetchPublishedContracts that also reports
// each entry to onItem as soon as its metadata resolves. onItem is called
// from multiple goroutines.
func (s *Service) WatchPublishedContracts(ctx context.Context, publisher string, onItem func(int, PublishedContractDetails)) ([]PublishedContractDetails, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	address, err := s.publisherAddress(ctx, publisher)
	if err != nil {
		return nil, err
	}
	all, err := reg.GetAll(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get published contracts of %s: %w", address, err)
	}
	entries := make([]PublishedContract, 0, len(all))
	for _, c := range all {
		if c.ID != "" {
			entries = append(entries, c)
		}
	}

	out := make([]PublishedContractDetails, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, c := range entries {
		g.Go(func() error {
			meta, err := s.FetchFullPublishMetadata(gctx, c.MetadataURI)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("failed to load published contract metadata", "id", c.ID, "uri", c.MetadataURI, "err", err)
				meta = FullPublishMetadata{}
			}
			out[i] = PublishedContractDetails{PublishedContract: c, Metadata: meta}
			if onItem != nil {
				onItem(i, out[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPublisherProfile loads the profile document of publisher. A
// publisher without a profile gets an empty one.
func (s *Service) FetchPublisherProfile(ctx context.Context, publisher string) (ProfileMetadata, error) {
	reg, err := s.registry()
	if err != nil {
		return ProfileMetadata{}, err
	}
	address, err := s.publisherAddress(ctx, publisher)
	if err != nil {
		return ProfileMetadata{}, err
	}
	uri, err := reg.GetPublisherProfileURI(ctx, address)
	if err != nil {
		return ProfileMetadata{}, fmt.Errorf("get profile uri of %s: %w", address, err)
	}
	if uri == "" {
		return ProfileMetadata{}, nil
	}
	raw, err := s.content.Fetch(ctx, uri)
	if err != nil {
		return ProfileMetadata{}, err
	}
	var profile ProfileMetadata
	if err := json.Unmarshal(raw, &profile); err != nil {
		return ProfileMetadata{}, fmt.Errorf("decode profile %s: %w", uri, err)
	}
	return profile, nil
}
