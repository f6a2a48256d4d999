package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"contracthub/internal/contractabi"
	"contracthub/internal/contractid"
	"contracthub/internal/ens"
	"contracthub/internal/query"
)

type predeployDocument struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	MetadataURI string `json:"metadataUri"`
	BytecodeURI string `json:"bytecodeUri"`
	Analytics   Fields `json:"analytics"`
}

// FetchPublishMetadataFromURI returns the display metadata of a contract
// identifier. Built-in identifiers are answered from the registry without
// I/O. For external identifiers any resolution failure degrades to the
// fallback record; only an invalid identifier is an error.
func (s *Service) FetchPublishMetadataFromURI(ctx context.Context, id string) (PublishMetadataRecord, error) {
	if err := contractid.Validate(id); err != nil {
		return PublishMetadataRecord{}, err
	}
	uri := contractid.ToIPFSHash(id, s.builtins)
	if contractid.IsBuiltIn(id, s.builtins) {
		entry, _ := s.builtins.Lookup(uri)
		description := entry.Description
		deployDisabled := entry.ComingSoon
		return PublishMetadataRecord{
			Image:          entry.Icon,
			Name:           entry.Title,
			DeployDisabled: &deployDisabled,
			Description:    &description,
		}, nil
	}

	resolved, err := query.Fetch(ctx, s.queries, query.PrePublishMetadataKey(uri), query.Options{},
		func(ctx context.Context) (*PreDeployMetadata, error) {
			return s.ResolvePreDeployMetadata(ctx, uri)
		})
	if err != nil {
		if ctx.Err() != nil {
			return PublishMetadataRecord{}, ctx.Err()
		}
		s.logger.Warn("failed to resolve predeploy metadata", "uri", uri, "err", err)
		return fallbackRecord(), nil
	}

	image := resolved.Image
	if image == "" {
		image = DefaultImage
	}
	// resolved is shared with the query cache; the record gets its own
	// slices.
	description := resolved.Info.String("title")
	return PublishMetadataRecord{
		Image:            image,
		Name:             resolved.Name,
		Description:      &description,
		ABI:              slices.Clone(resolved.ABI),
		Info:             resolved.Info.StripAbsent(),
		Licenses:         slices.Clone(resolved.Licenses),
		CompilerMetadata: slices.Clone(resolved.Metadata),
		Analytics:        resolved.Analytics.StripAbsent(),
	}, nil
}

// ResolvePreDeployMetadata loads the predeploy document at uri and the
// compiler metadata it references.
func (s *Service) ResolvePreDeployMetadata(ctx context.Context, uri string) (*PreDeployMetadata, error) {
	raw, err := s.content.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	var doc predeployDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode predeploy metadata %s: %w", uri, err)
	}
	if doc.MetadataURI == "" {
		return nil, fmt.Errorf("predeploy metadata %s: missing metadataUri", uri)
	}

	metaRaw, err := s.content.Fetch(ctx, doc.MetadataURI)
	if err != nil {
		return nil, err
	}
	meta, err := contractabi.ParseMetadata(metaRaw)
	if err != nil {
		return nil, err
	}

	name := meta.ContractName()
	if name == "" {
		name = doc.Name
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, metaRaw); err != nil {
		return nil, fmt.Errorf("compact compiler metadata: %w", err)
	}
	return &PreDeployMetadata{
		Name:        name,
		Image:       doc.Image,
		MetadataURI: doc.MetadataURI,
		BytecodeURI: doc.BytecodeURI,
		Analytics:   doc.Analytics,
		ABI:         nonNull(meta.Output.ABI),
		Info: Fields{
			"title":   optional(meta.Output.Devdoc.Title),
			"author":  optional(meta.Output.Devdoc.Author),
			"details": optional(meta.Output.Devdoc.Details),
			"notice":  optional(meta.Output.Userdoc.Notice),
		},
		Licenses: meta.Licenses(),
		Metadata: compact.Bytes(),
	}, nil
}

// FetchFullPublishMetadata loads post-publish metadata and replaces the
// publisher with its display identity. Identity lookup failures keep the
// original value.
func (s *Service) FetchFullPublishMetadata(ctx context.Context, uri string) (FullPublishMetadata, error) {
	if err := contractid.Validate(uri); err != nil {
		return FullPublishMetadata{}, err
	}
	if contractid.IsBuiltIn(uri, s.builtins) {
		return FullPublishMetadata{}, ErrBuiltIn
	}
	meta, err := s.fetchFull(ctx, contractid.ToIPFSHash(uri, s.builtins))
	if err != nil {
		return FullPublishMetadata{}, err
	}
	s.enrichPublisher(ctx, &meta)
	return meta, nil
}

func (s *Service) enrichPublisher(ctx context.Context, meta *FullPublishMetadata) {
	if meta.Publisher == "" {
		return
	}
	id, err := s.resolveIdentity(ctx, meta.Publisher)
	if err != nil {
		s.logger.Warn("publisher identity lookup failed", "publisher", meta.Publisher, "err", err)
	}
	meta.Publisher = ens.DisplayName(id, meta.Publisher)
}

func (s *Service) fetchFull(ctx context.Context, uri string) (FullPublishMetadata, error) {
	raw, err := s.content.Fetch(ctx, uri)
	if err != nil {
		return FullPublishMetadata{}, err
	}
	var meta FullPublishMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return FullPublishMetadata{}, fmt.Errorf("decode publish metadata %s: %w", uri, err)
	}
	return meta, nil
}

// optional maps an empty string to an absent value.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNull(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return trimmed
	}
	return compact.Bytes()
}
