package publish

import (
	"context"

	"contracthub/internal/contractabi"
	"contracthub/internal/extension"
	"contracthub/internal/query"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContractABI is the parsed ABI and compiler metadata behind a contract
// identifier. Both are empty when the identifier has no resolvable ABI.
type ContractABI struct {
	ABI      abi.ABI
	Metadata *contractabi.CompilerMetadata
}

func (s *Service) LoadABI(ctx context.Context, id string) (ContractABI, error) {
	record, err := query.Fetch(ctx, s.queries, query.PublishMetadataKey(id), query.Options{}, func(ctx context.Context) (PublishMetadataRecord, error) {
		return s.FetchPublishMetadataFromURI(ctx, id)
	})
	if err != nil {
		return ContractABI{}, err
	}
	parsed, err := contractabi.Parse(record.ABI)
	if err != nil {
		return ContractABI{}, err
	}
	out := ContractABI{ABI: parsed}
	if len(record.CompilerMetadata) > 0 {
		meta, err := contractabi.ParseMetadata(record.CompilerMetadata)
		if err != nil {
			s.logger.Warn("ignoring unreadable compiler metadata", "id", id, "err", err)
		} else {
			out.Metadata = meta
		}
	}
	return out, nil
}

func (s *Service) Functions(ctx context.Context, id string) ([]contractabi.Function, error) {
	c, err := s.LoadABI(ctx, id)
	if err != nil {
		return nil, err
	}
	return contractabi.Functions(c.ABI, c.Metadata), nil
}

func (s *Service) Events(ctx context.Context, id string) ([]contractabi.Event, error) {
	c, err := s.LoadABI(ctx, id)
	if err != nil {
		return nil, err
	}
	return contractabi.Events(c.ABI, c.Metadata), nil
}

func (s *Service) ConstructorParams(ctx context.Context, id string) ([]contractabi.Param, error) {
	c, err := s.LoadABI(ctx, id)
	if err != nil {
		return nil, err
	}
	return contractabi.ConstructorParams(c.ABI), nil
}

func (s *Service) FunctionParams(ctx context.Context, id, name string) ([]contractabi.Param, error) {
	c, err := s.LoadABI(ctx, id)
	if err != nil {
		return nil, err
	}
	return contractabi.FunctionParams(c.ABI, name), nil
}

// Extensions detects the feature tree of the contract behind id and
// partitions it into enabled and suggested extensions.
func (s *Service) Extensions(ctx context.Context, id string) (extension.FeatureSet, extension.ExtractionResult, error) {
	c, err := s.LoadABI(ctx, id)
	if err != nil {
		return extension.FeatureSet{}, extension.ExtractionResult{}, err
	}
	tree := extension.Detect(c.ABI)
	return tree, extension.ExtractExtensions(tree), nil
}
