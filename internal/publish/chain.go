package publish

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultRegistryAddress is the publisher registry on Polygon.
const DefaultRegistryAddress = "0xf5b896Ddb5146D5dA77efF4efBb3Eae36E300808"

const publisherRegistryABI = `[
	{"type":"function","name":"getAllPublishedContracts","stateMutability":"view",
	 "inputs":[{"name":"_publisher","type":"address"}],
	 "outputs":[{"name":"published","type":"tuple[]","components":[
		{"name":"contractId","type":"string"},
		{"name":"publishTimestamp","type":"uint256"},
		{"name":"publishMetadataUri","type":"string"},
		{"name":"bytecodeHash","type":"bytes32"},
		{"name":"implementation","type":"address"}]}]},
	{"type":"function","name":"getPublishedContractVersions","stateMutability":"view",
	 "inputs":[{"name":"_publisher","type":"address"},{"name":"_contractId","type":"string"}],
	 "outputs":[{"name":"published","type":"tuple[]","components":[
		{"name":"contractId","type":"string"},
		{"name":"publishTimestamp","type":"uint256"},
		{"name":"publishMetadataUri","type":"string"},
		{"name":"bytecodeHash","type":"bytes32"},
		{"name":"implementation","type":"address"}]}]},
	{"type":"function","name":"getPublisherProfileUri","stateMutability":"view",
	 "inputs":[{"name":"publisher","type":"address"}],
	 "outputs":[{"name":"uri","type":"string"}]}
]`

var parsedPublisherRegistry = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(publisherRegistryABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// publishedTuple mirrors the registry's CustomContractInstance struct.
type publishedTuple struct {
	ContractId         string
	PublishTimestamp   *big.Int
	PublishMetadataUri string
	BytecodeHash       [32]byte
	Implementation     common.Address
}

// ContractCaller is the read-only subset of ethclient.Client used here.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ChainPublisher reads the publisher registry contract.
type ChainPublisher struct {
	client  ContractCaller
	address common.Address
}

func NewChainPublisher(client ContractCaller, registry string) (*ChainPublisher, error) {
	if registry == "" {
		registry = DefaultRegistryAddress
	}
	if !common.IsHexAddress(registry) {
		return nil, fmt.Errorf("invalid registry address %q", registry)
	}
	return &ChainPublisher{client: client, address: common.HexToAddress(registry)}, nil
}

// GetAll returns the latest entry of each contract id of publisher, in
// order of first publication.
func (p *ChainPublisher) GetAll(ctx context.Context, publisher string) ([]PublishedContract, error) {
	tuples, err := p.published(ctx, "getAllPublishedContracts", common.HexToAddress(publisher))
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	out := make([]PublishedContract, 0, len(tuples))
	for _, t := range tuples {
		c := toPublishedContract(t)
		if i, ok := index[c.ID]; ok {
			out[i] = c
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	return out, nil
}

func (p *ChainPublisher) GetAllVersions(ctx context.Context, publisher, contractID string) ([]PublishedContract, error) {
	tuples, err := p.published(ctx, "getPublishedContractVersions", common.HexToAddress(publisher), contractID)
	if err != nil {
		return nil, err
	}
	out := make([]PublishedContract, 0, len(tuples))
	for _, t := range tuples {
		out = append(out, toPublishedContract(t))
	}
	return out, nil
}

func (p *ChainPublisher) GetPublisherProfileURI(ctx context.Context, publisher string) (string, error) {
	out, err := p.call(ctx, "getPublisherProfileUri", common.HexToAddress(publisher))
	if err != nil || len(out) == 0 {
		return "", err
	}
	uri, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("getPublisherProfileUri: unexpected %T", out[0])
	}
	return uri, nil
}

func (p *ChainPublisher) published(ctx context.Context, method string, args ...any) ([]publishedTuple, error) {
	out, err := p.call(ctx, method, args...)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	tuples, ok := abi.ConvertType(out[0], new([]publishedTuple)).(*[]publishedTuple)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected %T", method, out[0])
	}
	return *tuples, nil
}

func (p *ChainPublisher) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := parsedPublisherRegistry.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	result, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &p.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(result) == 0 {
		return nil, nil
	}
	out, err := parsedPublisherRegistry.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

func toPublishedContract(t publishedTuple) PublishedContract {
	ts := "0"
	if t.PublishTimestamp != nil {
		ts = t.PublishTimestamp.String()
	}
	return PublishedContract{
		ID:          t.ContractId,
		Timestamp:   ts,
		MetadataURI: t.PublishMetadataUri,
	}
}
