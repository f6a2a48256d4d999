package ens

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RegistryAddress is the ENS registry on Ethereum mainnet.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const registryABI = `[
	{"type":"function","name":"resolver","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

const resolverABI = `[
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"string"}]}
]`

var (
	parsedRegistry = mustParse(registryABI)
	parsedResolver = mustParse(resolverABI)
)

func mustParse(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ContractCaller is the read-only subset of ethclient.Client used here.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ChainResolver reads ENS records directly from the registry contract.
type ChainResolver struct {
	client   ContractCaller
	registry common.Address
}

func NewChainResolver(client ContractCaller) *ChainResolver {
	return &ChainResolver{client: client, registry: RegistryAddress}
}

// Namehash implements the EIP-137 name hash.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node.Bytes(), label))
	}
	return node
}

func reverseName(addr common.Address) string {
	return strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse"
}

func (r *ChainResolver) Resolve(ctx context.Context, addressOrName string) (Identity, error) {
	input := Normalize(addressOrName)
	if input == "" {
		return Identity{}, nil
	}
	isAddr, err := classify(input)
	if err != nil {
		return Identity{}, err
	}
	if isAddr {
		addr := common.HexToAddress(input)
		name, err := r.lookupName(ctx, addr)
		if err != nil {
			return Identity{}, err
		}
		return Identity{Address: addr.Hex(), ENSName: name}, nil
	}

	addr, err := r.lookupAddress(ctx, input)
	if err != nil {
		return Identity{}, err
	}
	if addr == (common.Address{}) {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnresolved, input)
	}
	return Identity{Address: addr.Hex(), ENSName: input}, nil
}

func (r *ChainResolver) lookupAddress(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)
	resolver, err := r.resolverOf(ctx, node)
	if err != nil || resolver == (common.Address{}) {
		return common.Address{}, err
	}
	var addr common.Address
	if err := r.call(ctx, parsedResolver, resolver, "addr", &addr, node); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// lookupName returns the primary name of addr, or "" when there is none
// or the name does not resolve back to addr.
func (r *ChainResolver) lookupName(ctx context.Context, addr common.Address) (string, error) {
	node := Namehash(reverseName(addr))
	resolver, err := r.resolverOf(ctx, node)
	if err != nil || resolver == (common.Address{}) {
		return "", err
	}
	var name string
	if err := r.call(ctx, parsedResolver, resolver, "name", &name, node); err != nil {
		return "", err
	}
	if name == "" {
		return "", nil
	}
	forward, err := r.lookupAddress(ctx, name)
	if err != nil {
		return "", err
	}
	if forward != addr {
		return "", nil
	}
	return name, nil
}

func (r *ChainResolver) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	var resolver common.Address
	if err := r.call(ctx, parsedRegistry, r.registry, "resolver", &resolver, node); err != nil {
		return common.Address{}, err
	}
	return resolver, nil
}

func (r *ChainResolver) call(ctx context.Context, contract abi.ABI, to common.Address, method string, out any, node common.Hash) error {
	data, err := contract.Pack(method, [32]byte(node))
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}
	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	// No code at the target answers with empty data.
	if len(result) == 0 {
		return nil
	}
	if err := contract.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("unpack %s: %w", method, err)
	}
	return nil
}
