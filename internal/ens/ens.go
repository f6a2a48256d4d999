// Package ens resolves publisher identities between Ethereum addresses and
// ENS names.
package ens

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidIdentity = errors.New("invalid address or ENS name")
	ErrUnresolved      = errors.New("failed to resolve ENS name")
)

// Identity is the resolved pair. Either side may be empty.
type Identity struct {
	Address string `json:"address"`
	ENSName string `json:"ensName"`
}

type Resolver interface {
	Resolve(ctx context.Context, addressOrName string) (Identity, error)
}

// deployerAlias is the published name of the platform deployer; the bare
// parent name has no address record.
const (
	platformName  = "thirdweb.eth"
	deployerAlias = "deployer.thirdweb.eth"
)

func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == platformName {
		return deployerAlias
	}
	return input
}

func IsAddress(s string) bool {
	return common.IsHexAddress(s)
}

func IsENSName(s string) bool {
	if !strings.HasSuffix(s, ".eth") || len(s) <= len(".eth") {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// Placeholder is what is known about input before any lookup: its address
// when input already is one.
func Placeholder(input string) Identity {
	input = Normalize(input)
	if IsAddress(input) {
		return Identity{Address: input}
	}
	return Identity{}
}

// DisplayName prefers the ENS name, then the address, then fallback.
func DisplayName(id Identity, fallback string) string {
	switch {
	case id.ENSName != "":
		return id.ENSName
	case id.Address != "":
		return id.Address
	default:
		return fallback
	}
}

// classify validates input and reports whether it is an address.
func classify(input string) (bool, error) {
	switch {
	case IsAddress(input):
		return true, nil
	case IsENSName(input):
		return false, nil
	default:
		return false, ErrInvalidIdentity
	}
}
