// Package builtin holds the table of contract templates shipped with the
// platform. Built-in contracts are addressed by a fixed key instead of a
// content-addressed URI.
package builtin

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Entry struct {
	Icon        string `yaml:"icon" json:"icon"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	ComingSoon  bool   `yaml:"comingSoon" json:"comingSoon"`
}

// Registry maps built-in keys to their display entries. It is read-only
// once constructed and safe to share.
type Registry struct {
	entries map[string]Entry
}

func New(entries map[string]Entry) *Registry {
	cp := make(map[string]Entry, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return &Registry{entries: cp}
}

// Default returns a fresh registry of the prebuilt contracts.
func Default() *Registry {
	return New(map[string]Entry{
		"drop-erc721": {
			Icon:        "/assets/tw-icons/nft-drop.svg",
			Title:       "NFT Drop",
			Description: "Release collection of unique NFTs for a set price",
		},
		"signature-drop": {
			Icon:        "/assets/tw-icons/signature-drop.svg",
			Title:       "Signature Drop",
			Description: "Signature based minting of ERC721 tokens.",
		},
		"drop-erc1155": {
			Icon:        "/assets/tw-icons/edition-drop.svg",
			Title:       "Edition Drop",
			Description: "Release ERC1155 tokens for a set price.",
		},
		"drop-erc20": {
			Icon:        "/assets/tw-icons/token-drop.svg",
			Title:       "Token Drop",
			Description: "Release new ERC20 tokens for a set price",
		},
		"token-erc20": {
			Icon:        "/assets/tw-icons/token.svg",
			Title:       "Token",
			Description: "Create cryptocurrency compliant with ERC20 standard",
		},
		"token-erc721": {
			Icon:        "/assets/tw-icons/nft-collection.svg",
			Title:       "NFT Collection",
			Description: "Create collection of unique NFTs.",
		},
		"token-erc1155": {
			Icon:        "/assets/tw-icons/edition.svg",
			Title:       "Edition",
			Description: "Create editions of ERC1155 tokens",
		},
		"marketplace": {
			Icon:        "/assets/tw-icons/marketplace.svg",
			Title:       "Marketplace",
			Description: "Buy and sell ERC721/ERC1155 tokens",
		},
		"multiwrap": {
			Icon:        "/assets/tw-icons/multiwrap.svg",
			Title:       "Multiwrap",
			Description: "Bundle multiple ERC721/ERC1155/ERC20 tokens into a single ERC721.",
		},
		"pack": {
			Icon:        "/assets/tw-icons/pack.svg",
			Title:       "Pack",
			Description: "Pack multiple tokens into ERC1155 NFTs that act as randomized loot boxes",
		},
		"split": {
			Icon:        "/assets/tw-icons/split.svg",
			Title:       "Split",
			Description: "Distribute funds among multiple recipients",
		},
		"vote": {
			Icon:        "/assets/tw-icons/vote.svg",
			Title:       "Vote",
			Description: "Create a decentralized organization for token holders to vote on proposals",
		},
	})
}

// Lookup returns the entry for an exact key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[key]
	return e, ok
}

func (r *Registry) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new registry with overrides applied on top of r.
func (r *Registry) Merge(overrides map[string]Entry) *Registry {
	merged := make(map[string]Entry)
	if r != nil {
		for k, v := range r.entries {
			merged[k] = v
		}
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return &Registry{entries: merged}
}

// LoadFile reads a YAML mapping of key to entry and merges it over base.
// An empty path returns base unchanged.
func LoadFile(base *Registry, path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read builtin registry: %w", err)
	}
	overrides := map[string]Entry{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse builtin registry %s: %w", path, err)
	}
	for k := range overrides {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("parse builtin registry %s: empty key", path)
		}
	}
	return base.Merge(overrides), nil
}
