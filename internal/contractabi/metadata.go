package contractabi

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CompilerMetadata is the subset of solc's metadata.json that is read.
type CompilerMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string `json:"language"`
	Output   struct {
		ABI     json.RawMessage `json:"abi"`
		Userdoc Doc             `json:"userdoc"`
		Devdoc  Doc             `json:"devdoc"`
	} `json:"output"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
	Sources map[string]Source `json:"sources"`
}

type Source struct {
	License string `json:"license"`
}

// Doc is a userdoc or devdoc section.
type Doc struct {
	Title   string              `json:"title"`
	Author  string              `json:"author"`
	Details string              `json:"details"`
	Notice  string              `json:"notice"`
	Methods map[string]EntryDoc `json:"methods"`
	Events  map[string]EntryDoc `json:"events"`
}

type EntryDoc struct {
	Notice  string            `json:"notice"`
	Details string            `json:"details"`
	Params  map[string]string `json:"params"`
}

func ParseMetadata(raw []byte) (*CompilerMetadata, error) {
	var m CompilerMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode compiler metadata: %w", err)
	}
	return &m, nil
}

// ContractName is the name of the compilation target.
func (m *CompilerMetadata) ContractName() string {
	if m == nil {
		return ""
	}
	for _, name := range m.Settings.CompilationTarget {
		return name
	}
	return ""
}

// Licenses lists the distinct SPDX identifiers of all sources, sorted.
func (m *CompilerMetadata) Licenses() []string {
	if m == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, src := range m.Sources {
		if src.License == "" {
			continue
		}
		if _, ok := seen[src.License]; ok {
			continue
		}
		seen[src.License] = struct{}{}
		out = append(out, src.License)
	}
	sort.Strings(out)
	return out
}
