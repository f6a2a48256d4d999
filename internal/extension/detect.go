package extension

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Strategy selects how DetectFeatures combines several feature names.
type Strategy string

const (
	StrategyAny Strategy = "any"
	StrategyAll Strategy = "all"
)

// Detect builds the feature tree of parsed using the default catalog.
func Detect(parsed abi.ABI) FeatureSet {
	return DetectWith(parsed, Catalog())
}

// DetectWith builds the feature tree of parsed from defs. A feature is
// enabled when its parent is enabled and every function it requires is
// present in the ABI.
func DetectWith(parsed abi.ABI, defs []Definition) FeatureSet {
	present := make(map[string]struct{}, len(parsed.Methods))
	for _, m := range parsed.Methods {
		present[m.RawName] = struct{}{}
	}
	return detectLevel(present, defs, true)
}

func detectLevel(present map[string]struct{}, defs []Definition, parentEnabled bool) FeatureSet {
	var set FeatureSet
	for _, def := range defs {
		enabled := parentEnabled && hasAll(present, def.Functions)
		set.Set(FeatureNode{
			Name:      def.Name,
			Namespace: def.Namespace,
			Enabled:   enabled,
			Features:  detectLevel(present, def.Features, enabled),
		})
	}
	return set
}

func hasAll(present map[string]struct{}, fns []string) bool {
	if len(fns) == 0 {
		return false
	}
	for _, fn := range fns {
		if _, ok := present[fn]; !ok {
			return false
		}
	}
	return true
}

// IsFeatureEnabled searches the whole tree for name.
func IsFeatureEnabled(set FeatureSet, name string) bool {
	for _, n := range set.Nodes() {
		if n.Name == name {
			return n.Enabled
		}
		if IsFeatureEnabled(n.Features, name) {
			return true
		}
	}
	return false
}

// DetectFeatures reports whether any (or all) of names are enabled in set.
// An empty name list never matches.
func DetectFeatures(set FeatureSet, strategy Strategy, names ...string) bool {
	if len(names) == 0 {
		return false
	}
	if strategy == StrategyAll {
		for _, name := range names {
			if !IsFeatureEnabled(set, name) {
				return false
			}
		}
		return true
	}
	for _, name := range names {
		if IsFeatureEnabled(set, name) {
			return true
		}
	}
	return false
}

// EnabledExtensions returns only the enabled extensions of parsed.
func EnabledExtensions(parsed abi.ABI) []FeatureNode {
	return ExtractExtensions(Detect(parsed)).EnabledExtensions
}
