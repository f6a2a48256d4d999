package extension

// RootParent is the parent name used for the top level of a feature tree.
const RootParent = "__ROOT__"

// alwaysSuggested features are suggested whenever they are disabled,
// regardless of their parent.
var alwaysSuggested = [...]string{"ContractMetadata", "Permissions"}

// ExtractionResult partitions a feature tree into enabled and suggested
// extensions in depth-first order.
type ExtractionResult struct {
	EnabledExtensions   []FeatureNode `json:"enabledExtensions"`
	SuggestedExtensions []FeatureNode `json:"suggestedExtensions"`
}

// IsAlwaysSuggested reports whether name belongs to the fixed
// always-suggested set.
func IsAlwaysSuggested(name string) bool {
	for _, n := range alwaysSuggested {
		if n == name {
			return true
		}
	}
	return false
}

// ExtractExtensions walks tree with fresh accumulators from the root.
func ExtractExtensions(tree FeatureSet) ExtractionResult {
	res := ExtractionResult{
		EnabledExtensions:   []FeatureNode{},
		SuggestedExtensions: []FeatureNode{},
	}
	Extract(tree, &res, RootParent)
	return res
}

// Extract appends the nodes of tree to acc and returns acc.
//
// An enabled node goes to the enabled list. A disabled node goes to the
// suggested list when its parent is already enabled or its name is always
// suggested. Every node is then walked with itself as parent. Names are not
// deduplicated across different parents, so a feature nested under two
// enabled parents is reported twice.
func Extract(tree FeatureSet, acc *ExtractionResult, parent string) *ExtractionResult {
	if acc == nil {
		acc = &ExtractionResult{}
	}
	for _, node := range tree.Nodes() {
		switch {
		case node.Enabled:
			acc.EnabledExtensions = append(acc.EnabledExtensions, node)
		case containsName(acc.EnabledExtensions, parent) || IsAlwaysSuggested(node.Name):
			acc.SuggestedExtensions = append(acc.SuggestedExtensions, node)
		}
		Extract(node.Features, acc, node.Name)
	}
	return acc
}

func containsName(nodes []FeatureNode, name string) bool {
	for _, n := range nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}
