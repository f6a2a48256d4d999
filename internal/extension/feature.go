package extension

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureNode is one detected capability of a contract, possibly carrying
// nested sub-capabilities.
type FeatureNode struct {
	Name      string     `json:"name"`
	Namespace string     `json:"namespace,omitempty"`
	Enabled   bool       `json:"enabled"`
	Features  FeatureSet `json:"features"`
}

// FeatureSet is an ordered mapping of feature name to node. Iteration order
// is the insertion order, which callers rely on for stable rendering.
type FeatureSet struct {
	keys  []string
	nodes map[string]FeatureNode
}

// NewFeatureSet builds a set from nodes in the given order. Later nodes
// with a name already present replace the earlier value in place.
func NewFeatureSet(nodes ...FeatureNode) FeatureSet {
	var s FeatureSet
	for _, n := range nodes {
		s.Set(n)
	}
	return s
}

func (s *FeatureSet) Set(n FeatureNode) {
	if s.nodes == nil {
		s.nodes = make(map[string]FeatureNode)
	}
	if _, ok := s.nodes[n.Name]; !ok {
		s.keys = append(s.keys, n.Name)
	}
	s.nodes[n.Name] = n
}

func (s FeatureSet) Get(name string) (FeatureNode, bool) {
	n, ok := s.nodes[name]
	return n, ok
}

func (s FeatureSet) Len() int {
	return len(s.keys)
}

func (s FeatureSet) Names() []string {
	return append([]string(nil), s.keys...)
}

// Nodes returns the children in insertion order.
func (s FeatureSet) Nodes() []FeatureNode {
	out := make([]FeatureNode, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.nodes[k])
	}
	return out
}

func (s FeatureSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(s.nodes[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the document order of its
// keys. A null value decodes to an empty set.
func (s *FeatureSet) UnmarshalJSON(data []byte) error {
	*s = FeatureSet{}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("feature set: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("feature set: expected key, got %v", keyTok)
		}
		var node FeatureNode
		if err := dec.Decode(&node); err != nil {
			return fmt.Errorf("feature set: decode %q: %w", key, err)
		}
		if node.Name == "" {
			node.Name = key
		}
		s.Set(node)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
