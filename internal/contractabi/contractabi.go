// Package contractabi extracts constructor, function and event parameter
// views from contract ABIs, annotated with natspec from compiler metadata.
package contractabi

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

type Param struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

type Function struct {
	Name            string  `json:"name"`
	Signature       string  `json:"signature"`
	StateMutability string  `json:"stateMutability"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	Comment         string  `json:"comment,omitempty"`
}

type Event struct {
	Name      string  `json:"name"`
	Signature string  `json:"signature"`
	Inputs    []Param `json:"inputs"`
	Comment   string  `json:"comment,omitempty"`
}

func Parse(raw []byte) (abi.ABI, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return abi.ABI{}, nil
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}

func params(args abi.Arguments) []Param {
	out := make([]Param, 0, len(args))
	for _, a := range args {
		out = append(out, Param{Name: a.Name, Type: a.Type.String(), Indexed: a.Indexed})
	}
	return out
}

func ConstructorParams(parsed abi.ABI) []Param {
	return params(parsed.Constructor.Inputs)
}

// FunctionParams returns the inputs of the first function named name.
// Overloads are ordered by signature.
func FunctionParams(parsed abi.ABI, name string) []Param {
	for _, fn := range sortedMethods(parsed) {
		if fn.RawName == name {
			return params(fn.Inputs)
		}
	}
	return []Param{}
}

func sortedMethods(parsed abi.ABI) []abi.Method {
	methods := make([]abi.Method, 0, len(parsed.Methods))
	for _, m := range parsed.Methods {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].RawName != methods[j].RawName {
			return methods[i].RawName < methods[j].RawName
		}
		return methods[i].Sig < methods[j].Sig
	})
	return methods
}

// Functions lists every function of parsed. meta may be nil.
func Functions(parsed abi.ABI, meta *CompilerMetadata) []Function {
	methods := sortedMethods(parsed)
	var docs []map[string]EntryDoc
	if meta != nil {
		docs = []map[string]EntryDoc{meta.Output.Userdoc.Methods, meta.Output.Devdoc.Methods}
	}
	out := make([]Function, 0, len(methods))
	for _, m := range methods {
		out = append(out, Function{
			Name:            m.RawName,
			Signature:       m.Sig,
			StateMutability: m.StateMutability,
			Inputs:          params(m.Inputs),
			Outputs:         params(m.Outputs),
			Comment:         comment(m.RawName, m.Sig, docs...),
		})
	}
	return out
}

func Events(parsed abi.ABI, meta *CompilerMetadata) []Event {
	events := make([]abi.Event, 0, len(parsed.Events))
	for _, e := range parsed.Events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].RawName != events[j].RawName {
			return events[i].RawName < events[j].RawName
		}
		return events[i].Sig < events[j].Sig
	})
	var docs []map[string]EntryDoc
	if meta != nil {
		docs = []map[string]EntryDoc{meta.Output.Userdoc.Events, meta.Output.Devdoc.Events}
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, Event{
			Name:      e.RawName,
			Signature: e.Sig,
			Inputs:    params(e.Inputs),
			Comment:   comment(e.RawName, e.Sig, docs...),
		})
	}
	return out
}

// comment picks the first notice (userdoc) or details (devdoc) entry for
// sig, falling back to any overload of name.
func comment(name, sig string, docs ...map[string]EntryDoc) string {
	for _, doc := range docs {
		if d, ok := doc[sig]; ok {
			if text := d.text(); text != "" {
				return text
			}
		}
	}
	prefix := name + "("
	for _, doc := range docs {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if text := doc[k].text(); text != "" {
				return text
			}
		}
	}
	return ""
}

func (d EntryDoc) text() string {
	if d.Notice != "" {
		return d.Notice
	}
	return d.Details
}
