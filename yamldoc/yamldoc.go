package yamldoc

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is one node of a parsed document: *Mapping, Sequence, or a scalar
// (string, int, float64, bool, or nil).
type Value any

// Sequence is an ordered list of values.
type Sequence []Value

// DuplicateKey records a mapping key that appeared more than once.
// The first occurrence stays in the Mapping; later ones are recorded here.
type DuplicateKey struct {
	Key  string
	Line int
}

// Mapping is an ordered set of key/value pairs.
type Mapping struct {
	keys  []string
	items map[string]Value
	dups  []DuplicateKey
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{items: make(map[string]Value)}
}

// Len returns the number of distinct keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in document order. The returned slice is a copy.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value for key and whether the key is present.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.items[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores key → v. A new key is appended; an existing key keeps its
// position and has its value replaced.
func (m *Mapping) Set(key string, v Value) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

// Duplicates returns the duplicate keys seen while parsing, in document order.
func (m *Mapping) Duplicates() []DuplicateKey {
	if m == nil {
		return nil
	}
	out := make([]DuplicateKey, len(m.dups))
	copy(out, m.dups)
	return out
}

// Document is a parsed YAML document.
type Document struct {
	// Root is the document's top-level value. For the schemas this module
	// loads it is always a *Mapping; validation enforces that.
	Root Value
}

// ParseError reports malformed document syntax. Line and Column are 1-based
// and zero when the underlying parser did not report a position.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yamldoc: line %d: %s", e.Line, e.Msg)
	}
	return "yamldoc: " + e.Msg
}

// yaml.v3 syntax errors look like "yaml: line 12: did not find ...".
var yamlLineRe = regexp.MustCompile(`yaml: line (\d+):\s*(.*)`)

func newParseError(err error) *ParseError {
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ParseError{Line: line, Msg: m[2]}
	}
	return &ParseError{Msg: err.Error()}
}

// Parse parses a UTF-8 YAML document into an order-preserving tree.
// It returns a *ParseError on malformed syntax or an empty document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, newParseError(err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &ParseError{Msg: "empty document"}
	}
	v, err := convert(root.Content[0])
	if err != nil {
		return nil, err
	}
	return &Document{Root: v}, nil
}

// convert walks a yaml.Node and builds the tree.
func convert(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return convert(n.Alias)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &ParseError{Line: n.Line, Column: n.Column, Msg: err.Error()}
		}
		return v, nil

	case yaml.SequenceNode:
		seq := make(Sequence, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convert(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil

	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, &ParseError{
					Line: keyNode.Line, Column: keyNode.Column,
					Msg: "mapping key is not a scalar",
				}
			}
			if m.Has(key) {
				m.dups = append(m.dups, DuplicateKey{Key: key, Line: keyNode.Line})
				continue
			}
			v, err := convert(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil

	default:
		return nil, &ParseError{Line: n.Line, Column: n.Column,
			Msg: fmt.Sprintf("unsupported node kind %d", n.Kind)}
	}
}

// ToGo converts a tree value into plain Go types: *Mapping becomes
// map[string]any (key order lost), Sequence becomes []any, scalars pass
// through. Useful where order does not matter, such as generic merging.
func ToGo(v Value) any {
	switch t := v.(type) {
	case *Mapping:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = ToGo(t.items[k])
		}
		return out
	case Sequence:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two values are structurally equal: same shapes,
// same scalar values, and for mappings the same keys in the same order.
func Equal(a, b Value) bool {
	switch at := a.(type) {
	case *Mapping:
		bt, ok := b.(*Mapping)
		if !ok || at.Len() != bt.Len() {
			return false
		}
		for i, k := range at.keys {
			if bt.keys[i] != k || !Equal(at.items[k], bt.items[k]) {
				return false
			}
		}
		return true
	case Sequence:
		bt, ok := b.(Sequence)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
