package yamldoc

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encode serializes a document back to YAML with mapping key order preserved.
// Parsing the output yields a tree structurally equal to the input.
func Encode(doc *Document) ([]byte, error) {
	node, err := encodeValue(doc.Root)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("yamldoc: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yamldoc: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(v Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.keys {
			keyNode := &yaml.Node{}
			if err := keyNode.Encode(k); err != nil {
				return nil, fmt.Errorf("yamldoc: encode key %q: %w", k, err)
			}
			valNode, err := encodeValue(t.items[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, keyNode, valNode)
		}
		return n, nil

	case Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			c, err := encodeValue(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil

	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, fmt.Errorf("yamldoc: encode scalar %v: %w", v, err)
		}
		return n, nil
	}
}
