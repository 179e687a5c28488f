package where

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/forgo/surql/internal/expr"
	"github.com/forgo/surql/internal/operator"
)

// FromYAML decodes a filter document. Mapping order is kept, so
//
//	name: henry
//	AND:
//	  age: {gt: 10}
//
// compiles to `name = "henry" AND age > 10`. A mapping with any operator name
// (gt, contains, eq, ...) among its keys becomes an operator.Object. Scalars
// tagged !raw become Raw predicates and scalars tagged !expr become
// expressions.
func FromYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Node{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return Node{}, nil
	}
	return decodeNode(root)
}

func decodeNode(n *yaml.Node) (Node, error) {
	if n.Kind != yaml.MappingNode {
		return Node{}, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidFilter, n.Line)
	}

	var out Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "AND", "OR", "NOT":
			g, err := decodeGroup(val)
			if err != nil {
				return Node{}, err
			}
			switch key {
			case "AND":
				out.And = g
			case "OR":
				out.Or = g
			default:
				out.Not = g
			}
		default:
			v, err := decodeValue(val)
			if err != nil {
				return Node{}, err
			}
			out.Fields = append(out.Fields, F(key, v))
		}
	}
	return out, nil
}

func decodeGroup(n *yaml.Node) (*Group, error) {
	if n.Kind == yaml.MappingNode {
		node, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		return &Group{Nodes: []Node{node}}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d: logical operand must be a mapping or a list", ErrInvalidFilter, n.Line)
	}
	g := &Group{List: true}
	for _, item := range n.Content {
		node, err := decodeNode(item)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, node)
	}
	return g, nil
}

func decodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		if isOperatorMapping(n) {
			obj := make(operator.Object, len(n.Content)/2)
			for i := 0; i+1 < len(n.Content); i += 2 {
				v, err := decodeScalarOrList(n.Content[i+1])
				if err != nil {
					return nil, err
				}
				obj[operator.Key(n.Content[i].Value)] = v
			}
			return obj, nil
		}
		return decodeNode(n)
	case yaml.AliasNode:
		return decodeValue(n.Alias)
	}
	return decodeScalarOrList(n)
}

func decodeScalarOrList(n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!raw":
		return Raw(n.Value), nil
	case "!expr":
		return expr.New(n.Value), nil
	}
	if n.Kind == yaml.SequenceNode {
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := decodeScalarOrList(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFilter, n.Line, err)
	}
	return v, nil
}

// isOperatorMapping reports whether any key of n is an operator name. The
// remaining keys are then decoded as operators too, so a misspelled one is
// rejected when the filter compiles.
func isOperatorMapping(n *yaml.Node) bool {
	for i := 0; i < len(n.Content); i += 2 {
		if operator.IsDispatchKey(n.Content[i].Value) {
			return true
		}
	}
	return false
}
