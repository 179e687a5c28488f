package where

import (
	"strings"

	"github.com/forgo/surql/internal/expr"
	"github.com/forgo/surql/internal/operator"
	"github.com/forgo/surql/internal/schema"
)

// DefaultMaxDepth bounds filter nesting when Compiler.MaxDepth is zero.
const DefaultMaxDepth = 32

// Compiler turns filter trees into SurrealQL boolean expressions.
//
// A Compiler holds no per-call state and may be shared between goroutines.
type Compiler struct {
	Registry schema.Registry

	// MaxDepth bounds recursion. Zero means DefaultMaxDepth.
	MaxDepth int

	// GroupNot renders a NOT list as "NOT (a AND b)". By default each
	// element is prefixed with NOT in turn: "NOT a NOT b".
	GroupNot bool
}

// NewCompiler returns a compiler with default settings.
func NewCompiler(reg schema.Registry) *Compiler {
	return &Compiler{Registry: reg}
}

// scope is the field space and qualification prefix of one nesting level.
type scope struct {
	entities []string      // resolved in order; unused when object is set
	object   *schema.Field // object or array descriptor to resolve members in
	prefix   string        // qualification for dotted keys
	depth    int
}

// Compile renders node as a boolean expression over entity. An empty node
// yields the empty string, which callers must not follow with WHERE.
func (c *Compiler) Compile(entity string, node Node) (string, error) {
	return c.compile(scope{entities: []string{entity}}, node)
}

func (c *Compiler) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

func (c *Compiler) compile(s scope, n Node) (string, error) {
	if s.depth > c.maxDepth() {
		return "", &DepthError{Max: c.maxDepth()}
	}

	var b strings.Builder
	for _, p := range n.Fields {
		if p.Name == "" || p.Value == nil {
			continue
		}
		part, err := c.field(s, p)
		if err != nil {
			return "", err
		}
		appendJoined(&b, " AND ", part)
	}

	if n.And != nil {
		part, err := c.group(s, n.And, " AND ")
		if err != nil {
			return "", err
		}
		appendJoined(&b, " AND ", part)
	}
	if n.Or != nil {
		part, err := c.group(s, n.Or, " OR ")
		if err != nil {
			return "", err
		}
		appendJoined(&b, " OR ", part)
	}
	if n.Not != nil {
		if err := c.negate(&b, s, n.Not); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// group compiles the operands of AND or OR in the current scope.
func (c *Compiler) group(s scope, g *Group, sep string) (string, error) {
	child := s
	child.depth++

	var b strings.Builder
	for _, n := range g.Nodes {
		part, err := c.compile(child, n)
		if err != nil {
			return "", err
		}
		appendJoined(&b, sep, part)
	}
	return b.String(), nil
}

func (c *Compiler) negate(b *strings.Builder, s scope, g *Group) error {
	if c.GroupNot {
		inner, err := c.group(s, g, " AND ")
		if err != nil || inner == "" {
			return err
		}
		appendJoined(b, " AND ", "NOT ("+inner+")")
		return nil
	}

	child := s
	child.depth++
	for _, n := range g.Nodes {
		part, err := c.compile(child, n)
		if err != nil {
			return err
		}
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" NOT ")
		} else {
			b.WriteString("NOT ")
		}
		b.WriteString(part)
	}
	return nil
}

func (c *Compiler) field(s scope, p Pred) (string, error) {
	desc, err := c.resolve(s, p.Name)
	if err != nil {
		return "", err
	}
	key := p.Name
	if s.prefix != "" {
		key = s.prefix + "." + p.Name
	}

	if text, ok, err := operator.Map(p.Value, key); err != nil || ok {
		return text, err
	}

	switch v := p.Value.(type) {
	case Raw:
		return string(v), nil
	case expr.Expr:
		if v.IsComparison() {
			return key + " " + v.String(), nil
		}
		return key + " = " + v.String(), nil
	case *Node:
		if v == nil {
			return "", nil
		}
		return c.nested(s, desc, key, *v)
	case Node:
		return c.nested(s, desc, key, v)
	}

	return key + " = " + expr.RenderRef(p.Value), nil
}

// nested compiles a sub-filter according to the field kind.
func (c *Compiler) nested(s scope, desc schema.Field, key string, n Node) (string, error) {
	child := scope{depth: s.depth + 1}

	switch desc.Kind {
	case schema.Relation:
		rel := desc.Relation
		child.entities = []string{rel.Via}
		if rel.Target != "" {
			child.entities = append(child.entities, rel.Target)
		}
		sub, err := c.compile(child, n)
		if err != nil || sub == "" {
			return "", err
		}
		text := string(rel.Direction) + "(" + c.Registry.StorageName(rel.Via) + " WHERE " + sub + ")" + rel.Select
		if rel.Target != "" {
			text += c.Registry.StorageName(rel.Target)
		}
		return text, nil

	case schema.Array:
		if desc.Elem != nil && desc.Elem.Kind == schema.Record && desc.Elem.Record != "" {
			child.entities = []string{desc.Elem.Record}
		} else {
			child.object = &desc
		}
		sub, err := c.compile(child, n)
		if err != nil || sub == "" {
			return "", err
		}
		return key + "[WHERE " + sub + "]", nil

	case schema.Object:
		child.object = &desc
		child.prefix = key
		return c.compile(child, n)

	case schema.Record:
		child.prefix = key
		if desc.Record != "" {
			child.entities = []string{desc.Record}
		} else {
			open := schema.Open(desc.Name)
			child.object = &open
		}
		return c.compile(child, n)
	}

	// The descriptor says scalar but the value is a filter: treat the field
	// as an open object.
	open := schema.Open(desc.Name)
	child.object = &open
	child.prefix = key
	return c.compile(child, n)
}

func (c *Compiler) resolve(s scope, name string) (schema.Field, error) {
	if s.object != nil {
		if f, ok := s.object.Child(name); ok {
			return f, nil
		}
		owner := s.prefix
		if owner == "" {
			owner = s.object.Name
		}
		return schema.Field{}, &UnknownFieldError{Entity: owner, Field: name}
	}

	for _, e := range s.entities {
		if f, ok := c.Registry.LookupField(e, name); ok {
			return f, nil
		}
	}
	return schema.Field{}, &UnknownFieldError{Entity: strings.Join(s.entities, "|"), Field: name}
}

func appendJoined(b *strings.Builder, sep, part string) {
	if part == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString(sep)
	}
	b.WriteString(part)
}
