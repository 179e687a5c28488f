package where

// Node is one level of a filter tree. Field predicates are AND-joined in
// order, then the And, Or and Not groups are appended.
type Node struct {
	Fields []Pred
	And    *Group
	Or     *Group
	Not    *Group
}

// Pred compares one field with a value.
//
// Value may be a literal (equality), an operator.Object, an expr.Expr, a Raw
// predicate, or a nested Node compiled in the field's scope. A nil value is
// skipped.
type Pred struct {
	Name  string
	Value any
}

// Group holds the operand of a logical connective. List distinguishes
// {AND: [a, b]} from {AND: a}.
type Group struct {
	Nodes []Node
	List  bool
}

// Raw is a pre-rendered predicate emitted verbatim in place of the field
// comparison.
type Raw string

// F builds a field predicate.
func F(name string, value any) Pred {
	return Pred{Name: name, Value: value}
}

// New builds a node from field predicates.
func New(preds ...Pred) Node {
	return Node{Fields: preds}
}

// Where is shorthand for New(F(name, value)).
func Where(name string, value any) Node {
	return New(F(name, value))
}

// IsEmpty reports whether n carries nothing to compile.
func (n Node) IsEmpty() bool {
	return len(n.Fields) == 0 && n.And == nil && n.Or == nil && n.Not == nil
}

// With appends field predicates.
func (n Node) With(preds ...Pred) Node {
	n.Fields = append(append([]Pred(nil), n.Fields...), preds...)
	return n
}

// And1 sets a single AND operand.
func (n Node) And1(node Node) Node {
	n.And = &Group{Nodes: []Node{node}}
	return n
}

// AndAll sets a list of AND operands.
func (n Node) AndAll(nodes ...Node) Node {
	n.And = &Group{Nodes: nodes, List: true}
	return n
}

// Or1 sets a single OR operand.
func (n Node) Or1(node Node) Node {
	n.Or = &Group{Nodes: []Node{node}}
	return n
}

// OrAll sets a list of OR operands.
func (n Node) OrAll(nodes ...Node) Node {
	n.Or = &Group{Nodes: nodes, List: true}
	return n
}

// Not1 sets a single NOT operand.
func (n Node) Not1(node Node) Node {
	n.Not = &Group{Nodes: []Node{node}}
	return n
}

// NotAll sets a list of NOT operands.
func (n Node) NotAll(nodes ...Node) Node {
	n.Not = &Group{Nodes: nodes, List: true}
	return n
}
