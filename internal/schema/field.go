package schema

import (
	"fmt"
	"strings"
)

// Kind classifies how a field is compiled inside a filter.
type Kind int

const (
	Primitive Kind = iota // scalar compared with "="
	Object                // nested object, dot-qualified
	Array                 // array of Elem, filtered with [WHERE ...]
	Record                // reference to a record of another entity
	Relation              // graph traversal through an edge entity
	ID                    // the record id
)

var kindNames = map[Kind]string{
	Primitive: "primitive",
	Object:    "object",
	Array:     "array",
	Record:    "record",
	Relation:  "relation",
	ID:        "id",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a kind name to a Kind. The empty string is Primitive.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return Primitive, nil
	}
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return Primitive, fmt.Errorf("%w: unknown kind %q", ErrInvalidEntity, s)
}

// Direction is the traversal arrow of a relation.
type Direction string

const (
	Outgoing Direction = "->"
	Incoming Direction = "<-"
)

// RelationParams describes how a relation renders as a graph traversal:
//
//	<Direction>(<Via> WHERE ...)<Select><Target>
//
// Via and Target are entity names; the compiler substitutes their storage
// names. Select is the suffix between the edge and the target ("->", "<-",
// ".*", ".*.out", ...). Target may be empty.
type RelationParams struct {
	Via       string
	Direction Direction
	Select    string
	Target    string
}

// IndexHint asks Migrate to define a single-column index for a field.
type IndexHint struct {
	Name   string
	Unique bool
	Search bool
}

// Field describes one entity attribute.
type Field struct {
	Name     string
	Kind     Kind
	Type     string // informational scalar type: string, number, bool, datetime...
	Optional bool

	Elem     *Field          // Array element
	Fields   []Field         // Object members; nil means an open object
	Record   string          // Record target entity
	Relation *RelationParams // Relation traversal
	Index    *IndexHint
}

// Prim declares a primitive field.
func Prim(name, typ string) Field {
	return Field{Name: name, Kind: Primitive, Type: typ}
}

// Obj declares a nested object. Called without members it declares an open
// object whose keys are all treated as primitives.
func Obj(name string, fields ...Field) Field {
	if len(fields) == 0 {
		fields = nil
	}
	return Field{Name: name, Kind: Object, Type: "object", Fields: fields}
}

// ArrayOf declares an array field. The element's name is ignored.
func ArrayOf(name string, elem Field) Field {
	elem.Name = ""
	return Field{Name: name, Kind: Array, Type: "array", Elem: &elem}
}

// Ref declares a record reference to entity.
func Ref(name, entity string) Field {
	return Field{Name: name, Kind: Record, Type: "record", Record: entity}
}

// Rel declares a graph relation.
func Rel(name string, params RelationParams) Field {
	p := params
	return Field{Name: name, Kind: Relation, Type: "relation", Relation: &p}
}

// WithIndex returns f carrying an index hint.
func (f Field) WithIndex(h IndexHint) Field {
	f.Index = &h
	return f
}

// Opt returns f marked optional.
func (f Field) Opt() Field {
	f.Optional = true
	return f
}

// IsOpen reports whether f is an object without declared members.
func (f Field) IsOpen() bool {
	return f.Kind == Object && f.Fields == nil
}

// Child resolves a member of an object field or of an array's element.
// Open objects resolve every name to a primitive.
func (f Field) Child(name string) (Field, bool) {
	switch f.Kind {
	case Object:
		if f.Fields == nil {
			return Prim(name, "any"), true
		}
		for _, c := range f.Fields {
			if c.Name == name {
				return c, true
			}
		}
	case Array:
		if f.Elem != nil {
			return f.Elem.Child(name)
		}
	}
	return Field{}, false
}

// Open returns an open object descriptor named name.
func Open(name string) Field {
	return Obj(name)
}

func (f Field) validate(entity string) error {
	if f.Name == "" {
		return fmt.Errorf("%w: %s has a field without a name", ErrInvalidEntity, entity)
	}
	switch f.Kind {
	case Array:
		if f.Elem == nil {
			return fmt.Errorf("%w: %s.%s is an array without an element", ErrInvalidEntity, entity, f.Name)
		}
		if f.Elem.Kind == Object {
			return validateMembers(entity+"."+f.Name, f.Elem.Fields)
		}
	case Object:
		return validateMembers(entity+"."+f.Name, f.Fields)
	case Relation:
		if f.Relation == nil || f.Relation.Via == "" {
			return fmt.Errorf("%w: %s.%s is a relation without an edge", ErrInvalidEntity, entity, f.Name)
		}
		if f.Relation.Direction != Outgoing && f.Relation.Direction != Incoming {
			return fmt.Errorf("%w: %s.%s has direction %q", ErrInvalidEntity, entity, f.Name, f.Relation.Direction)
		}
	}
	return nil
}

func validateMembers(path string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, c := range fields {
		if seen[c.Name] {
			return fmt.Errorf("%w: %s declares %q twice", ErrInvalidEntity, path, c.Name)
		}
		seen[c.Name] = true
		if err := c.validate(path); err != nil {
			return err
		}
	}
	return nil
}
