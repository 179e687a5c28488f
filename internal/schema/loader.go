package schema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type document struct {
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Name    string     `yaml:"name"`
	Table   string     `yaml:"table"`
	Edge    bool       `yaml:"edge"`
	Extends string     `yaml:"extends"`
	Fields  []fieldDoc `yaml:"fields"`
	Indexes []indexDoc `yaml:"indexes"`
}

type fieldDoc struct {
	Name     string       `yaml:"name"`
	Kind     string       `yaml:"kind"`
	Type     string       `yaml:"type"`
	Optional bool         `yaml:"optional"`
	Elem     *fieldDoc    `yaml:"elem"`
	Fields   []fieldDoc   `yaml:"fields"`
	Record   string       `yaml:"record"`
	Relation *relationDoc `yaml:"relation"`
	Index    *IndexHint   `yaml:"index"`
}

type relationDoc struct {
	Via       string `yaml:"via"`
	Direction string `yaml:"direction"`
	Select    string `yaml:"select"`
	Target    string `yaml:"target"`
}

type indexDoc struct {
	Columns []string `yaml:"columns"`
	Suffix  string   `yaml:"suffix"`
	Unique  bool     `yaml:"unique"`
	Search  bool     `yaml:"search"`
}

// LoadYAML builds a catalog from a schema document:
//
//	entities:
//	  - name: User
//	    fields:
//	      - {name: name, type: string, index: {name: user_name, unique: true}}
//	      - {name: bestFriend, kind: record, record: User}
//	      - name: friends
//	        kind: relation
//	        relation: {via: Friends, direction: "->", select: "->", target: User}
//
// Entities are registered in document order.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewCatalog(), nil
		}
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	c := NewCatalog()
	for _, ed := range doc.Entities {
		e, err := ed.entity()
		if err != nil {
			return nil, err
		}
		if err := c.Register(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile reads a schema document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

func (ed entityDoc) entity() (Entity, error) {
	e := Entity{
		Name:    ed.Name,
		Table:   ed.Table,
		Edge:    ed.Edge,
		Extends: ed.Extends,
	}
	for _, fd := range ed.Fields {
		f, err := fd.field()
		if err != nil {
			return Entity{}, fmt.Errorf("%s: %w", ed.Name, err)
		}
		e.Fields = append(e.Fields, f)
	}
	for _, id := range ed.Indexes {
		e.Indexes = append(e.Indexes, TableIndex(id))
	}
	return e, nil
}

func (fd fieldDoc) field() (Field, error) {
	kind, err := ParseKind(fd.Kind)
	if err != nil {
		return Field{}, err
	}
	f := Field{
		Name:     fd.Name,
		Kind:     kind,
		Type:     fd.Type,
		Optional: fd.Optional,
		Record:   fd.Record,
		Index:    fd.Index,
	}

	switch kind {
	case Object:
		if f.Type == "" {
			f.Type = "object"
		}
		// An object without members is open, as with Obj.
		for _, cd := range fd.Fields {
			c, err := cd.field()
			if err != nil {
				return Field{}, err
			}
			f.Fields = append(f.Fields, c)
		}
	case Array:
		if fd.Elem == nil {
			return Field{}, fmt.Errorf("%w: array %q without elem", ErrInvalidEntity, fd.Name)
		}
		elem, err := fd.Elem.field()
		if err != nil {
			return Field{}, err
		}
		f = ArrayOf(fd.Name, elem)
		f.Optional = fd.Optional
		f.Index = fd.Index
	case Relation:
		if fd.Relation == nil {
			return Field{}, fmt.Errorf("%w: relation %q without parameters", ErrInvalidEntity, fd.Name)
		}
		f.Relation = &RelationParams{
			Via:       fd.Relation.Via,
			Direction: Direction(fd.Relation.Direction),
			Select:    fd.Relation.Select,
			Target:    fd.Relation.Target,
		}
	}
	return f, nil
}
