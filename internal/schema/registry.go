package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry errors
var (
	ErrInvalidEntity   = errors.New("invalid entity")
	ErrDuplicateEntity = errors.New("entity already registered")
	ErrUnknownEntity   = errors.New("unknown entity")
)

// Registry is the read side consumed by the predicate compiler and the CRUD
// façade.
type Registry interface {
	LookupField(entity, name string) (Field, bool)
	AllFields(entity string) []Field
	StorageName(entity string) string
}

// TableIndex is a multi-column index declared on a table.
type TableIndex struct {
	Columns []string
	Suffix  string // defaults to "idx"
	Unique  bool
	Search  bool
}

// Name returns the index name: <first column>_<last column>_<suffix>.
func (t TableIndex) Name() string {
	suffix := t.Suffix
	if suffix == "" {
		suffix = "idx"
	}
	if len(t.Columns) == 0 {
		return suffix
	}
	return t.Columns[0] + "_" + t.Columns[len(t.Columns)-1] + "_" + suffix
}

// Entity is a declaration handed to Catalog.Register.
type Entity struct {
	Name    string
	Table   string // storage name, defaults to Name
	Edge    bool   // graph edge: gains in/out record fields
	Extends string // parent entity whose fields come first
	Fields  []Field
	Indexes []TableIndex
}

// Catalog is an in-memory Registry. Entities are frozen on registration.
type Catalog struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	byName   map[string]map[string]int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entities: make(map[string]*Entity),
		byName:   make(map[string]map[string]int),
	}
}

// Register validates e and adds it to the catalog. A parent named in Extends
// must already be registered.
//
// The stored field list is the parent's fields (without its id), then the
// entity's own fields, then in/out for edges, then id.
func (c *Catalog) Register(e Entity) error {
	if e.Name == "" {
		return fmt.Errorf("%w: entity without a name", ErrInvalidEntity)
	}
	if e.Table == "" {
		e.Table = e.Name
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entities[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, e.Name)
	}

	var fields []Field
	if e.Extends != "" {
		parent, ok := c.entities[e.Extends]
		if !ok {
			return fmt.Errorf("%w: %s extends %s", ErrUnknownEntity, e.Name, e.Extends)
		}
		for _, f := range parent.Fields {
			if f.Kind == ID || (parent.Edge && (f.Name == "in" || f.Name == "out")) {
				continue
			}
			fields = append(fields, f)
		}
		e.Edge = e.Edge || parent.Edge
		e.Indexes = append(append([]TableIndex(nil), parent.Indexes...), e.Indexes...)
	}
	fields = append(fields, e.Fields...)
	if e.Edge {
		fields = append(fields, Ref("in", ""), Ref("out", ""))
	}
	fields = append(fields, Field{Name: "id", Kind: ID, Type: "record"})

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			return fmt.Errorf("%w: %s declares %q twice", ErrInvalidEntity, e.Name, f.Name)
		}
		if err := f.validate(e.Name); err != nil {
			return err
		}
		index[f.Name] = i
	}
	for _, ix := range e.Indexes {
		for _, col := range ix.Columns {
			if _, ok := index[strings.SplitN(col, ".", 2)[0]]; !ok {
				return fmt.Errorf("%w: %s index on unknown column %q", ErrInvalidEntity, e.Name, col)
			}
		}
	}

	e.Fields = fields
	c.entities[e.Name] = &e
	c.byName[e.Name] = index
	return nil
}

// MustRegister is Register that panics on error. Intended for package-level
// declarations.
func (c *Catalog) MustRegister(entities ...Entity) {
	for _, e := range entities {
		if err := c.Register(e); err != nil {
			panic(err)
		}
	}
}

// LookupField resolves a field of entity.
func (c *Catalog) LookupField(entity, name string) (Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byName[entity]
	if !ok {
		return Field{}, false
	}
	i, ok := idx[name]
	if !ok {
		return Field{}, false
	}
	return c.entities[entity].Fields[i], true
}

// AllFields returns entity's fields in declaration order.
func (c *Catalog) AllFields(entity string) []Field {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[entity]
	if !ok {
		return nil
	}
	return append([]Field(nil), e.Fields...)
}

// StorageName returns the table of entity. Unknown entities map to themselves.
func (c *Catalog) StorageName(entity string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.entities[entity]; ok {
		return e.Table
	}
	return entity
}

// Entity returns the frozen declaration of name.
func (c *Catalog) Entity(name string) (Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[name]
	if !ok {
		return Entity{}, false
	}
	out := *e
	out.Fields = append([]Field(nil), e.Fields...)
	out.Indexes = append([]TableIndex(nil), e.Indexes...)
	return out, true
}

// Indexes returns the table-level indexes of entity.
func (c *Catalog) Indexes(entity string) []TableIndex {
	e, ok := c.Entity(entity)
	if !ok {
		return nil
	}
	return e.Indexes
}

// Names lists registered entities in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entities))
	for n := range c.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
