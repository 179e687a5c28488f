package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/forgo/surql/internal/define"
	"github.com/forgo/surql/internal/expr"
	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/schema"
	"github.com/forgo/surql/internal/where"
)

// Standard errors for statement construction.
var (
	// ErrInvalidContent indicates create/update input that is not an object.
	ErrInvalidContent = errors.New("invalid content")

	// ErrInvalidSelect indicates select options that cannot form a statement.
	ErrInvalidSelect = errors.New("invalid select")

	// ErrInvalidRelation indicates a RELATE missing one of its endpoints.
	ErrInvalidRelation = errors.New("invalid relation")
)

// Catalog is the schema the façade builds statements from.
type Catalog interface {
	schema.Registry
	Indexes(entity string) []schema.TableIndex
}

// Statement is a compiled SurrealQL script and its bound variables.
type Statement struct {
	Text string
	Vars map[string]interface{}
}

// IsZero reports whether there is nothing to execute.
func (s Statement) IsZero() bool {
	return s.Text == ""
}

// SelectOptions shapes a SELECT.
type SelectOptions struct {
	// Fields to project. Empty selects * plus every relation projection.
	// "friends:abc" narrows a relation to one edge record.
	Fields []string
	// ID selects a single record; "user:42" and "42" are equivalent.
	ID string
	// Value emits SELECT VALUE; requires exactly one field.
	Value bool
	// Where is a where.Node or a ql.Query.
	Where   interface{}
	OrderBy []string
	Limit   int
	Start   int
	Fetch   []string
}

// Builder compiles the statements of one entity. It performs no I/O.
type Builder struct {
	Catalog  Catalog
	Compiler *where.Compiler
	Entity   string
}

// NewBuilder returns a builder for entity. A nil compiler gets defaults.
func NewBuilder(catalog Catalog, compiler *where.Compiler, entity string) Builder {
	if compiler == nil {
		compiler = where.NewCompiler(catalog)
	}
	return Builder{Catalog: catalog, Compiler: compiler, Entity: entity}
}

// Table returns the entity's storage name.
func (b Builder) Table() string {
	return b.Catalog.StorageName(b.Entity)
}

func (b Builder) thing(id string) string {
	if id == "" {
		return b.Table()
	}
	return b.Table() + ":" + extractToID(id)
}

// condition compiles a filter. decls are LET declarations that must precede
// the statement.
func (b Builder) condition(filter interface{}) (decls []string, cond string, err error) {
	switch f := filter.(type) {
	case nil:
		return nil, "", nil
	case where.Node:
		cond, err = b.Compiler.Compile(b.Entity, f)
	case *where.Node:
		if f != nil {
			cond, err = b.Compiler.Compile(b.Entity, *f)
		}
	case ql.Query:
		decls, cond = f.Declarations, f.Body
	case *ql.Query:
		if f != nil {
			decls, cond = f.Declarations, f.Body
		}
	default:
		err = fmt.Errorf("%w: unsupported filter %T", where.ErrInvalidFilter, filter)
	}
	return decls, cond, err
}

func script(decls []string, body string) string {
	return strings.Join(decls, "") + body
}

func whereClause(cond string) string {
	if cond == "" {
		return ""
	}
	return " WHERE " + cond
}

// BuildSelect compiles a SELECT.
func (b Builder) BuildSelect(opts SelectOptions) (Statement, error) {
	proj, err := b.projections(opts.Fields)
	if err != nil {
		return Statement{}, err
	}
	if opts.Value && len(opts.Fields) != 1 {
		return Statement{}, fmt.Errorf("%w: SELECT VALUE needs exactly one field, got %d", ErrInvalidSelect, len(opts.Fields))
	}
	if opts.Limit < 0 || opts.Start < 0 {
		return Statement{}, fmt.Errorf("%w: negative limit or start", ErrInvalidSelect)
	}
	for _, path := range opts.Fetch {
		if err := b.known(strings.SplitN(path, ".", 2)[0]); err != nil {
			return Statement{}, err
		}
	}

	decls, cond, err := b.condition(opts.Where)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT")
	if opts.Value {
		sb.WriteString(" VALUE")
	}
	sb.WriteString(" ")
	sb.WriteString(strings.Join(proj, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.thing(opts.ID))
	sb.WriteString(whereClause(cond))
	if len(opts.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(opts.OrderBy, ", "))
	}
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(opts.Limit))
	}
	if opts.Start > 0 {
		sb.WriteString(" START " + strconv.Itoa(opts.Start))
	}
	if len(opts.Fetch) > 0 {
		sb.WriteString(" FETCH ")
		sb.WriteString(strings.Join(opts.Fetch, ", "))
	}
	return Statement{Text: script(decls, sb.String())}, nil
}

func (b Builder) known(name string) error {
	if _, ok := b.Catalog.LookupField(b.Entity, name); !ok {
		return &where.UnknownFieldError{Entity: b.Entity, Field: name}
	}
	return nil
}

func (b Builder) projections(fields []string) ([]string, error) {
	if len(fields) == 0 {
		proj := []string{"*"}
		for _, f := range b.Catalog.AllFields(b.Entity) {
			if f.Kind == schema.Relation {
				proj = append(proj, b.relation(f, ""))
			}
		}
		return proj, nil
	}

	proj := make([]string, 0, len(fields))
	for _, name := range fields {
		name, id, _ := strings.Cut(name, ":")
		f, ok := b.Catalog.LookupField(b.Entity, name)
		if !ok {
			return nil, &where.UnknownFieldError{Entity: b.Entity, Field: name}
		}
		if f.Kind == schema.Relation {
			proj = append(proj, b.relation(f, id))
			continue
		}
		proj = append(proj, name)
	}
	return proj, nil
}

// relation renders <dir><via>[:id]<select>[<target>] AS <name>.
func (b Builder) relation(f schema.Field, id string) string {
	p := f.Relation
	var sb strings.Builder
	sb.WriteString(string(p.Direction))
	sb.WriteString(b.Catalog.StorageName(p.Via))
	if id != "" {
		sb.WriteString(":" + id)
	}
	sb.WriteString(p.Select)
	if p.Target != "" {
		sb.WriteString(b.Catalog.StorageName(p.Target))
	}
	sb.WriteString(" AS ")
	sb.WriteString(f.Name)
	return sb.String()
}

// BuildCount compiles SELECT count() ... GROUP ALL.
func (b Builder) BuildCount(filter interface{}) (Statement, error) {
	decls, cond, err := b.condition(filter)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Text: script(decls, "SELECT count() FROM "+b.Table()+whereClause(cond)+" GROUP ALL")}, nil
}

// BuildCreate compiles CREATE <table> CONTENT $content.
func (b Builder) BuildCreate(content interface{}) (Statement, error) {
	c, err := contentOf(content)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Text: "CREATE " + b.Table() + " CONTENT $content",
		Vars: map[string]interface{}{"content": c},
	}, nil
}

// BuildInsert compiles INSERT INTO <table> $rows. No rows yields a zero
// Statement.
func (b Builder) BuildInsert(rows interface{}) (Statement, error) {
	r, err := rowsOf(rows)
	if err != nil {
		return Statement{}, err
	}
	if len(r) == 0 {
		return Statement{}, nil
	}
	return Statement{
		Text: "INSERT INTO " + b.Table() + " $rows",
		Vars: map[string]interface{}{"rows": r},
	}, nil
}

// BuildUpdate compiles UPDATE <thing> CONTENT $content. An empty id
// replaces every record of the table.
func (b Builder) BuildUpdate(id string, content interface{}) (Statement, error) {
	c, err := contentOf(content)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Text: "UPDATE " + b.thing(id) + " CONTENT $content",
		Vars: map[string]interface{}{"content": c},
	}, nil
}

// BuildMerge compiles UPDATE <thing> MERGE $patch.
func (b Builder) BuildMerge(id string, patch interface{}) (Statement, error) {
	c, err := contentOf(patch)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Text: "UPDATE " + b.thing(id) + " MERGE $patch",
		Vars: map[string]interface{}{"patch": c},
	}, nil
}

// BuildDelete compiles DELETE <thing>[ WHERE ...].
func (b Builder) BuildDelete(id string, filter interface{}) (Statement, error) {
	decls, cond, err := b.condition(filter)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Text: script(decls, "DELETE "+b.thing(id)+whereClause(cond))}, nil
}

// Relation describes one RELATE: FromID of the builder's entity to ToID of
// To through the Via edge.
type Relation struct {
	FromID  string
	Via     string // edge entity
	ViaID   string // optional edge record id
	To      string // target entity
	ToID    string
	Content interface{}
}

// BuildRelate compiles RELATE <from>-><via>-><to>[ CONTENT $content].
func (b Builder) BuildRelate(r Relation) (Statement, error) {
	if r.FromID == "" || r.ToID == "" || r.Via == "" || r.To == "" {
		return Statement{}, fmt.Errorf("%w: from, via and to are required", ErrInvalidRelation)
	}
	via := b.Catalog.StorageName(r.Via)
	if r.ViaID != "" {
		via += ":" + extractToID(r.ViaID)
	}
	to := b.Catalog.StorageName(r.To) + ":" + extractToID(r.ToID)

	st := Statement{Text: "RELATE " + b.thing(r.FromID) + "->" + via + "->" + to}
	if r.Content != nil {
		c, err := contentOf(r.Content)
		if err != nil {
			return Statement{}, err
		}
		st.Text += " CONTENT $content"
		st.Vars = map[string]interface{}{"content": c}
	}
	return st, nil
}

// BuildLive compiles LIVE SELECT DIFF|* FROM <table>[ WHERE ...].
func (b Builder) BuildLive(filter interface{}, diff bool) (Statement, error) {
	decls, cond, err := b.condition(filter)
	if err != nil {
		return Statement{}, err
	}
	what := "*"
	if diff {
		what = "DIFF"
	}
	return Statement{Text: script(decls, "LIVE SELECT "+what+" FROM "+b.Table()+whereClause(cond))}, nil
}

// BuildKill compiles KILL for transports without a native kill.
func (b Builder) BuildKill(liveID string) Statement {
	return Statement{Text: "KILL " + expr.Quote(liveID)}
}

// BuildInfo compiles INFO FOR TABLE <table>.
func (b Builder) BuildInfo() Statement {
	return Statement{Text: "INFO FOR TABLE " + b.Table()}
}

// BuildMigrate returns the DEFINE INDEX statements for every table-level and
// field-level index hint whose name is not in existing.
func (b Builder) BuildMigrate(existing map[string]string) ([]string, error) {
	table := b.Table()
	var indexes []define.Index
	for _, ti := range b.Catalog.Indexes(b.Entity) {
		indexes = append(indexes, define.TableIndex(table, ti))
	}
	for _, f := range b.Catalog.AllFields(b.Entity) {
		if f.Index != nil {
			indexes = append(indexes, define.FieldIndex(table, f.Name, *f.Index))
		}
	}

	var stmts []string
	for _, idx := range indexes {
		if _, ok := existing[idx.Name]; ok {
			continue
		}
		s, err := idx.Statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// BuildQuery wraps a compiled template.
func (b Builder) BuildQuery(q ql.Query) (Statement, error) {
	if q.IsZero() {
		return Statement{}, ql.ErrEmptyTemplate
	}
	return Statement{Text: q.String()}, nil
}
