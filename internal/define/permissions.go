package define

import (
	"fmt"
	"strings"

	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/where"
)

// Operation is a statement kind a permission rule applies to.
type Operation string

const (
	Select Operation = "SELECT"
	Create Operation = "CREATE"
	Update Operation = "UPDATE"
	Delete Operation = "DELETE"
)

// Fixed permission conditions.
const (
	None = "NONE"
	Full = "FULL"
)

type rule struct {
	ops  []Operation
	cond any
}

// Permissions builds the PERMISSIONS clause of a table definition.
//
//	perms := define.NewPermissions(compiler, model.EntityUser).
//	    For(where.Where("id", expr.Param("token.id")), define.Select).
//	    For(define.None, define.Update)
type Permissions struct {
	compiler *where.Compiler
	entity   string
	rules    []rule
}

// NewPermissions starts an empty clause for entity. where.Node conditions are
// compiled with compiler against that entity.
func NewPermissions(compiler *where.Compiler, entity string) *Permissions {
	return &Permissions{compiler: compiler, entity: entity}
}

// For adds a rule. cond is None, Full, a ql.Query or a where.Node.
func (p *Permissions) For(cond any, ops ...Operation) *Permissions {
	p.rules = append(p.rules, rule{ops: ops, cond: cond})
	return p
}

// Query renders the clause, one FOR line per rule.
func (p *Permissions) Query() (ql.Query, error) {
	var decls [][]string
	lines := []string{"PERMISSIONS"}
	for _, r := range p.rules {
		if len(r.ops) == 0 {
			return ql.Query{}, fmt.Errorf("%w: permission rule without operations", ErrInvalidDefinition)
		}
		cond, d, err := p.condition(r.cond)
		if err != nil {
			return ql.Query{}, err
		}
		decls = append(decls, d)

		ops := make([]string, len(r.ops))
		for i, op := range r.ops {
			ops[i] = string(op)
		}
		lines = append(lines, "FOR "+strings.Join(ops, ", ")+" "+cond)
	}
	return ql.Query{
		Declarations: mergeDeclarations(decls...),
		Body:         strings.Join(lines, "\n"),
	}, nil
}

func (p *Permissions) condition(cond any) (string, []string, error) {
	switch c := cond.(type) {
	case string:
		if c != None && c != Full {
			return "", nil, fmt.Errorf("%w: permission %q must be NONE or FULL", ErrInvalidDefinition, c)
		}
		return c, nil, nil
	case ql.Query:
		return withWhere(c.Body), c.Declarations, nil
	case where.Node:
		if p.compiler == nil {
			return "", nil, fmt.Errorf("%w: filter permission needs a compiler", ErrInvalidDefinition)
		}
		text, err := p.compiler.Compile(p.entity, c)
		if err != nil {
			return "", nil, err
		}
		if text == "" {
			return Full, nil, nil
		}
		return "WHERE " + text, nil, nil
	}
	return "", nil, fmt.Errorf("%w: unsupported permission condition %T", ErrInvalidDefinition, cond)
}

func withWhere(body string) string {
	if strings.Contains(body, "WHERE") {
		return body
	}
	return "WHERE " + body
}

// Table is a DEFINE TABLE statement.
type Table struct {
	Name        string
	Schemafull  bool
	Permissions *Permissions
}

// Query renders the table definition.
func (t Table) Query() (ql.Query, error) {
	if t.Name == "" {
		return ql.Query{}, fmt.Errorf("%w: table name is required", ErrInvalidDefinition)
	}
	mode := "SCHEMALESS"
	if t.Schemafull {
		mode = "SCHEMAFULL"
	}
	q := ql.Query{Body: "DEFINE TABLE " + t.Name + " " + mode}
	if t.Permissions != nil {
		perms, err := t.Permissions.Query()
		if err != nil {
			return ql.Query{}, err
		}
		q.Declarations = perms.Declarations
		q.Body += "\n" + perms.Body
	}
	q.Body += ";"
	return q, nil
}
