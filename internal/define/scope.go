package define

import (
	"fmt"
	"strings"

	"github.com/forgo/surql/internal/ql"
)

// Scope is a DEFINE SCOPE statement. Signin and Signup are optional
// statements run by SurrealDB when a client authenticates into the scope.
type Scope struct {
	Name    string
	Session string // duration such as "7d" or "12h"
	Signin  ql.Query
	Signup  ql.Query
}

// Query renders the scope. Declarations carried by Signin and Signup are
// hoisted ahead of the DEFINE.
func (s Scope) Query() (ql.Query, error) {
	if s.Name == "" {
		return ql.Query{}, fmt.Errorf("%w: scope name is required", ErrInvalidDefinition)
	}
	if s.Session == "" {
		return ql.Query{}, fmt.Errorf("%w: scope %s: session is required", ErrInvalidDefinition, s.Name)
	}

	var b strings.Builder
	b.WriteString("DEFINE SCOPE ")
	b.WriteString(s.Name)
	b.WriteString(" SESSION ")
	b.WriteString(s.Session)
	if !s.Signin.IsZero() {
		b.WriteString("\n SIGNIN (")
		b.WriteString(s.Signin.Body)
		b.WriteString(")")
	}
	if !s.Signup.IsZero() {
		b.WriteString("\n SIGNUP (")
		b.WriteString(s.Signup.Body)
		b.WriteString(")")
	}
	b.WriteString(";")

	return ql.Query{
		Declarations: mergeDeclarations(s.Signin.Declarations, s.Signup.Declarations),
		Body:         b.String(),
	}, nil
}

func mergeDeclarations(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, d := range l {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}
