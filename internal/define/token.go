package define

import (
	"fmt"
	"strings"

	"github.com/forgo/surql/internal/expr"
)

// Token levels other than a named scope.
const (
	OnNamespace = "NAMESPACE"
	OnDatabase  = "DATABASE"
)

var algorithms = map[string]bool{
	"HS256": true, "HS384": true, "HS512": true,
	"RS256": true, "RS384": true, "RS512": true,
	"ES256": true, "ES384": true, "ES512": true,
	"PS256": true, "PS384": true, "PS512": true,
}

// Token is a DEFINE TOKEN statement.
type Token struct {
	Name string
	// On is OnNamespace, OnDatabase, or a scope name.
	On    string
	Type  string
	Value string
}

// Statement renders the token definition.
func (t Token) Statement() (string, error) {
	if t.Name == "" {
		return "", fmt.Errorf("%w: token name is required", ErrInvalidDefinition)
	}
	if t.On == "" {
		return "", fmt.Errorf("%w: token %s: level is required", ErrInvalidDefinition, t.Name)
	}
	typ := strings.ToUpper(t.Type)
	if !algorithms[typ] {
		return "", fmt.Errorf("%w: token %s: unsupported type %q", ErrInvalidDefinition, t.Name, t.Type)
	}

	on := t.On
	if on != OnNamespace && on != OnDatabase {
		on = "SCOPE " + on
	}
	return fmt.Sprintf("DEFINE TOKEN %s ON %s TYPE %s VALUE %s;", t.Name, on, typ, expr.Quote(t.Value)), nil
}
