package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Expr is an immutable fragment of SurrealQL text.
//
// Expressions are embedded verbatim wherever a value is rendered, which is
// what makes them composable: a function call, a field path or a comparison
// fragment can be passed anywhere a literal is accepted.
type Expr struct {
	text string
	cmp  bool
}

// New wraps raw SurrealQL text in an Expr.
func New(text string) Expr {
	return Expr{text: text}
}

// String returns the fragment text.
func (e Expr) String() string {
	return e.text
}

// Text returns the fragment text.
func (e Expr) Text() string {
	return e.text
}

// IsZero reports whether the expression carries no text.
func (e Expr) IsZero() bool {
	return e.text == ""
}

// IsComparison reports whether the expression is an operator fragment such as
// "> 10", produced by Lt, Gt and friends. A comparison fragment placed under a
// field renders as "<field> > 10" rather than "<field> = > 10".
func (e Expr) IsComparison() bool {
	return e.cmp
}

// As aliases the expression: "<expr> AS <alias>".
func (e Expr) As(alias string) Expr {
	return Expr{text: e.text + " AS " + alias}
}

// Lt renders "<expr> < <value>".
func (e Expr) Lt(v any) Expr { return e.bind(Lt(v)) }

// Lte renders "<expr> <= <value>".
func (e Expr) Lte(v any) Expr { return e.bind(Lte(v)) }

// Gt renders "<expr> > <value>".
func (e Expr) Gt(v any) Expr { return e.bind(Gt(v)) }

// Gte renders "<expr> >= <value>".
func (e Expr) Gte(v any) Expr { return e.bind(Gte(v)) }

// Ne renders "<expr> != <value>".
func (e Expr) Ne(v any) Expr { return e.bind(Ne(v)) }

// Eq renders "<expr> = <value>".
func (e Expr) Eq(v any) Expr { return e.bind(Eq(v)) }

func (e Expr) bind(c Expr) Expr {
	return Expr{text: e.text + " " + c.text}
}

// Lt returns the comparison fragment "< <value>".
func Lt(v any) Expr { return comparison("<", v) }

// Lte returns the comparison fragment "<= <value>".
func Lte(v any) Expr { return comparison("<=", v) }

// Gt returns the comparison fragment "> <value>".
func Gt(v any) Expr { return comparison(">", v) }

// Gte returns the comparison fragment ">= <value>".
func Gte(v any) Expr { return comparison(">=", v) }

// Ne returns the comparison fragment "!= <value>".
func Ne(v any) Expr { return comparison("!=", v) }

// Eq returns the comparison fragment "= <value>".
func Eq(v any) Expr { return comparison("=", v) }

func comparison(op string, v any) Expr {
	return Expr{text: op + " " + Render(v), cmp: true}
}

// Render turns a Go value into SurrealQL text.
//
// Expressions are emitted verbatim, strings are double-quoted, times become
// datetime literals, slices and maps are rendered element-wise so nested
// expressions survive, and everything else is JSON-encoded.
func Render(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case Expr:
		return t.text
	case *Expr:
		if t == nil {
			return "NULL"
		}
		return t.text
	case string:
		return Quote(t)
	case time.Time:
		return "d" + Quote(t.UTC().Format(time.RFC3339Nano))
	case *time.Time:
		if t == nil {
			return "NULL"
		}
		return "d" + Quote(t.UTC().Format(time.RFC3339Nano))
	case []byte:
		return encodeJSON(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "[]"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Render(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return encodeJSON(v)
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = Quote(k.String()) + ":" + Render(rv.MapIndex(k).Interface())
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return encodeJSON(v)
}

// RenderRef is Render with one exception: a string containing ':' is taken to
// be a record id ("user:42") and emitted unquoted.
func RenderRef(v any) string {
	if s, ok := v.(string); ok && IsRecordID(s) {
		return s
	}
	return Render(v)
}

// IsRecordID reports whether s looks like a record reference.
func IsRecordID(s string) bool {
	return strings.Contains(s, ":")
}

// Quote wraps s in double quotes, escaping quotes, backslashes and control
// characters.
func Quote(s string) string {
	return quote(s, '"')
}

// QuoteSingle wraps s in single quotes with the same escaping as Quote.
func QuoteSingle(s string) string {
	return quote(s, '\'')
}

func quote(s string, q byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for _, r := range s {
		switch r {
		case rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func encodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
