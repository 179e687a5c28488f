package ql

import (
	"fmt"
	"strings"
	"time"

	"github.com/forgo/surql/internal/expr"
)

// Query is a compiled statement: LET declarations followed by the body.
type Query struct {
	Declarations []string
	Body         string
}

// String returns the script to submit: declarations first, then the body.
func (q Query) String() string {
	if len(q.Declarations) == 0 {
		return q.Body
	}
	return strings.Join(q.Declarations, "") + q.Body
}

// IsZero reports whether q carries no text.
func (q Query) IsZero() bool {
	return len(q.Declarations) == 0 && q.Body == ""
}

// Raw wraps statement text that needs no compilation.
func Raw(text string) Query {
	return Query{Body: text}
}

// Variable marks a template value to be hoisted into a LET declaration.
type Variable struct {
	Name  string
	Value any
}

// Let hoists v: the template receives $name and the script gains
// "LET $name = <v>;".
func Let(name string, v any) Variable {
	return Variable{Name: strings.TrimPrefix(name, "$"), Value: v}
}

// Engine compiles templates. The zero value is ready to use.
type Engine struct {
	// MapHoist treats a single-entry map[string]any as a Let marker named
	// after its key. Off by default: a one-field object is otherwise a
	// plain JSON value.
	MapHoist bool
}

// Default is the engine used by the package-level functions.
var Default = Engine{}

// Compile interleaves segments with values. There must be exactly one value
// fewer than segments.
func Compile(segments []string, values ...any) (Query, error) {
	return Default.Compile(segments, values...)
}

// Format compiles a template whose values are marked with %v. Use %% for a
// literal percent sign.
func Format(format string, values ...any) (Query, error) {
	return Default.Format(format, values...)
}

// Must panics if err is not nil.
func Must(q Query, err error) Query {
	if err != nil {
		panic(err)
	}
	return q
}

// Compile interleaves segments with values using e's rules.
func (e Engine) Compile(segments []string, values ...any) (Query, error) {
	if len(segments) == 0 {
		return Query{}, ErrEmptyTemplate
	}
	if len(values) != len(segments)-1 {
		return Query{}, &ArityError{Segments: len(segments), Values: len(values)}
	}

	st := &state{engine: e, declared: make(map[string]string)}
	for i, seg := range segments {
		st.body.WriteString(seg)
		if i < len(values) {
			if err := st.embed(values[i]); err != nil {
				return Query{}, err
			}
		}
	}
	return Query{Declarations: st.decls, Body: st.body.String()}, nil
}

// Format compiles a %v template using e's rules.
func (e Engine) Format(format string, values ...any) (Query, error) {
	return e.Compile(splitFormat(format), values...)
}

// Join concatenates queries with sep between their bodies. Declarations are
// merged under the same rules as Compile.
func Join(sep string, qs ...Query) (Query, error) {
	st := &state{declared: make(map[string]string)}
	for i, q := range qs {
		if i > 0 {
			st.body.WriteString(sep)
		}
		if err := st.merge(q); err != nil {
			return Query{}, err
		}
	}
	return Query{Declarations: st.decls, Body: st.body.String()}, nil
}

type state struct {
	engine   Engine
	decls    []string
	declared map[string]string
	body     strings.Builder
}

func (st *state) embed(v any) error {
	switch t := v.(type) {
	case expr.Expr:
		st.body.WriteString(t.String())
	case Variable:
		return st.hoist(t.Name, t.Value)
	case *Variable:
		return st.hoist(t.Name, t.Value)
	case Query:
		return st.merge(t)
	case *Query:
		return st.merge(*t)
	case string:
		st.body.WriteString(expr.QuoteSingle(t))
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		st.body.WriteString(fmt.Sprint(t))
	case time.Time, *time.Time:
		st.body.WriteString(expr.Render(t))
	case map[string]any:
		if st.engine.MapHoist && len(t) == 1 {
			for name, value := range t {
				return st.hoist(name, value)
			}
		}
		st.body.WriteString(expr.Render(t))
	default:
		st.body.WriteString(expr.Render(t))
	}
	return nil
}

func (st *state) hoist(name string, value any) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidVariable, name)
	}
	if err := st.declare(name, expr.RenderRef(value)); err != nil {
		return err
	}
	st.body.WriteString("$" + name)
	return nil
}

func (st *state) declare(name, rendered string) error {
	if prev, ok := st.declared[name]; ok {
		if prev != rendered {
			return &ConflictError{Name: name, First: prev, Second: rendered}
		}
		return nil
	}
	st.declared[name] = rendered
	st.decls = append(st.decls, "LET $"+name+" = "+rendered+";\n")
	return nil
}

// merge folds a compiled query into the current one.
func (st *state) merge(q Query) error {
	for _, d := range q.Declarations {
		name, rendered, ok := parseDeclaration(d)
		if !ok {
			st.decls = append(st.decls, d)
			continue
		}
		if err := st.declare(name, rendered); err != nil {
			return err
		}
	}
	st.body.WriteString(q.Body)
	return nil
}

func parseDeclaration(d string) (name, rendered string, ok bool) {
	rest, found := strings.CutPrefix(d, "LET $")
	if !found {
		return "", "", false
	}
	name, rendered, found = strings.Cut(rest, " = ")
	if !found {
		return "", "", false
	}
	return name, strings.TrimSuffix(rendered, ";\n"), true
}

func splitFormat(format string) []string {
	var (
		segments []string
		cur      strings.Builder
	)
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			switch format[i+1] {
			case 'v':
				segments = append(segments, cur.String())
				cur.Reset()
				i++
				continue
			case '%':
				cur.WriteByte('%')
				i++
				continue
			}
		}
		cur.WriteByte(format[i])
	}
	return append(segments, cur.String())
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
