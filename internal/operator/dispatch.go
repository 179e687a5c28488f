package operator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/forgo/surql/internal/expr"
)

// ErrMalformedOperator indicates an operator-object whose operand does not fit
// the operator's arity or type.
var ErrMalformedOperator = errors.New("malformed operator")

// MalformedOperatorError describes which operator on which key was rejected.
type MalformedOperatorError struct {
	Key      string
	Operator Key
	Value    any
	Reason   string
}

func (e *MalformedOperatorError) Error() string {
	if e.Operator == "" {
		return fmt.Sprintf("%s on %q: %s", ErrMalformedOperator, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s %q on %q: %s", ErrMalformedOperator, e.Operator, e.Key, e.Reason)
}

func (e *MalformedOperatorError) Unwrap() error {
	return ErrMalformedOperator
}

// Object is an operator-object such as {gt: 10} or {contains: ["a", "b"]}.
type Object map[Key]any

// Dispatch order. The first key present in an Object wins.
var (
	comparators  = []Key{Gt, Lt, Gte, Lte}
	setOperators = []Key{Contains, ContainsAny, ContainsAll, ContainsNone}
	equality     = []Key{Eq}
)

// IsDispatchKey reports whether s names an operator Map understands.
func IsDispatchKey(s string) bool {
	for _, group := range [][]Key{comparators, setOperators, equality} {
		for _, k := range group {
			if string(k) == s {
				return true
			}
		}
	}
	return false
}

// Map renders "<key> <op> <value>" when value is an operator-object.
//
// It reports false with a nil error when value is not an operator-object at
// all; the caller then falls back to implicit equality. An operator-object
// with an unsupported key, no usable operator or a badly-typed operand is an
// error.
func Map(value any, key string) (string, bool, error) {
	obj, ok := asObject(value)
	if !ok {
		return "", false, nil
	}
	if k, ok := unsupportedKey(obj); ok {
		return "", false, &MalformedOperatorError{Key: key, Operator: k, Value: value, Reason: "unsupported operator"}
	}

	for _, k := range comparators {
		if v, ok := obj[k]; ok {
			s, err := mapComparator(key, k, v)
			return s, err == nil, err
		}
	}
	for _, k := range setOperators {
		if v, ok := obj[k]; ok {
			s, err := mapSet(key, k, v)
			return s, err == nil, err
		}
	}
	if v, ok := obj[Eq]; ok {
		s, err := mapEquality(key, v)
		return s, err == nil, err
	}

	return "", false, &MalformedOperatorError{Key: key, Value: value, Reason: "no recognised operator"}
}

// unsupportedKey returns the lowest non-dispatch key of obj.
func unsupportedKey(obj Object) (Key, bool) {
	var found []string
	for k := range obj {
		if !IsDispatchKey(string(k)) {
			found = append(found, string(k))
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Strings(found)
	return Key(found[0]), true
}

func asObject(value any) (Object, bool) {
	switch v := value.(type) {
	case Object:
		return v, true
	case map[Key]any:
		return Object(v), true
	}
	return nil, false
}

func mapComparator(key string, k Key, v any) (string, error) {
	if v == nil {
		return "", &MalformedOperatorError{Key: key, Operator: k, Value: v, Reason: "comparison needs an operand"}
	}
	if isCollection(v) {
		return "", &MalformedOperatorError{Key: key, Operator: k, Value: v, Reason: "comparison needs a scalar operand"}
	}
	return join(key, table[k], expr.Render(v)), nil
}

func mapSet(key string, k Key, v any) (string, error) {
	op := table[k]
	switch t := v.(type) {
	case string:
		return join(key, op, expr.Quote(t)), nil
	case expr.Expr:
		return join(key, op, t.String()), nil
	}

	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return "", &MalformedOperatorError{Key: key, Operator: k, Value: v, Reason: "operand must be a string or a list"}
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		switch el := rv.Index(i).Interface().(type) {
		case string:
			parts[i] = expr.Quote(el)
		case expr.Expr:
			parts[i] = el.String()
		default:
			return "", &MalformedOperatorError{Key: key, Operator: k, Value: v, Reason: "list elements must be strings or expressions"}
		}
	}
	return join(key, op, "["+strings.Join(parts, ",")+"]"), nil
}

func mapEquality(key string, v any) (string, error) {
	if _, nested := asObject(v); nested {
		return "", &MalformedOperatorError{Key: key, Operator: Eq, Value: v, Reason: "operand cannot be an operator-object"}
	}
	return join(key, table[Eq], expr.Render(v)), nil
}

func join(key, op, value string) string {
	if key == "" {
		return op + " " + value
	}
	return key + " " + op + " " + value
}

func isCollection(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case expr.Expr, string, []byte:
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		// time.Time is a struct but renders as a scalar literal.
		return !isTime(v)
	}
	return false
}

func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}
