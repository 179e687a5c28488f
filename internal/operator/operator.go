package operator

import (
	"sort"

	"github.com/forgo/surql/internal/expr"
)

// Key is the symbolic name of a SurrealQL operator.
type Key string

// Named operators.
const (
	Eq           Key = "eq"
	Ne           Key = "ne"
	Gt           Key = "gt"
	Gte          Key = "gte"
	Lt           Key = "lt"
	Lte          Key = "lte"
	Contains     Key = "contains"
	ContainsNot  Key = "containsNot"
	ContainsAny  Key = "containsAny"
	ContainsAll  Key = "containsAll"
	ContainsNone Key = "containsNone"
	Inside       Key = "inside"
	NotInside    Key = "notInside"
	AllInside    Key = "allInside"
	AnyInside    Key = "anyInside"
	NoneInside   Key = "noneInside"
	Intersects   Key = "intersects"
	In           Key = "in"
	NotIn        Key = "notIn"
	Is           Key = "is"
	IsNot        Key = "isNot"
	And          Key = "and"
	Or           Key = "or"
	Not          Key = "not"
)

var table = map[Key]string{
	Eq:           "=",
	Ne:           "!=",
	Gt:           ">",
	Gte:          ">=",
	Lt:           "<",
	Lte:          "<=",
	Contains:     "CONTAINS",
	ContainsNot:  "CONTAINSNOT",
	ContainsAny:  "CONTAINSANY",
	ContainsAll:  "CONTAINSALL",
	ContainsNone: "CONTAINSNONE",
	Inside:       "INSIDE",
	NotInside:    "NOTINSIDE",
	AllInside:    "ALLINSIDE",
	AnyInside:    "ANYINSIDE",
	NoneInside:   "NONEINSIDE",
	Intersects:   "INTERSECTS",
	In:           "IN",
	NotIn:        "NOT IN",
	Is:           "IS",
	IsNot:        "IS NOT",
	And:          "AND",
	Or:           "OR",
	Not:          "NOT",

	// Symbolic operators map to themselves; they exist so templates can
	// reference them by key.
	"@@": "@@",
	"??": "??",
	"?:": "?:",
	"=":  "=",
	"!=": "!=",
	"==": "==",
	"?=": "?=",
	"*=": "*=",
	"~":  "~",
	"!~": "!~",
	"?~": "?~",
	"*~": "*~",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
	"+":  "+",
	"-":  "-",
	"*":  "*",
	"/":  "/",
	"**": "**",
}

// Text returns the SurrealQL spelling of an operator.
func Text(k Key) (string, bool) {
	s, ok := table[k]
	return s, ok
}

// Expr returns the operator as an expression for use inside templates. An
// unknown key yields the zero Expr.
func Expr(k Key) expr.Expr {
	s, ok := table[k]
	if !ok {
		return expr.Expr{}
	}
	return expr.New(s)
}

// Keys lists every known operator key in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
