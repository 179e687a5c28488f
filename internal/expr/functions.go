package expr

import (
	"strconv"
	"strings"
)

// Function namespaces mirror SurrealQL's built-in function families:
//
//	expr.String.Uppercase(expr.Field("name")).As("upper_name")
//	// string::uppercase(name) AS upper_name
var (
	String stringFuncs
	Array  arrayFuncs
	Math   mathFuncs
	Time   timeFuncs
	Meta   metaFuncs
	Search searchFuncs
)

// Value is the VALUE keyword used in SELECT VALUE projections.
var Value = New("VALUE")

// Val wraps raw text; an alias of New kept for template readability.
func Val(text string) Expr { return New(text) }

// Field references a (possibly dotted) field path.
func Field(path string) Expr { return New(path) }

// Table references a table by storage name.
func Table(name string) Expr { return New(name) }

// Param references a query parameter: Param("auth") renders "$auth".
func Param(name string) Expr { return New("$" + strings.TrimPrefix(name, "$")) }

// Limit renders a LIMIT clause.
func Limit(n int) Expr { return New("LIMIT " + strconv.Itoa(n)) }

// Count renders count() or count(<value>).
func Count(v ...any) Expr { return call("count", v...) }

func call(name string, args ...any) Expr {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Render(a)
	}
	return New(name + "(" + strings.Join(parts, ", ") + ")")
}

type stringFuncs struct{}

func (stringFuncs) Concat(v ...any) Expr             { return call("string::concat", v...) }
func (stringFuncs) Contains(v, search any) Expr      { return call("string::contains", v, search) }
func (stringFuncs) EndsWith(v, search any) Expr      { return call("string::ends_with", v, search) }
func (stringFuncs) StartsWith(v, search any) Expr    { return call("string::starts_with", v, search) }
func (stringFuncs) Join(sep any, v ...any) Expr      { return call("string::join", append([]any{sep}, v...)...) }
func (stringFuncs) Len(v any) Expr                   { return call("string::len", v) }
func (stringFuncs) Lowercase(v any) Expr             { return call("string::lowercase", v) }
func (stringFuncs) Uppercase(v any) Expr             { return call("string::uppercase", v) }
func (stringFuncs) Repeat(v any, n int) Expr         { return call("string::repeat", v, n) }
func (stringFuncs) Replace(v, search, with any) Expr { return call("string::replace", v, search, with) }
func (stringFuncs) Reverse(v any) Expr               { return call("string::reverse", v) }
func (stringFuncs) Slice(v any, start, end int) Expr { return call("string::slice", v, start, end) }
func (stringFuncs) Slug(v any) Expr                  { return call("string::slug", v) }
func (stringFuncs) Split(v, sep any) Expr            { return call("string::split", v, sep) }
func (stringFuncs) Trim(v any) Expr                  { return call("string::trim", v) }

type arrayFuncs struct{}

func (arrayFuncs) Add(arr, v any) Expr        { return call("array::add", arr, v) }
func (arrayFuncs) All(arr any) Expr           { return call("array::all", arr) }
func (arrayFuncs) Any(arr any) Expr           { return call("array::any", arr) }
func (arrayFuncs) Append(arr, v any) Expr     { return call("array::append", arr, v) }
func (arrayFuncs) At(arr any, i int) Expr     { return call("array::at", arr, i) }
func (arrayFuncs) Combine(a, b any) Expr      { return call("array::combine", a, b) }
func (arrayFuncs) Complement(a, b any) Expr   { return call("array::complement", a, b) }
func (arrayFuncs) Concat(a, b any) Expr       { return call("array::concat", a, b) }
func (arrayFuncs) Difference(a, b any) Expr   { return call("array::difference", a, b) }
func (arrayFuncs) Distinct(arr any) Expr      { return call("array::distinct", arr) }
func (arrayFuncs) Flatten(arr any) Expr       { return call("array::flatten", arr) }
func (arrayFuncs) Group(arr any) Expr         { return call("array::group", arr) }
func (arrayFuncs) Intersect(a, b any) Expr    { return call("array::intersect", a, b) }
func (arrayFuncs) Len(arr any) Expr           { return call("array::len", arr) }
func (arrayFuncs) Max(arr any) Expr           { return call("array::max", arr) }
func (arrayFuncs) Min(arr any) Expr           { return call("array::min", arr) }
func (arrayFuncs) Pop(arr any) Expr           { return call("array::pop", arr) }
func (arrayFuncs) Prepend(arr, v any) Expr    { return call("array::prepend", arr, v) }
func (arrayFuncs) Push(arr, v any) Expr       { return call("array::push", arr, v) }
func (arrayFuncs) Remove(arr any, i int) Expr { return call("array::remove", arr, i) }
func (arrayFuncs) Reverse(arr any) Expr       { return call("array::reverse", arr) }
func (arrayFuncs) Sort(arr any) Expr          { return call("array::sort", arr) }
func (arrayFuncs) Union(a, b any) Expr        { return call("array::union", a, b) }

type mathFuncs struct{}

func (mathFuncs) Abs(v any) Expr                  { return call("math::abs", v) }
func (mathFuncs) Ceil(v any) Expr                 { return call("math::ceil", v) }
func (mathFuncs) Fixed(v any, precision int) Expr { return call("math::fixed", v, precision) }
func (mathFuncs) Floor(v any) Expr                { return call("math::floor", v) }
func (mathFuncs) Max(arr any) Expr                { return call("math::max", arr) }
func (mathFuncs) Mean(arr any) Expr               { return call("math::mean", arr) }
func (mathFuncs) Median(arr any) Expr             { return call("math::median", arr) }
func (mathFuncs) Min(arr any) Expr                { return call("math::min", arr) }
func (mathFuncs) Round(v any) Expr                { return call("math::round", v) }
func (mathFuncs) Sqrt(v any) Expr                 { return call("math::sqrt", v) }
func (mathFuncs) Sum(arr any) Expr                { return call("math::sum", arr) }

type timeFuncs struct{}

// Now renders time::now().
func (timeFuncs) Now() Expr                     { return call("time::now") }
func (timeFuncs) Day(v any) Expr                { return call("time::day", v) }
func (timeFuncs) Floor(v any, dur string) Expr  { return call("time::floor", v, New(dur)) }
func (timeFuncs) Format(v any, layout any) Expr { return call("time::format", v, layout) }
func (timeFuncs) Group(v any, unit any) Expr    { return call("time::group", v, unit) }
func (timeFuncs) Hour(v any) Expr               { return call("time::hour", v) }
func (timeFuncs) Round(v any, dur string) Expr  { return call("time::round", v, New(dur)) }
func (timeFuncs) Unix(v any) Expr               { return call("time::unix", v) }
func (timeFuncs) Year(v any) Expr               { return call("time::year", v) }

type metaFuncs struct{}

// ID renders record::id(<record>).
func (metaFuncs) ID(record string) Expr { return call("record::id", New(record)) }

// TB renders record::tb(<record>).
func (metaFuncs) TB(record string) Expr { return call("record::tb", New(record)) }

// Thing renders the record id "<table>:<id>".
func (metaFuncs) Thing(table, id string) Expr { return New(table + ":" + id) }

type searchFuncs struct{}

// Score renders search::score(n), aliased "score" unless bare is set.
func (searchFuncs) Score(n int, bare ...bool) Expr {
	e := call("search::score", n)
	if len(bare) > 0 && bare[0] {
		return e
	}
	return e.As("score")
}

func (searchFuncs) Highlight(prefix, suffix any, n int) Expr {
	return call("search::highlight", prefix, suffix, n)
}

func (searchFuncs) Offsets(n int) Expr { return call("search::offsets", n) }
