// Package expr provides the SurrealQL expression fragment type and the single
// set of rules used to turn Go values into query text.
//
// # Expressions
//
// An Expr is raw query text that is never quoted when embedded:
//
//	expr.Field("todos.completed").As("completed") // todos.completed AS completed
//	expr.Gt(10)                                   // > 10
//	expr.Field("age").Gte(18)                     // age >= 18
//
// # Rendering
//
// Render and RenderRef are the only places literals are quoted:
//
//   - Expr: emitted verbatim
//   - string: double-quoted with escaping
//   - time.Time: d"2024-01-02T03:04:05Z"
//   - slice/map: rendered element-wise
//   - anything else: JSON
//
// RenderRef additionally leaves strings containing ':' unquoted so that
// "user:42" stays a record reference.
//
// # Functions
//
// The String, Array, Math, Time, Meta and Search namespaces build calls to
// SurrealQL's built-in functions.
package expr
