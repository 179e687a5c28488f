// Package operator holds the SurrealQL operator table and the dispatcher that
// turns operator-objects into comparison text.
//
// # Operator-objects
//
// A filter value of type Object names exactly one operator:
//
//	operator.Object{operator.Gt: 10}                        // age > 10
//	operator.Object{operator.Contains: []string{"a", "b"}}  // tags CONTAINS ["a","b"]
//	operator.Object{operator.Contains: "a"}                 // tags CONTAINS "a"
//
// Map tries comparators (gt, lt, gte, lte), then set operators (contains,
// containsAny, containsAll, containsNone), then eq. The first operator present
// wins. Any other value is not an operator-object and Map reports false.
//
// # Errors
//
// A malformed operand (a list given to gt, a number given to contains, ...)
// yields a *MalformedOperatorError that unwraps to ErrMalformedOperator.
package operator
