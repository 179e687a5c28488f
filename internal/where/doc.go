// Package where compiles nested filter trees into SurrealQL boolean
// expressions.
//
// # Filters
//
// A Node holds ordered field predicates and optional AND, OR and NOT groups:
//
//	n := where.New(
//	    where.F("name", "henry"),
//	    where.F("todos", where.Where("completed", true)),
//	).And1(where.Where("age", operator.Object{operator.Gt: 10}))
//
// Field predicates resolve against a schema.Registry. How a nested Node
// compiles depends on the field kind:
//
//	object     profile.address.city = "Oslo"
//	array      todos[WHERE completed = true]
//	relation   ->(friends WHERE name = "bingo")->user
//	record     bestFriend.name = "bingo"
//
// Relation and array levels start an unqualified frame; object and record
// levels extend the dotted prefix.
//
// # Output
//
// Compile returns text for use after WHERE. An empty filter compiles to the
// empty string and callers omit the WHERE clause.
//
// Unknown fields fail with *UnknownFieldError. Nesting deeper than
// Compiler.MaxDepth fails with *DepthError.
//
// # Documents
//
// FromYAML reads the same trees from YAML, keeping mapping order.
package where
