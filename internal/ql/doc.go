// Package ql compiles statement templates: literal text interleaved with
// embedded values.
//
//	q, err := ql.Format("SELECT * FROM %v WHERE email = %v",
//	    expr.Table("user"), ql.Let("email", "a@b.com"))
//	// q.Declarations: ["LET $email = \"a@b.com\";\n"]
//	// q.Body:         "SELECT * FROM user WHERE email = $email"
//
// Embedded values render as follows:
//
//   - expr.Expr is inlined verbatim
//   - ql.Let hoists into a LET declaration and inlines $name
//   - a nested Query merges its declarations and inlines its body
//   - strings are single-quoted, numbers and bools print as is
//   - everything else renders through expr.Render
//
// Declarations keep the order in which their variables first appear. Hoisting
// the same name twice with the same value declares it once; with different
// values it fails with ErrConflictingVariable.
package ql
