// Package define renders SurrealDB DDL: indexes, scopes, tokens, tables and
// their permission clauses.
//
// Index definitions come from the index hints of the schema catalog and are
// what repository.Model.Migrate issues. Scope sign-in and sign-up statements
// and permission conditions are ql.Query values, so values interpolated into
// them travel as LET declarations hoisted ahead of the DEFINE:
//
//	signin := ql.Must(ql.Format("SELECT * FROM user WHERE email = %v AND crypto::argon2::compare(password, %v)",
//	    expr.Param("email"), expr.Param("password")))
//	q, err := define.Scope{Name: "users", Session: "7d", Signin: signin}.Query()
//
// Permission conditions may also be where.Node filters, compiled against the
// table's entity by the predicate compiler.
package define
