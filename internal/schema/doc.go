// Package schema describes entities and their fields for the predicate
// compiler and the CRUD façade.
//
// Descriptors are plain values built once at registration time:
//
//	c := schema.NewCatalog()
//	c.MustRegister(
//	    schema.Entity{Name: "Friends", Edge: true, Fields: []schema.Field{
//	        schema.Prim("date", "datetime"),
//	    }},
//	    schema.Entity{Name: "User", Fields: []schema.Field{
//	        schema.Prim("name", "string"),
//	        schema.Rel("friends", schema.RelationParams{
//	            Via: "Friends", Direction: schema.Outgoing, Select: "->", Target: "User",
//	        }),
//	    }},
//	)
//
// # Inheritance
//
// An entity that Extends another gets the parent's fields first, followed by
// its own. Edge entities gain "in" and "out" record fields and every entity
// ends with an "id" field.
//
// Catalog is safe for concurrent use. Lookups take a read lock only.
package schema
