// Package model declares the example entities used by the CLI, the fixtures
// and the tests.
//
// # Domain Entities
//
//   - User: account with todos, a best friend and friends reached through the
//     Friends edge
//   - Friends: graph edge between two users, carrying the date it was created
//   - Car: owned by a user
//
// # Declarations
//
// Each entity is declared twice: as a Go struct for decoding rows and as a
// schema.Entity for the predicate compiler:
//
//	c := model.Catalog()
//	c.LookupField(model.EntityUser, "friends")
//	// Relation via Friends -> User
//
// # JSON Serialization
//
// Struct tags match the stored field names:
//
//	type Car struct {
//	    Name  string `json:"name"`
//	    Owner string `json:"owner"` // record id: user:xxx
//	}
package model
