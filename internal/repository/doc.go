// Package repository is the CRUD façade over the schema catalog.
//
// A Model binds one entity to a database connection. Every operation first
// builds a Statement with a Builder method (BuildSelect, BuildCreate, ...),
// which performs no I/O, then executes it:
//
//	users := repository.NewModel(db, catalog, model.EntityUser, nil)
//	rows, err := users.Select(ctx, repository.SelectOptions{
//	    Fields: []string{"name", "friends"},
//	    Where:  where.Where("name", operator.Object{operator.Contains: "hen"}),
//	    Fetch:  []string{"friends"},
//	})
//	// SELECT name, ->friends->user AS friends FROM user
//	//     WHERE name CONTAINS "hen" FETCH friends
//
// Filters are where.Node trees compiled by the predicate compiler, or
// ql.Query templates whose LET declarations are placed ahead of the
// statement. An empty compiled filter omits WHERE.
//
// # Content
//
// Create, Update, Merge, Insert and Relate send their payload as a bound
// variable. Maps are walked and values implementing Recorder (the model
// structs) are replaced by their record ids; structs are encoded through
// their JSON tags.
//
// # Results
//
// SurrealDB answers a script with one entry per statement. Every method
// returns the rows of the last statement; Decode and SelectAs turn them into
// typed values.
//
// # Logging
//
// Each compiled statement is logged at debug level with the entity name.
package repository
