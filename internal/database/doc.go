// Package database provides the connection to SurrealDB.
//
// The package abstracts SurrealDB behind the Database interface so the CRUD
// façade and its tests never depend on a live server.
//
// # Database Interface
//
//	type Database interface {
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	    Close() error
//	}
//
// Query returns one {status, result} entry per statement of the script, so a
// script of LET declarations followed by a SELECT yields the rows in its last
// entry.
//
// # Connection Management
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    Namespace: "test",
//	    Database:  "test",
//	    User:      "root",
//	    Password:  "root",
//	})
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
//
// # Live Queries
//
// LiveDatabase adds Notifications and Kill. Only websocket connections
// support them; other transports return ErrLiveUnsupported.
//
// # Transactions
//
// Transactions are batch-based: statements accumulate and run together
// inside BEGIN TRANSACTION / COMMIT TRANSACTION. BeginTx returns a BatchTx;
// AtomicBatch runs a fixed list of statements through it.
//
// # Metrics
//
// Instrument wraps any Database with Prometheus query counters and latency
// histograms.
//
// # Error Types
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection failed
//   - ErrQuery: Statement rejected by the server
//   - ErrLiveUnsupported: Transport cannot stream live notifications
package database
