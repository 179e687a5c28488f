package database

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation (e.g., duplicate email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrLimitExceeded indicates a result set exceeded the maximum allowed size.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrLiveUnsupported indicates the transport cannot deliver live notifications.
	ErrLiveUnsupported = errors.New("live queries are not supported")

	// ErrTxDone indicates a transaction was already committed or rolled back.
	ErrTxDone = errors.New("transaction already finished")
)

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a script and returns one {status, result} entry per statement
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error

	// Transaction support
	BeginTx(ctx context.Context) (Transaction, error)
}

// LiveDatabase is a Database that can deliver live query notifications.
type LiveDatabase interface {
	Database

	// Notifications streams the notifications of a live query. The channel
	// is closed when the query is killed or the connection drops.
	Notifications(ctx context.Context, liveID string) (<-chan Notification, error)

	// Kill stops a live query.
	Kill(ctx context.Context, liveID string) error
}

// Transaction represents a database transaction
type Transaction interface {
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
	Commit() error
	Rollback() error
}

// Action is the kind of change a live notification reports.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Notification is one change delivered for a live query.
type Notification struct {
	LiveID string
	Action Action
	Result interface{}
}

// Config holds database configuration
type Config struct {
	Scheme    string // ws, wss, http or https; defaults to ws
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// Endpoint returns the connection URL.
func (c Config) Endpoint() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s:%s", scheme, c.Host, c.Port)
}

// SupportsLive reports whether the configured transport can stream live
// notifications. Only websocket connections can.
func (c Config) SupportsLive() bool {
	return c.Scheme == "" || c.Scheme == "ws" || c.Scheme == "wss"
}
