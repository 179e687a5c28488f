package database

// Transaction utilities.
//
// # AtomicBatch
//
// Statements that must succeed together:
//
//	batch := NewAtomicBatch()
//	batch.Add(query1, vars1)
//	batch.Add(query2, vars2)
//	batch.Execute(ctx, db)  // All or nothing
//
// # TxBuilder
//
// Use when combining statements with potentially conflicting variable names.
// Variables are namespaced ($email -> $v1_email):
//
//	tb := NewTxBuilder()
//	tb.Add("CREATE user SET email = $email", vars1)
//	tb.Add("CREATE car SET owner = $email", vars2)
//	ExecuteTransaction(ctx, db, tb)
//
// # BatchTx
//
// The Transaction returned by BeginTx. Statements queue in a TxBuilder and
// run as one script on Commit; Query and Execute on the transaction return
// no rows.
//
// All three are batch-based: statements accumulate and execute together
// inside BEGIN TRANSACTION / COMMIT TRANSACTION.

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
// This prevents variable name collisions when combining queries from different sources.
//
// Example: Two queries both using $email get namespaced to $1_email and $2_email.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	varCounter uint64
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add adds a statement to the transaction, namespacing variables to avoid collisions
// Returns the namespaced variable map for reference
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	// Longest names first so $email never rewrites part of $email_verified.
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	varMapping := make(map[string]string, len(vars))
	newQuery := query
	for _, varName := range names {
		counter := atomic.AddUint64(&tb.varCounter, 1)
		newVarName := fmt.Sprintf("v%d_%s", counter, varName)

		newQuery = strings.ReplaceAll(newQuery, "$"+varName, "$"+newVarName)

		tb.vars[newVarName] = vars[varName]
		varMapping[varName] = newVarName
	}

	tb.statements = append(tb.statements, newQuery)
	return varMapping
}

// AddRaw adds a raw statement without variable substitution
func (tb *TxBuilder) AddRaw(query string) {
	tb.statements = append(tb.statements, query)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	// Wrap in transaction block
	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// ExecuteTransaction executes a transaction built with TxBuilder
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}

	return db.Query(ctx, query, vars)
}

// BatchTx is a Transaction that queues statements and sends them through
// db as a single BEGIN/COMMIT script.
type BatchTx struct {
	db   Database
	ctx  context.Context
	tb   *TxBuilder
	done bool
}

// NewBatchTx starts a batch transaction that commits through db.
func NewBatchTx(ctx context.Context, db Database) *BatchTx {
	return &BatchTx{db: db, ctx: ctx, tb: NewTxBuilder()}
}

func (t *BatchTx) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	return nil, t.Execute(ctx, query, vars)
}

func (t *BatchTx) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	return nil, t.Execute(ctx, query, vars)
}

func (t *BatchTx) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	if t.done {
		return ErrTxDone
	}
	t.tb.Add(query, vars)
	return nil
}

// Commit sends the queued statements. An empty transaction sends nothing.
func (t *BatchTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if _, err := ExecuteTransaction(t.ctx, t.db, t.tb); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback drops the queued statements.
func (t *BatchTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.tb = NewTxBuilder()
	return nil
}

// AtomicBatch provides a simpler API for batch operations that should be atomic
type AtomicBatch struct {
	queries []batchQuery
}

type batchQuery struct {
	query string
	vars  map[string]interface{}
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		queries: make([]batchQuery, 0),
	}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.queries = append(ab.queries, batchQuery{query: query, vars: vars})
	return ab
}

// Execute runs all queries as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if len(ab.queries) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	for _, q := range ab.queries {
		if err := tx.Execute(ctx, q.query, q.vars); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return len(ab.queries)
}
