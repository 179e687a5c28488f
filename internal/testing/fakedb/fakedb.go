// Package fakedb provides an in-memory database.LiveDatabase that records
// every statement it receives and replays canned responses.
//
// Usage:
//
//	db := fakedb.New()
//	db.Respond(fakedb.Rows(map[string]interface{}{"id": "user:1", "name": "henry"}))
//	repo := repository.NewModel(db, catalog, model.EntityUser, nil)
//	rows, _ := repo.Select(ctx, repository.SelectOptions{})
//	db.Last() // "SELECT * FROM user"
package fakedb

import (
	"context"
	"sync"

	"github.com/forgo/surql/internal/database"
)

// Call is one recorded statement.
type Call struct {
	Query string
	Vars  map[string]interface{}
}

// Response is what the fake returns for one call.
type Response struct {
	Results []interface{}
	Err     error
}

// DB is a fake database. The zero value is not usable; call New.
type DB struct {
	mu        sync.Mutex
	calls     []Call
	responses []Response
	live      map[string]chan database.Notification
	killed    []string
	connected bool
}

// New creates an empty fake.
func New() *DB {
	return &DB{live: make(map[string]chan database.Notification)}
}

// Rows builds a single-statement response whose result is rows.
func Rows(rows ...interface{}) Response {
	return Statements(rows)
}

// Statements builds a response with one {status, result} entry per argument.
func Statements(results ...interface{}) Response {
	out := make([]interface{}, len(results))
	for i, r := range results {
		out[i] = map[string]interface{}{"status": "OK", "result": r}
	}
	return Response{Results: out}
}

// Fail builds a response that returns err.
func Fail(err error) Response {
	return Response{Err: err}
}

// Respond queues responses, consumed in order by Query, QueryOne and Execute.
// Once exhausted, calls succeed with an empty result.
func (d *DB) Respond(rs ...Response) *DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, rs...)
	return d
}

// Calls returns every recorded statement.
func (d *DB) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Last returns the most recent statement text.
func (d *DB) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return ""
	}
	return d.calls[len(d.calls)-1].Query
}

// Killed lists the live ids passed to Kill.
func (d *DB) Killed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.killed...)
}

// Push delivers a notification to the live query liveID.
func (d *DB) Push(liveID string, n database.Notification) {
	d.mu.Lock()
	ch := d.stream(liveID)
	d.mu.Unlock()
	n.LiveID = liveID
	ch <- n
}

func (d *DB) stream(liveID string) chan database.Notification {
	ch, ok := d.live[liveID]
	if !ok {
		ch = make(chan database.Notification, 16)
		d.live[liveID] = ch
	}
	return ch
}

func (d *DB) next(query string, vars map[string]interface{}) Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Query: query, Vars: vars})
	if len(d.responses) == 0 {
		return Statements([]interface{}{})
	}
	r := d.responses[0]
	d.responses = d.responses[1:]
	return r
}

// Connect implements database.Database.
func (d *DB) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
	return nil
}

// Close implements database.Database.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	return nil
}

// Ping implements database.Database.
func (d *DB) Ping(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return database.ErrConnection
	}
	return nil
}

// Query implements database.Database.
func (d *DB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	r := d.next(query, vars)
	return r.Results, r.Err
}

// QueryOne implements database.Database.
func (d *DB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	r := d.next(query, vars)
	if r.Err != nil {
		return nil, r.Err
	}
	if len(r.Results) == 0 {
		return nil, database.ErrNotFound
	}
	if resp, ok := r.Results[0].(map[string]interface{}); ok {
		if rows, ok := resp["result"].([]interface{}); ok {
			if len(rows) == 0 {
				return nil, database.ErrNotFound
			}
			return rows[0], nil
		}
		return resp["result"], nil
	}
	return r.Results[0], nil
}

// Execute implements database.Database.
func (d *DB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	return d.next(query, vars).Err
}

// BeginTx implements database.Database with a batch that flushes through
// Query on commit.
func (d *DB) BeginTx(ctx context.Context) (database.Transaction, error) {
	return database.NewBatchTx(ctx, d), nil
}

// Notifications implements database.LiveDatabase.
func (d *DB) Notifications(ctx context.Context, liveID string) (<-chan database.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream(liveID), nil
}

// Kill implements database.LiveDatabase and closes the stream.
func (d *DB) Kill(ctx context.Context, liveID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.killed = append(d.killed, liveID)
	if ch, ok := d.live[liveID]; ok {
		close(ch)
		delete(d.live, liveID)
	}
	return nil
}
