package repository_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/model"
	"github.com/forgo/surql/internal/operator"
	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/repository"
	"github.com/forgo/surql/internal/testing/fakedb"
	"github.com/forgo/surql/internal/where"
)

func newUsers(db database.Database) *repository.Model {
	return repository.NewModel(db, model.Catalog(), model.EntityUser, nil)
}

func TestModel_SelectAs(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Rows(
		map[string]interface{}{"id": "user:1", "name": "henry", "email": "henry@example.com"},
		map[string]interface{}{"id": "user:2", "name": "bingo", "email": "bingo@example.com", "bestFriend": "user:1"},
	))

	users, err := repository.SelectAs[model.User](context.Background(), newUsers(db), repository.SelectOptions{
		Fields: []string{"id", "name", "email", "bestFriend"},
		Where:  where.Where("email", operator.Object{operator.Contains: "example.com"}),
	})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "henry", users[0].Name)
	assert.Equal(t, "user:1", users[1].BestFriend)
	assert.Equal(t, `SELECT id, name, email, bestFriend FROM user WHERE email CONTAINS "example.com"`, db.Last())
}

func TestModel_QueryReturnsLastStatement(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Statements(
		nil,
		[]interface{}{map[string]interface{}{"name": "henry"}},
	))

	q := ql.Must(ql.Format("SELECT name FROM user WHERE name = %v", ql.Let("name", "henry")))
	rows, err := newUsers(db).Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{map[string]interface{}{"name": "henry"}}, rows)
	assert.Equal(t, "LET $name = \"henry\";\nSELECT name FROM user WHERE name = $name", db.Last())
}

func TestModel_Count(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Rows(map[string]interface{}{"count": float64(3)}))

	n, err := newUsers(db).Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestModel_CreatePassesContent(t *testing.T) {
	db := fakedb.New()
	_, err := newUsers(db).Create(context.Background(), &model.User{Name: "henry", Email: "henry@example.com"})
	require.NoError(t, err)

	calls := db.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "CREATE user CONTENT $content", calls[0].Query)
	assert.Equal(t, map[string]interface{}{"name": "henry", "email": "henry@example.com"}, calls[0].Vars["content"])
}

func TestModel_ErrorsPropagate(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Fail(database.ErrDuplicate))

	_, err := newUsers(db).Create(context.Background(), map[string]interface{}{"email": "a@b.c"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestModel_InsertNothing(t *testing.T) {
	db := fakedb.New()

	rows, err := newUsers(db).Insert(context.Background(), []model.User{})
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Empty(t, db.Calls())
}

func TestModel_LiveLifecycle(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Rows("0189d5e5-6fb1-7000-8000-000000000001"))
	users := newUsers(db)
	ctx := context.Background()

	id, err := users.Live(ctx, where.Where("name", "henry"), false)
	require.NoError(t, err)
	assert.Equal(t, "0189d5e5-6fb1-7000-8000-000000000001", id)
	assert.Equal(t, `LIVE SELECT * FROM user WHERE name = "henry"`, db.Last())

	ch, err := users.Notifications(ctx, id)
	require.NoError(t, err)
	db.Push(id, database.Notification{Action: database.ActionUpdate, Result: map[string]interface{}{"name": "henry"}})

	select {
	case n := <-ch:
		assert.Equal(t, database.ActionUpdate, n.Action)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	require.NoError(t, users.Kill(ctx, id))
	assert.Equal(t, []string{id}, db.Killed())
}

func TestModel_LiveFailsWithoutID(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Statements([]interface{}{}))

	_, err := newUsers(db).Live(context.Background(), nil, true)
	assert.ErrorIs(t, err, database.ErrQuery)
}

type plainDB struct{ database.Database }

func TestModel_LiveUnsupported(t *testing.T) {
	fake := fakedb.New()
	users := newUsers(plainDB{fake})

	_, err := users.Live(context.Background(), nil, false)
	assert.ErrorIs(t, err, database.ErrLiveUnsupported)
	_, err = users.Notifications(context.Background(), "x")
	assert.ErrorIs(t, err, database.ErrLiveUnsupported)

	require.NoError(t, users.Kill(context.Background(), "x"))
	assert.Equal(t, `KILL "x"`, fake.Last())
}

func TestModel_Migrate(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Statements(map[string]interface{}{
		"events":  map[string]interface{}{},
		"fields":  map[string]interface{}{},
		"indexes": map[string]interface{}{"car_name": "DEFINE INDEX car_name ON car FIELDS name"},
		"lives":   map[string]interface{}{},
		"tables":  map[string]interface{}{},
	}))
	cars := repository.NewModel(db, model.Catalog(), model.EntityCar, nil)

	stmts, err := cars.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DEFINE INDEX owner_model_idx ON TABLE car COLUMNS owner, model;"}, stmts)

	calls := db.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "INFO FOR TABLE car", calls[0].Query)
	assert.Equal(t, "BEGIN TRANSACTION;\n"+
		"DEFINE INDEX owner_model_idx ON TABLE car COLUMNS owner, model;\n"+
		"COMMIT TRANSACTION;", calls[1].Query)
}

func TestModel_MigrateUpToDate(t *testing.T) {
	db := fakedb.New().Respond(fakedb.Statements(map[string]interface{}{
		"indexes": map[string]interface{}{"user_email": "DEFINE INDEX user_email ON user FIELDS email UNIQUE"},
	}))

	stmts, err := newUsers(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stmts)
	assert.Len(t, db.Calls(), 1)
}

func TestModel_LogsCompiledStatements(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	users := newUsers(fakedb.New()).WithLogger(logger)

	_, err := users.Delete(context.Background(), "user:1", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "compiled statement")
	assert.Contains(t, buf.String(), "entity=User")
	assert.Contains(t, buf.String(), `statement="DELETE user:1"`)
}

func TestDecode(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := []interface{}{
		map[string]interface{}{"id": "friends:1", "in": "user:1", "out": "user:2", "date": when},
	}

	edges, err := repository.Decode[model.Friends](rows)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "user:2", edges[0].Out)
	assert.True(t, when.Equal(edges[0].Date))

	empty, err := repository.Decode[model.Friends](nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = repository.Decode[model.Friends]([]interface{}{"not an object"})
	assert.Error(t, err)
}
