package repository_test

import (
	"testing"

	"github.com/forgo/surql/internal/model"
	"github.com/forgo/surql/internal/operator"
	"github.com/forgo/surql/internal/repository"
	"github.com/forgo/surql/internal/testing/fixtures"
	"github.com/forgo/surql/internal/testing/helpers"
	"github.com/forgo/surql/internal/testing/testdb"
	"github.com/forgo/surql/internal/where"
)

/*
FEATURE: Model façade against SurrealDB
DOMAIN: Repository

These tests run only when SURQL_TEST_DB is set:

	surreal start memory -A --user root --pass root
	SURQL_TEST_DB=1 go test ./internal/repository/...

ACCEPTANCE CRITERIA:
===================

AC-E2E-001: Migration
  GIVEN a fresh namespace
  WHEN every entity is migrated
  THEN the declared indexes exist
  AND a second migration defines nothing

AC-E2E-002: Create and filter
  GIVEN users created through the façade
  WHEN selecting with a compiled filter
  THEN only matching users are returned

AC-E2E-003: Relations
  GIVEN two befriended users
  WHEN selecting the friends projection
  THEN the friend is returned through the edge

AC-E2E-004: Delete
  GIVEN a user
  WHEN it is deleted by id
  THEN the record no longer exists
*/

func TestE2E_Migration(t *testing.T) {
	// AC-E2E-001: Migration
	tdb := testdb.New(t, model.Catalog())
	defer tdb.Close()

	info, err := tdb.Model(model.EntityUser).Info(tdb.Ctx())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(info.Indexes) == 0 {
		t.Error("expected user indexes to be defined")
	}

	stmts, err := tdb.Model(model.EntityUser).Migrate(tdb.Ctx())
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("expected second migration to be empty, got %v", stmts)
	}
}

func TestE2E_CreateAndFilter(t *testing.T) {
	// AC-E2E-002: Create and filter
	tdb := testdb.New(t, model.Catalog())
	defer tdb.Close()

	f := fixtures.New(tdb.DB, tdb.Catalog)
	henry := f.CreateUser(t, fixtures.WithName("henry"), fixtures.WithTodos(model.Todo{Title: "walk", Completed: true}))
	f.CreateUser(t, fixtures.WithName("bingo"))

	users, err := repository.SelectAs[model.User](tdb.Ctx(), tdb.Model(model.EntityUser), repository.SelectOptions{
		Fields: []string{"id", "name", "todos"},
		Where:  where.Where("todos", where.Where("completed", true)),
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(users) != 1 || users[0].ID != henry.ID {
		t.Errorf("expected only %s, got %+v", henry.ID, users)
	}

	n, err := tdb.Model(model.EntityUser).Count(tdb.Ctx(), where.Where("name", operator.Object{operator.Contains: "n"}))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}

func TestE2E_Relations(t *testing.T) {
	// AC-E2E-003: Relations
	tdb := testdb.New(t, model.Catalog())
	defer tdb.Close()

	f := fixtures.New(tdb.DB, tdb.Catalog)
	alice := f.CreateUser(t, fixtures.WithName("alice"))
	bob := f.CreateUser(t, fixtures.WithName("bob"))
	f.Befriend(t, alice, bob)

	users, err := repository.SelectAs[model.User](tdb.Ctx(), tdb.Model(model.EntityUser), repository.SelectOptions{
		ID:     alice.ID,
		Fields: []string{"id", "friends"},
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(users) != 1 || len(users[0].Friends) != 1 {
		t.Fatalf("expected one user with one friend, got %+v", users)
	}
	if users[0].Friends[0].Name != "bob" {
		t.Errorf("expected friend bob, got %q", users[0].Friends[0].Name)
	}
}

func TestE2E_Delete(t *testing.T) {
	// AC-E2E-004: Delete
	tdb := testdb.New(t, model.Catalog())
	defer tdb.Close()

	f := fixtures.New(tdb.DB, tdb.Catalog)
	user := f.CreateUser(t)
	helpers.AssertRecordExists(t, tdb.DB, "user", user.ID)

	if _, err := tdb.Model(model.EntityUser).Delete(tdb.Ctx(), user.ID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	helpers.AssertRecordNotExists(t, tdb.DB, "user", user.ID)
}
