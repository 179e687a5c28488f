// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories write through the
// repository façade and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB, model.Catalog())
//	alice := f.CreateUser(t)
//	bob := f.CreateUser(t, fixtures.WithName("bob"))
//	f.Befriend(t, alice, bob)
//	car := f.CreateCar(t, alice)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/surql/internal/database"
	"github.com/forgo/surql/internal/model"
	"github.com/forgo/surql/internal/repository"
)

// Factory creates test entities in the database
type Factory struct {
	db      database.Database
	catalog repository.Catalog
}

// New creates a new fixture factory
func New(db database.Database, catalog repository.Catalog) *Factory {
	return &Factory{db: db, catalog: catalog}
}

func (f *Factory) model(entity string) *repository.Model {
	return repository.NewModel(f.db, f.catalog, entity, nil)
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Name     string
	Email    string
	Password string
	Todos    []model.Todo
}

// WithName sets the user's name.
func WithName(name string) func(*UserOpts) {
	return func(o *UserOpts) { o.Name = name }
}

// WithTodos sets the user's todo list.
func WithTodos(todos ...model.Todo) func(*UserOpts) {
	return func(o *UserOpts) { o.Todos = todos }
}

// CreateUser creates a user with optional customizations. The stored
// password is a bcrypt hash; the returned user carries none.
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Name:     "user_" + id,
		Email:    fmt.Sprintf("user_%s@test.local", id),
		Password: "testpass123",
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	user := model.User{Name: o.Name, Email: o.Email, Password: string(hash), Todos: o.Todos}
	if errs := user.Validate(); len(errs) > 0 {
		t.Fatalf("fixtures: invalid user: %v", errs)
	}

	created := createOne[model.User](t, f.model(model.EntityUser), user)
	created.Password = ""
	return created
}

// ============================================================================
// Car Fixtures
// ============================================================================

// CarOpts customizes car creation
type CarOpts struct {
	Name  string
	Color string
	Model string
}

// CreateCar creates a car owned by owner.
func (f *Factory) CreateCar(t *testing.T, owner *model.User, opts ...func(*CarOpts)) *model.Car {
	t.Helper()

	o := &CarOpts{Name: "car_" + randomID(), Color: "red", Model: "roadster"}
	for _, fn := range opts {
		fn(o)
	}

	content := map[string]interface{}{
		"name":  o.Name,
		"color": o.Color,
		"model": o.Model,
		"owner": *owner,
	}
	return createOne[model.Car](t, f.model(model.EntityCar), content)
}

// ============================================================================
// Relation Fixtures
// ============================================================================

// Befriend relates from to to through the friends edge.
func (f *Factory) Befriend(t *testing.T, from, to *model.User) *model.Friends {
	t.Helper()

	rows, err := f.model(model.EntityUser).Relate(ctx(t), repository.Relation{
		FromID:  from.RecordID(),
		Via:     model.EntityFriends,
		To:      model.EntityUser,
		ToID:    to.RecordID(),
		Content: map[string]interface{}{"date": time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("fixtures: failed to relate users: %v", err)
	}
	edges, err := repository.Decode[model.Friends](rows)
	if err != nil || len(edges) == 0 {
		t.Fatalf("fixtures: failed to parse edge: %v", err)
	}
	return &edges[0]
}

func createOne[T any](t *testing.T, m *repository.Model, content interface{}) *T {
	t.Helper()

	rows, err := m.Create(ctx(t), content)
	if err != nil {
		t.Fatalf("fixtures: failed to create %s: %v", m.Entity, err)
	}
	out, err := repository.Decode[T](rows)
	if err != nil || len(out) == 0 {
		t.Fatalf("fixtures: failed to parse %s: %v", m.Entity, err)
	}
	return &out[0]
}
