package model

import (
	"strings"
	"time"

	"github.com/forgo/surql/internal/schema"
)

// Entity names
const (
	EntityUser    = "User"
	EntityCar     = "Car"
	EntityFriends = "Friends"
)

// Validation limits
const (
	MaxNameLength = 100
	MaxTodos      = 50
)

// Todo is an item of a user's todo list
type Todo struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// User is the example account entity
type User struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"`
	Todos       []Todo    `json:"todos,omitempty"`
	BestFriend  string    `json:"bestFriend,omitempty"`  // record id: user:xxx
	Friends     []User    `json:"friends,omitempty"`     // projected through the friends edge
	FriendsMeta []Friends `json:"friendsMeta,omitempty"` // edges selected with .*.out
}

// Car is owned by a user
type Car struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Model string `json:"model"`
	Owner string `json:"owner"` // record id: user:xxx
}

// Friends is the edge between two users
type Friends struct {
	ID   string    `json:"id,omitempty"`
	In   string    `json:"in,omitempty"`
	Out  string    `json:"out,omitempty"`
	Date time.Time `json:"date"`
}

// RecordID returns the user's record id, "user:<id>".
func (u User) RecordID() string { return recordID("user", u.ID) }

// RecordID returns the car's record id, "car:<id>".
func (c Car) RecordID() string { return recordID("car", c.ID) }

// RecordID returns the edge's record id, "friends:<id>".
func (f Friends) RecordID() string { return recordID("friends", f.ID) }

func recordID(table, id string) string {
	if id == "" || strings.Contains(id, ":") {
		return id
	}
	return table + ":" + id
}

// FieldError is a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks a user before it is written
func (u *User) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(u.Name) > MaxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be 100 characters or less"})
	}
	if !strings.Contains(u.Email, "@") {
		errs = append(errs, FieldError{Field: "email", Message: "email is invalid"})
	}
	if len(u.Todos) > MaxTodos {
		errs = append(errs, FieldError{Field: "todos", Message: "too many todos"})
	}
	if u.BestFriend != "" && !strings.HasPrefix(u.BestFriend, "user:") {
		errs = append(errs, FieldError{Field: "bestFriend", Message: "bestFriend must be a user record"})
	}
	return errs
}

// Validate checks a car before it is written
func (c *Car) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if !strings.HasPrefix(c.Owner, "user:") {
		errs = append(errs, FieldError{Field: "owner", Message: "owner must be a user record"})
	}
	return errs
}

// Entities returns the example entity declarations in registration order.
func Entities() []schema.Entity {
	return []schema.Entity{
		{
			Name:  EntityFriends,
			Table: "friends",
			Edge:  true,
			Fields: []schema.Field{
				schema.Prim("date", "datetime"),
			},
		},
		{
			Name:  EntityUser,
			Table: "user",
			Fields: []schema.Field{
				schema.Prim("name", "string"),
				schema.Rel("friends", schema.RelationParams{
					Via: EntityFriends, Direction: schema.Outgoing, Select: "->", Target: EntityUser,
				}),
				schema.Rel("friendsMeta", schema.RelationParams{
					Via: EntityFriends, Direction: schema.Outgoing, Select: ".*.out",
				}),
				schema.ArrayOf("todos", schema.Obj("",
					schema.Prim("title", "string"),
					schema.Prim("completed", "bool"),
				)),
				schema.Ref("bestFriend", EntityUser).Opt(),
				schema.Prim("password", "string"),
				schema.Prim("email", "string").WithIndex(schema.IndexHint{Name: "user_email", Unique: true}),
			},
		},
		{
			Name:  EntityCar,
			Table: "car",
			Fields: []schema.Field{
				schema.Prim("name", "string").WithIndex(schema.IndexHint{Name: "car_name", Search: true}),
				schema.Prim("color", "string"),
				schema.Prim("model", "string"),
				schema.Ref("owner", EntityUser),
			},
			Indexes: []schema.TableIndex{
				{Columns: []string{"owner", "model"}},
			},
		},
	}
}

// Register adds the example entities to c.
func Register(c *schema.Catalog) error {
	for _, e := range Entities() {
		if err := c.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns a fresh catalog holding the example entities.
func Catalog() *schema.Catalog {
	c := schema.NewCatalog()
	c.MustRegister(Entities()...)
	return c
}
