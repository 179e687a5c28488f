package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/surql/internal/schema"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := Catalog()
	assert.Equal(t, []string{"Car", "Friends", "User"}, c.Names())
	assert.Equal(t, "user", c.StorageName(EntityUser))

	friends, ok := c.LookupField(EntityUser, "friends")
	require.True(t, ok)
	assert.Equal(t, schema.Relation, friends.Kind)
	assert.Equal(t, EntityUser, friends.Relation.Target)

	in, ok := c.LookupField(EntityFriends, "in")
	require.True(t, ok)
	assert.Equal(t, schema.Record, in.Kind)

	todos, ok := c.LookupField(EntityUser, "todos")
	require.True(t, ok)
	_, ok = todos.Child("completed")
	assert.True(t, ok)
}

func TestRegister_Twice(t *testing.T) {
	t.Parallel()

	c := schema.NewCatalog()
	require.NoError(t, Register(c))
	assert.ErrorIs(t, Register(c), schema.ErrDuplicateEntity)
}

func TestUser_Validate(t *testing.T) {
	t.Parallel()

	u := &User{Name: "henry", Email: "henry@example.com", BestFriend: "user:bingo"}
	assert.Empty(t, u.Validate())

	u = &User{Name: strings.Repeat("x", MaxNameLength+1), Email: "nope", BestFriend: "car:1"}
	errs := u.Validate()
	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "bestFriend", errs[2].Field)

	u = &User{Email: "a@b.c"}
	errs = u.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "name is required", errs[0].Message)
}

func TestCar_Validate(t *testing.T) {
	t.Parallel()

	assert.Empty(t, (&Car{Name: "test", Owner: "user:1"}).Validate())
	assert.Len(t, (&Car{Owner: "1"}).Validate(), 2)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "user:henry", User{ID: "henry"}.RecordID())
	assert.Equal(t, "user:henry", User{ID: "user:henry"}.RecordID())
	assert.Equal(t, "car:1", Car{ID: "1"}.RecordID())
	assert.Equal(t, "friends:x", Friends{ID: "x"}.RecordID())
	assert.Empty(t, User{}.RecordID())
}
