package where

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/surql/internal/expr"
	"github.com/forgo/surql/internal/operator"
	"github.com/forgo/surql/internal/schema"
)

// testCatalog keeps storage names equal to entity names so traversals read
// ->(Friends WHERE ...)->User.
func testCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	c := schema.NewCatalog()
	require.NoError(t, c.Register(schema.Entity{
		Name: "Friends",
		Edge: true,
		Fields: []schema.Field{
			schema.Prim("date", "datetime"),
		},
	}))
	require.NoError(t, c.Register(schema.Entity{
		Name: "User",
		Fields: []schema.Field{
			schema.Prim("name", "string"),
			schema.Prim("age", "number"),
			schema.Prim("tags", "array"),
			schema.Prim("field", "string"),
			schema.Prim("created", "datetime"),
			schema.Rel("friends", schema.RelationParams{
				Via: "Friends", Direction: schema.Outgoing, Select: "->", Target: "User",
			}),
			schema.Rel("followers", schema.RelationParams{
				Via: "Friends", Direction: schema.Incoming, Select: "<-", Target: "User",
			}),
			schema.Obj("todos", schema.Prim("completed", "bool"), schema.Prim("title", "string")),
			schema.ArrayOf("tasks", schema.Obj("", schema.Prim("done", "bool"), schema.Prim("title", "string"))),
			schema.Obj("profile",
				schema.Obj("address", schema.Prim("city", "string")),
				schema.ArrayOf("phones", schema.Obj("", schema.Prim("kind", "string"))),
			),
			schema.Obj("meta"),
			schema.Ref("bestFriend", "User"),
		},
	}))
	return c
}

func compile(t *testing.T, n Node) (string, error) {
	t.Helper()
	return NewCompiler(testCatalog(t)).Compile("User", n)
}

func mustCompile(t *testing.T, n Node) string {
	t.Helper()
	got, err := compile(t, n)
	require.NoError(t, err)
	return got
}

func TestCompile_Idempotent(t *testing.T) {
	c := NewCompiler(testCatalog(t))
	n := New(
		F("name", "henry"),
		F("todos", Where("completed", true)),
		F("friends", Where("name", "bingo")),
	).OrAll(Where("age", operator.Object{operator.Gt: 10}))

	first, err := c.Compile("User", n)
	require.NoError(t, err)
	second, err := c.Compile("User", n)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompile_Qualification(t *testing.T) {
	assert.Equal(t, "todos.completed = true", mustCompile(t, Where("todos", Where("completed", true))))
	assert.Equal(t, `profile.address.city = "Oslo"`,
		mustCompile(t, Where("profile", Where("address", Where("city", "Oslo")))))
	assert.Equal(t, `todos.completed = false AND todos.title CONTAINS "x"`,
		mustCompile(t, Where("todos", New(
			F("completed", false),
			F("title", operator.Object{operator.Contains: "x"}),
		))))
}

func TestCompile_RelationTraversal(t *testing.T) {
	assert.Equal(t, `->(Friends WHERE name = "bingo")->User`,
		mustCompile(t, Where("friends", Where("name", "bingo"))))

	assert.Equal(t, `<-(Friends WHERE date > d"2024-01-01T00:00:00Z")<-User`,
		mustCompile(t, Where("followers", Where("date", expr.Gt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))))

	// Relation levels start a fresh, unqualified frame.
	assert.Equal(t, `->(Friends WHERE todos.completed = true)->User`,
		mustCompile(t, Where("friends", Where("todos", Where("completed", true)))))
}

func TestCompile_RelationUnknownField(t *testing.T) {
	got, err := compile(t, Where("friends", Where("nickname", "x")))
	assert.Empty(t, got)
	var ufe *UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "nickname", ufe.Field)
	assert.Equal(t, "Friends|User", ufe.Entity)
}

func TestCompile_LogicalCombination(t *testing.T) {
	n := Where("name", "henry").And1(Where("age", operator.Object{operator.Gt: 10}))
	assert.Equal(t, `name = "henry" AND age > 10`, mustCompile(t, n))

	n = Where("name", "a").OrAll(
		Where("age", operator.Object{operator.Lt: 5}),
		Where("age", operator.Object{operator.Gt: 50}),
	)
	assert.Equal(t, `name = "a" OR age < 5 OR age > 50`, mustCompile(t, n))

	n = New().AndAll(Where("name", "a"), New(), Where("age", 3))
	assert.Equal(t, `name = "a" AND age = 3`, mustCompile(t, n))

	n = New().Or1(Where("name", "a"))
	assert.Equal(t, `name = "a"`, mustCompile(t, n))
}

func TestCompile_OperatorDispatch(t *testing.T) {
	assert.Equal(t, `tags CONTAINS ["a","b"]`,
		mustCompile(t, Where("tags", operator.Object{operator.Contains: []string{"a", "b"}})))
	assert.Equal(t, `tags CONTAINS "a"`,
		mustCompile(t, Where("tags", operator.Object{operator.Contains: "a"})))
	assert.Equal(t, `tags CONTAINSNONE ["x"]`,
		mustCompile(t, Where("tags", operator.Object{operator.ContainsNone: []string{"x"}})))
}

func TestCompile_ReferenceLiteral(t *testing.T) {
	assert.Equal(t, "field = user:42", mustCompile(t, Where("field", "user:42")))
	assert.Equal(t, `field = "plain"`, mustCompile(t, Where("field", "plain")))
	assert.Equal(t, `tags = ["a","b"]`, mustCompile(t, Where("tags", []string{"a", "b"})))
	assert.Equal(t, "age = 3.5", mustCompile(t, Where("age", 3.5)))
	assert.Equal(t, `created = d"2024-05-06T07:08:09Z"`,
		mustCompile(t, Where("created", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))))
}

func TestCompile_UnknownField(t *testing.T) {
	got, err := compile(t, New(F("name", "x"), F("doesNotExist", 1)))
	assert.Empty(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))

	var ufe *UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "User", ufe.Entity)
	assert.Equal(t, "doesNotExist", ufe.Field)

	_, err = compile(t, Where("todos", Where("missing", 1)))
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "todos", ufe.Entity)

	// Inside logical groups as well.
	_, err = compile(t, New().NotAll(Where("nope", 1)))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCompile_Empty(t *testing.T) {
	assert.Equal(t, "", mustCompile(t, Node{}))
	assert.Equal(t, "", mustCompile(t, New(F("name", nil), F("", 1))))
	assert.Equal(t, "", mustCompile(t, Where("friends", New())))
}

func TestCompile_DepthGuard(t *testing.T) {
	c := &Compiler{Registry: testCatalog(t), MaxDepth: 2}
	n := Where("meta", Where("a", Where("b", Where("c", 1))))

	got, err := c.Compile("User", n)
	assert.Empty(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecursionDepth))
	var de *DepthError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Max)

	// 40 levels of AND exceed the default.
	deep := Where("name", "x")
	for i := 0; i < 40; i++ {
		deep = New().And1(deep)
	}
	_, err = NewCompiler(testCatalog(t)).Compile("User", deep)
	assert.ErrorIs(t, err, ErrRecursionDepth)

	shallow := Where("name", "x")
	for i := 0; i < 10; i++ {
		shallow = New().And1(shallow)
	}
	assert.Equal(t, `name = "x"`, mustCompile(t, shallow))
}

func TestCompile_NotList(t *testing.T) {
	n := Where("name", "a").NotAll(Where("age", 1), Where("age", 2))

	// Each element is prefixed with NOT in turn.
	assert.Equal(t, `name = "a" NOT age = 1 NOT age = 2`, mustCompile(t, n))
	assert.Equal(t, `NOT name = "a"`, mustCompile(t, New().Not1(Where("name", "a"))))
	assert.Equal(t, `NOT age = 1 NOT age = 2`, mustCompile(t, New().NotAll(Where("age", 1), Where("age", 2))))

	grouped := &Compiler{Registry: testCatalog(t), GroupNot: true}
	got, err := grouped.Compile("User", n)
	require.NoError(t, err)
	assert.Equal(t, `name = "a" AND NOT (age = 1 AND age = 2)`, got)

	got, err = grouped.Compile("User", New().Not1(Where("name", "a")))
	require.NoError(t, err)
	assert.Equal(t, `NOT (name = "a")`, got)
}

func TestCompile_RuntimeShapeWins(t *testing.T) {
	// name is declared primitive; a filter value takes the nested path.
	assert.Equal(t, `name.first = "x"`, mustCompile(t, Where("name", Where("first", "x"))))
	assert.Equal(t, `name.first.initial = "x"`,
		mustCompile(t, Where("name", Where("first", Where("initial", "x")))))

	// todos is declared an object; a literal is compared directly.
	assert.Equal(t, `todos = {"completed":true}`,
		mustCompile(t, Where("todos", map[string]any{"completed": true})))
}

func TestCompile_Arrays(t *testing.T) {
	assert.Equal(t, "tasks[WHERE done = true]", mustCompile(t, Where("tasks", Where("done", true))))
	assert.Equal(t, `tasks[WHERE done = false AND title = "x"]`,
		mustCompile(t, Where("tasks", New(F("done", false), F("title", "x")))))
	assert.Equal(t, `profile.phones[WHERE kind = "mobile"]`,
		mustCompile(t, Where("profile", Where("phones", Where("kind", "mobile")))))
}

func TestCompile_OpenObject(t *testing.T) {
	assert.Equal(t, `meta.source = "import" AND meta.batch > 3`,
		mustCompile(t, Where("meta", New(
			F("source", "import"),
			F("batch", operator.Object{operator.Gt: 3}),
		))))
}

func TestCompile_RecordReference(t *testing.T) {
	assert.Equal(t, "bestFriend = user:bingo", mustCompile(t, Where("bestFriend", "user:bingo")))
	assert.Equal(t, `bestFriend.name = "bingo"`, mustCompile(t, Where("bestFriend", Where("name", "bingo"))))

	_, err := compile(t, Where("bestFriend", Where("nope", 1)))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCompile_Expressions(t *testing.T) {
	assert.Equal(t, "age > 5", mustCompile(t, Where("age", expr.Gt(5))))
	assert.Equal(t, "created = time::now()", mustCompile(t, Where("created", expr.Time.Now())))
	assert.Equal(t, "string::len(name) > 3", mustCompile(t, Where("name", Raw("string::len(name) > 3"))))
	assert.Equal(t, "created <= time::now()", mustCompile(t, Where("created", operator.Object{operator.Lte: expr.Time.Now()})))

	n := New(F("name", "x"), F("todos", &Node{Fields: []Pred{F("completed", true)}}))
	assert.Equal(t, `name = "x" AND todos.completed = true`, mustCompile(t, n))
}

func TestCompile_MalformedOperator(t *testing.T) {
	got, err := compile(t, Where("tags", operator.Object{operator.Contains: 5}))
	assert.Empty(t, got)
	assert.ErrorIs(t, err, operator.ErrMalformedOperator)
}

func TestCompile_Concurrent(t *testing.T) {
	c := NewCompiler(testCatalog(t))
	n := New(F("name", "henry"), F("friends", Where("name", "bingo"))).
		And1(Where("todos", Where("completed", true)))

	want, err := c.Compile("User", n)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := c.Compile("User", n)
				assert.NoError(t, err)
				assert.Equal(t, want, got)
			}
		}()
	}
	wg.Wait()
	assert.True(t, strings.HasPrefix(want, `name = "henry" AND ->(Friends`))
}
