package operator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/surql/internal/expr"
)

func TestMap_StringOperators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Object
		want  string
	}{
		{"contains list", Object{Contains: []string{"a", "b"}}, `tags CONTAINS ["a","b"]`},
		{"contains scalar", Object{Contains: "a"}, `tags CONTAINS "a"`},
		{"contains any", Object{ContainsAny: []any{"a"}}, `tags CONTAINSANY ["a"]`},
		{"contains all", Object{ContainsAll: []string{"a", "b"}}, `tags CONTAINSALL ["a","b"]`},
		{"contains none scalar", Object{ContainsNone: "z"}, `tags CONTAINSNONE "z"`},
		{"contains expression", Object{Contains: expr.Param("tag")}, `tags CONTAINS $tag`},
		{"contains mixed list", Object{Contains: []any{"a", expr.Param("b")}}, `tags CONTAINS ["a",$b]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Map(tt.value, "tags")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMap_Comparators(t *testing.T) {
	t.Parallel()

	got, ok, err := Map(Object{Gt: 10}, "age")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "age > 10", got)

	got, _, _ = Map(Object{Lte: 0}, "age")
	assert.Equal(t, "age <= 0", got, "a zero operand is still an operator")

	got, _, _ = Map(Object{Gte: expr.Time.Now()}, "created")
	assert.Equal(t, "created >= time::now()", got)
}

func TestMap_DispatchOrder(t *testing.T) {
	t.Parallel()

	// Comparators are tried before set operators, set operators before eq.
	got, _, err := Map(Object{Eq: 1, Contains: "x", Lt: 5}, "n")
	require.NoError(t, err)
	assert.Equal(t, "n < 5", got)

	got, _, err = Map(Object{Eq: 1, ContainsAll: "x"}, "n")
	require.NoError(t, err)
	assert.Equal(t, `n CONTAINSALL "x"`, got)
}

func TestMap_Equality(t *testing.T) {
	t.Parallel()

	got, ok, err := Map(Object{Eq: true}, "active")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "active = true", got)
}

func TestMap_NotAnOperatorObject(t *testing.T) {
	t.Parallel()

	for _, v := range []any{"plain", 42, []string{"a"}, map[string]any{"gt": 1}, nil} {
		got, ok, err := Map(v, "k")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, got)
	}
}

func TestMap_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Object
	}{
		{"contains number", Object{Contains: 5}},
		{"contains nil", Object{Contains: nil}},
		{"contains nested list", Object{ContainsAny: []any{[]string{"a"}}}},
		{"contains numbers", Object{Contains: []int{1, 2}}},
		{"contains any mixed", Object{ContainsAny: []any{"a", 2}}},
		{"gt nil", Object{Gt: nil}},
		{"lte nil", Object{Lte: nil}},
		{"gt list", Object{Gt: []int{1, 2}}},
		{"eq operator object", Object{Eq: Object{Gt: 1}}},
		{"empty", Object{}},
		{"unknown only", Object{"between": 1}},
		{"unknown beside gt", Object{Gt: 10, "gte2": 1}},
		{"unsupported inside", Object{Inside: []string{"a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Map(tt.value, "k")
			require.Error(t, err)
			assert.False(t, ok)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, ErrMalformedOperator))

			var me *MalformedOperatorError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, "k", me.Key)
		})
	}
}

func TestMap_UnsupportedKeyNamed(t *testing.T) {
	t.Parallel()

	_, _, err := Map(Object{Contains: "a", "lt2": 1, "gte2": 1}, "age")
	var me *MalformedOperatorError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, Key("gte2"), me.Operator)
	assert.Equal(t, "unsupported operator", me.Reason)
}

func TestTable(t *testing.T) {
	t.Parallel()

	s, ok := Text(ContainsNone)
	assert.True(t, ok)
	assert.Equal(t, "CONTAINSNONE", s)

	assert.Equal(t, "NOT IN", Expr(NotIn).String())
	assert.True(t, Expr("between").IsZero())
	assert.Contains(t, Keys(), Key("**"))
	assert.True(t, IsDispatchKey("containsAny"))
	assert.False(t, IsDispatchKey("inside"))
}
