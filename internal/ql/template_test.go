package ql

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/surql/internal/expr"
)

func TestCompile_Hoisting(t *testing.T) {
	t.Parallel()

	q, err := Compile([]string{"SELECT * FROM user WHERE email = ", ""}, Let("email", "a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"LET $email = \"a@b.com\";\n"}, q.Declarations)
	assert.Equal(t, "SELECT * FROM user WHERE email = $email", q.Body)
	assert.Equal(t, "LET $email = \"a@b.com\";\nSELECT * FROM user WHERE email = $email", q.String())
}

func TestCompile_MapHoist(t *testing.T) {
	t.Parallel()

	e := Engine{MapHoist: true}
	q, err := e.Compile([]string{"SELECT * FROM user WHERE email = ", ""}, map[string]any{"email": "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"LET $email = \"a@b.com\";\n"}, q.Declarations)
	assert.Contains(t, q.Body, "$email")

	// Without the flag a one-field object is a value.
	q, err = Compile([]string{"CREATE user CONTENT ", ""}, map[string]any{"email": "a@b.com"})
	require.NoError(t, err)
	assert.Empty(t, q.Declarations)
	assert.Equal(t, `CREATE user CONTENT {"email":"a@b.com"}`, q.Body)

	// Larger maps are never hoisted.
	q, err = e.Compile([]string{"CREATE user CONTENT ", ""}, map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Empty(t, q.Declarations)
}

func TestCompile_DeclarationOrder(t *testing.T) {
	t.Parallel()

	q, err := Format("SELECT * FROM %v WHERE owner = %v AND since > %v AND owner != %v",
		expr.Table("car"), Let("owner", "user:42"), Let("since", 5), Let("owner", "user:42"))
	require.NoError(t, err)
	assert.Equal(t, []string{"LET $owner = user:42;\n", "LET $since = 5;\n"}, q.Declarations)
	assert.Equal(t, "SELECT * FROM car WHERE owner = $owner AND since > $since AND owner != $owner", q.Body)
}

func TestCompile_Scalars(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	q, err := Format("%v %v %v %v %v %v %v %v",
		"it's", 42, 1.5, true, nil, []string{"a"}, at, expr.Time.Now())
	require.NoError(t, err)
	assert.Equal(t, `'it\'s' 42 1.5 true NULL ["a"] d"2024-02-03T04:05:06Z" time::now()`, q.Body)
}

func TestCompile_NilMatchesExprRender(t *testing.T) {
	t.Parallel()

	q, err := Format("UPDATE user SET nick = %v, tags = %v", nil, []any{nil})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE user SET nick = "+expr.Render(nil)+", tags = [NULL]", q.Body)

	q, err = Format("UPDATE user SET nick = %v", Let("nick", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"LET $nick = NULL;\n"}, q.Declarations)
}

func TestCompile_NestedQuery(t *testing.T) {
	t.Parallel()

	inner := Must(Format("SELECT * FROM user WHERE email = %v", Let("email", "a@b.com")))
	outer, err := Format("LET $n = (%v); RETURN %v;", inner, Let("email", "a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"LET $email = \"a@b.com\";\n"}, outer.Declarations)
	assert.Equal(t, "LET $n = (SELECT * FROM user WHERE email = $email); RETURN $email;", outer.Body)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	_, err := Compile(nil)
	assert.ErrorIs(t, err, ErrEmptyTemplate)

	_, err = Compile([]string{"a", "b"})
	assert.ErrorIs(t, err, ErrTemplateArity)
	var ae *ArityError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 2, ae.Segments)
	assert.Equal(t, 0, ae.Values)

	_, err = Format("%v", 1, 2)
	assert.ErrorIs(t, err, ErrTemplateArity)

	_, err = Format("%v %v", Let("x", 1), Let("x", 2))
	assert.ErrorIs(t, err, ErrConflictingVariable)
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "x", ce.Name)

	_, err = Format("%v", Let("bad name", 1))
	assert.ErrorIs(t, err, ErrInvalidVariable)
}

func TestFormat_Escapes(t *testing.T) {
	t.Parallel()

	q, err := Format("SELECT math::fixed(score, 2) AS pct%% FROM %v", expr.Table("user"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT math::fixed(score, 2) AS pct% FROM user", q.Body)

	q, err = Format("no placeholders")
	require.NoError(t, err)
	assert.Equal(t, "no placeholders", q.String())
}

func TestJoin(t *testing.T) {
	t.Parallel()

	a := Must(Format("CREATE user SET email = %v;", Let("email", "a@b.com")))
	b := Must(Format("SELECT * FROM user WHERE email = %v;", Let("email", "a@b.com")))
	q, err := Join("\n", a, b, Raw("COMMIT;"))
	require.NoError(t, err)
	assert.Len(t, q.Declarations, 1)
	assert.Equal(t, "CREATE user SET email = $email;\nSELECT * FROM user WHERE email = $email;\nCOMMIT;", q.Body)

	_, err = Join(" ", a, Must(Format("%v", Let("email", "x@y.z"))))
	assert.ErrorIs(t, err, ErrConflictingVariable)
}

func TestCompile_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := Format("SELECT * FROM user WHERE email = %v", Let("email", "a@b.com"))
			assert.NoError(t, err)
			assert.Equal(t, "$email", q.Body[len(q.Body)-6:])
		}()
	}
	wg.Wait()
}

func TestQuery_IsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, Query{}.IsZero())
	assert.False(t, Raw("INFO FOR DB").IsZero())
}
