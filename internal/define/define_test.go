package define

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/surql/internal/expr"
	"github.com/forgo/surql/internal/model"
	"github.com/forgo/surql/internal/ql"
	"github.com/forgo/surql/internal/schema"
	"github.com/forgo/surql/internal/where"
)

func TestIndex_Statement(t *testing.T) {
	tests := []struct {
		name string
		idx  Index
		want string
	}{
		{
			name: "unique field",
			idx:  FieldIndex("user", "email", schema.IndexHint{Name: "user_email", Unique: true}),
			want: "DEFINE INDEX user_email ON TABLE user COLUMNS email UNIQUE;",
		},
		{
			name: "search field",
			idx:  FieldIndex("car", "name", schema.IndexHint{Name: "car_name", Search: true}),
			want: "DEFINE INDEX car_name ON TABLE car COLUMNS name SEARCH ANALYZER ascii BM25 HIGHLIGHTS;",
		},
		{
			name: "table columns",
			idx:  TableIndex("car", schema.TableIndex{Columns: []string{"owner", "color", "model"}}),
			want: "DEFINE INDEX owner_model_idx ON TABLE car COLUMNS owner, color, model;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.idx.Statement()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_Invalid(t *testing.T) {
	for _, idx := range []Index{
		{Table: "user", Columns: []string{"email"}},
		{Name: "x", Columns: []string{"email"}},
		{Name: "x", Table: "user"},
	} {
		_, err := idx.Statement()
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	}
}

func TestScope_Query(t *testing.T) {
	signin := ql.Must(ql.Format("SELECT * FROM user WHERE email = %v AND crypto::argon2::compare(password, %v)",
		expr.Param("email"), expr.Param("password")))
	signup := ql.Must(ql.Format("CREATE user SET email = %v, pass = crypto::argon2::generate(%v)",
		expr.Param("email"), expr.Param("password")))

	q, err := Scope{Name: "users", Session: "7d", Signin: signin, Signup: signup}.Query()
	require.NoError(t, err)
	assert.Equal(t, "DEFINE SCOPE users SESSION 7d"+
		"\n SIGNIN (SELECT * FROM user WHERE email = $email AND crypto::argon2::compare(password, $password))"+
		"\n SIGNUP (CREATE user SET email = $email, pass = crypto::argon2::generate($password));", q.String())
}

func TestScope_HoistsDeclarations(t *testing.T) {
	signin := ql.Must(ql.Format("SELECT * FROM user WHERE role = %v", ql.Let("role", "member")))
	signup := ql.Must(ql.Format("CREATE user SET role = %v", ql.Let("role", "member")))

	q, err := Scope{Name: "members", Session: "12h", Signin: signin, Signup: signup}.Query()
	require.NoError(t, err)
	assert.Equal(t, []string{"LET $role = \"member\";\n"}, q.Declarations)
}

func TestScope_Invalid(t *testing.T) {
	_, err := Scope{Session: "7d"}.Query()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	_, err = Scope{Name: "users"}.Query()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestToken_Statement(t *testing.T) {
	got, err := Token{Name: "auth_token", On: "users", Type: "hs512", Value: "secret"}.Statement()
	require.NoError(t, err)
	assert.Equal(t, `DEFINE TOKEN auth_token ON SCOPE users TYPE HS512 VALUE "secret";`, got)

	got, err = Token{Name: "ns_token", On: OnNamespace, Type: "RS256", Value: "key"}.Statement()
	require.NoError(t, err)
	assert.Equal(t, `DEFINE TOKEN ns_token ON NAMESPACE TYPE RS256 VALUE "key";`, got)

	_, err = Token{Name: "t", On: OnDatabase, Type: "MD5", Value: "x"}.Statement()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	_, err = Token{Name: "t", Type: "HS256"}.Statement()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestPermissions_Query(t *testing.T) {
	compiler := where.NewCompiler(model.Catalog())
	selectCond := ql.Must(ql.Format(`$scope = "users" AND id = %v`, expr.Param("token.id")))

	perms := NewPermissions(compiler, model.EntityUser).
		For(selectCond, Select).
		For(None, Update).
		For(where.Where("email", expr.Param("auth.email")), Create, Delete)

	q, err := perms.Query()
	require.NoError(t, err)
	assert.Equal(t, "PERMISSIONS\n"+
		"FOR SELECT WHERE $scope = \"users\" AND id = $token.id\n"+
		"FOR UPDATE NONE\n"+
		"FOR CREATE, DELETE WHERE email = $auth.email", q.String())
}

func TestPermissions_Errors(t *testing.T) {
	compiler := where.NewCompiler(model.Catalog())

	_, err := NewPermissions(compiler, model.EntityUser).For("ALL", Select).Query()
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewPermissions(compiler, model.EntityUser).For(Full).Query()
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewPermissions(compiler, model.EntityUser).For(where.Where("nope", 1), Select).Query()
	assert.ErrorIs(t, err, where.ErrUnknownField)

	_, err = NewPermissions(compiler, model.EntityUser).For(42, Select).Query()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestTable_Query(t *testing.T) {
	perms := NewPermissions(nil, model.EntityUser).For(Full, Select).For(None, Update, Delete)

	q, err := Table{Name: "user", Schemafull: true, Permissions: perms}.Query()
	require.NoError(t, err)
	assert.Equal(t, "DEFINE TABLE user SCHEMAFULL\nPERMISSIONS\nFOR SELECT FULL\nFOR UPDATE, DELETE NONE;", q.String())

	q, err = Table{Name: "car"}.Query()
	require.NoError(t, err)
	assert.Equal(t, "DEFINE TABLE car SCHEMALESS;", q.String())
}
