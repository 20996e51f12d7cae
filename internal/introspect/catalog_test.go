package introspect

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/dialect"
)

func newMock(t *testing.T, d dialect.Dialect) (Introspector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	in, err := New(db, d)
	require.NoError(t, err)
	return in, mock
}

func TestNew_UnsupportedDialect(t *testing.T) {
	_, err := New(nil, fakeDialect{})
	assert.True(t, alerr.Is(err, alerr.EUnsupportedDialect))
}

type fakeDialect struct{ dialect.Dialect }

func (fakeDialect) Name() string { return "oracle" }

// -----------------------------------------------------------------------------
// PostgreSQL
// -----------------------------------------------------------------------------

func TestPostgres_ForeignKeys(t *testing.T) {
	in, mock := newMock(t, dialect.Postgres())

	mock.ExpectQuery(`information_schema\.table_constraints`).
		WithArgs("events", "audit").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "column_name", "foreign_table_name", "foreign_column_name", "delete_rule", "update_rule"}).
			AddRow("fk_events_user_id", "user_id", "public.users", "id", "CASCADE", "NO ACTION").
			AddRow("fk_events_tenant", "tenant_id", "tenants", "id", "NO ACTION", "NO ACTION").
			AddRow("fk_events_tenant", "tenant_region", "tenants", "region", "NO ACTION", "NO ACTION"))

	fks, err := in.ForeignKeys(context.Background(), "audit.events")
	require.NoError(t, err)

	assert.Equal(t, []*ast.ForeignKeyDef{
		{Name: "fk_events_user_id", Columns: []string{"user_id"}, RefTable: "public.users", RefColumns: []string{"id"}, OnDelete: "CASCADE"},
		{Name: "fk_events_tenant", Columns: []string{"tenant_id", "tenant_region"}, RefTable: "tenants", RefColumns: []string{"id", "region"}},
	}, fks)
}

func TestPostgres_Indexes(t *testing.T) {
	in, mock := newMock(t, dialect.Postgres())

	mock.ExpectQuery(`FROM pg_index`).
		WithArgs("comments", "").
		WillReturnRows(sqlmock.NewRows([]string{"index_name", "is_unique", "columns"}).
			AddRow("comments_post", true, "post_id,post_type").
			AddRow("fk__comments_user_id", false, "user_id"))

	idxs, err := in.Indexes(context.Background(), "comments")
	require.NoError(t, err)

	assert.Equal(t, []*ast.IndexDef{
		{Name: "comments_post", Columns: []string{"post_id", "post_type"}, Unique: true},
		{Name: "fk__comments_user_id", Columns: []string{"user_id"}},
	}, idxs)
}

func TestPostgres_TableExists(t *testing.T) {
	in, mock := newMock(t, dialect.Postgres())

	mock.ExpectQuery(`FROM pg_tables`).
		WithArgs("comments", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := in.TableExists(context.Background(), "comments")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgres_QueryError(t *testing.T) {
	in, mock := newMock(t, dialect.Postgres())

	mock.ExpectQuery(`FROM pg_index`).WillReturnError(errors.New("permission denied"))

	_, err := in.Indexes(context.Background(), "comments")
	require.Error(t, err)
	assert.True(t, alerr.Is(err, alerr.ErrIntrospection))
	assert.Contains(t, err.Error(), "permission denied")
}

// -----------------------------------------------------------------------------
// MySQL
// -----------------------------------------------------------------------------

func TestMySQL_ForeignKeys(t *testing.T) {
	in, mock := newMock(t, dialect.MySQL())

	mock.ExpectQuery(`information_schema\.KEY_COLUMN_USAGE`).
		WithArgs("", "comments").
		WillReturnRows(sqlmock.NewRows([]string{"CONSTRAINT_NAME", "COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "DELETE_RULE", "UPDATE_RULE"}).
			AddRow("fk_comments_user_id", "user_id", "users", "id", "SET NULL", "RESTRICT"))

	fks, err := in.ForeignKeys(context.Background(), "comments")
	require.NoError(t, err)

	assert.Equal(t, []*ast.ForeignKeyDef{
		{Name: "fk_comments_user_id", Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}, OnDelete: "SET NULL", OnUpdate: "RESTRICT"},
	}, fks)
}

func TestMySQL_Indexes(t *testing.T) {
	in, mock := newMock(t, dialect.MySQL())

	mock.ExpectQuery(`information_schema\.STATISTICS`).
		WithArgs("app", "comments").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME", "NON_UNIQUE", "COLUMN_NAME"}).
			AddRow("comments_post", 0, "post_id").
			AddRow("comments_post", 0, "post_type").
			AddRow("fk_comments_user_id", 1, "user_id"))

	idxs, err := in.Indexes(context.Background(), "app.comments")
	require.NoError(t, err)

	assert.Equal(t, []*ast.IndexDef{
		{Name: "comments_post", Columns: []string{"post_id", "post_type"}, Unique: true},
		{Name: "fk_comments_user_id", Columns: []string{"user_id"}},
	}, idxs)
}

func TestMySQL_IndexExists(t *testing.T) {
	in, mock := newMock(t, dialect.MySQL())

	mock.ExpectQuery(`information_schema\.STATISTICS`).
		WithArgs("", "comments").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME", "NON_UNIQUE", "COLUMN_NAME"}))

	ok, err := IndexExists(context.Background(), in, "comments", "fk__comments_user_id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMySQL_TableExists(t *testing.T) {
	in, mock := newMock(t, dialect.MySQL())

	mock.ExpectQuery(`information_schema\.TABLES`).
		WithArgs("", "autofk_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := in.TableExists(context.Background(), "autofk_migrations")
	require.NoError(t, err)
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------
// Accumulators and helpers
// -----------------------------------------------------------------------------

func TestFKAccumulator(t *testing.T) {
	acc := NewFKAccumulator()
	acc.Add("b", "x_id", "xs", "id", "cascade", "")
	acc.Add("a", "y_id", "ys", "id", "", "SET NULL")
	acc.Add("b", "x_kind", "xs", "kind", "", "")

	got := acc.Values()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name, "insertion order")
	assert.Equal(t, []string{"x_id", "x_kind"}, got[0].Columns)
	assert.Equal(t, []string{"id", "kind"}, got[0].RefColumns)
	assert.Equal(t, "CASCADE", got[0].OnDelete)
	assert.Equal(t, "SET NULL", got[1].OnUpdate)
}

func TestIndexAccumulator(t *testing.T) {
	acc := NewIndexAccumulator()
	acc.Add("ix", "a", true)
	acc.Add("ix", "b", false)

	got := acc.Values()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a", "b"}, got[0].Columns)
	assert.True(t, got[0].Unique, "first row decides uniqueness")
}

func TestNormalizeAction(t *testing.T) {
	tests := map[string]string{
		"CASCADE":     "CASCADE",
		"cascade":     "CASCADE",
		"SET NULL":    "SET NULL",
		"RESTRICT":    "RESTRICT",
		"NO ACTION":   "",
		"SET DEFAULT": "",
		"":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeAction(in), in)
	}
}
