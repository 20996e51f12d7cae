package engine_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/config"
	"github.com/hlop3z/autofk/internal/dialect"
	"github.com/hlop3z/autofk/internal/engine"
	"github.com/hlop3z/autofk/internal/testutil"
)

const sqliteSchema = `
operations:
  - create_table: users
    columns:
      - {name: email, type: string}
  - create_table: posts
    columns:
      - {name: title, type: string}
  - create_table: comments
    columns:
      - {name: user_id, type: integer}
      - {name: body, type: text, nullable: true}
`

func newSQLiteRunner(t *testing.T) (*engine.Runner, *sql.DB) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	return engine.NewRunner(db, dialect.SQLite(), config.Defaults()), db
}

// apply runs migrations and fails the test on error.
func apply(t *testing.T, r *engine.Runner, all ...engine.Migration) []engine.Migration {
	t.Helper()
	applied, err := r.Apply(context.Background(), all)
	require.NoError(t, err)
	return applied
}

// foreignKeys lists the foreign keys on table as "column->table".
func foreignKeys(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(fmt.Sprintf(`SELECT "from", "table" FROM pragma_foreign_key_list('%s') ORDER BY "from"`, table))
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var from, ref string
		require.NoError(t, rows.Scan(&from, &ref))
		out = append(out, from+"->"+ref)
	}
	require.NoError(t, rows.Err())
	return out
}

func tableCount(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n))
	return n
}

func TestSQLite_CreateTableAddsForeignKeyAndIndex(t *testing.T) {
	r, db := newSQLiteRunner(t)

	applied := apply(t, r, migration(t, "001_schema.yaml", sqliteSchema))
	require.Len(t, applied, 1)

	testutil.AssertTableExists(t, db, "comments")
	testutil.AssertTableExists(t, db, engine.MigrationTableName)
	assert.Equal(t, []string{"user_id->users"}, foreignKeys(t, db, "comments"))
	assert.Equal(t, []string{"fk__comments_user_id"}, testutil.SQLiteIndexNames(t, db, "comments"))
}

func TestSQLite_ApplyIsIdempotent(t *testing.T) {
	r, db := newSQLiteRunner(t)
	m := migration(t, "001_schema.yaml", sqliteSchema)

	apply(t, r, m)
	again := apply(t, r, m)
	assert.Empty(t, again)

	applied, err := r.VersionManager().GetApplied(context.Background())
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "001", applied[0].Revision)
	assert.Equal(t, "schema", applied[0].Name)
	assert.Equal(t, m.Checksum, applied[0].Checksum)
	assert.False(t, applied[0].AppliedAt.IsZero())

	assert.Equal(t, 1, tableCount(t, db, "comments"))
}

func TestSQLite_AddColumnReferencesInline(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_comment_post.yaml", `
operations:
  - add_column: {table: comments, name: post_id, type: integer, nullable: true}
`))

	assert.Equal(t, []string{"post_id->posts", "user_id->users"}, foreignKeys(t, db, "comments"))
	testutil.AssertIndexExists(t, db, "comments", "fk__comments_post_id")
}

func TestSQLite_ChangeColumnRemovesAutoIndex(t *testing.T) {
	r, db := newSQLiteRunner(t)
	dropFK := `
operations:
  - change_column: {table: comments, name: user_id, foreign_key: false}
`

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_drop_user_fk.yaml", dropFK))
	testutil.AssertIndexNotExists(t, db, "comments", "fk__comments_user_id")
	// SQLite cannot drop the constraint in place; it is left alone.
	assert.Equal(t, []string{"user_id->users"}, foreignKeys(t, db, "comments"))

	// A second removal finds nothing to drop.
	apply(t, r, migration(t, "003_drop_user_fk_again.yaml", dropFK))
	testutil.AssertIndexNotExists(t, db, "comments", "fk__comments_user_id")
}

func TestSQLite_ChangeColumnKeepsExplicitIndex(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_user_lookup.yaml", `
operations:
  - add_index: {table: comments, columns: [user_id], name: comments_user_lookup}
  - change_column: {table: comments, name: user_id, foreign_key: false}
`))

	assert.Equal(t, []string{"comments_user_lookup"}, testutil.SQLiteIndexNames(t, db, "comments"))
}

func TestSQLite_RenameTableRenamesAutoIndexes(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_rename.yaml", `
operations:
  - add_index: {table: comments, columns: [body], name: comments_body}
  - rename_table: {from: comments, to: notes}
`))

	assert.Equal(t, []string{"comments_body", "fk__notes_user_id"}, testutil.SQLiteIndexNames(t, db, "notes"))
}

func TestSQLite_RenameAfterIndexRemovalLeavesOthers(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_comment_post.yaml", `
operations:
  - add_column: {table: comments, name: post_id, type: integer, nullable: true}
  - change_column: {table: comments, name: user_id, foreign_key: false}
  - rename_table: {from: comments, to: notes}
`))

	assert.Equal(t, []string{"fk__notes_post_id"}, testutil.SQLiteIndexNames(t, db, "notes"))
}

func TestSQLite_ExplicitOptions(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_reactions.yaml", `
operations:
  - create_table: reactions
    columns:
      - {name: owner_id, type: integer, foreign_key: {references: users}, index: {name: reactions_owner}}
      - {name: member_id, type: integer, foreign_key: false}
      - {name: xyz, type: integer, index: true}
    references:
      - {name: subject, polymorphic: true}
      - {name: post, index: false}
`))

	assert.Equal(t, []string{"owner_id->users", "post_id->posts"}, foreignKeys(t, db, "reactions"))
	assert.Equal(t, []string{"index_reactions_on_xyz", "reactions_owner"}, testutil.SQLiteIndexNames(t, db, "reactions"))
}

func TestSQLite_PolymorphicReferenceIndex(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r, migration(t, "001_likes.yaml", `
operations:
  - create_table: likes
    references:
      - {name: likeable, polymorphic: true, index: true}
`))

	assert.Empty(t, foreignKeys(t, db, "likes"))
	assert.Equal(t, []string{"index_likes_on_likeable_id_and_likeable_type"}, testutil.SQLiteIndexNames(t, db, "likes"))
}

func TestSQLite_MigrationSettingsAreScoped(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_no_index.yaml", `
foreign_keys: {auto_index: false}
operations:
  - create_table: votes
    columns:
      - {name: user_id, type: integer}
`),
		migration(t, "003_default.yaml", `
operations:
  - create_table: flags
    columns:
      - {name: user_id, type: integer}
`))

	assert.Equal(t, []string{"user_id->users"}, foreignKeys(t, db, "votes"))
	assert.Empty(t, testutil.SQLiteIndexNames(t, db, "votes"))
	assert.Equal(t, []string{"fk__flags_user_id"}, testutil.SQLiteIndexNames(t, db, "flags"))
}

func TestSQLite_OperationSettingsBeatMigrationSettings(t *testing.T) {
	r, db := newSQLiteRunner(t)

	apply(t, r,
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_mixed.yaml", `
foreign_keys: {auto_create: false}
operations:
  - create_table: votes
    columns:
      - {name: user_id, type: integer}
  - create_table: flags
    foreign_keys: {auto_create: true}
    columns:
      - {name: user_id, type: integer}
`))

	assert.Empty(t, foreignKeys(t, db, "votes"))
	assert.Equal(t, []string{"user_id->users"}, foreignKeys(t, db, "flags"))
}

func TestSQLite_FailedMigrationRollsBack(t *testing.T) {
	r, db := newSQLiteRunner(t)

	_, err := r.Apply(context.Background(), []engine.Migration{
		migration(t, "001_broken.yaml", `
operations:
  - create_table: widgets
    columns:
      - {name: user_id, type: integer}
  - drop_table: missing
`),
	})
	testutil.AssertError(t, err, alerr.ErrMigrationFailed)

	assert.Zero(t, tableCount(t, db, "widgets"))
	applied, err := r.VersionManager().GetApplied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestSQLite_ChangeColumnTypeUnsupported(t *testing.T) {
	r, _ := newSQLiteRunner(t)

	_, err := r.Apply(context.Background(), []engine.Migration{
		migration(t, "001_schema.yaml", sqliteSchema),
		migration(t, "002_retype.yaml", `
operations:
  - change_column: {table: comments, name: body, type: string}
`),
	})
	testutil.AssertError(t, err, alerr.ErrMigrationFailed)
	testutil.AssertErrorContains(t, err, "SQLite cannot change")
}

func TestSQLite_Status(t *testing.T) {
	r, _ := newSQLiteRunner(t)
	first := migration(t, "001_schema.yaml", sqliteSchema)
	second := migration(t, "002_comment_post.yaml", `
operations:
  - add_column: {table: comments, name: post_id, type: integer, nullable: true}
`)

	apply(t, r, first)

	statuses, err := r.Status(context.Background(), []engine.Migration{first, second})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, engine.StatusApplied, statuses[0].Status)
	assert.NotEmpty(t, statuses[0].AppliedAt)
	assert.Equal(t, engine.StatusPending, statuses[1].Status)
	assert.Empty(t, statuses[1].AppliedAt)

	statuses, err = r.Status(context.Background(), []engine.Migration{second})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, engine.StatusMissing, statuses[0].Status)
	assert.Equal(t, "schema", statuses[0].Name)
}

func TestSQLite_ChecksumMismatch(t *testing.T) {
	r, _ := newSQLiteRunner(t)
	apply(t, r, migration(t, "001_schema.yaml", sqliteSchema))

	edited := migration(t, "001_schema.yaml", sqliteSchema+"  - add_index: {table: comments, columns: [body]}\n")
	_, err := r.Apply(context.Background(), []engine.Migration{edited})
	testutil.AssertError(t, err, alerr.ErrMigrationChecksum)

	statuses, err := r.Status(context.Background(), []engine.Migration{edited})
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, engine.StatusModified, statuses[0].Status)
}

func TestSQLite_DryRunUsesLiveCatalog(t *testing.T) {
	r, db := newSQLiteRunner(t)
	first := migration(t, "001_schema.yaml", sqliteSchema)
	second := migration(t, "002_rename.yaml", `
operations:
  - rename_table: {from: comments, to: notes}
`)
	apply(t, r, first)

	plans, err := r.DryRun(context.Background(), []engine.Migration{first, second})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "002", plans[0].Migration.Revision)
	testutil.AssertStatements(t, plans[0].Statements, []string{
		`ALTER TABLE "comments" RENAME TO "notes"`,
		`DROP INDEX "fk__comments_user_id"`,
		`CREATE INDEX "fk__notes_user_id" ON "notes" ("user_id")`,
	})

	// Nothing ran.
	testutil.AssertTableExists(t, db, "comments")
	assert.Zero(t, tableCount(t, db, "notes"))
}

func TestSQLite_DryRunDoesNotCreateVersionTable(t *testing.T) {
	r, db := newSQLiteRunner(t)

	plans, err := r.DryRun(context.Background(), []engine.Migration{migration(t, "001_schema.yaml", sqliteSchema)})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Len(t, plans[0].Statements, 4)
	assert.Zero(t, tableCount(t, db, engine.MigrationTableName))
}
