package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/testutil"
)

func TestFormatError_Nil(t *testing.T) {
	assert.Empty(t, FormatError(nil))
}

func TestFormatError_PlainError(t *testing.T) {
	got := FormatError(errors.New("connection refused"))
	assert.Equal(t, "error: connection refused\n", got)
}

func TestFormatError_HeaderAndDetails(t *testing.T) {
	err := alerr.New(alerr.ErrUnresolvedTarget, "cannot infer the referenced table").
		WithTable("comments").
		WithColumn("author").
		WithHelp("set foreign_key to the table name")

	got := FormatError(err)
	lines := strings.Split(got, "\n")

	assert.Equal(t, "error[E2004]: cannot infer the referenced table", lines[0])
	assert.Contains(t, got, "   | column: author\n")
	assert.Contains(t, got, "   | table: comments\n")
	assert.Contains(t, got, "help: set foreign_key to the table name\n")
	assert.Less(t, strings.Index(got, "column:"), strings.Index(got, "table:"), "details are sorted")
	assert.NotContains(t, got, "helps:")
}

func TestFormatError_SourceSnippet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "003_comments.yaml")
	testutil.WriteFile(t, path, "operations:\n  - create_table: comments\n    columns:\n      - {name: user_id, foreign_key: 3}\n")

	err := alerr.New(alerr.ErrInvalidOption, "foreign_key must be a boolean, null, a table name or a mapping").
		WithFile(path, 4)

	got := FormatError(err)

	assert.Contains(t, got, "  --> "+path+":4\n")
	assert.Contains(t, got, "4 |       - {name: user_id, foreign_key: 3}\n")
	assert.Contains(t, got, "  |"+strings.Repeat(" ", 9)+strings.Repeat("^", 31)+"\n")
	assert.NotContains(t, got, "file:")
	assert.NotContains(t, got, "line:")
}

func TestFormatError_MissingSourceFile(t *testing.T) {
	err := alerr.New(alerr.ErrMigrationInvalid, "bad migration").
		WithFile(filepath.Join(t.TempDir(), "gone.yaml"), 2)

	got := FormatError(err)
	assert.Contains(t, got, "gone.yaml:2\n")
	assert.NotContains(t, got, "^")
}

func TestFormatError_SQLSection(t *testing.T) {
	err := alerr.New(alerr.ErrSQLExecution, "statement failed").
		WithSQL("CREATE INDEX \"a\"\nON \"t\" (\"c\")")

	got := FormatError(err)
	assert.Contains(t, got, "   = sql: CREATE INDEX \"a\"\n")
	assert.Contains(t, got, "          ON \"t\" (\"c\")\n")
}

func TestFormatError_NotesBeforeHelps(t *testing.T) {
	err := alerr.New(alerr.ErrMigrationChecksum, "checksum mismatch").
		WithHelp("restore the original file").
		WithNote("the migration was edited after it was applied")

	got := FormatError(err)
	require.Contains(t, got, "note: the migration was edited after it was applied\n")
	require.Contains(t, got, "help: restore the original file\n")
	assert.Less(t, strings.Index(got, "note:"), strings.Index(got, "help:"))
}

func TestFormatError_NestedCause(t *testing.T) {
	inner := alerr.New(alerr.ErrSQLExecution, "duplicate index").WithTable("posts")
	outer := alerr.Wrap(alerr.ErrMigrationFailed, inner, "migration 002 failed").With("revision", "002")

	got := FormatError(outer)

	assert.True(t, strings.HasPrefix(got, "error[E3001]: migration 002 failed\n"))
	assert.Contains(t, got, "   | revision: 002\n")
	assert.Contains(t, got, "cause[E4001]: duplicate index\n")
	assert.Contains(t, got, "   | table: posts\n")
}

func TestFormatError_PlainCause(t *testing.T) {
	err := alerr.Wrap(alerr.ErrSQLConnection, errors.New("dial tcp: refused"), "cannot connect")

	got := FormatError(err)
	assert.Contains(t, got, "error[E4002]: cannot connect\n")
	assert.True(t, strings.HasSuffix(got, "cause: dial tcp: refused\n"))
}

func TestFormatError_WrappedWithFmt(t *testing.T) {
	inner := alerr.New(alerr.ErrConfigInvalid, "unknown dialect")
	got := FormatError(errors.Join(errors.New("startup"), inner))
	assert.True(t, strings.HasPrefix(got, "error[E8002]: unknown dialect\n"))
}

func TestFormatWarningNoteSuccess(t *testing.T) {
	assert.Equal(t, "warning: index name truncated\nhelp: shorten the table name\n",
		FormatWarning("index name truncated", "shorten the table name"))
	assert.Equal(t, "note: nothing to apply\n", FormatNote("nothing to apply"))
	assert.Equal(t, "success: applied 2 migrations\n", FormatSuccess("applied 2 migrations"))
}
