// Package dialect provides database-specific SQL generation and the
// capability table that tells the foreign-key engine how each backend
// treats foreign keys and their indexes.
package dialect

import (
	"strings"

	"github.com/hlop3z/autofk/internal/ast"
)

// SQLFormatter quotes identifiers and formats parameters.
type SQLFormatter interface {
	// QuoteIdent quotes an identifier. Schema-qualified names are quoted
	// per part: "audit.events" -> "audit"."events".
	// PostgreSQL/SQLite: "name"; MySQL: `name`
	QuoteIdent(name string) string

	// Placeholder returns a parameter placeholder for the given index (1-based).
	// PostgreSQL: $1, $2, ...; SQLite/MySQL: ?
	Placeholder(index int) string
}

// DDLGenerator renders operations to SQL. Methods that may need more than
// one statement return a slice.
type DDLGenerator interface {
	// ColumnType maps a logical type (integer, bigint, string, ...) to SQL.
	// Unknown names are passed through upper-cased.
	ColumnType(typeName string) string

	// CreateTableSQL renders op.Columns and the lowered foreign keys.
	CreateTableSQL(op *ast.CreateTable, fks []*ast.ForeignKeyDef) (string, error)

	DropTableSQL(op *ast.DropTable) (string, error)
	RenameTableSQL(op *ast.RenameTable) (string, error)

	// AddColumnSQL renders ALTER TABLE ADD COLUMN. When inline is non-nil the
	// column carries its REFERENCES clause, for backends that cannot add
	// constraints to an existing table.
	AddColumnSQL(op *ast.AddColumn, inline *ast.ForeignKeyDef) (string, error)

	// ChangeColumnSQL renders type and nullability changes. Foreign key and
	// index changes are separate operations.
	ChangeColumnSQL(op *ast.ChangeColumn) ([]string, error)

	DropColumnSQL(op *ast.DropColumn) (string, error)
	CreateIndexSQL(op *ast.CreateIndex) (string, error)
	DropIndexSQL(op *ast.DropIndex) (string, error)
	RenameIndexSQL(op *ast.RenameIndex) ([]string, error)
	AddForeignKeySQL(op *ast.AddForeignKey) (string, error)
	DropForeignKeySQL(op *ast.DropForeignKey) (string, error)
}

// Dialect defines the interface for database-specific SQL generation.
// Implementations exist for PostgreSQL, SQLite and MySQL.
type Dialect interface {
	SQLFormatter
	DDLGenerator

	// Name returns the dialect name (postgres, sqlite, mysql).
	Name() string

	// Capabilities returns the backend's row in the capability table.
	Capabilities() Capabilities
}

// Get returns the dialect implementation for the given name.
// Valid names: "postgres", "postgresql", "pgx", "sqlite", "sqlite3",
// "mysql", "mariadb".
// Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch canonical(name) {
	case "postgres":
		return Postgres()
	case "sqlite":
		return SQLite()
	case "mysql":
		return MySQL()
	default:
		return nil
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"postgres", "sqlite", "mysql"}
}

// canonical maps driver names and aliases to a dialect name.
func canonical(name string) string {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return ""
	}
}

// FromURL guesses the dialect from a database URL scheme.
// Returns "" when the scheme is not recognized.
func FromURL(url string) string {
	scheme, _, ok := strings.Cut(url, "://")
	if !ok {
		if strings.HasSuffix(url, ".db") || strings.HasSuffix(url, ".sqlite") || url == ":memory:" {
			return "sqlite"
		}
		return ""
	}
	if name := canonical(scheme); name != "" {
		return name
	}
	if scheme == "file" {
		return "sqlite"
	}
	return ""
}
