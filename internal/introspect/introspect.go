// Package introspect reads the live foreign keys and indexes of a table from
// the database catalog.
//
// Introspectors run over a Queryer so they see uncommitted DDL when bound to
// the migration's transaction.
package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/dialect"
	"github.com/hlop3z/autofk/internal/strutil"
)

// Queryer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Introspector queries a database catalog for one table at a time.
// Table names may be schema-qualified ("audit.events"); unqualified names
// resolve against the connection's current schema.
type Introspector interface {
	// ForeignKeys returns the table's foreign keys in constraint name order.
	ForeignKeys(ctx context.Context, table string) ([]*ast.ForeignKeyDef, error)

	// Indexes returns the table's secondary indexes in name order. Primary
	// keys and the indexes a backend creates for constraints are omitted.
	Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error)

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, table string) (bool, error)
}

// New creates an Introspector for the given dialect.
func New(q Queryer, d dialect.Dialect) (Introspector, error) {
	switch d.Name() {
	case "postgres":
		return &postgresIntrospector{q: q}, nil
	case "sqlite":
		return &sqliteIntrospector{q: q}, nil
	case "mysql":
		return &mysqlIntrospector{q: q}, nil
	default:
		return nil, alerr.New(alerr.EUnsupportedDialect, "introspection is not supported for this dialect").
			With("dialect", d.Name())
	}
}

// IndexLister is the part of an Introspector IndexExists needs.
type IndexLister interface {
	Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error)
}

// IndexExists reports whether table has an index called name.
func IndexExists(ctx context.Context, in IndexLister, table, name string) (bool, error) {
	indexes, err := in.Indexes(ctx, table)
	if err != nil {
		return false, err
	}
	for _, idx := range indexes {
		if idx.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// splitTable splits a possibly qualified table name into schema and table.
func splitTable(table string) (schema, name string) {
	return strutil.SplitQualified(table)
}

// normalizeAction converts a catalog referential action to the form used in
// foreign key definitions. The default action is reported as empty.
func normalizeAction(action string) string {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "CASCADE":
		return "CASCADE"
	case "SET NULL":
		return "SET NULL"
	case "RESTRICT":
		return "RESTRICT"
	default:
		return ""
	}
}
