package introspect

import (
	"context"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
)

type mysqlIntrospector struct {
	q Queryer
}

// MySQL schemas are databases. An unqualified name resolves against DATABASE().

func (m *mysqlIntrospector) ForeignKeys(ctx context.Context, table string) ([]*ast.ForeignKeyDef, error) {
	schema, name := splitTable(table)

	query := `
		SELECT
			kcu.CONSTRAINT_NAME,
			kcu.COLUMN_NAME,
			kcu.REFERENCED_TABLE_NAME,
			kcu.REFERENCED_COLUMN_NAME,
			rc.DELETE_RULE,
			rc.UPDATE_RULE
		FROM information_schema.KEY_COLUMN_USAGE AS kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS AS rc
			ON rc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA
			AND rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		WHERE kcu.TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
			AND kcu.TABLE_NAME = ?
			AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION
	`

	rows, err := m.q.QueryContext(ctx, query, schema, name)
	if err != nil {
		return nil, alerr.WrapIntrospection(err, "introspect foreign keys", table)
	}
	defer rows.Close()

	acc := NewFKAccumulator()
	for rows.Next() {
		var fkName, column, refTable, refColumn, onDelete, onUpdate string

		if err := rows.Scan(&fkName, &column, &refTable, &refColumn, &onDelete, &onUpdate); err != nil {
			return nil, alerr.WrapIntrospection(err, "scan foreign key", table)
		}

		acc.Add(fkName, column, refTable, refColumn, onDelete, onUpdate)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapIntrospection(err, "iterate foreign keys", table)
	}

	return acc.Values(), nil
}

// Indexes includes the indexes InnoDB creates for foreign keys; they carry
// the constraint's name.
func (m *mysqlIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	schema, name := splitTable(table)

	query := `
		SELECT INDEX_NAME, NON_UNIQUE, COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
			AND TABLE_NAME = ?
			AND INDEX_NAME <> 'PRIMARY'
			AND COLUMN_NAME IS NOT NULL
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`

	rows, err := m.q.QueryContext(ctx, query, schema, name)
	if err != nil {
		return nil, alerr.WrapIntrospection(err, "introspect indexes", table)
	}
	defer rows.Close()

	acc := NewIndexAccumulator()
	for rows.Next() {
		var indexName, column string
		var nonUnique int

		if err := rows.Scan(&indexName, &nonUnique, &column); err != nil {
			return nil, alerr.WrapIntrospection(err, "scan index", table)
		}
		acc.Add(indexName, column, nonUnique == 0)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapIntrospection(err, "iterate indexes", table)
	}

	return acc.Values(), nil
}

func (m *mysqlIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	schema, name := splitTable(table)

	var count int
	err := m.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
	`, schema, name).Scan(&count)
	if err != nil {
		return false, alerr.WrapIntrospection(err, "check table existence", table)
	}
	return count > 0, nil
}
