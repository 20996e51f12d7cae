package introspect

import (
	"context"
	"strings"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
)

type postgresIntrospector struct {
	q Queryer
}

// The schema argument is empty for unqualified names; the queries then fall
// back to current_schema().

func (p *postgresIntrospector) ForeignKeys(ctx context.Context, table string) ([]*ast.ForeignKeyDef, error) {
	schema, name := splitTable(table)

	// Referenced tables in another schema are reported qualified.
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			CASE WHEN ccu.table_schema = tc.table_schema
				THEN ccu.table_name
				ELSE ccu.table_schema || '.' || ccu.table_name
			END AS foreign_table_name,
			ccu.column_name AS foreign_column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.constraint_schema = tc.table_schema
		JOIN information_schema.referential_constraints AS rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_name = $1
			AND tc.table_schema = COALESCE(NULLIF($2, ''), current_schema())
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := p.q.QueryContext(ctx, query, name, schema)
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

func (p *postgresIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	schema, name := splitTable(table)

	// Indexes backing PRIMARY KEY and UNIQUE constraints are left out.
	query := `
		SELECT
			i.relname AS index_name,
			ix.indisunique AS is_unique,
			array_to_string(array_agg(a.attname ORDER BY x.n), ',') AS columns
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace ns ON ns.oid = t.relnamespace
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS x(attnum, n) ON TRUE
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = x.attnum
		WHERE t.relname = $1
			AND ns.nspname = COALESCE(NULLIF($2, ''), current_schema())
			AND NOT ix.indisprimary
			AND NOT EXISTS (SELECT 1 FROM pg_constraint c WHERE c.conindid = ix.indexrelid)
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := p.q.QueryContext(ctx, query, name, schema)
	if err != nil {
		return nil, alerr.WrapIntrospection(err, "introspect indexes", table)
	}
	defer rows.Close()

	var indexes []*ast.IndexDef
	for rows.Next() {
		var indexName string
		var unique bool
		var columns string

		if err := rows.Scan(&indexName, &unique, &columns); err != nil {
			return nil, alerr.WrapIntrospection(err, "scan index", table)
		}

		indexes = append(indexes, &ast.IndexDef{
			Name:    indexName,
			Columns: strings.Split(columns, ","),
			Unique:  unique,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapIntrospection(err, "iterate indexes", table)
	}

	return indexes, nil
}

func (p *postgresIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	schema, name := splitTable(table)

	var exists bool
	err := p.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_tables
			WHERE schemaname = COALESCE(NULLIF($2, ''), current_schema()) AND tablename = $1
		)
	`, name, schema).Scan(&exists)
	if err != nil {
		return false, alerr.WrapIntrospection(err, "check table existence", table)
	}
	return exists, nil
}
