package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/strutil"
)

type sqliteIntrospector struct {
	q Queryer
}

// sqliteSchema maps a qualified name to its attached database, "main" by default.
func sqliteSchema(table string) (schema, name string) {
	schema, name = splitTable(table)
	if schema == "" {
		schema = "main"
	}
	return schema, name
}

func (s *sqliteIntrospector) ForeignKeys(ctx context.Context, table string) ([]*ast.ForeignKeyDef, error) {
	schema, name := sqliteSchema(table)

	// Returns one row per key column: id, seq, table, from, to, on_update, on_delete
	query := `
		SELECT id, seq, "table", "from", "to", on_update, on_delete
		FROM pragma_foreign_key_list(?, ?)
		ORDER BY id, seq
	`

	rows, err := s.q.QueryContext(ctx, query, name, schema)
	if err != nil {
		return nil, alerr.WrapIntrospection(err, "introspect foreign keys", table)
	}
	defer rows.Close()

	acc := NewFKAccumulator()
	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete string
		var to sql.NullString

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete); err != nil {
			return nil, alerr.WrapIntrospection(err, "scan foreign key", table)
		}

		// A reference without columns targets the primary key.
		refColumn := ast.DefaultPrimaryKey
		if to.Valid && to.String != "" {
			refColumn = to.String
		}

		// SQLite does not keep constraint names, so derive a stable one
		fkName := fmt.Sprintf("fk_%s_%d", strutil.FlattenQualified(table), id)
		acc.Add(fkName, from, refTable, refColumn, onDelete, onUpdate)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapIntrospection(err, "iterate foreign keys", table)
	}

	return acc.Values(), nil
}

func (s *sqliteIntrospector) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	schema, name := sqliteSchema(table)

	// origin 'c' keeps indexes made by CREATE INDEX and drops the ones SQLite
	// creates for PRIMARY KEY and UNIQUE constraints. Expression columns have
	// no name and are skipped.
	query := `
		SELECT il.name, il."unique", ii.name
		FROM pragma_index_list(?, ?) AS il
		JOIN pragma_index_info(il.name, ?) AS ii
		WHERE il.origin = 'c'
		ORDER BY il.name, ii.seqno
	`

	rows, err := s.q.QueryContext(ctx, query, name, schema, schema)
	if err != nil {
		return nil, alerr.WrapIntrospection(err, "introspect indexes", table)
	}
	defer rows.Close()

	acc := NewIndexAccumulator()
	for rows.Next() {
		var indexName string
		var unique int
		var column sql.NullString

		if err := rows.Scan(&indexName, &unique, &column); err != nil {
			return nil, alerr.WrapIntrospection(err, "scan index", table)
		}
		if !column.Valid {
			continue
		}
		acc.Add(indexName, column.String, unique == 1)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapIntrospection(err, "iterate indexes", table)
	}

	return acc.Values(), nil
}

func (s *sqliteIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	schema, name := sqliteSchema(table)

	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT count(*) FROM pragma_table_list WHERE schema = ? AND name = ? AND type = 'table'`,
		schema, name).Scan(&count)
	if err != nil {
		return false, alerr.WrapIntrospection(err, "check table existence", table)
	}
	return count > 0, nil
}
