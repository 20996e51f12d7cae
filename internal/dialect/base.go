package dialect

// This file contains shared helper functions used by all dialect implementations.

import (
	"strings"

	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/strutil"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// quoteQualified quotes each dot-separated part of name with quoteOne.
func quoteQualified(name string, quoteOne QuoteIdentFunc) string {
	if !strings.Contains(name, ".") {
		return quoteOne(name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteOne(p)
	}
	return strings.Join(parts, ".")
}

// quoteDouble quotes an identifier with double quotes (PostgreSQL, SQLite).
func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteBacktick quotes an identifier with backticks (MySQL).
func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// unqualified returns the last part of a schema-qualified name.
func unqualified(name string) string {
	_, table := strutil.SplitQualified(name)
	return table
}

// qualifyLike puts name in the schema of table: ("audit.events", "ix") -> "audit.ix".
func qualifyLike(table, name string) string {
	schema, _ := strutil.SplitQualified(table)
	if schema == "" {
		return name
	}
	return schema + "." + name
}

// writeQuotedList writes comma-separated quoted identifiers to the builder.
func writeQuotedList(b *strings.Builder, items []string, quote QuoteIdentFunc) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
}

// buildColumnTypeSQL maps a logical type through the dialect's table.
// Unknown names are treated as raw SQL types.
func buildColumnTypeSQL(typeName string, types map[string]string) string {
	if sqlType, ok := types[strings.ToLower(typeName)]; ok {
		return sqlType
	}
	return strings.ToUpper(typeName)
}

// writeReferences writes the REFERENCES clause shared by inline column
// references and table-level constraints.
func writeReferences(b *strings.Builder, fk *ast.ForeignKeyDef, quoteIdent QuoteIdentFunc) {
	b.WriteString("REFERENCES ")
	b.WriteString(quoteIdent(fk.RefTable))
	b.WriteString(" (")
	writeQuotedList(b, fk.RefColumns, quoteIdent)
	b.WriteString(")")

	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(fk.OnUpdate)
	}
}

// buildForeignKeyConstraintSQL generates a foreign key constraint clause.
func buildForeignKeyConstraintSQL(fk *ast.ForeignKeyDef, quoteIdent QuoteIdentFunc) string {
	var b strings.Builder

	if fk.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(quoteIdent(fk.Name))
		b.WriteString(" ")
	}

	b.WriteString("FOREIGN KEY (")
	writeQuotedList(&b, fk.Columns, quoteIdent)
	b.WriteString(") ")
	writeReferences(&b, fk, quoteIdent)

	return b.String()
}

// ColumnDefConfig holds the callbacks for buildColumnDefSQL.
type ColumnDefConfig struct {
	QuoteIdent QuoteIdentFunc
	TypeSQL    func(typeName string) string
	// Inline, when set, is rendered as a column-level REFERENCES clause.
	Inline *ast.ForeignKeyDef
}

// buildColumnDefSQL generates the SQL for a column definition.
// Clause order: type, PRIMARY KEY, NULL/NOT NULL, DEFAULT, REFERENCES.
func buildColumnDefSQL(col *ast.ColumnDef, cfg ColumnDefConfig) string {
	var b strings.Builder

	b.WriteString(cfg.QuoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(cfg.TypeSQL(col.Type))

	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if !col.Nullable && !col.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(col.Default)
	}
	if cfg.Inline != nil {
		b.WriteString(" ")
		writeReferences(&b, cfg.Inline, cfg.QuoteIdent)
	}

	return b.String()
}

// ColumnDefFunc generates SQL for a column definition.
type ColumnDefFunc func(col *ast.ColumnDef, inline *ast.ForeignKeyDef) string

// buildCreateTableSQL generates CREATE TABLE SQL with table-level foreign keys.
func buildCreateTableSQL(op *ast.CreateTable, fks []*ast.ForeignKeyDef, quoteIdent QuoteIdentFunc, columnDef ColumnDefFunc) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE TABLE ")
	if op.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(quoteIdent(op.Name))
	b.WriteString(" (\n")

	for i, col := range op.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(columnDef(col, nil))
	}

	for _, fk := range fks {
		b.WriteString(",\n  ")
		b.WriteString(buildForeignKeyConstraintSQL(fk, quoteIdent))
	}

	b.WriteString("\n)")
	return b.String(), nil
}

// buildDropTableSQL generates DROP TABLE SQL.
func buildDropTableSQL(op *ast.DropTable, quoteIdent QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if op.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(quoteIdent(op.Name))
	return b.String(), nil
}

// buildRenameTableSQL generates ALTER TABLE RENAME TO SQL for PostgreSQL and
// SQLite. The new name stays in the old table's schema.
func buildRenameTableSQL(op *ast.RenameTable, quoteIdent QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.OldName))
	b.WriteString(" RENAME TO ")
	b.WriteString(quoteIdent(unqualified(op.NewName)))
	return b.String(), nil
}

// buildAddColumnSQL generates ALTER TABLE ADD COLUMN SQL.
func buildAddColumnSQL(op *ast.AddColumn, inline *ast.ForeignKeyDef, quoteIdent QuoteIdentFunc, columnDef ColumnDefFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.Table()))
	b.WriteString(" ADD COLUMN ")
	b.WriteString(columnDef(op.Column, inline))
	return b.String(), nil
}

// buildDropColumnSQL generates ALTER TABLE DROP COLUMN SQL.
func buildDropColumnSQL(op *ast.DropColumn, quoteIdent QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.Table()))
	b.WriteString(" DROP COLUMN ")
	b.WriteString(quoteIdent(op.Name))
	return b.String(), nil
}

// buildAddForeignKeySQL generates ALTER TABLE ADD FOREIGN KEY SQL.
func buildAddForeignKeySQL(op *ast.AddForeignKey, quoteIdent QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.Table()))
	b.WriteString(" ADD ")
	b.WriteString(buildForeignKeyConstraintSQL(&op.ForeignKeyDef, quoteIdent))
	return b.String(), nil
}

// buildCreateIndexSQL generates CREATE INDEX SQL. The index name is never
// qualified; the index lives in the table's schema.
func buildCreateIndexSQL(op *ast.CreateIndex, quoteIdent QuoteIdentFunc, supportsIfNotExists bool) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE ")
	if op.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	if supportsIfNotExists && op.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(quoteIdent(op.Name))
	b.WriteString(" ON ")
	b.WriteString(quoteIdent(op.Table()))
	b.WriteString(" (")
	writeQuotedList(&b, op.Columns, quoteIdent)
	b.WriteString(")")

	return b.String(), nil
}

// buildDropIndexSQL generates DROP INDEX SQL for PostgreSQL and SQLite.
// The index is looked up in the table's schema.
func buildDropIndexSQL(op *ast.DropIndex, quoteIdent QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("DROP INDEX ")
	if op.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(quoteIdent(qualifyLike(op.Table(), op.Name)))
	return b.String(), nil
}
