package dialect

import (
	"fmt"
	"strconv"

	"github.com/hlop3z/autofk/internal/ast"
)

// postgres implements the Dialect interface for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect implementation.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

func (d *postgres) Capabilities() Capabilities {
	caps, _ := CapabilitiesFor(d.Name())
	return caps
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

var postgresTypes = map[string]string{
	"primary_key": "BIGSERIAL",
	"integer":     "INTEGER",
	"bigint":      "BIGINT",
	"string":      "VARCHAR(255)",
	"text":        "TEXT",
	"boolean":     "BOOLEAN",
	"float":       "REAL",
	"decimal":     "DECIMAL(10, 2)",
	"date":        "DATE",
	"time":        "TIME",
	"datetime":    "TIMESTAMPTZ",
	"timestamp":   "TIMESTAMPTZ",
	"uuid":        "UUID",
	"json":        "JSONB",
	"binary":      "BYTEA",
}

func (d *postgres) ColumnType(typeName string) string {
	return buildColumnTypeSQL(typeName, postgresTypes)
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *postgres) QuoteIdent(name string) string {
	return quoteQualified(name, quoteDouble)
}

func (d *postgres) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *postgres) CreateTableSQL(op *ast.CreateTable, fks []*ast.ForeignKeyDef) (string, error) {
	return buildCreateTableSQL(op, fks, d.QuoteIdent, d.columnDefSQL)
}

func (d *postgres) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *postgres) RenameTableSQL(op *ast.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent)
}

func (d *postgres) AddColumnSQL(op *ast.AddColumn, inline *ast.ForeignKeyDef) (string, error) {
	return buildAddColumnSQL(op, inline, d.QuoteIdent, d.columnDefSQL)
}

func (d *postgres) ChangeColumnSQL(op *ast.ChangeColumn) ([]string, error) {
	var statements []string
	tableName := d.QuoteIdent(op.Table())
	colName := d.QuoteIdent(op.Column.Name)

	if op.Column.Type != "" {
		sqlType := d.ColumnType(op.Column.Type)
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", tableName, colName, sqlType))
	}

	if op.SetNullable != nil {
		if *op.SetNullable {
			statements = append(statements,
				fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", tableName, colName))
		} else {
			statements = append(statements,
				fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", tableName, colName))
		}
	}

	return statements, nil
}

func (d *postgres) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *postgres) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent, true)
}

func (d *postgres) DropIndexSQL(op *ast.DropIndex) (string, error) {
	return buildDropIndexSQL(op, d.QuoteIdent)
}

func (d *postgres) RenameIndexSQL(op *ast.RenameIndex) ([]string, error) {
	stmt := fmt.Sprintf("ALTER INDEX %s RENAME TO %s",
		d.QuoteIdent(qualifyLike(op.Table(), op.OldName)),
		d.QuoteIdent(op.NewName))
	return []string{stmt}, nil
}

func (d *postgres) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return buildAddForeignKeySQL(op, d.QuoteIdent)
}

func (d *postgres) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	ifExists := ""
	if op.IfExists {
		ifExists = "IF EXISTS "
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s%s",
		d.QuoteIdent(op.Table()), ifExists, d.QuoteIdent(op.Name)), nil
}

// -----------------------------------------------------------------------------
// Helper methods
// -----------------------------------------------------------------------------

// columnDefSQL generates the SQL for a column definition.
func (d *postgres) columnDefSQL(col *ast.ColumnDef, inline *ast.ForeignKeyDef) string {
	return buildColumnDefSQL(col, ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
		Inline:     inline,
	})
}
