package dialect

import (
	"fmt"
	"strings"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
)

// mysql implements the Dialect interface for MySQL and MariaDB (InnoDB).
type mysql struct{}

// MySQL returns the MySQL dialect implementation.
func MySQL() Dialect {
	return &mysql{}
}

func (d *mysql) Name() string {
	return "mysql"
}

func (d *mysql) Capabilities() Capabilities {
	caps, _ := CapabilitiesFor(d.Name())
	return caps
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

var mysqlTypes = map[string]string{
	"primary_key": "BIGINT AUTO_INCREMENT",
	"integer":     "INT",
	"bigint":      "BIGINT",
	"string":      "VARCHAR(255)",
	"text":        "TEXT",
	"boolean":     "TINYINT(1)",
	"float":       "FLOAT",
	"decimal":     "DECIMAL(10, 2)",
	"date":        "DATE",
	"time":        "TIME",
	"datetime":    "DATETIME",
	"timestamp":   "TIMESTAMP",
	"uuid":        "CHAR(36)",
	"json":        "JSON",
	"binary":      "BLOB",
}

func (d *mysql) ColumnType(typeName string) string {
	return buildColumnTypeSQL(typeName, mysqlTypes)
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *mysql) QuoteIdent(name string) string {
	return quoteQualified(name, quoteBacktick)
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *mysql) CreateTableSQL(op *ast.CreateTable, fks []*ast.ForeignKeyDef) (string, error) {
	return buildCreateTableSQL(op, fks, d.QuoteIdent, d.columnDefSQL)
}

func (d *mysql) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *mysql) RenameTableSQL(op *ast.RenameTable) (string, error) {
	newName := op.NewName
	if !strings.Contains(newName, ".") {
		newName = qualifyLike(op.OldName, newName)
	}
	return fmt.Sprintf("RENAME TABLE %s TO %s", d.QuoteIdent(op.OldName), d.QuoteIdent(newName)), nil
}

// AddColumnSQL never inlines the reference: MySQL parses and ignores
// column-level REFERENCES clauses.
func (d *mysql) AddColumnSQL(op *ast.AddColumn, _ *ast.ForeignKeyDef) (string, error) {
	return buildAddColumnSQL(op, nil, d.QuoteIdent, d.columnDefSQL)
}

// ChangeColumnSQL uses MODIFY COLUMN, which restates the whole column, so a
// type is required even when only nullability changes.
func (d *mysql) ChangeColumnSQL(op *ast.ChangeColumn) ([]string, error) {
	if op.Column.Type == "" && op.SetNullable == nil {
		return nil, nil
	}
	if op.Column.Type == "" {
		return nil, alerr.New(alerr.EUnsupportedDialect, "MySQL needs the column type to change nullability").
			WithTable(op.Table()).
			WithColumn(op.Column.Name).
			WithHelp("add type: to the change_column operation")
	}
	col := *op.Column
	col.Nullable = op.SetNullable != nil && *op.SetNullable
	stmt := fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s",
		d.QuoteIdent(op.Table()), d.columnDefSQL(&col, nil))
	return []string{stmt}, nil
}

func (d *mysql) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *mysql) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent, false)
}

// DropIndexSQL ignores IfExists; MySQL has no DROP INDEX IF EXISTS and the
// caller checks the catalog first.
func (d *mysql) DropIndexSQL(op *ast.DropIndex) (string, error) {
	return fmt.Sprintf("DROP INDEX %s ON %s", d.QuoteIdent(op.Name), d.QuoteIdent(op.Table())), nil
}

func (d *mysql) RenameIndexSQL(op *ast.RenameIndex) ([]string, error) {
	stmt := fmt.Sprintf("ALTER TABLE %s RENAME INDEX %s TO %s",
		d.QuoteIdent(op.Table()), d.QuoteIdent(op.OldName), d.QuoteIdent(op.NewName))
	return []string{stmt}, nil
}

func (d *mysql) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return buildAddForeignKeySQL(op, d.QuoteIdent)
}

func (d *mysql) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s",
		d.QuoteIdent(op.Table()), d.QuoteIdent(op.Name)), nil
}

// -----------------------------------------------------------------------------
// Helper methods
// -----------------------------------------------------------------------------

func (d *mysql) columnDefSQL(col *ast.ColumnDef, _ *ast.ForeignKeyDef) string {
	return buildColumnDefSQL(col, ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
	})
}
