package dialect

import (
	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
)

// sqlite implements the Dialect interface for SQLite.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

func (d *sqlite) Capabilities() Capabilities {
	caps, _ := CapabilitiesFor(d.Name())
	return caps
}

// -----------------------------------------------------------------------------
// Type mappings
// SQLite has dynamic typing with type affinities: TEXT, INTEGER, REAL, BLOB.
// -----------------------------------------------------------------------------

var sqliteTypes = map[string]string{
	// INTEGER PRIMARY KEY aliases the rowid
	"primary_key": "INTEGER",
	"integer":     "INTEGER",
	"bigint":      "INTEGER",
	"string":      "TEXT",
	"text":        "TEXT",
	"boolean":     "INTEGER",
	"float":       "REAL",
	"decimal":     "TEXT",
	"date":        "DATE",
	"time":        "TIME",
	"datetime":    "DATETIME",
	"timestamp":   "DATETIME",
	"uuid":        "TEXT",
	"json":        "TEXT",
	"binary":      "BLOB",
}

func (d *sqlite) ColumnType(typeName string) string {
	return buildColumnTypeSQL(typeName, sqliteTypes)
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *sqlite) QuoteIdent(name string) string {
	return quoteQualified(name, quoteDouble)
}

func (d *sqlite) Placeholder(index int) string {
	// SQLite uses ? for all placeholders
	return "?"
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *sqlite) CreateTableSQL(op *ast.CreateTable, fks []*ast.ForeignKeyDef) (string, error) {
	return buildCreateTableSQL(op, fks, d.QuoteIdent, d.columnDefSQL)
}

func (d *sqlite) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *sqlite) RenameTableSQL(op *ast.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent)
}

func (d *sqlite) AddColumnSQL(op *ast.AddColumn, inline *ast.ForeignKeyDef) (string, error) {
	return buildAddColumnSQL(op, inline, d.QuoteIdent, d.columnDefSQL)
}

// ChangeColumnSQL rejects type and nullability changes: SQLite can only
// change them by rebuilding the table.
func (d *sqlite) ChangeColumnSQL(op *ast.ChangeColumn) ([]string, error) {
	if op.Column.Type != "" || op.SetNullable != nil {
		return nil, alerr.New(alerr.EUnsupportedDialect, "SQLite cannot change a column's type or nullability in place").
			WithTable(op.Table()).
			WithColumn(op.Column.Name).
			WithHelp("create a new table and copy the data, or change only foreign_key/index options")
	}
	return nil, nil
}

func (d *sqlite) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *sqlite) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent, true)
}

func (d *sqlite) DropIndexSQL(op *ast.DropIndex) (string, error) {
	return buildDropIndexSQL(op, d.QuoteIdent)
}

// RenameIndexSQL recreates the index under its new name; SQLite has no
// ALTER INDEX.
func (d *sqlite) RenameIndexSQL(op *ast.RenameIndex) ([]string, error) {
	if len(op.Columns) == 0 {
		return nil, alerr.New(alerr.EUnsupportedDialect, "SQLite renames an index by recreating it; its columns are required").
			WithTable(op.Table()).
			With("index", op.OldName)
	}
	drop, err := buildDropIndexSQL(&ast.DropIndex{TableRef: op.TableRef, Name: op.OldName}, d.QuoteIdent)
	if err != nil {
		return nil, err
	}
	create, err := buildCreateIndexSQL(&ast.CreateIndex{
		TableRef: op.TableRef,
		Name:     op.NewName,
		Columns:  op.Columns,
		Unique:   op.Unique,
	}, d.QuoteIdent, true)
	if err != nil {
		return nil, err
	}
	return []string{drop, create}, nil
}

func (d *sqlite) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return "", alerr.New(alerr.EUnsupportedDialect, "SQLite cannot add a foreign key to an existing table").
		WithTable(op.Table()).
		WithHelp("declare the reference when the column is created")
}

func (d *sqlite) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	return "", alerr.New(alerr.EUnsupportedDialect, "SQLite cannot drop a foreign key from an existing table").
		WithTable(op.Table()).
		With("constraint", op.Name)
}

// -----------------------------------------------------------------------------
// Helper methods
// -----------------------------------------------------------------------------

func (d *sqlite) columnDefSQL(col *ast.ColumnDef, inline *ast.ForeignKeyDef) string {
	return buildColumnDefSQL(col, ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnType,
		Inline:     inline,
	})
}
