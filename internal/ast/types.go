// Package ast defines the migration operations autofk understands.
// Operations describe schema changes declaratively; the dialect package
// renders them to SQL and the engine runs them through the foreign-key hooks.
package ast

// OpType represents the type of a schema operation.
type OpType int

const (
	// OpCreateTable creates a new table with columns and references.
	OpCreateTable OpType = iota

	// OpDropTable removes an existing table.
	OpDropTable

	// OpRenameTable changes a table's name.
	OpRenameTable

	// OpAddColumn adds a new column to an existing table.
	OpAddColumn

	// OpChangeColumn modifies a column's type, nullability or foreign key.
	OpChangeColumn

	// OpDropColumn removes a column from an existing table.
	OpDropColumn

	// OpAddReference adds the column(s) of a reference declaration.
	OpAddReference

	// OpCreateIndex creates a new index on one or more columns.
	OpCreateIndex

	// OpDropIndex removes an existing index.
	OpDropIndex

	// OpRenameIndex renames an existing index.
	OpRenameIndex

	// OpAddForeignKey adds a foreign key constraint.
	OpAddForeignKey

	// OpDropForeignKey removes a foreign key constraint.
	OpDropForeignKey
)

var opTypeNames = map[OpType]string{
	OpCreateTable:    "CreateTable",
	OpDropTable:      "DropTable",
	OpRenameTable:    "RenameTable",
	OpAddColumn:      "AddColumn",
	OpChangeColumn:   "ChangeColumn",
	OpDropColumn:     "DropColumn",
	OpAddReference:   "AddReference",
	OpCreateIndex:    "CreateIndex",
	OpDropIndex:      "DropIndex",
	OpRenameIndex:    "RenameIndex",
	OpAddForeignKey:  "AddForeignKey",
	OpDropForeignKey: "DropForeignKey",
}

// String returns the string representation of an OpType.
func (o OpType) String() string {
	if s, ok := opTypeNames[o]; ok {
		return s
	}
	return "Unknown"
}
