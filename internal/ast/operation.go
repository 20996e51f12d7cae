package ast

import (
	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/config"
)

// Operation represents a single atomic change to the database schema.
type Operation interface {
	// Type returns the operation type (OpCreateTable, OpAddColumn, etc.)
	Type() OpType

	// Table returns the table the operation targets, possibly schema-qualified.
	Table() string

	// Validate checks that the operation is well-formed.
	// Returns an error if the operation has invalid or missing fields.
	Validate() error
}

// Configurable is implemented by operations that accept a local
// foreign_keys override.
type Configurable interface {
	Operation
	Override() *config.Override
}

// -----------------------------------------------------------------------------
// Embedded types for DRY operation definitions
// -----------------------------------------------------------------------------

// TableRef provides the target table for column and index operations.
type TableRef struct {
	Table_ string
}

// Table returns the target table.
func (t TableRef) Table() string {
	return t.Table_
}

func (t TableRef) validate(what string) error {
	if t.Table_ == "" {
		return alerr.New(alerr.ErrMissingTable, "table name is required for "+what)
	}
	return ValidateQualifiedName(t.Table_)
}

// -----------------------------------------------------------------------------
// CreateTable - creates a new table
// -----------------------------------------------------------------------------

// CreateTable represents creating a new table with columns and references.
type CreateTable struct {
	Name        string
	ID          bool // Add an "id" bigint primary key as the first column
	Columns     []*ColumnDef
	References  []*ReferenceDef
	IfNotExists bool
	Settings    *config.Override
}

func (op *CreateTable) Type() OpType               { return OpCreateTable }
func (op *CreateTable) Table() string              { return op.Name }
func (op *CreateTable) Override() *config.Override { return op.Settings }

func (op *CreateTable) Validate() error {
	if op.Name == "" {
		return alerr.New(alerr.ErrMissingTable, msgTableNameRequired)
	}
	if err := ValidateQualifiedName(op.Name); err != nil {
		return err
	}
	if len(op.Columns) == 0 && len(op.References) == 0 && !op.ID {
		return alerr.New(alerr.ErrMigrationInvalid, "table must have at least one column").
			WithTable(op.Name)
	}
	seen := make(map[string]bool)
	for _, col := range op.Columns {
		if err := col.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid column").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
		if seen[col.Name] {
			return alerr.New(alerr.ErrMigrationInvalid, "duplicate column").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
		seen[col.Name] = true
	}
	for _, ref := range op.References {
		if err := ref.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid reference").
				WithTable(op.Name).
				WithColumn(ref.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropTable - removes an existing table
// -----------------------------------------------------------------------------

// DropTable represents dropping an existing table.
type DropTable struct {
	Name     string
	IfExists bool
}

func (op *DropTable) Type() OpType  { return OpDropTable }
func (op *DropTable) Table() string { return op.Name }

func (op *DropTable) Validate() error {
	if op.Name == "" {
		return alerr.New(alerr.ErrMissingTable, "table name is required for drop")
	}
	return ValidateQualifiedName(op.Name)
}

// -----------------------------------------------------------------------------
// RenameTable - renames an existing table
// -----------------------------------------------------------------------------

// RenameTable represents renaming an existing table.
type RenameTable struct {
	OldName string
	NewName string
}

func (op *RenameTable) Type() OpType  { return OpRenameTable }
func (op *RenameTable) Table() string { return op.OldName }

func (op *RenameTable) Validate() error {
	if op.OldName == "" {
		return alerr.New(alerr.ErrMissingTable, "old table name is required for rename")
	}
	if op.NewName == "" {
		return alerr.New(alerr.ErrMissingTable, "new table name is required for rename")
	}
	if op.OldName == op.NewName {
		return alerr.New(alerr.ErrMigrationInvalid, "old and new table names must be different").
			WithTable(op.OldName)
	}
	if err := ValidateQualifiedName(op.OldName); err != nil {
		return err
	}
	return ValidateQualifiedName(op.NewName)
}

// -----------------------------------------------------------------------------
// AddColumn - adds a column to an existing table
// -----------------------------------------------------------------------------

// AddColumn represents adding a new column to an existing table.
type AddColumn struct {
	TableRef
	Column   *ColumnDef
	Settings *config.Override
}

func (op *AddColumn) Type() OpType               { return OpAddColumn }
func (op *AddColumn) Override() *config.Override { return op.Settings }

func (op *AddColumn) Validate() error {
	if err := op.validate("add column"); err != nil {
		return err
	}
	if op.Column == nil {
		return alerr.New(alerr.ErrMissingColumn, "column definition is required").
			WithTable(op.Table_)
	}
	if err := op.Column.Validate(); err != nil {
		return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid column").
			WithTable(op.Table_).
			WithColumn(op.Column.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// ChangeColumn - modifies an existing column
// -----------------------------------------------------------------------------

// ChangeColumn represents modifying an existing column. Column.Type may be
// empty to leave the type alone; SetNullable is nil to leave nullability alone.
type ChangeColumn struct {
	TableRef
	Column      *ColumnDef
	SetNullable *bool
	Settings    *config.Override
}

func (op *ChangeColumn) Type() OpType               { return OpChangeColumn }
func (op *ChangeColumn) Override() *config.Override { return op.Settings }

func (op *ChangeColumn) Validate() error {
	if err := op.validate("change column"); err != nil {
		return err
	}
	if op.Column == nil || op.Column.Name == "" {
		return alerr.New(alerr.ErrMissingColumn, "column name is required for change column").
			WithTable(op.Table_)
	}
	if err := ValidateIdentifier(op.Column.Name); err != nil {
		return err
	}
	if op.Column.Type != "" {
		if err := ValidateTypeName(op.Column.Type); err != nil {
			return err
		}
	}
	hasChange := op.Column.Type != "" ||
		op.SetNullable != nil ||
		op.Column.Options.ForeignKey != nil ||
		op.Column.Options.Index != nil
	if !hasChange {
		return alerr.New(alerr.ErrMigrationInvalid, "change column must specify at least one change").
			WithTable(op.Table_).
			WithColumn(op.Column.Name)
	}
	return op.Column.validateOptions()
}

// -----------------------------------------------------------------------------
// DropColumn - removes a column from an existing table
// -----------------------------------------------------------------------------

// DropColumn represents removing a column from an existing table.
type DropColumn struct {
	TableRef
	Name string
}

func (op *DropColumn) Type() OpType { return OpDropColumn }

func (op *DropColumn) Validate() error {
	if err := op.validate("drop column"); err != nil {
		return err
	}
	if op.Name == "" {
		return alerr.New(alerr.ErrMissingColumn, "column name is required for drop column").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddReference - adds a reference's column(s)
// -----------------------------------------------------------------------------

// AddReference represents adding a reference declaration to an existing table.
type AddReference struct {
	TableRef
	Reference *ReferenceDef
	Settings  *config.Override
}

func (op *AddReference) Type() OpType               { return OpAddReference }
func (op *AddReference) Override() *config.Override { return op.Settings }

func (op *AddReference) Validate() error {
	if err := op.validate("add reference"); err != nil {
		return err
	}
	if op.Reference == nil {
		return alerr.New(alerr.ErrMissingColumn, "reference definition is required").
			WithTable(op.Table_)
	}
	if err := op.Reference.Validate(); err != nil {
		return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid reference").
			WithTable(op.Table_).
			WithColumn(op.Reference.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// CreateIndex - creates a new index
// -----------------------------------------------------------------------------

// CreateIndex represents creating a new index on one or more columns.
type CreateIndex struct {
	TableRef
	Name        string   // Index name
	Columns     []string // Columns to index
	Unique      bool     // UNIQUE index
	IfNotExists bool
}

func (op *CreateIndex) Type() OpType { return OpCreateIndex }

func (op *CreateIndex) Validate() error {
	if err := op.validate("create index"); err != nil {
		return err
	}
	if op.Name == "" {
		return alerr.New(alerr.ErrMigrationInvalid, "index name is required").
			WithTable(op.Table_)
	}
	if len(op.Columns) == 0 {
		return alerr.New(alerr.ErrMissingColumn, msgIndexNeedsColumn).
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropIndex - removes an existing index
// -----------------------------------------------------------------------------

// DropIndex represents removing an existing index. Column is informational
// and identifies the column the index was created for, if known.
type DropIndex struct {
	TableRef
	Name     string
	Column   string
	IfExists bool
}

func (op *DropIndex) Type() OpType { return OpDropIndex }

func (op *DropIndex) Validate() error {
	if op.Name == "" {
		return alerr.New(alerr.ErrMigrationInvalid, "index name is required for drop index")
	}
	return nil
}

// -----------------------------------------------------------------------------
// RenameIndex - renames an existing index
// -----------------------------------------------------------------------------

// RenameIndex represents renaming an index. Columns is needed only by
// backends that rename by recreating the index.
type RenameIndex struct {
	TableRef
	OldName string
	NewName string
	Columns []string
	Unique  bool
}

func (op *RenameIndex) Type() OpType { return OpRenameIndex }

func (op *RenameIndex) Validate() error {
	if op.OldName == "" || op.NewName == "" {
		return alerr.New(alerr.ErrMigrationInvalid, "old and new index names are required for rename index").
			WithTable(op.Table_)
	}
	if op.OldName == op.NewName {
		return alerr.New(alerr.ErrMigrationInvalid, "old and new index names must be different").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddForeignKey - adds a foreign key constraint
// -----------------------------------------------------------------------------

// AddForeignKey represents adding a foreign key constraint.
type AddForeignKey struct {
	TableRef
	ForeignKeyDef
}

func (op *AddForeignKey) Type() OpType { return OpAddForeignKey }

func (op *AddForeignKey) Validate() error {
	if err := op.validate("add foreign key"); err != nil {
		return err
	}
	if err := op.ForeignKeyDef.Validate(); err != nil {
		return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid foreign key").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropForeignKey - removes a foreign key constraint
// -----------------------------------------------------------------------------

// DropForeignKey represents removing a foreign key constraint.
type DropForeignKey struct {
	TableRef
	Name     string // Constraint name
	IfExists bool
}

func (op *DropForeignKey) Type() OpType { return OpDropForeignKey }

func (op *DropForeignKey) Validate() error {
	if err := op.validate("drop foreign key"); err != nil {
		return err
	}
	if op.Name == "" {
		return alerr.New(alerr.ErrMigrationInvalid, "constraint name is required for drop foreign key").
			WithTable(op.Table_)
	}
	return nil
}
