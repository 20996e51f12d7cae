package ast

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/naming"
)

// Validation messages shared across ColumnDef, IndexDef, ForeignKeyDef,
// and their corresponding Operation types (operation.go).
const (
	msgTableNameRequired  = "table name is required"
	msgColumnNameRequired = "column name is required"
	msgIndexNeedsColumn   = "index must have at least one column"
	msgFKNeedsColumn      = "foreign key must have at least one column"
	msgFKNeedsRefTable    = "foreign key must reference a table"
	msgFKNeedsRefColumn   = "foreign key must reference at least one column"
	msgFKColumnCountMatch = "foreign key column count must match referenced column count"
)

// DefaultPrimaryKey is the column a foreign key points at unless told otherwise.
const DefaultPrimaryKey = "id"

// validIdentifierPattern matches safe SQL identifiers (lowercase snake_case).
var validIdentifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier checks that a name is a safe SQL identifier (lowercase snake_case).
func ValidateIdentifier(name string) error {
	if !validIdentifierPattern.MatchString(name) {
		return alerr.New(alerr.ErrInvalidIdentifier,
			fmt.Sprintf("invalid identifier %q; must match [a-z_][a-z0-9_]*", name))
	}
	return nil
}

// ValidateQualifiedName checks a "schema.table" or "table" reference.
func ValidateQualifiedName(name string) error {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 1:
		return ValidateIdentifier(parts[0])
	case 2:
		if err := ValidateIdentifier(parts[0]); err != nil {
			return err
		}
		return ValidateIdentifier(parts[1])
	default:
		return alerr.New(alerr.ErrInvalidIdentifier,
			fmt.Sprintf("invalid qualified name %q; expected 'table' or 'schema.table'", name))
	}
}

// ValidFKActions is the set of valid ON DELETE / ON UPDATE actions.
var ValidFKActions = map[string]bool{
	"":            true, // empty = no action specified (valid)
	"CASCADE":     true,
	"SET NULL":    true,
	"SET DEFAULT": true,
	"RESTRICT":    true,
	"NO ACTION":   true,
}

// NormalizeFKAction normalizes and validates an FK action string.
// Accepts the YAML spellings "cascade", "set_null", "nullify" and "restrict".
// Returns the uppercased action or error if invalid.
func NormalizeFKAction(action string) (string, error) {
	if action == "" {
		return "", nil
	}
	upper := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(action, "_", " ")))
	if upper == "NULLIFY" {
		upper = "SET NULL"
	}
	if !ValidFKActions[upper] {
		return "", alerr.New(alerr.ErrInvalidOption,
			fmt.Sprintf("invalid foreign key action %q; must be one of: CASCADE, SET NULL, SET DEFAULT, RESTRICT, NO ACTION", action))
	}
	return upper, nil
}

// validTypeNamePattern matches safe SQL type names.
var validTypeNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_ ()\[\],]*$`)

// ValidateTypeName checks that a type name is safe for SQL.
func ValidateTypeName(name string) error {
	if !validTypeNamePattern.MatchString(name) {
		return alerr.New(alerr.ErrInvalidOption,
			fmt.Sprintf("invalid type name %q; must match [a-zA-Z_][a-zA-Z0-9_ ()\\[\\],]*", name))
	}
	return nil
}

// -----------------------------------------------------------------------------
// Column options
// -----------------------------------------------------------------------------

// ColumnOptions are the declared foreign_key and index options of a column.
// A nil field means the option was not declared, which is different from an
// option declared as false.
type ColumnOptions struct {
	ForeignKey *ForeignKeyOption
	Index      *IndexOption
}

// HasForeignKey reports whether a foreign key is declared and enabled.
func (o *ColumnOptions) HasForeignKey() bool {
	return o != nil && o.ForeignKey != nil && o.ForeignKey.Enabled
}

// HasIndex reports whether an index is declared and enabled.
func (o *ColumnOptions) HasIndex() bool {
	return o != nil && o.Index != nil && o.Index.Enabled
}

// ForeignKeyOption is the foreign_key option of a column.
type ForeignKeyOption struct {
	Enabled    bool   // false = foreign_key: false
	Auto       bool   // set by the convention, not by the migration author
	References string // target table; empty = inferred from the column name
	PrimaryKey string // target column; empty = "id"
	Name       string // constraint name; empty = generated
	OnDelete   string // CASCADE, SET NULL, RESTRICT, NO ACTION
	OnUpdate   string // CASCADE, SET NULL, RESTRICT, NO ACTION
}

// Disabled returns the option for foreign_key: false.
func Disabled() *ForeignKeyOption {
	return &ForeignKeyOption{}
}

// Target resolves the referenced table for column. An explicit References
// wins; otherwise the table is inferred from the "<name>_id" convention.
func (f *ForeignKeyOption) Target(column string) (string, bool) {
	if f.References != "" {
		return f.References, true
	}
	return naming.InferredTargetTable(column)
}

// TargetColumn returns the referenced column, defaulting to "id".
func (f *ForeignKeyOption) TargetColumn() string {
	if f.PrimaryKey != "" {
		return f.PrimaryKey
	}
	return DefaultPrimaryKey
}

// Validate checks the option's identifiers and actions.
func (f *ForeignKeyOption) Validate() error {
	if !f.Enabled {
		return nil
	}
	if f.References != "" {
		if err := ValidateQualifiedName(f.References); err != nil {
			return err
		}
	}
	if f.PrimaryKey != "" {
		if err := ValidateIdentifier(f.PrimaryKey); err != nil {
			return err
		}
	}
	if f.Name != "" {
		if err := ValidateIdentifier(f.Name); err != nil {
			return err
		}
	}
	if _, err := NormalizeFKAction(f.OnDelete); err != nil {
		return err
	}
	_, err := NormalizeFKAction(f.OnUpdate)
	return err
}

// IndexOption is the index option of a column.
type IndexOption struct {
	Enabled bool   // false = index: false
	Name    string // empty = generated
	Unique  bool
}

// -----------------------------------------------------------------------------
// ColumnDef - column definition
// -----------------------------------------------------------------------------

// ColumnDef represents a column with its type, constraints and declared options.
type ColumnDef struct {
	Name       string // Column name (snake_case)
	Type       string // Type name (integer, bigint, string, ...) or raw SQL type
	Nullable   bool   // True if column allows NULL (default is NOT NULL)
	PrimaryKey bool
	Default    string // Raw SQL default expression (empty = none)
	Options    ColumnOptions
}

// Validate checks that the column definition is well-formed.
func (c *ColumnDef) Validate() error {
	if c.Name == "" {
		return alerr.New(alerr.ErrMissingColumn, msgColumnNameRequired)
	}
	if err := ValidateIdentifier(c.Name); err != nil {
		return err
	}
	if c.Type == "" {
		return alerr.New(alerr.ErrInvalidOption, "column type is required").
			WithColumn(c.Name)
	}
	if err := ValidateTypeName(c.Type); err != nil {
		return err
	}
	return c.validateOptions()
}

func (c *ColumnDef) validateOptions() error {
	if c.Options.ForeignKey != nil {
		if err := c.Options.ForeignKey.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrInvalidOption, err, "invalid foreign_key option").
				WithColumn(c.Name)
		}
	}
	if idx := c.Options.Index; idx != nil && idx.Name != "" {
		if err := ValidateIdentifier(idx.Name); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// ReferenceDef - reference declaration
// -----------------------------------------------------------------------------

// ReferenceDef declares a reference to another table: "post" adds post_id,
// a polymorphic "commentable" adds commentable_id and commentable_type.
type ReferenceDef struct {
	Name        string // Reference name without the _id suffix
	Polymorphic bool
	Type        string // Type of the id column (default bigint)
	Nullable    bool
	Options     ColumnOptions
}

// DefaultReferenceType is the id column type of a reference.
const DefaultReferenceType = "bigint"

// IDType returns the type of the id column.
func (r *ReferenceDef) IDType() string {
	if r.Type != "" {
		return r.Type
	}
	return DefaultReferenceType
}

// Columns returns the columns the reference adds, id first.
func (r *ReferenceDef) Columns() []string {
	if r.Polymorphic {
		return naming.PolymorphicColumns(r.Name)
	}
	return []string{naming.ReferenceColumn(r.Name)}
}

// ColumnDefs expands the reference into column definitions. The options stay
// on the reference; the returned columns carry none.
func (r *ReferenceDef) ColumnDefs() []*ColumnDef {
	cols := []*ColumnDef{{
		Name:     naming.ReferenceColumn(r.Name),
		Type:     r.IDType(),
		Nullable: r.Nullable,
	}}
	if r.Polymorphic {
		cols = append(cols, &ColumnDef{
			Name:     r.Name + naming.TypeSuffix,
			Type:     "string",
			Nullable: r.Nullable,
		})
	}
	return cols
}

// Validate checks that the reference is well-formed.
func (r *ReferenceDef) Validate() error {
	if r.Name == "" {
		return alerr.New(alerr.ErrMissingColumn, "reference name is required")
	}
	if err := ValidateIdentifier(r.Name); err != nil {
		return err
	}
	if r.Type != "" {
		if err := ValidateTypeName(r.Type); err != nil {
			return err
		}
	}
	if r.Options.ForeignKey != nil {
		if err := r.Options.ForeignKey.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrInvalidOption, err, "invalid foreign_key option").
				WithColumn(r.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// IndexDef - index definition
// -----------------------------------------------------------------------------

// IndexDef represents an index, as declared or as read from the catalog.
type IndexDef struct {
	Name    string   // Index name
	Columns []string // Columns to index (in order)
	Unique  bool     // UNIQUE index
}

// Validate checks that the index definition is well-formed.
func (i *IndexDef) Validate() error {
	if len(i.Columns) == 0 {
		return alerr.New(alerr.ErrMissingColumn, msgIndexNeedsColumn)
	}
	for _, col := range i.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// ForeignKeyDef - foreign key constraint definition
// -----------------------------------------------------------------------------

// ForeignKeyDef represents a foreign key constraint.
type ForeignKeyDef struct {
	Name       string   // Constraint name
	Columns    []string // Local columns
	RefTable   string   // Referenced table
	RefColumns []string // Referenced columns (usually just "id")
	OnDelete   string   // CASCADE, SET NULL, RESTRICT, NO ACTION
	OnUpdate   string   // CASCADE, SET NULL, RESTRICT, NO ACTION
}

// Column returns the first local column, or "" if none.
func (fk *ForeignKeyDef) Column() string {
	if len(fk.Columns) == 0 {
		return ""
	}
	return fk.Columns[0]
}

// Validate checks that the foreign key definition is well-formed.
func (fk *ForeignKeyDef) Validate() error {
	if len(fk.Columns) == 0 {
		return alerr.New(alerr.ErrMissingColumn, msgFKNeedsColumn)
	}
	for _, col := range fk.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	if fk.RefTable == "" {
		return alerr.New(alerr.ErrUnresolvedTarget, msgFKNeedsRefTable)
	}
	if len(fk.RefColumns) == 0 {
		return alerr.New(alerr.ErrMissingColumn, msgFKNeedsRefColumn)
	}
	if err := ValidateQualifiedName(fk.RefTable); err != nil {
		return err
	}
	for _, col := range fk.RefColumns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	if len(fk.Columns) != len(fk.RefColumns) {
		return alerr.New(alerr.ErrInvalidOption, msgFKColumnCountMatch).
			With("columns", len(fk.Columns)).
			With("ref_columns", len(fk.RefColumns))
	}
	if _, err := NormalizeFKAction(fk.OnDelete); err != nil {
		return err
	}
	_, err := NormalizeFKAction(fk.OnUpdate)
	return err
}
