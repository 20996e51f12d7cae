package ast

import (
	"testing"

	"github.com/hlop3z/autofk/internal/alerr"
)

// -----------------------------------------------------------------------------
// Identifier Tests
// -----------------------------------------------------------------------------

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"users", false},
		{"user_id", false},
		{"_private", false},
		{"a1", false},
		{"", true},
		{"Users", true},
		{"1abc", true},
		{"drop table", true},
		{"x;--", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !alerr.Is(err, alerr.ErrInvalidIdentifier) {
				t.Errorf("expected ErrInvalidIdentifier, got %v", err)
			}
		})
	}
}

func TestValidateQualifiedName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"users", false},
		{"audit.events", false},
		{"a.b.c", true},
		{"audit.", true},
		{".events", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQualifiedName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQualifiedName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeFKAction(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"cascade", "CASCADE", false},
		{"set_null", "SET NULL", false},
		{"nullify", "SET NULL", false},
		{" restrict ", "RESTRICT", false},
		{"no action", "NO ACTION", false},
		{"explode", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeFKAction(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeFKAction(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeFKAction(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ColumnOptions Tests
// -----------------------------------------------------------------------------

func TestColumnOptionsPresence(t *testing.T) {
	var nilOpts *ColumnOptions
	if nilOpts.HasForeignKey() || nilOpts.HasIndex() {
		t.Error("nil options must report nothing")
	}

	opts := &ColumnOptions{ForeignKey: Disabled(), Index: &IndexOption{Enabled: false}}
	if opts.HasForeignKey() {
		t.Error("disabled foreign key must not count as present")
	}
	if opts.HasIndex() {
		t.Error("disabled index must not count as present")
	}

	opts.ForeignKey.Enabled = true
	opts.Index.Enabled = true
	if !opts.HasForeignKey() || !opts.HasIndex() {
		t.Error("enabled options must be reported")
	}
}

func TestForeignKeyOptionTarget(t *testing.T) {
	tests := []struct {
		name   string
		opt    *ForeignKeyOption
		column string
		want   string
		ok     bool
	}{
		{"inferred", &ForeignKeyOption{Enabled: true}, "user_id", "users", true},
		{"explicit", &ForeignKeyOption{Enabled: true, References: "people"}, "author_id", "people", true},
		{"explicit without suffix", &ForeignKeyOption{Enabled: true, References: "users"}, "owner", "users", true},
		{"not inferable", &ForeignKeyOption{Enabled: true}, "owner", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.opt.Target(tt.column)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Target(%q) = (%q, %v), want (%q, %v)", tt.column, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestForeignKeyOptionTargetColumn(t *testing.T) {
	if got := (&ForeignKeyOption{}).TargetColumn(); got != "id" {
		t.Errorf("TargetColumn() = %q, want id", got)
	}
	if got := (&ForeignKeyOption{PrimaryKey: "uuid"}).TargetColumn(); got != "uuid" {
		t.Errorf("TargetColumn() = %q, want uuid", got)
	}
}

func TestForeignKeyOptionValidate(t *testing.T) {
	tests := []struct {
		name    string
		opt     *ForeignKeyOption
		wantErr bool
	}{
		{"disabled skips checks", &ForeignKeyOption{References: "BAD NAME"}, false},
		{"valid", &ForeignKeyOption{Enabled: true, References: "users", OnDelete: "cascade"}, false},
		{"bad table", &ForeignKeyOption{Enabled: true, References: "Users"}, true},
		{"bad action", &ForeignKeyOption{Enabled: true, OnDelete: "explode"}, true},
		{"bad name", &ForeignKeyOption{Enabled: true, Name: "fk-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ColumnDef Tests
// -----------------------------------------------------------------------------

func TestColumnDefValidate(t *testing.T) {
	tests := []struct {
		name     string
		col      *ColumnDef
		wantCode alerr.Code
	}{
		{"valid", &ColumnDef{Name: "user_id", Type: "integer"}, ""},
		{"raw type", &ColumnDef{Name: "price", Type: "numeric(10,2)"}, ""},
		{"missing name", &ColumnDef{Type: "integer"}, alerr.ErrMissingColumn},
		{"bad name", &ColumnDef{Name: "UserID", Type: "integer"}, alerr.ErrInvalidIdentifier},
		{"missing type", &ColumnDef{Name: "user_id"}, alerr.ErrInvalidOption},
		{"bad type", &ColumnDef{Name: "user_id", Type: "int; drop"}, alerr.ErrInvalidOption},
		{
			"bad fk option",
			&ColumnDef{Name: "user_id", Type: "integer", Options: ColumnOptions{
				ForeignKey: &ForeignKeyOption{Enabled: true, OnDelete: "explode"},
			}},
			alerr.ErrInvalidOption,
		},
		{
			"bad index name",
			&ColumnDef{Name: "user_id", Type: "integer", Options: ColumnOptions{
				Index: &IndexOption{Enabled: true, Name: "Bad"},
			}},
			alerr.ErrInvalidIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.col.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !alerr.Is(err, tt.wantCode) {
				t.Errorf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ReferenceDef Tests
// -----------------------------------------------------------------------------

func TestReferenceDefColumns(t *testing.T) {
	ref := &ReferenceDef{Name: "post"}
	if got := ref.Columns(); len(got) != 1 || got[0] != "post_id" {
		t.Errorf("Columns() = %v", got)
	}

	poly := &ReferenceDef{Name: "commentable", Polymorphic: true}
	got := poly.Columns()
	if len(got) != 2 || got[0] != "commentable_id" || got[1] != "commentable_type" {
		t.Errorf("Columns() = %v", got)
	}
}

func TestReferenceDefColumnDefs(t *testing.T) {
	poly := &ReferenceDef{Name: "commentable", Polymorphic: true, Nullable: true}
	cols := poly.ColumnDefs()
	if len(cols) != 2 {
		t.Fatalf("len = %d, want 2", len(cols))
	}
	if cols[0].Name != "commentable_id" || cols[0].Type != DefaultReferenceType {
		t.Errorf("id column = %+v", cols[0])
	}
	if cols[1].Name != "commentable_type" || cols[1].Type != "string" {
		t.Errorf("type column = %+v", cols[1])
	}
	for _, c := range cols {
		if !c.Nullable {
			t.Errorf("%s should inherit nullability", c.Name)
		}
		if c.Options.ForeignKey != nil || c.Options.Index != nil {
			t.Errorf("%s should carry no options", c.Name)
		}
	}

	typed := &ReferenceDef{Name: "owner", Type: "uuid"}
	if got := typed.ColumnDefs()[0].Type; got != "uuid" {
		t.Errorf("Type = %q, want uuid", got)
	}
}

func TestReferenceDefValidate(t *testing.T) {
	if err := (&ReferenceDef{Name: "post"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&ReferenceDef{}).Validate(); !alerr.Is(err, alerr.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
	if err := (&ReferenceDef{Name: "Post"}).Validate(); err == nil {
		t.Error("expected error for invalid name")
	}
}

// -----------------------------------------------------------------------------
// IndexDef / ForeignKeyDef Tests
// -----------------------------------------------------------------------------

func TestIndexDefValidate(t *testing.T) {
	if err := (&IndexDef{Name: "x", Columns: []string{"a"}}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&IndexDef{Name: "x"}).Validate(); !alerr.Is(err, alerr.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestForeignKeyDefValidate(t *testing.T) {
	valid := func() *ForeignKeyDef {
		return &ForeignKeyDef{Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}}
	}

	tests := []struct {
		name     string
		mutate   func(*ForeignKeyDef)
		wantCode alerr.Code
	}{
		{"valid", func(*ForeignKeyDef) {}, ""},
		{"qualified target", func(fk *ForeignKeyDef) { fk.RefTable = "auth.users" }, ""},
		{"no columns", func(fk *ForeignKeyDef) { fk.Columns = nil }, alerr.ErrMissingColumn},
		{"no target", func(fk *ForeignKeyDef) { fk.RefTable = "" }, alerr.ErrUnresolvedTarget},
		{"no ref columns", func(fk *ForeignKeyDef) { fk.RefColumns = nil }, alerr.ErrMissingColumn},
		{"count mismatch", func(fk *ForeignKeyDef) { fk.RefColumns = []string{"id", "x"} }, alerr.ErrInvalidOption},
		{"bad action", func(fk *ForeignKeyDef) { fk.OnUpdate = "explode" }, alerr.ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fk := valid()
			tt.mutate(fk)
			err := fk.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !alerr.Is(err, tt.wantCode) {
				t.Errorf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestForeignKeyDefColumn(t *testing.T) {
	if got := (&ForeignKeyDef{}).Column(); got != "" {
		t.Errorf("Column() = %q, want empty", got)
	}
	if got := (&ForeignKeyDef{Columns: []string{"a", "b"}}).Column(); got != "a" {
		t.Errorf("Column() = %q, want a", got)
	}
}
