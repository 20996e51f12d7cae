package introspect

// This file contains the row accumulators shared by all introspector
// implementations. Catalogs return one row per key column; the accumulators
// fold them back into one definition per constraint or index.

import (
	"github.com/hlop3z/autofk/internal/ast"
)

// FKAccumulator merges composite FK columns into single FKDef.
type FKAccumulator struct {
	fks   map[string]*ast.ForeignKeyDef
	order []string // preserve insertion order
}

// NewFKAccumulator creates a new FKAccumulator.
func NewFKAccumulator() *FKAccumulator {
	return &FKAccumulator{
		fks: make(map[string]*ast.ForeignKeyDef),
	}
}

// Add adds or updates a foreign key entry.
// If a FK with the same name exists, it appends the column to the existing FK.
// Otherwise, it creates a new FK entry.
func (a *FKAccumulator) Add(name, column, refTable, refColumn, onDelete, onUpdate string) {
	if fk, exists := a.fks[name]; exists {
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
		return
	}
	a.fks[name] = &ast.ForeignKeyDef{
		Name:       name,
		Columns:    []string{column},
		RefTable:   refTable,
		RefColumns: []string{refColumn},
		OnDelete:   normalizeAction(onDelete),
		OnUpdate:   normalizeAction(onUpdate),
	}
	a.order = append(a.order, name)
}

// Values returns all accumulated foreign keys in insertion order.
func (a *FKAccumulator) Values() []*ast.ForeignKeyDef {
	result := make([]*ast.ForeignKeyDef, 0, len(a.order))
	for _, name := range a.order {
		result = append(result, a.fks[name])
	}
	return result
}

// IndexAccumulator merges per-column index rows into single IndexDefs.
type IndexAccumulator struct {
	idxs  map[string]*ast.IndexDef
	order []string
}

// NewIndexAccumulator creates a new IndexAccumulator.
func NewIndexAccumulator() *IndexAccumulator {
	return &IndexAccumulator{idxs: make(map[string]*ast.IndexDef)}
}

// Add appends column to the named index, creating it on first sight.
func (a *IndexAccumulator) Add(name, column string, unique bool) {
	if idx, exists := a.idxs[name]; exists {
		idx.Columns = append(idx.Columns, column)
		return
	}
	a.idxs[name] = &ast.IndexDef{Name: name, Columns: []string{column}, Unique: unique}
	a.order = append(a.order, name)
}

// Values returns all accumulated indexes in insertion order.
func (a *IndexAccumulator) Values() []*ast.IndexDef {
	result := make([]*ast.IndexDef, 0, len(a.order))
	for _, name := range a.order {
		result = append(result, a.idxs[name])
	}
	return result
}
