package engine

import (
	"context"
	"slices"

	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/hooks"
)

// plannedCatalog answers catalog queries during a dry run. It starts from the
// live catalog, if there is one, and layers the changes the run has planned
// so far on top, so decisions later in the run see earlier operations.
type plannedCatalog struct {
	live   hooks.Catalog
	tables map[string]*plannedTable
}

type plannedTable struct {
	// origin is the table's name in the live database; empty when the table
	// was created by the run.
	origin  string
	fks     []*ast.ForeignKeyDef
	idxs    []*ast.IndexDef
	dropped map[string]bool // live constraint and index names
}

func newPlannedCatalog(live hooks.Catalog) *plannedCatalog {
	return &plannedCatalog{live: live, tables: map[string]*plannedTable{}}
}

// table returns the overlay for name, starting an empty one over the live
// table of the same name.
func (c *plannedCatalog) table(name string) *plannedTable {
	t, ok := c.tables[name]
	if !ok {
		t = &plannedTable{origin: name, dropped: map[string]bool{}}
		c.tables[name] = t
	}
	return t
}

func (c *plannedCatalog) ForeignKeys(ctx context.Context, table string) ([]*ast.ForeignKeyDef, error) {
	t := c.table(table)
	var out []*ast.ForeignKeyDef
	if c.live != nil && t.origin != "" {
		live, err := c.live.ForeignKeys(ctx, t.origin)
		if err != nil {
			return nil, err
		}
		for _, fk := range live {
			if !t.dropped[fk.Name] {
				out = append(out, fk)
			}
		}
	}
	return append(out, t.fks...), nil
}

func (c *plannedCatalog) Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error) {
	t := c.table(table)
	var out []*ast.IndexDef
	if c.live != nil && t.origin != "" {
		live, err := c.live.Indexes(ctx, t.origin)
		if err != nil {
			return nil, err
		}
		for _, idx := range live {
			if !t.dropped[idx.Name] {
				out = append(out, idx)
			}
		}
	}
	return append(out, t.idxs...), nil
}

func (c *plannedCatalog) createTable(name string) {
	c.tables[name] = &plannedTable{dropped: map[string]bool{}}
}

func (c *plannedCatalog) dropTable(name string) {
	c.createTable(name)
}

func (c *plannedCatalog) renameTable(oldName, newName string) {
	t := c.table(oldName)
	delete(c.tables, oldName)
	c.tables[newName] = t
	c.dropTable(oldName)
}

func (c *plannedCatalog) addForeignKey(table string, fk *ast.ForeignKeyDef) {
	t := c.table(table)
	t.fks = append(t.fks, fk)
}

func (c *plannedCatalog) dropForeignKey(table, name string) {
	t := c.table(table)
	t.fks = slices.DeleteFunc(t.fks, func(fk *ast.ForeignKeyDef) bool { return fk.Name == name })
	t.dropped[name] = true
}

func (c *plannedCatalog) addIndex(table string, idx *ast.IndexDef) {
	t := c.table(table)
	t.idxs = append(t.idxs, idx)
}

func (c *plannedCatalog) dropIndex(table, name string) {
	t := c.table(table)
	t.idxs = slices.DeleteFunc(t.idxs, func(idx *ast.IndexDef) bool { return idx.Name == name })
	t.dropped[name] = true
}

func (c *plannedCatalog) renameIndex(ctx context.Context, table, oldName, newName string) error {
	idxs, err := c.Indexes(ctx, table)
	if err != nil {
		return err
	}
	for _, idx := range idxs {
		if idx.Name == oldName {
			c.dropIndex(table, oldName)
			c.addIndex(table, &ast.IndexDef{Name: newName, Columns: idx.Columns, Unique: idx.Unique})
			return nil
		}
	}
	return nil
}
