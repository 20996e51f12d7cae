package engine

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/autofk"
	"github.com/hlop3z/autofk/internal/config"
	"github.com/hlop3z/autofk/internal/hooks"
	"github.com/hlop3z/autofk/internal/naming"
	"github.com/hlop3z/autofk/internal/strutil"
)

// apply lowers one operation to SQL, running the foreign-key hooks around
// its column changes.
func (s *session) apply(ctx context.Context, op ast.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	switch op := op.(type) {
	case *ast.CreateTable:
		return s.createTable(ctx, op)
	case *ast.DropTable:
		return s.dropTable(ctx, op)
	case *ast.RenameTable:
		return s.renameTable(ctx, op)
	case *ast.AddColumn:
		return s.addColumn(ctx, op)
	case *ast.ChangeColumn:
		return s.changeColumn(ctx, op)
	case *ast.DropColumn:
		stmt, err := s.dialect.DropColumnSQL(op)
		if err != nil {
			return err
		}
		return s.run(ctx, stmt)
	case *ast.AddReference:
		return s.addReference(ctx, op)
	case *ast.CreateIndex:
		return s.createIndex(ctx, op)
	case *ast.DropIndex:
		return s.RemoveIndex(ctx, op)
	case *ast.RenameIndex:
		return s.RenameIndex(ctx, op)
	case *ast.AddForeignKey:
		return s.addForeignKey(ctx, op)
	case *ast.DropForeignKey:
		return s.dropForeignKey(ctx, op)
	default:
		return alerr.New(alerr.ErrUnknownOperation, "unsupported operation").
			With("operation", op.Type().String()).
			WithTable(op.Table())
	}
}

// -----------------------------------------------------------------------------
// Column events
// -----------------------------------------------------------------------------

// before builds the column event for the hooks and plans its options.
// opts belongs to the operation and is rewritten in place.
func (s *session) before(table string, columns []string, opts *ast.ColumnOptions, kind autofk.Kind, polymorphic bool, local *config.Override) *hooks.ColumnEvent {
	ev := &hooks.ColumnEvent{
		Request: autofk.Request{
			Table:       table,
			Columns:     columns,
			Options:     opts,
			Kind:        kind,
			Polymorphic: polymorphic,
		},
		Override: local,
		Host:     s,
	}
	s.hooks.Before(ev)
	return ev
}

func (s *session) after(ctx context.Context, events ...*hooks.ColumnEvent) error {
	for _, ev := range events {
		if err := s.hooks.After(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// lowered is what a column's options turn into.
type lowered struct {
	fk  *ast.ForeignKeyDef
	idx *ast.CreateIndex
}

// lower turns planned options into a foreign key and an index definition.
// The foreign key is on the first column; the index covers all of them.
func (s *session) lower(table string, columns []string, opts *ast.ColumnOptions) (lowered, error) {
	var out lowered
	if opts.HasForeignKey() {
		fk, err := foreignKeyDef(table, columns[0], opts.ForeignKey)
		if err != nil {
			return out, err
		}
		out.fk = fk
	}
	if opts.HasIndex() {
		out.idx = s.indexDef(table, columns, opts.Index)
	}
	return out, nil
}

// foreignKeyDef resolves a foreign_key option on column to a constraint.
func foreignKeyDef(table, column string, opt *ast.ForeignKeyOption) (*ast.ForeignKeyDef, error) {
	target, ok := opt.Target(column)
	if !ok {
		return nil, alerr.New(alerr.ErrUnresolvedTarget, "cannot infer the referenced table").
			WithTable(table).
			WithColumn(column).
			WithHelp("name the column <table>_id or set foreign_key: {references: <table>}")
	}
	name := opt.Name
	if name == "" {
		name = naming.ConstraintName(table, column)
	}
	return &ast.ForeignKeyDef{
		Name:       name,
		Columns:    []string{column},
		RefTable:   target,
		RefColumns: []string{opt.TargetColumn()},
		OnDelete:   opt.OnDelete,
		OnUpdate:   opt.OnUpdate,
	}, nil
}

// indexDef names an index option. Plan names the indexes it creates; an
// index the author asked for without a name gets the column index name.
func (s *session) indexDef(table string, columns []string, opt *ast.IndexOption) *ast.CreateIndex {
	name := opt.Name
	if name == "" {
		name = naming.ColumnIndexName(table, columns...)
	}
	return &ast.CreateIndex{
		TableRef: ast.TableRef{Table_: table},
		Name:     name,
		Columns:  columns,
		Unique:   opt.Unique,
	}
}

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

func (s *session) createTable(ctx context.Context, op *ast.CreateTable) error {
	create := *op
	create.Columns = nil
	if op.ID && !slices.ContainsFunc(op.Columns, func(c *ast.ColumnDef) bool { return c.Name == ast.DefaultPrimaryKey }) {
		create.Columns = append(create.Columns, &ast.ColumnDef{
			Name:       ast.DefaultPrimaryKey,
			Type:       "primary_key",
			PrimaryKey: true,
		})
	}

	var (
		events []*hooks.ColumnEvent
		fks    []*ast.ForeignKeyDef
		idxs   []*ast.CreateIndex
	)
	collect := func(ev *hooks.ColumnEvent) error {
		events = append(events, ev)
		l, err := s.lower(op.Name, ev.Request.Columns, ev.Request.Options)
		if err != nil {
			return err
		}
		if l.fk != nil {
			fks = append(fks, l.fk)
		}
		if l.idx != nil {
			idxs = append(idxs, l.idx)
		}
		return nil
	}

	for _, col := range op.Columns {
		create.Columns = append(create.Columns, col)
		ev := s.before(op.Name, []string{col.Name}, &col.Options, autofk.KindCreate, false, op.Settings)
		if err := collect(ev); err != nil {
			return err
		}
	}
	for _, ref := range op.References {
		create.Columns = append(create.Columns, ref.ColumnDefs()...)
		ev := s.before(op.Name, ref.Columns(), &ref.Options, autofk.KindReference, ref.Polymorphic, op.Settings)
		if err := collect(ev); err != nil {
			return err
		}
	}

	stmt, err := s.dialect.CreateTableSQL(&create, fks)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}
	if s.planned != nil {
		s.planned.createTable(op.Name)
		for _, fk := range fks {
			s.planned.addForeignKey(op.Name, fk)
		}
	}

	for _, idx := range idxs {
		if err := s.createIndex(ctx, idx); err != nil {
			return err
		}
	}
	return s.after(ctx, events...)
}

func (s *session) dropTable(ctx context.Context, op *ast.DropTable) error {
	stmt, err := s.dialect.DropTableSQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}
	if s.planned != nil {
		s.planned.dropTable(op.Name)
	}
	return nil
}

// renameTable renames the table, then lets the hooks rename its
// auto-created indexes. The new name stays in the old table's schema.
func (s *session) renameTable(ctx context.Context, op *ast.RenameTable) error {
	stmt, err := s.dialect.RenameTableSQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}

	newName := op.NewName
	if schema, _ := strutil.SplitQualified(op.OldName); schema != "" && !strings.Contains(newName, ".") {
		newName = schema + "." + newName
	}
	if s.planned != nil {
		s.planned.renameTable(op.OldName, newName)
	}

	return s.hooks.AfterRename(ctx, &hooks.RenameEvent{
		OldName: op.OldName,
		NewName: newName,
		Catalog: s.catalog,
		Host:    s,
	})
}

// -----------------------------------------------------------------------------
// Columns
// -----------------------------------------------------------------------------

func (s *session) addColumn(ctx context.Context, op *ast.AddColumn) error {
	ev := s.before(op.Table(), []string{op.Column.Name}, &op.Column.Options, autofk.KindCreate, false, op.Settings)
	l, err := s.lower(op.Table(), ev.Request.Columns, ev.Request.Options)
	if err != nil {
		return err
	}
	if err := s.addColumns(ctx, op.Table(), []*ast.ColumnDef{op.Column}, l); err != nil {
		return err
	}
	return s.after(ctx, ev)
}

func (s *session) addReference(ctx context.Context, op *ast.AddReference) error {
	ref := op.Reference
	ev := s.before(op.Table(), ref.Columns(), &ref.Options, autofk.KindReference, ref.Polymorphic, op.Settings)
	l, err := s.lower(op.Table(), ev.Request.Columns, ev.Request.Options)
	if err != nil {
		return err
	}
	if err := s.addColumns(ctx, op.Table(), ref.ColumnDefs(), l); err != nil {
		return err
	}
	return s.after(ctx, ev)
}

// addColumns adds cols to table with the lowered foreign key on the first
// column. Backends that cannot add constraints to an existing table get the
// reference inline.
func (s *session) addColumns(ctx context.Context, table string, cols []*ast.ColumnDef, l lowered) error {
	alter := s.caps().AlterConstraints
	for i, col := range cols {
		var inline *ast.ForeignKeyDef
		if i == 0 && !alter {
			inline = l.fk
		}
		stmt, err := s.dialect.AddColumnSQL(&ast.AddColumn{TableRef: ast.TableRef{Table_: table}, Column: col}, inline)
		if err != nil {
			return err
		}
		if err := s.run(ctx, stmt); err != nil {
			return err
		}
	}

	if l.fk != nil {
		if alter {
			if err := s.addForeignKey(ctx, &ast.AddForeignKey{TableRef: ast.TableRef{Table_: table}, ForeignKeyDef: *l.fk}); err != nil {
				return err
			}
		} else if s.planned != nil {
			s.planned.addForeignKey(table, l.fk)
		}
	}
	if l.idx != nil {
		return s.createIndex(ctx, l.idx)
	}
	return nil
}

// changeColumn applies type and nullability changes, then brings the
// column's foreign key and index in line with its options.
func (s *session) changeColumn(ctx context.Context, op *ast.ChangeColumn) error {
	table, column := op.Table(), op.Column.Name
	ev := s.before(table, []string{column}, &op.Column.Options, autofk.KindChange, false, op.Settings)

	statements, err := s.dialect.ChangeColumnSQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, statements...); err != nil {
		return err
	}

	opts := ev.Request.Options
	if opts.ForeignKey != nil {
		if err := s.reconcileForeignKey(ctx, table, column, opts.ForeignKey); err != nil {
			return err
		}
	}
	if opts.HasIndex() {
		idx := s.indexDef(table, []string{column}, opts.Index)
		exists, err := s.indexExists(ctx, table, idx.Name)
		if err != nil {
			return err
		}
		if !exists {
			if err := s.createIndex(ctx, idx); err != nil {
				return err
			}
		}
	}
	return s.after(ctx, ev)
}

// reconcileForeignKey makes the live foreign keys on column match opt.
// A matching constraint is kept; any other is dropped.
func (s *session) reconcileForeignKey(ctx context.Context, table, column string, opt *ast.ForeignKeyOption) error {
	existing, err := s.columnForeignKeys(ctx, table, column)
	if err != nil {
		return err
	}

	var want *ast.ForeignKeyDef
	if opt.Enabled {
		if want, err = foreignKeyDef(table, column, opt); err != nil {
			return err
		}
	}

	var stale []*ast.ForeignKeyDef
	keep := false
	for _, fk := range existing {
		if want != nil && sameReference(fk, want) {
			keep = true
			continue
		}
		stale = append(stale, fk)
	}
	add := want != nil && !keep
	if len(stale) == 0 && !add {
		return nil
	}

	if !s.caps().AlterConstraints {
		slog.Warn("backend cannot change the foreign key of an existing column, skipping",
			"table", table,
			"column", column,
			"dialect", s.dialect.Name())
		return nil
	}

	for _, fk := range stale {
		if err := s.dropForeignKey(ctx, &ast.DropForeignKey{TableRef: ast.TableRef{Table_: table}, Name: fk.Name}); err != nil {
			return err
		}
	}
	if add {
		return s.addForeignKey(ctx, &ast.AddForeignKey{TableRef: ast.TableRef{Table_: table}, ForeignKeyDef: *want})
	}
	return nil
}

// sameReference reports whether a live constraint already points where want
// does. Catalogs report tables in the current schema unqualified.
func sameReference(live, want *ast.ForeignKeyDef) bool {
	_, liveTable := strutil.SplitQualified(live.RefTable)
	_, wantTable := strutil.SplitQualified(want.RefTable)
	return liveTable == wantTable && slices.Equal(live.RefColumns, want.RefColumns)
}

// -----------------------------------------------------------------------------
// Indexes and foreign keys
// -----------------------------------------------------------------------------

func (s *session) createIndex(ctx context.Context, op *ast.CreateIndex) error {
	if op.IfNotExists {
		exists, err := s.indexExists(ctx, op.Table(), op.Name)
		if err != nil {
			return err
		}
		if exists {
			slog.Debug("index already exists", "table", op.Table(), "index", op.Name)
			return nil
		}
	}
	s.checkNameLength(op.Table(), op.Name)

	stmt, err := s.dialect.CreateIndexSQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}
	if s.planned != nil {
		s.planned.addIndex(op.Table(), &ast.IndexDef{Name: op.Name, Columns: op.Columns, Unique: op.Unique})
	}
	return nil
}

func (s *session) addForeignKey(ctx context.Context, op *ast.AddForeignKey) error {
	stmt, err := s.dialect.AddForeignKeySQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}
	if s.planned != nil {
		fk := op.ForeignKeyDef
		s.planned.addForeignKey(op.Table(), &fk)
	}
	return nil
}

// dropForeignKey drops a constraint. With op.IfExists set, a constraint the
// catalog does not list is a no-op.
func (s *session) dropForeignKey(ctx context.Context, op *ast.DropForeignKey) error {
	if op.IfExists {
		fks, err := s.catalog.ForeignKeys(ctx, op.Table())
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(fks, func(fk *ast.ForeignKeyDef) bool { return fk.Name == op.Name }) {
			slog.Debug("foreign key already absent", "table", op.Table(), "constraint", op.Name)
			return nil
		}
	}

	stmt, err := s.dialect.DropForeignKeySQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}
	if s.planned != nil {
		s.planned.dropForeignKey(op.Table(), op.Name)
	}
	return nil
}
