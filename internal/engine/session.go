package engine

import (
	"context"
	"log/slog"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/dialect"
	"github.com/hlop3z/autofk/internal/hooks"
	"github.com/hlop3z/autofk/internal/introspect"
	"github.com/hlop3z/autofk/internal/naming"
)

// session lowers the operations of one migration to SQL and runs them.
// It is the hooks' Host: index removals and renames the hooks decide on go
// through the same statement stream as the migration's own DDL.
type session struct {
	dialect dialect.Dialect
	hooks   *hooks.Hooks

	// exec runs statements; nil when planning.
	exec execer
	// catalog reads foreign keys and indexes as the session sees them.
	catalog hooks.Catalog
	// planned records the session's own changes when planning.
	planned *plannedCatalog

	statements []string
}

var _ hooks.Host = (*session)(nil)

// newApplySession runs statements on x and reads the catalog through q,
// which must see x's uncommitted changes.
func newApplySession(d dialect.Dialect, h *hooks.Hooks, x execer, q introspect.Queryer) (*session, error) {
	in, err := introspect.New(q, d)
	if err != nil {
		return nil, err
	}
	return &session{dialect: d, hooks: h, exec: x, catalog: in}, nil
}

// newPlanSession only collects statements. live, if not nil, is the catalog
// of the database the plan is for.
func newPlanSession(d dialect.Dialect, h *hooks.Hooks, live hooks.Catalog) *session {
	planned := newPlannedCatalog(live)
	return &session{dialect: d, hooks: h, catalog: planned, planned: planned}
}

func (s *session) caps() dialect.Capabilities {
	return s.dialect.Capabilities()
}

// run records and, unless planning, executes statements in order.
func (s *session) run(ctx context.Context, statements ...string) error {
	for _, stmt := range statements {
		s.statements = append(s.statements, stmt)
		if s.exec == nil {
			continue
		}
		if _, err := s.exec.ExecContext(ctx, stmt); err != nil {
			return alerr.WrapSQL(err, "execute statement", "").WithSQL(stmt)
		}
	}
	return nil
}

// RemoveIndex drops an index. With op.IfExists set on a backend without
// DROP INDEX IF EXISTS, the catalog is checked first and a missing index is
// a no-op.
func (s *session) RemoveIndex(ctx context.Context, op *ast.DropIndex) error {
	if op.IfExists && !s.caps().DropIndexIfExists {
		exists, err := s.indexExists(ctx, op.Table(), op.Name)
		if err != nil {
			return err
		}
		if !exists {
			slog.Debug("index already absent", "table", op.Table(), "index", op.Name)
			return nil
		}
	}

	stmt, err := s.dialect.DropIndexSQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, stmt); err != nil {
		return err
	}
	if s.planned != nil {
		s.planned.dropIndex(op.Table(), op.Name)
	}
	return nil
}

// RenameIndex renames an index, recreating it on backends without ALTER INDEX.
func (s *session) RenameIndex(ctx context.Context, op *ast.RenameIndex) error {
	statements, err := s.dialect.RenameIndexSQL(op)
	if err != nil {
		return err
	}
	if err := s.run(ctx, statements...); err != nil {
		return err
	}
	if s.planned != nil {
		return s.planned.renameIndex(ctx, op.Table(), op.OldName, op.NewName)
	}
	return nil
}

func (s *session) indexExists(ctx context.Context, table, name string) (bool, error) {
	return introspect.IndexExists(ctx, s.catalog, table, name)
}

// columnForeignKeys returns the single-column foreign keys on column.
func (s *session) columnForeignKeys(ctx context.Context, table, column string) ([]*ast.ForeignKeyDef, error) {
	fks, err := s.catalog.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	var out []*ast.ForeignKeyDef
	for _, fk := range fks {
		if len(fk.Columns) == 1 && fk.Columns[0] == column {
			out = append(out, fk)
		}
	}
	return out, nil
}

// checkNameLength warns about a generated name the backend will reject or
// truncate. Truncation is opt-in through truncate_index_names.
func (s *session) checkNameLength(table, name string) {
	if limit := s.caps().MaxIdentifierLength; naming.Exceeds(name, limit) {
		slog.Warn("index name exceeds the backend identifier limit",
			"table", table,
			"index", name,
			"length", len(name),
			"limit", limit,
			"dialect", s.dialect.Name())
	}
}
