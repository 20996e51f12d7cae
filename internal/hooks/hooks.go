// Package hooks connects the decision engine to a migration pipeline.
//
// The pipeline calls Before while planning a column operation, After once the
// operation's DDL ran, and AfterRename once a table was renamed. The hooks
// resolve the effective configuration, ask the engine what to do, and route
// any follow-up work back to the pipeline through its Host.
package hooks

import (
	"context"
	"log/slog"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/autofk"
	"github.com/hlop3z/autofk/internal/config"
)

// Host executes the follow-up operations the hooks decide on.
type Host interface {
	// RemoveIndex drops an index. With op.IfExists set, a missing index is
	// not an error.
	RemoveIndex(ctx context.Context, op *ast.DropIndex) error
	// RenameIndex renames an index of op.Table().
	RenameIndex(ctx context.Context, op *ast.RenameIndex) error
}

// Catalog reads the live foreign keys and indexes of a table.
type Catalog interface {
	ForeignKeys(ctx context.Context, table string) ([]*ast.ForeignKeyDef, error)
	Indexes(ctx context.Context, table string) ([]*ast.IndexDef, error)
}

// ColumnEvent is one column operation passing through the pipeline.
type ColumnEvent struct {
	Request autofk.Request
	// Override is the operation-local foreign_keys setting, if any.
	Override *config.Override
	// Host is used by After to issue the cleanup.
	Host Host
}

// RenameEvent is a completed table rename.
type RenameEvent struct {
	OldName string
	NewName string
	// Catalog is queried for the renamed table under its new name.
	Catalog Catalog
	Host    Host
}

// Hooks dispatches pipeline events to an engine.
type Hooks struct {
	engine *autofk.Engine
	scope  *config.Scope
}

// New creates hooks over engine. Configuration is resolved against scope;
// a nil scope means the system defaults.
func New(engine *autofk.Engine, scope *config.Scope) *Hooks {
	if scope == nil {
		scope = config.NewScope(config.Defaults())
	}
	return &Hooks{engine: engine, scope: scope}
}

// Scope returns the configuration scope the hooks resolve against.
func (h *Hooks) Scope() *config.Scope {
	return h.scope
}

// Engine returns the decision engine.
func (h *Hooks) Engine() *autofk.Engine {
	return h.engine
}

// Before plans the event's column options in place and returns the
// configuration the decision was made with.
func (h *Hooks) Before(ev *ColumnEvent) config.Config {
	cfg := h.scope.Resolve(ev.Override)
	h.engine.Plan(&ev.Request, cfg)

	opts := ev.Request.Options
	slog.Debug("planned column",
		"table", ev.Request.Table,
		"column", ev.Request.Column(),
		"kind", ev.Request.Kind.String(),
		"foreign_key", opts.HasForeignKey(),
		"index", opts.HasIndex())
	return cfg
}

// After issues the cleanup the engine asks for, if any.
func (h *Hooks) After(ctx context.Context, ev *ColumnEvent) error {
	cleanup := h.engine.Reconcile(&ev.Request)
	if cleanup == nil {
		return nil
	}
	if ev.Host == nil {
		return alerr.New(alerr.EInternalError, "no host to remove the auto-created index").
			WithTable(cleanup.Table).
			WithColumn(cleanup.Column)
	}

	slog.Debug("removing auto-created index", "table", cleanup.Table, "index", cleanup.IndexName)
	return ev.Host.RemoveIndex(ctx, &ast.DropIndex{
		TableRef: ast.TableRef{Table_: cleanup.Table},
		Name:     cleanup.IndexName,
		Column:   cleanup.Column,
		IfExists: cleanup.IfExists,
	})
}

// AfterRename renames the auto-created indexes of a renamed table.
func (h *Hooks) AfterRename(ctx context.Context, ev *RenameEvent) error {
	if ev.Catalog == nil || ev.Host == nil {
		return alerr.New(alerr.EInternalError, "rename hook needs a catalog and a host").
			WithTable(ev.NewName)
	}

	fks, err := ev.Catalog.ForeignKeys(ctx, ev.NewName)
	if err != nil {
		return err
	}
	if len(fks) == 0 {
		return nil
	}
	idxs, err := ev.Catalog.Indexes(ctx, ev.NewName)
	if err != nil {
		return err
	}

	for _, r := range h.engine.PlanRename(ev.OldName, ev.NewName, fks, idxs) {
		slog.Debug("renaming auto-created index", "table", r.Table, "from", r.OldName, "to", r.NewName)
		if err := ev.Host.RenameIndex(ctx, &ast.RenameIndex{
			TableRef: ast.TableRef{Table_: r.Table},
			OldName:  r.OldName,
			NewName:  r.NewName,
			Columns:  r.Columns,
			Unique:   r.Unique,
		}); err != nil {
			return err
		}
	}
	return nil
}
