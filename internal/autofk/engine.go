// Package autofk decides when a column gets a foreign key and a supporting
// index by convention, and which auto-created indexes must be removed or
// renamed as the schema evolves.
//
// The engine is pure: Plan rewrites a request's options in memory, and
// Reconcile and PlanRename only return instructions. Executing them is the
// caller's job (see the hooks package).
//
// Decisions always yield to the migration author. An explicitly declared
// foreign_key or index option is never overridden, and a cleanup never
// touches an index whose name the convention did not produce.
package autofk

import (
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/config"
	"github.com/hlop3z/autofk/internal/dialect"
	"github.com/hlop3z/autofk/internal/naming"
)

// Kind is the kind of column operation a request comes from.
type Kind int

const (
	// KindCreate is a column added by create_table or add_column.
	KindCreate Kind = iota
	// KindChange is a column modified by change_column.
	KindChange
	// KindReference is a column added through a reference declaration.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindChange:
		return "change"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Request is one column mutation as seen by the engine.
type Request struct {
	// Table is the target table, possibly schema-qualified.
	Table string
	// Columns holds the column name, or the id and type columns of a
	// polymorphic reference, id first.
	Columns []string
	// Options are the declared options. Plan rewrites them in place.
	Options *ast.ColumnOptions
	Kind    Kind
	// Polymorphic is set for polymorphic reference declarations.
	Polymorphic bool
}

// Column returns the first column of the request.
func (r *Request) Column() string {
	if len(r.Columns) == 0 {
		return ""
	}
	return r.Columns[0]
}

// Cleanup instructs the caller to drop an auto-created index, tolerating its
// absence.
type Cleanup struct {
	Table     string
	IndexName string
	Column    string
	IfExists  bool
}

// IndexRename instructs the caller to rename an auto-created index after its
// table was renamed.
type IndexRename struct {
	Table   string // the table's new name
	OldName string
	NewName string
	Columns []string
	Unique  bool
}

// Engine makes the foreign-key and index decisions for one backend.
type Engine struct {
	caps   dialect.Capabilities
	policy naming.Policy
}

// New creates an engine for a backend's capabilities. The policy bounds the
// length of generated index names; its zero value leaves them unbounded.
func New(caps dialect.Capabilities, policy naming.Policy) *Engine {
	return &Engine{caps: caps, policy: policy}
}

// ForDialect creates an engine for d. With cfg.TruncateIndexNames set,
// generated index names are bounded by the backend's identifier limit.
func ForDialect(d dialect.Dialect, cfg config.Config) *Engine {
	caps := d.Capabilities()
	var policy naming.Policy
	if cfg.TruncateIndexNames {
		policy.MaxLength = caps.MaxIdentifierLength
	}
	return New(caps, policy)
}

// Capabilities returns the backend capabilities the engine was built with.
func (e *Engine) Capabilities() dialect.Capabilities {
	return e.caps
}

// IndexName returns the auto-index name for columns on table under the
// engine's naming policy.
func (e *Engine) IndexName(table string, columns ...string) string {
	return e.policy.IndexName(table, columns...)
}

// Plan decides, for one request and an effective configuration, whether to
// attach a foreign key and an index, and records the decision in
// req.Options. It returns req. Planning an already planned request changes
// nothing.
func (e *Engine) Plan(req *Request, cfg config.Config) *Request {
	if req.Options == nil {
		req.Options = &ast.ColumnOptions{}
	}
	opts := req.Options

	if e.attachForeignKey(req, cfg) {
		opts.ForeignKey = &ast.ForeignKeyOption{Enabled: true, Auto: true}
	}

	if e.attachIndex(req, cfg) {
		opts.Index = &ast.IndexOption{
			Enabled: true,
			Name:    e.policy.IndexName(req.Table, req.Columns...),
		}
	}

	return req
}

// attachForeignKey reports whether the convention adds a foreign key.
// The order of the checks matters: explicit intent first, then
// configuration, then the polymorphic exclusion, then the convention.
func (e *Engine) attachForeignKey(req *Request, cfg config.Config) bool {
	if req.Options.ForeignKey != nil {
		return false
	}
	if !cfg.AutoCreateForeignKey {
		return false
	}
	if req.Polymorphic {
		return false
	}
	if req.Kind == KindReference {
		return true
	}
	return naming.IsReferenceColumn(req.Column())
}

// attachIndex reports whether the convention adds an index. Indexes are only
// ever automatic for a foreign key.
func (e *Engine) attachIndex(req *Request, cfg config.Config) bool {
	if e.caps.ManagesOwnFKIndex {
		return false
	}
	if req.Options.Index != nil {
		return false
	}
	if !req.Options.HasForeignKey() {
		return false
	}
	return cfg.AutoCreateIndex
}

// Reconcile returns the cleanup a change_column needs after it ran: when the
// change explicitly disabled the foreign key, the index the convention would
// have created for the column is dropped if it exists. It returns nil when
// nothing needs to be done.
func (e *Engine) Reconcile(req *Request) *Cleanup {
	if e.caps.ManagesOwnFKIndex {
		return nil
	}
	if req.Kind != KindChange {
		return nil
	}
	if req.Options == nil || req.Options.ForeignKey == nil || req.Options.ForeignKey.Enabled {
		return nil
	}
	return &Cleanup{
		Table:     req.Table,
		IndexName: e.policy.IndexName(req.Table, req.Columns...),
		Column:    req.Column(),
		IfExists:  true,
	}
}

// PlanRename returns the index renames a table rename needs. fks and idxs
// are the foreign keys and indexes of the renamed table. An index is renamed
// only when its name equals, exactly, the name the convention would have
// given a foreign key's index under the old table name; its new name is
// derived from the index's own columns.
func (e *Engine) PlanRename(oldName, newName string, fks []*ast.ForeignKeyDef, idxs []*ast.IndexDef) []IndexRename {
	if oldName == newName {
		return nil
	}

	byName := make(map[string]*ast.IndexDef, len(idxs))
	for _, idx := range idxs {
		byName[idx.Name] = idx
	}

	var renames []IndexRename
	done := make(map[string]bool)
	for _, fk := range fks {
		expected := e.policy.IndexName(oldName, fk.Columns...)
		idx, ok := byName[expected]
		if !ok || done[expected] {
			continue
		}
		done[expected] = true

		newIndex := e.policy.IndexName(newName, idx.Columns...)
		if newIndex == idx.Name {
			continue
		}
		renames = append(renames, IndexRename{
			Table:   newName,
			OldName: idx.Name,
			NewName: newIndex,
			Columns: idx.Columns,
			Unique:  idx.Unique,
		})
	}
	return renames
}
