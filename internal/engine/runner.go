// Package engine runs migrations: it lowers their operations to SQL through a
// dialect, passes every column change through the foreign-key hooks, and
// records applied migrations in the autofk_migrations table.
package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/autofk"
	"github.com/hlop3z/autofk/internal/config"
	"github.com/hlop3z/autofk/internal/dialect"
	"github.com/hlop3z/autofk/internal/hooks"
	"github.com/hlop3z/autofk/internal/introspect"
)

// Runner executes migrations against a database.
type Runner struct {
	db       *sql.DB
	dialect  dialect.Dialect
	hooks    *hooks.Hooks
	versions *VersionManager
}

// Planned is a migration with the SQL it would run.
type Planned struct {
	Migration  Migration
	Statements []string
}

// NewRunner creates a new migration runner. cfg is the base foreign-key
// configuration; migrations and operations override it locally.
// db may be nil for a runner that only plans.
// Returns nil if the dialect is nil.
func NewRunner(db *sql.DB, d dialect.Dialect, cfg config.Config) *Runner {
	if d == nil {
		return nil
	}
	return &Runner{
		db:       db,
		dialect:  d,
		hooks:    hooks.New(autofk.ForDialect(d, cfg), config.NewScope(cfg)),
		versions: NewVersionManager(db, d),
	}
}

// Hooks returns the foreign-key hooks the runner calls.
func (r *Runner) Hooks() *hooks.Hooks {
	return r.hooks
}

// VersionManager returns the version manager for direct access.
func (r *Runner) VersionManager() *VersionManager {
	return r.versions
}

func (r *Runner) requireDB() error {
	if r.db == nil {
		return alerr.New(alerr.ErrSQLConnection, "no database connection").
			WithHelp("set --database-url or DATABASE_URL")
	}
	return nil
}

// Apply runs the migrations of all that are not applied yet, in order, and
// returns the ones it ran. Each migration is atomic on backends with
// transactional DDL.
func (r *Runner) Apply(ctx context.Context, all []Migration) ([]Migration, error) {
	if err := r.requireDB(); err != nil {
		return nil, err
	}
	if err := r.versions.EnsureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.versions.GetApplied(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := Pending(all, applied)
	if err != nil {
		return nil, err
	}

	for i, m := range pending {
		if err := r.runOne(ctx, m); err != nil {
			return pending[:i], alerr.Wrap(alerr.ErrMigrationFailed, err, "migration failed").
				With("revision", m.Revision).
				With("name", m.Name)
		}
	}
	return pending, nil
}

// DryRun returns the SQL the pending migrations would run, without running
// it. With a database, already applied migrations are skipped and the live
// catalog informs the plan; without one, every migration is planned against
// an empty database.
func (r *Runner) DryRun(ctx context.Context, all []Migration) ([]Planned, error) {
	pending := all
	var live hooks.Catalog

	if r.db != nil {
		in, err := introspect.New(r.db, r.dialect)
		if err != nil {
			return nil, err
		}
		live = in
		applied, err := r.applied(ctx, in)
		if err != nil {
			return nil, err
		}
		if pending, err = Pending(all, applied); err != nil {
			return nil, err
		}
	}

	s := newPlanSession(r.dialect, r.hooks, live)
	plans := make([]Planned, 0, len(pending))
	for _, m := range pending {
		start := len(s.statements)
		if err := r.runOperations(ctx, s, m); err != nil {
			return nil, alerr.Wrap(alerr.ErrMigrationFailed, err, "migration failed").
				With("revision", m.Revision).
				With("name", m.Name)
		}
		plans = append(plans, Planned{Migration: m, Statements: s.statements[start:]})
	}
	return plans, nil
}

// Status returns the status of all migrations. It does not create the
// version table.
func (r *Runner) Status(ctx context.Context, all []Migration) ([]MigrationStatus, error) {
	if err := r.requireDB(); err != nil {
		return nil, err
	}
	in, err := introspect.New(r.db, r.dialect)
	if err != nil {
		return nil, err
	}
	applied, err := r.applied(ctx, in)
	if err != nil {
		return nil, err
	}
	return GetStatus(all, applied), nil
}

// applied reads the version table, treating a missing table as empty.
func (r *Runner) applied(ctx context.Context, in introspect.Introspector) ([]AppliedMigration, error) {
	exists, err := in.TableExists(ctx, MigrationTableName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return r.versions.GetApplied(ctx)
}

// runOne executes a single migration and records it.
func (r *Runner) runOne(ctx context.Context, m Migration) error {
	start := time.Now()

	var statements int
	var err error
	if r.dialect.Capabilities().TransactionalDDL {
		statements, err = r.runInTransaction(ctx, m, start)
	} else {
		statements, err = r.runWithoutTransaction(ctx, m, start)
	}
	if err != nil {
		return err
	}

	slog.Info("applied migration",
		"revision", m.Revision,
		"name", m.Name,
		"statements", statements,
		"duration", time.Since(start))
	return nil
}

// runInTransaction executes a migration within a transaction.
// Used for PostgreSQL and SQLite which support transactional DDL.
// The entire migration is atomic - all statements succeed or all fail.
func (r *Runner) runInTransaction(ctx context.Context, m Migration, start time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, alerr.Wrapf(alerr.ErrSQLTransaction, err, "failed to begin transaction for %s", m.Revision)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := newApplySession(r.dialect, r.hooks, tx, tx)
	if err != nil {
		return 0, err
	}
	if err := r.runOperations(ctx, s, m); err != nil {
		return 0, err
	}
	if err := r.versions.RecordApplied(ctx, tx, m, time.Since(start)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, alerr.Wrapf(alerr.ErrSQLTransaction, err, "failed to commit transaction for %s", m.Revision)
	}
	committed = true

	return len(s.statements), nil
}

// runWithoutTransaction executes a migration without a transaction.
// Used for databases that don't support transactional DDL. A failure leaves
// the statements before it applied.
func (r *Runner) runWithoutTransaction(ctx context.Context, m Migration, start time.Time) (int, error) {
	s, err := newApplySession(r.dialect, r.hooks, r.db, r.db)
	if err != nil {
		return 0, err
	}
	if err := r.runOperations(ctx, s, m); err != nil {
		if len(s.statements) > 1 {
			slog.Warn("migration failed part way; earlier statements stay applied",
				"revision", m.Revision,
				"dialect", r.dialect.Name())
		}
		return 0, err
	}
	if err := r.versions.RecordApplied(ctx, nil, m, time.Since(start)); err != nil {
		return 0, err
	}
	return len(s.statements), nil
}

// runOperations lowers m's operations in order with m's settings in scope.
func (r *Runner) runOperations(ctx context.Context, s *session, m Migration) error {
	return r.hooks.Scope().With(m.Settings, func() error {
		for _, op := range m.Operations {
			if err := s.apply(ctx, op); err != nil {
				return err
			}
		}
		return nil
	})
}
