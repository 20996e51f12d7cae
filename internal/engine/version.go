package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/dialect"
)

// Version tracking table schema:
// CREATE TABLE autofk_migrations (
//     revision     VARCHAR(191) PRIMARY KEY,
//     name         VARCHAR(255) NOT NULL,
//     checksum     VARCHAR(64),
//     applied_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//     exec_time_ms INTEGER
// )
//
// VARCHAR(191) keeps the primary key within InnoDB's index limit under utf8mb4.

const (
	// MigrationTableName is the name of the version tracking table.
	MigrationTableName = "autofk_migrations"
)

// AppliedMigration represents a migration that has been applied to the database.
type AppliedMigration struct {
	Revision   string
	Name       string
	AppliedAt  time.Time
	Checksum   string
	ExecTimeMs int
}

// execer runs a statement on a *sql.DB or *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// VersionManager handles version tracking for migrations.
// It manages the autofk_migrations table that tracks which migrations have been applied.
type VersionManager struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewVersionManager creates a new VersionManager.
func NewVersionManager(db *sql.DB, d dialect.Dialect) *VersionManager {
	return &VersionManager{
		db:      db,
		dialect: d,
	}
}

// EnsureTable creates the migration tracking table if it doesn't exist.
func (v *VersionManager) EnsureTable(ctx context.Context) error {
	query := v.createTableSQL()
	if _, err := v.db.ExecContext(ctx, query); err != nil {
		return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to create migrations table").
			WithSQL(query)
	}
	return nil
}

// createTableSQL returns the CREATE TABLE statement for the migrations table.
func (v *VersionManager) createTableSQL() string {
	quotedTable := v.dialect.QuoteIdent(MigrationTableName)

	switch v.dialect.Name() {
	case "sqlite":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    revision     TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    checksum     TEXT,
    applied_at   TEXT NOT NULL DEFAULT (datetime('now')),
    exec_time_ms INTEGER
)`, quotedTable)

	case "postgres":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    revision     VARCHAR(191) PRIMARY KEY,
    name         VARCHAR(255) NOT NULL,
    checksum     VARCHAR(64),
    applied_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    exec_time_ms INTEGER
)`, quotedTable)

	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    revision     VARCHAR(191) PRIMARY KEY,
    name         VARCHAR(255) NOT NULL,
    checksum     VARCHAR(64),
    applied_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    exec_time_ms INTEGER
)`, quotedTable)
	}
}

// GetApplied returns all applied migrations ordered by revision.
func (v *VersionManager) GetApplied(ctx context.Context) ([]AppliedMigration, error) {
	query := fmt.Sprintf(
		"SELECT revision, name, applied_at, checksum, exec_time_ms FROM %s ORDER BY revision ASC",
		v.dialect.QuoteIdent(MigrationTableName),
	)

	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to query applied migrations").
			WithSQL(query)
	}
	defer rows.Close()

	var migrations []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		var checksum sql.NullString
		var execTime sql.NullInt64
		var appliedAt any

		if err := rows.Scan(&m.Revision, &m.Name, &appliedAt, &checksum, &execTime); err != nil {
			return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to scan migration row")
		}

		m.AppliedAt = parseAppliedAt(appliedAt)
		m.Checksum = checksum.String
		m.ExecTimeMs = int(execTime.Int64)

		migrations = append(migrations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "error iterating migration rows")
	}

	return migrations, nil
}

// parseAppliedAt converts the database timestamp to time.Time. Drivers that
// do not parse timestamps (SQLite, MySQL without parseTime) return text.
// Unparseable values yield the zero time.
func parseAppliedAt(val any) time.Time {
	switch t := val.(type) {
	case time.Time:
		return t
	case string:
		formats := []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
			"2006-01-02T15:04:05",
		}
		for _, format := range formats {
			if parsed, err := time.Parse(format, t); err == nil {
				return parsed
			}
		}
		return time.Time{}
	case []byte:
		return parseAppliedAt(string(t))
	default:
		return time.Time{}
	}
}

// RecordApplied records that a migration has been applied. x is the
// migration's transaction when the backend has transactional DDL, so the
// record commits together with the schema change.
func (v *VersionManager) RecordApplied(ctx context.Context, x execer, m Migration, execTime time.Duration) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (revision, name, checksum, exec_time_ms) VALUES (%s, %s, %s, %s)",
		v.dialect.QuoteIdent(MigrationTableName),
		v.dialect.Placeholder(1), v.dialect.Placeholder(2),
		v.dialect.Placeholder(3), v.dialect.Placeholder(4),
	)

	if x == nil {
		x = v.db
	}
	if _, err := x.ExecContext(ctx, query, m.Revision, m.Name, m.Checksum, int(execTime.Milliseconds())); err != nil {
		return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to record applied migration").
			With("revision", m.Revision).
			WithSQL(query)
	}
	return nil
}
