package engine

import (
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/config"
)

// Migration represents a single migration with its operations.
type Migration struct {
	// Revision is the unique identifier (e.g., "001", "20240101120000").
	Revision string

	// Name is the human-readable name (e.g., "add_comments").
	Name string

	// Path is the file the migration was loaded from, if any.
	Path string

	// Checksum is the SHA256 hash of the migration content for integrity checking.
	Checksum string

	// Settings is the foreign_keys override for every operation of the
	// migration. Operation-local settings take precedence.
	Settings *config.Override

	// Operations are applied in order.
	Operations []ast.Operation
}

// PlanStatus represents the status of a migration.
type PlanStatus int

const (
	// StatusPending means the migration has not been applied.
	StatusPending PlanStatus = iota
	// StatusApplied means the migration has been applied.
	StatusApplied
	// StatusModified means the migration checksum doesn't match.
	StatusModified
	// StatusMissing means the migration is recorded but its file is gone.
	StatusMissing
)

// String returns the string representation of the status.
func (s PlanStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApplied:
		return "applied"
	case StatusModified:
		return "modified"
	case StatusMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// MigrationStatus provides status information about a migration.
type MigrationStatus struct {
	Revision  string
	Name      string
	Status    PlanStatus
	AppliedAt string // empty if not applied
	Checksum  string
}
