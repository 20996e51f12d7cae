package engine

import (
	"slices"

	"github.com/hlop3z/autofk/internal/alerr"
)

// Pending returns the migrations of all that are not recorded in applied, in
// the order given. A recorded migration whose file changed since is an error.
func Pending(all []Migration, applied []AppliedMigration) ([]Migration, error) {
	if err := verifyChecksums(all, applied); err != nil {
		return nil, err
	}

	done := setOf(revisions(applied))
	pending := make([]Migration, 0, len(all))
	for _, m := range all {
		if _, ok := done[m.Revision]; !ok {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// verifyChecksums checks that all applied migrations still match their recorded checksums.
func verifyChecksums(all []Migration, applied []AppliedMigration) error {
	recorded := keyBy(applied, func(a AppliedMigration) string { return a.Revision })
	for _, m := range all {
		a, ok := recorded[m.Revision]
		if !ok || a.Checksum == "" || m.Checksum == "" {
			continue
		}
		if a.Checksum != m.Checksum {
			return alerr.New(alerr.ErrMigrationChecksum, "migration file was modified after being applied").
				With("revision", m.Revision).
				With("name", m.Name).
				With("expected", a.Checksum).
				With("actual", m.Checksum).
				WithNote("the checksum covers the whole migration file, including comments").
				WithHelp("add a new migration instead of editing an applied one")
		}
	}
	return nil
}

// GetStatus returns the status of all migrations, ordered by revision.
// Recorded revisions without a file are reported as missing.
func GetStatus(all []Migration, applied []AppliedMigration) []MigrationStatus {
	appliedMap := keyBy(applied, func(a AppliedMigration) string { return a.Revision })
	migrationMap := keyBy(all, func(m Migration) string { return m.Revision })

	revs := make([]string, 0, len(all)+len(applied))
	for _, m := range all {
		revs = append(revs, m.Revision)
	}
	revs = append(revs, revisions(applied)...)
	slices.Sort(revs)
	revs = slices.Compact(revs)

	statuses := make([]MigrationStatus, 0, len(revs))
	for _, rev := range revs {
		status := MigrationStatus{Revision: rev}

		m, hasMigration := migrationMap[rev]
		a, wasApplied := appliedMap[rev]

		if hasMigration {
			status.Name = m.Name
			status.Checksum = m.Checksum
		}

		switch {
		case !wasApplied:
			status.Status = StatusPending
		case !hasMigration:
			status.Name = a.Name
			status.Status = StatusMissing
		case a.Checksum != "" && m.Checksum != "" && a.Checksum != m.Checksum:
			status.Status = StatusModified
		default:
			status.Status = StatusApplied
		}
		if wasApplied && !a.AppliedAt.IsZero() {
			status.AppliedAt = a.AppliedAt.Format("2006-01-02 15:04:05")
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func revisions(applied []AppliedMigration) []string {
	revs := make([]string, len(applied))
	for i, a := range applied {
		revs[i] = a.Revision
	}
	return revs
}
