package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/autofk/internal/cli"
	"github.com/hlop3z/autofk/internal/engine"
)

type statusJSON struct {
	Revision  string  `json:"revision"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	AppliedAt *string `json:"applied_at"`
}

// statusCmd shows the status of all migrations.
func statusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied/pending migrations",
		Long: `Show every migration with its status: applied, pending, modified (edited
after it was applied) or missing (applied but its file is gone).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			migrations, runner, closeDB, err := o.open(ctx, true)
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := runner.Status(ctx, migrations)
			if err != nil {
				return err
			}

			if o.json {
				return writeJSON(o.stdout, statusOutput(statuses))
			}

			if len(statuses) == 0 {
				fmt.Fprint(o.stdout, cli.FormatNote("no migrations found"))
				return nil
			}
			fmt.Fprintln(o.stdout, cli.Title("Migration Status"))
			fmt.Fprintln(o.stdout)
			fmt.Fprintf(o.stdout, "  %s\n\n", cli.StatusSummary(statuses))
			fmt.Fprint(o.stdout, cli.StatusTable(statuses))
			return nil
		},
	}
}

// statusOutput builds the JSON document for status: counts per status plus
// one entry per migration.
func statusOutput(statuses []engine.MigrationStatus) map[string]any {
	counts := map[string]int{
		engine.StatusApplied.String():  0,
		engine.StatusPending.String():  0,
		engine.StatusModified.String(): 0,
		engine.StatusMissing.String():  0,
	}
	migrations := make([]statusJSON, 0, len(statuses))
	for _, s := range statuses {
		counts[s.Status.String()]++
		entry := statusJSON{Revision: s.Revision, Name: s.Name, Status: s.Status.String()}
		if s.AppliedAt != "" {
			at := s.AppliedAt
			entry.AppliedAt = &at
		}
		migrations = append(migrations, entry)
	}

	out := map[string]any{"migrations": migrations}
	for k, n := range counts {
		out[k] = n
	}
	return out
}
