package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/autofk/internal/cli"
)

type planJSON struct {
	Revision   string   `json:"revision"`
	Name       string   `json:"name"`
	Statements []string `json:"statements"`
}

// planCmd prints the SQL pending migrations would run.
func planCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the SQL pending migrations would run",
		Long: `Show the SQL pending migrations would run, including the foreign keys
and indexes autofk adds. Nothing is executed.

With a database URL, applied migrations are skipped and existing foreign keys
and indexes inform the plan. Without one, every migration is planned against
an empty database and --dialect is required.`,
		Example: `  # Preview against the configured database
  autofk plan

  # Preview offline for PostgreSQL
  autofk plan --dialect postgres`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			migrations, runner, closeDB, err := o.open(ctx, false)
			if err != nil {
				return err
			}
			defer closeDB()

			plans, err := runner.DryRun(ctx, migrations)
			if err != nil {
				return err
			}

			if o.json {
				out := make([]planJSON, 0, len(plans))
				for _, p := range plans {
					out = append(out, planJSON{
						Revision:   p.Migration.Revision,
						Name:       p.Migration.Name,
						Statements: p.Statements,
					})
				}
				return writeJSON(o.stdout, out)
			}

			if len(plans) == 0 {
				fmt.Fprint(o.stdout, cli.FormatNote("no pending migrations"))
				return nil
			}
			for i, p := range plans {
				if i > 0 {
					fmt.Fprintln(o.stdout)
				}
				fmt.Fprint(o.stdout, cli.FormatPlan(p))
			}
			return nil
		},
	}
}
