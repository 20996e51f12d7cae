package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/autofk/internal/cli"
	"github.com/hlop3z/autofk/internal/engine"
)

type appliedJSON struct {
	Revision string `json:"revision"`
	Name     string `json:"name"`
}

// applyCmd applies pending migrations.
func applyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply pending migrations",
		Long: `Apply pending migrations in revision order. Each migration runs in its
own transaction on backends with transactional DDL; a failure rolls that
migration back and stops.

A migration that was edited after it was applied is refused.`,
		Example: `  autofk apply --database-url postgres://localhost/app
  autofk apply --migrations db/migrations`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			migrations, runner, closeDB, err := o.open(ctx, true)
			if err != nil {
				return err
			}
			defer closeDB()

			spinner := cli.NewSpinner(o.stderr, "Applying migrations")
			if !o.json {
				spinner.Start()
			}
			applied, err := runner.Apply(ctx, migrations)
			spinner.Stop()

			if o.json {
				if err != nil {
					return err
				}
				out := make([]appliedJSON, 0, len(applied))
				for _, m := range applied {
					out = append(out, appliedJSON{Revision: m.Revision, Name: m.Name})
				}
				return writeJSON(o.stdout, map[string]any{"applied": out})
			}

			printApplied(o, applied)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprint(o.stdout, cli.FormatNote("database is up to date"))
				return nil
			}
			fmt.Fprint(o.stdout, cli.FormatSuccess("applied "+cli.FormatCount(len(applied), "migration", "migrations")))
			return nil
		},
	}
}

func printApplied(o *options, applied []engine.Migration) {
	for _, m := range applied {
		fmt.Fprintf(o.stdout, "  %s %s %s\n", cli.Success("+"), m.Revision, cli.Dim(m.Name))
	}
}
