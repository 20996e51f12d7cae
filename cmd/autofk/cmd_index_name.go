package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/autofk/internal/autofk"
	"github.com/hlop3z/autofk/internal/cli"
	"github.com/hlop3z/autofk/internal/dialect"
	"github.com/hlop3z/autofk/internal/naming"
)

// indexNameCmd prints the names autofk generates for a foreign key.
func indexNameCmd(o *options) *cobra.Command {
	var truncate bool

	cmd := &cobra.Command{
		Use:   "index-name <table> <column>...",
		Short: "Print the generated index and constraint names",
		Long: `Print the index and foreign key constraint names autofk generates for
columns of a table. With --truncate (or foreign_keys.truncate_index_names)
the index name is shortened to the dialect's identifier limit.`,
		Example: `  autofk index-name comments user_id
  autofk index-name comments commentable_id commentable_type --dialect mysql`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, columns := args[0], args[1:]

			cfg := o.settings.ForeignKeys
			if cmd.Flags().Changed("truncate") {
				cfg.TruncateIndexNames = truncate
			}

			var limit int
			fk := autofk.New(dialect.Capabilities{}, naming.Policy{})
			if d, err := resolveDialect(o.settings); err == nil {
				fk = autofk.ForDialect(d, cfg)
				limit = d.Capabilities().MaxIdentifierLength
			} else if cfg.TruncateIndexNames {
				return err
			}

			index := fk.IndexName(table, columns...)
			constraint := naming.ConstraintName(table, columns...)

			if o.json {
				return writeJSON(o.stdout, map[string]string{"index": index, "constraint": constraint})
			}
			fmt.Fprintf(o.stdout, "index:      %s\n", index)
			fmt.Fprintf(o.stdout, "constraint: %s\n", constraint)
			if naming.Exceeds(index, limit) {
				fmt.Fprint(o.stderr, cli.FormatWarning(
					fmt.Sprintf("index name is %d characters; the limit is %d", len(index), limit),
					"pass --truncate to shorten it"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&truncate, "truncate", false, "Shorten the index name to the dialect's identifier limit")
	return cmd
}
