// Package main provides the autofk command line tool. autofk applies YAML
// schema migrations and attaches foreign keys and their indexes to
// reference-like columns as it goes.
//
// Usage:
//
//	autofk plan                        # Show the SQL pending migrations would run
//	autofk apply                       # Apply pending migrations
//	autofk status                      # Show applied/pending migrations
//	autofk index-name <table> <col>... # Print the generated index name
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/cli"
	"github.com/hlop3z/autofk/internal/config"

	// Database drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// options carries the global flags and the settings resolved from them.
type options struct {
	configFile string
	verbose    bool
	json       bool

	stdout io.Writer
	stderr io.Writer

	v        *viper.Viper
	settings *config.Settings
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprint(stderr, cli.FormatError(err))
		var ae *alerr.Error
		if errors.As(err, &ae) {
			slog.Debug("error stack", "code", ae.GetCode(), "stack", ae.GetStack())
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdout: stdout, stderr: stderr, v: config.NewViper()}

	root := &cobra.Command{
		Use:   "autofk",
		Short: "Schema migrations with automatic foreign keys and indexes",
		Long: `autofk applies YAML schema migrations. Columns named like references
(user_id, author_id) get a foreign key to the inferred table and an index
named fk__<table>_<columns>, unless configuration or the column says otherwise.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVarP(&o.configFile, "config", "c", "autofk.yaml", "Path to config file")
	f.StringP("database-url", "d", "", "Database connection URL (default: $DATABASE_URL)")
	f.String("dialect", "", "SQL dialect: postgres, sqlite or mysql (default: from the URL)")
	f.String("driver", "", "database/sql driver name (default: per dialect)")
	f.String("migrations", "", "Migrations directory (default: migrations)")
	f.BoolVar(&o.verbose, "verbose", false, "Log debug output to stderr")
	f.BoolVar(&o.json, "json", false, "Output JSON for scripts and CI")

	bindFlags(o.v, f)

	root.AddCommand(
		planCmd(o),
		applyCmd(o),
		statusCmd(o),
		indexNameCmd(o),
	)
	return root
}

// settingFlags maps settings keys to the flags that override them.
var settingFlags = map[string]string{
	"database_url":   "database-url",
	"dialect":        "dialect",
	"driver":         "driver",
	"migrations_dir": "migrations",
}

// bindFlags makes flags the highest-precedence source for their settings.
func bindFlags(v *viper.Viper, f *pflag.FlagSet) {
	for key, name := range settingFlags {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
}

// setup configures logging and output, then resolves settings.
// Precedence: flags > env vars > config file > defaults.
func (o *options) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level})))
	cli.SetDefault(outputConfig(o.stdout, o.json))

	// The default config file is optional; one named on the command line is not.
	optional := !cmd.Flags().Changed("config")
	if err := config.ReadFile(o.v, o.configFile, optional); err != nil {
		return err
	}
	s, err := config.Decode(o.v)
	if err != nil {
		return err
	}
	if s.DatabaseURL == "" {
		s.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	o.settings = s

	slog.Debug("settings resolved",
		"config", o.configFile,
		"dialect", s.Dialect,
		"migrations", s.MigrationsDir,
		"auto_create", s.ForeignKeys.AutoCreateForeignKey,
		"auto_index", s.ForeignKeys.AutoCreateIndex)
	return nil
}

// outputConfig picks the output mode for w.
func outputConfig(w io.Writer, jsonOut bool) *cli.Config {
	if jsonOut {
		return &cli.Config{Mode: cli.ModeJSON, Writer: w}
	}
	if f, ok := w.(*os.File); ok {
		return cli.Detect(f)
	}
	return &cli.Config{Mode: cli.ModePlain, Writer: w}
}
