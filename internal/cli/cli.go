// Package cli renders autofk's terminal output: rustc-style diagnostics for
// errors, the migration status table and planned SQL.
//
// Output is colored only on an interactive terminal. Pipes, CI logs, NO_COLOR
// and TERM=dumb get plain text.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text without colors.
	ModePlain
	// ModeJSON outputs structured JSON for scripts and CI.
	ModeJSON
)

// Config holds the output configuration.
type Config struct {
	Mode   OutputMode
	Writer io.Writer
}

// Detect returns the configuration for writing to f.
func Detect(f *os.File) *Config {
	mode := ModePlain
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		mode = ModeTTY
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		mode = ModePlain
	}
	return &Config{Mode: mode, Writer: f}
}

// IsTTY reports whether output is colored.
func (c *Config) IsTTY() bool {
	return c.Mode == ModeTTY
}

// IsJSON reports whether output is JSON.
func (c *Config) IsJSON() bool {
	return c.Mode == ModeJSON
}

var defaultCfg *Config

// Default returns the process-wide configuration, detecting it on first use.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = Detect(os.Stdout)
	}
	return defaultCfg
}

// SetDefault replaces the process-wide configuration.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors reports whether styled output is enabled.
func EnableColors() bool {
	return Default().IsTTY()
}
