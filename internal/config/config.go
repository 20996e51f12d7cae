// Package config holds the foreign-key automation settings.
//
// A Config is a plain value threaded through every decision. Overrides are
// layered on top of it per call (operation-local, then caller-scoped) and never
// written back into the base value.
package config

// Config holds the effective automation settings for one decision.
type Config struct {
	// AutoCreateForeignKey attaches a foreign key to reference-like columns.
	AutoCreateForeignKey bool `mapstructure:"auto_create"`
	// AutoCreateIndex adds a named index for every automatically or explicitly
	// attached foreign key.
	AutoCreateIndex bool `mapstructure:"auto_index"`
	// TruncateIndexNames hash-truncates generated index names that exceed the
	// backend's identifier limit. Off by default: names are left unbounded.
	TruncateIndexNames bool `mapstructure:"truncate_index_names"`
}

// Defaults returns the system-wide default configuration.
func Defaults() Config {
	return Config{
		AutoCreateForeignKey: true,
		AutoCreateIndex:      true,
	}
}

// Override changes individual settings for a single operation or a block of
// operations. Nil fields inherit from the layer below.
type Override struct {
	AutoCreateForeignKey *bool `yaml:"auto_create,omitempty"`
	AutoCreateIndex      *bool `yaml:"auto_index,omitempty"`
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o.AutoCreateForeignKey == nil && o.AutoCreateIndex == nil
}

// Apply returns c with every non-nil field of o applied. A nil override
// returns c unchanged.
func (c Config) Apply(o *Override) Config {
	if o == nil {
		return c
	}
	if o.AutoCreateForeignKey != nil {
		c.AutoCreateForeignKey = *o.AutoCreateForeignKey
	}
	if o.AutoCreateIndex != nil {
		c.AutoCreateIndex = *o.AutoCreateIndex
	}
	return c
}

// Resolve computes the effective configuration for one call. Overrides are
// given in precedence order: the first non-nil value for a field wins, and
// base supplies whatever no override sets.
//
//	Resolve(scope.Current(), opOverride) // operation-local beats caller scope
func Resolve(base Config, overrides ...*Override) Config {
	for i := len(overrides) - 1; i >= 0; i-- {
		base = base.Apply(overrides[i])
	}
	return base
}

// Bool returns a pointer to v, for building overrides inline.
func Bool(v bool) *bool {
	return &v
}
