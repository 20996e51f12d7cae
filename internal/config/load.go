package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/hlop3z/autofk/internal/alerr"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. AUTOFK_FOREIGN_KEYS_AUTO_INDEX=false.
const EnvPrefix = "AUTOFK"

// DefaultMigrationsDir is where migrations are read from unless configured.
const DefaultMigrationsDir = "migrations"

// Settings is the autofk.yaml tool configuration.
type Settings struct {
	DatabaseURL   string `mapstructure:"database_url"`
	Dialect       string `mapstructure:"dialect"`
	Driver        string `mapstructure:"driver"`
	// MigrationsDir holds the NNN_name.yaml migration files.
	MigrationsDir string `mapstructure:"migrations_dir"`
	ForeignKeys   Config `mapstructure:"foreign_keys"`
}

// SetDefaults registers every known key with its default on v.
// Keys must be known to viper for environment variables to bind on Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("database_url", "")
	v.SetDefault("dialect", "")
	v.SetDefault("driver", "")
	v.SetDefault("migrations_dir", DefaultMigrationsDir)
	v.SetDefault("foreign_keys.auto_create", d.AutoCreateForeignKey)
	v.SetDefault("foreign_keys.auto_index", d.AutoCreateIndex)
	v.SetDefault("foreign_keys.truncate_index_names", d.TruncateIndexNames)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path, the environment and defaults.
// Precedence: env vars > config file > defaults.
// A missing file is an error unless optional is true.
func Load(path string, optional bool) (*Settings, error) {
	v := NewViper()
	if err := ReadFile(v, path, optional); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ReadFile merges the config file at path into v.
func ReadFile(v *viper.Viper, path string, optional bool) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return alerr.Wrap(alerr.ErrConfigRead, err, "failed to read config file").
			WithFile(path, 0)
	}
	return nil
}

// Decode unmarshals v into Settings.
func Decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "failed to decode config")
	}
	return &s, nil
}
