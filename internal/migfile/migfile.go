// Package migfile reads YAML migration files.
//
// A migration file holds an optional name, an optional foreign_keys setting
// that applies to the whole migration, and a list of operations:
//
//	name: add_comments
//	foreign_keys: {auto_create: true, auto_index: true}
//	operations:
//	  - create_table: comments
//	    foreign_keys: {auto_index: false}
//	    columns:
//	      - {name: user_id, type: integer}
//	      - {name: author_id, type: integer, foreign_key: {references: users, on_delete: cascade}}
//	  - change_column: {table: comments, name: user_id, foreign_key: false}
//
// The file name supplies the revision: "001_add_comments.yaml" is revision
// "001" named "add_comments".
package migfile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/config"
	"github.com/hlop3z/autofk/internal/engine"
)

// Extensions lists the file extensions LoadDir picks up.
var Extensions = []string{".yaml", ".yml"}

type fileSpec struct {
	Name       string           `yaml:"name"`
	Settings   *config.Override `yaml:"foreign_keys"`
	Operations []yaml.Node      `yaml:"operations"`
}

// Parse parses a migration file's content. path is used for the revision
// and for error context only.
func Parse(path string, data []byte) (*engine.Migration, error) {
	p := &parser{path: path}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid migration file").
			WithFile(path, 0)
	}

	revision, name := Revision(path)
	if spec.Name != "" {
		name = spec.Name
	}

	m := &engine.Migration{
		Revision: revision,
		Name:     name,
		Path:     path,
		Checksum: Checksum(data),
		Settings: spec.Settings,
	}

	for i := range spec.Operations {
		op, err := p.operation(&spec.Operations[i])
		if err != nil {
			return nil, err
		}
		m.Operations = append(m.Operations, op)
	}

	if len(m.Operations) == 0 {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "migration has no operations").
			WithFile(path, 0).
			WithHelp("add an operations: list")
	}

	return m, nil
}

// Load reads and parses one migration file.
func Load(path string) (*engine.Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, alerr.New(alerr.ErrMigrationNotFound, "migration file does not exist").
				WithFile(path, 0)
		}
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to read migration file").
			WithFile(path, 0)
	}
	return Parse(path, data)
}

// LoadDir loads every migration file in dir, ordered by file name.
// Two files with the same revision are an error.
func LoadDir(dir string) ([]engine.Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationNotFound, err, "failed to read migrations directory").
			With("dir", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isMigrationFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return LoadFiles(paths...)
}

// LoadFiles loads the given migration files in order.
func LoadFiles(paths ...string) ([]engine.Migration, error) {
	seen := make(map[string]string, len(paths))
	migrations := make([]engine.Migration, 0, len(paths))
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m.Revision]; dup {
			return nil, alerr.New(alerr.ErrMigrationInvalid, "duplicate migration revision").
				With("revision", m.Revision).
				With("first", prev).
				WithFile(path, 0)
		}
		seen[m.Revision] = path
		migrations = append(migrations, *m)
	}
	return migrations, nil
}

// Revision derives the revision and name from a migration file path.
// A leading run of digits followed by "_" is the revision; otherwise the
// whole base name is both revision and name.
func Revision(path string) (revision, name string) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if i := strings.IndexByte(base, '_'); i > 0 && isDigits(base[:i]) && i < len(base)-1 {
		return base[:i], base[i+1:]
	}
	return base, base
}

// Checksum returns the hex SHA-256 of a migration file's content.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isMigrationFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
