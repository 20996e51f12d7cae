package migfile

import (
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
)

// Column option forms:
//
//	foreign_key: true | false | null | users | {references, primary_key, name, on_delete, on_update}
//	references:  users | null | {references, ...}   shorthand for foreign_key
//	index:       true | false | null | unique | <name> | {name, unique}
//
// An absent key leaves the option undeclared, which lets the convention decide.

const (
	tagNull = "!!null"
	tagBool = "!!bool"
	tagStr  = "!!str"
)

type foreignKeySpec struct {
	References string `yaml:"references"`
	PrimaryKey string `yaml:"primary_key"`
	Name       string `yaml:"name"`
	OnDelete   string `yaml:"on_delete"`
	OnUpdate   string `yaml:"on_update"`
}

type indexOptionSpec struct {
	Name   string `yaml:"name"`
	Unique bool   `yaml:"unique"`
}

// declared reports whether the key was present in the mapping.
func declared(n *yaml.Node) bool {
	return n != nil && n.Kind != 0
}

func (p *parser) options(fk, refs, idx *yaml.Node) (ast.ColumnOptions, error) {
	var opts ast.ColumnOptions

	if declared(fk) && declared(refs) {
		return opts, p.errorf(refs, alerr.ErrInvalidOption, "foreign_key and references cannot both be set").
			WithHelp("references: users is shorthand for foreign_key: {references: users}")
	}

	n := fk
	if !declared(n) {
		n = refs
	}
	if declared(n) {
		opt, err := p.foreignKeyOption(n)
		if err != nil {
			return opts, err
		}
		opts.ForeignKey = opt
	}

	if declared(idx) {
		opt, err := p.indexOption(idx)
		if err != nil {
			return opts, err
		}
		opts.Index = opt
	}

	return opts, nil
}

func (p *parser) foreignKeyOption(n *yaml.Node) (*ast.ForeignKeyOption, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case tagNull:
			return ast.Disabled(), nil
		case tagBool:
			var enabled bool
			if err := p.decode(n, &enabled); err != nil {
				return nil, err
			}
			if !enabled {
				return ast.Disabled(), nil
			}
			return &ast.ForeignKeyOption{Enabled: true}, nil
		case tagStr:
			return &ast.ForeignKeyOption{Enabled: true, References: n.Value}, nil
		}

	case yaml.MappingNode:
		var spec foreignKeySpec
		if err := p.decode(n, &spec); err != nil {
			return nil, err
		}
		onDelete, err := p.action(n, spec.OnDelete)
		if err != nil {
			return nil, err
		}
		onUpdate, err := p.action(n, spec.OnUpdate)
		if err != nil {
			return nil, err
		}
		return &ast.ForeignKeyOption{
			Enabled:    true,
			References: spec.References,
			PrimaryKey: spec.PrimaryKey,
			Name:       spec.Name,
			OnDelete:   onDelete,
			OnUpdate:   onUpdate,
		}, nil
	}

	return nil, p.errorf(n, alerr.ErrInvalidOption, "foreign_key must be a boolean, null, a table name or a mapping")
}

func (p *parser) indexOption(n *yaml.Node) (*ast.IndexOption, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case tagNull:
			return &ast.IndexOption{}, nil
		case tagBool:
			var enabled bool
			if err := p.decode(n, &enabled); err != nil {
				return nil, err
			}
			return &ast.IndexOption{Enabled: enabled}, nil
		case tagStr:
			if n.Value == "unique" {
				return &ast.IndexOption{Enabled: true, Unique: true}, nil
			}
			return &ast.IndexOption{Enabled: true, Name: n.Value}, nil
		}

	case yaml.MappingNode:
		var spec indexOptionSpec
		if err := p.decode(n, &spec); err != nil {
			return nil, err
		}
		return &ast.IndexOption{Enabled: true, Name: spec.Name, Unique: spec.Unique}, nil
	}

	return nil, p.errorf(n, alerr.ErrInvalidOption, "index must be a boolean, null, unique, a name or a mapping")
}
