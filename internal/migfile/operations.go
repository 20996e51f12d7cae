package migfile

import (
	"errors"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/autofk/internal/alerr"
	"github.com/hlop3z/autofk/internal/ast"
	"github.com/hlop3z/autofk/internal/config"
	"github.com/hlop3z/autofk/internal/naming"
)

type parser struct {
	path string
}

func (p *parser) errorf(n *yaml.Node, code alerr.Code, format string, args ...any) *alerr.Error {
	return alerr.Newf(code, format, args...).WithFile(p.path, n.Line)
}

// located adds file context to err, keeping its code.
func (p *parser) located(n *yaml.Node, err error) error {
	var e *alerr.Error
	if errors.As(err, &e) {
		if _, ok := e.GetContext()["file"]; !ok {
			e.WithFile(p.path, n.Line)
		}
		return e
	}
	return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid operation").WithFile(p.path, n.Line)
}

// opParsers maps an operation key to its parser. Aliases share a parser.
var opParsers = map[string]func(p *parser, name string, body *yaml.Node) (ast.Operation, error){
	"create_table":       (*parser).createTable,
	"drop_table":         (*parser).dropTable,
	"rename_table":       (*parser).renameTable,
	"add_column":         (*parser).addColumn,
	"change_column":      (*parser).changeColumn,
	"remove_column":      (*parser).removeColumn,
	"drop_column":        (*parser).removeColumn,
	"add_reference":      (*parser).addReference,
	"add_index":          (*parser).addIndex,
	"create_index":       (*parser).addIndex,
	"remove_index":       (*parser).removeIndex,
	"drop_index":         (*parser).removeIndex,
	"rename_index":       (*parser).renameIndex,
	"add_foreign_key":    (*parser).addForeignKey,
	"remove_foreign_key": (*parser).removeForeignKey,
}

// OperationKeys returns the recognized operation keys, sorted.
func OperationKeys() []string {
	keys := make([]string, 0, len(opParsers))
	for k := range opParsers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// operation parses one entry of the operations list. The entry is a mapping
// with exactly one operation key. When the key's value is a scalar, it is the
// target name and the remaining keys of the entry form the body; when it is a
// mapping, the mapping is the body.
func (p *parser) operation(n *yaml.Node) (ast.Operation, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, alerr.ErrMigrationInvalid, "operation must be a mapping")
	}

	var key string
	var value *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		if _, ok := opParsers[k]; !ok {
			continue
		}
		if key != "" {
			return nil, p.errorf(n.Content[i], alerr.ErrMigrationInvalid, "operation has both %s and %s", key, k)
		}
		key, value = k, n.Content[i+1]
	}
	if key == "" {
		return nil, p.errorf(n, alerr.ErrUnknownOperation, "unknown operation").
			WithHelp("use one of: " + strings.Join(OperationKeys(), ", "))
	}

	name := ""
	body := value
	switch value.Kind {
	case yaml.ScalarNode:
		name = value.Value
		body = n
	case yaml.MappingNode:
	default:
		return nil, p.errorf(value, alerr.ErrMigrationInvalid, "%s must be a table name or a mapping", key)
	}

	op, err := opParsers[key](p, name, body)
	if err != nil {
		return nil, p.located(value, err)
	}
	if err := op.Validate(); err != nil {
		return nil, p.located(value, err)
	}
	return op, nil
}

func (p *parser) decode(n *yaml.Node, out any) error {
	if err := n.Decode(out); err != nil {
		return alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid operation").WithFile(p.path, n.Line)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

type createTableSpec struct {
	Name        string           `yaml:"name"`
	ID          *bool            `yaml:"id"`
	IfNotExists bool             `yaml:"if_not_exists"`
	Columns     []columnSpec     `yaml:"columns"`
	References  []referenceSpec  `yaml:"references"`
	Settings    *config.Override `yaml:"foreign_keys"`
}

func (p *parser) createTable(name string, body *yaml.Node) (ast.Operation, error) {
	var spec createTableSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	if name == "" {
		name = spec.Name
	}

	op := &ast.CreateTable{
		Name:        name,
		ID:          spec.ID == nil || *spec.ID,
		IfNotExists: spec.IfNotExists,
		Settings:    spec.Settings,
	}
	for i := range spec.Columns {
		col, err := p.column(&spec.Columns[i])
		if err != nil {
			return nil, err
		}
		op.Columns = append(op.Columns, col)
	}
	for i := range spec.References {
		ref, err := p.reference(&spec.References[i])
		if err != nil {
			return nil, err
		}
		op.References = append(op.References, ref)
	}
	return op, nil
}

type dropTableSpec struct {
	Name     string `yaml:"name"`
	IfExists bool   `yaml:"if_exists"`
}

func (p *parser) dropTable(name string, body *yaml.Node) (ast.Operation, error) {
	var spec dropTableSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	if name == "" {
		name = spec.Name
	}
	return &ast.DropTable{Name: name, IfExists: spec.IfExists}, nil
}

type renameSpec struct {
	Table string `yaml:"table"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

func (p *parser) renameTable(name string, body *yaml.Node) (ast.Operation, error) {
	var spec renameSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	if name != "" {
		spec.From = name
	}
	return &ast.RenameTable{OldName: spec.From, NewName: spec.To}, nil
}

// -----------------------------------------------------------------------------
// Columns
// -----------------------------------------------------------------------------

type columnSpec struct {
	Table      string           `yaml:"table"`
	Name       string           `yaml:"name"`
	Type       string           `yaml:"type"`
	Null       *bool            `yaml:"nullable"`
	Default    string           `yaml:"default"`
	PrimaryKey bool             `yaml:"primary_key"`
	ForeignKey yaml.Node        `yaml:"foreign_key"`
	References yaml.Node        `yaml:"references"`
	Index      yaml.Node        `yaml:"index"`
	Settings   *config.Override `yaml:"foreign_keys"`
}

func (p *parser) column(spec *columnSpec) (*ast.ColumnDef, error) {
	opts, err := p.options(&spec.ForeignKey, &spec.References, &spec.Index)
	if err != nil {
		return nil, err
	}
	return &ast.ColumnDef{
		Name:       spec.Name,
		Type:       spec.Type,
		Nullable:   spec.Null != nil && *spec.Null,
		PrimaryKey: spec.PrimaryKey,
		Default:    spec.Default,
		Options:    opts,
	}, nil
}

func (p *parser) addColumn(table string, body *yaml.Node) (ast.Operation, error) {
	var spec columnSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	col, err := p.column(&spec)
	if err != nil {
		return nil, err
	}
	return &ast.AddColumn{
		TableRef: ast.TableRef{Table_: pick(table, spec.Table)},
		Column:   col,
		Settings: spec.Settings,
	}, nil
}

func (p *parser) changeColumn(table string, body *yaml.Node) (ast.Operation, error) {
	var spec columnSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	col, err := p.column(&spec)
	if err != nil {
		return nil, err
	}
	return &ast.ChangeColumn{
		TableRef:    ast.TableRef{Table_: pick(table, spec.Table)},
		Column:      col,
		SetNullable: spec.Null,
		Settings:    spec.Settings,
	}, nil
}

type removeColumnSpec struct {
	Table string `yaml:"table"`
	Name  string `yaml:"name"`
}

func (p *parser) removeColumn(table string, body *yaml.Node) (ast.Operation, error) {
	var spec removeColumnSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	return &ast.DropColumn{TableRef: ast.TableRef{Table_: pick(table, spec.Table)}, Name: spec.Name}, nil
}

// -----------------------------------------------------------------------------
// References
// -----------------------------------------------------------------------------

type referenceSpec struct {
	Table       string           `yaml:"table"`
	Name        string           `yaml:"name"`
	Polymorphic bool             `yaml:"polymorphic"`
	Type        string           `yaml:"type"`
	Null        bool             `yaml:"nullable"`
	ForeignKey  yaml.Node        `yaml:"foreign_key"`
	References  yaml.Node        `yaml:"references"`
	Index       yaml.Node        `yaml:"index"`
	Settings    *config.Override `yaml:"foreign_keys"`
}

func (p *parser) reference(spec *referenceSpec) (*ast.ReferenceDef, error) {
	opts, err := p.options(&spec.ForeignKey, &spec.References, &spec.Index)
	if err != nil {
		return nil, err
	}
	return &ast.ReferenceDef{
		Name:        spec.Name,
		Polymorphic: spec.Polymorphic,
		Type:        spec.Type,
		Nullable:    spec.Null,
		Options:     opts,
	}, nil
}

func (p *parser) addReference(table string, body *yaml.Node) (ast.Operation, error) {
	var spec referenceSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	ref, err := p.reference(&spec)
	if err != nil {
		return nil, err
	}
	return &ast.AddReference{
		TableRef:  ast.TableRef{Table_: pick(table, spec.Table)},
		Reference: ref,
		Settings:  spec.Settings,
	}, nil
}

// -----------------------------------------------------------------------------
// Indexes
// -----------------------------------------------------------------------------

type indexSpec struct {
	Table       string   `yaml:"table"`
	Name        string   `yaml:"name"`
	Column      string   `yaml:"column"`
	Columns     []string `yaml:"columns"`
	Unique      bool     `yaml:"unique"`
	IfNotExists bool     `yaml:"if_not_exists"`
	IfExists    bool     `yaml:"if_exists"`
	From        string   `yaml:"from"`
	To          string   `yaml:"to"`
}

func (s *indexSpec) columns() []string {
	if len(s.Columns) == 0 && s.Column != "" {
		return []string{s.Column}
	}
	return s.Columns
}

func (p *parser) addIndex(table string, body *yaml.Node) (ast.Operation, error) {
	var spec indexSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	table = pick(table, spec.Table)
	columns := spec.columns()
	name := spec.Name
	// Unnamed indexes never take the fk__ auto name, so cleanup leaves them alone.
	if name == "" && table != "" && len(columns) > 0 {
		name = naming.ColumnIndexName(table, columns...)
	}
	return &ast.CreateIndex{
		TableRef:    ast.TableRef{Table_: table},
		Name:        name,
		Columns:     columns,
		Unique:      spec.Unique,
		IfNotExists: spec.IfNotExists,
	}, nil
}

func (p *parser) removeIndex(table string, body *yaml.Node) (ast.Operation, error) {
	var spec indexSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	return &ast.DropIndex{
		TableRef: ast.TableRef{Table_: pick(table, spec.Table)},
		Name:     spec.Name,
		Column:   spec.Column,
		IfExists: spec.IfExists,
	}, nil
}

func (p *parser) renameIndex(table string, body *yaml.Node) (ast.Operation, error) {
	var spec indexSpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	return &ast.RenameIndex{
		TableRef: ast.TableRef{Table_: pick(table, spec.Table)},
		OldName:  spec.From,
		NewName:  spec.To,
		Columns:  spec.columns(),
		Unique:   spec.Unique,
	}, nil
}

// -----------------------------------------------------------------------------
// Foreign keys
// -----------------------------------------------------------------------------

type addForeignKeySpec struct {
	Table      string   `yaml:"table"`
	Name       string   `yaml:"name"`
	Column     string   `yaml:"column"`
	Columns    []string `yaml:"columns"`
	References string   `yaml:"references"`
	PrimaryKey string   `yaml:"primary_key"`
	OnDelete   string   `yaml:"on_delete"`
	OnUpdate   string   `yaml:"on_update"`
	IfExists   bool     `yaml:"if_exists"`
}

func (s *addForeignKeySpec) columns() []string {
	if len(s.Columns) == 0 && s.Column != "" {
		return []string{s.Column}
	}
	return s.Columns
}

func (p *parser) addForeignKey(table string, body *yaml.Node) (ast.Operation, error) {
	var spec addForeignKeySpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	table = pick(table, spec.Table)
	cols := spec.columns()

	refTable := spec.References
	if refTable == "" && len(cols) == 1 {
		refTable, _ = naming.InferredTargetTable(cols[0])
	}
	refColumn := spec.PrimaryKey
	if refColumn == "" {
		refColumn = ast.DefaultPrimaryKey
	}
	name := spec.Name
	if name == "" && len(cols) > 0 {
		name = naming.ConstraintName(table, cols...)
	}

	onDelete, err := p.action(body, spec.OnDelete)
	if err != nil {
		return nil, err
	}
	onUpdate, err := p.action(body, spec.OnUpdate)
	if err != nil {
		return nil, err
	}

	return &ast.AddForeignKey{
		TableRef: ast.TableRef{Table_: table},
		ForeignKeyDef: ast.ForeignKeyDef{
			Name:       name,
			Columns:    cols,
			RefTable:   refTable,
			RefColumns: []string{refColumn},
			OnDelete:   onDelete,
			OnUpdate:   onUpdate,
		},
	}, nil
}

func (p *parser) removeForeignKey(table string, body *yaml.Node) (ast.Operation, error) {
	var spec addForeignKeySpec
	if err := p.decode(body, &spec); err != nil {
		return nil, err
	}
	table = pick(table, spec.Table)
	name := spec.Name
	if cols := spec.columns(); name == "" && len(cols) > 0 {
		name = naming.ConstraintName(table, cols...)
	}
	return &ast.DropForeignKey{
		TableRef: ast.TableRef{Table_: table},
		Name:     name,
		IfExists: spec.IfExists,
	}, nil
}

func (p *parser) action(n *yaml.Node, action string) (string, error) {
	normalized, err := ast.NormalizeFKAction(action)
	if err != nil {
		return "", p.located(n, err)
	}
	return normalized, nil
}

// pick returns the scalar form's name when set, else the body's field.
func pick(scalar, field string) string {
	if scalar != "" {
		return scalar
	}
	return field
}
