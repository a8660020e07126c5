//go:generate mockgen -package mocks -destination mocks/introspector.go github.com/relloyd/makedw/table-definition Introspector
package tabledefinition

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/makedw/schema"
)

var (
	// ErrIntrospection matches every IntrospectionError via errors.Is.
	ErrIntrospection = errors.New("introspection error")
	ErrTableNotFound = errors.New("table not found")
)

// IntrospectionError reports a source table whose columns could not be read.
// It only fails that table.
type IntrospectionError struct {
	Table string
	Err   error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("unable to describe table %q: %v", e.Table, e.Err)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Err
}

func (e *IntrospectionError) Is(target error) bool {
	return target == ErrIntrospection
}

// Introspector lists source tables and describes their columns.
type Introspector interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (TableDefinition, error)
}

// TableDefinition is the column list of one source table.
type TableDefinition struct {
	Schema  string          `json:"schema,omitempty"`
	Name    string          `json:"name"`
	Columns []schema.Column `json:"columns"`
}

// Shape validates the definition as a source TableShape.
func (d TableDefinition) Shape() (schema.TableShape, error) {
	if len(d.Columns) == 0 {
		return schema.TableShape{}, &IntrospectionError{Table: d.Name, Err: errors.New("no columns found")}
	}
	s, err := schema.NewTableShape(d.Name, d.Schema, schema.RoleSource, d.Columns, nil)
	if err != nil {
		return schema.TableShape{}, &IntrospectionError{Table: d.Name, Err: err}
	}
	return s, nil
}

// StaticIntrospector serves definitions held in memory.
type StaticIntrospector struct {
	defs map[string]TableDefinition
}

func NewStaticIntrospector(defs []TableDefinition) *StaticIntrospector {
	s := &StaticIntrospector{defs: make(map[string]TableDefinition, len(defs))}
	for _, d := range defs {
		s.defs[d.Name] = d
	}
	return s
}

// definitionsFile is the layout of a YAML table definitions file.
type definitionsFile struct {
	Tables []TableDefinition `json:"tables"`
}

// LoadDefinitionsFile reads table definitions from YAML so generation can run without a database.
func LoadDefinitionsFile(fileName string) (*StaticIntrospector, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read table definitions file %v", fileName)
	}
	return ParseDefinitions(b)
}

// ParseDefinitions decodes YAML (or JSON) table definitions.
func ParseDefinitions(b []byte) (*StaticIntrospector, error) {
	f := definitionsFile{}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "unable to parse table definitions")
	}
	return NewStaticIntrospector(f.Tables), nil
}

func (s *StaticIntrospector) ListTables(ctx context.Context) ([]string, error) {
	retval := make([]string, 0, len(s.defs))
	for k := range s.defs {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

func (s *StaticIntrospector) DescribeTable(ctx context.Context, table string) (TableDefinition, error) {
	d, ok := s.defs[table]
	if !ok {
		return TableDefinition{}, &IntrospectionError{Table: table, Err: ErrTableNotFound}
	}
	d.Columns = append([]schema.Column(nil), d.Columns...)
	return d, nil
}
