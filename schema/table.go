package schema

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Role identifies which stage of the warehouse a table belongs to.
type Role string

const (
	RoleSource    Role = "source"
	RoleStaging   Role = "staging"
	RoleTemporal  Role = "temporal"
	RoleDimension Role = "dimension"
)

// ErrInvalidShape is returned when a TableShape would break its own invariants.
var ErrInvalidShape = errors.New("invalid table shape")

// Versioning describes the system-versioning of a temporal table.
type Versioning struct {
	HistoryTable string
	PeriodStart  string
	PeriodEnd    string
}

// TableShape is an immutable description of one table produced by a deriver.
type TableShape struct {
	name       string
	schemaName string
	role       Role
	columns    Columns
	versioning *Versioning
}

// NewTableShape validates cols and returns a shape that owns a copy of them.
// Column names must be unique ignoring case and primary key columns must be non-nullable.
func NewTableShape(name string, schemaName string, role Role, cols []Column, versioning *Versioning) (TableShape, error) {
	if name == "" {
		return TableShape{}, errors.Wrap(ErrInvalidShape, "table name is empty")
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return TableShape{}, errors.Wrapf(ErrInvalidShape, "table %v has a column without a name", name)
		}
		if _, ok := seen[strings.ToLower(c.Name)]; ok {
			return TableShape{}, errors.Wrapf(ErrInvalidShape, "table %v has duplicate column %v", name, c.Name)
		}
		seen[strings.ToLower(c.Name)] = struct{}{}
		if c.PrimaryKey && c.Nullable {
			return TableShape{}, errors.Wrapf(ErrInvalidShape, "table %v has nullable primary key column %v", name, c.Name)
		}
	}
	s := TableShape{
		name:       name,
		schemaName: schemaName,
		role:       role,
		columns:    append(Columns(nil), cols...),
	}
	if versioning != nil {
		for _, p := range []string{versioning.PeriodStart, versioning.PeriodEnd} {
			if _, ok := seen[strings.ToLower(p)]; !ok {
				return TableShape{}, errors.Wrapf(ErrInvalidShape, "table %v is missing period column %v", name, p)
			}
		}
		v := *versioning
		s.versioning = &v
	}
	return s, nil
}

// Name of the table.
func (s TableShape) Name() string { return s.name }

// Schema the table lives in.
func (s TableShape) Schema() string { return s.schemaName }

// Role of the table.
func (s TableShape) Role() Role { return s.role }

// Columns returns a copy of the columns in order.
func (s TableShape) Columns() Columns {
	return append(Columns(nil), s.columns...)
}

// PrimaryKey returns the key column names in column order.
func (s TableShape) PrimaryKey() []string {
	return s.columns.Keys()
}

// Versioning returns the system-versioning details, or nil.
func (s TableShape) Versioning() *Versioning {
	if s.versioning == nil {
		return nil
	}
	v := *s.versioning
	return &v
}

// Column returns the column called name.
func (s TableShape) Column(name string) (Column, bool) {
	return s.columns.Find(name)
}

func (s TableShape) String() string {
	if s.schemaName == "" {
		return s.name
	}
	return fmt.Sprintf("%v.%v", s.schemaName, s.name)
}
