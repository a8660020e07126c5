package tabledefinition

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const definitionsYaml = `
tables:
  - name: Customer
    schema: dbo
    columns:
      - {name: Id, type: int, primaryKey: true}
      - {name: Name, type: nvarchar(50), nullable: true}
      - {name: Email, type: nvarchar(100), nullable: true}
  - name: Audit
    columns:
      - {name: Message, type: nvarchar(max), nullable: true}
`

func TestLoadDefinitionsFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(definitionsYaml), 0600))
	s, err := LoadDefinitionsFile(fileName)
	require.NoError(t, err)

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Audit", "Customer"}, tables)

	def, err := s.DescribeTable(context.Background(), "Customer")
	require.NoError(t, err)
	assert.Equal(t, "dbo", def.Schema)
	require.Len(t, def.Columns, 3)
	assert.True(t, def.Columns[0].PrimaryKey)
	assert.False(t, def.Columns[0].Nullable)
	assert.Equal(t, "nvarchar(50)", def.Columns[1].Type)

	// Callers may not mutate the stored definition.
	def.Columns[0].Name = "Changed"
	again, err := s.DescribeTable(context.Background(), "Customer")
	require.NoError(t, err)
	assert.Equal(t, "Id", again.Columns[0].Name)

	_, err = s.DescribeTable(context.Background(), "Nope")
	assert.True(t, errors.Is(err, ErrIntrospection))
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestShapeRejectsEmptyAndInvalidDefinitions(t *testing.T) {
	_, err := TableDefinition{Name: "Empty"}.Shape()
	assert.True(t, errors.Is(err, ErrIntrospection))

	s, err := ParseDefinitions([]byte(`{"tables":[{"name":"Dup","columns":[{"name":"A","type":"int"},{"name":"A","type":"int"}]}]}`))
	require.NoError(t, err)
	def, err := s.DescribeTable(context.Background(), "Dup")
	require.NoError(t, err)
	_, err = def.Shape()
	assert.True(t, errors.Is(err, ErrIntrospection))
}
