package tabledefinition

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columnHeader = []string{"COLUMN_NAME", "DATA_TYPE", "DATA_LENGTH", "DATA_PRECISION", "DATA_SCALE", "NULLABLE", "COLUMN_ID"}

func newMockIntrospector(t *testing.T, dbType string) (*DBIntrospector, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	i, err := NewDBIntrospector(logger.Discard(), db, dbType, "dbo")
	require.NoError(t, err)
	return i, mock
}

func TestDescribeTableSqlServer(t *testing.T) {
	i, mock := newMockIntrospector(t, "sqlserver")
	mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
		WithArgs("dbo", "Customer").
		WillReturnRows(sqlmock.NewRows(columnHeader).
			AddRow("Id", "int", nil, int64(10), int64(0), "NO", int64(1)).
			AddRow("Name", "nvarchar", int64(50), nil, nil, "YES", int64(2)).
			AddRow("Email", "varchar", int64(-1), nil, nil, "YES", int64(3)).
			AddRow("Balance", "decimal", nil, int64(18), int64(2), "NO", int64(4)))
	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("dbo", "Customer").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("Id"))

	def, err := i.DescribeTable(context.Background(), "Customer")
	require.NoError(t, err)
	assert.Equal(t, "dbo", def.Schema)
	assert.Equal(t, "Customer", def.Name)
	assert.Equal(t, []schema.Column{
		{Name: "Id", Type: "int", PrimaryKey: true},
		{Name: "Name", Type: "nvarchar(50)", Nullable: true},
		{Name: "Email", Type: "varchar(max)", Nullable: true},
		{Name: "Balance", Type: "decimal(18,2)"},
	}, def.Columns)
	require.NoError(t, mock.ExpectationsWereMet())

	shape, err := def.Shape()
	require.NoError(t, err)
	assert.Equal(t, []string{"Id"}, shape.PrimaryKey())
	assert.Equal(t, schema.RoleSource, shape.Role())
}

func TestDescribeTableWithoutColumnsIsAnIntrospectionError(t *testing.T) {
	i, mock := newMockIntrospector(t, "sqlserver")
	mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
		WithArgs("dbo", "Missing").
		WillReturnRows(sqlmock.NewRows(columnHeader))

	_, err := i.DescribeTable(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntrospection))
	assert.True(t, errors.Is(err, ErrTableNotFound))
	var ie *IntrospectionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "Missing", ie.Table)
}

func TestDescribeTableQueryFailure(t *testing.T) {
	i, mock := newMockIntrospector(t, "sqlserver")
	mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
		WithArgs("dbo", "Customer").
		WillReturnError(errors.New("permission denied"))

	_, err := i.DescribeTable(context.Background(), "Customer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntrospection))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestDescribeTableUnsupportedType(t *testing.T) {
	i, mock := newMockIntrospector(t, "sqlserver")
	mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
		WithArgs("dbo", "Geo").
		WillReturnRows(sqlmock.NewRows(columnHeader).
			AddRow("Shape", "geography", nil, nil, nil, "YES", int64(1)))
	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("dbo", "Geo").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}))

	_, err := i.DescribeTable(context.Background(), "Geo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntrospection))
}

func TestDescribeTableSnowflakeSkipsKeyQuery(t *testing.T) {
	i, mock := newMockIntrospector(t, "snowflake")
	mock.ExpectQuery("information_schema.columns").
		WithArgs("dbo", "CUSTOMER").
		WillReturnRows(sqlmock.NewRows(columnHeader).
			AddRow("ID", "NUMBER", nil, "38", "0", "NO", "1").
			AddRow("NAME", "TEXT", int64(100), nil, nil, "YES", "2"))

	def, err := i.DescribeTable(context.Background(), "CUSTOMER")
	require.NoError(t, err)
	assert.Equal(t, []schema.Column{
		{Name: "ID", Type: "decimal(38,0)"},
		{Name: "NAME", Type: "nvarchar(100)", Nullable: true},
	}, def.Columns)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables(t *testing.T) {
	i, mock := newMockIntrospector(t, "sqlserver")
	mock.ExpectQuery("INFORMATION_SCHEMA.TABLES").
		WithArgs("dbo").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("Customer").AddRow("Order Line"))

	tables, err := i.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Order Line"}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDBIntrospectorRejectsUnknownDatabase(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	_, err = NewDBIntrospector(logger.Discard(), db, "oracle", "dbo")
	assert.Error(t, err)
}
