package render

import (
	"strings"
	"testing"

	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/derive"
	"github.com/relloyd/makedw/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerUnit(t *testing.T, cfg *config.WarehouseConfig) schema.GenerationUnit {
	src, err := schema.NewTableShape("Customer", "dbo", schema.RoleSource, []schema.Column{
		{Name: "Id", Type: "int", PrimaryKey: true},
		{Name: "Name", Type: "nvarchar(100)", Nullable: true},
		{Name: "Email", Type: "nvarchar(200)", Nullable: true},
	}, nil)
	require.NoError(t, err)
	u, err := derive.Derive(src, cfg)
	require.NoError(t, err)
	return u
}

func newRenderer(t *testing.T) *TemplateRenderer {
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestStagingTable(t *testing.T) {
	u := customerUnit(t, config.NewWarehouseConfig())
	sql, err := newRenderer(t).Render(StagingTable, NewTableParams(u.Staging, false))
	require.NoError(t, err)
	expected := "CREATE TABLE [stg].[Customer] (\n" +
		"    [Id] int NOT NULL,\n" +
		"    [Name] nvarchar(100) NULL,\n" +
		"    [Email] nvarchar(200) NULL,\n" +
		"    CONSTRAINT [PK_Customer] PRIMARY KEY CLUSTERED ([Id])\n" +
		");\nGO\n"
	assert.Equal(t, expected, sql)

	sql, err = newRenderer(t).Render(StagingTable, NewTableParams(u.Staging, true))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "IF EXISTS ("))
	assert.Contains(t, sql, "WHERE TABLE_NAME = 'Customer'\n    AND TABLE_SCHEMA = 'stg')\nDROP TABLE [stg].[Customer];\nGO\nCREATE TABLE")
}

func TestStagingLoadProcedure(t *testing.T) {
	cfg := config.NewWarehouseConfig()
	cfg.SourceDatabase = "Sales"
	u := customerUnit(t, cfg)
	sql, err := newRenderer(t).Render(StagingLoadProcedure, NewStagingLoadParams(u.Staging, u.StagingLoad, true))
	require.NoError(t, err)
	assert.Contains(t, sql, "DROP PROCEDURE [stg].[PopulateCustomer];\nGO\nCREATE PROCEDURE [stg].[PopulateCustomer] AS")
	assert.Contains(t, sql, "TRUNCATE TABLE [stg].[Customer];")
	assert.Contains(t, sql, "INSERT INTO [stg].[Customer] ([Id], [Name], [Email])")
	assert.Contains(t, sql, "FROM [Sales].[dbo].[Customer];")
}

func TestTemporalTable(t *testing.T) {
	u := customerUnit(t, config.NewWarehouseConfig())
	sql, err := newRenderer(t).Render(TemporalTable, NewTemporalTableParams(u.Temporal, false))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "CREATE TABLE [hist].[Customer] ("))
	assert.Contains(t, sql, "[ValidFrom] datetime2(0) GENERATED ALWAYS AS ROW START NOT NULL,")
	assert.Contains(t, sql, "[ValidTo] datetime2(0) GENERATED ALWAYS AS ROW END NOT NULL,")
	assert.Contains(t, sql, "PERIOD FOR SYSTEM_TIME ([ValidFrom], [ValidTo])\n)")
	assert.Contains(t, sql, "WITH (SYSTEM_VERSIONING = ON (HISTORY_TABLE = [hist].[CustomerHistory]));")
	assert.NotContains(t, sql, "BEGIN TRY")

	sql, err = newRenderer(t).Render(TemporalTable, NewTemporalTableParams(u.Temporal, true))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "BEGIN TRY\n    ALTER TABLE [hist].[Customer] SET (SYSTEM_VERSIONING = OFF);"))
	assert.Contains(t, sql, "DROP TABLE [hist].[CustomerHistory];")
}

func TestTemporalMergeProcedure(t *testing.T) {
	cfg := config.NewWarehouseConfig()
	u := customerUnit(t, cfg)
	sql, err := newRenderer(t).Render(TemporalMergeProcedure, NewMergeParams(u.Temporal, u.Merge, false))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "CREATE PROCEDURE [hist].[PopulateCustomer] AS"))
	assert.Contains(t, sql, "SELECT [Id], [Name], [Email] FROM [stg].[Customer]\n        EXCEPT\n        SELECT [Id], [Name], [Email] FROM [hist].[Customer]")
	assert.Contains(t, sql, "ON (tgt.[Id] = src.[Id])")
	assert.Contains(t, sql, "WHEN MATCHED THEN UPDATE\n        SET tgt.[Name] = src.[Name], tgt.[Email] = src.[Email]")
	assert.Contains(t, sql, "VALUES (src.[Id], src.[Name], src.[Email]);")
	assert.Contains(t, sql, "WHEN NOT MATCHED BY SOURCE THEN DELETE;")
	assert.NotContains(t, sql, "ANSI_NULLS")
	assert.NotContains(t, sql, "@anchor")

	ts, err := config.ParseTimestamp("2020-01-01")
	require.NoError(t, err)
	cfg.BackdateHistTo = &ts
	u = customerUnit(t, cfg)
	sql, err = newRenderer(t).Render(TemporalMergeProcedure, NewMergeParams(u.Temporal, u.Merge, false))
	require.NoError(t, err)
	assert.Contains(t, sql, "DECLARE @anchor datetime2(0) = '2020-01-01 00:00:00';")
	assert.Contains(t, sql, "SELECT MIN([ValidFrom]) FROM [hist].[Customer] FOR SYSTEM_TIME ALL")
	assert.Contains(t, sql, "IF @oldest IS NOT NULL AND @oldest <> @anchor")
	assert.Contains(t, sql, "ALTER TABLE [hist].[Customer] DROP PERIOD FOR SYSTEM_TIME;")
	assert.Contains(t, sql, "EXEC sp_executesql N'UPDATE [hist].[Customer] SET [ValidFrom] = @anchor;', N'@anchor datetime2(0)', @anchor = @anchor;")
	assert.NotContains(t, sql, "\n        UPDATE [hist].[Customer]")
	assert.Contains(t, sql, "ADD PERIOD FOR SYSTEM_TIME ([ValidFrom], [ValidTo]);")
	assert.Contains(t, sql, "SET (SYSTEM_VERSIONING = ON (HISTORY_TABLE = [hist].[CustomerHistory]));")
}

func TestTemporalMergeProcedureKeyOnlyTable(t *testing.T) {
	src, err := schema.NewTableShape("Tag", "dbo", schema.RoleSource, []schema.Column{
		{Name: "Code", Type: "varchar(10)", PrimaryKey: true},
	}, nil)
	require.NoError(t, err)
	u, err := derive.Derive(src, config.NewWarehouseConfig())
	require.NoError(t, err)
	sql, err := newRenderer(t).Render(TemporalMergeProcedure, NewMergeParams(u.Temporal, u.Merge, false))
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHEN MATCHED")
	assert.Contains(t, sql, "WHEN NOT MATCHED BY TARGET THEN INSERT")
}

func TestDimensionType1(t *testing.T) {
	cfg := config.NewWarehouseConfig()
	cfg.Tables = map[string]config.TableSelection{"Customer": {SCDColumns: []string{"Name", "Email"}}}
	u := customerUnit(t, cfg)
	r := newRenderer(t)

	sql, err := r.Render(DimensionTable, NewDimensionTableParams(u.Dimension, u.Build.SCDType, false))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "--Type 1 SCD\nCREATE TABLE [dim].[Customer] ("))
	assert.Contains(t, sql, "[DimId] int IDENTITY(1,1) NOT NULL,")
	assert.NotContains(t, sql, "[ValidFrom]")

	sql, err = r.Render(DimensionSCD1Procedure, NewDimensionBuildParams(u.Dimension, u.Build, false))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "CREATE PROCEDURE [dim].[BuildDimCustomer] AS"))
	assert.Contains(t, sql, "TRUNCATE TABLE [dim].[Customer];")
	assert.Contains(t, sql, "DBCC CHECKIDENT ('[dim].[Customer]', RESEED, 1);")
	assert.Contains(t, sql, "INSERT INTO [dim].[Customer] ([Name], [Email])")
	assert.Contains(t, sql, "FROM [hist].[Customer]\n    FOR SYSTEM_TIME AS OF @now;")
}

func TestDimensionType2(t *testing.T) {
	cfg := config.NewWarehouseConfig()
	cfg.SCDType = constants.SCDType2
	cfg.Tables = map[string]config.TableSelection{"Customer": {SCDColumns: []string{"Name", "Email"}}}
	u := customerUnit(t, cfg)
	r := newRenderer(t)

	sql, err := r.Render(DimensionTable, NewDimensionTableParams(u.Dimension, u.Build.SCDType, true))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "--Type 2 SCD\nIF EXISTS ("))
	assert.Contains(t, sql, "[ValidFrom] datetime2(0) NOT NULL,")

	sql, err = r.Render(DimensionSCD2Procedure, NewDimensionBuildParams(u.Dimension, u.Build, false))
	require.NoError(t, err)
	assert.Contains(t, sql, "MIN([ValidFrom]) AS [ValidFrom], MAX([ValidTo]) AS [ValidTo]")
	assert.Contains(t, sql, "FROM [hist].[Customer] FOR SYSTEM_TIME ALL\n        GROUP BY [Name], [Email]")
	assert.Contains(t, sql, "ROW_NUMBER() OVER (ORDER BY [ValidTo], [ValidFrom], [Name], [Email]) AS [DimId]")
	assert.Contains(t, sql, "SET IDENTITY_INSERT [dim].[Customer] ON;")
	assert.Contains(t, sql, "INSERT INTO [dim].[Customer] ([DimId], [Name], [Email], [ValidFrom], [ValidTo])")
}

func TestRenderUnit(t *testing.T) {
	cfg := config.NewWarehouseConfig()
	cfg.SCDType = constants.SCDType2
	scripts, err := RenderUnit(newRenderer(t), customerUnit(t, cfg), true)
	require.NoError(t, err)
	require.Len(t, scripts, 6)

	var got [][3]string
	for _, s := range scripts {
		got = append(got, [3]string{s.Schema, s.Dir, s.Name})
		assert.NotEmpty(t, s.SQL)
	}
	assert.Equal(t, [][3]string{
		{"stg", constants.OutputDirTables, "Customer"},
		{"stg", constants.OutputDirStoredProcedures, "PopulateCustomer"},
		{"hist", constants.OutputDirTables, "Customer"},
		{"hist", constants.OutputDirStoredProcedures, "PopulateCustomer"},
		{"dim", constants.OutputDirTables, "Customer"},
		{"dim", constants.OutputDirStoredProcedures, "BuildDimCustomer"},
	}, got)
	assert.Equal(t, DimensionSCD2Procedure, scripts[5].Template)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := newRenderer(t).Render(TemplateName("nope"), nil)
	assert.Error(t, err)
}
