package render

// TemplateName identifies one of the T-SQL templates.
type TemplateName string

const (
	StagingTable           TemplateName = "staging_table"
	StagingLoadProcedure   TemplateName = "staging_load_procedure"
	TemporalTable          TemplateName = "temporal_table"
	TemporalMergeProcedure TemplateName = "temporal_merge_procedure"
	DimensionTable         TemplateName = "dimension_table"
	DimensionSCD1Procedure TemplateName = "dimension_scd1_procedure"
	DimensionSCD2Procedure TemplateName = "dimension_scd2_procedure"
)

const dropTableTemplate = `
{{- define "drop_table" -}}
IF EXISTS (
    SELECT *
    FROM INFORMATION_SCHEMA.TABLES
    WHERE TABLE_NAME = {{ literal .Table }}
    AND TABLE_SCHEMA = {{ literal .Schema }})
DROP TABLE {{ .Qualified }};
GO
{{ end -}}
`

const dropProcedureTemplate = `
{{- define "drop_procedure" -}}
IF EXISTS (
    SELECT *
    FROM INFORMATION_SCHEMA.ROUTINES
    WHERE ROUTINE_TYPE = 'PROCEDURE'
    AND SPECIFIC_NAME = {{ literal .Procedure }}
    AND SPECIFIC_SCHEMA = {{ literal .Schema }})
DROP PROCEDURE {{ .QualifiedProcedure }};
GO
{{ end -}}
`

const columnsTemplate = `
{{- define "column_defs" -}}
{{- range $i, $c := .Columns }}{{ if $i }},
{{ end }}    {{ $c.Definition }}{{ end }},
    CONSTRAINT {{ .ConstraintName }} PRIMARY KEY CLUSTERED ({{ join .PrimaryKey ", " }})
{{- end -}}
`

var templateText = map[TemplateName]string{
	StagingTable: `
{{- if .DropFirst }}{{ template "drop_table" . }}{{ end -}}
CREATE TABLE {{ .Qualified }} (
{{ template "column_defs" . }}
);
GO
`,
	DimensionTable: `
{{- if .Comment }}--{{ .Comment }}
{{ end -}}
{{- if .DropFirst }}{{ template "drop_table" . }}{{ end -}}
CREATE TABLE {{ .Qualified }} (
{{ template "column_defs" . }}
);
GO
`,
	TemporalTable: `
{{- if .DropFirst -}}
BEGIN TRY
    ALTER TABLE {{ .Qualified }} SET (SYSTEM_VERSIONING = OFF);
END TRY
BEGIN CATCH
    --Do nothing
END CATCH
GO

BEGIN TRY
    DROP TABLE {{ .Qualified }};
END TRY
BEGIN CATCH
    --Do nothing
END CATCH
GO

BEGIN TRY
    DROP TABLE {{ .QualifiedHistory }};
END TRY
BEGIN CATCH
    --Do nothing
END CATCH
GO

{{ end -}}
CREATE TABLE {{ .Qualified }} (
{{ template "column_defs" . }},
    PERIOD FOR SYSTEM_TIME ({{ .PeriodStart }}, {{ .PeriodEnd }})
)
WITH (SYSTEM_VERSIONING = ON (HISTORY_TABLE = {{ .QualifiedHistory }}));
GO
`,
	StagingLoadProcedure: `
{{- if .DropFirst }}{{ template "drop_procedure" . }}{{ end -}}
CREATE PROCEDURE {{ .QualifiedProcedure }} AS
BEGIN
    SET NOCOUNT ON;
    TRUNCATE TABLE {{ .Target }};
    INSERT INTO {{ .Target }} ({{ join .Columns ", " }})
    SELECT {{ join .Columns ", " }}
    FROM {{ .Source }};
    SET NOCOUNT OFF;
END
GO
`,
	TemporalMergeProcedure: `
{{- if .DropFirst }}{{ template "drop_procedure" . }}{{ end -}}
CREATE PROCEDURE {{ .QualifiedProcedure }} AS
BEGIN
    SET NOCOUNT ON;

    MERGE {{ .Target }} AS tgt
    USING (
        SELECT {{ join .Columns ", " }} FROM {{ .Source }}
        EXCEPT
        SELECT {{ join .Columns ", " }} FROM {{ .Target }}
    ) AS src ({{ join .Columns ", " }})
    ON ({{ join .KeyEquality " AND " }})
{{- if .UpdateEquality }}
    WHEN MATCHED THEN UPDATE
        SET {{ join .UpdateEquality ", " }}
{{- end }}
    WHEN NOT MATCHED BY TARGET THEN INSERT
        ({{ join .Columns ", " }})
        VALUES ({{ join .SourceColumns ", " }});

    MERGE {{ .Target }} AS tgt
    USING (
        SELECT {{ join .Columns ", " }} FROM {{ .Source }}
    ) AS src ({{ join .Columns ", " }})
    ON ({{ join .KeyEquality " AND " }})
    WHEN NOT MATCHED BY SOURCE THEN DELETE;
{{- if .Backdate }}

    --Only fires on the first load: afterwards the earliest {{ .PeriodStart }} equals the anchor.
    DECLARE @anchor datetime2(0) = {{ literal .Backdate }};
    DECLARE @oldest datetime2(0) = (SELECT MIN({{ .PeriodStart }}) FROM {{ .Target }} FOR SYSTEM_TIME ALL);
    IF @oldest IS NOT NULL AND @oldest <> @anchor
    BEGIN
        ALTER TABLE {{ .Target }} SET (SYSTEM_VERSIONING = OFF);
        ALTER TABLE {{ .Target }} DROP PERIOD FOR SYSTEM_TIME;
        --The period column is read-only until the period is dropped, so compile the update late.
        EXEC sp_executesql N{{ literal .BackdateUpdate }}, N'@anchor datetime2(0)', @anchor = @anchor;
        ALTER TABLE {{ .Target }} ADD PERIOD FOR SYSTEM_TIME ({{ .PeriodStart }}, {{ .PeriodEnd }});
        ALTER TABLE {{ .Target }} SET (SYSTEM_VERSIONING = ON (HISTORY_TABLE = {{ .HistoryTable }}));
    END
{{- end }}
    SET NOCOUNT OFF;
END
GO
`,
	DimensionSCD1Procedure: `
{{- if .DropFirst }}{{ template "drop_procedure" . }}{{ end -}}
CREATE PROCEDURE {{ .QualifiedProcedure }} AS
BEGIN
    SET NOCOUNT ON;
    DECLARE @now datetime2(7) = SYSUTCDATETIME();
    TRUNCATE TABLE {{ .Target }};
    DBCC CHECKIDENT ({{ literal .Target }}, RESEED, 1);
    INSERT INTO {{ .Target }} ({{ join .Columns ", " }})
    SELECT {{ join .Columns ", " }}
    FROM {{ .History }}
    FOR SYSTEM_TIME AS OF @now;
    SET NOCOUNT OFF;
END
GO
`,
	DimensionSCD2Procedure: `
{{- if .DropFirst }}{{ template "drop_procedure" . }}{{ end -}}
CREATE PROCEDURE {{ .QualifiedProcedure }} AS
BEGIN
    SET NOCOUNT ON;
    TRUNCATE TABLE {{ .Target }};

    SET IDENTITY_INSERT {{ .Target }} ON;
    WITH episodes AS (
        SELECT {{ join .Columns ", " }}, MIN({{ .PeriodStart }}) AS {{ .PeriodStart }}, MAX({{ .PeriodEnd }}) AS {{ .PeriodEnd }}
        FROM {{ .History }} FOR SYSTEM_TIME ALL
        GROUP BY {{ join .Columns ", " }}
    ), numbered AS (
        SELECT ROW_NUMBER() OVER (ORDER BY {{ join .OrderBy ", " }}) AS {{ .SurrogateKey }},
            {{ join .Columns ", " }}, {{ .PeriodStart }}, {{ .PeriodEnd }}
        FROM episodes
    )
    INSERT INTO {{ .Target }} ({{ .SurrogateKey }}, {{ join .Columns ", " }}, {{ .PeriodStart }}, {{ .PeriodEnd }})
    SELECT {{ .SurrogateKey }}, {{ join .Columns ", " }}, {{ .PeriodStart }}, {{ .PeriodEnd }}
    FROM numbered;
    SET IDENTITY_INSERT {{ .Target }} OFF;
    SET NOCOUNT OFF;
END
GO
`,
}
