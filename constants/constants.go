package constants

// Warehouse

const (
	ValidFromColumnName          = "ValidFrom"
	ValidToColumnName            = "ValidTo"
	PeriodColumnDataType         = "datetime2(0)"
	SurrogateKeyDataType         = "int"
	HistoryTableSuffix           = "History"
	StagingProcedurePrefix       = "Populate"
	TemporalProcedurePrefix      = "Populate"
	DimensionProcedurePrefix     = "BuildDim"
	OutputDirTables              = "Tables"
	OutputDirStoredProcedures    = "Stored Procedures"
	OutputFileExt                = ".sql"
	OutputStdout                 = "-"
	DefaultDimensionIDColumnName = "DimId"
	DefaultConcurrency           = 4
	DefaultWarehouseConfigFile   = "makedw.yaml"
	TimeFormatAnchor             = "2006-01-02 15:04:05" // datetime2(0) literal accepted by SQL Server.
	FormatterWarningBanner       = "--WARNING! ERRORS ENCOUNTERED DURING SQL PARSING!"
	ServiceName                  = "makedw"
	EnvVarPrefix                 = "MDW" // prefixed for environment variables in twelveFactorMode
	WebMaxRequestBytes           = 4 << 20
	WebMaxStoredRuns             = 100
	ConnectionTypeStdout         = "stdout"
	ConnectionTypeSnowflake      = "snowflake"
	ConnectionTypeNetezza        = "netezza"
	ConnectionTypeSqlServer      = "sqlserver"
	ConnectionTypeS3             = "s3"
)

// SCD types as they appear in configuration.

const (
	SCDType1 = "Type 1"
	SCDType2 = "Type 2"
)
