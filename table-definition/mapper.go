package tabledefinition

import (
	"fmt"
	"strconv"
	"strings"
)

// Mapper converts a source column type into the T-SQL type declared in the warehouse.
type Mapper interface {
	Map(inputDataType string) (output string, err error)
	Sanitise(inputDataType string, dataLen, precision, scale int) (output string, err error)
}

// Declare returns the full T-SQL declaration for a source column, e.g. nvarchar(50).
func Declare(m Mapper, inputDataType string, dataLen, precision, scale int) (string, error) {
	t, err := m.Map(inputDataType)
	if err != nil {
		return "", err
	}
	detail, err := m.Sanitise(inputDataType, dataLen, precision, scale)
	if err != nil {
		return "", err
	}
	return t + detail, nil
}

// NewSqlServerDataTypeMapper keeps SQL Server types as they are.
func NewSqlServerDataTypeMapper() Mapper {
	return newDataTypeMapper(SqlServerToSqlServerDataTypeMapping)
}

// NewSnowflakeToSqlServerDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewSnowflakeToSqlServerDataTypeMapper() Mapper {
	return newDataTypeMapper(SnowflakeToSqlServerDataTypeMapping)
}

// NewNetezzaToSqlServerDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewNetezzaToSqlServerDataTypeMapper() Mapper {
	return newDataTypeMapper(NetezzaToSqlServerDataTypeMapping)
}

// sanitiserFuncT converts data length, precision and scale into a string ready for use in CREATE TABLE DDL.
type sanitiserFuncT func(dataLen, dataPrecision, dataScale int) string

// dataTypeMap implements Map and Sanitise interfaces.
type dataTypeMap struct {
	mapTypes      map[string]string
	mapSanitisers map[string]sanitiserFuncT
}

// Map will convert inputDataType to lower case and use it to return the output from map mapTypes.
func (o dataTypeMap) Map(inputDataType string) (string, error) {
	v, ok := o.mapTypes[strings.ToLower(strings.TrimSpace(inputDataType))]
	if !ok {
		return "", fmt.Errorf("unsupported data type %q during conversion", inputDataType)
	}
	return v, nil
}

func (o dataTypeMap) Sanitise(inputDataType string, dataLen, dataPrecision, dataScale int) (string, error) {
	fn, ok := o.mapSanitisers[strings.ToLower(strings.TrimSpace(inputDataType))]
	if !ok {
		return "", fmt.Errorf("unsupported data type %q during conversion of DDL detail", inputDataType)
	}
	return fn(dataLen, dataPrecision, dataScale), nil
}

type dataTypeLink struct {
	SourceDataType string
	TargetDataType string
	SanitiserFunc  sanitiserFuncT
}

func newDataTypeMapper(types []dataTypeLink) dataTypeMap {
	dtm := dataTypeMap{}
	dtm.mapTypes = make(map[string]string)
	dtm.mapSanitisers = make(map[string]sanitiserFuncT)
	for _, row := range types {
		dtm.mapTypes[row.SourceDataType] = row.TargetDataType
		dtm.mapSanitisers[row.SourceDataType] = row.SanitiserFunc
	}
	return dtm
}

// SqlServerToSqlServerDataTypeMapping keeps each type and rebuilds its length, precision or scale.
var SqlServerToSqlServerDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "bit", TargetDataType: "bit", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "char", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "datetime", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime2", TargetDataType: "datetime2", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "datetimeoffset", TargetDataType: "datetimeoffset", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "decimal", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "image", TargetDataType: "varbinary", SanitiserFunc: sanitiseMax},
	{SourceDataType: "int", TargetDataType: "int", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "money", TargetDataType: "money", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "nchar", TargetDataType: "nchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "ntext", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "numeric", TargetDataType: "numeric", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "nvarchar", TargetDataType: "nvarchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "real", TargetDataType: "real", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smalldatetime", TargetDataType: "smalldatetime", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallmoney", TargetDataType: "smallmoney", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "tinyint", TargetDataType: "tinyint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "uniqueidentifier", TargetDataType: "uniqueidentifier", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varbinary", TargetDataType: "varbinary", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "xml", TargetDataType: "xml", SanitiserFunc: sanitiseBlank},
}

// SnowflakeToSqlServerDataTypeMapping contains a mapping of Snowflake to SQL Server data types.
// Semi-structured types land as JSON text.
var SnowflakeToSqlServerDataTypeMapping = []dataTypeLink{
	{SourceDataType: "array", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary", TargetDataType: "varbinary", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "boolean", TargetDataType: "bit", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "nchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "character", TargetDataType: "nchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "datetime2", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "decimal", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "double precision", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float4", TargetDataType: "real", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float8", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "geography", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "int", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "number", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "numeric", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "object", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "real", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "string", TargetDataType: "nvarchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "text", TargetDataType: "nvarchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "timestamp", TargetDataType: "datetime2", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "timestamp_ltz", TargetDataType: "datetimeoffset", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "timestamp_ntz", TargetDataType: "datetime2", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "timestamp_tz", TargetDataType: "datetimeoffset", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "varbinary", TargetDataType: "varbinary", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "varchar", TargetDataType: "nvarchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "variant", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
}

// NetezzaToSqlServerDataTypeMapping contains a mapping of Netezza to SQL Server data types.
// Intervals have no T-SQL equivalent so they are carried as text.
var NetezzaToSqlServerDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary varying", TargetDataType: "varbinary", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "boolean", TargetDataType: "bit", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bpchar", TargetDataType: "char", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "byteint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank}, // signed, so tinyint is too small.
	{SourceDataType: "char", TargetDataType: "char", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "character", TargetDataType: "char", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "character varying", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "double precision", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "int", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "interval", TargetDataType: "varchar", SanitiserFunc: sanitiseFixed(64)},
	{SourceDataType: "json", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "jsonb", TargetDataType: "nvarchar", SanitiserFunc: sanitiseMax},
	{SourceDataType: "nchar", TargetDataType: "nchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "national character", TargetDataType: "nchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "national character varying", TargetDataType: "nvarchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "numeric", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "nvarchar", TargetDataType: "nvarchar", SanitiserFunc: sanitiseDataLenOrMax(4000)},
	{SourceDataType: "real", TargetDataType: "real", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "st_geometry", TargetDataType: "varbinary", SanitiserFunc: sanitiseMax},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "time with time zone", TargetDataType: "varchar", SanitiserFunc: sanitiseFixed(32)},
	{SourceDataType: "timestamp", TargetDataType: "datetime2", SanitiserFunc: sanitiseFractionalSeconds},
	{SourceDataType: "timetz", TargetDataType: "varchar", SanitiserFunc: sanitiseFixed(32)},
	{SourceDataType: "varbinary", TargetDataType: "varbinary", SanitiserFunc: sanitiseDataLenOrMax(8000)},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLenOrMax(8000)},
}

// SANITISER FUNCTIONS.

func sanitiseBlank(dataLen, dataPrecision, dataScale int) string {
	return ""
}

func sanitiseMax(dataLen, dataPrecision, dataScale int) string {
	return "(max)"
}

func sanitiseFixed(n int) sanitiserFuncT {
	return func(dataLen, dataPrecision, dataScale int) string {
		return "(" + strconv.Itoa(n) + ")"
	}
}

// sanitiseDataLenOrMax returns "(n)" or "(max)" when dataLen is -1 or larger than limit.
func sanitiseDataLenOrMax(limit int) sanitiserFuncT {
	return func(dataLen, dataPrecision, dataScale int) string {
		switch {
		case dataLen == -1 || dataLen > limit:
			return "(max)"
		case dataLen > 0:
			return "(" + strconv.Itoa(dataLen) + ")"
		default:
			return ""
		}
	}
}

// sanitiseFractionalSeconds uses dataLen as the fractional seconds precision, where 7 is the T-SQL default.
func sanitiseFractionalSeconds(dataLen, dataPrecision, dataScale int) string {
	if dataLen >= 0 && dataLen < 7 {
		return "(" + strconv.Itoa(dataLen) + ")"
	}
	return ""
}

func sanitisePrecisionScale(dataLen, dataPrecision, dataScale int) string {
	return getDataPrecisionStr(dataPrecision) + getDataScaleStr(dataPrecision, dataScale)
}

// HELPER FUNCTIONS.

// getDataPrecisionStr returns "(<N>" if precision N exists or "" if it doesn't.
// You can't have a precision without a scale.
func getDataPrecisionStr(dataPrecision int) string {
	if dataPrecision > 38 {
		dataPrecision = 38
	}
	if dataPrecision != 0 {
		return "(" + strconv.Itoa(dataPrecision)
	}
	return ""
}

// getDataScaleStr return a suffix string for dataScale N: ",<N>)" if N exists or ")" if it doesn't.
func getDataScaleStr(dataPrecision int, dataScale int) string {
	if dataPrecision != 0 {
		return "," + strconv.Itoa(dataScale) + ")"
	}
	return ""
}
