package tabledefinition

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/rdbms"
	"github.com/relloyd/makedw/schema"
)

type mapTabDefinitionConfigT map[string]tabDefinitionConfigT

// tabDefinitionConfig contains SQL statements able to get table definition data for each connection type
// where the connection type string matches that stored in shared.ConnectionDetails -> Type.
// Ensure NULLABLE is either YES or NO.
var tabDefinitionConfig = mapTabDefinitionConfigT{
	constants.ConnectionTypeSqlServer: {
		listTables: `select TABLE_NAME
							from INFORMATION_SCHEMA.TABLES
							where TABLE_SCHEMA = @p1
							and TABLE_TYPE = 'BASE TABLE'
							order by TABLE_NAME`,
		columns: `select COLUMN_NAME, DATA_TYPE, COALESCE(CHARACTER_MAXIMUM_LENGTH, DATETIME_PRECISION) AS DATA_LENGTH,
							NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
							ORDINAL_POSITION AS COLUMN_ID
							from INFORMATION_SCHEMA.COLUMNS
							where TABLE_SCHEMA = @p1
							and TABLE_NAME = @p2
							order by ORDINAL_POSITION`,
		primaryKeys: `select kcu.COLUMN_NAME
							from INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
							join INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
							  on kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
							 and kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
							where tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
							and tc.TABLE_SCHEMA = @p1
							and tc.TABLE_NAME = @p2
							order by kcu.ORDINAL_POSITION`,
		fnGetMapper: NewSqlServerDataTypeMapper,
	},
	constants.ConnectionTypeSnowflake: {
		listTables: `select TABLE_NAME
							from information_schema.tables
							where table_schema = upper(?)
							and table_type = 'BASE TABLE'
							order by table_name`,
		columns: `select COLUMN_NAME, DATA_TYPE, COALESCE(CHARACTER_MAXIMUM_LENGTH, DATETIME_PRECISION) AS DATA_LENGTH,
							NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
							ORDINAL_POSITION AS COLUMN_ID
							from information_schema.columns
							where table_schema = upper(?)
							and table_name = upper(?)
							order by ordinal_position`,
		// Snowflake only exposes key columns via SHOW PRIMARY KEYS so keys come from configuration.
		primaryKeys: "",
		fnGetMapper: NewSnowflakeToSqlServerDataTypeMapper,
	},
	constants.ConnectionTypeNetezza: {
		listTables: `select TABLE_NAME
							from information_schema.tables
							where table_schema = upper(?)
							and table_type = 'TABLE'
							order by table_name`,
		columns: `select COLUMN_NAME,
						substr(data_type, 1,
						  case when instr(data_type,'(') = 0 then length(data_type) else instr(data_type,'(')-1 end
						) as DATA_TYPE
						, coalesce(CHARACTER_MAXIMUM_LENGTH, DATETIME_PRECISION) AS DATA_LENGTH,
						    NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
						    ORDINAL_POSITION AS COLUMN_ID
							from information_schema.columns
							where table_schema = upper(?)
							and table_name = upper(?)
							order by ordinal_position`,
		primaryKeys: `select ATTNAME as COLUMN_NAME
							from _v_relation_keydata
							where upper(schema) = upper(?)
							and upper(relation) = upper(?)
							and contype = 'p'
							order by conseq`,
		fnGetMapper: NewNetezzaToSqlServerDataTypeMapper,
	},
}

// tabDefinitionConfigT holds the SQL used to read table metadata from one database type, as well as the Mapper that
// converts column definitions from source to T-SQL.
type tabDefinitionConfigT struct {
	listTables  string
	columns     string
	primaryKeys string
	fnGetMapper func() Mapper
}

// getRecord looks up and returns a value from the map t using the supplied databaseType.
// The prefix "odbc+" is trimmed from the left of databaseType.
func (t mapTabDefinitionConfigT) getRecord(databaseType string) (tabDefinitionConfigT, error) {
	dt := strings.TrimPrefix(databaseType, "odbc+")
	k, ok := t[dt]
	if !ok {
		return tabDefinitionConfigT{}, fmt.Errorf("error fetching source table definition config, unsupported database type: %q", dt)
	}
	return k, nil
}

// TableColumn defines a single table column as read from the source metadata.
type TableColumn struct {
	ColName       string
	DataType      string
	DataLen       int
	DataPrecision int
	DataScale     int
	Nullable      bool
	ColID         int
}

// DBIntrospector reads table definitions from a live source database.
type DBIntrospector struct {
	log        logger.Logger
	db         rdbms.Querier
	schemaName string
	conf       tabDefinitionConfigT
	mapper     Mapper
}

// NewDBIntrospector returns an Introspector for tables in schemaName of a database of type dbType.
func NewDBIntrospector(log logger.Logger, db rdbms.Querier, dbType string, schemaName string) (*DBIntrospector, error) {
	conf, err := tabDefinitionConfig.getRecord(dbType)
	if err != nil {
		return nil, err
	}
	return &DBIntrospector{log: log, db: db, schemaName: schemaName, conf: conf, mapper: conf.fnGetMapper()}, nil
}

// ListTables returns the base tables in the source schema.
func (d *DBIntrospector) ListTables(ctx context.Context) ([]string, error) {
	h := &stringCollector{}
	if err := rdbms.SqlQuery(ctx, d.log, d.db, d.conf.listTables, []interface{}{d.schemaName}, h); err != nil {
		return nil, errors.Wrapf(err, "unable to list tables in schema %q", d.schemaName)
	}
	return h.values, nil
}

// DescribeTable fetches the columns and primary key of table.
// Any failure is returned as an *IntrospectionError.
func (d *DBIntrospector) DescribeTable(ctx context.Context, table string) (TableDefinition, error) {
	cols, err := d.getTableColumns(ctx, table)
	if err != nil {
		return TableDefinition{}, &IntrospectionError{Table: table, Err: err}
	}
	if len(cols) == 0 {
		return TableDefinition{}, &IntrospectionError{Table: table, Err: ErrTableNotFound}
	}
	keys, err := d.getPrimaryKeys(ctx, table)
	if err != nil {
		return TableDefinition{}, &IntrospectionError{Table: table, Err: err}
	}
	def := TableDefinition{Schema: d.schemaName, Name: table}
	for _, c := range cols {
		typ, err := Declare(d.mapper, c.DataType, c.DataLen, c.DataPrecision, c.DataScale)
		if err != nil {
			return TableDefinition{}, &IntrospectionError{Table: table, Err: errors.Wrapf(err, "column %q", c.ColName)}
		}
		_, isKey := keys[c.ColName]
		def.Columns = append(def.Columns, schema.Column{
			Name:       c.ColName,
			Type:       typ,
			Nullable:   c.Nullable && !isKey,
			PrimaryKey: isKey,
		})
		d.log.Debug("table = ", table,
			"; column = ", c.ColName,
			"; source type = ", c.DataType,
			"; target type = ", typ,
			"; nullable = ", c.Nullable,
			"; key = ", isKey,
		)
	}
	return def, nil
}

func (d *DBIntrospector) getTableColumns(ctx context.Context, table string) ([]TableColumn, error) {
	h := &columnCollector{}
	if err := rdbms.SqlQuery(ctx, d.log, d.db, d.conf.columns, []interface{}{d.schemaName, table}, h); err != nil {
		return nil, err
	}
	return h.columns, nil
}

func (d *DBIntrospector) getPrimaryKeys(ctx context.Context, table string) (map[string]struct{}, error) {
	retval := make(map[string]struct{})
	if d.conf.primaryKeys == "" {
		return retval, nil
	}
	h := &stringCollector{}
	if err := rdbms.SqlQuery(ctx, d.log, d.db, d.conf.primaryKeys, []interface{}{d.schemaName, table}, h); err != nil {
		return nil, err
	}
	for _, k := range h.values {
		retval[k] = struct{}{}
	}
	return retval, nil
}

// stringCollector saves the first column of every row.
type stringCollector struct {
	values []string
}

func (s *stringCollector) HandleHeader(i []interface{}) error {
	if len(i) == 0 {
		return errors.New("query returned no columns")
	}
	return nil
}

func (s *stringCollector) HandleRow(i []interface{}) error {
	s.values = append(s.values, strings.TrimSpace(toString(i[0])))
	return nil
}

// columnCollector builds TableColumns from rows of the column metadata queries.
type columnCollector struct {
	pos     map[string]int
	columns []TableColumn
}

func (c *columnCollector) HandleHeader(i []interface{}) error {
	c.pos = make(map[string]int, len(i))
	for idx, v := range i {
		c.pos[strings.ToUpper(toString(v))] = idx
	}
	for _, k := range []string{"COLUMN_NAME", "DATA_TYPE"} {
		if _, ok := c.pos[k]; !ok {
			return fmt.Errorf("column metadata query is missing %v", k)
		}
	}
	return nil
}

func (c *columnCollector) HandleRow(i []interface{}) error {
	get := func(k string) interface{} {
		if idx, ok := c.pos[k]; ok {
			return i[idx]
		}
		return nil
	}
	col := TableColumn{
		ColName:  strings.TrimSpace(toString(get("COLUMN_NAME"))),
		DataType: strings.TrimSpace(toString(get("DATA_TYPE"))),
		Nullable: true, // prefer nullable over not null!
	}
	var err error
	for k, dst := range map[string]*int{
		"DATA_LENGTH":    &col.DataLen,
		"DATA_PRECISION": &col.DataPrecision,
		"DATA_SCALE":     &col.DataScale,
		"COLUMN_ID":      &col.ColID,
	} {
		if *dst, err = toInt(get(k)); err != nil {
			return fmt.Errorf("unable to convert %v of column %q to an integer: %w", k, col.ColName, err)
		}
	}
	if n := get("NULLABLE"); n != nil && strings.EqualFold(strings.TrimSpace(toString(n)), "NO") {
		col.Nullable = false
	}
	c.columns = append(c.columns, col)
	return nil
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// toInt converts a scanned metadata value to int, where NULL is 0.
func toInt(v interface{}) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case int:
		return x, nil
	case float64:
		return int(x), nil
	default:
		s := strings.TrimSpace(toString(x))
		if s == "" {
			return 0, nil
		}
		return strconv.Atoi(s)
	}
}
