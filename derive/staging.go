package derive

import (
	"strings"

	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/schema"
)

// DeriveStaging returns the staging table for source holding the selected columns
// in source order, plus the logic that reloads it.
// A nil selection means every source column.
func DeriveStaging(source schema.TableShape, selected []string, cfg *config.WarehouseConfig) (schema.TableShape, schema.StagingLoadLogic, error) {
	table := source.Name()
	srcCols := source.Columns()
	if selected == nil {
		selected = srcCols.Names()
	}
	if len(selected) == 0 {
		return schema.TableShape{}, schema.StagingLoadLogic{}, configErr(table, "no staging columns selected")
	}
	for _, name := range selected {
		if !helper.ContainsFold(srcCols.Names(), name) {
			return schema.TableShape{}, schema.StagingLoadLogic{}, configErr(table, "staging column %v does not exist in the source table", name)
		}
		if isPeriodColumn(name) {
			return schema.TableShape{}, schema.StagingLoadLogic{}, configErr(table, "staging column %v clashes with a system period column", name)
		}
	}
	cols := make(schema.Columns, 0, len(selected))
	for _, c := range srcCols {
		if helper.ContainsFold(selected, c.Name) {
			c.PrimaryKey = false
			c.Identity = false
			c.Generated = schema.NotGenerated
			cols = append(cols, c)
		}
	}
	keys, err := stagingKeys(source, cols.Names(), cfg)
	if err != nil {
		return schema.TableShape{}, schema.StagingLoadLogic{}, err
	}
	for i := range cols {
		if helper.ContainsFold(keys, cols[i].Name) {
			cols[i].PrimaryKey = true
			cols[i].Nullable = false
		}
	}
	shape, err := schema.NewTableShape(table, cfg.StagingSchema, schema.RoleStaging, cols, nil)
	if err != nil {
		return schema.TableShape{}, schema.StagingLoadLogic{}, err
	}
	sourceSchema := source.Schema()
	if sourceSchema == "" {
		sourceSchema = cfg.SourceSchema
	}
	load := schema.StagingLoadLogic{
		ProcedureName:  constants.StagingProcedurePrefix + helper.RemoveSpaces(table),
		SourceDatabase: cfg.SourceDatabase,
		SourceSchema:   sourceSchema,
		SourceTable:    table,
		Columns:        cols.Names(),
	}
	return shape, load, nil
}

// stagingKeys returns the key of the staging table: the source's declared key restricted to the
// selected columns. The configured override is only used when the source declares none.
func stagingKeys(source schema.TableShape, selected []string, cfg *config.WarehouseConfig) ([]string, error) {
	table := source.Name()
	declared := source.PrimaryKey()
	if len(declared) > 0 {
		keys := make([]string, 0, len(declared))
		for _, k := range declared {
			if helper.ContainsFold(selected, k) {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil, &MissingKeyError{Table: table, Stage: string(schema.RoleStaging), Reason: "no primary key column is selected"}
		}
		return keys, nil
	}
	override := cfg.Selection(table).PrimaryKeys
	if len(override) == 0 {
		return nil, &MissingKeyError{Table: table, Stage: string(schema.RoleStaging), Reason: "the source declares none and no primaryKeys are configured"}
	}
	for _, k := range override {
		if !helper.ContainsFold(selected, k) {
			return nil, configErr(table, "primaryKeys column %v is not a selected staging column", k)
		}
	}
	return override, nil
}

func isPeriodColumn(name string) bool {
	return strings.EqualFold(name, constants.ValidFromColumnName) || strings.EqualFold(name, constants.ValidToColumnName)
}
