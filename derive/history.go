package derive

import (
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/schema"
)

// DeriveHistory returns the system-versioned temporal table for staging and the logic
// that merges staging into it.
func DeriveHistory(staging schema.TableShape, cfg *config.WarehouseConfig) (schema.TableShape, schema.MergeLogic, error) {
	table := staging.Name()
	keys := staging.PrimaryKey()
	if len(keys) == 0 {
		return schema.TableShape{}, schema.MergeLogic{}, &MissingKeyError{Table: table, Stage: string(schema.RoleTemporal), Reason: "the staging table has no primary key"}
	}
	cols := staging.Columns()
	for _, c := range cols {
		if isPeriodColumn(c.Name) {
			return schema.TableShape{}, schema.MergeLogic{}, configErr(table, "column %v clashes with a system period column", c.Name)
		}
	}
	mergeCols := cols.Names()
	cols = append(cols,
		schema.Column{Name: constants.ValidFromColumnName, Type: constants.PeriodColumnDataType, Generated: schema.RowStart},
		schema.Column{Name: constants.ValidToColumnName, Type: constants.PeriodColumnDataType, Generated: schema.RowEnd},
	)
	v := &schema.Versioning{
		HistoryTable: table + constants.HistoryTableSuffix,
		PeriodStart:  constants.ValidFromColumnName,
		PeriodEnd:    constants.ValidToColumnName,
	}
	shape, err := schema.NewTableShape(table, cfg.HistorySchema, schema.RoleTemporal, cols, v)
	if err != nil {
		return schema.TableShape{}, schema.MergeLogic{}, err
	}
	var updateCols []string
	for _, c := range mergeCols {
		if !helper.ContainsFold(keys, c) {
			updateCols = append(updateCols, c)
		}
	}
	merge := schema.MergeLogic{
		ProcedureName: constants.TemporalProcedurePrefix + helper.RemoveSpaces(table),
		StagingSchema: staging.Schema(),
		StagingTable:  table,
		MergeColumns:  mergeCols,
		KeyColumns:    keys,
		UpdateColumns: updateCols,
		Backdate:      cfg.Backdate(),
	}
	return shape, merge, nil
}
