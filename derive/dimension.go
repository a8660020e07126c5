package derive

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/schema"
)

// DeriveDimension returns the dimension table built from history and its build logic.
// A nil selection means every history column except the period columns.
// Type 1 holds the current snapshot; Type 2 adds ValidFrom and ValidTo for each collapsed episode.
func DeriveDimension(history schema.TableShape, cfg *config.WarehouseConfig, selected []string) (schema.TableShape, schema.BuildLogic, error) {
	table := history.Name()
	v := history.Versioning()
	if v == nil {
		return schema.TableShape{}, schema.BuildLogic{}, errors.Wrapf(schema.ErrInvalidShape, "table %v is not system-versioned", history)
	}
	scd, err := config.ParseSCDType(cfg.SCDType)
	if err != nil {
		return schema.TableShape{}, schema.BuildLogic{}, err
	}
	surrogate := cfg.DimensionIDColumnName
	histCols := history.Columns()
	if selected == nil {
		for _, c := range histCols {
			if c.Name != v.PeriodStart && c.Name != v.PeriodEnd {
				selected = append(selected, c.Name)
			}
		}
	}
	if len(selected) == 0 {
		return schema.TableShape{}, schema.BuildLogic{}, configErr(table, "no SCD columns selected")
	}
	for _, name := range selected {
		switch {
		case strings.EqualFold(name, v.PeriodStart) || strings.EqualFold(name, v.PeriodEnd):
			return schema.TableShape{}, schema.BuildLogic{}, configErr(table, "SCD column %v is a system period column and cannot be tracked", name)
		case strings.EqualFold(name, surrogate):
			return schema.TableShape{}, schema.BuildLogic{}, configErr(table, "SCD column %v has the same name as the dimension id column", name)
		case !helper.ContainsFold(histCols.Names(), name):
			return schema.TableShape{}, schema.BuildLogic{}, configErr(table, "SCD column %v does not exist in the history table", name)
		}
	}
	cols := schema.Columns{{
		Name:       surrogate,
		Type:       constants.SurrogateKeyDataType,
		PrimaryKey: true,
		Identity:   true,
	}}
	for _, c := range histCols {
		if helper.ContainsFold(selected, c.Name) {
			c.PrimaryKey = false
			cols = append(cols, c)
		}
	}
	businessCols := cols[1:].Names()
	if scd == schema.SCDType2 {
		cols = append(cols,
			schema.Column{Name: v.PeriodStart, Type: constants.PeriodColumnDataType},
			schema.Column{Name: v.PeriodEnd, Type: constants.PeriodColumnDataType},
		)
	}
	shape, err := schema.NewTableShape(table, cfg.DimensionSchema, schema.RoleDimension, cols, nil)
	if err != nil {
		return schema.TableShape{}, schema.BuildLogic{}, err
	}
	build := schema.BuildLogic{
		ProcedureName: constants.DimensionProcedurePrefix + helper.RemoveSpaces(table),
		SCDType:       scd,
		HistorySchema: history.Schema(),
		HistoryTable:  table,
		SurrogateKey:  surrogate,
		Columns:       businessCols,
		PeriodStart:   v.PeriodStart,
		PeriodEnd:     v.PeriodEnd,
	}
	return shape, build, nil
}
