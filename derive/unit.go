package derive

import (
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/schema"
)

// Derive runs the staging, history and dimension derivers in order for one source table.
func Derive(source schema.TableShape, cfg *config.WarehouseConfig) (schema.GenerationUnit, error) {
	sel := cfg.Selection(source.Name())
	staging, load, err := DeriveStaging(source, sel.StagingColumns, cfg)
	if err != nil {
		return schema.GenerationUnit{}, err
	}
	history, merge, err := DeriveHistory(staging, cfg)
	if err != nil {
		return schema.GenerationUnit{}, err
	}
	dim, build, err := DeriveDimension(history, cfg, sel.SCDColumns)
	if err != nil {
		return schema.GenerationUnit{}, err
	}
	return schema.GenerationUnit{
		Source:      source,
		Staging:     staging,
		StagingLoad: load,
		Temporal:    history,
		Merge:       merge,
		Dimension:   dim,
		Build:       build,
	}, nil
}
