package render

import (
	"github.com/pkg/errors"
	"github.com/relloyd/makedw/schema"
)

// RenderUnit renders the six scripts of u in dependency order.
// Nothing is returned unless every script renders.
func RenderUnit(r Renderer, u schema.GenerationUnit, dropFirst bool) ([]Script, error) {
	buildTemplate := DimensionSCD1Procedure
	if u.Build.SCDType == schema.SCDType2 {
		buildTemplate = DimensionSCD2Procedure
	}
	steps := []struct {
		template  TemplateName
		params    interface{}
		schema    string
		name      string
		procedure bool
	}{
		{StagingTable, NewTableParams(u.Staging, dropFirst), u.Staging.Schema(), u.Staging.Name(), false},
		{StagingLoadProcedure, NewStagingLoadParams(u.Staging, u.StagingLoad, dropFirst), u.Staging.Schema(), u.StagingLoad.ProcedureName, true},
		{TemporalTable, NewTemporalTableParams(u.Temporal, dropFirst), u.Temporal.Schema(), u.Temporal.Name(), false},
		{TemporalMergeProcedure, NewMergeParams(u.Temporal, u.Merge, dropFirst), u.Temporal.Schema(), u.Merge.ProcedureName, true},
		{DimensionTable, NewDimensionTableParams(u.Dimension, u.Build.SCDType, dropFirst), u.Dimension.Schema(), u.Dimension.Name(), false},
		{buildTemplate, NewDimensionBuildParams(u.Dimension, u.Build, dropFirst), u.Dimension.Schema(), u.Build.ProcedureName, true},
	}
	retval := make([]Script, 0, len(steps))
	for _, s := range steps {
		var (
			sc  Script
			err error
		)
		if s.procedure {
			sc, err = procedureScript(r, s.template, s.params, s.schema, s.name)
		} else {
			sc, err = tableScript(r, s.template, s.params, s.schema, s.name)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "table %v", u.Source.Name())
		}
		retval = append(retval, sc)
	}
	return retval, nil
}
