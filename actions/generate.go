package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/derive"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/output"
	"github.com/relloyd/makedw/render"
	"github.com/relloyd/makedw/schema"
	tabledefinition "github.com/relloyd/makedw/table-definition"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

// Stages recorded against failed tables.
const (
	StageIntrospect = "introspect"
	StageDerive     = "derive"
	StageRender     = "render"
	StageWrite      = "write"
)

// Pipeline generates the six warehouse scripts for each selected source table.
type Pipeline struct {
	Log          logger.Logger
	Config       *config.WarehouseConfig
	Introspector tabledefinition.Introspector
	Renderer     render.Renderer
	Writer       output.Writer
	Tables       []string  // optional list of tables; default is every table the Introspector lists
	Progress     io.Writer // optional per-table progress lines
}

type describedTable struct {
	name  string
	shape schema.TableShape
	ok    bool
}

// Run validates the configuration, describes and derives every table, then renders and writes each
// table's scripts as a unit. A table that fails is recorded in the Report and does not stop the others.
// A ConfigurationError stops the run before anything is written.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: xid.New().String()}
	log := p.Log.WithField("runId", report.RunID)
	if err := p.Config.Validate(); err != nil {
		return report, err
	}
	filter, err := NewTableFilter(p.Config.TableFilter)
	if err != nil {
		return report, &config.ConfigurationError{Rule: err.Error()}
	}
	tables := p.Tables
	if len(tables) == 0 {
		tables, err = p.Introspector.ListTables(ctx)
		if err != nil {
			return report, errors.Wrap(err, "unable to list source tables")
		}
	}
	selected := make([]string, 0, len(tables))
	for _, t := range tables {
		ok, err := filter.Match(p.Config.SourceSchema, t)
		if err != nil {
			return report, err
		}
		if !ok {
			log.Debug("table ", t, " excluded by table filter")
			report.Filtered = append(report.Filtered, t)
			continue
		}
		selected = append(selected, t)
	}
	log.Info("generating ", len(selected), " table(s)")
	described, err := p.describe(ctx, log, report, selected)
	if err != nil {
		return report, err
	}
	// Derive everything before writing anything so a configuration problem leaves no output behind.
	units := make([]schema.GenerationUnit, 0, len(described))
	for _, d := range described {
		if !d.ok {
			continue
		}
		u, err := derive.Derive(d.shape, p.Config)
		if errors.Is(err, derive.ErrConfiguration) {
			return report, err
		} else if err != nil {
			log.WithField("table", d.name).Warn(err)
			report.failed(d.name, StageDerive, err)
			continue
		}
		units = append(units, u)
	}
	if err := p.write(ctx, log, report, units); err != nil {
		return report, err
	}
	report.sort()
	return report, nil
}

// describe fetches every table definition using a bounded number of workers.
func (p *Pipeline) describe(ctx context.Context, log logger.Logger, report *Report, tables []string) ([]describedTable, error) {
	retval := make([]describedTable, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers())
	for idx, t := range tables {
		idx, t := idx, t
		retval[idx].name = t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			def, err := p.Introspector.DescribeTable(gctx, t)
			if err == nil {
				retval[idx].shape, err = def.Shape()
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithField("table", t).Warn(err)
				report.failed(t, StageIntrospect, err)
				return nil
			}
			retval[idx].ok = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "describe cancelled")
	}
	return retval, nil
}

// write renders and writes each unit using a bounded number of workers.
func (p *Pipeline) write(ctx context.Context, log logger.Logger, report *Report, units []schema.GenerationUnit) error {
	var mu sync.Mutex
	done := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers())
	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := u.Source.Name()
			tlog := log.WithField("table", name)
			artifacts, err := Artifacts(p.Renderer, u, p.Config.DropFirst)
			if err != nil {
				tlog.Warn(err)
				report.failed(name, StageRender, err)
				return nil
			}
			if err := p.Writer.WriteUnit(gctx, artifacts); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				tlog.Warn(err)
				report.failed(name, StageWrite, err)
				return nil
			}
			report.generated(name)
			tlog.Debug("wrote ", len(artifacts), " scripts")
			mu.Lock()
			done++
			p.progress("[%v/%v] %v\n", done, len(units), name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "generation cancelled")
	}
	return nil
}

func (p *Pipeline) progress(format string, args ...interface{}) {
	if p.Progress != nil {
		fmt.Fprintf(p.Progress, format, args...)
	}
}

// Artifacts renders the scripts of u ready for an output.Writer.
func Artifacts(r render.Renderer, u schema.GenerationUnit, dropFirst bool) ([]output.Artifact, error) {
	scripts, err := render.RenderUnit(r, u, dropFirst)
	if err != nil {
		return nil, err
	}
	retval := make([]output.Artifact, 0, len(scripts))
	for _, s := range scripts {
		retval = append(retval, output.Artifact{Schema: s.Schema, Dir: s.Dir, Name: s.Name, SQL: s.SQL})
	}
	return retval, nil
}

// TerminalProgress returns os.Stderr when it is a terminal, otherwise nil.
func TerminalProgress() io.Writer {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return os.Stderr
	}
	return nil
}
