package actions

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/aws/s3"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/output"
	"github.com/relloyd/makedw/rdbms"
	"github.com/relloyd/makedw/render"
	tabledefinition "github.com/relloyd/makedw/table-definition"
)

// GenerateConfig holds the command line options of the generate action.
// Non-empty values override those read from ConfigFile.
type GenerateConfig struct {
	ConfigFile       string
	Source           ConnectionObject
	Definitions      string
	Tables           string
	Output           string
	S3Region         string
	SCDType          string
	DropFirst        bool
	BackdateTo       string
	Concurrency      int
	TableFilter      string
	LogLevel         string
	StackDumpOnPanic bool
	Connections      ConnectionLoader
}

// RunGenerate loads settings, connects to the source and writes the scripts for every selected table.
func RunGenerate(cfg *GenerateConfig) error {
	log := logger.NewLogger(constants.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	wh, err := cfg.warehouseConfig()
	if err != nil {
		return err
	}
	intro, closer, err := cfg.introspector(ctx, log, wh)
	if err != nil {
		return err
	}
	defer closer()
	w, err := cfg.writer(log, wh)
	if err != nil {
		return err
	}
	r, err := render.NewRenderer()
	if err != nil {
		return err
	}
	tables, err := cfg.tableList()
	if err != nil {
		return err
	}
	p := &Pipeline{
		Log:          log,
		Config:       wh,
		Introspector: intro,
		Renderer:     r,
		Writer:       w,
		Tables:       tables,
		Progress:     TerminalProgress(),
	}
	report, err := p.Run(ctx)
	if err != nil {
		return err
	}
	report.Print(os.Stderr)
	return report.Err()
}

// tableList parses the --tables list. A list that cannot be parsed must not widen to every table.
func (cfg *GenerateConfig) tableList() ([]string, error) {
	tables, err := helper.CsvToStringSliceTrimSpaces(cfg.Tables)
	if err != nil {
		return nil, &config.ConfigurationError{Rule: "tables: " + err.Error()}
	}
	if strings.TrimSpace(cfg.Tables) != "" && len(tables) == 0 {
		return nil, &config.ConfigurationError{Rule: "tables: no table names in " + cfg.Tables}
	}
	return tables, nil
}

// warehouseConfig reads the settings file, if there is one, and applies the overrides in cfg.
func (cfg *GenerateConfig) warehouseConfig() (*config.WarehouseConfig, error) {
	wh := config.NewWarehouseConfig()
	// A missing default settings file is fine; a missing named one is not.
	_, statErr := os.Stat(cfg.ConfigFile)
	if cfg.ConfigFile != "" && (statErr == nil || cfg.ConfigFile != constants.DefaultWarehouseConfigFile) {
		loaded, err := config.LoadWarehouseConfig(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		wh = loaded
	}
	if s := cfg.Source.GetSchema(); s != "" {
		wh.SourceSchema = s
	}
	if cfg.SCDType != "" {
		wh.SCDType = cfg.SCDType
	}
	if cfg.DropFirst {
		wh.DropFirst = true
	}
	if cfg.BackdateTo != "" {
		ts, err := config.ParseTimestamp(cfg.BackdateTo)
		if err != nil {
			return nil, &config.ConfigurationError{Rule: err.Error()}
		}
		wh.BackdateHistTo = &ts
	}
	if cfg.Concurrency > 0 {
		wh.Concurrency = cfg.Concurrency
	}
	if cfg.TableFilter != "" {
		wh.TableFilter = cfg.TableFilter
	}
	if cfg.Output != "" {
		wh.OutputDir = cfg.Output
	}
	return wh, nil
}

// introspector returns table definitions from a file when one is given, else from the source connection.
// The returned func releases the database handle.
func (cfg *GenerateConfig) introspector(ctx context.Context, log logger.Logger, wh *config.WarehouseConfig) (tabledefinition.Introspector, func(), error) {
	noop := func() {}
	if s3.IsS3URL(cfg.Definitions) {
		b, err := s3.ParseDSN(cfg.Definitions, cfg.S3Region)
		if err != nil {
			return nil, noop, err
		}
		c, err := s3.NewBasicClient(b.Name, b.Region, "")
		if err != nil {
			return nil, noop, errors.Wrap(err, "unable to create S3 client")
		}
		s, err := loadDefinitionsObject(ctx, c, b.Prefix)
		return s, noop, err
	}
	if cfg.Definitions != "" {
		s, err := tabledefinition.LoadDefinitionsFile(cfg.Definitions)
		return s, noop, err
	}
	name := cfg.Source.GetConnectionName()
	if name == "" {
		return nil, noop, errors.New("supply a source connection or a table definitions file")
	}
	if cfg.Connections == nil {
		return nil, noop, fmt.Errorf("unable to load connection %q: no connections configured", name)
	}
	conn, err := cfg.Connections.LoadConnection(name)
	if err != nil {
		return nil, noop, errors.Wrapf(err, "unable to load connection %q", name)
	}
	if !rdbms.IsSupportedConnection(conn.Type) {
		return nil, noop, fmt.Errorf("connection %q has type %q, expected one of %v", name, conn.Type, strings.Join(rdbms.SupportedConnectionTypes, ", "))
	}
	db, err := rdbms.OpenDbConnection(ctx, log, conn)
	if err != nil {
		return nil, noop, err
	}
	closer := func() { closeDb(log, db) }
	intro, err := tabledefinition.NewDBIntrospector(log, db, conn.Type, wh.SourceSchema)
	if err != nil {
		closer()
		return nil, noop, err
	}
	return intro, closer, nil
}

// loadDefinitionsObject reads table definitions stored under key in S3.
func loadDefinitionsObject(ctx context.Context, g s3.Getter, key string) (*tabledefinition.StaticIntrospector, error) {
	b, err := g.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read table definitions object %v", key)
	}
	return tabledefinition.ParseDefinitions(b)
}

func closeDb(log logger.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warn("error closing source connection: ", err)
	}
}

// writer resolves the output destination. A saved s3 connection name may be used in place of a URL.
func (cfg *GenerateConfig) writer(log logger.Logger, wh *config.WarehouseConfig) (output.Writer, error) {
	dest := wh.OutputDir
	if dest == "" {
		dest = "."
	}
	if cfg.Connections != nil && !strings.ContainsAny(dest, `/\.`) && dest != constants.OutputStdout {
		if conn, err := cfg.Connections.LoadConnection(dest); err == nil && conn.Type == constants.ConnectionTypeS3 {
			return output.NewS3WriterForBucket(log, *s3.NewAwsBucket(&conn))
		}
	}
	return output.NewWriter(log, dest, cfg.S3Region)
}
