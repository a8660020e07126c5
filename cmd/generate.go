package cmd

import (
	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/constants"
	"github.com/spf13/cobra"
)

var generateCfg = &actions.GenerateConfig{}
var generateSource string

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate warehouse tables and procedures for source tables",
	Long: `Generate six scripts per source table:

  <staging schema>/Tables/<table>.sql
  <staging schema>/Stored Procedures/Populate<table>.sql
  <history schema>/Tables/<table>.sql
  <history schema>/Stored Procedures/Populate<table>.sql
  <dimension schema>/Tables/<table>.sql
  <dimension schema>/Stored Procedures/BuildDim<table>.sql

Table definitions are read from a saved source connection or from a YAML file.
Flags override the values found in the warehouse settings file.`,
	Example: `  makedw generate --source mysql.dbo --output ./warehouse
  makedw generate --definitions tables.yaml --scd-type "Type 2" --output -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runGenerate()
	},
}

func runGenerate() error {
	generateCfg.Source = actions.ConnectionObject{ConnectionObject: generateSource}
	generateCfg.Connections = getConnectionLoader()
	generateCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunGenerate(generateCfg)
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().SortFlags = false
	switches.addFlag(generateCmd, &generateCfg.ConfigFile, "config", constants.DefaultWarehouseConfigFile, false, "")
	switches.addFlag(generateCmd, &generateSource, "source", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.Definitions, "definitions", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.Tables, "tables", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.Output, "output", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.S3Region, "s3-region", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.SCDType, "scd-type", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.DropFirst, "drop-first", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.BackdateTo, "backdate-to", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.Concurrency, "concurrency", "0", false, "")
	switches.addFlag(generateCmd, &generateCfg.TableFilter, "table-filter", "", false, "")
	switches.addFlag(generateCmd, &generateCfg.LogLevel, "log-level", "warn", false, "")
}
